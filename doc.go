// Package budget is a personal finance tracker that replaces a planning
// spreadsheet. It keeps banks, accounts, transactions, transfers and their
// recurring or installment (EMI) templates, and turns them into month by month
// planning views.
//
// The core functionalities include:
//   - Ledger Store: validated create/update/delete of every entity, with
//     referential guards and incremental balance maintenance.
//   - Balance Reconciliation: account balances recomputed from the settled
//     transaction history and compared to the stored ones.
//   - Monthly Aggregation: per-account, per-bucket breakdown of a month with
//     remaining cash, due dates and pending/paid bucket totals.
//   - Remediation: detection of stored month values that no longer match a
//     fresh aggregation, fixed either by recomputation or by manual override.
//   - Backup and seed import: the JSON backup document of the whole ledger and
//     the planning seed exported from the original workbook.
//
// Every computation takes its inputs explicitly (a [Universe] of accounts and
// transactions, a [Plan] with "today" and the overrides), so a month can be
// recomputed for any historical date.
package budget
