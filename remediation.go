package budget

import (
	"slices"

	"github.com/etnz/budget/date"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// UniverseSource provides the collections the aggregation reads. *Ledger implements it.
type UniverseSource interface {
	Universe() Universe
}

// RefErrorIssue is a divergence between the stored remaining cash of an
// account and the one a fresh aggregation computes.
type RefErrorIssue struct {
	Month            date.Month      `json:"monthId"`
	AccountID        string          `json:"accountId"`
	AccountName      string          `json:"accountName"`
	StoredValue      Figure          `json:"storedValue"`
	CalculatedValue  Figure          `json:"calculatedValue"`
	Difference       decimal.Decimal `json:"difference"`
	HasIncome        bool            `json:"hasIncome"`
	HasExpenses      bool            `json:"hasExpenses"`
	HasSavings       bool            `json:"hasSavings"`
	TransactionCount int             `json:"transactionCount"`
	CanAutoFix       bool            `json:"canAutoFix"`
	Reason           string          `json:"reason"`
}

// RefErrorScan is the result of ScanRefErrors.
type RefErrorScan struct {
	Issues         []RefErrorIssue `json:"issues"`
	TotalIssues    int             `json:"totalIssues"`
	FixableIssues  int             `json:"fixableIssues"`
	MonthsAffected []date.Month    `json:"monthsAffected"`
}

// FixResult is the result of ApplyRefErrorFixes. Overrides lists every
// override written (or that would be written in a dry run) for review.
type FixResult struct {
	Fixed     int                     `json:"fixed"`
	Skipped   int                     `json:"skipped"`
	Overrides []RemainingCashOverride `json:"overrides,omitempty"`
	DryRun    bool                    `json:"dryRun"`
}

// Remediator detects and repairs drift between stored planning views and the
// ledger.
type Remediator struct {
	source    UniverseSource
	overrides *Overrides
	snapshots *Snapshots
	today     func() date.Date
	log       zerolog.Logger
}

// RemediatorOption configures a Remediator.
type RemediatorOption func(*Remediator)

// WithToday sets the reference day used for due-date zeroing.
func WithToday(today func() date.Date) RemediatorOption {
	return func(r *Remediator) { r.today = today }
}

// WithRemediationLogger sets the logger receiving override writes.
func WithRemediationLogger(log zerolog.Logger) RemediatorOption {
	return func(r *Remediator) { r.log = log }
}

// NewRemediator creates a Remediator over the ledger, the override map and
// the stored views.
func NewRemediator(source UniverseSource, overrides *Overrides, snapshots *Snapshots, opts ...RemediatorOption) *Remediator {
	if overrides == nil {
		overrides = NewOverrides()
	}
	if snapshots == nil {
		snapshots = NewSnapshots()
	}
	r := &Remediator{source: source, overrides: overrides, snapshots: snapshots, today: date.Today, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// PlanFor returns the plan of month: fixed factor and statuses from the
// stored view if any, the override map and today.
func (r *Remediator) PlanFor(month date.Month) Plan {
	p := Plan{Today: r.today(), Overrides: r.overrides}
	if stored, ok := r.snapshots.Get(month); ok {
		p.FixedFactor = stored.FixedFactor
		p.StatusByBucket = stored.StatusByBucket
		p.Adjustments = stored.ManualAdjustments
	}
	return p
}

// Aggregate computes the planning view of month.
func (r *Remediator) Aggregate(month date.Month) *AggregatedMonth {
	return AggregateMonth(month, r.source.Universe(), r.PlanFor(month))
}

// Months returns the months known either from stored views or from transactions, sorted.
func (r *Remediator) Months() []date.Month {
	return knownMonths(r.snapshots, r.source.Universe())
}

func knownMonths(s *Snapshots, u Universe) []date.Month {
	months := s.Months()
	for _, list := range [][]Transaction{u.Incomes, u.Expenses, u.Savings} {
		for _, tx := range list {
			if m := date.MonthOf(tx.Date); !slices.Contains(months, m) {
				months = append(months, m)
			}
		}
	}
	slices.SortFunc(months, compareMonths)
	return months
}

// ScanRefErrors recomputes every known month and reports each account whose
// stored remaining cash is missing or differs by more than 0.01.
func (r *Remediator) ScanRefErrors() RefErrorScan {
	u := r.source.Universe()
	scan := RefErrorScan{Issues: []RefErrorIssue{}, MonthsAffected: []date.Month{}}
	for _, month := range knownMonths(r.snapshots, u) {
		fresh := AggregateMonth(month, u, r.PlanFor(month))
		affected := false
		for _, row := range fresh.Accounts {
			stored := r.snapshots.StoredRemainingCash(month, row.ID)
			issue, ok := diagnose(month, row, stored, u)
			if !ok {
				continue
			}
			scan.Issues = append(scan.Issues, issue)
			if issue.CanAutoFix {
				scan.FixableIssues++
			}
			affected = true
		}
		if affected {
			scan.MonthsAffected = append(scan.MonthsAffected, month)
		}
	}
	scan.TotalIssues = len(scan.Issues)
	return scan
}

// diagnose returns the issue of one account row, if there is one.
func diagnose(month date.Month, row AggregatedAccount, stored Figure, u Universe) (RefErrorIssue, bool) {
	calculated := row.RemainingCash
	diff := calculated.Decimal().Sub(stored.Decimal())
	if !stored.IsNoData() && diff.Abs().LessThanOrEqual(balanceEpsilon) {
		return RefErrorIssue{}, false
	}
	issue := RefErrorIssue{
		Month:           month,
		AccountID:       row.ID,
		AccountName:     row.AccountName,
		StoredValue:     stored,
		CalculatedValue: calculated,
		Difference:      diff,
	}
	count := func(list []Transaction) int {
		n := 0
		for _, tx := range list {
			if tx.AccountID == row.ID && month.Contains(tx.Date) {
				n++
			}
		}
		return n
	}
	incomes, expenses, savings := count(u.Incomes), count(u.Expenses), count(u.Savings)
	issue.HasIncome = incomes > 0
	issue.HasExpenses = expenses > 0
	issue.HasSavings = savings > 0
	issue.TransactionCount = incomes + expenses + savings
	issue.CanAutoFix = issue.TransactionCount > 0 && (issue.HasIncome || issue.HasExpenses || issue.HasSavings)

	switch {
	case stored.IsNoData() && issue.CanAutoFix:
		issue.Reason = "stored value is missing; it can be recalculated from transactions"
	case stored.IsNoData():
		issue.Reason = "stored value is missing and there are no transactions to recalculate it from"
	case issue.CanAutoFix:
		issue.Reason = "stored value differs from the value recalculated from transactions"
	default:
		issue.Reason = "stored value differs but there are no transactions to recalculate it from"
	}
	return issue, true
}

// ApplyRefErrorFixes repairs issues.
//
// A fixable issue needs no override: the stored view is refreshed from a
// fresh aggregation. A non fixable issue is skipped, unless useOverrides is
// set: the calculated value is then written as a manual override, logged at
// warn level and listed in the result. In a dry run nothing is written but the
// counts are the same.
func (r *Remediator) ApplyRefErrorFixes(issues []RefErrorIssue, dryRun, useOverrides bool) FixResult {
	res := FixResult{DryRun: dryRun}
	fresh := make(map[date.Month]*AggregatedMonth)
	aggregate := func(month date.Month) *AggregatedMonth {
		if m, ok := fresh[month]; ok {
			return m
		}
		m := r.Aggregate(month)
		fresh[month] = m
		return m
	}

	for _, issue := range issues {
		switch {
		case issue.CanAutoFix:
			res.Fixed++
			if !dryRun {
				r.snapshots.Refresh(aggregate(issue.Month), issue.AccountID)
			}
		case useOverrides:
			ov := RemainingCashOverride{Month: issue.Month, AccountID: issue.AccountID, Value: issue.CalculatedValue}
			res.Overrides = append(res.Overrides, ov)
			res.Fixed++
			r.log.Warn().
				Str("month", issue.Month.String()).
				Str("account", issue.AccountID).
				Str("name", issue.AccountName).
				Stringer("stored", issue.StoredValue).
				Stringer("value", issue.CalculatedValue).
				Bool("dryRun", dryRun).
				Msg("writing calculated remaining cash as manual override")
			if !dryRun {
				r.overrides.Set(issue.Month, issue.AccountID, issue.CalculatedValue)
				r.snapshots.Refresh(r.Aggregate(issue.Month), issue.AccountID)
				delete(fresh, issue.Month)
			}
		default:
			res.Skipped++
		}
	}
	return res
}

// SetRemainingCashOverride sets the manual remaining cash of an account for
// a month. NoData is an explicit null override.
func (r *Remediator) SetRemainingCashOverride(month date.Month, accountID string, v Figure) {
	r.overrides.Set(month, accountID, v)
}

// GetRemainingCashOverride returns the manual remaining cash of an account for a month.
func (r *Remediator) GetRemainingCashOverride(month date.Month, accountID string) (Figure, bool) {
	return r.overrides.Get(month, accountID)
}

// ClearRemainingCashOverride removes the manual remaining cash of an account for a month.
func (r *Remediator) ClearRemainingCashOverride(month date.Month, accountID string) bool {
	return r.overrides.Clear(month, accountID)
}

// Overrides returns the override map.
func (r *Remediator) Overrides() *Overrides { return r.overrides }

// Snapshots returns the stored views.
func (r *Remediator) Snapshots() *Snapshots { return r.snapshots }
