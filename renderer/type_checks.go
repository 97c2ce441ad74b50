package renderer

import (
	"github.com/etnz/budget"
)

// Balances is a list of balance checks, ready to be rendered.
type Balances struct {
	Title  string
	Checks []BalanceRow
}

// BalanceRow is one balance check.
type BalanceRow struct {
	Name       string
	IsValid    bool
	Current    budget.Money
	Calculated budget.Money
	Difference budget.Money
}

// NewBalances builds the renderable view of checks.
func NewBalances(title string, checks []budget.BalanceCheck, cur string) *Balances {
	b := &Balances{Title: title}
	for _, c := range checks {
		b.Checks = append(b.Checks, BalanceRow{
			Name:       c.AccountName,
			IsValid:    c.IsValid,
			Current:    budget.M(c.CurrentBalance, cur),
			Calculated: budget.M(c.CalculatedBalance, cur),
			Difference: budget.M(c.Difference, cur),
		})
	}
	return b
}

// RefErrorScan is a remediation scan, ready to be rendered.
type RefErrorScan struct {
	TotalIssues    int
	FixableIssues  int
	MonthsAffected []string
	Issues         []IssueRow
}

// IssueRow is one remediation issue.
type IssueRow struct {
	Month        string
	Account      string
	Stored       string
	Calculated   string
	Transactions int
	CanAutoFix   bool
	Reason       string
}

// NewRefErrorScan builds the renderable view of a scan.
func NewRefErrorScan(s budget.RefErrorScan, cur string) *RefErrorScan {
	v := &RefErrorScan{TotalIssues: s.TotalIssues, FixableIssues: s.FixableIssues}
	for _, m := range s.MonthsAffected {
		v.MonthsAffected = append(v.MonthsAffected, m.String())
	}
	for _, i := range s.Issues {
		v.Issues = append(v.Issues, IssueRow{
			Month:        i.Month.String(),
			Account:      i.AccountName,
			Stored:       figure(i.StoredValue, cur),
			Calculated:   figure(i.CalculatedValue, cur),
			Transactions: i.TransactionCount,
			CanAutoFix:   i.CanAutoFix,
			Reason:       i.Reason,
		})
	}
	return v
}

// FixResult is the outcome of applied fixes, ready to be rendered.
type FixResult struct {
	Fixed     int
	Skipped   int
	DryRun    bool
	Overrides []OverrideRow
}

// OverrideRow is one override written by a fix.
type OverrideRow struct {
	Month     string
	AccountID string
	Value     string
}

// NewFixResult builds the renderable view of r.
func NewFixResult(r budget.FixResult, cur string) *FixResult {
	v := &FixResult{Fixed: r.Fixed, Skipped: r.Skipped, DryRun: r.DryRun}
	for _, o := range r.Overrides {
		v.Overrides = append(v.Overrides, OverrideRow{Month: o.Month.String(), AccountID: o.AccountID, Value: figure(o.Value, cur)})
	}
	return v
}
