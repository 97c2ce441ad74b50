package renderer

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/etnz/budget"
	"github.com/etnz/budget/date"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// tables parses md and returns the cell texts of every table, row by row,
// header included.
func tables(t *testing.T, md string) [][][]string {
	t.Helper()
	source := []byte(md)
	doc := markdown.Parser().Parse(text.NewReader(source))
	var all [][][]string
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.(type) {
		case *east.Table:
			all = append(all, nil)
		case *east.TableHeader, *east.TableRow:
			var row []string
			for c := n.FirstChild(); c != nil; c = c.NextSibling() {
				row = append(row, strings.TrimSpace(string(c.Text(source))))
			}
			all[len(all)-1] = append(all[len(all)-1], row)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		t.Fatalf("ast.Walk() error = %v", err)
	}
	return all
}

// headings returns the text of every heading in md.
func headings(t *testing.T, md string) []string {
	t.Helper()
	source := []byte(md)
	doc := markdown.Parser().Parse(text.NewReader(source))
	var got []string
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if h, ok := n.(*ast.Heading); ok && entering {
			got = append(got, string(h.Text(source)))
		}
		return ast.WalkContinue, nil
	})
	return got
}

func d(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func march() *budget.AggregatedMonth {
	due := date.New(2024, 3, 10)
	return &budget.AggregatedMonth{
		ID:          date.NewMonth(2024, 3),
		MonthStart:  date.New(2024, 3, 1),
		InflowTotal: d(8000),
		FixedFactor: budget.NoData,
		BucketOrder: []string{"Balance", "Expense"},
		StatusByBucket: map[string]budget.Status{
			"Balance": budget.StatusPending,
			"Expense": budget.StatusPaid,
		},
		DueDates: map[string]*date.Date{"Balance": nil, "Expense": &due},
		Accounts: []budget.AggregatedAccount{
			{
				ID: "A", AccountName: "Salary", AccountType: budget.AccountSavings,
				FixedBalance:    d(100),
				Inflow:          budget.Value(d(8000)),
				SavingsTransfer: budget.NoData,
				RemainingCash:   budget.Value(d(7900)),
				BucketAmounts:   map[string]budget.Figure{"Balance": budget.NoData, "Expense": budget.Value(d(250))},
			},
			{
				ID: "B", AccountName: "Household", AccountType: budget.AccountCurrent,
				Inflow:          budget.NoData,
				SavingsTransfer: budget.NoData,
				RemainingCash:   budget.Value(d(42)),
				Overridden:      true,
				BucketAmounts:   map[string]budget.Figure{"Balance": budget.NoData, "Expense": budget.NoData},
			},
		},
	}
}

func TestRenderMonth(t *testing.T) {
	totals := budget.BucketTotals{
		Pending: map[string]decimal.Decimal{},
		Paid:    map[string]decimal.Decimal{"Expense": d(250)},
		All:     map[string]decimal.Decimal{"Expense": d(250)},
	}
	md := RenderMonth(NewMonth(march(), totals, "INR"))

	if diff := cmp.Diff([]string{"Plan for 2024-03", "Accounts", "Buckets"}, headings(t, md)); diff != "" {
		t.Errorf("headings mismatch (-want +got):\n%s", diff)
	}

	got := tables(t, md)
	if len(got) != 2 {
		t.Fatalf("RenderMonth() has %d tables, want 2:\n%s", len(got), md)
	}
	wantAccounts := [][]string{
		{"Account", "Type", "Fixed", "Inflow", "Savings", "Balance", "Expense", "Remaining"},
		{"Salary", "Savings", "₹100.00", "₹8,000.00", "-", "-", "₹250.00", "₹7,900.00"},
		{"Household", "Current", "₹0.00", "-", "-", "-", "-", "₹42.00 (manual)"},
	}
	if diff := cmp.Diff(wantAccounts, got[0]); diff != "" {
		t.Errorf("accounts table mismatch (-want +got):\n%s", diff)
	}
	wantBuckets := [][]string{
		{"Bucket", "Status", "Due", "Pending", "Paid", "All"},
		{"Balance", "Pending", "-", "₹0.00", "₹0.00", "₹0.00"},
		{"Expense", "Paid", "2024-03-10", "₹0.00", "₹250.00", "₹250.00"},
	}
	if diff := cmp.Diff(wantBuckets, got[1]); diff != "" {
		t.Errorf("buckets table mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderMonth_RefErrors(t *testing.T) {
	m := march()
	formula := "=#REF!+B2"
	m.RefErrors = []budget.RefError{{Cell: "C7", Formula: &formula}}
	md := RenderMonth(NewMonth(m, budget.BucketTotals{}, "INR"))
	if diff := cmp.Diff([]string{"Plan for 2024-03", "Accounts", "Buckets", "Broken references"}, headings(t, md)); diff != "" {
		t.Errorf("headings mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(md, "`=#REF!+B2`") {
		t.Errorf("RenderMonth() lacks the broken formula:\n%s", md)
	}
}

func TestRenderBalances(t *testing.T) {
	checks := []budget.BalanceCheck{
		{AccountName: "Salary", IsValid: false, CurrentBalance: d(1), CalculatedBalance: d(8000), Difference: d(-7999)},
		{AccountName: "Household", IsValid: true, CurrentBalance: d(5), CalculatedBalance: d(5)},
	}
	got := tables(t, RenderBalances(NewBalances("Balances", checks, "INR")))
	want := [][][]string{{
		{"Account", "Current", "Calculated", "Difference", "Status"},
		{"Salary", "₹1.00", "₹8,000.00", "-₹7,999.00", "mismatch"},
		{"Household", "₹5.00", "₹5.00", "-", "ok"},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("RenderBalances() mismatch (-want +got):\n%s", diff)
	}

	empty := RenderBalances(NewBalances("Discrepancies", nil, "INR"))
	if !strings.Contains(empty, "All balances match") {
		t.Errorf("RenderBalances(nil) = %q, want the all-clear sentence", empty)
	}
}

func TestRenderRefErrorScan(t *testing.T) {
	scan := budget.RefErrorScan{
		TotalIssues:    1,
		FixableIssues:  0,
		MonthsAffected: []date.Month{date.NewMonth(2024, 3)},
		Issues: []budget.RefErrorIssue{{
			Month: date.NewMonth(2024, 3), AccountName: "Salary",
			StoredValue: budget.NoData, CalculatedValue: budget.Value(d(0)),
			Reason: "no transactions",
		}},
	}
	md := RenderRefErrorScan(NewRefErrorScan(scan, "INR"))
	want := [][][]string{{
		{"Month", "Account", "Stored", "Calculated", "Transactions", "Fixable", "Reason"},
		{"2024-03", "Salary", "-", "₹0.00", "0", "no", "no transactions"},
	}}
	if diff := cmp.Diff(want, tables(t, md)); diff != "" {
		t.Errorf("RenderRefErrorScan() mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderFixResult(t *testing.T) {
	r := budget.FixResult{Fixed: 1, DryRun: true, Overrides: []budget.RemainingCashOverride{
		{Month: date.NewMonth(2024, 3), AccountID: "A", Value: budget.Value(d(12.5))},
	}}
	md := RenderFixResult(NewFixResult(r, "INR"))
	if diff := cmp.Diff([]string{"Remaining cash fixes (dry run)"}, headings(t, md)); diff != "" {
		t.Errorf("headings mismatch (-want +got):\n%s", diff)
	}
	want := [][][]string{{{"Month", "Account", "Override"}, {"2024-03", "A", "₹12.50"}}}
	if diff := cmp.Diff(want, tables(t, md)); diff != "" {
		t.Errorf("RenderFixResult() mismatch (-want +got):\n%s", diff)
	}
}

// Every embedded template must parse on its own.
func TestTemplatesParse(t *testing.T) {
	files, err := fs.Glob(templates, "*.md")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Fatal("no embedded templates")
	}
	for _, file := range files {
		t.Run(file, func(t *testing.T) {
			if got := renderTemplate("t", file, nil, nil); strings.HasPrefix(got, "error reading") || strings.HasPrefix(got, "error parsing") {
				t.Errorf("renderTemplate(%s) = %s", file, got)
			}
		})
	}
}
