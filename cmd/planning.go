package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/budget"
	"github.com/etnz/budget/date"
	"github.com/etnz/budget/renderer"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

// monthArg parses the month argument, defaulting to the current month.
func monthArg(f *flag.FlagSet) (date.Month, error) {
	if f.NArg() == 0 {
		return date.MonthOf(date.Today()), nil
	}
	return date.ParseMonth(f.Arg(0))
}

// monthCmd displays the planning view of a month.
type monthCmd struct {
	json bool
	save bool
}

func (*monthCmd) Name() string     { return "month" }
func (*monthCmd) Synopsis() string { return "display the planning view of a month" }
func (*monthCmd) Usage() string {
	return `ftk month [-json] [-save] [YYYY-MM]

  Aggregates the month (the current one by default) from the ledger: per
  account inflow, savings, bucket amounts and remaining cash, plus the bucket
  totals. With -save, the view is stored in the workspace.
`
}

func (c *monthCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.json, "json", false, "print the aggregated month as JSON")
	f.BoolVar(&c.save, "save", false, "store the aggregated month in the workspace")
}

func (c *monthCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	month, err := monthArg(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing month: %v\n", err)
		return subcommands.ExitUsageError
	}
	var m *budget.AggregatedMonth
	var expenses []budget.Transaction
	aggregate := func(w *workspace) error {
		m = w.remediator().Aggregate(month)
		expenses = w.ledger.Expenses()
		if c.save {
			w.snapshots.Put(m)
		}
		return nil
	}
	if c.save {
		if status := openAndSave(aggregate); status != subcommands.ExitSuccess {
			return status
		}
	} else {
		w, err := openWorkspace()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading workspace: %v\n", err)
			return subcommands.ExitFailure
		}
		aggregate(w)
	}

	if c.json {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(m); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	totals := budget.CalculateAggregatedBucketTotals(m, expenses)
	printMarkdown(renderer.RenderMonth(renderer.NewMonth(m, totals, displayCurrency())))
	return subcommands.ExitSuccess
}

// totalsCmd prints the bucket totals of a month as JSON.
type totalsCmd struct{}

func (*totalsCmd) Name() string     { return "totals" }
func (*totalsCmd) Synopsis() string { return "print the bucket totals of a month" }
func (*totalsCmd) Usage() string {
	return `ftk totals [YYYY-MM]

  Prints the expense totals of the month per bucket, split into pending and
  paid, as JSON.
`
}
func (*totalsCmd) SetFlags(*flag.FlagSet) {}

func (*totalsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	month, err := monthArg(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing month: %v\n", err)
		return subcommands.ExitUsageError
	}
	w, err := openWorkspace()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading workspace: %v\n", err)
		return subcommands.ExitFailure
	}
	totals := budget.CalculateAggregatedBucketTotals(w.remediator().Aggregate(month), w.ledger.Expenses())

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(struct {
		budget.BucketTotals
		Total decimal.Decimal `json:"total"`
	}{totals, totals.Total()}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// scanCmd reports stored remaining cash values that drifted from the ledger.
type scanCmd struct{}

func (*scanCmd) Name() string     { return "scan" }
func (*scanCmd) Synopsis() string { return "find remaining cash values that drifted from the ledger" }
func (*scanCmd) Usage() string {
	return `ftk scan

  Recomputes every known month and lists the accounts whose stored remaining
  cash is missing or differs from the recomputed one.
`
}
func (*scanCmd) SetFlags(*flag.FlagSet) {}

func (*scanCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	w, err := openWorkspace()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading workspace: %v\n", err)
		return subcommands.ExitFailure
	}
	scan := w.remediator().ScanRefErrors()
	printMarkdown(renderer.RenderRefErrorScan(renderer.NewRefErrorScan(scan, displayCurrency())))
	return subcommands.ExitSuccess
}

// fixCmd repairs the issues found by scan.
type fixCmd struct {
	dryRun       bool
	useOverrides bool
}

func (*fixCmd) Name() string     { return "fix" }
func (*fixCmd) Synopsis() string { return "repair remaining cash values that drifted from the ledger" }
func (*fixCmd) Usage() string {
	return `ftk fix [-n] [-overrides]

  Refreshes the stored views of every issue that can be recomputed from
  transactions. With -overrides, the other issues get the recomputed value as
  a manual override. With -n, nothing is written.
`
}

func (c *fixCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.dryRun, "n", false, "dry run: report what would be fixed")
	f.BoolVar(&c.useOverrides, "overrides", false, "write manual overrides for issues that cannot be recomputed")
}

func (c *fixCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var res budget.FixResult
	status := openAndSave(func(w *workspace) error {
		r := w.remediator()
		res = r.ApplyRefErrorFixes(r.ScanRefErrors().Issues, c.dryRun, c.useOverrides)
		return nil
	})
	if status == subcommands.ExitSuccess {
		printMarkdown(renderer.RenderFixResult(renderer.NewFixResult(res, displayCurrency())))
	}
	return status
}

// overrideCmd sets, shows or clears a manual remaining cash value.
type overrideCmd struct {
	clear bool
	null  bool
}

func (*overrideCmd) Name() string     { return "override" }
func (*overrideCmd) Synopsis() string { return "set, show or clear a manual remaining cash value" }
func (*overrideCmd) Usage() string {
	return `ftk override YYYY-MM <account id> [<amount>]
ftk override -null YYYY-MM <account id>
ftk override -clear YYYY-MM <account id>

  Without amount, shows the override. An override replaces the computed
  remaining cash of the account in that month. -null sets an explicit "no
  data" override.
`
}

func (c *overrideCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.clear, "clear", false, "remove the override")
	f.BoolVar(&c.null, "null", false, "set an explicit no data override")
}

func (c *overrideCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 2 || f.NArg() > 3 {
		fmt.Fprintln(os.Stderr, "Error: a month and an account id are required.")
		return subcommands.ExitUsageError
	}
	month, err := date.ParseMonth(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing month: %v\n", err)
		return subcommands.ExitUsageError
	}
	accountID := f.Arg(1)

	if !c.clear && !c.null && f.NArg() == 2 {
		w, err := openWorkspace()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading workspace: %v\n", err)
			return subcommands.ExitFailure
		}
		v, ok := w.remediator().GetRemainingCashOverride(month, accountID)
		if !ok {
			fmt.Fprintf(stdout, "No override for %s in %s\n", accountID, month)
			return subcommands.ExitSuccess
		}
		fmt.Fprintf(stdout, "%s\n", v)
		return subcommands.ExitSuccess
	}

	value := budget.NoData
	if f.NArg() == 3 {
		d, err := amountFlag("amount", f.Arg(2))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitUsageError
		}
		value = budget.Value(d)
	}
	return openAndSave(func(w *workspace) error {
		if _, ok := w.ledger.Account(accountID); !ok {
			return &budget.NotFoundError{Entity: "account", ID: accountID}
		}
		r := w.remediator()
		if c.clear {
			if !r.ClearRemainingCashOverride(month, accountID) {
				fmt.Fprintf(stdout, "No override for %s in %s\n", accountID, month)
			}
			return nil
		}
		r.SetRemainingCashOverride(month, accountID, value)
		return nil
	})
}
