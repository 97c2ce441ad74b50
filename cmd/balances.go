package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/budget"
	"github.com/etnz/budget/renderer"
	"github.com/google/subcommands"
)

// balanceCmd checks persisted balances against the transaction history.
type balanceCmd struct {
	all bool
}

func (*balanceCmd) Name() string     { return "balance" }
func (*balanceCmd) Synopsis() string { return "check account balances against their history" }
func (*balanceCmd) Usage() string {
	return `ftk balance [-all] [<account id>...]

  Without arguments, lists the accounts whose balance disagrees with their
  history (-all lists every account). With account ids, checks those accounts.
`
}

func (c *balanceCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.all, "all", false, "list every account, not only the discrepancies")
}

func (c *balanceCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	w, err := openWorkspace()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading workspace: %v\n", err)
		return subcommands.ExitFailure
	}

	var checks []budget.BalanceCheck
	title := "Balance discrepancies"
	ids := f.Args()
	if c.all {
		for _, a := range w.ledger.Accounts() {
			ids = append(ids, a.ID)
		}
	}
	if len(ids) > 0 {
		title = "Balances"
		for _, id := range ids {
			check, err := w.ledger.ValidateAccountBalance(id)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				return subcommands.ExitFailure
			}
			checks = append(checks, check)
		}
	} else {
		checks = w.ledger.ValidateAllAccountBalances()
	}
	printMarkdown(renderer.RenderBalances(renderer.NewBalances(title, checks, displayCurrency())))
	return subcommands.ExitSuccess
}

// recalcCmd overwrites every balance with the one derived from its history.
type recalcCmd struct{}

func (*recalcCmd) Name() string     { return "recalc" }
func (*recalcCmd) Synopsis() string { return "recalculate every account balance from its history" }
func (*recalcCmd) Usage() string {
	return `ftk recalc

  Overwrites every persisted balance with the one derived from settled
  transactions and completed transfers, and shows the balances as they were.
`
}
func (*recalcCmd) SetFlags(*flag.FlagSet) {}

func (*recalcCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var checks []budget.BalanceCheck
	status := openAndSave(func(w *workspace) error {
		checks = w.ledger.RecalculateAllAccountBalances()
		return nil
	})
	if status == subcommands.ExitSuccess {
		printMarkdown(renderer.RenderBalances(renderer.NewBalances("Balances before recalculation", checks, displayCurrency())))
	}
	return status
}
