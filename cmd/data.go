package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/etnz/budget"
	"github.com/google/subcommands"
)

// printJSON prints v indented on stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exportCmd writes a backup document of the ledger.
type exportCmd struct {
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export the ledger as a backup document" }
func (*exportCmd) Usage() string {
	return `ftk export [-o <file>]

  Writes every collection of the ledger as a versioned backup document.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "output file (default stdout)")
}

func (c *exportCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	w, err := openWorkspace()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading workspace: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.output == "" {
		err = budget.ExportBackup(stdout, w.ledger, time.Now())
	} else {
		err = encodeFile(c.output, func(f io.Writer) error { return budget.ExportBackup(f, w.ledger, time.Now()) })
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error exporting: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// importCmd reads a backup document into the ledger.
type importCmd struct {
	merge bool
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import a backup document into the ledger" }
func (*importCmd) Usage() string {
	return `ftk import [-merge] <file>

  Replaces the ledger with the backup (or merges it with -merge, keeping local
  records on id conflicts). Records referencing missing records are reported
  and left out; balances are then recalculated from the imported history.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.merge, "merge", false, "keep local records, skip incoming ones with the same id")
}

func (c *importCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one backup file is required.")
		return subcommands.ExitUsageError
	}
	mode := budget.Replace
	if c.merge {
		mode = budget.Merge
	}
	var report budget.ImportReport
	status := openAndSave(func(w *workspace) error {
		var err error
		report, err = decodeFile(f.Arg(0), func(r io.Reader) (budget.ImportReport, error) {
			return budget.ImportBackup(r, w.ledger, mode)
		})
		return err
	})
	if status == subcommands.ExitSuccess {
		printJSON(report)
	}
	return status
}

// seedCmd stores planning views exported from the former spreadsheet.
type seedCmd struct{}

func (*seedCmd) Name() string     { return "seed" }
func (*seedCmd) Synopsis() string { return "import planning views from a worksheet export" }
func (*seedCmd) Usage() string {
	return `ftk seed <file>

  Reads a JSON planning seed (one block per month) and stores each month as a
  planning view of the workspace. Rows are matched to accounts by name.
  'ftk scan' then shows where the stored values disagree with the ledger.
`
}
func (*seedCmd) SetFlags(*flag.FlagSet) {}

func (*seedCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one seed file is required.")
		return subcommands.ExitUsageError
	}
	var report budget.SeedReport
	status := openAndSave(func(w *workspace) error {
		months, err := decodeFile(f.Arg(0), budget.DecodePlanningSeed)
		if err != nil {
			return err
		}
		report, err = w.snapshots.LoadSeed(months, w.ledger.Accounts())
		return err
	})
	if status == subcommands.ExitSuccess {
		printJSON(report)
	}
	return status
}
