// Package cmd implements the CLI application to manage a budget workspace.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/budget"
	"github.com/etnz/budget/internal/logger"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for group, cmds := range Commands() {
		for _, cmd := range cmds {
			c.Register(cmd, group)
		}
	}
}

// Commands returns every subcommand, by group.
func Commands() map[string][]subcommands.Command {
	return map[string][]subcommands.Command{
		"ledger": {
			&bankCmd{},
			&accountCmd{},
			&transactionCmd{kind: budget.Income},
			&transactionCmd{kind: budget.Expense},
			&transactionCmd{kind: budget.Savings},
			&transferCmd{},
			&templateCmd{},
			&statusCmd{},
			&deleteCmd{},
		},
		"balances": {
			&balanceCmd{},
			&recalcCmd{},
		},
		"planning": {
			&monthCmd{},
			&totalsCmd{},
			&scanCmd{},
			&fixCmd{},
			&overrideCmd{},
		},
		"data": {
			&exportCmd{},
			&importCmd{},
			&seedCmd{},
		},
		"server": {
			&serveCmd{},
		},
		"documentation": {
			&topicCmd{},
		},
	}
}

// Environment variables providing the defaults of the global flags.
const (
	EnvWorkspace = "BUDGET_WORKSPACE"
	EnvCurrency  = "BUDGET_CURRENCY"
	EnvLogLevel  = "BUDGET_LOG_LEVEL"
)

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var workspaceDir = flag.String("workspace", "", "Path to the workspace folder (default $"+EnvWorkspace+" or the current folder)")
var currency = flag.String("currency", "", "Display currency (default $"+EnvCurrency+" or "+budget.DefaultCurrency+")")
var logLevel = flag.String("log-level", "", "Log level: debug, info, warn, error (default $"+EnvLogLevel+" or info)")

// stdout is where commands print their reports.
var stdout io.Writer = os.Stdout

// flagOrEnv returns the flag value, then the environment variable, then def.
func flagOrEnv(flagValue, env, def string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv(env); v != "" {
		return v
	}
	return def
}

func workspacePath() string { return flagOrEnv(*workspaceDir, EnvWorkspace, ".") }
func displayCurrency() string {
	return flagOrEnv(*currency, EnvCurrency, budget.DefaultCurrency)
}
func newLogger() zerolog.Logger { return logger.New(flagOrEnv(*logLevel, EnvLogLevel, "")) }

// Files of a workspace.
const (
	ledgerFile    = "ledger.json"
	overridesFile = "overrides.jsonl"
	snapshotsFile = "snapshots.json"
)

// workspace is the ledger, the remaining cash overrides and the stored
// planning views, as loaded from a workspace folder.
type workspace struct {
	dir       string
	log       zerolog.Logger
	ledger    *budget.Ledger
	overrides *budget.Overrides
	snapshots *budget.Snapshots
}

// openWorkspace loads the workspace. Missing files stand for empty collections.
func openWorkspace() (*workspace, error) {
	w := &workspace{dir: workspacePath(), log: newLogger()}

	var err error
	w.ledger, err = decodeFile(w.path(ledgerFile), func(r io.Reader) (*budget.Ledger, error) {
		return budget.DecodeLedger(r, budget.WithLogger(w.log))
	})
	if errors.Is(err, fs.ErrNotExist) {
		w.log.Debug().Str("file", w.path(ledgerFile)).Msg("ledger does not exist, starting an empty one")
		w.ledger, err = budget.NewLedger(budget.WithLogger(w.log)), nil
	}
	if err != nil {
		return nil, err
	}

	w.overrides, err = decodeFile(w.path(overridesFile), budget.DecodeOverrides)
	if errors.Is(err, fs.ErrNotExist) {
		w.overrides, err = budget.NewOverrides(), nil
	}
	if err != nil {
		return nil, err
	}

	w.snapshots, err = decodeFile(w.path(snapshotsFile), budget.DecodeSnapshots)
	if errors.Is(err, fs.ErrNotExist) {
		w.snapshots, err = budget.NewSnapshots(), nil
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (w *workspace) path(name string) string { return filepath.Join(w.dir, name) }

// remediator returns the remediation engine over the workspace.
func (w *workspace) remediator() *budget.Remediator {
	return budget.NewRemediator(w.ledger, w.overrides, w.snapshots, budget.WithRemediationLogger(w.log))
}

// save writes every file of the workspace.
func (w *workspace) save() error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return err
	}
	return errors.Join(
		encodeFile(w.path(ledgerFile), func(f io.Writer) error { return budget.EncodeLedger(f, w.ledger) }),
		encodeFile(w.path(overridesFile), func(f io.Writer) error { return budget.EncodeOverrides(f, w.overrides) }),
		encodeFile(w.path(snapshotsFile), func(f io.Writer) error { return budget.EncodeSnapshots(f, w.snapshots) }),
	)
}

func decodeFile[T any](name string, decode func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(name)
	if err != nil {
		return zero, err
	}
	defer f.Close()
	v, err := decode(f)
	if err != nil {
		return zero, fmt.Errorf("reading %s: %w", name, err)
	}
	return v, nil
}

// encodeFile writes to a temporary file renamed over name once complete.
func encodeFile(name string, encode func(io.Writer) error) error {
	tmp := name + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := encode(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, name)
}

// openAndSave loads the workspace, applies change and saves the workspace back.
func openAndSave(change func(w *workspace) error) subcommands.ExitStatus {
	w, err := openWorkspace()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading workspace: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := change(w); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := w.save(); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving workspace: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// printMarkdown renders md for the terminal when stdout is one, and prints it
// raw otherwise.
func printMarkdown(md string) {
	if f, ok := stdout.(*os.File); ok && isTerminal(f) {
		r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
		if err == nil {
			if out, err := r.Render(md); err == nil {
				fmt.Fprint(stdout, out)
				return
			}
		}
	}
	fmt.Fprint(stdout, md)
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}
