package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/etnz/budget/server"
	"github.com/google/subcommands"
)

// serveCmd serves the workspace over HTTP.
type serveCmd struct {
	addr string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the planning views over HTTP" }
func (*serveCmd) Usage() string {
	return `ftk serve [-addr <host:port>]

  Loads the workspace once and serves read-only JSON views of it:
  /months, /months/{month}, /months/{month}/totals, /accounts/{id}/balance,
  /balances/discrepancies, /remediation/scan, and prometheus /metrics.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "localhost:8080", "listen address")
}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	w, err := openWorkspace()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading workspace: %v\n", err)
		return subcommands.ExitFailure
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := server.New(w.ledger, w.remediator(), w.log)
	if err := s.ListenAndServe(ctx, c.addr); err != nil {
		w.log.Error().Err(err).Msg("server stopped")
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
