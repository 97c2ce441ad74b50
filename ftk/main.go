// Command ftk manages a personal budget workspace: banks, accounts,
// transactions and the monthly planning views derived from them.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/budget/cmd"
	"github.com/google/subcommands"
	"github.com/joho/godotenv"
)

func main() {
	// a missing .env file is fine, the environment is used as is.
	_ = godotenv.Load()

	name := path.Base(os.Args[0])
	cmd.Completion().Complete(name)

	commander := subcommands.NewCommander(flag.CommandLine, name)
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
