package cmd

import (
	"flag"

	"github.com/etnz/budget"
	"github.com/etnz/budget/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// argPredictors completes the positional arguments of some commands.
var argPredictors = map[string]complete.Predictor{
	"import": predict.Files("*.json"),
	"seed":   predict.Files("*.json"),
	"topic":  predict.Set(append(docs.AllTopics(), "*")),
	"status": predict.Set{
		string(budget.StatusPending),
		string(budget.StatusReceived),
		string(budget.StatusPaid),
		string(budget.StatusCompleted),
	},
}

// flagPredictors completes the values of flags that have a known domain.
var flagPredictors = map[string]complete.Predictor{
	"workspace": predict.Dirs("*"),
	"o":         predict.Files("*.json"),
	"bucket":    predict.Set(budget.BucketOrder()),
	"currency":  predict.Set{"INR", "USD", "EUR", "GBP"},
	"log-level": predict.Set{"debug", "info", "warn", "error"},
}

// Completion returns the shell completion of the ftk command line.
func Completion() *complete.Command {
	root := &complete.Command{
		Sub:   make(map[string]*complete.Command),
		Flags: flagsOf(flag.CommandLine),
	}
	for _, cmds := range Commands() {
		for _, c := range cmds {
			fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
			c.SetFlags(fs)
			root.Sub[c.Name()] = &complete.Command{Flags: flagsOf(fs), Args: argPredictors[c.Name()]}
		}
	}
	for _, name := range []string{"help", "flags", "commands"} {
		root.Sub[name] = &complete.Command{}
	}
	return root
}

type boolFlag interface{ IsBoolFlag() bool }

func flagsOf(fs *flag.FlagSet) map[string]complete.Predictor {
	flags := make(map[string]complete.Predictor)
	fs.VisitAll(func(f *flag.Flag) {
		switch b, ok := f.Value.(boolFlag); {
		case ok && b.IsBoolFlag():
			flags[f.Name] = predict.Nothing
		case flagPredictors[f.Name] != nil:
			flags[f.Name] = flagPredictors[f.Name]
		default:
			flags[f.Name] = predict.Something
		}
	})
	return flags
}
