package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/trogers1052/networth-tracker/internal/currency"
	"github.com/trogers1052/networth-tracker/internal/quotes"
	"github.com/trogers1052/networth-tracker/internal/valuation"
)

type convertCmd struct {
	to      string
	verbose bool
}

func (*convertCmd) Name() string     { return "convert" }
func (*convertCmd) Synopsis() string { return "convert an amount between currencies" }
func (*convertCmd) Usage() string {
	return `networthctl convert [-to <currency>] <amount> <from>

  Converts <amount> from <from> into -to (defaults to the reporting currency).
`
}

func (c *convertCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.to, "to", "", "Target currency. Defaults to REPORTING_CURRENCY.")
	f.BoolVar(&c.verbose, "v", false, "Log upstream lookups to stderr.")
}

func (c *convertCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	e, err := loadEnv(c.verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	amount, err := quotes.ParseAmount(f.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	to := c.to
	if to == "" {
		to = e.cfg.Valuation.ReportingCurrency
	}

	converted, err := currency.NewNormalizer(e.gateway).Convert(ctx, amount, f.Arg(1), to)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("%s = %s\n", valuation.FormatAmount(amount, f.Arg(1)), valuation.FormatAmount(converted, to))
	return subcommands.ExitSuccess
}
