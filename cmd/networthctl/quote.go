package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/trogers1052/networth-tracker/internal/quotes"
	"github.com/trogers1052/networth-tracker/internal/valuation"
)

type quoteCmd struct {
	crypto   bool
	currency bool
	jsonOut  bool
	verbose  bool
}

func (*quoteCmd) Name() string     { return "quote" }
func (*quoteCmd) Synopsis() string { return "value a quantity of a stock, bond or crypto asset" }
func (*quoteCmd) Usage() string {
	return `networthctl quote [-crypto] [-json] <symbol> <quantity>
networthctl quote -currency <symbol>

  Looks up the current price of <symbol> and prints the value of <quantity> units.
  With -currency only the trading currency of the ticker is printed.
`
}

func (c *quoteCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.crypto, "crypto", false, "Price the symbol on the crypto spot provider.")
	f.BoolVar(&c.currency, "currency", false, "Print the trading currency of the ticker instead of a value.")
	f.BoolVar(&c.jsonOut, "json", false, "Print the raw quote as JSON.")
	f.BoolVar(&c.verbose, "v", false, "Log upstream lookups to stderr.")
}

func (c *quoteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := loadEnv(c.verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if c.currency {
		if f.NArg() != 1 {
			f.Usage()
			return subcommands.ExitUsageError
		}
		currency, err := e.gateway.Currency(ctx, f.Arg(0))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		fmt.Println(currency)
		return subcommands.ExitSuccess
	}

	if f.NArg() != 2 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	quantity, err := quotes.ParseQuantity(f.Arg(1))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	var quote quotes.Quote
	if c.crypto {
		quote, err = e.gateway.CryptoAmount(ctx, f.Arg(0), quantity)
	} else {
		quote, err = e.gateway.Amount(ctx, f.Arg(0), quantity)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if c.jsonOut {
		if err := printJSON(os.Stdout, quote); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	fmt.Printf("%s x %s @ %s = %s (%s)\n", quote.Quantity, quote.Symbol,
		quote.Price, valuation.FormatAmount(quote.Amount, quote.Currency), quote.Source)
	return subcommands.ExitSuccess
}
