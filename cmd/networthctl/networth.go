package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
	"github.com/trogers1052/networth-tracker/internal/currency"
	"github.com/trogers1052/networth-tracker/internal/models"
	"github.com/trogers1052/networth-tracker/internal/networth"
	"github.com/trogers1052/networth-tracker/internal/report"
	"github.com/trogers1052/networth-tracker/internal/valuation"
)

type networthCmd struct {
	file    string
	jsonOut bool
	verbose bool
}

func (*networthCmd) Name() string     { return "networth" }
func (*networthCmd) Synopsis() string { return "value a JSON file of holdings and print the breakdown" }
func (*networthCmd) Usage() string {
	return `networthctl networth [-f <file>] [-json]

  Reads a JSON array of holdings (stdin when -f is "-"), values every one of them
  and prints the total together with the breakdown by type, institution and currency.

  Each record has institution, type, symbol and quantity. Older exports that carry
  the value of a cash-like holding as "amount" (a number or a display string such
  as "€1,080.00") are accepted too.
`
}

func (c *networthCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "f", "holdings.json", "Holdings file, or - for stdin.")
	f.BoolVar(&c.jsonOut, "json", false, "Print the full report as JSON.")
	f.BoolVar(&c.verbose, "v", false, "Log upstream lookups to stderr.")
}

func (c *networthCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := loadEnv(c.verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	var in io.Reader = os.Stdin
	if c.file != "-" {
		file, err := os.Open(c.file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open holdings file: %v\n", err)
			return subcommands.ExitFailure
		}
		defer file.Close()
		in = file
	}

	holdings, err := decodeHoldings(ctx, in, e.gateway)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	v := e.cfg.Valuation
	builder := report.NewBuilder(nil,
		valuation.NewValuer(e.gateway, v.CryptoQuoteCurrency, v.Concurrency, e.log),
		networth.NewAggregator(currency.NewNormalizer(e.gateway), v.ReportingCurrency, v.Palette, v.Concurrency, e.log),
		e.log)
	rep := builder.Build(ctx, "local", holdings)

	if c.jsonOut {
		if err := printJSON(os.Stdout, rep); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	printReport(os.Stdout, rep)
	return subcommands.ExitSuccess
}

// record is one entry of a holdings file
type record struct {
	Institution string           `json:"institution"`
	Type        models.AssetType `json:"type"`
	Symbol      string           `json:"symbol"`
	Currency    string           `json:"currency"`
	Quantity    json.RawMessage  `json:"quantity"`
	Amount      json.RawMessage  `json:"amount"`
}

type currencyResolver interface {
	ResolveCurrency(ctx context.Context, assetType models.AssetType, symbol string) string
}

// decodeHoldings reads a holdings file. Records without a currency get one resolved the
// same way the server does at write time.
func decodeHoldings(ctx context.Context, r io.Reader, resolver currencyResolver) ([]models.Holding, error) {
	var records []record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode holdings file: %w", err)
	}

	holdings := make([]models.Holding, 0, len(records))
	for i, rec := range records {
		h, err := rec.holding()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		h.ID = fmt.Sprintf("%d", i+1)
		if h.Currency == "" {
			h.Currency = resolver.ResolveCurrency(ctx, h.Type, h.Symbol)
		}
		holdings = append(holdings, h)
	}
	return holdings, nil
}

func (rec record) holding() (models.Holding, error) {
	if !rec.Type.Valid() {
		return models.Holding{}, fmt.Errorf("unknown asset type %q", rec.Type)
	}
	h := models.Holding{
		Institution: strings.TrimSpace(rec.Institution),
		Type:        rec.Type,
		Symbol:      strings.ToUpper(strings.TrimSpace(rec.Symbol)),
		Currency:    strings.ToUpper(strings.TrimSpace(rec.Currency)),
	}

	raw := rec.Quantity
	if len(raw) == 0 && !rec.Type.Priced() {
		raw = rec.Amount
	}
	quantity, err := parseLoose(raw)
	if err != nil {
		return models.Holding{}, err
	}
	h.Quantity = quantity

	// legacy cash records carry the currency instead of a symbol
	if h.Symbol == "" && !rec.Type.Priced() {
		h.Symbol = h.Currency
	}
	return h, nil
}

// parseLoose accepts a JSON number, a numeric string or a display string
func parseLoose(raw json.RawMessage) (decimal.Decimal, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return decimal.Zero, fmt.Errorf("missing quantity")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		var d decimal.Decimal
		if err := json.Unmarshal(raw, &d); err != nil {
			return decimal.Zero, fmt.Errorf("invalid quantity %s", raw)
		}
		return d, nil
	}
	if d, err := decimal.NewFromString(strings.TrimSpace(s)); err == nil {
		return d, nil
	}
	return networth.ParseDisplayAmount(s), nil
}

func printReport(w io.Writer, rep *models.Report) {
	nw := rep.NetWorth
	for _, vh := range rep.Holdings {
		display := vh.Display
		if !vh.Available {
			display += " (unavailable)"
		}
		fmt.Fprintf(w, "%-20s %-8s %-8s %s\n", vh.Institution, vh.Type, vh.Symbol, display)
	}
	fmt.Fprintf(w, "\nNet worth: %s\n", valuation.FormatAmount(nw.Total, nw.ReportingCurrency))
	for _, section := range []struct {
		title  string
		points []models.ChartDataPoint
	}{
		{"By type", nw.ByType},
		{"By institution", nw.ByInstitution},
		{"By currency", nw.ByCurrency},
	} {
		fmt.Fprintf(w, "\n%s:\n", section.title)
		for _, p := range section.points {
			fmt.Fprintf(w, "  %-20s %s\n", p.Name, valuation.FormatAmount(p.Value, nw.ReportingCurrency))
		}
	}
}
