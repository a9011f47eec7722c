package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/trogers1052/networth-tracker/internal/config"
	"github.com/trogers1052/networth-tracker/internal/logging"
	"github.com/trogers1052/networth-tracker/internal/quotes"
)

// env is what every subcommand needs: configuration, a stderr logger and the gateway.
// The CLI never uses the Redis cache.
type env struct {
	cfg     *config.Config
	log     *logrus.Logger
	gateway *quotes.Gateway
}

func loadEnv(verbose bool) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	level := "warn"
	if verbose {
		level = "debug"
	}
	log := logging.NewWithOutput(level, "text", os.Stderr)
	return &env{
		cfg:     cfg,
		log:     log,
		gateway: quotes.NewGateway(cfg.Upstream, cfg.Valuation.CryptoQuoteCurrency, nil, 0, log),
	}, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
