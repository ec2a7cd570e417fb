package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"

	"github.com/procurelens/procure-cli/internal/config"
	"github.com/procurelens/procure-cli/internal/extract"
	"github.com/procurelens/procure-cli/internal/feasibility"
	"github.com/procurelens/procure-cli/internal/store"
	"github.com/procurelens/procure-cli/pkg/anthropic"
)

// openStore builds the configured store backend and runs migrations.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch cfg.Store.Driver {
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	case "sqlite", "":
		st, err = store.NewSQLite(cfg.Store.Path)
	default:
		return nil, eris.Errorf("unknown store driver: %s", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

// newExtractor wires the Anthropic client into an extractor. A missing
// API key yields an extractor that fails with a configuration error on
// first use.
func newExtractor(cfg *config.Config) *extract.Extractor {
	var client anthropic.Client
	if cfg.Anthropic.Key != "" {
		client = anthropic.NewClient(cfg.Anthropic.Key)
	}
	return extract.NewExtractor(client, cfg.Anthropic.Model, cfg.Anthropic.MaxTokens)
}

// loadScoringWeights resolves the weights file from the flag, then the
// config, then the built-in defaults.
func loadScoringWeights(flagPath string, cfg *config.Config) (feasibility.Weights, error) {
	path := flagPath
	if path == "" {
		path = cfg.Scoring.WeightsFile
	}
	if path == "" {
		return feasibility.DefaultWeights(), nil
	}
	return feasibility.LoadWeights(path)
}

func jsonMarshal(v any) (json.RawMessage, error) {
	data, err := json.Marshal(v)
	return data, eris.Wrap(err, "marshal payload")
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(v), "encode output")
}
