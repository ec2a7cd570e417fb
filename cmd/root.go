package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/procurelens/procure-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "procure-cli",
	Short: "Procurement document extraction and scoring",
	Long:  "Extracts structured offers and audit records from procurement documents via Claude, validates them against deterministic rules, and scores offer feasibility.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
