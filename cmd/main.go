package main

import (
	"os"
	_ "time/tzdata"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/duynhne/pos-service/config"
	"github.com/duynhne/pos-service/internal/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "pos-service",
		Short:        "Front-desk point of sale for a massage shop",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newMigrateCmd(), newUserCmd())
	return root
}

// loadConfig loads and validates configuration and sets up logging.
func loadConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger.Setup(cfg.Logging.Level)
	log.Debug().Str("env", cfg.Service.Env).Msg("Configuration loaded")
	return cfg, nil
}
