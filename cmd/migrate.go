package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/duynhne/pos-service/internal/core"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			pool, err := core.Connect(ctx, cfg.Database.URL, cfg.Database.MaxConns)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer pool.Close()

			if err := core.Migrate(ctx, pool); err != nil {
				return err
			}
			log.Info().Msg("Schema up to date")
			return nil
		},
	}
}
