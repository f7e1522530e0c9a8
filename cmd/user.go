package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/duynhne/pos-service/internal/core"
	"github.com/duynhne/pos-service/internal/core/domain"
	"github.com/duynhne/pos-service/internal/core/repository"
	logicv1 "github.com/duynhne/pos-service/internal/logic/v1"
)

const passwordEnv = "POS_USER_PASSWORD"

func newUserCmd() *cobra.Command {
	user := &cobra.Command{
		Use:   "user",
		Short: "Manage shop users",
	}
	user.AddCommand(newUserAddCmd())
	return user
}

func newUserAddCmd() *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "add <username>",
		Short: "Create a user; the password is read from " + passwordEnv,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password := os.Getenv(passwordEnv)
			if password == "" {
				return fmt.Errorf("%s is not set", passwordEnv)
			}

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

			// Sessions are never created here, so the store needs no backend.
			auth := logicv1.NewAuthService(repository.NewUserRepository(pool), nil)
			u, err := auth.CreateUser(ctx, args[0], password, domain.Role(role))
			if errors.Is(err, logicv1.ErrConflict) {
				return fmt.Errorf("user %q already exists", args[0])
			}
			if err != nil {
				return err
			}

			log.Info().Int("user_id", u.ID).Str("username", u.Username).Str("role", string(u.Role)).Msg("User created")
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", string(domain.RoleReception), "user role: manager or reception")
	return cmd
}
