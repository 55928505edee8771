package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/gridpick/go/internal/auth"
	"github.com/mcdev12/gridpick/go/internal/config"
	"github.com/spf13/cobra"
)

// newTokenCmd issues bearer tokens for local testing. Accounts live outside
// this service, so there is no login endpoint.
func newTokenCmd(cfg *config.Config) *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Sign a bearer token for a user id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Auth.JWTSecret == "" {
				return errors.New("auth jwt secret is required")
			}
			userID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid user id: %w", err)
			}
			if ttl == 0 {
				ttl = cfg.Auth.TokenTTL
			}
			token, err := auth.NewAuthenticator(cfg.Auth.JWTSecret).Issue(userID, time.Now(), ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to auth.token_ttl)")
	return cmd
}
