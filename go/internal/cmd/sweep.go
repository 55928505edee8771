package main

import (
	"context"
	"encoding/json"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/gridpick/go/internal/config"
	"github.com/spf13/cobra"
)

func newSweepCmd(cfg *config.Config) *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Autopick for turns whose deadline has passed",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			services, err := setupServices(ctx, *cfg, clockwork.NewRealClock(), serviceOptions{})
			if err != nil {
				return err
			}
			defer services.Close()

			if !once {
				return services.Sweeper.Run(ctx)
			}
			return sweepOnce(ctx, cmd, services)
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "run a single sweep and print the result")
	return cmd
}

func sweepOnce(ctx context.Context, cmd *cobra.Command, services *Services) error {
	result, err := services.Sweeper.SweepExpiredTurns(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
