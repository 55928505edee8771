package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/gridpick/go/internal/config"
	"github.com/mcdev12/gridpick/go/internal/draft/teambalance"
	"github.com/spf13/cobra"
)

type validateTeamsOptions struct {
	league       string
	players      int
	constructors int
	sizes        []int
}

func newValidateTeamsCmd(cfg *config.Config) *cobra.Command {
	var opts validateTeamsOptions

	cmd := &cobra.Command{
		Use:   "validate-teams",
		Short: "Check whether a set of team sizes can still be balanced",
		Long: "Checks prospective team sizes either against a stored league (--league) " +
			"or against explicit --players and --constructors counts.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.league != "" {
				return validateLeagueTeams(cmd, *cfg, opts)
			}
			return validateTeamSizes(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.league, "league", "", "league id to read the member count and season from")
	cmd.Flags().IntVar(&opts.players, "players", 0, "total players in the league")
	cmd.Flags().IntVar(&opts.constructors, "constructors", 0, "constructors in the season")
	cmd.Flags().IntSliceVar(&opts.sizes, "sizes", nil, "prospective team sizes, e.g. 2,2,1")
	return cmd
}

func validateTeamSizes(cmd *cobra.Command, opts validateTeamsOptions) error {
	if opts.players <= 0 || opts.constructors <= 0 {
		return errors.New("--players and --constructors are required without --league")
	}
	maxTeams, err := teambalance.MaxTeams(opts.players, opts.constructors)
	if err != nil {
		return err
	}
	if err := teambalance.Validate(opts.players, opts.constructors, opts.sizes); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "feasible: %d players, up to %d teams, sizes %v\n", opts.players, maxTeams, opts.sizes)
	return nil
}

func validateLeagueTeams(cmd *cobra.Command, cfg config.Config, opts validateTeamsOptions) error {
	leagueID, err := uuid.Parse(opts.league)
	if err != nil {
		return fmt.Errorf("invalid league id: %w", err)
	}

	services, err := setupServices(cmd.Context(), cfg, clockwork.NewRealClock(), serviceOptions{})
	if err != nil {
		return err
	}
	defer services.Close()

	result, err := services.Leagues.ValidateTeamChange(cmd.Context(), leagueID, opts.sizes)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
