package main

import (
	"fmt"
	"os"

	"github.com/mcdev12/gridpick/go/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
)

const programName = "gridpick"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configFile string
		cfg        config.Config
	)

	root := &cobra.Command{
		Use:           programName,
		Short:         "Race-by-race driver draft engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(configFile)
			if err != nil {
				return err
			}
			cfg = loaded
			if err := setupLogging(cfg.Logging); err != nil {
				return err
			}
			if _, err := maxprocs.Set(maxprocs.Logger(func(format string, v ...any) {
				log.Debug().Str("component", programName).Msg(fmt.Sprintf(format, v...))
			})); err != nil {
				log.Warn().Err(err).Msg("failed to set GOMAXPROCS")
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "path to a YAML config file")

	root.AddCommand(
		newServeCmd(&cfg),
		newSweepCmd(&cfg),
		newValidateTeamsCmd(&cfg),
		newTokenCmd(&cfg),
	)
	return root
}

func setupLogging(cfg config.LoggingConfig) error {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs

	switch cfg.Format {
	case "console":
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	case "json", "":
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	default:
		return fmt.Errorf("invalid log format %q", cfg.Format)
	}
	return nil
}
