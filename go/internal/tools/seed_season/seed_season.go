package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mcdev12/gridpick/go/internal/config"
	"gopkg.in/yaml.v3"
)

// raceNamespace keeps race ids stable across reseeds.
var raceNamespace = uuid.MustParse("6f1b8a52-4f0e-4d7a-9a43-2c7f0a3e51d9")

// Calendar mirrors the season YAML file
type Calendar struct {
	Season  int           `yaml:"season"`
	Races   []RaceEntry   `yaml:"races"`
	Drivers []DriverEntry `yaml:"drivers"`
}

type RaceEntry struct {
	Round int       `yaml:"round"`
	Name  string    `yaml:"name"`
	FP1   time.Time `yaml:"fp1"`
	Start time.Time `yaml:"start"`
}

type DriverEntry struct {
	ID          int    `yaml:"id"`
	Code        string `yaml:"code"`
	Name        string `yaml:"name"`
	Constructor string `yaml:"constructor"`
}

func raceID(season, round int) uuid.UUID {
	return uuid.NewSHA1(raceNamespace, fmt.Appendf(nil, "%d/%d", season, round))
}

func parseCalendar(data []byte) (*Calendar, error) {
	var cal Calendar
	if err := yaml.Unmarshal(data, &cal); err != nil {
		return nil, fmt.Errorf("unmarshal YAML: %w", err)
	}
	if cal.Season <= 0 {
		return nil, fmt.Errorf("season is required")
	}

	rounds := make(map[int]bool, len(cal.Races))
	for _, r := range cal.Races {
		if r.Round < 1 || rounds[r.Round] {
			return nil, fmt.Errorf("race %q: round %d is invalid or repeated", r.Name, r.Round)
		}
		rounds[r.Round] = true
		if !r.FP1.Before(r.Start) {
			return nil, fmt.Errorf("race %q: fp1 must be before start", r.Name)
		}
	}

	ids := make(map[int]bool, len(cal.Drivers))
	for _, d := range cal.Drivers {
		if ids[d.ID] {
			return nil, fmt.Errorf("driver %d is repeated", d.ID)
		}
		ids[d.ID] = true
		if d.Constructor == "" {
			return nil, fmt.Errorf("driver %d has no constructor", d.ID)
		}
	}
	return &cal, nil
}

func seed(ctx context.Context, pool *pgxpool.Pool, cal *Calendar) (races, drivers int64, err error) {
	batch := &pgx.Batch{}
	for _, r := range cal.Races {
		batch.Queue(`
            INSERT INTO races (id, season, round, name, fp1_time, start_time)
            VALUES ($1,$2,$3,$4,$5,$6)
            ON CONFLICT (season, round) DO NOTHING
        `, raceID(cal.Season, r.Round), cal.Season, r.Round, r.Name, r.FP1, r.Start)
	}
	for _, d := range cal.Drivers {
		batch.Queue(`
            INSERT INTO drivers (id, season, code, name, constructor)
            VALUES ($1,$2,$3,$4,$5)
            ON CONFLICT (season, id) DO NOTHING
        `, d.ID, cal.Season, d.Code, d.Name, d.Constructor)
	}

	err = pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		results := tx.SendBatch(ctx, batch)
		defer results.Close()
		for i := 0; i < batch.Len(); i++ {
			tag, err := results.Exec()
			if err != nil {
				return fmt.Errorf("statement %d: %w", i, err)
			}
			if i < len(cal.Races) {
				races += tag.RowsAffected()
			} else {
				drivers += tag.RowsAffected()
			}
		}
		return results.Close()
	})
	return races, drivers, err
}

func main() {
	path := flag.String("file", "go/internal/assets/season_2025.yaml", "season calendar YAML")
	configPath := flag.String("config", "", "gridpick config file")
	flag.Parse()

	// 1) Load the calendar
	data, err := os.ReadFile(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read YAML: %v\n", err)
		os.Exit(1)
	}
	cal, err := parseCalendar(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid calendar: %v\n", err)
		os.Exit(1)
	}

	// 2) Connect with the same settings the server uses
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	// 3) Insert in one transaction
	races, drivers, err := seed(ctx, pool, cal)
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf(
		"Season %d seed complete: %d/%d races inserted, %d/%d drivers inserted\n",
		cal.Season, races, len(cal.Races), drivers, len(cal.Drivers),
	)
}
