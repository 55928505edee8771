// Package config assembles the process configuration once at startup from
// compiled defaults, an optional YAML file, a .env file and GRIDPICK_*
// environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/mcdev12/gridpick/go/internal/draft/deadline"
	"gopkg.in/yaml.v3"
)

// EnvPrefix namespaces environment keys, e.g. GRIDPICK_SWEEPER_INTERVAL or
// GRIDPICK_AUTH_JWT_SECRET.
const EnvPrefix = "GRIDPICK"

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Listen          string         `yaml:"listen"`
	Store           string         `yaml:"store"`
	MaintenanceMode bool           `yaml:"maintenance_mode" split_words:"true"`
	Database        DatabaseConfig `yaml:"database"`
	NATS            NATSConfig     `yaml:"nats"`
	Auth            AuthConfig     `yaml:"auth"`
	Sweeper         SweeperConfig  `yaml:"sweeper"`
	Draft           DraftConfig    `yaml:"draft"`
	Logging         LoggingConfig  `yaml:"logging"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode" split_words:"true"`
}

// NATSConfig leaves URL empty to run without a broker.
type NATSConfig struct {
	URL    string `yaml:"url"`
	Stream string `yaml:"stream"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret" split_words:"true"`
	TokenTTL  time.Duration `yaml:"token_ttl" split_words:"true"`
}

type SweeperConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
	Workers  int           `yaml:"workers"`
}

type DraftConfig struct {
	FirstHalfLead time.Duration `yaml:"first_half_lead" split_words:"true"`
	StandInWindow time.Duration `yaml:"stand_in_window" split_words:"true"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Default() Config {
	return Config{
		Listen: ":8080",
		Store:  StorePostgres,
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "postgres",
			Password: "postgres",
			Name:     "gridpick",
			SSLMode:  "disable",
		},
		NATS: NATSConfig{
			Stream: "DRAFT_TURNS",
		},
		Auth: AuthConfig{
			TokenTTL: 24 * time.Hour,
		},
		Sweeper: SweeperConfig{
			Enabled:  true,
			Interval: time.Minute,
			Workers:  4,
		},
		Draft: DraftConfig{
			FirstHalfLead: deadline.DefaultFirstHalfLead,
			StandInWindow: deadline.DefaultStandInWindow,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration. path may be empty; a missing .env file is
// not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Store {
	case StorePostgres, StoreMemory:
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	if c.Sweeper.Interval <= 0 {
		return fmt.Errorf("sweeper interval must be positive")
	}
	if c.Sweeper.Workers < 1 {
		return fmt.Errorf("sweeper workers must be at least 1")
	}
	if c.Draft.FirstHalfLead < 0 || c.Draft.StandInWindow < 0 {
		return fmt.Errorf("draft durations must not be negative")
	}
	return nil
}

// DSN returns the Postgres connection URL.
func (c DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Name,
		RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
	}
	return u.String()
}
