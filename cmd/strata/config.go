package main

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hlop3z/strata/internal/sterr"
	"github.com/hlop3z/strata/pkg/strata"
)

// Config represents the strata.yaml configuration file.
// Two logical connection roles are configured here: database_url is the
// migration principal (may create/alter/drop objects), runtime_role is
// the restricted principal the application itself connects as.
type Config struct {
	DatabaseURL   string `yaml:"database_url"`
	MigrationsDir string `yaml:"migrations_dir"`
	TriggersDir   string `yaml:"triggers_dir"`
	Dialect       string `yaml:"dialect"`
	RuntimeRole   string `yaml:"runtime_role"`
	Schema        string `yaml:"schema"`
	LockTimeout   string `yaml:"lock_timeout"`
}

// loadConfig loads configuration from file, env vars, and CLI flags.
// Precedence: CLI flags > env vars > config file > defaults
func loadConfig() (*Config, error) {
	cfg := &Config{
		MigrationsDir: "./migrations",
		TriggersDir:   "./triggers",
	}

	if data, err := os.ReadFile(configFile); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, sterr.Wrap(sterr.ErrConfigInvalid, err, "failed to parse config file").
				With("path", configFile)
		}
		// Handle env var interpolation in database_url
		cfg.DatabaseURL = expandEnvVars(cfg.DatabaseURL)
	}

	// Override with env vars
	if envURL := os.Getenv("DATABASE_URL"); envURL != "" && databaseURL == "" {
		cfg.DatabaseURL = envURL
	}
	if envMigrations := os.Getenv("STRATA_MIGRATIONS_DIR"); envMigrations != "" {
		cfg.MigrationsDir = envMigrations
	}
	if envTriggers := os.Getenv("STRATA_TRIGGERS_DIR"); envTriggers != "" {
		cfg.TriggersDir = envTriggers
	}
	if envRole := os.Getenv("STRATA_RUNTIME_ROLE"); envRole != "" {
		cfg.RuntimeRole = envRole
	}

	// Override with CLI flags (highest priority)
	if databaseURL != "" {
		cfg.DatabaseURL = databaseURL
	}

	return cfg, nil
}

// expandEnvVars expands ${VAR} patterns in a string.
func expandEnvVars(s string) string {
	return os.Expand(s, os.Getenv)
}

// newClient creates a strata client from config.
func newClient(extra ...strata.Option) (*strata.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	if cfg.DatabaseURL == "" {
		return nil, strata.ErrMissingDatabaseURL
	}

	opts := []strata.Option{
		strata.WithDatabaseURL(cfg.DatabaseURL),
		strata.WithMigrationsDir(cfg.MigrationsDir),
		strata.WithTriggersDir(cfg.TriggersDir),
	}

	if cfg.Dialect != "" {
		opts = append(opts, strata.WithDialect(cfg.Dialect))
	}
	if cfg.RuntimeRole != "" {
		opts = append(opts, strata.WithRuntimeRole(cfg.RuntimeRole))
	}
	if cfg.Schema != "" {
		opts = append(opts, strata.WithSchema(cfg.Schema))
	}
	if cfg.LockTimeout != "" {
		d, err := time.ParseDuration(cfg.LockTimeout)
		if err != nil {
			return nil, sterr.Wrap(sterr.ErrConfigInvalid, err, "invalid lock_timeout").
				With("lock_timeout", cfg.LockTimeout).
				WithHelp("use a Go duration such as 30s or 2m")
		}
		opts = append(opts, strata.WithLockTimeout(d))
	}

	opts = append(opts, extra...)
	return strata.New(opts...)
}
