// Package config assembles the application configuration from a .env
// file, OPICDRILL_* environment variables and command-line overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/abhisek/opicdrill/internal/llm"
	"github.com/abhisek/opicdrill/internal/store"
	"github.com/joho/godotenv"
)

// Config is the resolved application configuration.
type Config struct {
	// DBDriver is one of sqlite, postgres or mysql.
	DBDriver string
	// DBPath is the SQLite database file.
	DBPath string
	// DBURL is the DSN for postgres or mysql.
	DBURL string

	LogLevel string
	// LogFile receives logs while the TUI owns the terminal.
	LogFile string

	// Seed fixes the queue shuffle. Zero means random.
	Seed uint64

	LLM llm.Config
}

// Load reads the given .env files (missing files are skipped; with no
// arguments ".env" in the working directory is tried) and then the
// environment. Variables already set in the environment win over .env.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables and defaults.
func FromEnv() (Config, error) {
	cfg := Config{
		DBDriver: store.DriverSQLite,
		LogLevel: "info",
	}

	if v := os.Getenv("OPICDRILL_DB_DRIVER"); v != "" {
		cfg.DBDriver = v
	}
	cfg.DBURL = os.Getenv("OPICDRILL_DB_URL")

	dbPath, err := store.DefaultDBPath()
	if err != nil {
		return Config{}, err
	}
	cfg.DBPath = dbPath

	if v := os.Getenv("OPICDRILL_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("OPICDRILL_LOG_FILE"); v != "" {
		cfg.LogFile = v
	} else {
		cfg.LogFile = filepath.Join(filepath.Dir(dbPath), "opicdrill.log")
	}

	if v := os.Getenv("OPICDRILL_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("parse OPICDRILL_SEED: %w", err)
		}
		cfg.Seed = seed
	}

	cfg.LLM = resolveLLM()
	return cfg, nil
}

// resolveLLM prefers an explicitly selected provider; otherwise it falls
// back to discovering a provider from standard API key variables.
func resolveLLM() llm.Config {
	cfg := llm.ConfigFromEnv()
	if os.Getenv("OPICDRILL_LLM_PROVIDER") != "" || cfg.Configured() {
		return cfg
	}
	if discovered, ok := llm.DiscoverConfig(); ok {
		discovered.Timeout = cfg.Timeout
		return discovered
	}
	return cfg
}

// DSN returns the data source name for the configured driver.
func (c Config) DSN() string {
	if c.IsSQLite() {
		return c.DBPath
	}
	return c.DBURL
}

// IsSQLite reports whether the configured driver is SQLite.
func (c Config) IsSQLite() bool {
	switch c.DBDriver {
	case "", store.DriverSQLite, "sqlite3":
		return true
	}
	return false
}

// Validate checks the database settings. LLM settings are checked lazily
// because most commands work without a provider.
func (c Config) Validate() error {
	if c.IsSQLite() {
		if c.DBPath == "" {
			return errors.New("database path is empty")
		}
		return nil
	}
	if c.DBURL == "" {
		return fmt.Errorf("OPICDRILL_DB_URL is required for the %s driver", c.DBDriver)
	}
	return nil
}
