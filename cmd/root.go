package cmd

import (
	"fmt"

	"github.com/abhisek/opicdrill/internal/config"
	"github.com/abhisek/opicdrill/internal/store"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "opicdrill",
	Short: "Terminal trainer for the OPIc speaking test",
	Long: "opicdrill drills interview scripts, vocabulary and sentence patterns for the\n" +
		"OPIc English speaking test, and keeps the library topped up with an LLM.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides OPICDRILL_DB env var)")
	rootCmd.PersistentFlags().String("db-driver", "", "Database driver: sqlite, postgres or mysql (overrides OPICDRILL_DB_DRIVER)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error (overrides OPICDRILL_LOG_LEVEL)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(refillCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(patternsCmd)
	rootCmd.AddCommand(libraryCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads .env and the environment, then applies flag overrides.
// --db takes priority over OPICDRILL_DB and the default XDG path.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		if err := store.EnsureDir(p); err != nil {
			return config.Config{}, err
		}
		cfg.DBPath = p
	}
	if d, _ := cmd.Flags().GetString("db-driver"); d != "" {
		cfg.DBDriver = d
	}
	if l, _ := cmd.Flags().GetString("log-level"); l != "" {
		cfg.LogLevel = l
	}
	return cfg, cfg.Validate()
}

// openStore opens the configured database without loading the library.
func openStore(cfg config.Config) (*store.Store, error) {
	st, err := store.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return st, nil
}
