package cmd

import (
	"fmt"
	"os"

	"github.com/abhisek/opicdrill/internal/app"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the practice TUI (default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	e, err := setup(cmd, setupOptions{fileLog: true})
	if err != nil {
		return err
	}
	defer e.Close()

	if e.provider == nil {
		fmt.Fprintln(os.Stderr, "LLM provider not configured. AI features will be unavailable.")
	}
	e.logger.Info("starting", "version", version)
	return app.Run(e.deps())
}
