package cmd

import (
	"fmt"
	"time"

	"github.com/abhisek/opicdrill/internal/library"
	"github.com/spf13/cobra"
)

var refillCmd = &cobra.Command{
	Use:   "refill <kind>",
	Short: "Generate one batch of vocab or patterns now",
	Long: "Runs a single refill for the given kind and waits for it, ignoring the\n" +
		"low-water thresholds. Scripts are authored in the TUI and cannot be refilled.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := library.ParseKind(args[0])
		if err != nil {
			return err
		}
		if kind == library.KindScript {
			return fmt.Errorf("scripts are composed in the app, not generated in bulk")
		}

		e, err := setup(cmd, setupOptions{needLLM: true})
		if err != nil {
			return err
		}
		defer e.Close()

		res, err := e.queue.Refill(cmd.Context(), kind)
		if err != nil {
			return fmt.Errorf("refill %s: %w", kind, err)
		}
		fmt.Printf("%s: received %d, added %d new (%s)\n",
			kind.DisplayName(), res.Received, res.Added, res.Latency.Round(time.Millisecond))
		fmt.Printf("Library now holds %d %s.\n",
			len(e.lib.Items(kind)), kind.DisplayName())
		return nil
	},
}
