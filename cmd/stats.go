package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/opicdrill/internal/library"
	"github.com/abhisek/opicdrill/internal/mastery"
	"github.com/abhisek/opicdrill/internal/store"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show library and practice statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd, setupOptions{})
		if err != nil {
			return err
		}
		defer e.Close()

		now := time.Now()
		fmt.Println("Library")
		fmt.Println(strings.Repeat("─", 60))
		fmt.Printf("%-12s  %6s  %6s  %6s  %8s  %8s\n",
			"Kind", "Total", "Due", "New", "Learning", "Mastered")
		fmt.Println(strings.Repeat("─", 60))
		for _, k := range library.Kinds {
			items := e.lib.Items(k)
			var n, learning, mastered int
			for _, it := range items {
				switch mastery.StateOf(it) {
				case mastery.StateNew:
					n++
				case mastery.StateLearning:
					learning++
				case mastery.StateMastered:
					mastered++
				}
			}
			fmt.Printf("%-12s  %6d  %6d  %6d  %8d  %8d\n",
				k.DisplayName(), len(items), e.policy.CountDue(items, now), n, learning, mastered)
		}

		sessions, err := e.store.EventRepo().QuerySessions(cmd.Context(), store.QueryOpts{Limit: 10})
		if err != nil {
			return fmt.Errorf("query sessions: %w", err)
		}
		fmt.Println()
		if len(sessions) == 0 {
			fmt.Println("No sessions recorded yet.")
			return nil
		}

		fmt.Println("Recent Sessions")
		fmt.Println(strings.Repeat("─", 60))
		for _, s := range sessions {
			state := ""
			if s.Abandoned {
				state = "  (saved early)"
			}
			fmt.Printf("%-16s  %-12s  %3d served  %3d✓ %3d✗  %8s%s\n",
				s.Timestamp.Local().Format("2006-01-02 15:04"),
				library.Kind(s.Kind).DisplayName(),
				s.Served, s.SuccessCount, s.FailCount,
				s.Duration.Round(time.Second), state)
		}
		return nil
	},
}
