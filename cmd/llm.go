package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/abhisek/opicdrill/internal/llm"
	"github.com/abhisek/opicdrill/internal/store"
	"github.com/spf13/cobra"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect the recorded generation requests",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent requests, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		return withEvents(cmd, func(repo store.EventRepo) error {
			events, err := repo.QueryLLMEvents(cmd.Context(), store.QueryOpts{Limit: limit, Purpose: purpose})
			if err != nil {
				return fmt.Errorf("query requests: %w", err)
			}
			printRequests(cmd.OutOrStdout(), events)
			return nil
		})
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the prompt and raw answer of one request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid request id %q", args[0])
		}
		return withEvents(cmd, func(repo store.EventRepo) error {
			e, err := repo.GetLLMEvent(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("get request: %w", err)
			}
			if e == nil {
				return fmt.Errorf("request %d not found", id)
			}
			printRequest(cmd.OutOrStdout(), e)
			return nil
		})
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show token usage per purpose and estimated spend per model",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEvents(cmd, func(repo store.EventRepo) error {
			byPurpose, err := repo.LLMUsageByPurpose(cmd.Context())
			if err != nil {
				return fmt.Errorf("usage by purpose: %w", err)
			}
			byModel, err := repo.LLMUsageByModel(cmd.Context())
			if err != nil {
				return fmt.Errorf("usage by model: %w", err)
			}
			printUsage(cmd.OutOrStdout(), byPurpose, byModel)
			return nil
		})
	},
}

// withEvents opens the configured database without the library or a
// provider, which is all the inspection commands need.
func withEvents(cmd *cobra.Command, fn func(store.EventRepo) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st.EventRepo())
}

func rule(w io.Writer, n int) {
	fmt.Fprintln(w, strings.Repeat("─", n))
}

func printRequests(w io.Writer, events []store.LLMRequestEvent) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No requests recorded.")
		return
	}
	fmt.Fprintf(w, "%5s  %-16s  %-16s  %-26s  %6s  %6s  %6s\n",
		"ID", "Time", "Purpose", "Model", "In", "Out", "Ms")
	rule(w, 96)
	for _, e := range events {
		mark := ""
		if !e.Success {
			mark = "  failed"
		}
		fmt.Fprintf(w, "%5d  %-16s  %-16s  %-26s  %6d  %6d  %6d%s\n",
			e.ID, e.Timestamp.Local().Format("2006-01-02 15:04"),
			truncate(e.Purpose, 16), truncate(e.Model, 26),
			e.InputTokens, e.OutputTokens, e.LatencyMs, mark)
	}
}

func printRequest(w io.Writer, e *store.LLMRequestEvent) {
	status := "ok"
	if !e.Success {
		status = "failed: " + e.ErrorMessage
	}
	fmt.Fprintf(w, "Request %d  %s\n", e.ID, e.Timestamp.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "%s / %s for %s\n", e.Provider, e.Model, e.Purpose)
	fmt.Fprintf(w, "%d in, %d out, %dms, %s\n", e.InputTokens, e.OutputTokens, e.LatencyMs, status)

	for _, part := range []struct{ title, body string }{
		{"PROMPT", e.RequestBody},
		{"ANSWER", e.ResponseBody},
	} {
		fmt.Fprintln(w)
		fmt.Fprintln(w, part.title)
		rule(w, 60)
		if part.body == "" {
			fmt.Fprintln(w, "(empty)")
			continue
		}
		fmt.Fprintln(w, strings.TrimRight(part.body, "\n"))
	}
}

func printUsage(w io.Writer, byPurpose, byModel []store.LLMUsage) {
	if len(byPurpose) == 0 {
		fmt.Fprintln(w, "No requests recorded.")
		return
	}

	fmt.Fprintf(w, "%-18s  %6s  %10s  %10s  %8s\n", "Purpose", "Calls", "In", "Out", "Avg ms")
	rule(w, 60)
	var calls, in, out int
	for _, u := range byPurpose {
		fmt.Fprintf(w, "%-18s  %6d  %10d  %10d  %8d\n",
			truncate(u.Purpose, 18), u.Calls, u.InputTokens, u.OutputTokens, u.AvgLatencyMs)
		calls += u.Calls
		in += u.InputTokens
		out += u.OutputTokens
	}
	rule(w, 60)
	fmt.Fprintf(w, "%-18s  %6d  %10d  %10d\n", "Total", calls, in, out)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-30s  %6s  %10s\n", "Model", "Calls", "Est. USD")
	rule(w, 50)
	var total float64
	var unpriced []string
	for _, u := range byModel {
		price, ok := llm.PriceOf(u.Model)
		if !ok {
			unpriced = append(unpriced, u.Model)
			fmt.Fprintf(w, "%-30s  %6d  %10s\n", truncate(u.Model, 30), u.Calls, "-")
			continue
		}
		cost := price.Cost(u.InputTokens, u.OutputTokens)
		total += cost
		fmt.Fprintf(w, "%-30s  %6d  %10s\n", truncate(u.Model, 30), u.Calls, formatUSD(cost))
	}
	rule(w, 50)
	fmt.Fprintf(w, "%-30s  %6s  %10s\n", "Total", "", formatUSD(total))
	if len(unpriced) > 0 {
		fmt.Fprintf(w, "No price known for %s.\n", strings.Join(unpriced, ", "))
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

func formatUSD(v float64) string {
	if v > 0 && v < 0.01 {
		return fmt.Sprintf("$%.4f", v)
	}
	return fmt.Sprintf("$%.2f", v)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of requests to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Only show one purpose (question, vocab-batch, structure-batch, native-samples, target-scripts, common-patterns)")

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd)
}
