package cmd

import (
	"fmt"
	"strings"

	"github.com/abhisek/opicdrill/internal/generate"
	"github.com/abhisek/opicdrill/internal/library"
	"github.com/spf13/cobra"
)

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "Find sentence patterns shared by your saved scripts",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd, setupOptions{needLLM: true})
		if err != nil {
			return err
		}
		defer e.Close()

		scripts := e.lib.Items(library.KindScript)
		if len(scripts) < generate.MinPatternScripts {
			fmt.Printf("Save at least %d scripts first (you have %d).\n", generate.MinPatternScripts, len(scripts))
			return nil
		}

		patterns, err := e.generator.CommonPatterns(cmd.Context(), scripts)
		if err != nil {
			return fmt.Errorf("analyze scripts: %w", err)
		}
		if len(patterns) == 0 {
			fmt.Println("No shared patterns found.")
			return nil
		}

		sep := strings.Repeat("─", 60)
		for i, p := range patterns {
			if i > 0 {
				fmt.Println(sep)
			}
			fmt.Printf("%d. %s\n", i+1, p.Pattern)
			if p.Explanation != "" {
				fmt.Printf("   %s\n", p.Explanation)
			}
			if p.Example != "" {
				fmt.Printf("   e.g. %s\n", p.Example)
			}
		}
		return nil
	},
}
