package cmd

import (
	"fmt"
	"strings"

	"github.com/abhisek/opicdrill/internal/library"
	"github.com/abhisek/opicdrill/internal/mastery"
	"github.com/spf13/cobra"
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "List or remove library items",
}

var libraryListCmd = &cobra.Command{
	Use:   "list [kind]",
	Short: "List items, optionally for one kind",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kinds := library.Kinds
		if len(args) == 1 {
			k, err := library.ParseKind(args[0])
			if err != nil {
				return err
			}
			kinds = []library.Kind{k}
		}

		e, err := setup(cmd, setupOptions{})
		if err != nil {
			return err
		}
		defer e.Close()

		for i, k := range kinds {
			items := e.lib.Items(k)
			if i > 0 {
				fmt.Println()
			}
			fmt.Printf("%s (%d)\n", k.DisplayName(), len(items))
			fmt.Println(strings.Repeat("─", 72))
			for _, it := range items {
				fmt.Printf("%-28s  %-9s  %3d✓ %3d✗  %s\n",
					truncate(it.Key, 28),
					mastery.StateOf(it).Label(),
					it.Stats.SuccessCount, it.Stats.FailCount,
					truncate(strings.ReplaceAll(it.Content.Prompt, "\n", " "), 40))
			}
		}
		return nil
	},
}

var libraryRmCmd = &cobra.Command{
	Use:   "rm <key>",
	Short: "Remove an item by key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kindName, _ := cmd.Flags().GetString("kind")
		kind, err := library.ParseKind(kindName)
		if err != nil {
			return err
		}

		e, err := setup(cmd, setupOptions{})
		if err != nil {
			return err
		}
		defer e.Close()

		removed, err := e.lib.Remove(cmd.Context(), kind, args[0])
		if err != nil {
			return err
		}
		if !removed {
			return fmt.Errorf("no %s item with key %q", kind, args[0])
		}
		fmt.Printf("Removed %s %q.\n", kind, args[0])
		return nil
	},
}

func init() {
	libraryRmCmd.Flags().StringP("kind", "k", "script", "Kind of the item to remove")

	libraryCmd.AddCommand(libraryListCmd)
	libraryCmd.AddCommand(libraryRmCmd)
}
