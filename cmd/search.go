package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/konni332/frate/pkg/registry"
	"github.com/spf13/cobra"
)

// SearchCommand represents the search command
var SearchCommand = &cobra.Command{
	Use:   "search NAME",
	Short: "Search the registry and list available versions",
	Long: `Looks the tool up in the registry and prints its published versions,
newest last. When no tool matches exactly, tools whose name contains the
query are listed instead.`,
	Example: `  # List published versions of a tool
  frate search just

  # Discover tools by substring
  frate search rip`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := args[0]
		client := newRegistryClient()

		record, err := client.Lookup(cmd.Context(), query)
		if err == nil {
			fmt.Printf("%s", record.Name)
			if record.Description != "" {
				fmt.Printf(" - %s", record.Description)
			}
			fmt.Println()
			for _, version := range record.VersionStrings() {
				fmt.Printf("  %s\n", version)
			}
			return nil
		}
		if !errors.Is(err, registry.ErrToolNotFound) {
			return err
		}

		// No exact match; fall back to a substring scan of the index.
		tools, err := client.Tools(cmd.Context())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		matches := 0
		for _, tool := range tools {
			if strings.Contains(strings.ToLower(tool.Name), strings.ToLower(query)) {
				fmt.Fprintf(w, "%s\t%s\n", tool.Name, tool.Description)
				matches++
			}
		}
		if matches == 0 {
			return fmt.Errorf("no tool matching %q in the registry", query)
		}
		return w.Flush()
	},
}
