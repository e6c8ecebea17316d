package cmd

import (
	"github.com/konni332/frate/pkg/installer"
	"github.com/spf13/cobra"
)

var uninstallName string

// UninstallCommand represents the uninstall command
var UninstallCommand = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove installed tools from the cache",
	Long: `Removes every installed tool, or a single tool with --name. The shim is
removed before the cache entry so a half-finished run never leaves a shim
pointing at a missing binary. Tools that are not installed are skipped
without error. Cached archives are kept; use 'frate clean' to drop them.`,
	Example: `  # Uninstall everything
  frate uninstall

  # Uninstall one tool
  frate uninstall --name just`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolveCacheRoot()
		if err != nil {
			return err
		}
		report, err := installer.New(root).Uninstall(uninstallName)
		if err != nil {
			return err
		}
		logOutcomes(report)
		return report.Err()
	},
}

func init() {
	UninstallCommand.Flags().StringVar(&uninstallName, "name", "", "Uninstall one specific tool")
}
