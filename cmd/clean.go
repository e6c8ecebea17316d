package cmd

import (
	"github.com/apex/log"
	"github.com/konni332/frate/pkg/installer"
	"github.com/spf13/cobra"
)

var cleanName string

// CleanCommand represents the clean command
var CleanCommand = &cobra.Command{
	Use:   "clean",
	Short: "Remove installed tools and cached archives",
	Long: `Like uninstall, but with no name it also empties the archive store, so the
next install downloads everything afresh.`,
	Example: `  # Remove all tools and cached archives
  frate clean

  # Remove a single tool, keeping the archive store
  frate clean --name just`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolveCacheRoot()
		if err != nil {
			return err
		}
		report, err := installer.New(root).Clean(cleanName)
		if err != nil {
			return err
		}
		logOutcomes(report)
		if cleanName == "" {
			log.Info("Archive store emptied")
		}
		return report.Err()
	},
}

func init() {
	CleanCommand.Flags().StringVar(&cleanName, "name", "", "Clean one specific tool")
}
