package cmd

import (
	"github.com/spf13/cobra"
)

// SyncCommand represents the sync command
var SyncCommand = &cobra.Command{
	Use:   "sync",
	Short: "Resolve frate.toml requirements into frate.lock",
	Long: `Reconciles the lockfile with the manifest. Entries that still satisfy
their requirement on the current platform are kept byte for byte; changed
requirements are re-resolved against the registry and removed tools are
dropped. The lockfile is only written when every requirement resolved.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := resolveProjectDir()
		if err != nil {
			return err
		}
		m, err := loadProjectManifest(dir)
		if err != nil {
			return err
		}
		_, err = syncLockfile(cmd.Context(), dir, m)
		return err
	},
}
