package cmd

import (
	"fmt"

	"github.com/apex/log"
	"github.com/konni332/frate/pkg/installer"
	"github.com/konni332/frate/pkg/lockfile"
	"github.com/spf13/cobra"
)

var installName string

// InstallCommand represents the install command
var InstallCommand = &cobra.Command{
	Use:   "install",
	Short: "Install locked tools into the cache",
	Long: `Installs every tool from frate.lock, or a single tool with --name.
Archives are downloaded once, verified against the locked checksum,
extracted into the cache and exposed through a shim in the cache's bin
directory. Tools already installed at the locked version are skipped.

One tool's failure does not abort the rest; the run exits non-zero when
any tool failed.`,
	Example: `  # Install everything in frate.lock
  frate install

  # Install a single tool
  frate install --name just`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := resolveProjectDir()
		if err != nil {
			return err
		}
		if _, err := loadProjectManifest(dir); err != nil {
			return err
		}
		lock, err := lockfile.LoadDir(dir)
		if err != nil {
			return err
		}
		if len(lock.Tools) == 0 {
			return fmt.Errorf("%s is empty. Run 'frate sync' first", lockfile.FileName)
		}

		root, err := resolveCacheRoot()
		if err != nil {
			return err
		}
		log.Debugf("Using cache root: %s", root.Dir)

		report, err := installer.New(root).Install(cmd.Context(), lock, installName)
		if err != nil {
			return err
		}
		logOutcomes(report)
		log.Infof("%d installed, %d up to date, %d failed",
			report.Installed(), report.Skipped(), report.Failed())
		return report.Err()
	},
}

func init() {
	InstallCommand.Flags().StringVar(&installName, "name", "", "Install one specific tool")
}
