package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/apex/log"
	"github.com/konni332/frate/pkg/manifest"
	"github.com/spf13/cobra"
)

var initForce bool

// InitCommand represents the init command
var InitCommand = &cobra.Command{
	Use:   "init",
	Short: "Create a frate.toml manifest in the project directory",
	Long: `Creates an empty frate.toml named after the project directory. Declare
tools with 'frate add' afterwards.`,
	Example: `  # Initialize the current directory
  frate init

  # Initialize another directory
  frate init --project path/to/project

  # Overwrite an existing manifest
  frate init --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := resolveProjectDir()
		if err != nil {
			return err
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			return fmt.Errorf("failed to resolve project directory %s: %w", dir, err)
		}

		path := filepath.Join(abs, manifest.FileName)
		if _, err := os.Stat(path); err == nil && !initForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}

		m := manifest.New(filepath.Base(abs))
		if err := m.Save(path); err != nil {
			log.WithError(err).Errorf("Failed to write %s", path)
			return err
		}
		log.Infof("Created %s for project %q", path, m.Project.Name)
		return nil
	},
}

func init() {
	InitCommand.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing manifest")
}
