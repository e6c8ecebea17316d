package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	"github.com/konni332/frate/pkg/manifest"
	"github.com/spf13/cobra"
)

// parseToolSpec splits a NAME@REQUIREMENT argument. A bare NAME means any
// version, which the resolver pins to the newest published release.
func parseToolSpec(arg string) (name, requirement string, err error) {
	name, requirement, found := strings.Cut(arg, "@")
	if !found {
		requirement = "*"
	}
	if name == "" {
		return "", "", fmt.Errorf("invalid tool spec %q: expected NAME or NAME@REQUIREMENT", arg)
	}
	if requirement == "" {
		return "", "", fmt.Errorf("invalid tool spec %q: empty requirement after '@'", arg)
	}
	return name, requirement, nil
}

// AddCommand represents the add command
var AddCommand = &cobra.Command{
	Use:   "add NAME[@REQUIREMENT]",
	Short: "Declare a tool in frate.toml and re-resolve frate.lock",
	Long: `Adds a tool requirement to frate.toml and re-resolves the lockfile against
the registry. The tool is not installed; run 'frate install' for that.

Requirements use semver range syntax: an exact version (1.2.3), a caret
range (^1.2), or '*' for any version. A bare NAME is shorthand for '*'.`,
	Example: `  # Pin an exact version
  frate add just@1.42.4

  # Allow compatible upgrades
  frate add ripgrep@^14.1

  # Track the newest release
  frate add fd`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, requirement, err := parseToolSpec(args[0])
		if err != nil {
			return err
		}

		dir, err := resolveProjectDir()
		if err != nil {
			return err
		}
		m, err := loadProjectManifest(dir)
		if err != nil {
			return err
		}

		m.Add(name, requirement)

		// Resolve before writing the manifest so a bad requirement leaves
		// both project files untouched.
		if _, err := syncLockfile(cmd.Context(), dir, m); err != nil {
			log.WithError(err).Errorf("Failed to resolve %s@%s", name, requirement)
			return err
		}

		if err := m.Save(filepath.Join(dir, manifest.FileName)); err != nil {
			log.WithError(err).Error("Failed to write manifest")
			return err
		}
		log.Infof("Added %s@%s (not installed; run 'frate install')", name, requirement)
		return nil
	},
}
