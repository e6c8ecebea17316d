package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/konni332/frate/pkg/lockfile"
	"github.com/spf13/cobra"
)

var listVerbose bool

// ListCommand represents the list command
var ListCommand = &cobra.Command{
	Use:   "list",
	Short: "List declared tools with their lock and install state",
	Long: `Lists every tool declared in frate.toml together with its locked version
and whether it is installed in the cache. With --verbose the locked
checksum and source URL are shown too.`,
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
		lock, err := lockfile.LoadDir(dir)
		if err != nil {
			return err
		}
		root, err := resolveCacheRoot()
		if err != nil {
			return err
		}

		names := m.Names()
		if len(names) == 0 {
			fmt.Println("No dependencies")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		defer w.Flush()

		if listVerbose {
			fmt.Fprintln(w, "TOOL\tREQUIREMENT\tLOCKED\tSTATE\tCHECKSUM\tSOURCE")
		} else {
			fmt.Fprintln(w, "TOOL\tREQUIREMENT\tLOCKED\tSTATE")
		}

		for _, name := range names {
			requirement := m.Dependencies[name]
			entry, locked := lock.Get(name)

			lockedVersion := "-"
			state := "unlocked"
			if locked {
				lockedVersion = entry.Version
				if root.HasEntry(name, entry.Version) {
					state = "installed"
				} else {
					state = "not installed"
				}
			}

			if listVerbose {
				checksum, source := "-", "-"
				if locked {
					checksum = entry.Checksum
					source = entry.URL
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", name, requirement, lockedVersion, state, checksum, source)
			} else {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, requirement, lockedVersion, state)
			}
		}
		return nil
	},
}

func init() {
	ListCommand.Flags().BoolVarP(&listVerbose, "verbose", "v", false, "Show locked checksums and source URLs")
}
