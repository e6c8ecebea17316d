package cmd

import (
	"errors"
	"fmt"

	"github.com/konni332/frate/pkg/installer"
	"github.com/spf13/cobra"
)

// WhichCommand represents the which command
var WhichCommand = &cobra.Command{
	Use:   "which NAME",
	Short: "Print a tool's binary and shim paths",
	Long: `Prints the cache path of the tool's binary and of its shim, when
installed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		root, err := resolveCacheRoot()
		if err != nil {
			return err
		}

		binaryPath, shimPath, err := installer.New(root).Locate(name)
		if err != nil {
			if errors.Is(err, installer.ErrNotInstalled) {
				return fmt.Errorf("%s is not installed", name)
			}
			return err
		}

		fmt.Printf("binary: %s\n", binaryPath)
		if shimPath != "" {
			fmt.Printf("shim:   %s\n", shimPath)
		}
		return nil
	},
}
