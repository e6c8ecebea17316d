package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/apex/log"
	"github.com/konni332/frate/pkg/installer"
	"github.com/spf13/cobra"
)

// RunCommand represents the run command
var RunCommand = &cobra.Command{
	Use:   "run NAME [-- ARGS...]",
	Short: "Execute an installed tool",
	Long: `Executes the tool's binary from the cache, streaming stdin, stdout and
stderr and propagating the tool's exit code. Arguments after '--' are
passed through untouched.`,
	Example: `  # Run a tool with arguments
  frate run just -- --list`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		root, err := resolveCacheRoot()
		if err != nil {
			return err
		}

		binaryPath, _, err := installer.New(root).Locate(name)
		if err != nil {
			if errors.Is(err, installer.ErrNotInstalled) {
				return fmt.Errorf("%s is not installed. Run 'frate install' first", name)
			}
			return err
		}
		log.Debugf("Executing %s", binaryPath)

		tool := exec.CommandContext(cmd.Context(), binaryPath, args[1:]...)
		tool.Stdin = os.Stdin
		tool.Stdout = os.Stdout
		tool.Stderr = os.Stderr
		if err := tool.Run(); err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				os.Exit(exitErr.ExitCode())
			}
			return fmt.Errorf("failed to run %s: %w", name, err)
		}
		return nil
	},
}
