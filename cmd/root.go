package cmd

import (
	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	projectDir  string
	cacheDir    string
	registryURL string
	verbose     bool
	quiet       bool
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "frate",
	Short: "Project-local tool manager with reproducible installs",
	Long: `frate manages the command line tools a project depends on. Requirements are
declared in frate.toml, resolved against a registry into frate.lock, and
installed into a shared user-level cache with a shim per tool.

Checked-in lockfiles make installs reproducible: everyone who runs
'frate install' on the same platform gets the same versions, verified
against the locked checksums.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.SetHandler(cli.Default)
		if verbose {
			log.SetLevel(log.DebugLevel)
			log.Debugf("Verbose logging enabled")
		} else if quiet {
			log.SetLevel(log.ErrorLevel)
		} else {
			log.SetLevel(log.InfoLevel)
		}
	},
}

func init() {
	// Disable automatic command sorting to maintain semantic order
	cobra.EnableCommandSorting = false

	RootCmd.PersistentFlags().StringVarP(&projectDir, "project", "p", "", "Project directory holding frate.toml (default: current directory)")
	RootCmd.PersistentFlags().StringVar(&cacheDir, "root", "", "Cache root directory (default: $FRATE_HOME or the XDG data dir)")
	RootCmd.PersistentFlags().StringVar(&registryURL, "registry", "", "Registry index URL (default: $FRATE_REGISTRY or the public index)")
	RootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Increase log verbosity")
	RootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "Suppress progress output")

	RootCmd.AddGroup(&cobra.Group{
		ID:    "project",
		Title: "Project Commands:",
	})
	RootCmd.AddGroup(&cobra.Group{
		ID:    "tool",
		Title: "Tool Commands:",
	})
	RootCmd.SetHelpCommandGroupID("tool")
	RootCmd.SetCompletionCommandGroupID("tool")

	InitCommand.GroupID = "project"
	AddCommand.GroupID = "project"
	SyncCommand.GroupID = "project"
	InstallCommand.GroupID = "project"
	ListCommand.GroupID = "project"
	UninstallCommand.GroupID = "tool"
	CleanCommand.GroupID = "tool"
	WhichCommand.GroupID = "tool"
	SearchCommand.GroupID = "tool"
	RunCommand.GroupID = "tool"

	RootCmd.AddCommand(InitCommand)      // Step 1: Create frate.toml
	RootCmd.AddCommand(AddCommand)       // Step 2: Declare a tool requirement
	RootCmd.AddCommand(SyncCommand)      // Step 3: Resolve requirements into frate.lock
	RootCmd.AddCommand(InstallCommand)   // Step 4: Install locked tools
	RootCmd.AddCommand(ListCommand)      // Inspect declared/locked/installed state
	RootCmd.AddCommand(UninstallCommand) // Remove installed tools
	RootCmd.AddCommand(CleanCommand)     // Remove tools and cached archives
	RootCmd.AddCommand(WhichCommand)     // Locate a tool's binary and shim
	RootCmd.AddCommand(SearchCommand)    // Query the registry
	RootCmd.AddCommand(RunCommand)       // Execute an installed tool
}
