package app

import (
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/brewfile/internal/logging"
)

var (
	verbosity    int
	settingsFile string
	configFile   string
	brewfilePath string

	// RootCmd is the root command for brewfile
	RootCmd = &cobra.Command{
		Use:   "brewfile",
		Short: "Keep Homebrew packages in sync with a shared configuration",
		Long: `brewfile keeps the Homebrew packages on each of your machines in line with
one JSON configuration. Packages live in named groups; each machine selects
the groups it wants. The tool compares the configuration with what
'brew bundle' reports as installed and converges the two.

Running brewfile without a command shows the package status for this
machine and offers the available actions.

Quick Start:
  1. brewfile init          # assign groups to this machine
  2. brewfile status        # see what is missing or extra
  3. brewfile sync-adopt    # install missing, keep extras in config

Sync modes:
  • sync-adopt:   install missing packages, add extras to the configuration
  • sync-cleanup: install missing packages, uninstall extras (snapshot first)

Examples:
  # Add a package (type detected automatically)
  brewfile add ripgrep

  # Remove a package from the system and the configuration
  brewfile remove htop

  # Reinstall what the last cleanup removed
  brewfile undo latest`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(verbosity, cmd.ErrOrStderr(), logging.DefaultLogFile())
		},
		RunE: runInteractive,
	}
)

func init() {
	RootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity (-v info, -vv debug, -vvv trace)")
	RootCmd.PersistentFlags().StringVar(&settingsFile, "settings", "", "settings file path (default: $XDG_CONFIG_HOME/brewfile/settings.toml)")
	RootCmd.PersistentFlags().StringVar(&configFile, "config", "", "package configuration path (overrides settings and $BREWFILE_CONFIG)")
	RootCmd.PersistentFlags().StringVar(&brewfilePath, "brewfile", "", "generated Brewfile path (default: ~/Brewfile)")

	RootCmd.SuggestionsMinimumDistance = 2

	RootCmd.AddCommand(initCmd)
	RootCmd.AddCommand(statusCmd)
	RootCmd.AddCommand(syncAdoptCmd)
	RootCmd.AddCommand(syncCleanupCmd)
	RootCmd.AddCommand(addCmd)
	RootCmd.AddCommand(removeCmd)
	RootCmd.AddCommand(editCmd)
	RootCmd.AddCommand(manifestCmd)
	RootCmd.AddCommand(historyCmd)
	RootCmd.AddCommand(undoCmd)
	RootCmd.AddCommand(scanCmd)
	RootCmd.AddCommand(doctorCmd)
	RootCmd.AddCommand(watchCmd)
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}

func runInteractive(cmd *cobra.Command, args []string) error {
	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	return sess.mgr.Interactive(cmd.Context())
}
