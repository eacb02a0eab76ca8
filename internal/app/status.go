package app

import (
	"github.com/spf13/cobra"
)

var (
	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Assign package groups to this machine",
		Long: `Create the configuration if it does not exist and choose which package
groups this machine uses.

On a configuration without any groups an empty 'core' group is created and
assigned. Otherwise the available groups are listed and you pick them by
number, or 'all'.`,
		Example: `  brewfile init
  BREWFILE_HOSTNAME=work-laptop brewfile init`,
		Args: cobra.NoArgs,
		RunE: runInit,
	}

	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show configured packages and their installation state",
		Long: `Compare the packages configured for this machine with the packages
'brew bundle' reports as installed.

Configured packages are marked ✓ when installed and ✗ when missing.
Installed packages that no group lists are shown as extras.`,
		Args: cobra.NoArgs,
		RunE: runStatus,
	}
)

func runInit(cmd *cobra.Command, args []string) error {
	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	return sess.mgr.Init(cmd.Context())
}

func runStatus(cmd *cobra.Command, args []string) error {
	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	_, err = sess.mgr.Status(cmd.Context())
	return err
}
