package app

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/brewfile/internal/manager"
)

var (
	syncAdoptCmd = &cobra.Command{
		Use:   "sync-adopt",
		Short: "Install missing packages and adopt extras into the configuration",
		Long: `Install every configured package that is missing, then add every installed
package that no group lists to this machine's first group.

Nothing is uninstalled. You are asked to confirm before anything changes.`,
		Args: cobra.NoArgs,
		RunE: runSyncAdopt,
	}

	syncCleanupCmd = &cobra.Command{
		Use:   "sync-cleanup",
		Short: "Install missing packages and uninstall extras",
		Long: `Install every configured package that is missing, then uninstall every
installed package that no group lists, using 'brew bundle cleanup' with a
Brewfile generated from the configuration.

The installed set is saved as a snapshot first; 'brewfile undo' reinstalls
it. You are asked to confirm before anything changes.`,
		Example: `  brewfile sync-cleanup
  brewfile undo latest   # reinstall what the cleanup removed`,
		Args: cobra.NoArgs,
		RunE: runSyncCleanup,
	}
)

func runSyncAdopt(cmd *cobra.Command, args []string) error {
	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	_, err = sess.mgr.SyncAdopt(cmd.Context())
	return cancelled(sess, err)
}

func runSyncCleanup(cmd *cobra.Command, args []string) error {
	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	// A failed cleanup after a successful install has already been reported
	// as a warning by the manager and does not fail the command.
	_, err = sess.mgr.SyncCleanup(cmd.Context())
	return cancelled(sess, err)
}

// cancelled turns a declined confirmation into a clean exit.
func cancelled(sess *session, err error) error {
	if errors.Is(err, manager.ErrCancelled) {
		sess.out.Println("Cancelled.")
		return nil
	}
	return err
}
