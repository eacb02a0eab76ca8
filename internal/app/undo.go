package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/brewfile/internal/output"
)

var (
	undoFlagList bool
	undoFlagYes  bool

	undoCmd = &cobra.Command{
		Use:   "undo [snapshot-id | latest]",
		Short: "Reinstall packages from a pre-cleanup snapshot",
		Long: `Reinstall the packages recorded in a snapshot.

A snapshot of the installed packages is taken before every sync-cleanup
that removes something. Undo renders the snapshot into a temporary Brewfile
and runs 'brew bundle install' on it. The configuration is not changed.

Arguments:
  snapshot-id  The numeric ID of the snapshot to restore
  latest       Restore the most recent snapshot (the default)`,
		Example: `  brewfile undo --list           # List all snapshots
  brewfile undo                  # Restore latest snapshot
  brewfile undo 42               # Restore snapshot ID 42
  brewfile undo 42 --yes         # Restore without confirmation`,
		Args: cobra.MaximumNArgs(1),
		RunE: runUndo,
	}
)

func init() {
	undoCmd.Flags().BoolVar(&undoFlagList, "list", false, "List available snapshots")
	undoCmd.Flags().BoolVar(&undoFlagYes, "yes", false, "Skip confirmation prompt")
}

func runUndo(cmd *cobra.Command, args []string) error {
	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	if undoFlagList {
		snaps, err := sess.mgr.Snapshots()
		if err != nil {
			return fmt.Errorf("failed to list snapshots: %w", err)
		}
		if len(snaps) == 0 {
			sess.out.Println("No snapshots available.")
			sess.out.Println("\nSnapshots are created automatically before sync-cleanup removes packages.")
			return nil
		}
		sess.out.Printf("\nAvailable snapshots:\n\n")
		sess.out.Printf("%s", output.RenderSnapshotTable(snaps))
		sess.out.Printf("\nRestore with: brewfile undo <id>\n")
		return nil
	}

	ref := "latest"
	if len(args) == 1 {
		ref = args[0]
	}
	return cancelled(sess, sess.mgr.Undo(cmd.Context(), ref, undoFlagYes))
}
