package app

import (
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/brewfile/internal/output"
)

var (
	historyFlagLimit int

	historyCmd = &cobra.Command{
		Use:   "history",
		Short: "Show recent sync, add, remove and undo operations",
		Long: `List the operations recorded in the journal, newest first, with their
outcome and the number of packages installed, adopted and removed.`,
		Example: `  brewfile history
  brewfile history --limit 50`,
		Args: cobra.NoArgs,
		RunE: runHistory,
	}
)

func init() {
	historyCmd.Flags().IntVar(&historyFlagLimit, "limit", 20, "number of operations to show (0 for all)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	ops, err := sess.mgr.History(historyFlagLimit)
	if err != nil {
		return err
	}
	sess.out.Printf("%s", output.RenderHistoryTable(ops))
	return nil
}
