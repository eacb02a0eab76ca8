package app

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/brewfile/internal/analyzer"
	"github.com/blackwell-systems/brewfile/internal/brew"
	"github.com/blackwell-systems/brewfile/internal/output"
	"github.com/blackwell-systems/brewfile/internal/scanner"
)

var (
	scanFlagType  string
	scanFlagQuiet bool

	scanCmd = &cobra.Command{
		Use:   "scan",
		Short: "List installed packages as brew bundle sees them",
		Long: `Ask brew bundle what is installed on this machine and print it by type.

This is the same installed set status and the sync commands compare against:
'brew autoremove' runs first, then the system state is dumped to a
temporary Brewfile and listed once per package type.`,
		Example: `  brewfile scan
  brewfile scan --type cask
  brewfile scan --quiet`,
		Args: cobra.NoArgs,
		RunE: runScan,
	}
)

func init() {
	scanCmd.Flags().StringVar(&scanFlagType, "type", "", "only list one type: tap, brew, cask or mas")
	scanCmd.Flags().BoolVar(&scanFlagQuiet, "quiet", false, "print counts only")
}

func runScan(cmd *cobra.Command, args []string) error {
	var only *brew.PackageType
	if scanFlagType != "" {
		t, err := brew.ParsePackageType(scanFlagType)
		if err != nil {
			return err
		}
		only = &t
	}

	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	var installed []brew.PackageInfo
	err = output.Spin(sess.out.Out(), "Scanning installed packages", func() error {
		var scanErr error
		installed, scanErr = scanner.New(sess.backend).Refresh(cmd.Context())
		return scanErr
	})
	if err != nil {
		return fmt.Errorf("failed to scan packages: %w", err)
	}

	sess.out.Printf("%s", renderInstalled(installed, only, scanFlagQuiet))
	return nil
}

// renderInstalled formats the installed set by type, optionally filtered
// to one type. quiet prints a line of counts per type.
func renderInstalled(installed []brew.PackageInfo, only *brew.PackageType, quiet bool) string {
	var sb strings.Builder
	total := 0
	for _, group := range analyzer.GroupByType(installed) {
		if only != nil && group.Type != *only {
			continue
		}
		total += len(group.Packages)
		if quiet {
			fmt.Fprintf(&sb, "%s: %d\n", group.Type.Title(), len(group.Packages))
			continue
		}
		fmt.Fprintf(&sb, "\n%s (%d):\n", group.Type.Title(), len(group.Packages))
		for _, p := range group.Packages {
			fmt.Fprintf(&sb, "  %s\n", p.Name)
		}
	}
	if !quiet {
		fmt.Fprintf(&sb, "\n%d packages installed\n", total)
	}
	return sb.String()
}
