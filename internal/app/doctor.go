package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/brewfile/internal/config"
	"github.com/blackwell-systems/brewfile/internal/manifest"
	"github.com/blackwell-systems/brewfile/internal/store"
	"github.com/blackwell-systems/brewfile/internal/watcher"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose common issues with the setup on this machine",
	Long: `Runs diagnostic checks on your brewfile setup.

Checks:
  • brew is on PATH
  • The configuration exists and parses
  • This machine has groups assigned, and they exist
  • mas apps have store IDs
  • The operation journal can be opened
  • Whether the watcher is running`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	host, err := settings.Machine()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Running brewfile diagnostics...")
	fmt.Fprintln(out)

	critical, warnings := runChecks(out, settings, host)

	fmt.Fprintln(out)
	if critical == 0 && warnings == 0 {
		fmt.Fprintln(out, "✓ All checks passed!")
		return nil
	}
	if critical > 0 {
		fmt.Fprintf(out, "Found %d critical issue(s) and %d warning(s).\n", critical, warnings)
		return fmt.Errorf("diagnostics failed")
	}
	fmt.Fprintf(out, "Found %d warning(s). brewfile works but is not fully set up.\n", warnings)
	return nil
}

// runChecks prints one line per check and counts critical issues and
// warnings.
func runChecks(out io.Writer, settings *config.Settings, host string) (critical, warnings int) {
	if path, err := exec.LookPath(settings.BrewBin); err != nil {
		fmt.Fprintf(out, "✗ %s not found on PATH\n", settings.BrewBin)
		fmt.Fprintln(out, "  Action: install Homebrew or set brew_bin in settings.toml")
		critical++
	} else {
		fmt.Fprintln(out, "✓ brew found:", path)
	}

	cfg, err := config.Load(settings.ConfigFile)
	switch {
	case err != nil:
		fmt.Fprintln(out, "✗ Configuration cannot be read:", err)
		fmt.Fprintln(out, "  Action: fix it with 'brewfile edit'")
		critical++
	case !fileExists(settings.ConfigFile):
		fmt.Fprintln(out, "⚠ No configuration at", settings.ConfigFile)
		fmt.Fprintln(out, "  Action: run 'brewfile init'")
		warnings++
	default:
		fmt.Fprintln(out, "✓ Configuration found:", settings.ConfigFile)
	}

	if cfg != nil {
		groups, err := cfg.MachineGroups(host)
		if err != nil {
			fmt.Fprintf(out, "⚠ Machine '%s' has no groups assigned\n", host)
			fmt.Fprintln(out, "  Action: run 'brewfile init'")
			warnings++
		} else {
			fmt.Fprintf(out, "✓ Machine '%s' uses %d group(s)\n", host, len(groups))
			for _, g := range groups {
				if _, ok := cfg.Packages[g]; !ok {
					fmt.Fprintf(out, "⚠ Group '%s' is assigned but not defined\n", g)
					warnings++
				}
			}
			packages, _ := cfg.MachinePackages(host)
			if missing := manifest.MissingIDs(packages); len(missing) > 0 {
				fmt.Fprintf(out, "⚠ %d mas app(s) without a store ID are skipped in the Brewfile\n", len(missing))
				fmt.Fprintln(out, "  Action: find IDs with 'mas list' and store them as \"Name::ID\"")
				warnings++
			}
		}
	}

	if journal, err := store.Open(settings.JournalDB); err != nil {
		fmt.Fprintln(out, "⚠ Operation journal unavailable:", err)
		fmt.Fprintln(out, "  history and undo will not work")
		warnings++
	} else {
		journal.Close()
		fmt.Fprintln(out, "✓ Operation journal:", settings.JournalDB)
	}

	if running, err := watcher.IsDaemonRunning(defaultPIDFile()); err == nil && running {
		fmt.Fprintln(out, "✓ Watcher running; the Brewfile follows configuration edits")
	} else {
		fmt.Fprintln(out, "  Watcher not running (optional: 'brewfile watch --daemon')")
	}
	return critical, warnings
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, os.ErrNotExist)
}
