package app

import (
	"fmt"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/brewfile/internal/logging"
	"github.com/blackwell-systems/brewfile/internal/output"
	"github.com/blackwell-systems/brewfile/internal/watcher"
)

var (
	watchDaemon      bool
	watchDaemonChild bool
	watchPIDFile     string
	watchLogFile     string
	watchStop        bool

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Regenerate the Brewfile whenever the configuration changes",
		Long: `Watch the package configuration and rewrite this machine's Brewfile each
time it is saved, so the Brewfile in your dotfiles never goes stale.

Watch modes:
  • Foreground (default): Run in current terminal with Ctrl+C to stop
  • Daemon: Run as a background process
  • Stop: Stop a running daemon

Bursts of writes (editors often save in several steps) are coalesced into
one regeneration.`,
		Example: `  # Run in foreground (Ctrl+C to stop)
  brewfile watch

  # Run as background daemon
  brewfile watch --daemon

  # Stop running daemon
  brewfile watch --stop`,
		Args: cobra.NoArgs,
		RunE: runWatch,
	}
)

func init() {
	watchCmd.Flags().BoolVar(&watchDaemon, "daemon", false, "run as background daemon")
	watchCmd.Flags().BoolVar(&watchDaemonChild, "daemon-child", false, "internal flag for daemon child process")
	watchCmd.Flags().StringVar(&watchPIDFile, "pid-file", "", "PID file path (default: $XDG_STATE_HOME/brewfile/watch.pid)")
	watchCmd.Flags().StringVar(&watchLogFile, "log-file", "", "log file path (default: $XDG_STATE_HOME/brewfile/watch.log)")
	watchCmd.Flags().BoolVar(&watchStop, "stop", false, "stop running daemon")

	watchCmd.Flags().MarkHidden("daemon-child")
}

func defaultPIDFile() string {
	return filepath.Join(xdg.StateHome, "brewfile", "watch.pid")
}

func defaultWatchLogFile() string {
	return filepath.Join(xdg.StateHome, "brewfile", "watch.log")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchPIDFile == "" {
		watchPIDFile = defaultPIDFile()
	}
	if watchLogFile == "" {
		watchLogFile = defaultWatchLogFile()
	}

	if watchStop {
		return stopWatchDaemon(cmd)
	}
	if watchDaemon {
		return startWatchDaemon(cmd)
	}

	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	log := logging.GetLogger("watch")
	regenerate := func() error {
		if err := sess.mgr.WriteManifest(); err != nil {
			log.Warn().Err(err).Msg("Could not regenerate Brewfile")
			return err
		}
		log.Info().Str("brewfile", sess.settings.BrewfilePath).Msg("Brewfile regenerated")
		return nil
	}

	w, err := watcher.New(sess.settings.ConfigFile, regenerate)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	// Bring the Brewfile up to date before waiting for changes.
	if err := regenerate(); err != nil && !watchDaemonChild {
		sess.out.Warn("Could not regenerate %s: %v", sess.settings.BrewfilePath, err)
	}

	if watchDaemonChild {
		return watcher.RunUntilSignal(cmd.Context(), w, watchPIDFile)
	}

	sess.out.Say("Watching %s (press Ctrl+C to stop)...", sess.settings.ConfigFile)
	if err := watcher.RunUntilSignal(cmd.Context(), w, ""); err != nil {
		return err
	}
	sess.out.Println("Watcher stopped")
	return nil
}

// childArgs rebuilds the command line for the background process so it
// resolves the same files as this one.
func childArgs() []string {
	args := []string{"watch", "--pid-file", watchPIDFile, "--log-file", watchLogFile}
	if settingsFile != "" {
		args = append(args, "--settings", settingsFile)
	}
	if configFile != "" {
		args = append(args, "--config", configFile)
	}
	if brewfilePath != "" {
		args = append(args, "--brewfile", brewfilePath)
	}
	for i := 0; i < verbosity; i++ {
		args = append(args, "-v")
	}
	return args
}

func startWatchDaemon(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	spinner := output.NewSpinner("Starting watcher...")
	spinner.SetWriter(out)
	spinner.Start()
	pid, err := watcher.Spawn(watchPIDFile, watchLogFile, childArgs()...)
	if err != nil {
		spinner.Stop()
		return fmt.Errorf("failed to start daemon: %w", err)
	}
	spinner.StopWithMessage("✓ Watcher started")

	fmt.Fprintf(out, "\nBrewfile watcher started (PID %d)\n", pid)
	fmt.Fprintf(out, "  PID file: %s\n", watchPIDFile)
	fmt.Fprintf(out, "  Log file: %s\n", watchLogFile)
	fmt.Fprintf(out, "\nTo stop: brewfile watch --stop\n")
	return nil
}

func stopWatchDaemon(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	running, err := watcher.IsDaemonRunning(watchPIDFile)
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}
	if !running {
		fmt.Fprintln(out, "Watcher is not running")
		return nil
	}

	spinner := output.NewSpinner("Stopping watcher...")
	spinner.SetWriter(out)
	spinner.Start()
	if err := watcher.StopDaemon(watchPIDFile); err != nil {
		spinner.Stop()
		return fmt.Errorf("failed to stop daemon: %w", err)
	}
	spinner.StopWithMessage("✓ Watcher stopped")
	return nil
}
