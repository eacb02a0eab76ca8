package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/brewfile/internal/brew"
	"github.com/blackwell-systems/brewfile/internal/config"
	"github.com/blackwell-systems/brewfile/internal/logging"
	"github.com/blackwell-systems/brewfile/internal/manager"
	"github.com/blackwell-systems/brewfile/internal/output"
	"github.com/blackwell-systems/brewfile/internal/snapshots"
	"github.com/blackwell-systems/brewfile/internal/store"
)

// loadSettings resolves settings.toml and applies the global flags on top.
func loadSettings() (*config.Settings, error) {
	path := settingsFile
	if path == "" {
		path = config.SettingsPath()
	}
	s, err := config.LoadSettings(path)
	if err != nil {
		return nil, err
	}
	if configFile != "" {
		s.ConfigFile = configFile
	}
	if brewfilePath != "" {
		s.BrewfilePath = brewfilePath
	}
	return s, nil
}

// session bundles what a command needs: resolved settings, the journal
// (nil when it could not be opened) and the manager.
type session struct {
	settings *config.Settings
	journal  *store.Store
	backend  brew.Backend
	out      *output.Printer
	mgr      *manager.Manager
}

func openSession(cmd *cobra.Command) (*session, error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, err
	}
	host, err := settings.Machine()
	if err != nil {
		return nil, err
	}

	sess := &session{
		settings: settings,
		backend:  brew.NewClient(settings.BrewBin).WithOutput(cmd.OutOrStdout()),
		out:      output.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr()),
	}

	// The journal is a record, not a requirement: commands still run
	// without it, they just lose history and undo.
	journal, err := store.Open(settings.JournalDB)
	if err != nil {
		logging.GetLogger("app").Warn().Err(err).Str("path", settings.JournalDB).Msg("Operation journal unavailable")
	} else {
		sess.journal = journal
	}

	opts := manager.Options{
		Backend:      sess.backend,
		Hostname:     host,
		ConfigPath:   settings.ConfigFile,
		BrewfilePath: settings.BrewfilePath,
		Printer:      sess.out,
		Prompter:     manager.NewLinePrompter(cmd.InOrStdin(), cmd.OutOrStdout()),
		Editor:       settings.Editor,
	}
	if sess.journal != nil {
		opts.Journal = sess.journal
		opts.Snapshots = snapshots.New(sess.journal, sess.backend, settings.SnapshotDir)
	}

	sess.mgr, err = manager.New(opts)
	if err != nil {
		sess.Close()
		return nil, fmt.Errorf("failed to initialize: %w", err)
	}
	logging.GetLogger("app").Debug().
		Str("host", host).
		Str("config", settings.ConfigFile).
		Str("brewfile", settings.BrewfilePath).
		Msg("Session ready")
	return sess, nil
}

// Close releases the journal.
func (s *session) Close() {
	if s.journal != nil {
		s.journal.Close()
	}
}
