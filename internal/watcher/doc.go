// Package watcher keeps the generated Brewfile in step with the
// configuration file.
//
// The Watcher subscribes to the directory holding the configuration file
// through fsnotify, so editors that save by writing a temp file and renaming
// it over the original are seen too. Bursts of events are coalesced with a
// short debounce before the regenerate callback runs.
//
// Example usage:
//
//	w, err := watcher.New(cfgPath, func() error {
//		return mgr.WriteManifest()
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Block in the foreground until SIGINT or SIGTERM
//	if err := w.Run(ctx); err != nil {
//		log.Fatal(err)
//	}
package watcher
