// Package watcher reports changes to the files of one folder, such as the
// partition folder, so indexing can be rerun when they change.
//
// fsnotify is used when available, with polling as a fallback for
// filesystems where it fails (network mounts, some container volumes).
// Events are debounced so a script rewriting every partition file produces
// a single batch.
//
// Usage:
//
//	w := watcher.New(watcher.Options{Match: partition.Matcher(pattern)})
//	go func() { _ = w.Start(ctx, folder) }()
//	defer w.Stop()
//
//	for batch := range w.Events() {
//	    // rerun indexing
//	}
package watcher
