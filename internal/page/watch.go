package page

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce is how long to wait after the last write event before
// re-parsing. Editors often produce several events per save.
const watchDebounce = 200 * time.Millisecond

// FileWatcher feeds document mutations from a local HTML file. Every
// time the file is written it is re-parsed and the links that were not
// present before are appended to the document, which delivers them to
// change-feed subscribers as one insertion batch.
//
// Design decision: We diff by counting elements per href rather than
// tracking node identity because:
//  1. Re-parsing produces fresh nodes every time, so identity is useless
//  2. A page can legitimately contain several elements with one target,
//     and each occurrence must be gated
//  3. Counting detects the (N+1)th occurrence of a URL as a new element
type FileWatcher struct {
	// path is the HTML file to watch.
	path string

	// doc receives newly appeared link elements.
	doc *Document

	// seen maps canonical href to the number of elements already
	// surfaced for it.
	seen map[string]int

	// logger is used for watch-loop diagnostics.
	logger *slog.Logger
}

// NewFileWatcher creates a watcher that feeds insertions from path into
// doc. The document's current links are taken as the baseline; only
// links beyond that baseline are emitted later.
func NewFileWatcher(path string, doc *Document, logger *slog.Logger) *FileWatcher {
	if logger == nil {
		logger = slog.Default()
	}

	seen := make(map[string]int)
	for _, el := range doc.Links() {
		seen[el.Href()]++
	}

	return &FileWatcher{
		path:   path,
		doc:    doc,
		seen:   seen,
		logger: logger,
	}
}

// Run watches the file until the context is cancelled. Write and create
// events are debounced before re-parsing. Parse failures are logged and
// skipped; a transiently truncated file must not kill the watch loop.
func (w *FileWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.path); err != nil {
		return fmt.Errorf("failed to watch %q: %w", w.path, err)
	}

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	reparse := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(watchDebounce, func() {
					select {
					case reparse <- struct{}{}:
					default:
					}
				})
			}

		case <-reparse:
			if err := w.reparse(); err != nil {
				w.logger.Warn("re-parse failed, skipping mutation",
					"path", w.path,
					"error", err,
				)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", "error", err)
		}
	}
}

// reparse reads the file and appends links that newly appeared.
func (w *FileWatcher) reparse() error {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return err
	}

	links, err := ParseFragment(bytes.NewReader(data), w.doc.URL())
	if err != nil {
		return err
	}

	added := w.diff(links)
	if len(added) == 0 {
		return nil
	}

	w.logger.Debug("document mutated",
		"path", w.path,
		"new_links", len(added),
	)
	w.doc.Append(added...)
	return nil
}

// diff returns the elements of the current parse that exceed the
// per-href counts already surfaced, updating the counts.
func (w *FileWatcher) diff(links []*Element) []*Element {
	current := make(map[string]int)
	var added []*Element

	for _, el := range links {
		href := el.Href()
		current[href]++
		if current[href] > w.seen[href] {
			added = append(added, el)
		}
	}

	for href, n := range current {
		if n > w.seen[href] {
			w.seen[href] = n
		}
	}
	return added
}
