package api

import (
	"context"
	"os"
	"time"

	"github.com/planfile/planfile/internal/eval"
	"github.com/planfile/planfile/internal/logging"
)

// Watcher polls the plan files' modification times and tells the hub's
// clients when something changed.
type Watcher struct {
	server   *Server
	interval time.Duration
	mtimes   map[string]time.Time
}

// NewWatcher creates a watcher. interval <= 0 defaults to two seconds.
func NewWatcher(server *Server, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Watcher{
		server:   server,
		interval: interval,
		mtimes:   make(map[string]time.Time),
	}
}

// Run polls until the context is canceled.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Prime the mtime map so startup does not broadcast.
	w.changed()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if w.changed() {
				w.broadcast()
			}
		}
	}
}

// changed stats the current collection's files and reports whether any
// mtime moved since the last poll. New and vanished files count as changes.
func (w *Watcher) changed() bool {
	fs, err := w.server.load()
	if err != nil {
		// A transient parse error mid-save; try again next tick.
		logging.WithError(err).Debug("watch reload failed")
		return false
	}

	current := make(map[string]time.Time, len(fs.Paths()))
	for _, path := range fs.Paths() {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		current[path] = info.ModTime()
	}

	changed := len(current) != len(w.mtimes)
	if !changed {
		for path, mtime := range current {
			if prev, ok := w.mtimes[path]; !ok || !prev.Equal(mtime) {
				changed = true
				break
			}
		}
	}

	w.mtimes = current
	return changed
}

// broadcast sends the refreshed default-range entry list to all clients.
func (w *Watcher) broadcast() {
	fs, err := w.server.load()
	if err != nil {
		return
	}
	today, now := fs.Now()

	rng, ok := eval.NewDateRange(today, today.AddDays(defaultRangeDays-1))
	if !ok {
		return
	}
	entries, err := eval.Evaluate(fs.Commands(), eval.ModeRelevant, rng)
	if err != nil {
		logging.WithError(err).Warn("watch evaluation failed")
		w.server.hub.BroadcastRefresh()
		return
	}

	logging.Info("plan files changed, notifying %d clients", w.server.hub.ClientCount())
	w.server.hub.Broadcast(Message{
		Type: "refresh",
		Data: map[string]interface{}{
			"entries": entriesJSON(entries, rng, today, now),
		},
	})
}
