package reload

import (
	"context"
	"os"
	"time"
)

// startPolling republishes the config whenever its mtime advances.
func (w *Watcher) startPolling(ctx context.Context) {
	interval := w.reload.PollInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}

	var lastMod time.Time
	if info, err := os.Stat(w.path); err == nil {
		lastMod = info.ModTime()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			info, err := os.Stat(w.path)
			if err != nil {
				continue
			}
			if mod := info.ModTime(); mod.After(lastMod) {
				lastMod = mod
				w.Publish()
			}
		}
	}
}
