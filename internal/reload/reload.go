// Package reload watches the daemon config file and republishes it.
package reload

import (
	"context"
	"fmt"
	"path/filepath"

	"hostkit/internal/config"
	"hostkit/internal/logging"
	"hostkit/internal/mailbox"
)

// Watcher observes a config file and puts freshly loaded configs into the
// mailbox. The consumer picks them up at its own pace; only the latest
// version matters.
type Watcher struct {
	path   string
	reload config.ReloadConfig
	log    logging.Logger
	mb     *mailbox.Mailbox[config.BackupConfig]
}

func New(path string, rc config.ReloadConfig, log logging.Logger, mb *mailbox.Mailbox[config.BackupConfig]) *Watcher {
	return &Watcher{
		path:   path,
		reload: rc,
		log:    log,
		mb:     mb,
	}
}

// Start chooses the watching strategy based on config.
func (w *Watcher) Start(ctx context.Context) error {
	switch w.reload.Method {
	case "fsnotify":
		return w.startFsNotify(ctx)

	case "poll":
		w.startPolling(ctx)
		return nil

	case "", "auto":
		res := Probe(filepath.Dir(w.path))
		if res.FsnotifySupported {
			return w.startFsNotify(ctx)
		}
		w.log.Warn("fsnotify disabled: %s", res.Reason)
		w.startPolling(ctx)
		return nil

	default:
		return fmt.Errorf("unknown reload method %q", w.reload.Method)
	}
}

// Publish loads the config file and hands the backup section to the
// consumer. Load errors keep the previous config in effect.
func (w *Watcher) Publish() {
	cfg, err := config.Load(w.path)
	if err != nil {
		w.log.Error("config reload failed: %v", err)
		return
	}

	w.mb.Put(cfg.Backup)
	w.log.Info("config reloaded from %s", w.path)
}
