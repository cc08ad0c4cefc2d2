package worker

import (
	"context"
	"log/slog"
	"time"

	"bilifeed/internal/bilibili"
)

// NameWarmer keeps display names for the configured accounts cached, so feed
// titles don't need a cold metadata fetch on request.
type NameWarmer struct {
	Metadata bilibili.Metadata
	UIDs     []string
	Interval time.Duration
}

func (w *NameWarmer) Start(ctx context.Context) error {
	if w.Interval <= 0 {
		w.Interval = 12 * time.Hour
	}

	// initial run
	w.runOnce(ctx)

	t := time.NewTicker(w.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			w.runOnce(ctx)
		}
	}
}

func (w *NameWarmer) runOnce(ctx context.Context) {
	refreshed := 0
	for _, uid := range w.UIDs {
		uctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if _, err := w.Metadata.Username(uctx, uid); err != nil {
			slog.Warn("name-warmer: refresh failed", "uid", uid, "error", err)
		} else {
			refreshed++
		}
		cancel()
	}
	slog.Info("name-warmer: refreshed display names", "refreshed", refreshed, "total", len(w.UIDs))
}
