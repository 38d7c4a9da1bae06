// Package notify delivers fire-and-forget user-facing notifications. Feed
// logs every notification and keeps a bounded ring of recent ones so the view
// layer can fetch toasts it missed.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/avolkov/docstream/internal/core/domain"
)

const defaultCapacity = 50

type Notification struct {
	Kind domain.NotificationKind `json:"kind"`
	Text string                  `json:"text"`
	At   time.Time               `json:"at"`
}

type Feed struct {
	log      *slog.Logger
	capacity int

	mu    sync.Mutex
	items []Notification
}

func NewFeed(log *slog.Logger, capacity int) *Feed {
	if log == nil {
		log = slog.Default()
	}
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Feed{log: log, capacity: capacity}
}

func (f *Feed) Notify(_ context.Context, kind domain.NotificationKind, text string) {
	note := Notification{Kind: kind, Text: text, At: time.Now().UTC()}

	f.mu.Lock()
	f.items = append(f.items, note)
	if len(f.items) > f.capacity {
		f.items = f.items[len(f.items)-f.capacity:]
	}
	f.mu.Unlock()

	if kind == domain.NotifyError {
		f.log.Warn("notification", "kind", string(kind), "text", text)
		return
	}
	f.log.Info("notification", "kind", string(kind), "text", text)
}

// Recent returns up to limit notifications, newest last.
func (f *Feed) Recent(limit int) []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	if limit <= 0 || limit > len(f.items) {
		limit = len(f.items)
	}
	out := make([]Notification, limit)
	copy(out, f.items[len(f.items)-limit:])
	return out
}
