package notify

import (
	"context"
	"fmt"
	"testing"

	"github.com/avolkov/docstream/internal/core/domain"
)

func TestFeedKeepsBoundedRecentNotifications(t *testing.T) {
	feed := NewFeed(nil, 3)

	for i := 0; i < 5; i++ {
		feed.Notify(context.Background(), domain.NotifySuccess, fmt.Sprintf("note %d", i))
	}

	recent := feed.Recent(0)
	if len(recent) != 3 {
		t.Fatalf("expected ring capped at 3, got %d", len(recent))
	}
	if recent[0].Text != "note 2" || recent[2].Text != "note 4" {
		t.Fatalf("expected oldest entries evicted, got %+v", recent)
	}
}

func TestFeedRecentLimit(t *testing.T) {
	feed := NewFeed(nil, 10)
	feed.Notify(context.Background(), domain.NotifySuccess, "a")
	feed.Notify(context.Background(), domain.NotifyError, "b")

	recent := feed.Recent(1)
	if len(recent) != 1 || recent[0].Text != "b" {
		t.Fatalf("expected newest notification only, got %+v", recent)
	}
	if recent[0].Kind != domain.NotifyError {
		t.Fatalf("expected error kind, got %s", recent[0].Kind)
	}
}
