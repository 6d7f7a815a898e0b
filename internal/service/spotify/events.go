package spotify

//go:generate $MOCKGEN -source=events.go -destination=mocks/events_mock.go

import (
	"context"
	"sync"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/oshokin/spotify-grabber/internal/client/spotify"
	"github.com/oshokin/spotify-grabber/internal/logger"
)

// EventListener receives the progress of every item the service handles.
type EventListener interface {
	// OnProgress reports written bytes of total while an item is downloading.
	OnProgress(ctx context.Context, item *spotify.ContentItem, written, total int64)
	// OnSkip reports an item bypassed by a filter or the skip policy.
	OnSkip(ctx context.Context, item *spotify.ContentItem, reason SkipReason)
	// OnError reports a failed item.
	OnError(ctx context.Context, item *spotify.ContentItem, err error)
	// OnComplete reports the terminal state of an item.
	OnComplete(ctx context.Context, item *spotify.ContentItem, result *ItemResult)
}

// ConsoleListener renders a byte progress bar per download.
type ConsoleListener struct {
	mu sync.Mutex
	// bar is the bar of the item being downloaded.
	bar *progressbar.ProgressBar
	// itemID is the item the bar belongs to.
	itemID string
}

// NopListener ignores every event.
type NopListener struct{}

// NewConsoleListener creates and returns a new instance of ConsoleListener.
func NewConsoleListener() EventListener {
	return new(ConsoleListener)
}

// OnProgress reports written bytes of total while an item is downloading.
// Bars are only drawn when the log level shows informational messages.
func (l *ConsoleListener) OnProgress(_ context.Context, item *spotify.ContentItem, written, total int64) {
	if logger.Level() > zap.InfoLevel {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.bar == nil || l.itemID != item.ID {
		l.closeBar()

		l.bar = progressbar.DefaultBytes(total, "Downloading")
		l.itemID = item.ID
	}

	_ = l.bar.Set64(written)
}

// OnSkip reports an item bypassed by a filter or the skip policy.
// The service logs skips itself.
func (l *ConsoleListener) OnSkip(context.Context, *spotify.ContentItem, SkipReason) {}

// OnError reports a failed item.
func (l *ConsoleListener) OnError(context.Context, *spotify.ContentItem, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.closeBar()
}

// OnComplete reports the terminal state of an item.
func (l *ConsoleListener) OnComplete(ctx context.Context, item *spotify.ContentItem, result *ItemResult) {
	l.mu.Lock()
	l.closeBar()
	l.mu.Unlock()

	if result.Outcome == OutcomeDownloaded {
		logger.Infof(ctx, "Saved '%s' to '%s'", item.Label(), result.Path)
	}
}

func (l *ConsoleListener) closeBar() {
	if l.bar == nil {
		return
	}

	_ = l.bar.Finish()

	l.bar = nil
	l.itemID = ""
}

// OnProgress does nothing.
func (NopListener) OnProgress(context.Context, *spotify.ContentItem, int64, int64) {}

// OnSkip does nothing.
func (NopListener) OnSkip(context.Context, *spotify.ContentItem, SkipReason) {}

// OnError does nothing.
func (NopListener) OnError(context.Context, *spotify.ContentItem, error) {}

// OnComplete does nothing.
func (NopListener) OnComplete(context.Context, *spotify.ContentItem, *ItemResult) {}
