package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/gittutor/tutor/internal/api"
	"github.com/gittutor/tutor/internal/state"
)

// maxBackoff caps the retry delay while the API is unreachable.
const maxBackoff = 30 * time.Second

// CourseLister is the slice of the API client the poller needs.
type CourseLister interface {
	ListCourses(ctx context.Context) ([]api.Course, error)
}

// StartPoller launches a background goroutine that refreshes the catalog
// snapshot every interval, backing off while requests fail. It returns
// immediately.
func StartPoller(ctx context.Context, store *state.Store, lister CourseLister, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	go func() {
		timer := time.NewTimer(interval)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}
			refresh(ctx, store, lister, logger)
			timer.Reset(calculateBackoff(store.Snapshot().ConsecutiveFailures, interval))
		}
	}()
}

// calculateBackoff doubles base for every consecutive failure up to
// maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	d := base
	for i := 0; i < failures; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}

func refresh(ctx context.Context, store *state.Store, lister CourseLister, logger *slog.Logger) {
	courses, err := lister.ListCourses(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		store.Update(nil, err)
		logger.Warn("course poll failed", "error", err)
		return
	}
	store.Update(courses, nil)
	logger.Debug("course poll", "courses", len(courses))
}
