package course

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/gittutor/tutor/internal/api"
)

// Source is the slice of the API client the content view reads from.
type Source interface {
	GetCourse(ctx context.Context, id api.ID) (api.Course, error)
	ListVideos(ctx context.Context, courseID api.ID) ([]api.Video, error)
}

// Content is everything needed to render one course.
type Content struct {
	Course api.Course
	Videos []api.Video
}

// Fetch loads the course record and its videos concurrently. The first
// failure cancels the other request and is returned; no partial content is
// ever returned with an error.
func Fetch(ctx context.Context, src Source, id api.ID) (Content, error) {
	var (
		course api.Course
		videos []api.Video
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := src.GetCourse(gctx, id)
		if err != nil {
			return fmt.Errorf("course %s: %w", id, err)
		}
		course = c
		return nil
	})
	g.Go(func() error {
		v, err := src.ListVideos(gctx, id)
		if err != nil {
			return fmt.Errorf("videos of %s: %w", id, err)
		}
		videos = v
		return nil
	})
	if err := g.Wait(); err != nil {
		return Content{}, err
	}
	if course.ID == "" {
		course.ID = id
	}
	SortVideos(videos)
	return Content{Course: course, Videos: videos}, nil
}

// FetchVideos reloads only the video list, sorted.
func FetchVideos(ctx context.Context, src Source, id api.ID) ([]api.Video, error) {
	videos, err := src.ListVideos(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("videos of %s: %w", id, err)
	}
	SortVideos(videos)
	return videos, nil
}

// SortVideos orders videos by their order field, keeping API order for ties.
func SortVideos(videos []api.Video) {
	slices.SortStableFunc(videos, func(a, b api.Video) int {
		return cmp.Compare(a.Order, b.Order)
	})
}

// FormatDuration renders seconds as M:SS. Minutes accumulate past an hour;
// zero and negative input render as 0:00.
func FormatDuration(seconds int) string {
	if seconds <= 0 {
		return "0:00"
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
