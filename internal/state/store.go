package state

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gittutor/tutor/internal/api"
)

// Snapshot represents the latest catalog data available to the UI.
type Snapshot struct {
	Courses             []api.Course
	HasCourses          bool
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive failed requests
}

// IsOffline returns true when the API has been unreachable for multiple requests.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// CourseByID finds a course in the snapshot.
func (s Snapshot) CourseByID(id api.ID) (api.Course, bool) {
	for _, c := range s.Courses {
		if c.ID == id {
			return c, true
		}
	}
	return api.Course{}, false
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Update replaces the course list. When err is non-nil the previous data is
// kept but the error is recorded for visibility.
func (s *Store) Update(courses []api.Course, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.LastUpdated = time.Now()
		s.snapshot.ConsecutiveFailures++
		return
	}

	s.snapshot.Courses = cloneCourses(courses)
	s.snapshot.HasCourses = true
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures = 0
}

// Observe feeds the outcome of any other API call into the offline
// indicator. Only failures that never reached the server count; a rejected
// request still proves the API is up.
func (s *Store) Observe(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var apiErr *api.Error
	switch {
	case err == nil:
		s.snapshot.ConsecutiveFailures = 0
	case errors.As(err, &apiErr) && apiErr.Status != 0:
		s.snapshot.ConsecutiveFailures = 0
	case api.KindOf(err) == api.KindTransient:
		s.snapshot.ConsecutiveFailures++
	}
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Courses = cloneCourses(s.snapshot.Courses)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func cloneCourses(items []api.Course) []api.Course {
	if len(items) == 0 {
		return nil
	}
	dup := make([]api.Course, len(items))
	copy(dup, items)
	return dup
}
