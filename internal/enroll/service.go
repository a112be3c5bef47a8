package enroll

import (
	"context"
	"log/slog"
	"slices"

	"github.com/gittutor/tutor/internal/api"
)

// Remote is the slice of the API client the service needs.
type Remote interface {
	Enroll(ctx context.Context, courseID api.ID) (api.Enrollment, error)
	MyEnrollments(ctx context.Context) ([]api.Enrollment, error)
}

// Identity reports who is signed in.
type Identity interface {
	CurrentUser() (api.User, bool)
}

// Reconciled is the enrolled set after merging the API and the cache.
type Reconciled struct {
	IDs        []api.ID
	RemoteOK   bool
	RemoteErr  error
	OnlyLocal  []api.ID
	OnlyRemote []api.ID
}

// Contains reports whether course is in the set.
func (r Reconciled) Contains(course api.ID) bool {
	return slices.Contains(r.IDs, course)
}

// Discrepant reports whether the API and the cache disagreed.
func (r Reconciled) Discrepant() bool {
	return r.RemoteOK && (len(r.OnlyLocal) > 0 || len(r.OnlyRemote) > 0)
}

// Service enrolls the viewer and answers "which courses am I in".
type Service struct {
	remote Remote
	cache  *Cache
	who    Identity
	logger *slog.Logger
}

// NewService wires the API, cache and session together.
func NewService(remote Remote, cache *Cache, who Identity, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{remote: remote, cache: cache, who: who, logger: logger}
}

// Enroll calls the API and, only on success, writes the course through to
// the cache. A cache write failure is logged, not returned.
func (s *Service) Enroll(ctx context.Context, course api.ID) error {
	user, ok := s.who.CurrentUser()
	if !ok {
		return api.ErrNoCredential
	}
	if _, err := s.remote.Enroll(ctx, course); err != nil {
		s.logger.Warn("enroll failed", "course_id", course, "error", err)
		return err
	}
	if err := s.cache.Add(user.ID, course); err != nil {
		s.logger.Warn("cache enrollment", "course_id", course, "error", err)
	}
	s.logger.Info("enrolled", "course_id", course)
	return nil
}

// Mine returns the viewer's enrolled courses. The API is authoritative when
// reachable, but cached ids it does not list are kept, since the cache is the
// last-known-good signal. When the API is unreachable the cache alone is
// used. An error is returned only when neither source could be read.
func (s *Service) Mine(ctx context.Context) (Reconciled, error) {
	user, ok := s.who.CurrentUser()
	if !ok {
		return Reconciled{}, api.ErrNoCredential
	}
	local, cacheErr := s.cache.Load(user.ID)
	if cacheErr != nil {
		s.logger.Warn("read enrollment cache", "error", cacheErr)
	}

	enrollments, err := s.remote.MyEnrollments(ctx)
	if err != nil {
		if cacheErr != nil {
			return Reconciled{RemoteErr: err}, err
		}
		s.logger.Info("using cached enrollments", "error", err, "count", len(local))
		return Reconciled{IDs: local, RemoteErr: err}, nil
	}

	remote := make([]api.ID, 0, len(enrollments))
	for _, e := range enrollments {
		if e.Course.ID != "" && !slices.Contains(remote, e.Course.ID) {
			remote = append(remote, e.Course.ID)
		}
	}
	r := Reconciled{IDs: slices.Clone(remote), RemoteOK: true}
	for _, id := range local {
		if !slices.Contains(remote, id) {
			r.OnlyLocal = append(r.OnlyLocal, id)
			r.IDs = append(r.IDs, id)
		}
	}
	for _, id := range remote {
		if !slices.Contains(local, id) {
			r.OnlyRemote = append(r.OnlyRemote, id)
		}
	}
	if r.Discrepant() {
		s.logger.Info("enrollment sources disagree", "only_local", len(r.OnlyLocal), "only_remote", len(r.OnlyRemote))
		if err := s.cache.Replace(user.ID, r.IDs); err != nil {
			s.logger.Warn("mirror enrollments", "error", err)
		}
	}
	return r, nil
}
