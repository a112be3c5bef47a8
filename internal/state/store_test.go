package state

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/gittutor/tutor/internal/api"
)

func TestStore_UpdateAndSnapshotClone(t *testing.T) {
	var s Store

	courses := []api.Course{{ID: "c1", Title: "Git Basics"}, {ID: "c2", Title: "Branching"}}

	before := time.Now()
	s.Update(courses, nil)

	snap := s.Snapshot()
	if !snap.HasCourses || len(snap.Courses) != 2 || snap.Courses[0].ID != "c1" {
		t.Fatalf("snapshot courses = %#v, want 2 items", snap.Courses)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}
	if snap.LastError != nil {
		t.Fatalf("LastError = %v, want nil", snap.LastError)
	}

	// Returned snapshot should be independent of the stored one.
	snap.Courses[0].Title = "mutated"
	snap2 := s.Snapshot()
	if snap2.Courses[0].Title != "Git Basics" {
		t.Fatalf("Snapshot should clone courses; got %q", snap2.Courses[0].Title)
	}
}

func TestStore_UpdateErrorKeepsPreviousData(t *testing.T) {
	var s Store

	s.Update([]api.Course{{ID: "c1"}}, nil)
	prev := s.Snapshot()

	before := time.Now()
	origErr := errors.New("boom")
	s.Update(nil, origErr)

	snap := s.Snapshot()
	if snap.HasCourses != prev.HasCourses || len(snap.Courses) != 1 || snap.Courses[0].ID != "c1" {
		t.Fatalf("courses changed on error: got %#v want %#v", snap.Courses, prev.Courses)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}
	if snap.LastError == nil || snap.LastError.Error() != "boom" {
		t.Fatalf("LastError = %v, want boom", snap.LastError)
	}
	if reflect.ValueOf(snap.LastError).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatalf("Snapshot should clone error instance")
	}
}

func TestStore_ConsecutiveFailures(t *testing.T) {
	var s Store

	snap := s.Snapshot()
	if snap.ConsecutiveFailures != 0 || snap.IsOffline() {
		t.Fatalf("fresh store: failures=%d offline=%v", snap.ConsecutiveFailures, snap.IsOffline())
	}

	s.Update(nil, errors.New("fail 1"))
	snap = s.Snapshot()
	if snap.ConsecutiveFailures != 1 {
		t.Fatalf("ConsecutiveFailures = %d, want 1", snap.ConsecutiveFailures)
	}
	if snap.IsOffline() {
		t.Fatal("IsOffline() = true, want false with 1 failure")
	}

	s.Update(nil, errors.New("fail 2"))
	snap = s.Snapshot()
	if !snap.IsOffline() {
		t.Fatal("IsOffline() = false, want true with 2 failures")
	}

	// Success resets counter
	s.Update([]api.Course{}, nil)
	snap = s.Snapshot()
	if snap.ConsecutiveFailures != 0 || snap.IsOffline() {
		t.Fatalf("after success: failures=%d offline=%v", snap.ConsecutiveFailures, snap.IsOffline())
	}
	if !snap.HasCourses {
		t.Fatal("HasCourses = false after a successful empty load")
	}
}

func TestStore_Observe(t *testing.T) {
	var s Store

	unreachable := &api.Error{Kind: api.KindTransient, Message: api.MsgTransient}
	s.Observe(unreachable)
	s.Observe(unreachable)
	if !s.Snapshot().IsOffline() {
		t.Fatal("two unreachable calls should mark offline")
	}

	s.Observe(&api.Error{Kind: api.KindAuth, Status: 401, Message: "nope"})
	if s.Snapshot().IsOffline() {
		t.Fatal("a server response should clear offline")
	}

	s.Observe(unreachable)
	s.Observe(nil)
	if got := s.Snapshot().ConsecutiveFailures; got != 0 {
		t.Fatalf("ConsecutiveFailures = %d, want 0 after success", got)
	}
}

func TestSnapshot_CourseByID(t *testing.T) {
	var s Store
	s.Update([]api.Course{{ID: "c1", Title: "Git Basics"}}, nil)

	snap := s.Snapshot()
	if c, ok := snap.CourseByID("c1"); !ok || c.Title != "Git Basics" {
		t.Fatalf("CourseByID(c1) = %#v, %v", c, ok)
	}
	if _, ok := snap.CourseByID("missing"); ok {
		t.Fatal("CourseByID(missing) found a course")
	}
}
