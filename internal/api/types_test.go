package api

import (
	"encoding/json"
	"testing"
)

func TestRefAcceptsIDOrObject(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantID   ID
		wantName string
	}{
		{"string", `"abc"`, "abc", ""},
		{"number", `42`, "42", ""},
		{"null", `null`, "", ""},
		{"object with _id", `{"_id":"u1","name":"Prof. K"}`, "u1", "Prof. K"},
		{"object with title", `{"id":"c1","title":"Git"}`, "c1", "Git"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ref Ref
			if err := json.Unmarshal([]byte(tt.raw), &ref); err != nil {
				t.Fatalf("Unmarshal returned error: %v", err)
			}
			if ref.ID != tt.wantID || ref.Name != tt.wantName {
				t.Fatalf("ref = %#v, want id=%q name=%q", ref, tt.wantID, tt.wantName)
			}
		})
	}
}

func TestCourseFallsBackToTeacherAlias(t *testing.T) {
	var course Course
	if err := json.Unmarshal([]byte(`{"_id":"c1","title":"Git","teacher":"u5"}`), &course); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if course.Instructor.ID != "u5" {
		t.Fatalf("Instructor = %#v, want teacher alias", course.Instructor)
	}
	if course.InstructorName() != "Unknown instructor" {
		t.Fatalf("InstructorName = %q", course.InstructorName())
	}
}

func TestVideoPrefersExplicitSecondsAndThumbnailAlias(t *testing.T) {
	var video Video
	raw := `{"id":"v1","duration":12,"durationInSeconds":95,"thumbnailUrl":"  ","isFree":true}`
	if err := json.Unmarshal([]byte(raw), &video); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if video.Duration != 95 {
		t.Fatalf("Duration = %d, want 95", video.Duration)
	}
	if video.Thumbnail != nil {
		t.Fatalf("Thumbnail = %q, want nil for blank", *video.Thumbnail)
	}
	if !video.IsFree {
		t.Fatalf("IsFree = false, want true")
	}
}

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleStudent, RoleTeacher, RoleAdmin} {
		if !r.Valid() {
			t.Fatalf("%q should be valid", r)
		}
	}
	if Role("guest").Valid() {
		t.Fatalf("guest should not be valid")
	}
}
