package upload

import (
	"errors"
	"io"

	"github.com/gittutor/tutor/internal/api"
)

// Notices shown after a submission settles.
const (
	MsgUploaded     = "Video uploaded successfully!"
	MsgUploadFailed = "Upload failed. Please try again."
)

// Form is one upload modal instance: a draft plus the guard that keeps at most
// one submission in flight.
type Form struct {
	courseID api.ID
	draft    Draft
	pending  bool
	err      string
}

// NewForm opens an empty form for courseID.
func NewForm(courseID api.ID) *Form {
	return &Form{courseID: courseID, draft: NewDraft()}
}

// CourseID returns the course the form uploads to.
func (f *Form) CourseID() api.ID { return f.courseID }

// Draft exposes the draft for editing. Edits are ignored by the UI while a
// submission is pending.
func (f *Form) Draft() *Draft { return &f.draft }

// Pending reports whether a submission is in flight.
func (f *Form) Pending() bool { return f.pending }

// Error returns the last submission failure message.
func (f *Form) Error() string { return f.err }

// Begin validates the draft and, when it passes, marks the form pending and
// returns the request to send. ok is false when a submission is already in
// flight or validation failed; field errors are left on the draft.
func (f *Form) Begin() (up api.VideoUpload, files io.Closer, ok bool) {
	if f.pending {
		return api.VideoUpload{}, nil, false
	}
	f.err = ""
	if !f.draft.Validate() {
		return api.VideoUpload{}, nil, false
	}
	up, files, err := f.draft.Payload(f.courseID)
	if err != nil {
		var fe *FieldError
		if errors.As(err, &fe) {
			f.draft.Errors.Set(fe.Field, fe.Message)
		} else {
			f.err = err.Error()
		}
		return api.VideoUpload{}, nil, false
	}
	f.pending = true
	return up, files, true
}

// Finish settles the in-flight submission. Success resets the draft; failure
// keeps it so nothing has to be typed again.
func (f *Form) Finish(err error) {
	f.pending = false
	if err != nil {
		f.err = api.UserMessage(err, MsgUploadFailed)
		return
	}
	f.err = ""
	f.draft = NewDraft()
}
