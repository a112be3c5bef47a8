package upload

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/gittutor/tutor/internal/api"
	"github.com/gittutor/tutor/internal/form"
)

// Form fields of the upload draft.
const (
	FieldTitle       form.Field = "title"
	FieldDescription form.Field = "description"
	FieldDuration    form.Field = "duration"
	FieldOrder       form.Field = "order"
	FieldVideo       form.Field = "video"
	FieldThumbnail   form.Field = "thumbnail"
)

// MaxVideoSize is the largest video file accepted.
const MaxVideoSize = 100 << 20

// Messages shown for each rule.
const (
	MsgTitleRequired       = "Video title is required"
	MsgTitleLength         = "Title must be between 5 and 200 characters"
	MsgDescriptionRequired = "Video description is required"
	MsgDescriptionLength   = "Description must be between 10 and 2000 characters"
	MsgDurationRequired    = "Duration is required"
	MsgDurationFormat      = "Duration must be in MM:SS format (e.g., 10:30)"
	MsgDurationInvalid     = "Invalid duration format"
	MsgOrderNegative       = "Order must be a non-negative number"
	MsgVideoRequired       = "Video file is required"
	MsgVideoType           = "Please select a valid video file"
	MsgVideoSize           = "File size must be less than 100MB"
	MsgThumbnailType       = "Please select a valid image file"
	MsgFileUnreadable      = "Could not read the selected file"
)

var messages = form.Messages{
	FieldTitle: {
		"notblank": MsgTitleRequired,
		"":         MsgTitleLength,
	},
	FieldDescription: {
		"notblank": MsgDescriptionRequired,
		"":         MsgDescriptionLength,
	},
	FieldDuration: {
		"notblank":  MsgDurationRequired,
		"mmss":      MsgDurationFormat,
		"clocksecs": MsgDurationInvalid,
	},
	FieldOrder: {"": MsgOrderNegative},
	FieldVideo: {"": MsgVideoRequired},
}

var validate = form.New()

// File is a local file chosen for upload.
type File struct {
	Path        string
	Name        string
	ContentType string
	Size        int64
}

// IsVideo reports whether the sniffed type is a video type.
func (f File) IsVideo() bool { return strings.HasPrefix(f.ContentType, "video/") }

// IsImage reports whether the sniffed type is an image type.
func (f File) IsImage() bool { return strings.HasPrefix(f.ContentType, "image/") }

// Inspect stats path and detects its MIME type from content.
func Inspect(path string) (File, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return File{}, errors.New("path is empty")
	}
	info, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("%s is a directory", path)
	}
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return File{}, fmt.Errorf("detect type of %s: %w", path, err)
	}
	contentType := mt.String()
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return File{
		Path:        path,
		Name:        filepath.Base(path),
		ContentType: contentType,
		Size:        info.Size(),
	}, nil
}

// Draft is an in-progress video submission. Text fields hold exactly what the
// viewer typed; Errors holds the current per-field messages.
type Draft struct {
	Title       string
	Description string
	Duration    string
	Order       string
	IsFree      bool
	Video       *File
	Thumbnail   *File
	Errors      form.Errors
}

// NewDraft returns an empty draft with order 0.
func NewDraft() Draft {
	return Draft{Order: "0"}
}

// rules is the validated projection of a draft.
type rules struct {
	Title       string `form:"title" validate:"notblank,min=5,max=200"`
	Description string `form:"description" validate:"notblank,min=10,max=2000"`
	Duration    string `form:"duration" validate:"notblank,mmss,clocksecs"`
	Order       int    `form:"order" validate:"min=0"`
	Video       *File  `form:"video" validate:"required"`
}

func (d Draft) rules() (rules, bool) {
	order, orderOK := d.order()
	return rules{
		Title:       strings.TrimSpace(d.Title),
		Description: strings.TrimSpace(d.Description),
		Duration:    strings.TrimSpace(d.Duration),
		Order:       order,
		Video:       d.Video,
	}, orderOK
}

func (d Draft) order() (int, bool) {
	s := strings.TrimSpace(d.Order)
	if s == "" {
		return 0, true
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1, false
	}
	return n, true
}

// SetTitle updates the title and clears only its error.
func (d *Draft) SetTitle(v string) { d.Title = v; d.Errors.Clear(FieldTitle) }

// SetDescription updates the description and clears only its error.
func (d *Draft) SetDescription(v string) { d.Description = v; d.Errors.Clear(FieldDescription) }

// SetDuration updates the duration text and clears only its error.
func (d *Draft) SetDuration(v string) { d.Duration = v; d.Errors.Clear(FieldDuration) }

// SetOrder updates the order text and clears only its error.
func (d *Draft) SetOrder(v string) { d.Order = v; d.Errors.Clear(FieldOrder) }

// SetFree toggles the free/premium flag.
func (d *Draft) SetFree(free bool) { d.IsFree = free }

// AttachVideo sets the video file. A file of the wrong type or size is
// rejected with an error on the video field only and the previous file is
// kept.
func (d *Draft) AttachVideo(f File) bool {
	switch {
	case !f.IsVideo():
		d.Errors.Set(FieldVideo, MsgVideoType)
		return false
	case f.Size > MaxVideoSize:
		d.Errors.Set(FieldVideo, MsgVideoSize)
		return false
	}
	d.Video = &f
	d.Errors.Clear(FieldVideo)
	return true
}

// AttachThumbnail sets the optional thumbnail. Non-image files are rejected
// with an error on the thumbnail field only.
func (d *Draft) AttachThumbnail(f File) bool {
	if !f.IsImage() {
		d.Errors.Set(FieldThumbnail, MsgThumbnailType)
		return false
	}
	d.Thumbnail = &f
	d.Errors.Clear(FieldThumbnail)
	return true
}

// AttachVideoPath inspects path and attaches it as the video.
func (d *Draft) AttachVideoPath(path string) bool {
	if strings.TrimSpace(path) == "" {
		d.Video = nil
		d.Errors.Clear(FieldVideo)
		return true
	}
	f, err := Inspect(path)
	if err != nil {
		d.Errors.Set(FieldVideo, MsgFileUnreadable)
		return false
	}
	return d.AttachVideo(f)
}

// AttachThumbnailPath inspects path and attaches it as the thumbnail. An empty
// path removes the thumbnail.
func (d *Draft) AttachThumbnailPath(path string) bool {
	if strings.TrimSpace(path) == "" {
		d.Thumbnail = nil
		d.Errors.Clear(FieldThumbnail)
		return true
	}
	f, err := Inspect(path)
	if err != nil {
		d.Errors.Set(FieldThumbnail, MsgFileUnreadable)
		return false
	}
	return d.AttachThumbnail(f)
}

// ValidateField re-checks a single field and updates only its error. File
// fields keep the type and size errors recorded when they were attached.
func (d *Draft) ValidateField(f form.Field) {
	switch f {
	case FieldVideo:
		if d.Video == nil && !d.Errors.Has(FieldVideo) {
			d.Errors.Set(FieldVideo, MsgVideoRequired)
		}
		return
	case FieldThumbnail:
		return
	}
	r, orderOK := d.rules()
	errs := validate.Fields(r, messages, f)
	if f == FieldOrder && !orderOK {
		errs.Set(FieldOrder, MsgOrderNegative)
	}
	d.Errors.Set(f, errs.Get(f))
}

// Validate checks every rule and reports whether the draft may be submitted.
// File type and size errors recorded on attach also block submission.
func (d *Draft) Validate() bool {
	r, orderOK := d.rules()
	errs := validate.Struct(r, messages)
	if !orderOK {
		errs.Set(FieldOrder, MsgOrderNegative)
	}
	for _, f := range []form.Field{FieldVideo, FieldThumbnail} {
		if msg := d.Errors.Get(f); msg != "" && msg != MsgVideoRequired {
			errs.Set(f, msg)
		}
	}
	d.Errors = errs
	return errs.Empty()
}

// DurationSeconds converts the draft's MM:SS duration into seconds.
func (d Draft) DurationSeconds() (int, error) {
	return ParseDuration(d.Duration)
}

// ParseDuration converts "MM:SS" to seconds. Minutes may exceed 59 but not
// form.MaxClockMinutes.
func ParseDuration(value string) (int, error) {
	value = strings.TrimSpace(value)
	if !form.IsClock(value) {
		return 0, errors.New(MsgDurationFormat)
	}
	m, s, ok := form.SplitClock(value)
	if !ok || s >= 60 {
		return 0, errors.New(MsgDurationInvalid)
	}
	return m*60 + s, nil
}

// Payload opens the draft's files and builds the upload request. The returned
// closer releases the files and must be called once the request settles.
func (d Draft) Payload(courseID api.ID) (api.VideoUpload, io.Closer, error) {
	if d.Video == nil {
		return api.VideoUpload{}, nil, &FieldError{Field: FieldVideo, Message: MsgVideoRequired}
	}
	secs, err := d.DurationSeconds()
	if err != nil {
		return api.VideoUpload{}, nil, &FieldError{Field: FieldDuration, Message: err.Error()}
	}
	order, ok := d.order()
	if !ok || order < 0 {
		return api.VideoUpload{}, nil, &FieldError{Field: FieldOrder, Message: MsgOrderNegative}
	}

	var files multiCloser
	video, err := os.Open(d.Video.Path)
	if err != nil {
		return api.VideoUpload{}, nil, &FieldError{Field: FieldVideo, Message: MsgFileUnreadable, Err: err}
	}
	files = append(files, video)

	up := api.VideoUpload{
		CourseID:    courseID,
		Title:       strings.TrimSpace(d.Title),
		Description: strings.TrimSpace(d.Description),
		Duration:    secs,
		IsFree:      d.IsFree,
		Order:       order,
		Video:       api.FilePart{Filename: d.Video.Name, ContentType: d.Video.ContentType, Body: video},
	}
	if d.Thumbnail != nil {
		thumb, err := os.Open(d.Thumbnail.Path)
		if err != nil {
			_ = files.Close()
			return api.VideoUpload{}, nil, &FieldError{Field: FieldThumbnail, Message: MsgFileUnreadable, Err: err}
		}
		files = append(files, thumb)
		up.Thumbnail = &api.FilePart{Filename: d.Thumbnail.Name, ContentType: d.Thumbnail.ContentType, Body: thumb}
	}
	return up, files, nil
}

// FieldError is a problem with one draft field found while building the
// request.
type FieldError struct {
	Field   form.Field
	Message string
	Err     error
}

func (e *FieldError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Field, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *FieldError) Unwrap() error { return e.Err }

type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var errs []error
	for _, c := range m {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
