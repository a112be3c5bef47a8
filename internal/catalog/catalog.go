package catalog

import (
	"github.com/gittutor/tutor/internal/api"
	"github.com/gittutor/tutor/internal/enroll"
)

// Mode selects which courses the catalog lists.
type Mode int

const (
	Browse Mode = iota
	Enrolled
	Teaching
)

// Modes lists every mode in tab order.
func Modes() []Mode { return []Mode{Browse, Enrolled, Teaching} }

func (m Mode) String() string {
	switch m {
	case Enrolled:
		return "My enrollments"
	case Teaching:
		return "My teaching"
	default:
		return "All courses"
	}
}

// Action tells the caller what a catalog operation asks of it.
type Action int

const (
	None Action = iota
	Navigate
	Prompt
	RequireLogin
	Denied
	// Dropped marks an outcome for a request the catalog no longer tracks,
	// because the session it was sent under has ended.
	Dropped
)

// Messages shown by the catalog.
const (
	MsgLoadFailed    = "Failed to load courses"
	MsgEnrollFailed  = "Failed to enroll in course. Please try again."
	MsgLoginRequired = "Please log in to continue"
	MsgTeachersOnly  = "Only teachers and admins have a teaching list"
	FreeNote         = "Enrollment is free. No payment required."
)

// Benefits is the copy shown in the enrollment prompt.
var Benefits = []string{
	"Full lifetime access",
	"Certificate of completion",
	"Mobile and TV access",
	"Community support",
	"Downloadable resources",
}

// Confirmation is the content of an open enrollment prompt.
type Confirmation struct {
	CourseID   api.ID
	Title      string
	Instructor string
	Level      string
}

// Identity reports who is signed in.
type Identity interface {
	CurrentUser() (api.User, bool)
}

// Catalog is the state behind the course browser: the listing, the tab, the
// enrolled set and the enrollment prompt.
type Catalog struct {
	who Identity

	mode    Mode
	courses []api.Course
	loaded  bool
	loadErr string

	enrolled   map[api.ID]struct{}
	reconciled enroll.Reconciled

	prompt    *Confirmation
	pending   map[api.ID]struct{}
	enrollErr string
}

// New returns an empty catalog in Browse mode.
func New(who Identity) *Catalog {
	return &Catalog{
		who:      who,
		enrolled: map[api.ID]struct{}{},
		pending:  map[api.ID]struct{}{},
	}
}

// Mode returns the current tab.
func (c *Catalog) Mode() Mode { return c.mode }

// SetMode switches tabs. Enrolled needs a session and Teaching a teacher or
// admin; a refused switch leaves the mode unchanged.
func (c *Catalog) SetMode(m Mode) Action {
	user, ok := c.who.CurrentUser()
	switch m {
	case Enrolled:
		if !ok {
			return RequireLogin
		}
	case Teaching:
		if !ok {
			return RequireLogin
		}
		if !api.CanTeach(&user) {
			return Denied
		}
	}
	c.mode = m
	return None
}

// Load installs the result of the course listing. A failure degrades to an
// empty list with a visible error.
func (c *Catalog) Load(courses []api.Course, err error) {
	c.loaded = true
	if err != nil {
		c.courses = nil
		c.loadErr = api.UserMessage(err, MsgLoadFailed)
		return
	}
	c.courses = append([]api.Course(nil), courses...)
	c.loadErr = ""
}

// Loaded reports whether a listing result has arrived.
func (c *Catalog) Loaded() bool { return c.loaded }

// LoadError returns the listing failure message, if any.
func (c *Catalog) LoadError() string { return c.loadErr }

// Courses returns the courses of the current tab.
func (c *Catalog) Courses() []api.Course {
	user, signedIn := c.who.CurrentUser()
	out := make([]api.Course, 0, len(c.courses))
	for _, course := range c.courses {
		switch c.mode {
		case Enrolled:
			if !signedIn || !c.IsEnrolled(course.ID) {
				continue
			}
		case Teaching:
			if !signedIn || !api.Teaches(&user, course) {
				continue
			}
		}
		out = append(out, course)
	}
	return out
}

// All returns every loaded course regardless of tab.
func (c *Catalog) All() []api.Course {
	return append([]api.Course(nil), c.courses...)
}

// SetEnrolled replaces the enrolled set with a reconciled listing.
func (c *Catalog) SetEnrolled(r enroll.Reconciled) {
	c.reconciled = r
	c.enrolled = make(map[api.ID]struct{}, len(r.IDs))
	for _, id := range r.IDs {
		c.enrolled[id] = struct{}{}
	}
}

// Reconciled returns the last reconciled listing.
func (c *Catalog) Reconciled() enroll.Reconciled { return c.reconciled }

// IsEnrolled reports whether the viewer is enrolled in course.
func (c *Catalog) IsEnrolled(course api.ID) bool {
	_, ok := c.enrolled[course]
	return ok
}

// Pending reports whether an enroll request for course is in flight.
func (c *Catalog) Pending(course api.ID) bool {
	_, ok := c.pending[course]
	return ok
}

// Open is the viewer choosing a course. Enrolled courses navigate straight
// to their content; others open the enrollment prompt.
func (c *Catalog) Open(course api.Course) Action {
	if c.IsEnrolled(course.ID) {
		return Navigate
	}
	if _, ok := c.who.CurrentUser(); !ok {
		return RequireLogin
	}
	if c.Pending(course.ID) {
		return None
	}
	c.enrollErr = ""
	c.prompt = &Confirmation{
		CourseID:   course.ID,
		Title:      course.Title,
		Instructor: course.InstructorName(),
		Level:      course.Level,
	}
	return Prompt
}

// Prompt returns the open enrollment prompt.
func (c *Catalog) Prompt() (Confirmation, bool) {
	if c.prompt == nil {
		return Confirmation{}, false
	}
	return *c.prompt, true
}

// Confirm dismisses the prompt and marks its course in flight. ok is false
// when no prompt is open or that course already has a request in flight; the
// caller must not send a request then.
func (c *Catalog) Confirm() (course api.ID, ok bool) {
	if c.prompt == nil {
		return "", false
	}
	course = c.prompt.CourseID
	c.prompt = nil
	if c.Pending(course) {
		return "", false
	}
	c.pending[course] = struct{}{}
	return course, true
}

// Cancel dismisses the prompt without enrolling.
func (c *Catalog) Cancel() { c.prompt = nil }

// Settle records the enroll outcome. Success adds the course to the
// enrolled set and asks for navigation; failure leaves the set untouched and
// records a message. Outcomes for courses not in flight, such as those sent
// before a Reset, are Dropped without touching any state.
func (c *Catalog) Settle(course api.ID, err error) Action {
	if !c.Pending(course) {
		return Dropped
	}
	delete(c.pending, course)
	if err != nil {
		c.enrollErr = api.UserMessage(err, MsgEnrollFailed)
		return None
	}
	c.enrollErr = ""
	c.enrolled[course] = struct{}{}
	if !c.reconciled.Contains(course) {
		c.reconciled.IDs = append(c.reconciled.IDs, course)
	}
	return Navigate
}

// EnrollError returns the last enrollment failure message.
func (c *Catalog) EnrollError() string { return c.enrollErr }

// Reset forgets everything tied to the previous session.
func (c *Catalog) Reset() {
	c.mode = Browse
	c.enrolled = map[api.ID]struct{}{}
	c.reconciled = enroll.Reconciled{}
	c.pending = map[api.ID]struct{}{}
	c.prompt = nil
	c.enrollErr = ""
}
