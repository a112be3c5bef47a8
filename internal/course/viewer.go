package course

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/gittutor/tutor/internal/api"
)

// Phase is where the content view is in its lifecycle.
type Phase int

const (
	Loading Phase = iota
	Ready
	NotFound
	Failed
)

func (p Phase) String() string {
	switch p {
	case Ready:
		return "ready"
	case NotFound:
		return "not found"
	case Failed:
		return "failed"
	default:
		return "loading"
	}
}

// Messages shown by the content view.
const (
	MsgNotFound    = "The course you're looking for doesn't exist."
	MsgLoadFailed  = "Failed to load course data"
	MsgPickLesson  = "Select a lesson from the curriculum to start learning."
	MsgNoLessons   = "No videos have been uploaded yet. Check back later for new content."
	AnonymousName  = "Guest"
	JustNow        = "Just now"
	courseThreadID = api.ID("")
)

// Viewer is the state of one visit to a course page. It is not safe for
// concurrent use; the UI owns it.
type Viewer struct {
	courseID api.ID
	phase    Phase
	err      string
	content  Content
	selected api.ID

	drafts  map[api.ID]string
	threads map[api.ID][]api.Comment
}

// NewViewer starts a visit to course id in the Loading phase.
func NewViewer(id api.ID) *Viewer {
	return &Viewer{
		courseID: id,
		drafts:   map[api.ID]string{},
		threads:  map[api.ID][]api.Comment{},
	}
}

// CourseID returns the course being viewed.
func (v *Viewer) CourseID() api.ID { return v.courseID }

// Phase returns the lifecycle phase.
func (v *Viewer) Phase() Phase { return v.phase }

// Error returns the message for NotFound and Failed.
func (v *Viewer) Error() string { return v.err }

// Apply leaves Loading with the fetch result. Nothing is selected.
func (v *Viewer) Apply(content Content, err error) {
	switch {
	case err == nil:
		v.phase = Ready
		v.err = ""
		v.content = content
	case api.IsNotFound(err):
		v.phase = NotFound
		v.err = MsgNotFound
	default:
		v.phase = Failed
		v.err = api.UserMessage(err, MsgLoadFailed)
	}
	v.selected = ""
}

// Course returns the loaded course record.
func (v *Viewer) Course() api.Course { return v.content.Course }

// Videos returns the order-sorted lesson list.
func (v *Viewer) Videos() []api.Video { return v.content.Videos }

// Select makes id the current lesson. It reports whether the selection
// changed; re-selecting the current lesson or an unknown id does nothing.
func (v *Viewer) Select(id api.ID) bool {
	if v.phase != Ready || id == v.selected || v.index(id) < 0 {
		return false
	}
	v.selected = id
	return true
}

// Selected returns the current lesson and its zero-based index.
func (v *Viewer) Selected() (api.Video, int, bool) {
	i := v.index(v.selected)
	if i < 0 {
		return api.Video{}, -1, false
	}
	return v.content.Videos[i], i, true
}

// LessonLabel returns "Lesson K of N" for the selection, or "".
func (v *Viewer) LessonLabel() string {
	_, i, ok := v.Selected()
	if !ok {
		return ""
	}
	return fmt.Sprintf("Lesson %d of %d", i+1, len(v.content.Videos))
}

// Placeholder is shown when no lesson is selected.
func (v *Viewer) Placeholder() string {
	n := len(v.content.Videos)
	if n == 0 {
		return MsgNoLessons
	}
	lessons := "lessons"
	if n == 1 {
		lessons = "lesson"
	}
	return fmt.Sprintf("%s %d %s available.", MsgPickLesson, n, lessons)
}

// ReplaceVideos installs a re-fetched lesson list. The selection survives if
// its video is still present.
func (v *Viewer) ReplaceVideos(videos []api.Video) {
	sorted := slices.Clone(videos)
	SortVideos(sorted)
	v.content.Videos = sorted
	if v.index(v.selected) < 0 {
		v.selected = ""
	}
}

func (v *Viewer) index(id api.ID) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(v.content.Videos, func(x api.Video) bool { return x.ID == id })
}

// threadKey is the selected video, or the course-level thread when nothing
// is selected.
func (v *Viewer) threadKey() api.ID {
	if v.index(v.selected) < 0 {
		return courseThreadID
	}
	return v.selected
}

// Draft returns the comment being typed for the current thread.
func (v *Viewer) Draft() string { return v.drafts[v.threadKey()] }

// SetDraft replaces the comment being typed for the current thread.
func (v *Viewer) SetDraft(text string) { v.drafts[v.threadKey()] = text }

// Comments returns the current thread, newest first.
func (v *Viewer) Comments() []api.Comment {
	return slices.Clone(v.threads[v.threadKey()])
}

// PostComment prepends the draft to the current thread and clears the draft.
// Blank drafts are ignored. An empty author posts as Guest.
func (v *Viewer) PostComment(author string, now time.Time) (api.Comment, bool) {
	key := v.threadKey()
	text := strings.TrimSpace(v.drafts[key])
	if text == "" {
		return api.Comment{}, false
	}
	if strings.TrimSpace(author) == "" {
		author = AnonymousName
	}
	c := api.Comment{
		ID:        ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		Author:    author,
		Content:   text,
		CreatedAt: now,
		Likes:     0,
		Replies:   []api.Reply{},
	}
	v.threads[key] = append([]api.Comment{c}, v.threads[key]...)
	delete(v.drafts, key)
	return c, true
}

// LikeComment adds one like to the comment with id in the current thread.
func (v *Viewer) LikeComment(id string) bool {
	thread := v.threads[v.threadKey()]
	for i := range thread {
		if thread[i].ID == id {
			thread[i].Likes++
			return true
		}
	}
	return false
}

// SeedComments installs a remote thread for video. Comments already posted
// locally stay on top.
func (v *Viewer) SeedComments(video api.ID, remote []api.Comment) {
	local := v.threads[video]
	merged := make([]api.Comment, 0, len(local)+len(remote))
	merged = append(merged, local...)
	for _, c := range remote {
		if !slices.ContainsFunc(local, func(l api.Comment) bool { return l.ID == c.ID }) {
			merged = append(merged, c)
		}
	}
	v.threads[video] = merged
}

// Adopt swaps a locally posted comment for the server's copy once it has
// been stored remotely.
func (v *Viewer) Adopt(video api.ID, localID string, stored api.Comment) {
	thread := v.threads[video]
	for i := range thread {
		if thread[i].ID == localID {
			if stored.Author == "" {
				stored.Author = thread[i].Author
			}
			if stored.CreatedAt.IsZero() {
				stored.CreatedAt = thread[i].CreatedAt
			}
			thread[i] = stored
			return
		}
	}
}

// Age renders a comment timestamp relative to now.
func Age(created, now time.Time) string {
	d := now.Sub(created)
	switch {
	case created.IsZero() || d < time.Minute:
		return JustNow
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d/time.Hour))
	default:
		return created.Local().Format("Jan 2, 2006")
	}
}
