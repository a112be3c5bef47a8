package ui

import (
	"io"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gittutor/tutor/internal/api"
	"github.com/gittutor/tutor/internal/course"
	"github.com/gittutor/tutor/internal/enroll"
	"github.com/gittutor/tutor/internal/logtail"
	"github.com/gittutor/tutor/internal/session"
	"github.com/gittutor/tutor/internal/state"
)

// Messages. Results of requests carry the generation of the screen that
// asked for them; a result whose generation is no longer current belongs to
// a screen the viewer has left.

type tickMsg time.Time

type snapshotMsg state.Snapshot

type coursesMsg struct {
	gen     int
	courses []api.Course
	err     error
}

type enrolledSetMsg struct {
	gen int
	set enroll.Reconciled
	err error
}

type enrollDoneMsg struct {
	gen    int
	course api.Course
	err    error
}

type courseMsg struct {
	gen     int
	content course.Content
	err     error
}

type videosMsg struct {
	gen    int
	course api.ID
	videos []api.Video
	err    error
}

type commentsMsg struct {
	gen      int
	video    api.ID
	comments []api.Comment
	err      error
}

type commentSyncedMsg struct {
	gen     int
	video   api.ID
	localID string
	stored  api.Comment
	err     error
}

type uploadDoneMsg struct {
	gen    int
	course api.ID
	video  api.Video
	err    error
}

type videoChangedMsg struct {
	gen    int
	course api.ID
	notice string
	err    error
}

type signedInMsg struct {
	gen  int
	user api.User
	err  error
}

type registeredMsg struct {
	gen     int
	outcome session.Outcome
	err     error
}

type authReplyMsg struct {
	gen  int
	text string
	ok   bool
}

type logsMsg struct {
	entries []logtail.Entry
	err     error
}

// Modal-originated intents.

type enrollConfirmMsg struct{}

type enrollCancelMsg struct{}

type uploadSubmitMsg struct{}

type uploadCancelMsg struct{}

type deleteConfirmMsg struct{ video api.ID }

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func (m Model) listCoursesCmd() tea.Cmd {
	ctx, client, gen := m.ctx, m.client, m.gen
	return func() tea.Msg {
		courses, err := client.ListCourses(ctx)
		return coursesMsg{gen: gen, courses: courses, err: err}
	}
}

func (m Model) enrolledSetCmd() tea.Cmd {
	ctx, svc, gen := m.ctx, m.enroll, m.gen
	return func() tea.Msg {
		set, err := svc.Mine(ctx)
		return enrolledSetMsg{gen: gen, set: set, err: err}
	}
}

func (m Model) enrollCmd(c api.Course) tea.Cmd {
	ctx, svc, gen := m.ctx, m.enroll, m.gen
	return func() tea.Msg {
		err := svc.Enroll(ctx, c.ID)
		return enrollDoneMsg{gen: gen, course: c, err: err}
	}
}

func (m Model) fetchCourseCmd(id api.ID) tea.Cmd {
	ctx, client, gen := m.ctx, m.client, m.gen
	return func() tea.Msg {
		content, err := course.Fetch(ctx, client, id)
		return courseMsg{gen: gen, content: content, err: err}
	}
}

func (m Model) fetchVideosCmd(id api.ID) tea.Cmd {
	ctx, client, gen := m.ctx, m.client, m.gen
	return func() tea.Msg {
		videos, err := course.FetchVideos(ctx, client, id)
		return videosMsg{gen: gen, course: id, videos: videos, err: err}
	}
}

func (m Model) listCommentsCmd(video api.ID) tea.Cmd {
	ctx, client, gen := m.ctx, m.client, m.gen
	return func() tea.Msg {
		comments, err := client.ListComments(ctx, video)
		return commentsMsg{gen: gen, video: video, comments: comments, err: err}
	}
}

func (m Model) createCommentCmd(video api.ID, local api.Comment) tea.Cmd {
	ctx, client, gen := m.ctx, m.client, m.gen
	return func() tea.Msg {
		stored, err := client.CreateComment(ctx, video, local.Content)
		return commentSyncedMsg{gen: gen, video: video, localID: local.ID, stored: stored, err: err}
	}
}

func (m Model) uploadCmd(up api.VideoUpload, files io.Closer) tea.Cmd {
	ctx, client, gen := m.ctx, m.client, m.gen
	return func() tea.Msg {
		defer func() { _ = files.Close() }()
		video, err := client.UploadVideo(ctx, up)
		return uploadDoneMsg{gen: gen, course: up.CourseID, video: video, err: err}
	}
}

func (m Model) setFreeCmd(courseID api.ID, v api.Video, free bool) tea.Cmd {
	ctx, client, gen := m.ctx, m.client, m.gen
	return func() tea.Msg {
		_, err := client.UpdateVideo(ctx, v.ID, api.VideoUpdate{IsFree: &free})
		notice := v.Title + " is now premium"
		if free {
			notice = v.Title + " is now free"
		}
		return videoChangedMsg{gen: gen, course: courseID, notice: notice, err: err}
	}
}

func (m Model) deleteVideoCmd(courseID api.ID, v api.Video) tea.Cmd {
	ctx, client, gen := m.ctx, m.client, m.gen
	return func() tea.Msg {
		err := client.DeleteVideo(ctx, v.ID)
		return videoChangedMsg{gen: gen, course: courseID, notice: "Deleted " + v.Title, err: err}
	}
}

func (m Model) loginCmd(email, password string) tea.Cmd {
	ctx, gate, gen := m.ctx, m.gate, m.gen
	return func() tea.Msg {
		user, err := gate.Login(ctx, email, password)
		return signedInMsg{gen: gen, user: user, err: err}
	}
}

func (m Model) registerCmd(reg api.Registration) tea.Cmd {
	ctx, gate, gen := m.ctx, m.gate, m.gen
	return func() tea.Msg {
		outcome, err := gate.Register(ctx, reg)
		return registeredMsg{gen: gen, outcome: outcome, err: err}
	}
}

func (m Model) verifyCmd(token string) tea.Cmd {
	ctx, gate, gen := m.ctx, m.gate, m.gen
	return func() tea.Msg {
		text, ok := gate.VerifyEmail(ctx, token)
		return authReplyMsg{gen: gen, text: text, ok: ok}
	}
}

func (m Model) resetPasswordCmd(email string) tea.Cmd {
	ctx, gate, gen := m.ctx, m.gate, m.gen
	return func() tea.Msg {
		text, ok := gate.RequestPasswordReset(ctx, email)
		return authReplyMsg{gen: gen, text: text, ok: ok}
	}
}

func readLogsCmd(path string, min slog.Level) tea.Cmd {
	return func() tea.Msg {
		lines, err := logtail.Read(path, LogBufferLimit)
		if err != nil {
			return logsMsg{err: err}
		}
		return logsMsg{entries: logtail.ParseLines(lines, min)}
	}
}

// emit wraps a message as a command.
func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}
