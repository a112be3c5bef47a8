package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gittutor/tutor/internal/api"
	"github.com/gittutor/tutor/internal/course"
	"github.com/gittutor/tutor/internal/upload"
)

type coursePane int

const (
	paneLessons coursePane = iota
	paneDiscussion
)

// coursePage is one visit to a course: the viewer state plus cursors, the
// comment input and the upload form.
type coursePage struct {
	viewer        *course.Viewer
	cursor        int
	pane          coursePane
	composing     bool
	input         textinput.Model
	commentCursor int
	upload        *upload.Form
}

func newCoursePage(id api.ID) *coursePage {
	ti := textinput.New()
	ti.Placeholder = "Share your thoughts about this lesson..."
	ti.CharLimit = 1000
	ti.Prompt = "› "
	return &coursePage{viewer: course.NewViewer(id), input: ti}
}

func (m *Model) enterCourse(c api.Course) tea.Cmd {
	m.course = newCoursePage(c.ID)
	return m.fetchCourseCmd(c.ID)
}

// canManage reports whether the viewer may upload, edit or delete lessons of
// the open course.
func (m Model) canManage() bool {
	user, ok := m.gate.CurrentUser()
	if !ok || m.course == nil || m.course.viewer == nil {
		return false
	}
	c := m.course.viewer.Course()
	return api.CanManageCourse(&user, &c)
}

func (m *Model) onCourse(msg courseMsg) tea.Cmd {
	m.observe(msg.err)
	if m.stale(msg.gen) {
		return nil
	}
	if msg.err != nil {
		m.logger.Warn("load course failed", "error", msg.err)
	}
	m.course.viewer.Apply(msg.content, msg.err)
	if msg.err == nil && len(m.routes) > 0 {
		m.routes[len(m.routes)-1].course = msg.content.Course
	}
	return nil
}

func (m *Model) onVideos(msg videosMsg) tea.Cmd {
	m.observe(msg.err)
	if m.stale(msg.gen) || m.course.viewer.CourseID() != msg.course {
		return nil
	}
	if msg.err != nil {
		m.flash(noticeError, api.UserMessage(msg.err, "Failed to refresh lessons"))
		return nil
	}
	m.course.viewer.ReplaceVideos(msg.videos)
	m.course.cursor = max(min(m.course.cursor, len(msg.videos)-1), 0)
	return nil
}

func (m *Model) onComments(msg commentsMsg) tea.Cmd {
	m.observe(msg.err)
	if m.stale(msg.gen) {
		return nil
	}
	if msg.err != nil {
		m.logger.Warn("load comments failed", "video_id", msg.video, "error", msg.err)
		return nil
	}
	m.course.viewer.SeedComments(msg.video, msg.comments)
	return nil
}

func (m *Model) onCommentSynced(msg commentSyncedMsg) tea.Cmd {
	m.observe(msg.err)
	if m.stale(msg.gen) {
		return nil
	}
	if msg.err != nil {
		m.logger.Warn("store comment failed", "video_id", msg.video, "error", msg.err)
		return nil
	}
	m.course.viewer.Adopt(msg.video, msg.localID, msg.stored)
	return nil
}

func (m *Model) syncComments() bool {
	return m.config != nil && m.config.SyncComments
}

func (m *Model) handleCourseKey(msg tea.KeyMsg) tea.Cmd {
	p := m.course
	v := p.viewer

	if p.composing {
		return m.handleComposeKey(msg)
	}

	if v.Phase() != course.Ready {
		if key.Matches(msg, m.keys.Reload) {
			return m.enter()
		}
		return nil
	}

	videos := v.Videos()
	comments := v.Comments()

	switch {
	case key.Matches(msg, m.keys.Tab), key.Matches(msg, m.keys.ShiftTab):
		if p.pane == paneLessons {
			p.pane = paneDiscussion
		} else {
			p.pane = paneLessons
		}

	case key.Matches(msg, m.keys.Up):
		if p.pane == paneLessons {
			p.cursor = max(p.cursor-1, 0)
		} else {
			p.commentCursor = max(p.commentCursor-1, 0)
		}
	case key.Matches(msg, m.keys.Down):
		if p.pane == paneLessons {
			p.cursor = max(min(p.cursor+1, len(videos)-1), 0)
		} else {
			p.commentCursor = max(min(p.commentCursor+1, len(comments)-1), 0)
		}
	case key.Matches(msg, m.keys.Top):
		p.cursor, p.commentCursor = 0, 0
	case key.Matches(msg, m.keys.Bottom):
		if p.pane == paneLessons {
			p.cursor = max(len(videos)-1, 0)
		} else {
			p.commentCursor = max(len(comments)-1, 0)
		}

	case key.Matches(msg, m.keys.Confirm):
		if p.pane != paneLessons || p.cursor >= len(videos) {
			return nil
		}
		id := videos[p.cursor].ID
		if !v.Select(id) {
			return nil
		}
		p.commentCursor = 0
		if m.syncComments() {
			return m.listCommentsCmd(id)
		}

	case key.Matches(msg, m.keys.Comment):
		p.composing = true
		p.pane = paneDiscussion
		p.input.SetValue(v.Draft())
		p.input.CursorEnd()
		return p.input.Focus()

	case key.Matches(msg, m.keys.Like):
		if p.pane == paneDiscussion && p.commentCursor < len(comments) {
			v.LikeComment(comments[p.commentCursor].ID)
		}

	case key.Matches(msg, m.keys.Reload):
		return m.enter()

	case key.Matches(msg, m.keys.Upload):
		if !m.canManage() {
			return nil
		}
		if p.upload == nil || (!p.upload.Pending() && p.upload.Error() == "") {
			p.upload = upload.NewForm(v.CourseID())
		}
		um := newUploadModal(p.upload, v.Course().Title)
		m.modal = um
		if p.upload.Pending() {
			return um.spinner.Tick
		}
		return um.init()

	case key.Matches(msg, m.keys.ToggleFree):
		video, ok := m.targetVideo()
		if !m.canManage() || !ok {
			return nil
		}
		return m.setFreeCmd(v.CourseID(), video, !video.IsFree)

	case key.Matches(msg, m.keys.Delete):
		video, ok := m.targetVideo()
		if !m.canManage() || !ok {
			return nil
		}
		m.modal = confirmModal{
			title:     "Delete lesson",
			body:      fmt.Sprintf("Delete %q? This cannot be undone.", video.Title),
			onConfirm: deleteConfirmMsg{video: video.ID},
		}
	}
	return nil
}

// targetVideo is the lesson under the curriculum cursor.
func (m Model) targetVideo() (api.Video, bool) {
	videos := m.course.viewer.Videos()
	if m.course.cursor < 0 || m.course.cursor >= len(videos) {
		return api.Video{}, false
	}
	return videos[m.course.cursor], true
}

func (m *Model) handleComposeKey(msg tea.KeyMsg) tea.Cmd {
	p := m.course
	v := p.viewer
	switch msg.Type {
	case tea.KeyEsc:
		p.composing = false
		p.input.Blur()
		return nil
	case tea.KeyEnter:
		v.SetDraft(p.input.Value())
		c, ok := v.PostComment(m.currentUserName(), m.now())
		if !ok {
			return nil
		}
		p.input.SetValue("")
		p.composing = false
		p.input.Blur()
		p.commentCursor = 0
		if video, _, selected := v.Selected(); selected && m.syncComments() {
			return m.createCommentCmd(video.ID, c)
		}
		return nil
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	v.SetDraft(p.input.Value())
	return cmd
}

func (m *Model) submitUpload() tea.Cmd {
	form := m.course.upload
	if form == nil {
		return nil
	}
	up, files, ok := form.Begin()
	if !ok {
		return nil
	}
	m.logger.Info("uploading video", "course_id", up.CourseID, "title", up.Title)
	cmds := []tea.Cmd{m.uploadCmd(up, files)}
	if um, ok := m.modal.(*uploadModal); ok {
		cmds = append(cmds, um.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

// cancelUpload drops the draft of a dismissed upload so reopening starts
// empty. A request in flight keeps its form.
func (m *Model) cancelUpload() {
	if form := m.course.upload; form != nil && !form.Pending() {
		m.course.upload = nil
	}
}

func (m *Model) onUploadDone(msg uploadDoneMsg) tea.Cmd {
	m.observe(msg.err)
	form := m.course.upload
	if m.stale(msg.gen) || form == nil || form.CourseID() != msg.course {
		if msg.err != nil {
			m.flash(noticeError, api.UserMessage(msg.err, upload.MsgUploadFailed))
		} else {
			m.flash(noticeSuccess, upload.MsgUploaded)
		}
		return nil
	}

	form.Finish(msg.err)
	if msg.err != nil {
		m.logger.Warn("upload failed", "course_id", msg.course, "error", msg.err)
		if _, open := m.modal.(*uploadModal); !open {
			m.flash(noticeError, form.Error())
		}
		return nil
	}

	m.logger.Info("video uploaded", "course_id", msg.course, "video_id", msg.video.ID)
	if _, open := m.modal.(*uploadModal); open {
		m.modal = nil
	}
	m.course.upload = nil
	m.flash(noticeSuccess, upload.MsgUploaded)
	return m.fetchVideosCmd(msg.course)
}

func (m *Model) deleteVideo(id api.ID) tea.Cmd {
	for _, v := range m.course.viewer.Videos() {
		if v.ID == id {
			return m.deleteVideoCmd(m.course.viewer.CourseID(), v)
		}
	}
	return nil
}

func (m *Model) onVideoChanged(msg videoChangedMsg) tea.Cmd {
	m.observe(msg.err)
	if msg.err != nil {
		m.logger.Warn("video change failed", "course_id", msg.course, "error", msg.err)
		m.flash(noticeError, api.UserMessage(msg.err, "Failed to update video"))
		return nil
	}
	m.flash(noticeSuccess, msg.notice)
	if m.stale(msg.gen) {
		return nil
	}
	return m.fetchVideosCmd(msg.course)
}

func (m Model) renderCourse() string {
	p := m.course
	v := p.viewer
	styles := m.theme.Styles()
	width := m.width
	height := m.contentHeight()

	switch v.Phase() {
	case course.Loading:
		return m.renderBox("Course", m.renderPending("Loading course..."), width, height, true)
	case course.NotFound, course.Failed:
		title := "Course Not Found"
		if v.Phase() == course.Failed {
			title = "Error"
		}
		body := styles.DangerText.Render(v.Error()) + "\n\n" +
			styles.MutedText.Render("esc Back   C Browse courses   r Retry")
		return m.renderBox(title, body, width, height, true)
	}

	c := v.Course()
	header := m.renderCourseHeader(c, width)
	bodyHeight := max(height-lipgloss.Height(header), 6)

	if width < LayoutCompactWidth {
		lessonsHeight := max(bodyHeight/3, 4)
		playerHeight := max(bodyHeight/3, 5)
		discussionHeight := max(bodyHeight-lessonsHeight-playerHeight, 4)
		return lipgloss.JoinVertical(lipgloss.Left,
			header,
			m.renderCurriculum(width, lessonsHeight),
			m.renderPlayer(width, playerHeight),
			m.renderDiscussion(width, discussionHeight),
		)
	}

	left := m.renderCurriculum(LayoutCurriculumWidth, bodyHeight)
	rightWidth := width - LayoutCurriculumWidth
	playerHeight := min(max(bodyHeight/2, 8), 12)
	right := lipgloss.JoinVertical(lipgloss.Left,
		m.renderPlayer(rightWidth, playerHeight),
		m.renderDiscussion(rightWidth, bodyHeight-playerHeight),
	)
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.JoinHorizontal(lipgloss.Top, left, right),
	)
}

func (m Model) renderCourseHeader(c api.Course, width int) string {
	styles := m.theme.Styles()
	parts := []string{styles.Text.Bold(true).Render(c.Title)}
	if c.Code != nil {
		parts = append(parts, styles.FaintText.Render(*c.Code))
	}
	parts = append(parts, styles.MutedText.Render("by "+c.InstructorName()))
	if c.Level != "" {
		parts = append(parts, styles.AccentText.Render(c.Level))
	}
	if m.canManage() {
		parts = append(parts, styles.Badge("teacher").Render("manage"))
	}
	line := " " + strings.Join(parts, "  ")
	if c.Description == "" {
		return line
	}
	desc := truncate(strings.ReplaceAll(c.Description, "\n", " "), max(width-2, 10))
	return line + "\n " + styles.MutedText.Render(desc)
}

func (m Model) renderCurriculum(width, height int) string {
	p := m.course
	v := p.viewer
	styles := m.theme.Styles()
	videos := v.Videos()
	inner := max(width-4, 10)

	if len(videos) == 0 {
		return m.renderBox("Curriculum", styles.MutedText.Render(wrap(course.MsgNoLessons, inner)), width, height, p.pane == paneLessons)
	}

	selected, _, hasSelection := v.Selected()
	visible := max(height-2, 1)
	start := 0
	if p.cursor >= visible {
		start = p.cursor - visible + 1
	}
	end := min(start+visible, len(videos))

	rows := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		vid := videos[i]
		marker := "  "
		if hasSelection && vid.ID == selected.ID {
			marker = "▶ "
		}
		dur := course.FormatDuration(vid.Duration)
		badge := "free"
		if !vid.IsFree {
			badge = "premium"
		}
		titleWidth := max(inner-len(marker)-len(dur)-len(badge)-6, 6)
		label := fmt.Sprintf("%s%2d. %-*s %s", marker, i+1, titleWidth, truncate(vid.Title, titleWidth), dur)
		if i == p.cursor && p.pane == paneLessons {
			label = styles.Selected.Render(label)
		} else {
			label = styles.Text.Render(label)
		}
		rows = append(rows, label+" "+styles.Badge(badge).Render(badge))
	}

	title := fmt.Sprintf("Curriculum (%d)", len(videos))
	return m.renderBox(title, strings.Join(rows, "\n"), width, height, p.pane == paneLessons)
}

func (m Model) renderPlayer(width, height int) string {
	v := m.course.viewer
	styles := m.theme.Styles()
	inner := max(width-4, 10)

	video, _, ok := v.Selected()
	if !ok {
		return m.renderBox("Lesson", styles.MutedText.Render(wrap(v.Placeholder(), inner)), width, height, false)
	}

	badge := "free"
	if !video.IsFree {
		badge = "premium"
	}
	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(video.Title))
	b.WriteString("  ")
	b.WriteString(styles.Badge(badge).Render(badge))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render(v.LessonLabel() + "  ·  " + course.FormatDuration(video.Duration)))
	b.WriteString("\n\n")
	if video.URL != "" {
		b.WriteString(styles.AccentText.Render("▶ " + truncate(video.URL, inner-2)))
		b.WriteString("\n\n")
	}
	if video.Description != "" {
		b.WriteString(wrap(styles.Text.Render(video.Description), inner))
	}
	return m.renderBox(v.LessonLabel(), b.String(), width, height, false)
}

func (m Model) renderDiscussion(width, height int) string {
	p := m.course
	v := p.viewer
	styles := m.theme.Styles()
	inner := max(width-4, 10)
	comments := v.Comments()

	var b strings.Builder
	if p.composing {
		p.input.Width = inner - 2
		b.WriteString(p.input.View())
		b.WriteString("\n")
		b.WriteString(styles.FaintText.Render("enter Post   esc Cancel"))
	} else {
		b.WriteString(styles.FaintText.Render("c Write a comment as " + m.currentUserName()))
	}
	b.WriteString("\n\n")

	if len(comments) == 0 {
		b.WriteString(styles.MutedText.Render("No comments yet. Be the first to share your thoughts!"))
	}
	now := m.now()
	for i, c := range comments {
		head := styles.AccentText.Render(c.Author) + "  " +
			styles.FaintText.Render(course.Age(c.CreatedAt, now)) + "  " +
			styles.MutedText.Render(fmt.Sprintf("♥ %d", c.Likes))
		if len(c.Replies) > 0 {
			head += styles.MutedText.Render(fmt.Sprintf("  %d replies", len(c.Replies)))
		}
		if i == p.commentCursor && p.pane == paneDiscussion && !p.composing {
			head = styles.Selected.Render("›") + " " + head
		} else {
			head = "  " + head
		}
		b.WriteString(head)
		b.WriteString("\n")
		b.WriteString(wrap(styles.Text.Render(c.Content), inner-2))
		b.WriteString("\n")
	}

	title := fmt.Sprintf("Discussion (%d)", len(comments))
	return m.renderBox(title, b.String(), width, height, p.pane == paneDiscussion)
}
