package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gittutor/tutor/internal/api"
	"github.com/gittutor/tutor/internal/catalog"
	"github.com/gittutor/tutor/internal/prefs"
	"github.com/gittutor/tutor/internal/state"
)

// catalogPage is the course browser.
type catalogPage struct {
	state   *catalog.Catalog
	cursor  int
	loading bool
	adopted time.Time
}

func newCatalogPage(c *catalog.Catalog) *catalogPage {
	return &catalogPage{state: c}
}

var tabPrefs = map[catalog.Mode]string{
	catalog.Browse:   prefs.TabBrowse,
	catalog.Enrolled: prefs.TabEnrolled,
	catalog.Teaching: prefs.TabTeaching,
}

// restoreTab reopens the saved tab. A tab the current session may not see
// falls back to Browse.
func (p *catalogPage) restoreTab(tab string) {
	for mode, name := range tabPrefs {
		if name == tab {
			p.state.SetMode(mode)
			return
		}
	}
}

func (p *catalogPage) tabPref() string {
	return tabPrefs[p.state.Mode()]
}

// adoptSnapshot installs a listing refreshed by the background poller.
func (p *catalogPage) adoptSnapshot(s state.Snapshot) {
	if !s.HasCourses || s.LastUpdated.IsZero() || !s.LastUpdated.After(p.adopted) {
		return
	}
	p.adopted = s.LastUpdated
	p.state.Load(s.Courses, nil)
	p.clamp()
}

func (p *catalogPage) clamp() {
	n := len(p.state.Courses())
	p.cursor = max(min(p.cursor, n-1), 0)
}

func (p *catalogPage) selected() (api.Course, bool) {
	courses := p.state.Courses()
	if p.cursor < 0 || p.cursor >= len(courses) {
		return api.Course{}, false
	}
	return courses[p.cursor], true
}

func (m *Model) enterCatalog() tea.Cmd {
	m.catalog.loading = true
	cmds := []tea.Cmd{m.listCoursesCmd()}
	if m.gate.IsAuthenticated() {
		cmds = append(cmds, m.enrolledSetCmd())
	}
	return tea.Batch(cmds...)
}

func (m *Model) onCourses(msg coursesMsg) tea.Cmd {
	m.store.Update(msg.courses, msg.err)
	m.snapshot = m.store.Snapshot()
	m.catalog.adopted = m.snapshot.LastUpdated
	if m.stale(msg.gen) {
		return nil
	}
	if msg.err != nil {
		m.logger.Warn("list courses failed", "error", msg.err)
	}
	m.catalog.loading = false
	m.catalog.state.Load(msg.courses, msg.err)
	m.catalog.clamp()
	return nil
}

func (m *Model) onEnrolledSet(msg enrolledSetMsg) tea.Cmd {
	m.observe(msg.set.RemoteErr)
	if m.stale(msg.gen) {
		return nil
	}
	m.profile.loading = false
	if msg.err != nil {
		m.logger.Warn("load enrollments failed", "error", msg.err)
		m.profile.err = api.UserMessage(msg.err, "Failed to load enrollments")
		return nil
	}
	m.profile.err = ""
	m.catalog.state.SetEnrolled(msg.set)
	m.catalog.clamp()
	return nil
}

func (m *Model) handleCatalogKey(msg tea.KeyMsg) tea.Cmd {
	p := m.catalog
	n := len(p.state.Courses())

	switch {
	case key.Matches(msg, m.keys.TabBrowse):
		return m.switchTab(catalog.Browse)
	case key.Matches(msg, m.keys.TabEnrolled):
		return m.switchTab(catalog.Enrolled)
	case key.Matches(msg, m.keys.TabTeaching):
		return m.switchTab(catalog.Teaching)
	case key.Matches(msg, m.keys.Tab), key.Matches(msg, m.keys.Right):
		modes := catalog.Modes()
		return m.switchTab(modes[(int(p.state.Mode())+1)%len(modes)])
	case key.Matches(msg, m.keys.ShiftTab), key.Matches(msg, m.keys.Left):
		modes := catalog.Modes()
		return m.switchTab(modes[(int(p.state.Mode())+len(modes)-1)%len(modes)])

	case key.Matches(msg, m.keys.Up):
		p.cursor = max(p.cursor-1, 0)
	case key.Matches(msg, m.keys.Down):
		p.cursor = max(min(p.cursor+1, n-1), 0)
	case key.Matches(msg, m.keys.Top):
		p.cursor = 0
	case key.Matches(msg, m.keys.Bottom):
		p.cursor = max(n-1, 0)

	case key.Matches(msg, m.keys.Reload):
		return m.enter()

	case key.Matches(msg, m.keys.Confirm):
		c, ok := p.selected()
		if !ok {
			return nil
		}
		return m.openCourse(c)
	}
	return nil
}

// switchTab changes the catalog tab, sending the viewer to sign in when the
// tab needs a session.
func (m *Model) switchTab(mode catalog.Mode) tea.Cmd {
	switch m.catalog.state.SetMode(mode) {
	case catalog.RequireLogin:
		m.flash(noticeInfo, catalog.MsgLoginRequired)
		m.auth.setMode(authSignIn)
		return m.push(route{kind: routeAuth})
	case catalog.Denied:
		m.flash(noticeError, catalog.MsgTeachersOnly)
		return nil
	}
	m.catalog.cursor = 0
	m.savePrefs()
	return nil
}

// openCourse navigates to an enrolled course or asks to enroll.
func (m *Model) openCourse(c api.Course) tea.Cmd {
	switch m.catalog.state.Open(c) {
	case catalog.Navigate:
		return m.push(route{kind: routeCourse, course: c})
	case catalog.Prompt:
		if prompt, ok := m.catalog.state.Prompt(); ok {
			m.modal = enrollModal{prompt: prompt}
		}
	case catalog.RequireLogin:
		m.flash(noticeInfo, catalog.MsgLoginRequired)
		m.auth.setMode(authSignIn)
		return m.push(route{kind: routeAuth})
	}
	return nil
}

func (m *Model) confirmEnroll() tea.Cmd {
	id, ok := m.catalog.state.Confirm()
	if !ok {
		return nil
	}
	c := api.Course{ID: id}
	for _, course := range m.catalog.state.All() {
		if course.ID == id {
			c = course
			break
		}
	}
	m.logger.Info("enrolling", "course_id", id)
	return m.enrollCmd(c)
}

// onEnrollDone settles an enrollment. Success leaves the course page under
// the confirmation screen, so going back lands on the lessons.
func (m *Model) onEnrollDone(msg enrollDoneMsg) tea.Cmd {
	m.observe(msg.err)
	switch m.catalog.state.Settle(msg.course.ID, msg.err) {
	case catalog.Navigate:
	case catalog.Dropped:
		m.logger.Info("enroll result after sign-out discarded", "course_id", msg.course.ID, "error", msg.err)
		return nil
	default:
		m.logger.Warn("enroll failed", "course_id", msg.course.ID, "error", msg.err)
		m.flash(noticeError, m.catalog.state.EnrollError())
		return nil
	}
	if m.stale(msg.gen) {
		m.flash(noticeSuccess, "Enrolled in "+msg.course.Title)
		return nil
	}
	m.routes = append(m.routes, route{kind: routeCourse, course: msg.course})
	return m.push(route{kind: routeEnrollment, course: msg.course})
}

func (m Model) renderCatalog() string {
	p := m.catalog
	styles := m.theme.Styles()
	width := m.width
	height := m.contentHeight()

	var tabs []string
	for i, mode := range catalog.Modes() {
		label := fmt.Sprintf(" %d %s ", i+1, mode)
		if mode == p.state.Mode() {
			tabs = append(tabs, styles.Selected.Bold(true).Render(label))
		} else {
			tabs = append(tabs, styles.MutedText.Render(label))
		}
	}
	tabRow := strings.Join(tabs, " ")

	courses := p.state.Courses()
	inner := max(width-6, 20)

	var body strings.Builder
	body.WriteString(tabRow)
	body.WriteString("\n\n")

	switch {
	case p.loading && !p.state.Loaded():
		body.WriteString(m.renderPending("Loading courses..."))
	case p.state.LoadError() != "":
		body.WriteString(styles.DangerText.Render(p.state.LoadError()))
		body.WriteString("\n")
		body.WriteString(styles.MutedText.Render("Press r to try again."))
	case len(courses) == 0:
		body.WriteString(styles.MutedText.Render(emptyCatalogText(p.state.Mode())))
	default:
		detailHeight := 5
		listHeight := max(height-2-3-detailHeight, 3)
		body.WriteString(m.renderCourseRows(courses, inner, listHeight))
		if c, ok := p.selected(); ok {
			body.WriteString("\n")
			body.WriteString(styles.FaintText.Render(strings.Repeat("─", inner)))
			body.WriteString("\n")
			desc := c.Description
			if desc == "" {
				desc = "No description yet."
			}
			body.WriteString(lipgloss.NewStyle().MaxHeight(detailHeight - 1).Render(wrap(styles.Text.Render(desc), inner)))
		}
	}

	if msg := p.state.EnrollError(); msg != "" {
		body.WriteString("\n\n")
		body.WriteString(styles.DangerText.Render(msg))
	}

	title := fmt.Sprintf("Courses (%d)", len(courses))
	return m.renderBox(title, body.String(), width, height, true)
}

func emptyCatalogText(mode catalog.Mode) string {
	switch mode {
	case catalog.Enrolled:
		return "You haven't enrolled in any courses yet. Press 1 to browse."
	case catalog.Teaching:
		return "You are not teaching any courses yet."
	default:
		return "No courses available yet."
	}
}

// renderCourseRows renders a scrolling window of the listing around the
// cursor.
func (m Model) renderCourseRows(courses []api.Course, width, height int) string {
	p := m.catalog
	styles := m.theme.Styles()

	start := 0
	if p.cursor >= height {
		start = p.cursor - height + 1
	}
	end := min(start+height, len(courses))

	statusWidth := 12
	levelWidth := 14
	instructorWidth := 22
	titleWidth := max(width-statusWidth-levelWidth-instructorWidth-4, 12)
	compact := m.width < LayoutCompactWidth
	if compact {
		titleWidth = max(width-statusWidth-2, 12)
	}

	rows := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		c := courses[i]
		title := c.Title
		if c.Code != nil {
			title = *c.Code + "  " + title
		}
		cols := []string{fmt.Sprintf("%-*s", titleWidth, truncate(title, titleWidth))}
		if !compact {
			cols = append(cols,
				fmt.Sprintf("%-*s", instructorWidth, truncate(c.InstructorName(), instructorWidth)),
				fmt.Sprintf("%-*s", levelWidth, truncate(c.Level, levelWidth)),
			)
		}
		line := strings.Join(cols, " ")

		var status string
		switch {
		case p.state.Pending(c.ID):
			status = m.spinner.View() + " enrolling"
		case p.state.IsEnrolled(c.ID):
			status = styles.Badge("enrolled").Render("enrolled")
		default:
			status = styles.FaintText.Render("enroll ›")
		}

		if i == p.cursor {
			rows = append(rows, styles.Selected.Render(line)+" "+status)
		} else {
			rows = append(rows, styles.Text.Render(line)+" "+status)
		}
	}
	return strings.Join(rows, "\n")
}
