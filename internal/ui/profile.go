package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gittutor/tutor/internal/api"
	"github.com/gittutor/tutor/internal/course"
)

// profilePage shows the signed-in user and their enrollments.
type profilePage struct {
	cursor  int
	loading bool
	err     string
}

func (p *profilePage) reset() { *p = profilePage{} }

func (m *Model) enterProfile() tea.Cmd {
	if !m.gate.IsAuthenticated() {
		return nil
	}
	m.profile.loading = true
	cmds := []tea.Cmd{m.enrolledSetCmd()}
	if !m.catalog.state.Loaded() {
		cmds = append(cmds, m.listCoursesCmd())
	}
	return tea.Batch(cmds...)
}

// enrolledCourses resolves the reconciled enrollment ids to course records.
// Ids the listing does not know keep a placeholder title.
func (m Model) enrolledCourses() []api.Course {
	known := map[api.ID]api.Course{}
	for _, c := range m.snapshot.Courses {
		known[c.ID] = c
	}
	for _, c := range m.catalog.state.All() {
		known[c.ID] = c
	}
	ids := m.catalog.state.Reconciled().IDs
	out := make([]api.Course, 0, len(ids))
	for _, id := range ids {
		c, ok := known[id]
		if !ok {
			c = api.Course{ID: id, Title: "Course " + id.String()}
		}
		out = append(out, c)
	}
	return out
}

func (m *Model) handleProfileKey(msg tea.KeyMsg) tea.Cmd {
	if !m.gate.IsAuthenticated() {
		if key.Matches(msg, m.keys.Confirm) {
			m.auth.setMode(authSignIn)
			return m.push(route{kind: routeAuth})
		}
		return nil
	}

	courses := m.enrolledCourses()
	switch {
	case key.Matches(msg, m.keys.Up):
		m.profile.cursor = max(m.profile.cursor-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.profile.cursor = max(min(m.profile.cursor+1, len(courses)-1), 0)
	case key.Matches(msg, m.keys.Reload):
		return m.enter()
	case key.Matches(msg, m.keys.SignOut):
		m.logger.Info("signing out")
		m.signOut()
		m.flash(noticeInfo, "You have been signed out")
		return m.reset(route{kind: routeHome})
	case key.Matches(msg, m.keys.Confirm):
		if m.profile.cursor < len(courses) {
			return m.push(route{kind: routeCourse, course: courses[m.profile.cursor]})
		}
	}
	return nil
}

func (m Model) renderProfile() string {
	styles := m.theme.Styles()
	width := m.width
	height := m.contentHeight()
	inner := max(width-6, 20)

	user, ok := m.gate.CurrentUser()
	if !ok {
		body := styles.MutedText.Render("You are browsing as "+course.AnonymousName) + "\n\n" +
			styles.WarningText.Render("enter") + styles.MutedText.Render(" Sign in to see your profile")
		return m.renderBox("Profile", body, width, height, true)
	}

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(user.Name))
	b.WriteString("  ")
	b.WriteString(styles.Badge(string(user.Role)).Render(string(user.Role)))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render(user.Email))
	if user.IsVerified {
		b.WriteString(styles.SuccessText.Render("  ✓ verified"))
	} else if user.Role == api.RoleTeacher {
		b.WriteString(styles.WarningText.Render("  email not verified"))
	}
	b.WriteString("\n\n")

	courses := m.enrolledCourses()
	b.WriteString(styles.AccentText.Bold(true).Render(fmt.Sprintf("Enrolled Courses (%d)", len(courses))))
	b.WriteString("\n")

	set := m.catalog.state.Reconciled()
	switch {
	case m.profile.loading && len(courses) == 0:
		b.WriteString(m.renderPending("Loading enrollments..."))
	case m.profile.err != "":
		b.WriteString(styles.DangerText.Render(m.profile.err))
	case len(courses) == 0:
		b.WriteString(styles.Text.Render("No courses enrolled yet"))
		b.WriteString("\n")
		b.WriteString(styles.MutedText.Render("Start your learning journey by enrolling in your first course!"))
	default:
		for i, c := range courses {
			line := fmt.Sprintf("  %-*s %s", max(inner/2, 20), truncate(c.Title, max(inner/2, 20)), c.InstructorName())
			if i == m.profile.cursor {
				b.WriteString(styles.Selected.Render(line))
			} else {
				b.WriteString(styles.Text.Render(line))
			}
			b.WriteString("\n")
		}
	}

	if set.RemoteErr != nil {
		b.WriteString("\n")
		b.WriteString(styles.WarningText.Render("Showing enrollments saved on this device; the server could not be reached."))
	} else if set.Discrepant() {
		b.WriteString("\n")
		b.WriteString(styles.InfoText.Render(fmt.Sprintf(
			"Server and local records differ: %d only on this device, %d only on the server.",
			len(set.OnlyLocal), len(set.OnlyRemote))))
	}

	return m.renderBox(profileTitle(user.Role), b.String(), width, height, true)
}

func profileTitle(r api.Role) string {
	switch r {
	case api.RoleTeacher:
		return "Teacher Profile"
	case api.RoleAdmin:
		return "Admin Profile"
	default:
		return "Student Profile"
	}
}
