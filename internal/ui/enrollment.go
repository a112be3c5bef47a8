package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

var nextSteps = []string{
	"Start watching the first lesson",
	"Join the discussion under each video",
	"Track your courses from your profile",
}

func (m *Model) handleEnrollmentKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Confirm) {
		return m.pop()
	}
	return nil
}

func (m Model) renderEnrollment() string {
	c := m.current().course
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.SuccessText.Render("✓ Enrollment Successful!"))
	b.WriteString("\n\n")
	b.WriteString(styles.Text.Render("You are now enrolled in "))
	b.WriteString(styles.AccentText.Bold(true).Render(c.Title))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render("Instructor: " + c.InstructorName()))
	b.WriteString("\n\n")
	b.WriteString(styles.Text.Bold(true).Render("What's Next?"))
	b.WriteString("\n")
	for _, s := range nextSteps {
		b.WriteString(styles.MutedText.Render("  • " + s))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.WarningText.Render("enter") + styles.MutedText.Render(" Start Learning   "))
	b.WriteString(styles.WarningText.Render("C") + styles.MutedText.Render(" Explore More"))

	return m.renderBox("Enrollment", b.String(), m.width, m.contentHeight(), true)
}
