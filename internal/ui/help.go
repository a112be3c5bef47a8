package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()

	sections := []helpSection{
		{
			title: "Navigation",
			items: []helpItem{
				{"H/C/P", "Home/Courses/Profile"},
				{"A", "Sign in or register"},
				{"L", "Client log"},
				{"esc", "Back"},
				{"j/k", "Move up/down"},
				{"g/G", "Go to top/bottom"},
			},
		},
		{
			title: "Courses",
			items: []helpItem{
				{"1/2/3", "All/enrolled/teaching"},
				{"enter", "Open or enroll"},
				{"r", "Reload"},
			},
		},
		{
			title: "Lessons",
			items: []helpItem{
				{"enter", "Play lesson"},
				{"tab", "Lessons/discussion"},
				{"c", "Write a comment"},
				{"+", "Like comment"},
			},
		},
		{
			title: "Teaching",
			items: []helpItem{
				{"u", "Upload video"},
				{"f", "Toggle free/premium"},
				{"x", "Delete lesson"},
			},
		},
		{
			title: "Forms",
			items: []helpItem{
				{"tab", "Next field"},
				{"space", "Toggle checkbox"},
				{"ctrl+s", "Submit"},
			},
		},
		{
			title: "General",
			items: []helpItem{
				{"T", "Cycle theme"},
				{"?", "Toggle help"},
				{"q/ctrl+c", "Quit"},
			},
		},
	}

	var b strings.Builder

	b.WriteString(styles.Text.Bold(true).Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 30)))
	b.WriteString("\n\n")

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Warning)).
		Width(12)

	for i, section := range sections {
		b.WriteString(styles.AccentText.Bold(true).Render(section.title))
		b.WriteString("\n")

		for _, item := range section.items {
			b.WriteString(keyStyle.Render(item.key))
			b.WriteString(styles.Text.Render(item.desc))
			b.WriteString("\n")
		}

		if i < len(sections)-1 {
			b.WriteString("\n")
		}
	}

	return m.renderModal(b.String(), 40)
}

type helpSection struct {
	title string
	items []helpItem
}

type helpItem struct {
	key  string
	desc string
}
