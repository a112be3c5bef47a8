package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gittutor/tutor/internal/catalog"
)

// Modal is the interface for modal dialogs.
// The Update method returns the updated modal, a command, and a bool indicating if the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

// enrollModal asks the viewer to confirm an enrollment.
type enrollModal struct {
	prompt catalog.Confirmation
}

func (e enrollModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return e, nil, false
	}
	switch {
	case key.Matches(k, keys.Confirm):
		return e, emit(enrollConfirmMsg{}), true
	case key.Matches(k, keys.Cancel), key.Matches(k, keys.Back):
		return e, emit(enrollCancelMsg{}), true
	}
	return e, nil, false
}

func (e enrollModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	var b strings.Builder

	b.WriteString(styles.Text.Bold(true).Render("Enroll in " + e.prompt.Title))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render("Instructor: " + e.prompt.Instructor))
	if e.prompt.Level != "" {
		b.WriteString(styles.MutedText.Render("  ·  Level: " + e.prompt.Level))
	}
	b.WriteString("\n\n")

	b.WriteString(styles.AccentText.Bold(true).Render("What you'll get"))
	b.WriteString("\n")
	for _, item := range catalog.Benefits {
		b.WriteString(styles.SuccessText.Render("✓ "))
		b.WriteString(styles.Text.Render(item))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.InfoText.Render(catalog.FreeNote))
	b.WriteString("\n\n")
	b.WriteString(styles.WarningText.Render("enter/y") + styles.MutedText.Render(" Enroll now   "))
	b.WriteString(styles.WarningText.Render("esc/n") + styles.MutedText.Render(" Cancel"))

	return placeModal(theme, width, height, b.String(), LayoutModalWidth)
}

// confirmModal asks a yes/no question and emits onConfirm on yes.
type confirmModal struct {
	title     string
	body      string
	onConfirm tea.Msg
}

func (c confirmModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil, false
	}
	switch {
	case key.Matches(k, keys.Confirm):
		return c, emit(c.onConfirm), true
	case key.Matches(k, keys.Cancel), key.Matches(k, keys.Back):
		return c, nil, true
	}
	return c, nil, false
}

func (c confirmModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	content := styles.DangerText.Render(c.title) + "\n\n" +
		styles.Text.Render(c.body) + "\n\n" +
		styles.WarningText.Render("y") + styles.MutedText.Render(" Confirm   ") +
		styles.WarningText.Render("n") + styles.MutedText.Render(" Cancel")
	return placeModal(theme, width, height, content, 48)
}

// placeModal centers a bordered dialog.
func placeModal(theme Theme, width, height int, content string, modalWidth int) string {
	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.Accent)).
		Padding(1, 2).
		Width(min(modalWidth, max(width-4, 20))).
		Render(content)

	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		modal,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)),
	)
}
