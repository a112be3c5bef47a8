package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// homePage is the landing menu. scroll is shared by the static pages.
type homePage struct {
	cursor int
	scroll int
}

type menuItem struct {
	label string
	desc  string
	route routeKind
}

func (m Model) homeMenu() []menuItem {
	account := menuItem{"Sign in", "Log in or create an account", routeAuth}
	if user, ok := m.gate.CurrentUser(); ok {
		account = menuItem{"My profile", "Enrollments for " + user.Name, routeProfile}
	}
	return []menuItem{
		{"Browse courses", "Every course on Git-Tutor", routeCatalog},
		account,
		{"About", "What Git-Tutor is", routeAbout},
		{"Contact", "Reach the support team", routeContact},
		{"Terms", "Terms and conditions", routeTerms},
		{"Client log", "This client's own log", routeLogs},
	}
}

func (m *Model) handleHomeKey(msg tea.KeyMsg) tea.Cmd {
	items := m.homeMenu()
	switch {
	case key.Matches(msg, m.keys.Up):
		m.home.cursor = max(m.home.cursor-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.home.cursor = min(m.home.cursor+1, len(items)-1)
	case key.Matches(msg, m.keys.Top):
		m.home.cursor = 0
	case key.Matches(msg, m.keys.Bottom):
		m.home.cursor = len(items) - 1
	case key.Matches(msg, m.keys.Confirm):
		item := items[min(m.home.cursor, len(items)-1)]
		if item.route == routeAuth {
			m.auth.setMode(authSignIn)
		}
		m.home.scroll = 0
		return m.push(route{kind: item.route})
	}
	return nil
}

func (m Model) renderHome() string {
	styles := m.theme.Styles()
	width := m.width
	height := m.contentHeight()

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(styles.Logo.Render("  git-tutor"))
	b.WriteString("\n\n")
	b.WriteString(styles.Text.Bold(true).Render("  Grow your skills to advance your career path"))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render("  Learn Git from first commit to team workflows, one lesson at a time."))
	b.WriteString("\n\n")

	if m.snapshot.HasCourses {
		b.WriteString(styles.AccentText.Render(fmt.Sprintf("  %d courses available", len(m.snapshot.Courses))))
		b.WriteString("\n\n")
	}

	for i, item := range m.homeMenu() {
		line := fmt.Sprintf("  %-16s %s", item.label, item.desc)
		if i == m.home.cursor {
			b.WriteString(styles.Selected.Render("▸" + line))
		} else {
			b.WriteString(styles.Text.Render(" " + fmt.Sprintf("  %-16s", item.label)))
			b.WriteString(styles.MutedText.Render(" " + item.desc))
		}
		b.WriteString("\n")
	}

	return m.renderBox("Welcome", b.String(), width, height, true)
}

// Static pages.

type staticSection struct {
	title string
	lines []string
}

var aboutPage = []staticSection{
	{"About Git-Tutor", []string{
		"Git-Tutor teaches version control through short video lessons, from basic commits to advanced branching strategies.",
	}},
	{"Interactive Learning", []string{"Hands-on exercises and real-world scenarios to reinforce Git concepts."}},
	{"Progressive Skill Building", []string{"Structured learning paths from basic commits to advanced branching strategies."}},
	{"Community Driven", []string{"Learn with peers, share knowledge, and contribute to open-source projects."}},
	{"Career Ready", []string{"Industry-relevant skills that prepare you for collaborative development environments."}},
	{"Why Choose Git-Tutor?", []string{
		"Comprehensive Git Coverage: every aspect of Git from basic commits to merge strategies and conflict resolution.",
		"Branch Management: branching workflows used in professional development environments.",
		"Team Collaboration: working effectively in teams using Git.",
		"Certification Ready: certificates that validate your Git expertise.",
	}},
}

var contactPage = []staticSection{
	{"Get in touch", []string{
		"Phone:   +2335523456789",
		"Email:   support@egattor.com",
		"Address: Accra, Ghana",
	}},
	{"Support", []string{
		"Include the course title and, for playback problems, the lesson number.",
		"Press L to open the client log when reporting a bug.",
	}},
}

var termsPage = []staticSection{
	{"1. Acceptance of Terms", []string{
		"By accessing and using Git-Tutor, you accept and agree to be bound by the terms and provision of this agreement.",
	}},
	{"2. User Accounts", []string{
		"You are responsible for maintaining the confidentiality of your account and password. You agree to accept responsibility for all activities that occur under your account.",
	}},
	{"3. User Roles", []string{
		"Students: Must use @students.git.edu email addresses for registration.",
		"Teachers: Must use @git.edu email addresses and require email verification before accessing the platform.",
		"Administrators: Require special admin keys and have full platform access.",
	}},
	{"4. Acceptable Use", []string{
		"You agree not to use the service to:",
		"  • Violate any applicable laws or regulations",
		"  • Infringe on intellectual property rights",
		"  • Upload malicious content or viruses",
		"  • Harass or abuse other users",
	}},
	{"5. Content", []string{
		"All course materials, videos, and content provided on Git-Tutor are for educational purposes only. You may not reproduce, distribute, or sell this content without permission.",
	}},
	{"6. Privacy", []string{
		"Your privacy is important to us. Please review our Privacy Policy to understand how we collect, use, and protect your information.",
	}},
	{"7. Limitation of Liability", []string{
		`Git-Tutor is provided "as is" without warranties. We are not liable for any damages arising from your use of the service.`,
	}},
	{"8. Changes to Terms", []string{
		"We may update these terms from time to time. Continued use of the service after changes means you accept the new terms.",
	}},
}

func (m *Model) handleStaticKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.home.scroll = max(m.home.scroll-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.home.scroll++
	case key.Matches(msg, m.keys.Top):
		m.home.scroll = 0
	}
	return nil
}

func (m Model) renderStatic() string {
	var sections []staticSection
	title := m.current().title()
	switch m.current().kind {
	case routeAbout:
		sections = aboutPage
	case routeContact:
		sections = contactPage
	case routeTerms:
		sections = termsPage
		title = "Terms and Conditions"
	}

	styles := m.theme.Styles()
	inner := max(m.width-6, 20)
	var lines []string
	for _, s := range sections {
		lines = append(lines, styles.AccentText.Bold(true).Render(s.title))
		for _, l := range s.lines {
			lines = append(lines, strings.Split(wrap(styles.Text.Render(l), inner), "\n")...)
		}
		lines = append(lines, "")
	}

	height := m.contentHeight()
	visible := max(height-2, 1)
	offset := min(m.home.scroll, max(len(lines)-visible, 0))
	end := min(offset+visible, len(lines))

	content := lipgloss.JoinVertical(lipgloss.Left, lines[offset:end]...)
	return m.renderBox(title, content, m.width, height, true)
}
