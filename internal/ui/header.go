package ui

import "time"

type noticeKind int

const (
	noticeInfo noticeKind = iota
	noticeSuccess
	noticeError
)

// notice is a transient message shown in the header.
type notice struct {
	kind noticeKind
	text string
	at   time.Time
}

func (n notice) expired(now time.Time) bool {
	return n.text != "" && now.Sub(n.at) > NoticeTTL
}

// flash shows text in the header until NoticeTTL passes.
func (m *Model) flash(kind noticeKind, text string) {
	m.notice = notice{kind: kind, text: text, at: m.now()}
}

// renderHeader renders the status bar: logo, route, identity and
// connectivity.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	compact := m.width < LayoutCompactWidth

	parts := []string{
		bg.Render("git-tutor", styles.Logo),
		bg.Render(m.current().title(), styles.Text.Bold(true)),
	}
	if !compact {
		parts = append(parts, bg.Render(m.current().path(), styles.FaintText))
	}

	if user, ok := m.gate.CurrentUser(); ok {
		parts = append(parts,
			bg.Render(user.Name, styles.Text)+bg.Spaces(1)+
				styles.Badge(string(user.Role)).Render(string(user.Role)))
	} else {
		parts = append(parts, bg.Render("Guest", styles.MutedText))
	}

	if m.snapshot.IsOffline() {
		parts = append(parts, bg.Render("● OFFLINE", styles.DangerText))
	} else if m.snapshot.LastError != nil && !compact {
		parts = append(parts, bg.Render("● degraded", styles.WarningText))
	}

	if m.notice.text != "" {
		style := styles.InfoText
		switch m.notice.kind {
		case noticeSuccess:
			style = styles.SuccessText
		case noticeError:
			style = styles.DangerText
		}
		parts = append(parts, bg.Render(truncate(m.notice.text, max(m.width/2, 20)), style))
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, "  "))
}

// renderCommandBar lists the keys of the current screen.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.current().kind {
	case routeAuth:
		commands = []cmd{
			{"tab", "Next"},
			{"ctrl+s", "Submit"},
			{"ctrl+n", m.auth.switchLabel()},
			{"ctrl+f", "Forgot"},
			{"ctrl+v", "Verify"},
			{"esc", "Back"},
		}
	case routeCatalog:
		commands = []cmd{
			{"1/2/3", m.catalog.state.Mode().String()},
			{"j/k", "Navigate"},
			{"enter", "Open"},
			{"r", "Reload"},
		}
	case routeCourse:
		commands = []cmd{
			{"j/k", "Lessons"},
			{"enter", "Play"},
			{"c", "Comment"},
			{"+", "Like"},
			{"tab", "Pane"},
		}
		if m.canManage() {
			commands = append(commands, cmd{"u", "Upload"}, cmd{"f", "Free"}, cmd{"x", "Delete"})
		}
	case routeEnrollment:
		commands = []cmd{
			{"enter", "Start learning"},
			{"C", "Explore more"},
		}
	case routeProfile:
		commands = []cmd{
			{"j/k", "Navigate"},
			{"enter", "Open"},
			{"o", "Sign out"},
		}
	case routeLogs:
		followLabel := "Pause"
		if !m.logs.follow {
			followLabel = "Follow"
		}
		commands = []cmd{
			{"F", followLabel},
			{"/", "Search"},
			{"n/N", "Next/Prev"},
			{"v", "Level " + m.logs.min.String()},
		}
	default:
		commands = []cmd{
			{"j/k", "Navigate"},
			{"enter", "Open"},
		}
	}
	if m.current().kind != routeAuth {
		commands = append(commands,
			cmd{"C", "Courses"},
			cmd{"P", "Profile"},
			cmd{"esc", "Back"},
			cmd{"?", "More"},
		)
	}

	colon := bg.Render(":", styles.FaintText)
	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}
	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(bg.Join(segments, "  "))
}

// renderPending renders a spinner with a label.
func (m Model) renderPending(label string) string {
	styles := m.theme.Styles()
	return styles.AccentText.Render(m.spinner.View()) + " " + styles.MutedText.Render(label)
}
