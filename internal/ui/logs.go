package ui

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gittutor/tutor/internal/logtail"
)

// logLevels is the cycle order of the minimum level filter.
var logLevels = []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError}

// logPage tails the client's own log file.
type logPage struct {
	entries     []logtail.Entry
	err         error
	follow      bool
	min         slog.Level
	lastRefresh time.Time

	// Search
	searching   bool
	search      textinput.Model
	query       string
	pattern     *regexp.Regexp
	matches     []int
	matchIdx    int
	searchError string

	viewport viewport.Model
}

func newLogPage() *logPage {
	ti := textinput.New()
	ti.Placeholder = "Search logs..."
	ti.CharLimit = 100
	ti.Prompt = "/"
	return &logPage{
		follow:   true,
		min:      slog.LevelInfo,
		search:   ti,
		viewport: viewport.New(0, 0),
	}
}

// resize fits the viewport inside the log box, leaving a status line.
func (p *logPage) resize(width, height int) {
	p.viewport.Width = max(width-4, 1)
	p.viewport.Height = max(height-3, 1)
}

// apply installs a fresh read of the log file.
func (p *logPage) apply(msg logsMsg, theme Theme) {
	p.err = msg.err
	if msg.err == nil {
		p.entries = msg.entries
	}
	p.findMatches()
	p.render(theme)
}

func (p *logPage) findMatches() {
	p.matches = nil
	if p.pattern == nil {
		return
	}
	for i, e := range p.entries {
		if p.pattern.MatchString(e.Raw) {
			p.matches = append(p.matches, i)
		}
	}
	if p.matchIdx >= len(p.matches) {
		p.matchIdx = 0
	}
}

// render rebuilds the viewport content.
func (p *logPage) render(theme Theme) {
	styles := theme.Styles()
	if len(p.entries) == 0 {
		p.viewport.SetContent(styles.MutedText.Render("No log entries"))
		return
	}

	active := -1
	if len(p.matches) > 0 {
		active = p.matches[p.matchIdx]
	}
	matched := make(map[int]bool, len(p.matches))
	for _, i := range p.matches {
		matched[i] = true
	}

	var b strings.Builder
	for i, e := range p.entries {
		num := fmt.Sprintf("%4d │ ", i+1)
		switch {
		case i == active:
			hl := lipgloss.NewStyle().
				Background(lipgloss.Color(theme.Warning)).
				Foreground(lipgloss.Color(theme.Background))
			b.WriteString(hl.Render(num + formatEntry(e)))
		case matched[i]:
			b.WriteString(styles.AccentText.Render(num + formatEntry(e)))
		default:
			b.WriteString(styles.FaintText.Render(num))
			b.WriteString(colorizeEntry(e, styles))
		}
		if i < len(p.entries)-1 {
			b.WriteString("\n")
		}
	}
	p.viewport.SetContent(b.String())
	if p.follow {
		p.viewport.GotoBottom()
	}
}

// formatEntry renders an entry as plain text.
func formatEntry(e logtail.Entry) string {
	if e.Time.IsZero() {
		return e.Raw
	}
	var b strings.Builder
	b.WriteString(e.Time.Local().Format("15:04:05"))
	b.WriteString(" ")
	b.WriteString(fmt.Sprintf("%-5s", e.Level.String()))
	b.WriteString(" ")
	b.WriteString(e.Message)
	for _, a := range e.Attrs {
		b.WriteString(" ")
		b.WriteString(a.Key + "=" + a.Value)
	}
	return b.String()
}

func colorizeEntry(e logtail.Entry, styles Styles) string {
	if e.Time.IsZero() {
		return styles.Text.Render(e.Raw)
	}
	var b strings.Builder
	b.WriteString(styles.FaintText.Render(e.Time.Local().Format("15:04:05")))
	b.WriteString(" ")
	b.WriteString(styles.Level(e.Level).Render(fmt.Sprintf("%-5s", e.Level.String())))
	b.WriteString(" ")
	b.WriteString(styles.Text.Render(e.Message))
	for _, a := range e.Attrs {
		b.WriteString(" ")
		b.WriteString(styles.MutedText.Render(a.Key + "="))
		b.WriteString(styles.AccentText.Render(a.Value))
	}
	return b.String()
}

func (m *Model) enterLogs() tea.Cmd {
	m.logs.lastRefresh = time.Time{}
	m.logs.resize(m.width, m.contentHeight())
	return m.refreshLogs(m.now())
}

// refreshLogs re-reads the log file at most once per LogRefreshInterval.
func (m *Model) refreshLogs(now time.Time) tea.Cmd {
	if m.config == nil {
		return nil
	}
	if !m.logs.lastRefresh.IsZero() && now.Sub(m.logs.lastRefresh) < LogRefreshInterval {
		return nil
	}
	m.logs.lastRefresh = now
	return readLogsCmd(m.config.LogPath(), m.logs.min)
}

func (m *Model) handleLogsKey(msg tea.KeyMsg) tea.Cmd {
	p := m.logs
	if p.searching {
		return m.handleLogSearchKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.ToggleFollow):
		p.follow = !p.follow
		if p.follow {
			p.viewport.GotoBottom()
		}
	case key.Matches(msg, m.keys.Search):
		p.searching = true
		p.searchError = ""
		p.search.SetValue(p.query)
		p.search.CursorEnd()
		return p.search.Focus()
	case key.Matches(msg, m.keys.NextMatch):
		m.stepMatch(1)
	case key.Matches(msg, m.keys.PrevMatch):
		m.stepMatch(-1)
	case key.Matches(msg, m.keys.CycleLevel):
		p.min = nextLogLevel(p.min)
		p.lastRefresh = time.Time{}
		return m.refreshLogs(m.now())
	case key.Matches(msg, m.keys.Reload):
		p.lastRefresh = time.Time{}
		return m.refreshLogs(m.now())
	case key.Matches(msg, m.keys.Top):
		p.viewport.GotoTop()
		p.follow = false
	case key.Matches(msg, m.keys.Bottom):
		p.viewport.GotoBottom()
		p.follow = true
	case key.Matches(msg, m.keys.Down):
		p.viewport.ScrollDown(1)
		p.follow = false
	case key.Matches(msg, m.keys.Up):
		p.viewport.ScrollUp(1)
		p.follow = false
	}
	return nil
}

func (m *Model) handleLogSearchKey(msg tea.KeyMsg) tea.Cmd {
	p := m.logs
	switch msg.Type {
	case tea.KeyEsc:
		p.searching = false
		p.search.Blur()
		return nil
	case tea.KeyEnter:
		query := strings.TrimSpace(p.search.Value())
		re, err := compileLogSearch(query)
		if err != nil {
			p.searchError = "invalid pattern"
			return nil
		}
		p.pattern, p.query = re, query
		if re == nil {
			p.query = ""
		}
		p.searching = false
		p.search.Blur()
		p.matchIdx = 0
		p.findMatches()
		if len(p.matches) > 0 {
			p.follow = false
		}
		p.render(m.theme)
		m.scrollToMatch()
		return nil
	}
	var cmd tea.Cmd
	p.search, cmd = p.search.Update(msg)
	return cmd
}

// nextLogLevel is the minimum level after cur. Unknown levels restart the
// cycle.
func nextLogLevel(cur slog.Level) slog.Level {
	for i, l := range logLevels {
		if l == cur {
			return logLevels[(i+1)%len(logLevels)]
		}
	}
	return logLevels[0]
}

// compileLogSearch turns a search query into a case-insensitive pattern. An
// empty query clears the search.
func compileLogSearch(query string) (*regexp.Regexp, error) {
	if query == "" {
		return nil, nil
	}
	return regexp.Compile("(?i)" + query)
}

func (m *Model) stepMatch(delta int) {
	p := m.logs
	n := len(p.matches)
	if n == 0 {
		return
	}
	p.matchIdx = (p.matchIdx + delta + n) % n
	p.follow = false
	p.render(m.theme)
	m.scrollToMatch()
}

// scrollToMatch centers the active match when possible.
func (m *Model) scrollToMatch() {
	p := m.logs
	if len(p.matches) == 0 {
		return
	}
	target := p.matches[p.matchIdx]
	p.viewport.SetYOffset(max(target-p.viewport.Height/2, 0))
}

func (m Model) renderLogs() string {
	p := m.logs
	styles := m.theme.Styles()
	height := m.contentHeight()

	title := "Client log"
	if m.config != nil {
		title += " · " + m.config.LogPath()
	}
	box := m.renderBox(title, p.viewport.View(), m.width, height-1, true)

	var status []string
	switch {
	case p.searching:
		status = append(status, p.search.View())
		if p.searchError != "" {
			status = append(status, styles.DangerText.Render(p.searchError))
		}
	case p.err != nil:
		status = append(status, styles.DangerText.Render("read failed: "+p.err.Error()))
	case p.pattern != nil && len(p.matches) == 0:
		status = append(status, styles.DangerText.Render("Pattern not found: "+p.query))
	case p.pattern != nil:
		status = append(status,
			styles.AccentText.Render("/"+p.query),
			styles.WarningText.Render(fmt.Sprintf("%d/%d", p.matchIdx+1, len(p.matches))))
	}
	follow := "off"
	if p.follow {
		follow = "on"
	}
	status = append(status, styles.FaintText.Render(fmt.Sprintf(
		"%d entries  level ≥ %s  auto-tail %s", len(p.entries), p.min, follow)))

	return box + "\n" + strings.Join(status, styles.FaintText.Render(" • "))
}
