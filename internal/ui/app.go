package ui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gittutor/tutor/internal/api"
	"github.com/gittutor/tutor/internal/catalog"
	"github.com/gittutor/tutor/internal/config"
	"github.com/gittutor/tutor/internal/course"
	"github.com/gittutor/tutor/internal/enroll"
	"github.com/gittutor/tutor/internal/prefs"
	"github.com/gittutor/tutor/internal/session"
	"github.com/gittutor/tutor/internal/state"
)

// Options configures the UI.
type Options struct {
	Context     context.Context
	Client      *api.Client
	Gate        *session.Gate
	Enroll      *enroll.Service
	Store       *state.Store
	Config      *config.Config
	Logger      *slog.Logger
	PollTick    time.Duration
	ThemeName   string
	CatalogTab  string
	PrefsPath   string
	StartCourse api.ID
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Collaborators
	ctx       context.Context
	client    *api.Client
	gate      *session.Gate
	enroll    *enroll.Service
	store     *state.Store
	config    *config.Config
	logger    *slog.Logger
	prefsPath string
	pollTick  time.Duration
	now       func() time.Time

	// UI state
	keys     keyMap
	theme    Theme
	width    int
	height   int
	ready    bool
	showHelp bool
	spinner  spinner.Model
	notice   notice
	modal    Modal

	// Navigation
	routes []route
	gen    int
	start  api.ID

	// Data state
	snapshot state.Snapshot

	// Screens
	home    *homePage
	auth    *authPage
	catalog *catalogPage
	course  *coursePage
	profile *profilePage
	logs    *logPage
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick == 0 {
		pollTick = DefaultUIInterval
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = "Slate"
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	store := opts.Store
	if store == nil {
		store = &state.Store{}
	}

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	m := Model{
		ctx:       ctx,
		client:    opts.Client,
		gate:      opts.Gate,
		enroll:    opts.Enroll,
		store:     store,
		config:    opts.Config,
		logger:    logger,
		prefsPath: prefsPath,
		pollTick:  pollTick,
		now:       time.Now,
		keys:      DefaultKeyMap(),
		theme:     GetTheme(themeName),
		spinner:   spin,
		routes:    []route{{kind: routeHome}},
		start:     opts.StartCourse,
		home:      &homePage{},
		auth:      newAuthPage(),
		catalog:   newCatalogPage(catalog.New(opts.Gate)),
		course:    newCoursePage(""),
		profile:   &profilePage{},
		logs:      newLogPage(),
	}
	m.catalog.restoreTab(opts.CatalogTab)
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		tickCmd(m.pollTick),
		fetchSnapshotCmd(m.store),
		m.spinner.Tick,
	}
	if m.start != "" {
		cmds = append(cmds, emit(openCourseMsg{id: m.start}))
	}
	return tea.Batch(cmds...)
}

// openCourseMsg opens a course route by id at startup.
type openCourseMsg struct{ id api.ID }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.logs.resize(m.width, m.contentHeight())
		return m, nil

	case tickMsg:
		return m.handleTick(time.Time(msg))

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		m.catalog.adoptSnapshot(m.snapshot)
		return m, nil

	case spinner.TickMsg:
		var cmds []tea.Cmd
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
		if m.modal != nil {
			var closed bool
			m.modal, cmd, closed = m.modal.Update(msg, m.keys)
			cmds = append(cmds, cmd)
			if closed {
				m.modal = nil
			}
		}
		return m, tea.Batch(cmds...)

	case openCourseMsg:
		return m, m.push(route{kind: routeCourse, course: api.Course{ID: msg.id}})
	}

	if cmd, ok := m.handleResult(msg); ok {
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}

	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.modal != nil {
		var cmd tea.Cmd
		var closed bool
		m.modal, cmd, closed = m.modal.Update(msg, m.keys)
		if closed {
			m.modal = nil
		}
		return m, cmd
	}

	// While an input has focus every printable key belongs to it.
	if m.typing() {
		cmd := m.handleRouteKey(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Back):
		return m, m.pop()

	case key.Matches(msg, m.keys.GoHome):
		return m, m.reset(route{kind: routeHome})

	case key.Matches(msg, m.keys.GoCatalog):
		return m, m.push(route{kind: routeCatalog})

	case key.Matches(msg, m.keys.GoProfile):
		return m, m.push(route{kind: routeProfile})

	case key.Matches(msg, m.keys.GoAccount):
		m.auth.setMode(authSignIn)
		return m, m.push(route{kind: routeAuth})

	case key.Matches(msg, m.keys.GoLogs):
		return m, m.push(route{kind: routeLogs})
	}

	cmd := m.handleRouteKey(msg)
	return m, cmd
}

// typing reports whether the current screen has a focused text input.
func (m Model) typing() bool {
	switch m.current().kind {
	case routeAuth:
		return true
	case routeCourse:
		return m.course.composing
	case routeLogs:
		return m.logs.searching
	}
	return false
}

func (m *Model) handleRouteKey(msg tea.KeyMsg) tea.Cmd {
	switch m.current().kind {
	case routeHome:
		return m.handleHomeKey(msg)
	case routeAuth:
		return m.handleAuthKey(msg)
	case routeCatalog:
		return m.handleCatalogKey(msg)
	case routeCourse:
		return m.handleCourseKey(msg)
	case routeEnrollment:
		return m.handleEnrollmentKey(msg)
	case routeProfile:
		return m.handleProfileKey(msg)
	case routeLogs:
		return m.handleLogsKey(msg)
	case routeAbout, routeContact, routeTerms:
		return m.handleStaticKey(msg)
	}
	return nil
}

// handleResult routes the outcome of an async request. ok is false for
// messages this model does not know.
func (m *Model) handleResult(msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case coursesMsg:
		return m.onCourses(msg), true
	case enrolledSetMsg:
		return m.onEnrolledSet(msg), true
	case enrollConfirmMsg:
		return m.confirmEnroll(), true
	case enrollCancelMsg:
		m.catalog.state.Cancel()
		return nil, true
	case enrollDoneMsg:
		return m.onEnrollDone(msg), true
	case courseMsg:
		return m.onCourse(msg), true
	case videosMsg:
		return m.onVideos(msg), true
	case commentsMsg:
		return m.onComments(msg), true
	case commentSyncedMsg:
		return m.onCommentSynced(msg), true
	case uploadSubmitMsg:
		return m.submitUpload(), true
	case uploadCancelMsg:
		m.cancelUpload()
		return nil, true
	case uploadDoneMsg:
		return m.onUploadDone(msg), true
	case deleteConfirmMsg:
		return m.deleteVideo(msg.video), true
	case videoChangedMsg:
		return m.onVideoChanged(msg), true
	case signedInMsg:
		return m.onSignedIn(msg), true
	case registeredMsg:
		return m.onRegistered(msg), true
	case authReplyMsg:
		return m.onAuthReply(msg), true
	case logsMsg:
		m.logs.apply(msg, m.theme)
		return nil, true
	}
	return nil, false
}

// stale reports whether a result was requested by a screen the viewer has
// since left.
func (m *Model) stale(gen int) bool {
	if gen != m.gen {
		m.logger.Debug("discarding stale result", "gen", gen, "current", m.gen)
		return true
	}
	return false
}

// observe feeds a request outcome to the offline indicator and ends the
// session when the API rejects the credential.
func (m *Model) observe(err error) {
	m.store.Observe(err)
	m.snapshot = m.store.Snapshot()

	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Status == 401 && m.gate.IsAuthenticated() {
		m.logger.Info("credential rejected, signing out", "endpoint", apiErr.Endpoint)
		m.signOut()
		m.flash(noticeError, "Your session has expired. Please log in again.")
	}
}

// handleTick processes the UI refresh tick.
func (m Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{fetchSnapshotCmd(m.store)}

	if m.notice.expired(now) {
		m.notice = notice{}
	}

	if m.current().kind == routeLogs && m.logs.follow {
		if cmd := m.refreshLogs(now); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	cmds = append(cmds, tickCmd(m.pollTick))
	return m, tea.Batch(cmds...)
}

// savePrefs persists theme and catalog tab.
func (m Model) savePrefs() {
	p := prefs.Prefs{Theme: m.theme.Name, CatalogTab: m.catalog.tabPref()}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.logger.Warn("save prefs failed", "error", err)
	}
}

// signOut ends the session and forgets everything tied to it.
func (m *Model) signOut() {
	m.gate.Logout()
	m.catalog.state.Reset()
	m.profile.reset()
}

// renderMain renders header, command bar and the current screen.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderContent())
	return b.String()
}

// contentHeight is the space left under header and command bar.
func (m Model) contentHeight() int {
	return max(m.height-2, 1)
}

// renderContent renders the current screen.
func (m Model) renderContent() string {
	switch m.current().kind {
	case routeAuth:
		return m.renderAuth()
	case routeCatalog:
		return m.renderCatalog()
	case routeCourse:
		return m.renderCourse()
	case routeEnrollment:
		return m.renderEnrollment()
	case routeProfile:
		return m.renderProfile()
	case routeAbout, routeContact, routeTerms:
		return m.renderStatic()
	case routeLogs:
		return m.renderLogs()
	default:
		return m.renderHome()
	}
}

// currentUserName returns the display name used for comments and the header.
func (m Model) currentUserName() string {
	if u, ok := m.gate.CurrentUser(); ok && strings.TrimSpace(u.Name) != "" {
		return u.Name
	}
	return course.AnonymousName
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
