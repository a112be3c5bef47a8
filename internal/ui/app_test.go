package ui

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gittutor/tutor/internal/api"
	"github.com/gittutor/tutor/internal/catalog"
	"github.com/gittutor/tutor/internal/config"
	"github.com/gittutor/tutor/internal/course"
	"github.com/gittutor/tutor/internal/enroll"
	"github.com/gittutor/tutor/internal/session"
	"github.com/gittutor/tutor/internal/state"
	"github.com/gittutor/tutor/internal/upload"
)

var (
	student = api.User{ID: "u1", Name: "Ada", Email: "ada@students.git.edu", Role: api.RoleStudent, IsVerified: true}
	teacher = api.User{ID: "t1", Name: "Grace", Email: "grace@git.edu", Role: api.RoleTeacher, IsVerified: true}
)

// fakeAPI serves the subset of the course API the UI drives.
type fakeAPI struct {
	mu          sync.Mutex
	user        api.User
	enrollCode  int
	enrolled    []string
	enrollCalls int
	uploadCode  int
	uploads     int
	videoLoads  int
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/api/v2")
	switch {
	case r.Method == http.MethodPost && path == "/auth/login":
		writeJSON(w, http.StatusOK, map[string]any{"token": "tok-" + string(f.user.ID), "user": f.user})
	case path == "/auth/me":
		writeJSON(w, http.StatusOK, map[string]any{"user": f.user})
	case path == "/courses":
		writeJSON(w, http.StatusOK, map[string]any{"courses": []map[string]any{
			{"_id": "c1", "title": "Git Basics", "description": "Commits and branches", "instructor": map[string]any{"_id": "t1", "name": "Grace"}, "level": "Beginner"},
			{"_id": "c2", "title": "Rebasing", "description": "Rewrite history", "instructor": map[string]any{"_id": "t2", "name": "Linus"}},
		}})
	case path == "/courses/c1":
		writeJSON(w, http.StatusOK, map[string]any{"course": map[string]any{
			"_id": "c1", "title": "Git Basics", "instructor": map[string]any{"_id": "t1", "name": "Grace"},
		}})
	case path == "/courses/missing":
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "Course not found"})
	case r.Method == http.MethodPost && path == "/videos/upload":
		f.uploads++
		_, _ = io.Copy(io.Discard, r.Body)
		if f.uploadCode != 0 {
			writeJSON(w, f.uploadCode, map[string]any{"message": "Storage quota exceeded"})
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"video": map[string]any{
			"_id": "v3", "title": "Merging", "duration": 630, "order": 3,
		}})
	case path == "/videos/course/c1", path == "/videos/course/missing":
		f.videoLoads++
		writeJSON(w, http.StatusOK, map[string]any{"videos": []map[string]any{
			{"_id": "v2", "title": "Branching", "duration": 90, "order": 2, "isFree": false},
			{"_id": "v1", "title": "First commit", "duration": 65, "order": 1, "isFree": true},
		}})
	case r.Method == http.MethodPost && path == "/enrollments":
		f.enrollCalls++
		if f.enrollCode != 0 {
			writeJSON(w, f.enrollCode, map[string]any{"message": "Enrollment closed"})
			return
		}
		var body struct {
			CourseID string `json:"courseId"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.enrolled = append(f.enrolled, body.CourseID)
		writeJSON(w, http.StatusCreated, map[string]any{"enrollment": map[string]any{"_id": "e1", "course": body.CourseID}})
	case path == "/enrollments/my":
		list := make([]map[string]any, 0, len(f.enrolled))
		for _, id := range f.enrolled {
			list = append(list, map[string]any{"_id": "e-" + id, "course": id})
		}
		writeJSON(w, http.StatusOK, map[string]any{"enrollments": list})
	default:
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "not found"})
	}
}

// videoCalls reports how many uploads and lesson listings were served.
func (f *fakeAPI) videoCalls() (uploads, loads int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.uploads, f.videoLoads
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type harness struct {
	model Model
	api   *fakeAPI
	gate  *session.Gate
	dir   string
}

// newHarness builds a model against a fake API. A non-empty user is signed
// in before the model is created.
func newHarness(t *testing.T, user api.User) *harness {
	t.Helper()
	fake := &fakeAPI{user: user}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client, err := api.NewClient(srv.URL+"/api/v2", api.WithLogger(logger), api.WithTimeout(2*time.Second))
	require.NoError(t, err)

	dir := t.TempDir()
	gate := session.NewGate(client, filepath.Join(dir, "session.toml"), session.WithLogger(logger))
	client.UseCredentials(gate)
	if user.ID != "" {
		_, err := gate.Login(context.Background(), user.Email, "secret")
		require.NoError(t, err)
	}

	m := New(Options{
		Context:   context.Background(),
		Client:    client,
		Gate:      gate,
		Enroll:    enroll.NewService(client, enroll.NewCache(filepath.Join(dir, "enrollments.toml")), gate, logger),
		Store:     &state.Store{},
		Config:    &config.Config{DataDir: dir},
		Logger:    logger,
		PrefsPath: filepath.Join(dir, "prefs.toml"),
	})
	h := &harness{model: m, api: fake, gate: gate, dir: dir}
	h.send(t, tea.WindowSizeMsg{Width: 120, Height: 40})
	return h
}

// send delivers msg and drains every command it produces.
func (h *harness) send(t *testing.T, msg tea.Msg) {
	t.Helper()
	next, cmd := h.model.Update(msg)
	h.model = next.(Model)
	h.drain(t, cmd)
}

// drain runs cmd and feeds its messages back into the model. Commands that
// do not finish promptly (cursor blinks, ticks) are dropped, as are spinner
// frames.
func (h *harness) drain(t *testing.T, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	var msg tea.Msg
	select {
	case msg = <-done:
	case <-time.After(250 * time.Millisecond):
		return
	}

	switch msg := msg.(type) {
	case nil, spinner.TickMsg, tickMsg:
		return
	case tea.BatchMsg:
		for _, c := range msg {
			h.drain(t, c)
		}
		return
	default:
		h.send(t, msg)
	}
}

func (h *harness) press(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		h.send(t, keyMsg(k))
	}
}

func (h *harness) typeText(t *testing.T, text string) {
	t.Helper()
	for _, r := range text {
		h.send(t, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func routeKinds(m Model) []routeKind {
	out := make([]routeKind, len(m.routes))
	for i, r := range m.routes {
		out[i] = r.kind
	}
	return out
}

func (h *harness) openCatalog(t *testing.T) {
	t.Helper()
	h.press(t, "C")
	require.Equal(t, routeCatalog, h.model.current().kind)
	require.True(t, h.model.catalog.state.Loaded())
}

func TestCatalog_LoadsCourses(t *testing.T) {
	h := newHarness(t, api.User{})
	h.openCatalog(t)

	courses := h.model.catalog.state.Courses()
	require.Len(t, courses, 2)
	assert.Equal(t, "Git Basics", courses[0].Title)
	assert.Contains(t, h.model.View(), "Rebasing")
}

func TestCatalog_GuestOpeningCourseIsAskedToSignIn(t *testing.T) {
	h := newHarness(t, api.User{})
	h.openCatalog(t)

	h.press(t, "enter")

	assert.Equal(t, routeAuth, h.model.current().kind)
	assert.Equal(t, catalog.MsgLoginRequired, h.model.notice.text)
	assert.Nil(t, h.model.modal)
}

func TestCatalog_GuestEnrolledTabRequiresLogin(t *testing.T) {
	h := newHarness(t, api.User{})
	h.openCatalog(t)

	h.press(t, "2")

	assert.Equal(t, routeAuth, h.model.current().kind)
	assert.Equal(t, catalog.Browse, h.model.catalog.state.Mode())
}

func TestCatalog_StudentTeachingTabDenied(t *testing.T) {
	h := newHarness(t, student)
	h.openCatalog(t)

	h.press(t, "3")

	assert.Equal(t, routeCatalog, h.model.current().kind)
	assert.Equal(t, catalog.Browse, h.model.catalog.state.Mode())
	assert.Equal(t, catalog.MsgTeachersOnly, h.model.notice.text)
}

func TestEnroll_SuccessStacksCourseUnderConfirmation(t *testing.T) {
	h := newHarness(t, student)
	h.openCatalog(t)

	h.press(t, "enter")
	_, ok := h.model.modal.(enrollModal)
	require.True(t, ok, "enroll prompt should be open")

	h.press(t, "y")

	assert.Equal(t, []routeKind{routeHome, routeCatalog, routeCourse, routeEnrollment}, routeKinds(h.model))
	assert.Equal(t, api.ID("c1"), h.model.current().course.ID)
	assert.True(t, h.model.catalog.state.IsEnrolled("c1"))
	assert.Equal(t, 1, h.api.enrollCalls)
	assert.Contains(t, h.model.View(), "Enrollment Successful!")

	// Going back lands on the course, which loads on entry.
	h.press(t, "enter")
	assert.Equal(t, routeCourse, h.model.current().kind)
	assert.Equal(t, course.Ready, h.model.course.viewer.Phase())
}

func TestEnroll_FailureStaysOnCatalog(t *testing.T) {
	h := newHarness(t, student)
	h.api.enrollCode = http.StatusBadRequest
	h.openCatalog(t)

	h.press(t, "enter", "y")

	assert.Equal(t, []routeKind{routeHome, routeCatalog}, routeKinds(h.model))
	assert.False(t, h.model.catalog.state.IsEnrolled("c1"))
	assert.Equal(t, "Enrollment closed", h.model.catalog.state.EnrollError())
	assert.Equal(t, noticeError, h.model.notice.kind)
}

func TestEnroll_ResultAfterSignOutIsIgnored(t *testing.T) {
	h := newHarness(t, student)
	h.openCatalog(t)
	h.press(t, "enter")
	require.IsType(t, enrollModal{}, h.model.modal)

	m := h.model
	cmd := m.confirmEnroll()
	require.NotNil(t, cmd)
	m.modal = nil
	m.signOut()
	h.model = m
	h.drain(t, cmd)

	assert.Equal(t, []routeKind{routeHome, routeCatalog}, routeKinds(h.model))
	assert.False(t, h.model.catalog.state.IsEnrolled("c1"))
	assert.Empty(t, h.model.catalog.state.Reconciled().IDs)
	assert.NotEqual(t, noticeError, h.model.notice.kind)
}

func TestEnroll_CancelSendsNothing(t *testing.T) {
	h := newHarness(t, student)
	h.openCatalog(t)

	h.press(t, "enter", "n")

	assert.Nil(t, h.model.modal)
	assert.Equal(t, 0, h.api.enrollCalls)
	_, open := h.model.catalog.state.Prompt()
	assert.False(t, open)
}

func TestEnrolledCourseOpensDirectly(t *testing.T) {
	h := newHarness(t, student)
	h.api.enrolled = []string{"c1"}
	h.openCatalog(t)
	require.True(t, h.model.catalog.state.IsEnrolled("c1"))

	h.press(t, "enter")

	assert.Nil(t, h.model.modal)
	assert.Equal(t, routeCourse, h.model.current().kind)
	assert.Equal(t, "Git Basics", h.model.current().course.Title)
}

func TestStaleCourseResultIsDiscarded(t *testing.T) {
	h := newHarness(t, student)

	m := h.model
	cmd := m.push(route{kind: routeCourse, course: api.Course{ID: "c1"}})
	m.pop()
	h.model = m

	h.drain(t, cmd)

	assert.Equal(t, course.Loading, h.model.course.viewer.Phase())
	assert.Equal(t, []routeKind{routeHome}, routeKinds(h.model))

	// The same request issued by the current screen is applied.
	m = h.model
	cmd = m.push(route{kind: routeCourse, course: api.Course{ID: "c1"}})
	h.model = m
	h.drain(t, cmd)
	assert.Equal(t, course.Ready, h.model.course.viewer.Phase())
}

func TestCourse_LoadsAndSortsLessons(t *testing.T) {
	h := newHarness(t, student)
	h.send(t, openCourseMsg{id: "c1"})

	v := h.model.course.viewer
	require.Equal(t, course.Ready, v.Phase())
	require.Len(t, v.Videos(), 2)
	assert.Equal(t, "First commit", v.Videos()[0].Title)
	_, _, selected := v.Selected()
	assert.False(t, selected, "no lesson is selected on load")
	assert.Equal(t, "Git Basics", h.model.current().title())
}

func TestCourse_NotFound(t *testing.T) {
	h := newHarness(t, student)
	h.send(t, openCourseMsg{id: "missing"})

	assert.Equal(t, course.NotFound, h.model.course.viewer.Phase())
	assert.Contains(t, h.model.View(), course.MsgNotFound)
}

func TestCourse_UploadOnlyForTeachers(t *testing.T) {
	for _, tc := range []struct {
		name   string
		user   api.User
		manage bool
	}{
		{"guest", api.User{}, false},
		{"student", student, false},
		{"teacher", teacher, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, tc.user)
			h.send(t, openCourseMsg{id: "c1"})
			require.Equal(t, course.Ready, h.model.course.viewer.Phase())

			assert.Equal(t, tc.manage, h.model.canManage())
			assert.Equal(t, tc.manage, strings.Contains(h.model.renderCommandBar(), "Upload"))

			h.press(t, "u")
			_, open := h.model.modal.(*uploadModal)
			assert.Equal(t, tc.manage, open)
		})
	}
}

func TestUpload_InvalidDraftIsNotSent(t *testing.T) {
	h := newHarness(t, teacher)
	h.send(t, openCourseMsg{id: "c1"})
	h.press(t, "u")
	require.NotNil(t, h.model.course.upload)

	h.press(t, "ctrl+s")

	form := h.model.course.upload
	assert.False(t, form.Pending())
	assert.NotEmpty(t, form.Draft().Errors.Get(upload.FieldTitle))
	assert.NotEmpty(t, form.Draft().Errors.Get(upload.FieldVideo))
	_, open := h.model.modal.(*uploadModal)
	assert.True(t, open, "modal stays open with field errors")
}

var mp4Header = []byte("\x00\x00\x00\x18ftypisom\x00\x00\x02\x00isomiso2avc1mp41")

// fillUpload opens the upload dialog on c1 and fills it with a valid lesson.
func (h *harness) fillUpload(t *testing.T) {
	t.Helper()
	h.send(t, openCourseMsg{id: "c1"})
	require.Equal(t, course.Ready, h.model.course.viewer.Phase())
	h.press(t, "u")
	require.IsType(t, &uploadModal{}, h.model.modal)

	video := filepath.Join(t.TempDir(), "merging.mp4")
	require.NoError(t, os.WriteFile(video, mp4Header, 0o600))

	h.typeText(t, "Merging branches")
	h.press(t, "tab")
	h.typeText(t, "Three-way merges")
	h.press(t, "tab")
	h.typeText(t, "10:30")
	h.press(t, "tab", "tab")
	// The path is attached by ctrl+s; typing it key by key only slows the test.
	h.model.modal.(*uploadModal).fields.setValue(upload.FieldVideo, video)
}

func TestUpload_SuccessClosesDialogAndReloadsLessons(t *testing.T) {
	h := newHarness(t, teacher)
	h.fillUpload(t)
	_, before := h.api.videoCalls()

	h.press(t, "ctrl+s")

	uploads, loads := h.api.videoCalls()
	assert.Equal(t, 1, uploads)
	assert.Nil(t, h.model.modal)
	assert.Nil(t, h.model.course.upload)
	assert.Equal(t, noticeSuccess, h.model.notice.kind)
	assert.Equal(t, upload.MsgUploaded, h.model.notice.text)
	assert.Greater(t, loads, before, "lessons are fetched again")

	h.press(t, "u")
	require.NotNil(t, h.model.course.upload)
	assert.Empty(t, h.model.course.upload.Draft().Title)
}

func TestUpload_FailureKeepsDraftAndShowsServerMessage(t *testing.T) {
	h := newHarness(t, teacher)
	h.api.uploadCode = http.StatusBadRequest
	h.fillUpload(t)
	_, before := h.api.videoCalls()

	h.press(t, "ctrl+s")

	uploads, loads := h.api.videoCalls()
	assert.Equal(t, 1, uploads)
	um, open := h.model.modal.(*uploadModal)
	require.True(t, open, "dialog stays open after a failed upload")
	form := h.model.course.upload
	require.NotNil(t, form)
	assert.False(t, form.Pending())
	assert.Equal(t, "Storage quota exceeded", form.Error())
	assert.Equal(t, "Merging branches", form.Draft().Title)
	assert.Equal(t, "10:30", form.Draft().Duration)
	assert.Contains(t, um.View(h.model.theme, 120, 40), "Storage quota exceeded")
	assert.Equal(t, before, loads)
}

func TestUpload_CancelAfterFailureDiscardsDraft(t *testing.T) {
	h := newHarness(t, teacher)
	h.api.uploadCode = http.StatusBadRequest
	h.fillUpload(t)
	h.press(t, "ctrl+s")
	require.Equal(t, "Storage quota exceeded", h.model.course.upload.Error())

	h.press(t, "esc")
	assert.Nil(t, h.model.modal)
	assert.Nil(t, h.model.course.upload)

	h.press(t, "u")
	require.IsType(t, &uploadModal{}, h.model.modal)
	form := h.model.course.upload
	require.NotNil(t, form)
	assert.Empty(t, form.Error())
	assert.Empty(t, form.Draft().Title)
	assert.Nil(t, form.Draft().Video)
}

func TestCourse_LocalComments(t *testing.T) {
	h := newHarness(t, student)
	h.send(t, openCourseMsg{id: "c1"})

	h.press(t, "enter")
	video, _, ok := h.model.course.viewer.Selected()
	require.True(t, ok)
	assert.Equal(t, api.ID("v1"), video.ID)

	h.press(t, "c")
	require.True(t, h.model.course.composing)
	h.typeText(t, "Great lesson")
	h.press(t, "enter")

	comments := h.model.course.viewer.Comments()
	require.Len(t, comments, 1)
	assert.Equal(t, "Ada", comments[0].Author)
	assert.Equal(t, "Great lesson", comments[0].Content)
	assert.False(t, h.model.course.composing)

	// Composing moved focus to the discussion pane.
	h.press(t, "+")
	assert.Equal(t, 1, h.model.course.viewer.Comments()[0].Likes)
}

func TestSignIn_FormNavigatesToCatalog(t *testing.T) {
	h := newHarness(t, api.User{})
	h.api.user = student

	h.press(t, "A")
	require.Equal(t, routeAuth, h.model.current().kind)

	h.typeText(t, student.Email)
	h.press(t, "tab")
	h.typeText(t, "secret")
	h.press(t, "enter")

	assert.True(t, h.gate.IsAuthenticated())
	assert.Equal(t, []routeKind{routeHome, routeCatalog}, routeKinds(h.model))
	assert.Equal(t, noticeSuccess, h.model.notice.kind)
}

func TestSignIn_ValidationBlocksRequest(t *testing.T) {
	h := newHarness(t, api.User{})

	h.press(t, "A")
	h.typeText(t, "not-an-email")
	h.press(t, "enter")

	assert.False(t, h.model.auth.pending)
	assert.Equal(t, "Please enter a valid email", h.model.auth.signIn.Errors.Get(session.FieldEmail))
	assert.Equal(t, "Password is required", h.model.auth.signIn.Errors.Get(session.FieldPassword))
	assert.False(t, h.gate.IsAuthenticated())
}

func TestRejectedCredentialSignsOut(t *testing.T) {
	h := newHarness(t, student)
	require.True(t, h.gate.IsAuthenticated())

	m := h.model
	m.observe(&api.Error{Kind: api.KindAuth, Status: http.StatusUnauthorized, Endpoint: "enrollments.mine", Message: "expired"})
	h.model = m

	assert.False(t, h.gate.IsAuthenticated())
	assert.Equal(t, noticeError, h.model.notice.kind)
}

func TestProfile_ShowsEnrollments(t *testing.T) {
	h := newHarness(t, student)
	h.api.enrolled = []string{"c2"}

	h.press(t, "P")

	view := h.model.View()
	assert.Contains(t, view, "Student Profile")
	assert.Contains(t, view, "Rebasing")

	h.press(t, "o")
	assert.False(t, h.gate.IsAuthenticated())
	assert.Equal(t, []routeKind{routeHome}, routeKinds(h.model))
}

func TestBackNeverPopsHome(t *testing.T) {
	h := newHarness(t, api.User{})
	h.press(t, "esc", "esc")
	assert.Equal(t, []routeKind{routeHome}, routeKinds(h.model))

	h.press(t, "C", "esc")
	assert.Equal(t, []routeKind{routeHome}, routeKinds(h.model))
}

func TestCycleThemePersists(t *testing.T) {
	h := newHarness(t, api.User{})
	before := h.model.theme.Name

	h.press(t, "T")

	assert.Equal(t, NextTheme(before), h.model.theme.Name)
	assert.FileExists(t, filepath.Join(h.dir, "prefs.toml"))
}
