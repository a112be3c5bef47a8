package session

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gittutor/tutor/internal/api"
)

type fakeAuth struct {
	loginRes  api.AuthResult
	loginErr  error
	regRes    api.AuthResult
	regErr    error
	me        api.User
	meErr     error
	meCalls   int
	meToken   string
	meUser    api.User
	verifyMsg string
	verifyErr error
	resetMsg  string
	resetErr  error

	gate *Gate
}

func (f *fakeAuth) Login(context.Context, string, string) (api.AuthResult, error) {
	return f.loginRes, f.loginErr
}

func (f *fakeAuth) Register(context.Context, api.Registration) (api.AuthResult, error) {
	return f.regRes, f.regErr
}

func (f *fakeAuth) Me(context.Context) (api.User, error) {
	f.meCalls++
	if f.gate != nil {
		f.meToken = f.gate.Token()
		f.meUser, _ = f.gate.CurrentUser()
	}
	return f.me, f.meErr
}

func (f *fakeAuth) VerifyEmail(context.Context, string) (string, error) {
	return f.verifyMsg, f.verifyErr
}

func (f *fakeAuth) ForgotPassword(context.Context, string) (string, error) {
	return f.resetMsg, f.resetErr
}

var student = api.User{ID: "u1", Name: "Ada", Email: "ada@students.git.edu", Role: api.RoleStudent}

func newGate(t *testing.T, auth *fakeAuth) (*Gate, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.toml")
	g := NewGate(auth, path)
	auth.gate = g
	return g, path
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  "u1",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func TestGate_LoginPersistsSession(t *testing.T) {
	auth := &fakeAuth{loginRes: api.AuthResult{Token: "tok-1", User: &student}}
	g, path := newGate(t, auth)

	user, err := g.Login(context.Background(), "ada@students.git.edu", "secret")
	require.NoError(t, err)
	assert.Equal(t, student.ID, user.ID)
	assert.True(t, g.IsAuthenticated())
	assert.Equal(t, "tok-1", g.Token())
	assert.Equal(t, api.RoleStudent, g.Role())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestGate_LoginFailureIsAuthError(t *testing.T) {
	auth := &fakeAuth{loginErr: &api.Error{Kind: api.KindAuth, Status: 401, Message: "Invalid credentials"}}
	g, path := newGate(t, auth)

	_, err := g.Login(context.Background(), "ada@students.git.edu", "wrong")
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "Invalid credentials", authErr.Message)
	assert.False(t, g.IsAuthenticated())
	_, statErr := os.Stat(path)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))

	auth.loginErr = errors.New("dial tcp: connection refused")
	_, err = g.Login(context.Background(), "ada@students.git.edu", "secret")
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, MsgLoginFailed, authErr.Message)
}

func TestGate_LoginWithoutTokenIsRejected(t *testing.T) {
	auth := &fakeAuth{loginRes: api.AuthResult{User: &student}}
	g, _ := newGate(t, auth)

	_, err := g.Login(context.Background(), "ada@students.git.edu", "secret")
	require.Error(t, err)
	assert.Equal(t, MsgUnexpectedReply, err.Error())
	assert.False(t, g.IsAuthenticated())
}

func TestGate_RestoreRoundTrip(t *testing.T) {
	auth := &fakeAuth{loginRes: api.AuthResult{Token: "tok-1", User: &student}, me: student}
	g, path := newGate(t, auth)
	_, err := g.Login(context.Background(), "ada@students.git.edu", "secret")
	require.NoError(t, err)

	reloaded := NewGate(auth, path)
	auth.gate = reloaded
	require.True(t, reloaded.Restore(context.Background()))
	assert.True(t, reloaded.IsAuthenticated())
	user, ok := reloaded.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, student.ID, user.ID)
	assert.Equal(t, "tok-1", auth.meToken, "refresh must carry the persisted credential")
}

func TestGate_RestoreFailsClosed(t *testing.T) {
	auth := &fakeAuth{loginRes: api.AuthResult{Token: "tok-1", User: &student}}
	g, path := newGate(t, auth)
	_, err := g.Login(context.Background(), "ada@students.git.edu", "secret")
	require.NoError(t, err)

	auth.meErr = &api.Error{Kind: api.KindAuth, Status: 401, Message: "Token expired"}
	reloaded := NewGate(auth, path)
	auth.gate = reloaded
	assert.False(t, reloaded.Restore(context.Background()))
	assert.False(t, reloaded.IsAuthenticated())
	assert.Empty(t, reloaded.Token())
	_, statErr := os.Stat(path)
	assert.True(t, errors.Is(statErr, os.ErrNotExist), "persisted credential must be removed")
}

func TestGate_RestoreSkipsExpiredJWT(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	token := signedToken(t, now.Add(-time.Minute))
	auth := &fakeAuth{loginRes: api.AuthResult{Token: token, User: &student}, me: student}
	path := filepath.Join(t.TempDir(), "session.toml")
	g := NewGate(auth, path, WithClock(func() time.Time { return now }))
	_, err := g.Login(context.Background(), "ada@students.git.edu", "secret")
	require.NoError(t, err)

	reloaded := NewGate(auth, path, WithClock(func() time.Time { return now }))
	assert.False(t, reloaded.Restore(context.Background()))
	assert.Zero(t, auth.meCalls, "expired credential is discarded without a network call")
	assert.False(t, reloaded.IsAuthenticated())
}

func TestGate_RestoreKeepsLiveJWT(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	token := signedToken(t, now.Add(time.Hour))
	auth := &fakeAuth{loginRes: api.AuthResult{Token: token, User: &student}, me: student}
	path := filepath.Join(t.TempDir(), "session.toml")
	g := NewGate(auth, path, WithClock(func() time.Time { return now }))
	_, err := g.Login(context.Background(), "ada@students.git.edu", "secret")
	require.NoError(t, err)

	reloaded := NewGate(auth, path, WithClock(func() time.Time { return now }))
	assert.True(t, reloaded.Restore(context.Background()))
	assert.Equal(t, 1, auth.meCalls)
}

func TestGate_RestoreShowsStoredUserDuringRefresh(t *testing.T) {
	stored := student
	stored.IsVerified = true
	auth := &fakeAuth{loginRes: api.AuthResult{Token: "tok-1", User: &stored}}
	g, path := newGate(t, auth)
	_, err := g.Login(context.Background(), stored.Email, "secret")
	require.NoError(t, err)

	renamed := stored
	renamed.Name = "Ada L."
	auth.me = renamed
	reloaded := NewGate(auth, path)
	auth.gate = reloaded
	require.True(t, reloaded.Restore(context.Background()))

	assert.Equal(t, stored, auth.meUser, "stored identity is visible while the refresh runs")
	user, ok := reloaded.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "Ada L.", user.Name)
}

func TestGate_RestoreUnreadableSessionFailsClosed(t *testing.T) {
	var logs bytes.Buffer
	auth := &fakeAuth{me: student}
	path := filepath.Join(t.TempDir(), "session.toml")
	require.NoError(t, os.Mkdir(path, 0o700))
	g := NewGate(auth, path, WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

	assert.False(t, g.Restore(context.Background()))
	assert.Zero(t, auth.meCalls)
	assert.False(t, g.IsAuthenticated())
	assert.Contains(t, logs.String(), "discarding unreadable session")
	_, statErr := os.Stat(path)
	assert.True(t, errors.Is(statErr, os.ErrNotExist), "unreadable session is removed")
}

func TestGate_RestoreWithoutFile(t *testing.T) {
	auth := &fakeAuth{}
	g, _ := newGate(t, auth)
	assert.False(t, g.Restore(context.Background()))
	assert.Zero(t, auth.meCalls)
}

func TestGate_Logout(t *testing.T) {
	auth := &fakeAuth{loginRes: api.AuthResult{Token: "tok-1", User: &student}}
	g, path := newGate(t, auth)
	_, err := g.Login(context.Background(), "ada@students.git.edu", "secret")
	require.NoError(t, err)

	g.Logout()
	assert.False(t, g.IsAuthenticated())
	assert.Empty(t, g.Token())
	_, ok := g.CurrentUser()
	assert.False(t, ok)
	_, statErr := os.Stat(path)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))

	g.Logout()
}

func TestGate_RegisterOutcomes(t *testing.T) {
	teacher := api.User{ID: "t1", Name: "Grace", Role: api.RoleTeacher}
	admin := api.User{ID: "a1", Name: "Root", Role: api.RoleAdmin}

	t.Run("teacher waits for verification", func(t *testing.T) {
		auth := &fakeAuth{regRes: api.AuthResult{Token: "tok-t", User: &teacher, Message: "User registered successfully."}}
		g, _ := newGate(t, auth)
		out, err := g.Register(context.Background(), api.Registration{Role: api.RoleTeacher})
		require.NoError(t, err)
		assert.True(t, out.PendingVerification)
		assert.False(t, out.Active)
		assert.Equal(t, "User registered successfully. Please check your email to verify your account.", out.Message)
		assert.False(t, g.IsAuthenticated())
	})

	t.Run("admin gets a session", func(t *testing.T) {
		auth := &fakeAuth{regRes: api.AuthResult{Token: "tok-a", User: &admin, Message: "Welcome"}}
		g, _ := newGate(t, auth)
		out, err := g.Register(context.Background(), api.Registration{Role: api.RoleAdmin})
		require.NoError(t, err)
		assert.True(t, out.Active)
		assert.False(t, out.PendingVerification)
		assert.True(t, g.IsAuthenticated())
		assert.Equal(t, "tok-a", g.Token())
	})

	t.Run("student without token is told to log in", func(t *testing.T) {
		auth := &fakeAuth{regRes: api.AuthResult{Message: "Registered."}}
		g, _ := newGate(t, auth)
		out, err := g.Register(context.Background(), api.Registration{Role: api.RoleStudent})
		require.NoError(t, err)
		assert.False(t, out.Active)
		assert.Equal(t, "Registered. You can now log in.", out.Message)
		assert.False(t, g.IsAuthenticated())
	})

	t.Run("failure", func(t *testing.T) {
		auth := &fakeAuth{regErr: &api.Error{Kind: api.KindValidation, Status: 400, Message: "User already exists"}}
		g, _ := newGate(t, auth)
		_, err := g.Register(context.Background(), api.Registration{Role: api.RoleStudent})
		var authErr *AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, "User already exists", authErr.Message)
	})
}

func TestGate_VerifyAndReset(t *testing.T) {
	auth := &fakeAuth{}
	g, _ := newGate(t, auth)

	msg, ok := g.VerifyEmail(context.Background(), "abc")
	assert.True(t, ok)
	assert.Equal(t, MsgVerified, msg)

	auth.verifyErr = &api.Error{Kind: api.KindValidation, Status: 400, Message: "Invalid or expired verification token"}
	msg, ok = g.VerifyEmail(context.Background(), "abc")
	assert.False(t, ok)
	assert.Equal(t, "Invalid or expired verification token", msg)

	_, ok = g.VerifyEmail(context.Background(), "  ")
	assert.False(t, ok)

	auth.resetMsg = "Email sent"
	msg, ok = g.RequestPasswordReset(context.Background(), "ada@students.git.edu")
	assert.True(t, ok)
	assert.Equal(t, "Email sent", msg)

	auth.resetErr = errors.New("boom")
	msg, ok = g.RequestPasswordReset(context.Background(), "ada@students.git.edu")
	assert.False(t, ok)
	assert.Equal(t, MsgResetFailed, msg)
}

func TestGate_InMemoryOnly(t *testing.T) {
	auth := &fakeAuth{loginRes: api.AuthResult{Token: "tok-1", User: &student}}
	g := NewGate(auth, "")
	_, err := g.Login(context.Background(), "ada@students.git.edu", "secret")
	require.NoError(t, err)
	assert.True(t, g.IsAuthenticated())
	assert.False(t, g.Restore(context.Background()))
	g.Logout()
	assert.False(t, g.IsAuthenticated())
}
