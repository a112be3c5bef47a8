package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gittutor/tutor/internal/api"
	"github.com/gittutor/tutor/internal/tomlfile"
)

// Fallback messages used when the API gives no reason.
const (
	MsgLoginFailed     = "Login failed. Please check your credentials."
	MsgRegisterFailed  = "Registration failed. Please try again."
	MsgVerifyFailed    = "An error occurred while verifying your email. Please try again later."
	MsgVerified        = "Email verified successfully! You can now log in with your credentials."
	MsgResetFailed     = "Failed to send reset email. Please try again."
	MsgResetSent       = "Password reset email sent! Please check your inbox."
	MsgUnexpectedReply = "Unexpected response from server"

	msgCheckEmail = " Please check your email to verify your account."
	msgCanLogIn   = " You can now log in."
)

// Authenticator is the slice of the API client the gate depends on.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (api.AuthResult, error)
	Register(ctx context.Context, reg api.Registration) (api.AuthResult, error)
	Me(ctx context.Context) (api.User, error)
	VerifyEmail(ctx context.Context, token string) (string, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
}

var _ Authenticator = (*api.Client)(nil)

// AuthError is a failed sign-in or registration. Message is safe to show.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string { return e.Message }

func (e *AuthError) Unwrap() error { return e.Err }

// Outcome describes how a registration ended.
type Outcome struct {
	User                *api.User
	Active              bool
	PendingVerification bool
	Message             string
}

// Gate owns the signed-in identity. It is the only writer of the persisted
// session and satisfies api.Credentials so the client reads the token from it.
type Gate struct {
	auth   Authenticator
	path   string
	logger *slog.Logger
	now    func() time.Time

	mu    sync.RWMutex
	token string
	user  *api.User
}

// Option configures a Gate.
type Option func(*Gate)

// WithLogger sets the logger for persistence problems.
func WithLogger(l *slog.Logger) Option {
	return func(g *Gate) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithClock overrides the clock used for credential expiry.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) {
		if now != nil {
			g.now = now
		}
	}
}

// NewGate returns an anonymous gate persisting to path. An empty path keeps
// the session in memory only.
func NewGate(auth Authenticator, path string, opts ...Option) *Gate {
	g := &Gate{auth: auth, path: path, logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Token implements api.Credentials.
func (g *Gate) Token() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.token
}

// CurrentUser returns a copy of the signed-in user.
func (g *Gate) CurrentUser() (api.User, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.user == nil {
		return api.User{}, false
	}
	return *g.user, true
}

// IsAuthenticated reports whether a verified user is signed in.
func (g *Gate) IsAuthenticated() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.user != nil && g.token != ""
}

// Role returns the signed-in role, or "" when anonymous.
func (g *Gate) Role() api.Role {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.user == nil {
		return ""
	}
	return g.user.Role
}

// Login signs in and persists the session. Failures are *AuthError.
func (g *Gate) Login(ctx context.Context, email, password string) (api.User, error) {
	res, err := g.auth.Login(ctx, email, password)
	if err != nil {
		return api.User{}, &AuthError{Message: api.UserMessage(err, MsgLoginFailed), Err: err}
	}
	if strings.TrimSpace(res.Token) == "" || res.User == nil {
		return api.User{}, &AuthError{Message: MsgUnexpectedReply}
	}
	g.activate(res.Token, *res.User)
	g.logger.Info("signed in", "user_id", res.User.ID, "role", res.User.Role)
	return *res.User, nil
}

// Register creates an account. Teacher accounts wait for email verification
// and never start a session here; other roles are signed in when the API
// returns a credential.
func (g *Gate) Register(ctx context.Context, reg api.Registration) (Outcome, error) {
	res, err := g.auth.Register(ctx, reg)
	if err != nil {
		return Outcome{}, &AuthError{Message: api.UserMessage(err, MsgRegisterFailed), Err: err}
	}
	msg := strings.TrimSpace(res.Message)
	if msg == "" {
		msg = "Registration successful!"
	}
	out := Outcome{User: res.User}
	switch {
	case reg.Role == api.RoleTeacher:
		out.PendingVerification = true
		out.Message = msg + msgCheckEmail
	case strings.TrimSpace(res.Token) != "" && res.User != nil:
		g.activate(res.Token, *res.User)
		out.Active = true
		out.Message = msg
	default:
		out.Message = msg + msgCanLogIn
	}
	g.logger.Info("registered", "role", reg.Role, "active", out.Active, "pending", out.PendingVerification)
	return out, nil
}

// Logout clears the session in memory and on disk.
func (g *Gate) Logout() {
	g.mu.Lock()
	g.token = ""
	g.user = nil
	g.mu.Unlock()
	if g.path == "" {
		return
	}
	if err := tomlfile.Remove(g.path); err != nil {
		g.logger.Warn("remove session", "error", err)
	}
}

// Restore loads the persisted session and refreshes the user from the API.
// The stored identity stands in while the refresh runs. Any failure discards
// the persisted session and leaves the gate anonymous.
func (g *Gate) Restore(ctx context.Context) bool {
	if g.path == "" {
		return false
	}
	var snap snapshot
	found, err := tomlfile.Read(g.path, &snap)
	if err != nil {
		g.logger.Warn("discarding unreadable session", "error", err)
		g.Logout()
		return false
	}
	if !found {
		return false
	}
	token := strings.TrimSpace(snap.Token)
	if token == "" {
		g.Logout()
		return false
	}
	if expired(token, g.now()) {
		g.logger.Info("discarding expired session")
		g.Logout()
		return false
	}

	cached, ok := snap.User.toUser()
	g.mu.Lock()
	g.token = token
	g.user = nil
	if ok {
		g.user = &cached
	}
	g.mu.Unlock()

	user, err := g.auth.Me(ctx)
	if err != nil {
		g.logger.Warn("session refresh failed", "error", err, "kind", api.KindOf(err).String())
		g.Logout()
		return false
	}
	g.activate(token, user)
	return true
}

// VerifyEmail confirms a teacher account. The returned message is always
// displayable; ok reports success.
func (g *Gate) VerifyEmail(ctx context.Context, token string) (msg string, ok bool) {
	if strings.TrimSpace(token) == "" {
		return "Invalid verification link", false
	}
	msg, err := g.auth.VerifyEmail(ctx, token)
	if err != nil {
		return api.UserMessage(err, MsgVerifyFailed), false
	}
	if msg == "" {
		msg = MsgVerified
	}
	return msg, true
}

// RequestPasswordReset asks for a reset email.
func (g *Gate) RequestPasswordReset(ctx context.Context, email string) (msg string, ok bool) {
	msg, err := g.auth.ForgotPassword(ctx, email)
	if err != nil {
		return api.UserMessage(err, MsgResetFailed), false
	}
	if msg == "" {
		msg = MsgResetSent
	}
	return msg, true
}

func (g *Gate) activate(token string, user api.User) {
	g.mu.Lock()
	g.token = token
	u := user
	g.user = &u
	g.mu.Unlock()

	if g.path == "" {
		return
	}
	snap := snapshot{Token: token, SavedAt: g.now().UTC(), User: fromUser(user)}
	if err := tomlfile.Write(g.path, snap, 0o600); err != nil {
		g.logger.Warn("persist session", "error", err)
	}
}

// expired reports whether token is a JWT whose exp claim is in the past.
// Opaque tokens are left for the API to judge.
func expired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}
