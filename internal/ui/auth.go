package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gittutor/tutor/internal/api"
	"github.com/gittutor/tutor/internal/form"
	"github.com/gittutor/tutor/internal/session"
)

type authMode int

const (
	authSignIn authMode = iota
	authSignUp
	authForgot
	authVerify
)

func (a authMode) title() string {
	switch a {
	case authSignUp:
		return "Create account"
	case authForgot:
		return "Forgot password"
	case authVerify:
		return "Verify email"
	default:
		return "Sign in"
	}
}

const (
	fieldRole  form.Field = "role"
	fieldToken form.Field = "token"
)

const msgTokenRequired = "Verification token is required"

var signUpRoles = []api.Role{api.RoleStudent, api.RoleTeacher, api.RoleAdmin}

// authPage holds the four account forms. Only one is shown at a time; each
// keeps its values when the viewer switches away and back.
type authPage struct {
	mode   authMode
	fields map[authMode]*fieldSet

	signIn session.SignIn
	signUp session.SignUp
	reset  session.ResetRequest
	verify form.Errors

	pending bool
	message string
	ok      bool
}

func newAuthPage() *authPage {
	roles := make([]string, len(signUpRoles))
	for i, r := range signUpRoles {
		roles[i] = string(r)
	}

	signUp := newFieldSet(
		choiceField(fieldRole, "Account type", roles...),
		textField(session.FieldName, "Full name", "Ada Lovelace", 80),
		textField(session.FieldEmail, "Email", "you@students.git.edu", 120),
		secretField(session.FieldPassword, "Password"),
		secretField(session.FieldConfirm, "Confirm password"),
		secretField(session.FieldAdminKey, "Admin key"),
		checkField(session.FieldTerms, "I accept the terms and conditions"),
	)
	signUp.setHidden(session.FieldAdminKey, true)

	return &authPage{
		fields: map[authMode]*fieldSet{
			authSignIn: newFieldSet(
				textField(session.FieldEmail, "Email", "you@students.git.edu", 120),
				secretField(session.FieldPassword, "Password"),
			),
			authSignUp: signUp,
			authForgot: newFieldSet(
				textField(session.FieldEmail, "Email", "you@students.git.edu", 120),
			),
			authVerify: newFieldSet(
				textField(fieldToken, "Verification token", "paste the token from your email", 512),
			),
		},
		signUp: session.NewSignUp(),
	}
}

// setMode switches forms and clears the last reply.
func (p *authPage) setMode(mode authMode) {
	p.mode = mode
	p.message = ""
	p.ok = false
}

// focus puts the cursor in the visible form.
func (p *authPage) focus() tea.Cmd {
	for mode, fs := range p.fields {
		if mode != p.mode {
			fs.blur()
		}
	}
	return p.fields[p.mode].applyFocus()
}

// switchLabel names the form ctrl+n switches to.
func (p *authPage) switchLabel() string {
	if p.mode == authSignUp {
		return "Sign in"
	}
	return "Sign up"
}

func (p *authPage) errors() form.Errors {
	switch p.mode {
	case authSignUp:
		return p.signUp.Errors
	case authForgot:
		return p.reset.Errors
	case authVerify:
		return p.verify
	default:
		return p.signIn.Errors
	}
}

// apply copies an edited field into its form, clearing only that field's
// error.
func (p *authPage) apply(id form.Field) {
	fs := p.fields[p.mode]
	switch p.mode {
	case authSignIn:
		p.signIn.Set(id, fs.value(id))
	case authSignUp:
		switch id {
		case fieldRole:
			p.signUp.SetRole(api.Role(fs.choice(fieldRole)))
			fs.setHidden(session.FieldAdminKey, p.signUp.Role != api.RoleAdmin)
		case session.FieldTerms:
			p.signUp.SetTerms(fs.checked(session.FieldTerms))
		default:
			p.signUp.Set(id, fs.value(id))
		}
	case authForgot:
		p.reset.Set(fs.value(id))
	case authVerify:
		p.verify.Clear(id)
	}
}

func (m *Model) handleAuthKey(msg tea.KeyMsg) tea.Cmd {
	p := m.auth
	if msg.Type == tea.KeyEsc {
		return m.pop()
	}
	if p.pending {
		return nil
	}

	fs := p.fields[p.mode]
	switch {
	case key.Matches(msg, m.keys.Tab), msg.Type == tea.KeyDown:
		return fs.next()
	case key.Matches(msg, m.keys.ShiftTab), msg.Type == tea.KeyUp:
		return fs.prev()
	case key.Matches(msg, m.keys.SignUp):
		if p.mode == authSignUp {
			p.setMode(authSignIn)
		} else {
			p.setMode(authSignUp)
		}
		return p.focus()
	case key.Matches(msg, m.keys.Forgot):
		p.setMode(authForgot)
		return p.focus()
	case key.Matches(msg, m.keys.Verify):
		p.setMode(authVerify)
		return p.focus()
	case key.Matches(msg, m.keys.CycleRole):
		if p.mode == authSignUp {
			i := fs.index(fieldRole)
			fs.fields[i].choice = (fs.fields[i].choice + 1) % len(signUpRoles)
			p.apply(fieldRole)
		}
		return nil
	case key.Matches(msg, m.keys.Submit), msg.Type == tea.KeyEnter:
		return m.submitAuth()
	}

	id, cmd := fs.update(msg)
	if id != "" {
		p.apply(id)
	}
	return cmd
}

// submitAuth validates the visible form and sends it.
func (m *Model) submitAuth() tea.Cmd {
	p := m.auth
	p.message = ""
	switch p.mode {
	case authSignIn:
		if !p.signIn.Validate() {
			return nil
		}
		p.pending = true
		return m.loginCmd(strings.TrimSpace(p.signIn.Email), p.signIn.Password)

	case authSignUp:
		if !p.signUp.Validate() {
			return nil
		}
		p.pending = true
		return m.registerCmd(p.signUp.Registration())

	case authForgot:
		if !p.reset.Validate() {
			return nil
		}
		p.pending = true
		return m.resetPasswordCmd(strings.TrimSpace(p.reset.Email))

	case authVerify:
		token := strings.TrimSpace(p.fields[authVerify].value(fieldToken))
		if token == "" {
			p.verify.Set(fieldToken, msgTokenRequired)
			return nil
		}
		p.pending = true
		return m.verifyCmd(token)
	}
	return nil
}

func (m *Model) onSignedIn(msg signedInMsg) tea.Cmd {
	p := m.auth
	p.pending = false
	if msg.err != nil {
		m.logger.Info("sign in failed", "error", msg.err)
		p.message, p.ok = msg.err.Error(), false
		return nil
	}

	p.fields[authSignIn].reset()
	p.signIn = session.SignIn{}
	m.catalog.state.Reset()
	m.profile.reset()
	m.flash(noticeSuccess, "Welcome back, "+msg.user.Name)
	if m.stale(msg.gen) {
		return nil
	}
	return m.reset(route{kind: routeCatalog})
}

func (m *Model) onRegistered(msg registeredMsg) tea.Cmd {
	p := m.auth
	p.pending = false
	if msg.err != nil {
		m.logger.Info("registration failed", "error", msg.err)
		p.message, p.ok = msg.err.Error(), false
		return nil
	}

	out := msg.outcome
	p.fields[authSignUp].reset()
	p.fields[authSignUp].setHidden(session.FieldAdminKey, true)
	p.signUp = session.NewSignUp()

	switch {
	case out.Active:
		m.catalog.state.Reset()
		m.profile.reset()
		m.flash(noticeSuccess, out.Message)
		if m.stale(msg.gen) {
			return nil
		}
		return m.reset(route{kind: routeCatalog})
	case out.PendingVerification:
		p.setMode(authVerify)
	default:
		p.setMode(authSignIn)
	}
	p.message, p.ok = out.Message, true
	if m.stale(msg.gen) {
		return nil
	}
	return p.focus()
}

func (m *Model) onAuthReply(msg authReplyMsg) tea.Cmd {
	p := m.auth
	p.pending = false
	if msg.ok && p.mode == authVerify {
		p.fields[authVerify].reset()
		p.setMode(authSignIn)
	}
	p.message, p.ok = msg.text, msg.ok
	if m.stale(msg.gen) {
		return nil
	}
	return p.focus()
}

func (m Model) renderAuth() string {
	p := m.auth
	styles := m.theme.Styles()
	width := min(m.width, LayoutModalWidth+8)
	inner := width - 6

	var b strings.Builder
	switch p.mode {
	case authSignUp:
		b.WriteString(styles.MutedText.Render("Students register with @" + session.StudentDomain +
			", teachers with @" + session.TeacherDomain + "."))
		b.WriteString("\n\n")
	case authForgot:
		b.WriteString(styles.MutedText.Render("We'll email you a link to reset your password."))
		b.WriteString("\n\n")
	case authVerify:
		b.WriteString(styles.MutedText.Render("Teacher accounts must verify their email before signing in."))
		b.WriteString("\n\n")
	}

	b.WriteString(p.fields[p.mode].view(styles, p.errors(), inner))
	b.WriteString("\n\n")

	switch {
	case p.pending:
		b.WriteString(m.renderPending("Please wait..."))
	case p.message != "" && p.ok:
		b.WriteString(wrap(styles.SuccessText.Render(p.message), inner))
	case p.message != "":
		b.WriteString(wrap(styles.DangerText.Render(p.message), inner))
	default:
		b.WriteString(styles.FaintText.Render("enter to submit"))
	}

	return m.renderBox(p.mode.title(), b.String(), width, m.contentHeight(), true)
}
