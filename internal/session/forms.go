package session

import (
	"strings"

	"github.com/gittutor/tutor/internal/api"
	"github.com/gittutor/tutor/internal/form"
)

// Form fields shared by the sign-in, sign-up and reset forms.
const (
	FieldName     form.Field = "name"
	FieldEmail    form.Field = "email"
	FieldPassword form.Field = "password"
	FieldConfirm  form.Field = "confirm"
	FieldAdminKey form.Field = "admin_key"
	FieldTerms    form.Field = "terms"
)

// Email domains required at registration.
const (
	StudentDomain = "students.git.edu"
	TeacherDomain = "git.edu"
)

var validate = form.New()

var (
	emailMessages = map[string]string{
		"required": "Email is required",
		"":         "Please enter a valid email",
	}
	signInMessages = form.Messages{
		FieldEmail:    emailMessages,
		FieldPassword: {"": "Password is required"},
	}
)

func signUpMessages(role api.Role) form.Messages {
	minLen := "Password must be at least 6 characters"
	if role == api.RoleAdmin {
		minLen = "Password must be at least 8 characters"
	}
	return form.Messages{
		FieldName: {"": "Name is required"},
		FieldEmail: {
			"required": "Email is required",
			"emaildomain": map[api.Role]string{
				api.RoleStudent: "Student registration requires a @" + StudentDomain + " email address.",
				api.RoleTeacher: "Teacher registration requires a @" + TeacherDomain + " email address.",
			}[role],
			"": "Please provide a valid email address.",
		},
		FieldPassword: {
			"required": "Password is required",
			"":         minLen,
		},
		FieldConfirm: {
			"required": "Please confirm your password",
			"":         "Passwords do not match",
		},
		FieldAdminKey: {"": "Admin key is required"},
		FieldTerms:    {"": "You must accept the terms and conditions"},
	}
}

// SignIn is the sign-in form.
type SignIn struct {
	Email    string
	Password string
	Errors   form.Errors
}

// Set updates a field and clears only its error.
func (s *SignIn) Set(f form.Field, v string) {
	switch f {
	case FieldEmail:
		s.Email = v
	case FieldPassword:
		s.Password = v
	default:
		return
	}
	s.Errors.Clear(f)
}

// Validate checks every rule and reports whether the form may be submitted.
func (s *SignIn) Validate() bool {
	s.Errors = validate.Struct(struct {
		Email    string `form:"email" validate:"required,email"`
		Password string `form:"password" validate:"required"`
	}{strings.TrimSpace(s.Email), s.Password}, signInMessages)
	return s.Errors.Empty()
}

// ResetRequest is the forgot-password form.
type ResetRequest struct {
	Email  string
	Errors form.Errors
}

// Set updates the email and clears its error.
func (r *ResetRequest) Set(v string) {
	r.Email = v
	r.Errors.Clear(FieldEmail)
}

// Validate checks the email address.
func (r *ResetRequest) Validate() bool {
	r.Errors = validate.Struct(struct {
		Email string `form:"email" validate:"required,email"`
	}{strings.TrimSpace(r.Email)}, form.Messages{FieldEmail: emailMessages})
	return r.Errors.Empty()
}

// SignUp is the registration form. Rules depend on the chosen role.
type SignUp struct {
	Role     api.Role
	Name     string
	Email    string
	Password string
	Confirm  string
	AdminKey string
	Terms    bool
	Errors   form.Errors
}

// NewSignUp returns an empty form for a student account.
func NewSignUp() SignUp {
	return SignUp{Role: api.RoleStudent}
}

// Set updates a text field and clears only its error.
func (s *SignUp) Set(f form.Field, v string) {
	switch f {
	case FieldName:
		s.Name = v
	case FieldEmail:
		s.Email = v
	case FieldPassword:
		s.Password = v
	case FieldConfirm:
		s.Confirm = v
	case FieldAdminKey:
		s.AdminKey = v
	default:
		return
	}
	s.Errors.Clear(f)
}

// SetTerms records whether the terms were accepted.
func (s *SignUp) SetTerms(accepted bool) {
	s.Terms = accepted
	s.Errors.Clear(FieldTerms)
}

// SetRole switches the account type. Errors tied to the previous role's
// rules are cleared.
func (s *SignUp) SetRole(r api.Role) {
	if !r.Valid() || r == s.Role {
		return
	}
	s.Role = r
	s.Errors.Clear(FieldEmail)
	s.Errors.Clear(FieldPassword)
	s.Errors.Clear(FieldAdminKey)
}

type studentSignUp struct {
	Name     string `form:"name" validate:"notblank"`
	Email    string `form:"email" validate:"required,email,emaildomain=students.git.edu"`
	Password string `form:"password" validate:"required,min=6"`
	Confirm  string `form:"confirm" validate:"required,eqfield=Password"`
	Terms    bool   `form:"terms" validate:"required"`
}

type teacherSignUp struct {
	Name     string `form:"name" validate:"notblank"`
	Email    string `form:"email" validate:"required,email,emaildomain=git.edu"`
	Password string `form:"password" validate:"required,min=6"`
	Confirm  string `form:"confirm" validate:"required,eqfield=Password"`
	Terms    bool   `form:"terms" validate:"required"`
}

type adminSignUp struct {
	Name     string `form:"name" validate:"notblank"`
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,min=8"`
	Confirm  string `form:"confirm" validate:"required,eqfield=Password"`
	AdminKey string `form:"admin_key" validate:"notblank"`
	Terms    bool   `form:"terms" validate:"required"`
}

// Validate checks every rule for the current role.
func (s *SignUp) Validate() bool {
	email := strings.TrimSpace(s.Email)
	var rules any
	switch s.Role {
	case api.RoleTeacher:
		rules = teacherSignUp{s.Name, email, s.Password, s.Confirm, s.Terms}
	case api.RoleAdmin:
		rules = adminSignUp{s.Name, email, s.Password, s.Confirm, s.AdminKey, s.Terms}
	default:
		rules = studentSignUp{s.Name, email, s.Password, s.Confirm, s.Terms}
	}
	s.Errors = validate.Struct(rules, signUpMessages(s.Role))
	return s.Errors.Empty()
}

// Registration builds the API payload. The admin key is sent only for
// admin accounts.
func (s SignUp) Registration() api.Registration {
	reg := api.Registration{
		Name:     strings.TrimSpace(s.Name),
		Email:    strings.TrimSpace(s.Email),
		Password: s.Password,
		Role:     s.Role,
	}
	if s.Role == api.RoleAdmin {
		reg.AdminKey = s.AdminKey
	}
	return reg
}
