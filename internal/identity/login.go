package identity

import (
	"context"
	"net/url"
	"strings"

	"jobboard-workers/internal/models"
)

// ApplyJobParam carries a pending application through sign-in.
const ApplyJobParam = "applyJobId"

const (
	MsgFillAllFields   = "Please fill in all fields."
	MsgAcceptTerms     = "You must agree to the Terms and Conditions to create an account."
	MsgResetNeedsEmail = "Please enter your email address to reset your password."
)

// LoginForm is the sign-in / sign-up form.
type LoginForm struct {
	Email         string
	Password      string
	FirstName     string
	LastName      string
	CompanyName   string
	Role          models.Role
	RegisterMode  bool
	AcceptedTerms bool
}

// LoginResult is what the form shows or where it navigates next.
type LoginResult struct {
	Error    string
	Redirect string
}

// Succeeded reports whether the user is now signed in.
func (r LoginResult) Succeeded() bool {
	return r.Redirect != ""
}

// LoginFlow drives the login page. ReturnJobID is read from the page's
// applyJobId query parameter when it opens.
type LoginFlow struct {
	auth        *Auth
	ReturnJobID string
}

func NewLoginFlow(auth *Auth, query url.Values) *LoginFlow {
	return &LoginFlow{auth: auth, ReturnJobID: query.Get(ApplyJobParam)}
}

// Submit validates the form, signs in or registers, and picks the next page.
func (f *LoginFlow) Submit(ctx context.Context, form LoginForm) LoginResult {
	if form.Email == "" || form.Password == "" {
		return LoginResult{Error: MsgFillAllFields}
	}
	if form.RegisterMode && !form.AcceptedTerms {
		return LoginResult{Error: MsgAcceptTerms}
	}

	var err error
	if form.RegisterMode {
		err = f.auth.Register(ctx, Registration{
			FirstName: form.FirstName,
			LastName:  form.LastName,
			Company:   form.CompanyName,
			Email:     form.Email,
			Password:  form.Password,
			Role:      form.Role,
		})
	} else {
		err = f.auth.SignIn(ctx, form.Email, form.Password)
	}
	if err != nil {
		return LoginResult{Error: message(err)}
	}

	profile, _ := f.auth.Profile()
	return LoginResult{Redirect: PostLoginRoute(f.ReturnJobID, profile.Role)}
}

// ForgotPassword sends a reset link. It returns a form error, or "" when the
// link was sent.
func (f *LoginFlow) ForgotPassword(ctx context.Context, email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return MsgResetNeedsEmail
	}
	if err := f.auth.ResetPassword(ctx, email); err != nil {
		return message(err)
	}
	return ""
}

// PostLoginRoute returns the job list with the pending job when there is
// one, otherwise the role's home page.
func PostLoginRoute(applyJobID string, role models.Role) string {
	if applyJobID != "" {
		return "/job-list?" + url.Values{ApplyJobParam: {applyJobID}}.Encode()
	}
	switch role {
	case models.RoleAdmin:
		return "/admin"
	case models.RoleEmployer:
		return "/employer-jobs"
	default:
		return "/job-list"
	}
}
