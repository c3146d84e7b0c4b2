package apiclient

import (
	"strings"
	"time"

	clinicerrors "github.com/jrsteele09/go-clinic-console/internal/errors"
	"github.com/jrsteele09/go-clinic-console/users"
)

// LoginResult is the canonical answer of a successful login.
type LoginResult struct {
	User       users.User
	Credential string
}

// wireUser is a profile as the API sends it. Ids arrive as id or _id, roles in
// upper case, and some revisions omit isActive.
type wireUser struct {
	ID             string    `json:"id"`
	MongoID        string    `json:"_id"`
	Email          string    `json:"email"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	FullName       string    `json:"fullName"`
	Role           string    `json:"role"`
	Phone          string    `json:"phone"`
	Specialization string    `json:"specialization"`
	Avatar         string    `json:"avatar"`
	IsActive       *bool     `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (w *wireUser) empty() bool {
	return w == nil || (w.ID == "" && w.MongoID == "" && w.Email == "")
}

func (w *wireUser) translate() (users.User, error) {
	if w.empty() {
		return users.User{}, &clinicerrors.AuthError{Kind: clinicerrors.KindInvalidCredentials, Message: clinicerrors.MessageLoginFailed}
	}
	role, err := users.ParseRole(w.Role)
	if err != nil {
		return users.User{}, &clinicerrors.AuthError{
			Kind:    clinicerrors.KindForbidden,
			Message: "This account cannot sign in to the clinic console.",
			Err:     err,
		}
	}

	u := users.User{
		ID:             w.ID,
		Email:          w.Email,
		FirstName:      w.FirstName,
		LastName:       w.LastName,
		Role:           role,
		Phone:          w.Phone,
		Specialization: w.Specialization,
		Avatar:         w.Avatar,
		Active:         w.IsActive == nil || *w.IsActive,
		CreatedAt:      w.CreatedAt,
		UpdatedAt:      w.UpdatedAt,
	}
	if u.ID == "" {
		u.ID = w.MongoID
	}
	if u.FirstName == "" && u.LastName == "" && w.FullName != "" {
		first, last, _ := strings.Cut(strings.TrimSpace(w.FullName), " ")
		u.FirstName, u.LastName = first, strings.TrimSpace(last)
	}
	return u, nil
}

// loginEnvelope covers {user, token}, {user, access_token}, {user, accessToken}
// and any of those nested under data.
type loginEnvelope struct {
	User             *wireUser      `json:"user"`
	Token            string         `json:"token"`
	AccessToken      string         `json:"access_token"`
	AccessTokenCamel string         `json:"accessToken"`
	Data             *loginEnvelope `json:"data"`
}

func (e *loginEnvelope) credential() string {
	for _, c := range []string{e.Token, e.AccessToken, e.AccessTokenCamel} {
		if c = strings.TrimSpace(c); c != "" {
			return c
		}
	}
	return ""
}

func (e *loginEnvelope) translate() (LoginResult, error) {
	env := e
	for env.User.empty() && env.credential() == "" && env.Data != nil {
		env = env.Data
	}

	credential := env.credential()
	if credential == "" {
		return LoginResult{}, &clinicerrors.AuthError{Kind: clinicerrors.KindInvalidCredentials, Message: clinicerrors.MessageLoginFailed}
	}
	user, err := env.User.translate()
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{User: user, Credential: credential}, nil
}

// profileEnvelope covers a bare user, {user: ...} and {data: ...}.
type profileEnvelope struct {
	wireUser
	User *wireUser `json:"user"`
	Data *wireUser `json:"data"`
}

func (e *profileEnvelope) translate() (users.User, error) {
	w := &e.wireUser
	switch {
	case !e.User.empty():
		w = e.User
	case !e.Data.empty():
		w = e.Data
	}
	u, err := w.translate()
	var authErr *clinicerrors.AuthError
	if clinicerrors.As(err, &authErr) && authErr.Kind == clinicerrors.KindInvalidCredentials {
		authErr.Kind = clinicerrors.KindExpired
		authErr.Message = ""
	}
	return u, err
}
