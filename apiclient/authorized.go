package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	clinicerrors "github.com/jrsteele09/go-clinic-console/internal/errors"
	"github.com/jrsteele09/go-clinic-console/patients"
	"github.com/jrsteele09/go-clinic-console/users"
	"golang.org/x/oauth2"
)

// Authorized calls the API with the bearer token from a TokenSource, usually
// a session.Store.
type Authorized struct {
	client         *Client
	http           *http.Client
	onUnauthorized func()
}

// Authorized binds ts to the client. onUnauthorized, if set, runs whenever the
// API answers 401.
func (c *Client) Authorized(ts oauth2.TokenSource, onUnauthorized func()) *Authorized {
	return &Authorized{
		client:         c,
		http:           c.bearerClient(ts),
		onUnauthorized: onUnauthorized,
	}
}

func (a *Authorized) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	status, err := a.client.do(ctx, a.http, method, path, query, in, out)
	if err == nil {
		return nil
	}
	if clinicerrors.Is(err, clinicerrors.ErrNotAuthenticated) {
		return clinicerrors.ErrNotAuthenticated
	}

	msg := messageOf(err)
	switch {
	case status == 0:
		return clinicerrors.Network(err)
	case status == http.StatusUnauthorized:
		if a.onUnauthorized != nil {
			a.onUnauthorized()
		}
		return &clinicerrors.AuthError{Kind: clinicerrors.KindExpired, Message: clinicerrors.MessageSessionExpired, Status: status, Err: err}
	case status == http.StatusForbidden:
		return &clinicerrors.AuthError{Kind: clinicerrors.KindForbidden, Message: msg, Status: status, Err: err}
	case status == http.StatusNotFound:
		return clinicerrors.Wrapf(clinicerrors.ErrNotFound, "%s %s", method, path)
	case status == http.StatusBadRequest || status == http.StatusConflict || status == http.StatusUnprocessableEntity:
		if msg == "" {
			msg = http.StatusText(status)
		}
		return clinicerrors.Validation("", msg)
	case status >= 500:
		return &clinicerrors.AuthError{Kind: clinicerrors.KindNetwork, Message: clinicerrors.MessageNetwork, Status: status, Err: err}
	}
	return &clinicerrors.AuthError{Message: msg, Status: status, Err: err}
}

// Profile returns the user the bearer token belongs to.
func (a *Authorized) Profile(ctx context.Context) (users.User, error) {
	var envelope profileEnvelope
	if err := a.do(ctx, http.MethodGet, "/auth/profile", nil, nil, &envelope); err != nil {
		return users.User{}, err
	}
	return envelope.translate()
}

// UpdateProfile edits the caller's own details and returns the stored user.
func (a *Authorized) UpdateProfile(ctx context.Context, req users.UpdateProfile) (users.User, error) {
	if err := req.Validate(); err != nil {
		return users.User{}, err
	}
	var envelope profileEnvelope
	if err := a.do(ctx, http.MethodPatch, "/auth/profile", nil, req, &envelope); err != nil {
		return users.User{}, err
	}
	return envelope.translate()
}

func (a *Authorized) ChangePassword(ctx context.Context, req users.ChangePassword) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	body := map[string]string{
		"currentPassword": req.CurrentPassword,
		"newPassword":     req.NewPassword,
	}
	var resp struct {
		Message string `json:"message"`
	}
	if err := a.do(ctx, http.MethodPost, "/auth/change-password", nil, body, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (a *Authorized) CreateUser(ctx context.Context, req users.CreateAccount) (*users.Account, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var account users.Account
	if err := a.do(ctx, http.MethodPost, "/users", nil, req, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (a *Authorized) ListUsers(ctx context.Context, params users.ListParams) (users.AccountList, error) {
	params = params.Normalise()
	query := url.Values{}
	query.Set("page", strconv.Itoa(params.Page))
	query.Set("limit", strconv.Itoa(params.Limit))
	if params.Search != "" {
		query.Set("search", params.Search)
	}
	if params.Role != "" {
		query.Set("role", params.Role)
	}
	if params.Status != "" {
		query.Set("status", params.Status)
	}

	var list users.AccountList
	if err := a.do(ctx, http.MethodGet, "/users", query, nil, &list); err != nil {
		return users.AccountList{}, err
	}
	return list, nil
}

func (a *Authorized) GetUser(ctx context.Context, id string) (*users.Account, error) {
	var account users.Account
	if err := a.do(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, nil, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (a *Authorized) UpdateUserRole(ctx context.Context, id string, role users.AccountRole) (*users.Account, error) {
	if _, err := users.ParseAccountRole(string(role)); err != nil {
		return nil, clinicerrors.Validation("role", "role must be admin, doctor, reception or user")
	}
	var account users.Account
	if err := a.do(ctx, http.MethodPatch, "/users/"+url.PathEscape(id)+"/role", nil, users.UpdateRole{Role: role}, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (a *Authorized) UpdateUserStatus(ctx context.Context, id string, status users.Status) (*users.Account, error) {
	if _, err := users.ParseStatus(string(status)); err != nil {
		return nil, clinicerrors.Validation("status", "status must be active, inactive or banned")
	}
	var account users.Account
	if err := a.do(ctx, http.MethodPatch, "/users/"+url.PathEscape(id)+"/status", nil, users.UpdateStatus{Status: status}, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (a *Authorized) ListPatients(ctx context.Context, params patients.ListParams) (patients.List, error) {
	params = params.Normalise()
	query := url.Values{}
	query.Set("page", strconv.Itoa(params.Page))
	query.Set("limit", strconv.Itoa(params.Limit))
	if params.Search != "" {
		query.Set("search", params.Search)
	}

	var list patients.List
	if err := a.do(ctx, http.MethodGet, "/patients", query, nil, &list); err != nil {
		return patients.List{}, err
	}
	return list, nil
}

func (a *Authorized) CreatePatient(ctx context.Context, in patients.Input) (*patients.Patient, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var p patients.Patient
	if err := a.do(ctx, http.MethodPost, "/patients", nil, in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (a *Authorized) GetPatient(ctx context.Context, id string) (*patients.Patient, error) {
	var p patients.Patient
	if err := a.do(ctx, http.MethodGet, "/patients/"+url.PathEscape(id), nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (a *Authorized) UpdatePatient(ctx context.Context, id string, in patients.Input) (*patients.Patient, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var p patients.Patient
	if err := a.do(ctx, http.MethodPut, "/patients/"+url.PathEscape(id), nil, in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (a *Authorized) DeletePatient(ctx context.Context, id string) error {
	return a.do(ctx, http.MethodDelete, "/patients/"+url.PathEscape(id), nil, nil, nil)
}
