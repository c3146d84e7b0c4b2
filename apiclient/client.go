// Package apiclient talks to the remote clinic REST API. It translates the
// API's varying response shapes into one internal contract.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	clinicerrors "github.com/jrsteele09/go-clinic-console/internal/errors"
	"github.com/jrsteele09/go-clinic-console/session"
	"github.com/jrsteele09/go-clinic-console/users"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

var _ session.Authenticator = (*Client)(nil)

// Client is the unauthenticated entry point: login and profile lookup.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func New(baseURL string, options ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	c.logger = c.logger.With().Str("component", "apiclient").Logger()
	return c
}

// Authenticate posts the credentials to /auth/login.
func (c *Client) Authenticate(ctx context.Context, email, password string) (users.User, string, error) {
	body := map[string]string{"email": email, "password": password}
	var envelope loginEnvelope
	status, err := c.do(ctx, c.httpClient, http.MethodPost, "/auth/login", nil, body, &envelope)
	if err != nil {
		return users.User{}, "", loginError(status, err)
	}

	result, err := envelope.translate()
	if err != nil {
		return users.User{}, "", err
	}
	c.logger.Debug().Str("user_id", result.User.ID).Msg("Authenticated")
	return result.User, result.Credential, nil
}

// FetchCurrentProfile reads /auth/profile with credential as the bearer token.
func (c *Client) FetchCurrentProfile(ctx context.Context, credential string) (users.User, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: credential, TokenType: "Bearer"})
	var envelope profileEnvelope
	status, err := c.do(ctx, c.bearerClient(ts), http.MethodGet, "/auth/profile", nil, nil, &envelope)
	if err != nil {
		return users.User{}, profileError(status, err)
	}
	return envelope.translate()
}

func (c *Client) bearerClient(ts oauth2.TokenSource) *http.Client {
	base := c.httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	return &http.Client{
		Timeout:   c.httpClient.Timeout,
		Transport: &oauth2.Transport{Source: ts, Base: base},
	}
}

// statusError carries a non-2xx answer until it is classified.
type statusError struct {
	status  int
	message string
}

func (e *statusError) Error() string {
	return http.StatusText(e.status) + ": " + e.message
}

// do sends a JSON request and decodes a 2xx JSON answer into out. The returned
// status is zero when no response arrived.
func (c *Client) do(ctx context.Context, h *http.Client, method, path string, query url.Values, in, out any) (int, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return 0, clinicerrors.Wrapf(err, "[apiclient] encode %s %s", method, path)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return 0, clinicerrors.Wrapf(err, "[apiclient] build %s %s", method, path)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := h.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("method", method).Str("path", path).Msg("Request failed")
		return 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.StatusCode, clinicerrors.Wrapf(err, "[apiclient] read %s %s", method, path)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug().Int("status", resp.StatusCode).Str("method", method).Str("path", path).Msg("Request rejected")
		return resp.StatusCode, &statusError{status: resp.StatusCode, message: errorMessage(data)}
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return resp.StatusCode, clinicerrors.Wrapf(err, "[apiclient] decode %s %s", method, path)
	}
	return resp.StatusCode, nil
}

// errorMessage pulls a displayable message from an error body. The API answers
// with {"message": "..."} or {"message": ["...", "..."]} or {"error": "..."}.
func errorMessage(body []byte) string {
	var parsed struct {
		Message json.RawMessage `json:"message"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}
	if len(parsed.Message) > 0 {
		var single string
		if err := json.Unmarshal(parsed.Message, &single); err == nil && single != "" {
			return single
		}
		var many []string
		if err := json.Unmarshal(parsed.Message, &many); err == nil && len(many) > 0 {
			return strings.Join(many, "; ")
		}
	}
	return parsed.Error
}

// loginError classifies a failed login. No response or an unreadable success
// counts as the service being unreachable.
func loginError(status int, err error) error {
	switch {
	case status < 300:
		return clinicerrors.Network(err)
	case status >= 500:
		return &clinicerrors.AuthError{Kind: clinicerrors.KindNetwork, Message: clinicerrors.MessageNetwork, Status: status, Err: err}
	case status == http.StatusForbidden:
		return &clinicerrors.AuthError{Kind: clinicerrors.KindForbidden, Message: messageOf(err), Status: status, Err: err}
	}
	return &clinicerrors.AuthError{Kind: clinicerrors.KindInvalidCredentials, Message: messageOf(err), Status: status, Err: err}
}

// profileError classifies a failed profile lookup. Any 4xx means the
// credential is no longer accepted.
func profileError(status int, err error) error {
	switch {
	case status < 300:
		return clinicerrors.Network(err)
	case status >= 500:
		return &clinicerrors.AuthError{Kind: clinicerrors.KindNetwork, Message: clinicerrors.MessageNetwork, Status: status, Err: err}
	}
	return &clinicerrors.AuthError{Kind: clinicerrors.KindExpired, Message: clinicerrors.MessageSessionExpired, Status: status, Err: err}
}

func messageOf(err error) string {
	var se *statusError
	if clinicerrors.As(err, &se) {
		return se.message
	}
	return ""
}
