package apiclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-clinic-console/apiclient"
	clinicerrors "github.com/jrsteele09/go-clinic-console/internal/errors"
	"github.com/jrsteele09/go-clinic-console/patients"
	"github.com/jrsteele09/go-clinic-console/users"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func serve(t *testing.T, handler http.HandlerFunc) *apiclient.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return apiclient.New(srv.URL + "/")
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestAuthenticateTranslatesResponseShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"user and token", `{"user":{"id":"u1","email":"a@clinic.test","role":"ADMIN","firstName":"Ada"},"token":"tok"}`},
		{"user and access_token", `{"user":{"id":"u1","email":"a@clinic.test","role":"admin","firstName":"Ada"},"access_token":"tok"}`},
		{"data envelope", `{"success":true,"data":{"user":{"_id":"u1","email":"a@clinic.test","role":"Admin","firstName":"Ada"},"accessToken":"tok"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := serve(t, func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, http.MethodPost, r.Method)
				require.Equal(t, "/auth/login", r.URL.Path)
				var body map[string]string
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				require.Equal(t, "a@clinic.test", body["email"])
				require.Equal(t, "secret", body["password"])
				writeJSON(w, http.StatusOK, tt.body)
			})

			user, credential, err := client.Authenticate(context.Background(), "a@clinic.test", "secret")
			require.NoError(t, err)
			require.Equal(t, "tok", credential)
			require.Equal(t, "u1", user.ID)
			require.Equal(t, users.RoleAdmin, user.Role)
			require.Equal(t, "Ada", user.FirstName)
			require.True(t, user.Active)
		})
	}
}

func TestAuthenticateFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		kind    clinicerrors.AuthKind
		message string
	}{
		{"invalid credentials", http.StatusUnauthorized, `{"message":"Invalid email or password"}`, clinicerrors.KindInvalidCredentials, "Invalid email or password"},
		{"validation list", http.StatusBadRequest, `{"message":["email must be an email","password should not be empty"]}`, clinicerrors.KindInvalidCredentials, "email must be an email; password should not be empty"},
		{"forbidden", http.StatusForbidden, `{"error":"Account is inactive"}`, clinicerrors.KindForbidden, "Account is inactive"},
		{"server error", http.StatusBadGateway, `oops`, clinicerrors.KindNetwork, clinicerrors.MessageNetwork},
		{"user role", http.StatusOK, `{"user":{"id":"u9","email":"u@clinic.test","role":"USER"},"token":"tok"}`, clinicerrors.KindForbidden, "This account cannot sign in to the clinic console."},
		{"missing token", http.StatusOK, `{"user":{"id":"u9","email":"u@clinic.test","role":"DOCTOR"}}`, clinicerrors.KindInvalidCredentials, clinicerrors.MessageLoginFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := serve(t, func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})
			_, _, err := client.Authenticate(context.Background(), "a@clinic.test", "secret")
			var authErr *clinicerrors.AuthError
			require.ErrorAs(t, err, &authErr)
			require.Equal(t, tt.kind, authErr.Kind)
			require.Equal(t, tt.message, authErr.Message)
		})
	}
}

func TestAuthenticateUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, _, err := apiclient.New(url).Authenticate(context.Background(), "a@clinic.test", "secret")
	var authErr *clinicerrors.AuthError
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, clinicerrors.KindNetwork, authErr.Kind)
}

func TestFetchCurrentProfile(t *testing.T) {
	client := serve(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/profile", r.URL.Path)
		switch r.Header.Get("Authorization") {
		case "Bearer good":
			writeJSON(w, http.StatusOK, `{"id":"u2","email":"d@clinic.test","role":"DOCTOR","specialization":"Cardiology","isActive":true}`)
		case "Bearer wrapped":
			writeJSON(w, http.StatusOK, `{"data":{"id":"u3","email":"r@clinic.test","role":"RECEPTION"}}`)
		default:
			writeJSON(w, http.StatusUnauthorized, `{"message":"Unauthorized"}`)
		}
	})

	user, err := client.FetchCurrentProfile(context.Background(), "good")
	require.NoError(t, err)
	require.Equal(t, users.RoleDoctor, user.Role)
	require.Equal(t, "Cardiology", user.Specialization)

	user, err = client.FetchCurrentProfile(context.Background(), "wrapped")
	require.NoError(t, err)
	require.Equal(t, "u3", user.ID)
	require.Equal(t, users.RoleReception, user.Role)

	_, err = client.FetchCurrentProfile(context.Background(), "stale")
	var authErr *clinicerrors.AuthError
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, clinicerrors.KindExpired, authErr.Kind)
	require.Equal(t, http.StatusUnauthorized, authErr.Status)
}

func TestAuthorizedCallsCarryTokenAndMapErrors(t *testing.T) {
	client := serve(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer admin-token" {
			writeJSON(w, http.StatusUnauthorized, `{"message":"Unauthorized"}`)
			return
		}
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/users":
			require.Equal(t, "2", r.URL.Query().Get("page"))
			require.Equal(t, "10", r.URL.Query().Get("limit"))
			require.Equal(t, "doctor", r.URL.Query().Get("role"))
			writeJSON(w, http.StatusOK, `{"users":[{"id":"u2","email":"d@clinic.test","role":"DOCTOR","status":"ACTIVE"}],"total":11,"page":2,"limit":10}`)
		case r.Method == http.MethodPatch && r.URL.Path == "/users/u2/status":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, "banned", body["status"])
			writeJSON(w, http.StatusOK, `{"id":"u2","email":"d@clinic.test","role":"DOCTOR","status":"BANNED"}`)
		case r.Method == http.MethodGet && r.URL.Path == "/patients/missing":
			writeJSON(w, http.StatusNotFound, `{"message":"Patient not found"}`)
		case r.Method == http.MethodDelete && r.URL.Path == "/patients/p1":
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodPost && r.URL.Path == "/patients":
			writeJSON(w, http.StatusConflict, `{"message":"Patient already exists"}`)
		default:
			writeJSON(w, http.StatusInternalServerError, `{}`)
		}
	})
	ctx := context.Background()
	api := client.Authorized(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "admin-token"}), nil)

	list, err := api.ListUsers(ctx, users.ListParams{Page: 2, Role: "doctor"})
	require.NoError(t, err)
	require.Equal(t, 11, list.Total)
	require.Equal(t, users.AccountRoleDoctor, list.Users[0].Role)
	require.Equal(t, users.StatusActive, list.Users[0].Status)

	account, err := api.UpdateUserStatus(ctx, "u2", users.StatusBanned)
	require.NoError(t, err)
	require.Equal(t, users.StatusBanned, account.Status)

	_, err = api.GetPatient(ctx, "missing")
	require.ErrorIs(t, err, clinicerrors.ErrNotFound)

	require.NoError(t, api.DeletePatient(ctx, "p1"))

	_, err = api.CreatePatient(ctx, patients.Input{FirstName: "Ali", LastName: "Valiyev", Phone: "+998901234567", Gender: "male"})
	var validationErr *clinicerrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Equal(t, "Patient already exists", validationErr.Message)

	_, err = api.UpdateUserRole(ctx, "u2", "superuser")
	require.ErrorAs(t, err, &validationErr)
}

func TestAuthorizedUnauthorizedInvokesHook(t *testing.T) {
	client := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"message":"jwt expired"}`)
	})
	var calls atomic.Int32
	api := client.Authorized(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "old"}), func() { calls.Add(1) })

	_, err := api.ListPatients(context.Background(), patients.ListParams{})
	var authErr *clinicerrors.AuthError
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, clinicerrors.KindExpired, authErr.Kind)
	require.EqualValues(t, 1, calls.Load())
}

type noToken struct{}

func (noToken) Token() (*oauth2.Token, error) {
	return nil, clinicerrors.ErrNotAuthenticated
}

func TestAuthorizedWithoutTokenMakesNoRequest(t *testing.T) {
	var hits atomic.Int32
	client := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		writeJSON(w, http.StatusOK, `{}`)
	})
	api := client.Authorized(noToken{}, nil)

	_, err := api.GetUser(context.Background(), "u1")
	require.ErrorIs(t, err, clinicerrors.ErrNotAuthenticated)
	require.Zero(t, hits.Load())
}

func TestChangePasswordValidatesLocally(t *testing.T) {
	var hits atomic.Int32
	client := serve(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.NotContains(t, body, "confirmPassword")
		writeJSON(w, http.StatusOK, `{"message":"Password changed"}`)
	})
	api := client.Authorized(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "t"}), nil)

	_, err := api.ChangePassword(context.Background(), users.ChangePassword{CurrentPassword: "OldPass123", NewPassword: "weak"})
	require.Error(t, err)
	require.Zero(t, hits.Load())

	msg, err := api.ChangePassword(context.Background(), users.ChangePassword{CurrentPassword: "OldPass123", NewPassword: "NewPass123", ConfirmPassword: "NewPass123"})
	require.NoError(t, err)
	require.Equal(t, "Password changed", msg)
	require.EqualValues(t, 1, hits.Load())
}

func TestUpdateProfile(t *testing.T) {
	var hits atomic.Int32
	client := serve(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/auth/profile", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "Lisa", body["firstName"])
		if body["email"] == "taken@clinic.test" {
			writeJSON(w, http.StatusConflict, `{"message":"User with this email already exists"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"data":{"_id":"u1","email":"cuddy@clinic.test","firstName":"Lisa","lastName":"Cuddy","role":"ADMIN","avatar":"https://img.clinic.test/c.png"}}`)
	})
	ctx := context.Background()
	api := client.Authorized(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "t"}), nil)

	_, err := api.UpdateProfile(ctx, users.UpdateProfile{FirstName: "Lisa", LastName: "Cuddy", Email: "cuddy"})
	var validationErr *clinicerrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Zero(t, hits.Load())

	u, err := api.UpdateProfile(ctx, users.UpdateProfile{FirstName: " Lisa ", LastName: "Cuddy", Email: "cuddy@clinic.test", Avatar: "https://img.clinic.test/c.png"})
	require.NoError(t, err)
	require.Equal(t, "u1", u.ID)
	require.Equal(t, users.RoleAdmin, u.Role)
	require.Equal(t, "https://img.clinic.test/c.png", u.Avatar)

	_, err = api.UpdateProfile(ctx, users.UpdateProfile{FirstName: "Lisa", LastName: "Cuddy", Email: "taken@clinic.test"})
	require.ErrorAs(t, err, &validationErr)
	require.Equal(t, "User with this email already exists", validationErr.Message)
	require.EqualValues(t, 2, hits.Load())
}

func TestCredentialExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u1", "exp": exp.Unix()}).SignedString([]byte("k"))
	require.NoError(t, err)

	got, ok := apiclient.CredentialExpiry(signed)
	require.True(t, ok)
	require.True(t, exp.Equal(got))

	_, ok = apiclient.CredentialExpiry("opaque-token")
	require.False(t, ok)
}
