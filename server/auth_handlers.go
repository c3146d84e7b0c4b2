package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-clinic-console/apiclient"
	"github.com/jrsteele09/go-clinic-console/guard"
	clinicerrors "github.com/jrsteele09/go-clinic-console/internal/errors"
	"github.com/jrsteele09/go-clinic-console/internal/web"
	"github.com/jrsteele09/go-clinic-console/users"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User     *users.User `json:"user"`
	Redirect string      `json:"redirect"`
}

// IndexHandler sends visitors to the dashboard or the login page.
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if storeFrom(r.Context()).Snapshot().IsAuthenticated {
			http.Redirect(w, r, RouteDashboard, http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
	}
}

// LoginPageHandler displays the login form (GET /login)
func (s *Server) LoginPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := storeFrom(r.Context()).Snapshot()
		if snap.IsAuthenticated {
			http.Redirect(w, r, RouteDashboard, http.StatusSeeOther)
			return
		}
		s.renderLogin(w, http.StatusOK, pageData{Error: snap.LastError})
	}
}

// LoginSubmissionHandler accepts JSON or form credentials (POST /auth/login)
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := readCredentials(r)
		if err != nil {
			web.WriteErr(w, err)
			return
		}

		user, err := storeFrom(r.Context()).Login(r.Context(), req.Email, req.Password)
		if err != nil {
			if wantsJSON(r) {
				web.WriteErr(w, err)
				return
			}
			msg := clinicerrors.DisplayMessage(err, clinicerrors.MessageLoginFailed)
			s.renderLogin(w, clinicerrors.HTTPStatus(err), pageData{Email: req.Email, Error: msg})
			return
		}

		home := guard.HomeRoute(user.Role)
		if wantsJSON(r) {
			web.WriteJSON(w, http.StatusOK, loginResponse{User: user, Redirect: home})
			return
		}
		http.Redirect(w, r, home, http.StatusSeeOther)
	}
}

func readCredentials(r *http.Request) (loginRequest, error) {
	var req loginRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		err := web.DecodeJSON(r, &req)
		return req, err
	}
	if err := r.ParseForm(); err != nil {
		return req, clinicerrors.Validation("", "invalid form data")
	}
	req.Email = r.PostFormValue("email")
	req.Password = r.PostFormValue("password")
	return req, nil
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeFrom(r.Context()).Logout(r.Context())
		s.logger.Debug().Any("session_id", r.Context().Value(ContextKeySessionID)).Msg("Browser session logged out")
		if wantsJSON(r) {
			web.WriteJSON(w, http.StatusOK, map[string]string{"redirect": RouteLogin})
			return
		}
		http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
	}
}

func (s *Server) ClearErrorHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeFrom(r.Context()).ClearError()
		if wantsJSON(r) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
	}
}

// SessionHandler answers with the browser's session snapshot.
func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		web.WriteJSON(w, http.StatusOK, storeFrom(r.Context()).Snapshot())
	}
}

func (s *Server) ChangePasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req users.ChangePassword
		if err := web.DecodeJSON(r, &req); err != nil {
			web.WriteErr(w, err)
			return
		}
		msg, err := s.authorized(r).ChangePassword(r.Context(), req)
		if err != nil {
			s.writeAPIErr(w, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, map[string]string{"message": msg})
	}
}

// UpdateProfileHandler edits the logged in user's details, then re-checks the
// session so its user reflects the change.
func (s *Server) UpdateProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req users.UpdateProfile
		if err := web.DecodeJSON(r, &req); err != nil {
			web.WriteErr(w, err)
			return
		}
		user, err := s.authorized(r).UpdateProfile(r.Context(), req)
		if err != nil {
			s.writeAPIErr(w, err)
			return
		}
		if err := storeFrom(r.Context()).CheckAuth(r.Context()); err != nil {
			s.writeAPIErr(w, err)
			return
		}
		s.logger.Info().Str("user_id", user.ID).Msg("Profile updated")
		web.WriteJSON(w, http.StatusOK, map[string]any{"user": user})
	}
}

// authorized calls the clinic API as the browser's session. A 401 from the
// API ends the session.
func (s *Server) authorized(r *http.Request) *apiclient.Authorized {
	store := storeFrom(r.Context())
	ctx := context.WithoutCancel(r.Context())
	return s.api.Authorized(store, func() { store.Logout(ctx) })
}

// writeAPIErr is web.WriteErr plus a login redirect when the session is gone.
func (s *Server) writeAPIErr(w http.ResponseWriter, err error) {
	status := clinicerrors.HTTPStatus(err)
	if status == http.StatusUnauthorized {
		web.WriteJSON(w, status, web.ErrorBody{
			Message:  clinicerrors.DisplayMessage(err, clinicerrors.MessageSessionExpired),
			Redirect: RouteLogin,
		})
		return
	}
	web.WriteErr(w, err)
}
