package devapi

import (
	"net/http"
	"strings"

	clinicerrors "github.com/jrsteele09/go-clinic-console/internal/errors"
	"github.com/jrsteele09/go-clinic-console/internal/web"
	"github.com/jrsteele09/go-clinic-console/users"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := web.DecodeJSON(r, &req); err != nil {
			web.WriteErr(w, err)
			return
		}
		if strings.TrimSpace(req.Email) == "" || req.Password == "" {
			web.WriteJSON(w, http.StatusBadRequest, map[string]any{"message": []string{"email should not be empty", "password should not be empty"}})
			return
		}

		account, err := s.accounts.GetByEmail(strings.TrimSpace(req.Email))
		if err != nil || !users.CheckPasswordHash(req.Password, account.PasswordHash) {
			web.WriteError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		switch account.Status {
		case users.StatusBanned:
			web.WriteError(w, http.StatusForbidden, "Account is banned")
			return
		case users.StatusInactive:
			web.WriteError(w, http.StatusForbidden, "Account is inactive")
			return
		}
		if _, ok := account.Role.SessionRole(); !ok {
			web.WriteError(w, http.StatusForbidden, "This account cannot sign in to the clinic console.")
			return
		}

		token, exp, err := s.tokens.Issue(account)
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to issue token")
			web.WriteError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		s.logger.Info().Str("user_id", account.ID).Str("role", string(account.Role)).Msg("Login")

		user := toWire(account)
		expiresIn := int64(exp.Sub(s.tokens.nowTime()).Seconds())
		switch s.shape {
		case ShapeAccessToken:
			web.WriteJSON(w, http.StatusOK, map[string]any{"user": user, "access_token": token, "expiresIn": expiresIn})
		case ShapeEnvelope:
			web.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"user": user, "accessToken": token, "expiresIn": expiresIn}})
		default:
			web.WriteJSON(w, http.StatusOK, map[string]any{"user": user, "token": token, "expiresIn": expiresIn})
		}
	}
}

func (s *Server) ProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		web.WriteJSON(w, http.StatusOK, toWire(accountFrom(r.Context())))
	}
}

func (s *Server) UpdateProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req users.UpdateProfile
		if err := web.DecodeJSON(r, &req); err != nil {
			web.WriteErr(w, err)
			return
		}
		if err := req.Validate(); err != nil {
			web.WriteErr(w, err)
			return
		}
		account, err := s.accounts.UpdateProfile(accountFrom(r.Context()).ID, req)
		if clinicerrors.Is(err, clinicerrors.ErrInvalidRequest) {
			web.WriteError(w, http.StatusConflict, "User with this email already exists")
			return
		}
		if err != nil {
			web.WriteErr(w, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, toWire(account))
	}
}

func (s *Server) ChangePasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req users.ChangePassword
		if err := web.DecodeJSON(r, &req); err != nil {
			web.WriteErr(w, err)
			return
		}
		account := accountFrom(r.Context())
		if !users.CheckPasswordHash(req.CurrentPassword, account.PasswordHash) {
			web.WriteError(w, http.StatusBadRequest, "Current password is incorrect")
			return
		}
		if err := req.Validate(); err != nil {
			web.WriteErr(w, err)
			return
		}

		hash, err := users.HashPassword(req.NewPassword)
		if err != nil {
			web.WriteErr(w, clinicerrors.Wrapf(err, "[ChangePasswordHandler] hash"))
			return
		}
		if err := s.accounts.SetPasswordHash(account.ID, hash); err != nil {
			web.WriteErr(w, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, map[string]string{"message": "Password changed successfully"})
	}
}
