package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-clinic-console/guard"
	"github.com/jrsteele09/go-clinic-console/internal/web"
	"github.com/jrsteele09/go-clinic-console/server/consolesession"
	"github.com/jrsteele09/go-clinic-console/session"
	"github.com/jrsteele09/go-clinic-console/users"
)

// SessionCookieName holds the browser session ID.
const SessionCookieName = "clinic_session"

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyStore stores the browser's session.Store
	ContextKeyStore ContextKey = "session_store"
	// ContextKeySessionID stores the browser session ID
	ContextKeySessionID ContextKey = "session_id"
)

func storeFrom(ctx context.Context) *session.Store {
	store, _ := ctx.Value(ContextKeyStore).(*session.Store)
	return store
}

// WithBrowserSession resolves the browser's store from its cookie, issuing a
// new cookie when none (or a malformed one) is presented.
func (s *Server) WithBrowserSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if cookie, err := r.Cookie(SessionCookieName); err == nil && consolesession.ValidID(cookie.Value) {
			id = cookie.Value
		} else {
			id = consolesession.NewID()
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookieName,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				Secure:   s.secureCookie,
				SameSite: http.SameSiteLaxMode,
			})
		}

		store, err := s.sessions.Get(r.Context(), id)
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to load browser session")
			web.WriteError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		ctx := context.WithValue(r.Context(), ContextKeyStore, store)
		ctx = context.WithValue(ctx, ContextKeySessionID, id)
		next(w, r.WithContext(ctx))
	}
}

// RequireRole runs the route guard for route. A nil role admits any
// authenticated staff member. Must be chained after WithBrowserSession.
func (s *Server) RequireRole(route string, required *users.Role) web.Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			activation := guard.Activate(r.Context(), storeFrom(r.Context()), required, s.policy)
			defer activation.Close()

			ctx, cancel := context.WithTimeout(r.Context(), s.pendingWait)
			decision, _ := activation.Wait(ctx)
			cancel()
			s.metrics.GuardDecided(route, decision)

			switch decision.State {
			case guard.Allowed:
				next(w, r)
			case guard.Denied:
				s.deny(w, r, decision)
			default:
				s.pending(w, r)
			}
		}
	}
}

func (s *Server) deny(w http.ResponseWriter, r *http.Request, d guard.Decision) {
	if !wantsJSON(r) {
		http.Redirect(w, r, d.Redirect, http.StatusSeeOther)
		return
	}
	if d.Redirect == guard.RouteLogin {
		web.WriteJSON(w, http.StatusUnauthorized, web.ErrorBody{Message: "Please log in to continue.", Redirect: d.Redirect})
		return
	}
	web.WriteJSON(w, http.StatusForbidden, web.ErrorBody{Message: "You do not have access to this page.", Redirect: d.Redirect})
}

// pending answers while the session check is still outstanding. Browsers get
// a page that reloads itself.
func (s *Server) pending(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Retry-After", "1")
	if wantsJSON(r) {
		web.WriteJSON(w, http.StatusAccepted, map[string]string{"state": guard.Pending.String()})
		return
	}
	s.renderPage(w, http.StatusAccepted, pageData{Title: "Please wait", Refresh: true})
}

// wantsJSON reports whether the caller speaks JSON rather than HTML.
func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}
