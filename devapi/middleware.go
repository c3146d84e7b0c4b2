package devapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-clinic-console/internal/web"
	"github.com/jrsteele09/go-clinic-console/users"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyAccount stores the account the bearer token belongs to
const ContextKeyAccount ContextKey = "account"

func accountFrom(ctx context.Context) *users.Account {
	account, _ := ctx.Value(ContextKeyAccount).(*users.Account)
	return account
}

// RequireToken validates the Bearer token and loads its account. Accounts
// that are no longer active lose access immediately.
func (s *Server) RequireToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
		if !found || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
			web.WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		claims, err := s.tokens.Verify(strings.TrimSpace(token))
		if err != nil {
			s.logger.Debug().Err(err).Msg("Rejected bearer token")
			web.WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		account, err := s.accounts.GetByID(claims.Subject)
		if err != nil || account.Status != users.StatusActive {
			web.WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		ctx := context.WithValue(r.Context(), ContextKeyAccount, account)
		next(w, r.WithContext(ctx))
	}
}

// RequireAdmin must be chained after RequireToken.
func (s *Server) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account := accountFrom(r.Context())
		if account == nil || account.Role != users.AccountRoleAdmin {
			web.WriteError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next(w, r)
	}
}
