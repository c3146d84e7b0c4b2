package devapi

import (
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-clinic-console/users"
)

// Claims are the bearer token claims issued at login.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwtlib.RegisteredClaims
}

// Tokens issues and verifies HS256 bearer tokens.
type Tokens struct {
	key     []byte
	expiry  time.Duration
	nowTime func() time.Time
}

func NewTokens(signingKey string, expiry time.Duration) *Tokens {
	return &Tokens{
		key:     []byte(signingKey),
		expiry:  expiry,
		nowTime: time.Now,
	}
}

// Issue signs a token for account, returning it with its expiry.
func (t *Tokens) Issue(account *users.Account) (string, time.Time, error) {
	now := t.nowTime()
	exp := now.Add(t.expiry)
	claims := Claims{
		Email: account.Email,
		Role:  strings.ToUpper(string(account.Role)),
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:    "clinic-devapi",
			Subject:   account.ID,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(exp),
			ID:        uuid.New().String(),
		},
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(t.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign JWT token: %w", err)
	}
	return signed, exp, nil
}

// Verify checks the signature and expiry of raw.
func (t *Tokens) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwtlib.ParseWithClaims(raw, claims, t.verificationKey,
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(t.nowTime),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	return claims, nil
}

func (t *Tokens) verificationKey(token *jwtlib.Token) (any, error) {
	if _, ok := token.Method.(*jwtlib.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return t.key, nil
}
