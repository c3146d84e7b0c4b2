package config

import (
	"strings"
	"time"
)

// Session store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// Guard fallbacks for an authenticated user on a route requiring another role.
const (
	FallbackRoleHome = "role-home"
	FallbackRoot     = "root"
)

type APIConfig interface {
	GetAPIBaseURL() string
	GetRequestTimeout() time.Duration
}

type SessionConfig interface {
	GetSessionStore() string
	GetSessionKey() string
	GetRedisAddr() string
	GetSessionTTL() time.Duration
	GetIdleSweepSchedule() string
	GetIdleSessionAge() time.Duration
	GetGuardFallback() string
}

type DevAPIConfig interface {
	GetDevAPIPort() string
	GetDevAPISigningKey() string
	GetDevAPITokenExpiry() time.Duration
	GetDevAPISeedPassword() string
	GetDevAPIResponseShape() string
}

type API struct {
	src source
}

var _ APIConfig = API{}

// GetAPIBaseURL returns the clinic API root, e.g. "https://clinic.example.com"
func (a API) GetAPIBaseURL() string {
	return strings.TrimRight(a.src.get("API_BASE_URL", "http://localhost:8081"), "/")
}

func (a API) GetRequestTimeout() time.Duration {
	return a.src.duration("REQUEST_TIMEOUT", 10*time.Second)
}

type Session struct {
	src source
}

var _ SessionConfig = Session{}

func (s Session) GetSessionStore() string {
	return strings.ToLower(s.src.get("SESSION_STORE", StoreMemory))
}

func (s Session) GetSessionKey() string {
	return s.src.get("SESSION_KEY", "clinic.session")
}

func (s Session) GetRedisAddr() string {
	return s.src.get("REDIS_ADDR", "127.0.0.1:6379")
}

// GetSessionTTL bounds how long a persisted session survives in redis. Zero keeps it until logout.
func (s Session) GetSessionTTL() time.Duration {
	return s.src.duration("SESSION_TTL", 0)
}

func (s Session) GetIdleSweepSchedule() string {
	return s.src.get("SESSION_IDLE_SWEEP", "@every 5m")
}

func (s Session) GetIdleSessionAge() time.Duration {
	return s.src.duration("SESSION_IDLE_AGE", 30*time.Minute)
}

func (s Session) GetGuardFallback() string {
	return strings.ToLower(s.src.get("GUARD_FALLBACK", FallbackRoleHome))
}

type DevAPI struct {
	src source
}

var _ DevAPIConfig = DevAPI{}

func (d DevAPI) GetDevAPIPort() string {
	port := d.src.get("DEVAPI_PORT", "8081")
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	return port
}

func (d DevAPI) GetDevAPISigningKey() string {
	return d.src.get("DEVAPI_SIGNING_KEY", "dev-signing-key-change-me")
}

func (d DevAPI) GetDevAPITokenExpiry() time.Duration {
	return d.src.duration("DEVAPI_TOKEN_EXPIRY", time.Hour)
}

func (d DevAPI) GetDevAPISeedPassword() string {
	return d.src.get("DEVAPI_SEED_PASSWORD", "Password123")
}

// GetDevAPIResponseShape picks the login envelope: token, access_token or envelope.
func (d DevAPI) GetDevAPIResponseShape() string {
	return strings.ToLower(d.src.get("DEVAPI_RESPONSE_SHAPE", "token"))
}
