// Package devapi is an in-memory clinic API for local development and
// end-to-end tests of the console.
package devapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-clinic-console/internal/web"
	"github.com/jrsteele09/go-clinic-console/patients"
	"github.com/jrsteele09/go-clinic-console/users"
	"github.com/rs/zerolog"
)

// ResponseShape selects which login envelope the API answers with. The real
// backend has used all three.
type ResponseShape string

const (
	ShapeToken       ResponseShape = "token"        // {user, token}
	ShapeAccessToken ResponseShape = "access_token" // {user, access_token}
	ShapeEnvelope    ResponseShape = "envelope"     // {success, data: {user, accessToken}}
)

// Route path constants
const (
	RouteAuthLogin          = "/auth/login"
	RouteAuthProfile        = "/auth/profile"
	RouteAuthChangePassword = "/auth/change-password"
	RouteUsers              = "/users"
	RouteUser               = "/users/{id}"
	RouteUserRole           = "/users/{id}/role"
	RouteUserStatus         = "/users/{id}/status"
	RoutePatients           = "/patients"
	RoutePatient            = "/patients/{id}"
)

type Server struct {
	router   *web.Router
	accounts users.AccountRepo
	patients patients.Repo
	tokens   *Tokens
	shape    ResponseShape
	logger   zerolog.Logger
}

type Option func(*Server)

func WithResponseShape(shape ResponseShape) Option {
	return func(s *Server) {
		s.shape = shape
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithNowTime overrides the clock used for token issue and verification.
func WithNowTime(nowTime func() time.Time) Option {
	return func(s *Server) {
		s.tokens.nowTime = nowTime
	}
}

func New(accounts users.AccountRepo, patientRepo patients.Repo, tokens *Tokens, options ...Option) *Server {
	s := &Server{
		router:   web.NewRouter(),
		accounts: accounts,
		patients: patientRepo,
		tokens:   tokens,
		shape:    ShapeToken,
		logger:   zerolog.Nop(),
	}
	for _, opt := range options {
		opt(s)
	}
	s.initRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) LogRoutes() {
	s.router.LogRoutes(s.logger)
}

func (s *Server) middleware(mw ...web.Middleware) []web.Middleware {
	chained := []web.Middleware{
		web.LoggingMiddleware(s.logger),
		web.RecoverMiddleware(s.logger),
	}
	return append(chained, mw...)
}

func (s *Server) initRoutes() {
	s.router.HandleFunc("POST "+RouteAuthLogin, web.ChainMiddleware(s.LoginHandler(), s.middleware()...))
	s.router.HandleFunc("GET "+RouteAuthProfile, web.ChainMiddleware(s.ProfileHandler(), s.middleware(s.RequireToken)...))
	s.router.HandleFunc("PATCH "+RouteAuthProfile, web.ChainMiddleware(s.UpdateProfileHandler(), s.middleware(s.RequireToken)...))
	s.router.HandleFunc("POST "+RouteAuthChangePassword, web.ChainMiddleware(s.ChangePasswordHandler(), s.middleware(s.RequireToken)...))

	admin := s.middleware(s.RequireToken, s.RequireAdmin)
	s.router.HandleFunc("POST "+RouteUsers, web.ChainMiddleware(s.CreateUserHandler(), admin...))
	s.router.HandleFunc("GET "+RouteUsers, web.ChainMiddleware(s.ListUsersHandler(), admin...))
	s.router.HandleFunc("GET "+RouteUser, web.ChainMiddleware(s.GetUserHandler(), admin...))
	s.router.HandleFunc("PATCH "+RouteUserRole, web.ChainMiddleware(s.UpdateRoleHandler(), admin...))
	s.router.HandleFunc("PATCH "+RouteUserStatus, web.ChainMiddleware(s.UpdateStatusHandler(), admin...))

	staff := s.middleware(s.RequireToken)
	s.router.HandleFunc("GET "+RoutePatients, web.ChainMiddleware(s.ListPatientsHandler(), staff...))
	s.router.HandleFunc("POST "+RoutePatients, web.ChainMiddleware(s.CreatePatientHandler(), staff...))
	s.router.HandleFunc("GET "+RoutePatient, web.ChainMiddleware(s.GetPatientHandler(), staff...))
	s.router.HandleFunc("PUT "+RoutePatient, web.ChainMiddleware(s.UpdatePatientHandler(), staff...))
	s.router.HandleFunc("DELETE "+RoutePatient, web.ChainMiddleware(s.DeletePatientHandler(), staff...))
}

// wireAccount is an account as the API sends it: enum values in upper case.
type wireAccount struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Role           string    `json:"role"`
	Status         string    `json:"status"`
	IsActive       bool      `json:"isActive"`
	Phone          string    `json:"phone,omitempty"`
	Specialization string    `json:"specialization,omitempty"`
	Avatar         string    `json:"avatar,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func toWire(a *users.Account) wireAccount {
	return wireAccount{
		ID:             a.ID,
		Email:          a.Email,
		FirstName:      a.FirstName,
		LastName:       a.LastName,
		Role:           strings.ToUpper(string(a.Role)),
		Status:         strings.ToUpper(string(a.Status)),
		IsActive:       a.Status == users.StatusActive,
		Phone:          a.Phone,
		Specialization: a.Specialization,
		Avatar:         a.Avatar,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}
