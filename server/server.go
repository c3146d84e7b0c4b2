// Package server is the clinic console's HTTP surface. Every browser gets its
// own session store, and protected pages sit behind the route guard.
package server

import (
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/jrsteele09/go-clinic-console/apiclient"
	"github.com/jrsteele09/go-clinic-console/guard"
	"github.com/jrsteele09/go-clinic-console/internal/config"
	"github.com/jrsteele09/go-clinic-console/internal/metrics"
	"github.com/jrsteele09/go-clinic-console/internal/web"
	"github.com/jrsteele09/go-clinic-console/server/consolesession"
	"github.com/rs/zerolog"
)

const (
	contentTypeHTML = "text/html; charset=utf-8"

	// defaultPendingWait is how long a guarded request waits for the session
	// check before answering 202.
	defaultPendingWait = 2 * time.Second
)

type Server struct {
	env          string
	appName      string
	router       *web.Router
	cors         config.CorsConfig
	api          *apiclient.Client
	sessions     *consolesession.Registry
	metrics      *metrics.Metrics
	policy       guard.Policy
	pendingWait  time.Duration
	secureCookie bool
	logger       zerolog.Logger

	loginTmpl *template.Template
	pageTmpl  *template.Template
}

type Option func(*Server)

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithPendingWait bounds how long a guarded request waits for a decision.
func WithPendingWait(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.pendingWait = d
		}
	}
}

func New(cfg config.Config, api *apiclient.Client, sessions *consolesession.Registry, m *metrics.Metrics, options ...Option) (*Server, error) {
	s := &Server{
		env:          cfg.GetEnv(),
		appName:      cfg.GetAppName(),
		router:       web.NewRouter(),
		cors:         cfg,
		api:          api,
		sessions:     sessions,
		metrics:      m,
		policy:       guard.ParsePolicy(cfg.GetGuardFallback()),
		pendingWait:  defaultPendingWait,
		secureCookie: cfg.GetEnv() != "DEV",
		logger:       zerolog.Nop(),
	}
	for _, opt := range options {
		opt(s)
	}

	var err error
	if s.loginTmpl, err = ParseTemplate("login.html"); err != nil {
		return nil, fmt.Errorf("[Server New] failed to parse login template: %w", err)
	}
	if s.pageTmpl, err = ParseTemplate("page.html"); err != nil {
		return nil, fmt.Errorf("[Server New] failed to parse page template: %w", err)
	}

	s.initRoutes()
	if s.env == "DEV" {
		s.router.LogRoutes(s.logger)
	}
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// HTMLMiddleWare is the chain for browser pages.
func (s *Server) HTMLMiddleWare(mw ...web.Middleware) []web.Middleware {
	chained := []web.Middleware{
		web.LoggingMiddleware(s.logger),
		web.RecoverMiddleware(s.logger),
		web.FrameSecurityMiddleware,
		s.WithBrowserSession,
	}
	return append(chained, mw...)
}

// APIMiddleware is the chain for JSON and form endpoints.
func (s *Server) APIMiddleware(mw ...web.Middleware) []web.Middleware {
	chained := []web.Middleware{
		web.LoggingMiddleware(s.logger),
		web.RecoverMiddleware(s.logger),
		web.CorsMiddleware(s.cors),
		s.WithBrowserSession,
	}
	return append(chained, mw...)
}
