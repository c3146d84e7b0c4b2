// Package web holds the HTTP plumbing shared by the console and the
// development API: routing, middleware chains and JSON answers.
package web

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

const (
	gray       = "\033[90m"
	green      = "\033[32m"
	blue       = "\033[34m"
	cyan       = "\033[36m"
	yellow     = "\033[33m"
	magenta    = "\033[35m"
	resetColor = "\033[0m"
)

var methodColors = map[string]string{
	"GET":    green,
	"POST":   blue,
	"PUT":    cyan,
	"DELETE": yellow,
	"PATCH":  magenta,
}

// Router is a ServeMux that remembers what was registered so the routes can
// be listed at startup.
type Router struct {
	mux    *http.ServeMux
	routes []string
}

func NewRouter() *Router {
	return &Router{mux: http.NewServeMux()}
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *Router) Handle(pattern string, handler http.Handler) {
	r.routes = append(r.routes, pattern)
	r.mux.Handle(pattern, handler)
}

func (r *Router) HandleFunc(pattern string, handler http.HandlerFunc) {
	r.routes = append(r.routes, pattern)
	r.mux.HandleFunc(pattern, handler)
}

// Routes returns the registered patterns in registration order.
func (r *Router) Routes() []string {
	return append([]string(nil), r.routes...)
}

// LogRoutes prints each route with a coloured method, for development.
func (r *Router) LogRoutes(logger zerolog.Logger) {
	for _, route := range r.routes {
		method, path, found := strings.Cut(route, " ")
		if !found {
			method, path = "", route
		}
		logger.Info().Msg(ColouredRoute(method, path))
	}
}

// ColouredRoute formats method and path the way routes are shown in DEV logs.
func ColouredRoute(method, path string) string {
	color, ok := methodColors[method]
	if !ok {
		color = gray
	}
	return fmt.Sprintf("[%s%-7s%s] %s", color, method, resetColor, path)
}
