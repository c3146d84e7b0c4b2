package server

import (
	"html/template"
	"net/http"

	"github.com/jrsteele09/go-clinic-console/guard"
	"github.com/jrsteele09/go-clinic-console/users"
)

// pageData feeds layout.html.
type pageData struct {
	AppName string
	Title   string
	User    *users.User
	Home    string
	Rows    []string
	Refresh bool

	// login.html only
	Error string
	Email string
}

func (s *Server) render(w http.ResponseWriter, tmpl *template.Template, status int, data pageData) {
	data.AppName = s.appName
	if data.User != nil {
		data.Home = guard.HomeRoute(data.User.Role)
	}
	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		s.logger.Error().Err(err).Str("template", tmpl.Name()).Msg("Failed to render template")
	}
}

func (s *Server) renderPage(w http.ResponseWriter, status int, data pageData) {
	s.render(w, s.pageTmpl, status, data)
}

func (s *Server) renderLogin(w http.ResponseWriter, status int, data pageData) {
	data.Title = "Sign in"
	s.render(w, s.loginTmpl, status, data)
}
