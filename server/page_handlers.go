package server

import (
	"fmt"
	"net/http"

	"github.com/jrsteele09/go-clinic-console/internal/web"
	"github.com/jrsteele09/go-clinic-console/users"
)

// pageView is what a guarded page shows: rows for browsers, Data for JSON.
type pageView struct {
	Title string      `json:"title"`
	User  *users.User `json:"user"`
	Data  any         `json:"data,omitempty"`
	Rows  []string    `json:"-"`
}

// pageHandler renders the view built by load as HTML or JSON.
func (s *Server) pageHandler(title string, load func(r *http.Request) (pageView, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := load(r)
		if err != nil {
			if wantsJSON(r) {
				s.writeAPIErr(w, err)
				return
			}
			s.pageError(w, r, err)
			return
		}
		view.Title = title
		view.User = storeFrom(r.Context()).Snapshot().User

		if wantsJSON(r) {
			web.WriteJSON(w, http.StatusOK, view)
			return
		}
		s.renderPage(w, http.StatusOK, pageData{Title: view.Title, User: view.User, Rows: view.Rows})
	}
}

func (s *Server) pageError(w http.ResponseWriter, r *http.Request, err error) {
	if !storeFrom(r.Context()).Snapshot().IsAuthenticated {
		http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
		return
	}
	s.logger.Warn().Err(err).Str("path", r.URL.Path).Msg("Page failed to load")
	web.WriteErr(w, err)
}

func noData(*http.Request) (pageView, error) {
	return pageView{}, nil
}

func (s *Server) DashboardHandler() http.HandlerFunc {
	return s.pageHandler("Dashboard", noData)
}

// AdminProfileHandler shows the logged in user as the API currently sees them.
func (s *Server) AdminProfileHandler() http.HandlerFunc {
	return s.pageHandler("Profile", func(r *http.Request) (pageView, error) {
		profile, err := s.authorized(r).Profile(r.Context())
		if err != nil {
			return pageView{}, err
		}
		return pageView{
			Data: profile,
			Rows: []string{
				"Name: " + profile.DisplayName(),
				"Email: " + profile.Email,
				"Role: " + profile.Role.String(),
				"Phone: " + profile.Phone,
			},
		}, nil
	})
}

func (s *Server) DoctorHandler() http.HandlerFunc {
	return s.pageHandler("Doctor", s.loadPatients)
}

func (s *Server) ReceptionHandler() http.HandlerFunc {
	return s.pageHandler("Reception", s.loadPatients)
}

func (s *Server) loadPatients(r *http.Request) (pageView, error) {
	list, err := s.authorized(r).ListPatients(r.Context(), patientParams(r))
	if err != nil {
		return pageView{}, err
	}
	rows := make([]string, 0, len(list.Patients))
	for _, p := range list.Patients {
		rows = append(rows, fmt.Sprintf("%s %s (%s)", p.FirstName, p.LastName, p.Phone))
	}
	return pageView{Data: list, Rows: rows}, nil
}
