package devapi

import (
	"net/http"
	"strconv"

	"github.com/jrsteele09/go-clinic-console/internal/web"
	"github.com/jrsteele09/go-clinic-console/patients"
)

func (s *Server) ListPatientsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page, _ := strconv.Atoi(q.Get("page"))
		limit, _ := strconv.Atoi(q.Get("limit"))
		list, err := s.patients.List(patients.ListParams{Page: page, Limit: limit, Search: q.Get("search")})
		if err != nil {
			web.WriteErr(w, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, list)
	}
}

func (s *Server) CreatePatientHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in patients.Input
		if err := web.DecodeJSON(r, &in); err != nil {
			web.WriteErr(w, err)
			return
		}
		if err := in.Validate(); err != nil {
			web.WriteErr(w, err)
			return
		}

		p := &patients.Patient{CreatedBy: accountFrom(r.Context()).ID}
		in.Apply(p)
		if err := s.patients.Create(p); err != nil {
			web.WriteErr(w, err)
			return
		}
		web.WriteJSON(w, http.StatusCreated, p)
	}
}

func (s *Server) GetPatientHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := s.patients.Get(r.PathValue("id"))
		if err != nil {
			web.WriteErr(w, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, p)
	}
}

func (s *Server) UpdatePatientHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in patients.Input
		if err := web.DecodeJSON(r, &in); err != nil {
			web.WriteErr(w, err)
			return
		}
		if err := in.Validate(); err != nil {
			web.WriteErr(w, err)
			return
		}
		p, err := s.patients.Update(r.PathValue("id"), in)
		if err != nil {
			web.WriteErr(w, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, p)
	}
}

func (s *Server) DeletePatientHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.patients.Delete(r.PathValue("id")); err != nil {
			web.WriteErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
