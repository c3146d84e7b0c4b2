package server

import (
	"net/http"
	"strconv"

	"github.com/jrsteele09/go-clinic-console/internal/web"
	"github.com/jrsteele09/go-clinic-console/patients"
)

func patientParams(r *http.Request) patients.ListParams {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return patients.ListParams{Page: page, Limit: limit, Search: q.Get("search")}
}

func (s *Server) PatientsListHandler() http.HandlerFunc {
	return s.pageHandler("Patients", s.loadPatients)
}

func (s *Server) PatientHandler() http.HandlerFunc {
	return s.pageHandler("Patient", func(r *http.Request) (pageView, error) {
		p, err := s.authorized(r).GetPatient(r.Context(), r.PathValue("id"))
		if err != nil {
			return pageView{}, err
		}
		rows := []string{
			"Name: " + p.FirstName + " " + p.LastName,
			"Phone: " + p.Phone,
			"Gender: " + string(p.Gender),
		}
		if p.DateOfBirth != "" {
			rows = append(rows, "Date of birth: "+p.DateOfBirth)
		}
		if p.BloodType != "" {
			rows = append(rows, "Blood type: "+string(p.BloodType))
		}
		return pageView{Data: p, Rows: rows}, nil
	})
}

func (s *Server) CreatePatientHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in patients.Input
		if err := web.DecodeJSON(r, &in); err != nil {
			web.WriteErr(w, err)
			return
		}
		p, err := s.authorized(r).CreatePatient(r.Context(), in)
		if err != nil {
			s.writeAPIErr(w, err)
			return
		}
		web.WriteJSON(w, http.StatusCreated, p)
	}
}

func (s *Server) UpdatePatientHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in patients.Input
		if err := web.DecodeJSON(r, &in); err != nil {
			web.WriteErr(w, err)
			return
		}
		p, err := s.authorized(r).UpdatePatient(r.Context(), r.PathValue("id"), in)
		if err != nil {
			s.writeAPIErr(w, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, p)
	}
}

func (s *Server) DeletePatientHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.authorized(r).DeletePatient(r.Context(), r.PathValue("id")); err != nil {
			s.writeAPIErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
