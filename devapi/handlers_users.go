package devapi

import (
	"net/http"
	"strconv"

	clinicerrors "github.com/jrsteele09/go-clinic-console/internal/errors"
	"github.com/jrsteele09/go-clinic-console/internal/web"
	"github.com/jrsteele09/go-clinic-console/users"
)

type wireAccountList struct {
	Users []wireAccount `json:"users"`
	Total int           `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

func (s *Server) CreateUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req users.CreateAccount
		if err := web.DecodeJSON(r, &req); err != nil {
			web.WriteErr(w, err)
			return
		}
		if err := req.Validate(); err != nil {
			web.WriteErr(w, err)
			return
		}

		hash, err := users.HashPassword(req.TemporaryPassword)
		if err != nil {
			web.WriteErr(w, clinicerrors.Wrapf(err, "[CreateUserHandler] hash"))
			return
		}
		account := &users.Account{
			Email:        req.Email,
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Role:         req.Role,
			Status:       users.StatusActive,
			PasswordHash: hash,
		}
		if err := s.accounts.Upsert(account); err != nil {
			if clinicerrors.Is(err, clinicerrors.ErrInvalidRequest) {
				web.WriteError(w, http.StatusConflict, "User with this email already exists")
				return
			}
			web.WriteErr(w, err)
			return
		}
		web.WriteJSON(w, http.StatusCreated, toWire(account))
	}
}

func (s *Server) ListUsersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page, _ := strconv.Atoi(q.Get("page"))
		limit, _ := strconv.Atoi(q.Get("limit"))
		list, err := s.accounts.List(users.ListParams{
			Page:   page,
			Limit:  limit,
			Search: q.Get("search"),
			Role:   q.Get("role"),
			Status: q.Get("status"),
		})
		if err != nil {
			web.WriteErr(w, err)
			return
		}

		resp := wireAccountList{Users: make([]wireAccount, 0, len(list.Users)), Total: list.Total, Page: list.Page, Limit: list.Limit}
		for _, a := range list.Users {
			resp.Users = append(resp.Users, toWire(a))
		}
		web.WriteJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) GetUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account, err := s.accounts.GetByID(r.PathValue("id"))
		if err != nil {
			web.WriteErr(w, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, toWire(account))
	}
}

func (s *Server) UpdateRoleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req users.UpdateRole
		if err := web.DecodeJSON(r, &req); err != nil {
			web.WriteErr(w, err)
			return
		}
		account, err := s.accounts.SetRole(r.PathValue("id"), req.Role)
		if err != nil {
			web.WriteErr(w, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, toWire(account))
	}
}

func (s *Server) UpdateStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req users.UpdateStatus
		if err := web.DecodeJSON(r, &req); err != nil {
			web.WriteErr(w, err)
			return
		}
		if self := accountFrom(r.Context()); self != nil && self.ID == r.PathValue("id") && req.Status != users.StatusActive {
			web.WriteError(w, http.StatusBadRequest, "You cannot deactivate your own account")
			return
		}
		account, err := s.accounts.SetStatus(r.PathValue("id"), req.Status)
		if err != nil {
			web.WriteErr(w, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, toWire(account))
	}
}
