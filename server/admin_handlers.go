package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/jrsteele09/go-clinic-console/internal/web"
	"github.com/jrsteele09/go-clinic-console/users"
)

func userParams(r *http.Request) users.ListParams {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return users.ListParams{
		Page:   page,
		Limit:  limit,
		Search: q.Get("search"),
		Role:   q.Get("role"),
		Status: q.Get("status"),
	}
}

func (s *Server) AdminUsersListHandler() http.HandlerFunc {
	return s.pageHandler("Users", func(r *http.Request) (pageView, error) {
		list, err := s.authorized(r).ListUsers(r.Context(), userParams(r))
		if err != nil {
			return pageView{}, err
		}
		rows := make([]string, 0, len(list.Users))
		for _, a := range list.Users {
			rows = append(rows, fmt.Sprintf("%s %s <%s> %s, %s", a.FirstName, a.LastName, a.Email, a.Role, a.Status))
		}
		return pageView{Data: list, Rows: rows}, nil
	})
}

func (s *Server) AdminUserHandler() http.HandlerFunc {
	return s.pageHandler("User", func(r *http.Request) (pageView, error) {
		account, err := s.authorized(r).GetUser(r.Context(), r.PathValue("id"))
		if err != nil {
			return pageView{}, err
		}
		return pageView{
			Data: account,
			Rows: []string{
				"Name: " + account.FirstName + " " + account.LastName,
				"Email: " + account.Email,
				"Role: " + string(account.Role),
				"Status: " + string(account.Status),
			},
		}, nil
	})
}

func (s *Server) AdminCreateUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req users.CreateAccount
		if err := web.DecodeJSON(r, &req); err != nil {
			web.WriteErr(w, err)
			return
		}
		account, err := s.authorized(r).CreateUser(r.Context(), req)
		if err != nil {
			s.writeAPIErr(w, err)
			return
		}
		web.WriteJSON(w, http.StatusCreated, account)
	}
}

func (s *Server) AdminUserRoleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req users.UpdateRole
		if err := web.DecodeJSON(r, &req); err != nil {
			web.WriteErr(w, err)
			return
		}
		account, err := s.authorized(r).UpdateUserRole(r.Context(), r.PathValue("id"), req.Role)
		if err != nil {
			s.writeAPIErr(w, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, account)
	}
}

func (s *Server) AdminUserStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req users.UpdateStatus
		if err := web.DecodeJSON(r, &req); err != nil {
			web.WriteErr(w, err)
			return
		}
		account, err := s.authorized(r).UpdateUserStatus(r.Context(), r.PathValue("id"), req.Status)
		if err != nil {
			s.writeAPIErr(w, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, account)
	}
}
