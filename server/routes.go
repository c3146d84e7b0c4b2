package server

import (
	"github.com/jrsteele09/go-clinic-console/guard"
	"github.com/jrsteele09/go-clinic-console/internal/web"
	"github.com/jrsteele09/go-clinic-console/users"
)

func (s *Server) initRoutes() {
	s.router.HandleFunc("GET "+RouteRoot+"{$}", web.ChainMiddleware(s.IndexHandler(), s.HTMLMiddleWare()...))

	// LOGIN
	s.router.HandleFunc("GET "+RouteLogin, web.ChainMiddleware(s.LoginPageHandler(), s.HTMLMiddleWare()...))
	s.router.HandleFunc("POST "+RouteAuthLogin, web.ChainMiddleware(s.LoginSubmissionHandler(), s.APIMiddleware()...))
	s.router.HandleFunc("POST "+RouteAuthLogout, web.ChainMiddleware(s.LogoutHandler(), s.APIMiddleware()...))
	s.router.HandleFunc("POST "+RouteAuthClearError, web.ChainMiddleware(s.ClearErrorHandler(), s.APIMiddleware()...))
	s.router.HandleFunc("GET "+RouteAuthSession, web.ChainMiddleware(s.SessionHandler(), s.APIMiddleware()...))

	// Pages open to every staff role
	anyRole := func(route string) []web.Middleware { return s.HTMLMiddleWare(s.RequireRole(route, nil)) }
	s.router.HandleFunc("GET "+RouteDashboard, web.ChainMiddleware(s.DashboardHandler(), anyRole(RouteDashboard)...))
	s.router.HandleFunc("GET "+RouteAdminProfile, web.ChainMiddleware(s.AdminProfileHandler(), anyRole(RouteAdminProfile)...))
	s.router.HandleFunc("PATCH "+RouteAdminProfile, web.ChainMiddleware(s.UpdateProfileHandler(), s.APIMiddleware(s.RequireRole(RouteAdminProfile, nil))...))
	s.router.HandleFunc("POST "+RouteAuthChangePassword, web.ChainMiddleware(s.ChangePasswordHandler(), s.APIMiddleware(s.RequireRole(RouteAuthChangePassword, nil))...))

	// Role landing pages
	s.router.HandleFunc("GET "+RouteDoctor, web.ChainMiddleware(s.DoctorHandler(), s.HTMLMiddleWare(s.RequireRole(RouteDoctor, guard.Require(users.RoleDoctor)))...))
	s.router.HandleFunc("GET "+RouteReception, web.ChainMiddleware(s.ReceptionHandler(), s.HTMLMiddleWare(s.RequireRole(RouteReception, guard.Require(users.RoleReception)))...))

	// Admin user management
	admin := func(route string) []web.Middleware {
		return s.APIMiddleware(s.RequireRole(route, guard.Require(users.RoleAdmin)))
	}
	s.router.HandleFunc("GET "+RouteAdminUsers, web.ChainMiddleware(s.AdminUsersListHandler(), admin(RouteAdminUsers)...))
	s.router.HandleFunc("POST "+RouteAdminUsers, web.ChainMiddleware(s.AdminCreateUserHandler(), admin(RouteAdminUsers)...))
	s.router.HandleFunc("GET "+RouteAdminUser, web.ChainMiddleware(s.AdminUserHandler(), admin(RouteAdminUser)...))
	s.router.HandleFunc("PATCH "+RouteAdminUserRole, web.ChainMiddleware(s.AdminUserRoleHandler(), admin(RouteAdminUserRole)...))
	s.router.HandleFunc("PATCH "+RouteAdminUserStatus, web.ChainMiddleware(s.AdminUserStatusHandler(), admin(RouteAdminUserStatus)...))

	// Patients
	staff := func(route string) []web.Middleware { return s.APIMiddleware(s.RequireRole(route, nil)) }
	s.router.HandleFunc("GET "+RoutePatients, web.ChainMiddleware(s.PatientsListHandler(), staff(RoutePatients)...))
	s.router.HandleFunc("POST "+RoutePatients, web.ChainMiddleware(s.CreatePatientHandler(), staff(RoutePatients)...))
	s.router.HandleFunc("GET "+RoutePatient, web.ChainMiddleware(s.PatientHandler(), staff(RoutePatient)...))
	s.router.HandleFunc("PUT "+RoutePatient, web.ChainMiddleware(s.UpdatePatientHandler(), staff(RoutePatient)...))
	s.router.HandleFunc("DELETE "+RoutePatient, web.ChainMiddleware(s.DeletePatientHandler(), staff(RoutePatient)...))

	s.router.Handle("GET "+RouteMetrics, s.metrics.Handler())
}
