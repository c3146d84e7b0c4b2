package server

import "github.com/jrsteele09/go-clinic-console/guard"

// Route path constants
// All console routes are defined here to ensure consistency and prevent typos
const (
	// Pages
	RouteRoot         = guard.RouteRoot
	RouteLogin        = guard.RouteLogin
	RouteDashboard    = guard.RouteDashboard
	RouteDoctor       = guard.RouteDoctor
	RouteReception    = guard.RouteReception
	RouteAdminProfile = "/admin-profile"

	// Session
	RouteAuthLogin          = "/auth/login"
	RouteAuthLogout         = "/auth/logout"
	RouteAuthClearError     = "/auth/clear-error"
	RouteAuthSession        = "/auth/session"
	RouteAuthChangePassword = "/auth/change-password"

	// Admin user management
	RouteAdminUsers      = "/admin/users"
	RouteAdminUser       = "/admin/users/{id}"
	RouteAdminUserRole   = "/admin/users/{id}/role"
	RouteAdminUserStatus = "/admin/users/{id}/status"

	// Patients
	RoutePatients = "/patients"
	RoutePatient  = "/patients/{id}"

	RouteMetrics = "/metrics"
)
