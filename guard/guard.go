// Package guard decides whether a protected view may render for a session.
package guard

import (
	"github.com/jrsteele09/go-clinic-console/session"
	"github.com/jrsteele09/go-clinic-console/users"
)

const (
	RouteLogin     = "/login"
	RouteRoot      = "/"
	RouteDashboard = "/dashboard"
	RouteDoctor    = "/doctor"
	RouteReception = "/reception"
)

type State int

const (
	Pending State = iota
	Allowed
	Denied
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Allowed:
		return "allowed"
	case Denied:
		return "denied"
	}
	return "unknown"
}

// Decision is the outcome for one evaluation. Redirect is set only when Denied.
type Decision struct {
	State    State
	Redirect string
}

// Policy picks where an authenticated user lands on a route that requires a
// different role.
type Policy int

const (
	// FallbackRoleHome sends the user to their own landing page.
	FallbackRoleHome Policy = iota
	// FallbackRoot sends the user to the root route.
	FallbackRoot
)

// Policy names as they appear in configuration.
const (
	PolicyNameRoleHome = "role-home"
	PolicyNameRoot     = "root"
)

func (p Policy) String() string {
	if p == FallbackRoot {
		return PolicyNameRoot
	}
	return PolicyNameRoleHome
}

// ParsePolicy maps a policy name; unknown names get FallbackRoleHome.
func ParsePolicy(name string) Policy {
	if name == PolicyNameRoot {
		return FallbackRoot
	}
	return FallbackRoleHome
}

// HomeRoute is the landing page for role.
func HomeRoute(role users.Role) string {
	switch role {
	case users.RoleDoctor:
		return RouteDoctor
	case users.RoleReception:
		return RouteReception
	}
	return RouteDashboard
}

// Evaluate applies the guard rules to snap. A nil required role admits any
// authenticated user.
func Evaluate(snap session.Snapshot, required *users.Role, policy Policy) Decision {
	if snap.IsLoading {
		return Decision{State: Pending}
	}
	if !snap.IsAuthenticated || snap.User == nil {
		return Decision{State: Denied, Redirect: RouteLogin}
	}
	if required != nil && snap.User.Role != *required {
		if policy == FallbackRoot {
			return Decision{State: Denied, Redirect: RouteRoot}
		}
		return Decision{State: Denied, Redirect: HomeRoute(snap.User.Role)}
	}
	return Decision{State: Allowed}
}

// Require is a convenience for building the required-role argument.
func Require(role users.Role) *users.Role {
	return &role
}
