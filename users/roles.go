package users

import (
	"fmt"
	"strings"

	clinicerrors "github.com/jrsteele09/go-clinic-console/internal/errors"
)

// Role is the privilege level of a logged in staff member. The zero value is
// not a role; only RoleAdmin, RoleDoctor and RoleReception are valid.
type Role uint8

const (
	RoleAdmin Role = iota + 1
	RoleDoctor
	RoleReception
)

// Roles lists every valid session role.
var Roles = []Role{RoleAdmin, RoleDoctor, RoleReception}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleDoctor:
		return "doctor"
	case RoleReception:
		return "reception"
	}
	return fmt.Sprintf("Role(%d)", uint8(r))
}

func (r Role) Valid() bool {
	return r >= RoleAdmin && r <= RoleReception
}

// ParseRole accepts admin, doctor and reception in any case. Everything else,
// including the account-only "user" role, is rejected.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin, nil
	case "doctor":
		return RoleDoctor, nil
	case "reception":
		return RoleReception, nil
	}
	return 0, fmt.Errorf("%w: %q", clinicerrors.ErrInvalidRole, s)
}

func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %d", clinicerrors.ErrInvalidRole, uint8(r))
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(text []byte) error {
	role, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = role
	return nil
}

// AccountRole is the role carried by user-management records. It is a superset
// of Role that also admits the generic "user" role.
type AccountRole string

const (
	AccountRoleAdmin     AccountRole = "admin"
	AccountRoleDoctor    AccountRole = "doctor"
	AccountRoleReception AccountRole = "reception"
	AccountRoleUser      AccountRole = "user"
)

// ParseAccountRole normalises s to lower case and checks it is known.
func ParseAccountRole(s string) (AccountRole, error) {
	r := AccountRole(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case AccountRoleAdmin, AccountRoleDoctor, AccountRoleReception, AccountRoleUser:
		return r, nil
	}
	return "", fmt.Errorf("%w: %q", clinicerrors.ErrInvalidRole, s)
}

// UnmarshalText accepts any casing, so the API's ADMIN|DOCTOR|RECEPTION|USER decode.
func (r *AccountRole) UnmarshalText(text []byte) error {
	role, err := ParseAccountRole(string(text))
	if err != nil {
		return err
	}
	*r = role
	return nil
}

// SessionRole converts the account role to a session role when one exists.
func (r AccountRole) SessionRole() (Role, bool) {
	role, err := ParseRole(string(r))
	return role, err == nil
}

// Status is the lifecycle state of an account.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusBanned   Status = "banned"
)

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case StatusActive, StatusInactive, StatusBanned:
		return st, nil
	}
	return "", fmt.Errorf("%w: unknown status %q", clinicerrors.ErrInvalidRequest, s)
}

func (s *Status) UnmarshalText(text []byte) error {
	st, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = st
	return nil
}
