package users

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	clinicerrors "github.com/jrsteele09/go-clinic-console/internal/errors"
	"golang.org/x/crypto/bcrypt"
)

// User is the identity held by a session.
type User struct {
	ID             string    `json:"id"`                       // Unique identifier for the user
	Email          string    `json:"email"`                    // User's email address
	FirstName      string    `json:"firstName,omitempty"`      // First name of the user
	LastName       string    `json:"lastName,omitempty"`       // Last name of the user
	Role           Role      `json:"role"`                     // Session role, never the account-only "user"
	Phone          string    `json:"phone,omitempty"`          // Contact phone
	Specialization string    `json:"specialization,omitempty"` // Doctors only
	Avatar         string    `json:"avatar,omitempty"`         // Image URL or data: URL
	Active         bool      `json:"isActive"`                 // Active, may the user log in
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// Account is a user-management record.
type Account struct {
	ID                string      `json:"id"`
	Email             string      `json:"email"`
	FirstName         string      `json:"firstName"`
	LastName          string      `json:"lastName"`
	Role              AccountRole `json:"role"`
	Status            Status      `json:"status"`
	TemporaryPassword string      `json:"temporaryPassword,omitempty"`
	PasswordHash      string      `json:"-"` // never serialize
	Phone             string      `json:"phone,omitempty"`
	Specialization    string      `json:"specialization,omitempty"`
	Avatar            string      `json:"avatar,omitempty"`
	CreatedAt         time.Time   `json:"createdAt"`
	UpdatedAt         time.Time   `json:"updatedAt"`
}

// SessionUser projects the account onto a session identity. Accounts whose
// role has no session equivalent cannot be projected.
func (a *Account) SessionUser() (User, error) {
	role, ok := a.Role.SessionRole()
	if !ok {
		return User{}, fmt.Errorf("%w: account role %q cannot hold a session", clinicerrors.ErrInvalidRole, a.Role)
	}
	return User{
		ID:             a.ID,
		Email:          a.Email,
		FirstName:      a.FirstName,
		LastName:       a.LastName,
		Role:           role,
		Phone:          a.Phone,
		Specialization: a.Specialization,
		Avatar:         a.Avatar,
		Active:         a.Status == StatusActive,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}, nil
}

// CreateAccount is the payload for creating a user.
type CreateAccount struct {
	Email             string      `json:"email"`
	FirstName         string      `json:"firstName"`
	LastName          string      `json:"lastName"`
	Role              AccountRole `json:"role"`
	TemporaryPassword string      `json:"temporaryPassword"`
}

func (c CreateAccount) Validate() error {
	if strings.TrimSpace(c.Email) == "" || !strings.Contains(c.Email, "@") {
		return clinicerrors.Validation("email", "a valid email is required")
	}
	if strings.TrimSpace(c.FirstName) == "" {
		return clinicerrors.Validation("firstName", "first name is required")
	}
	if strings.TrimSpace(c.LastName) == "" {
		return clinicerrors.Validation("lastName", "last name is required")
	}
	if _, err := ParseAccountRole(string(c.Role)); err != nil {
		return clinicerrors.Validation("role", "role must be admin, doctor, reception or user")
	}
	if err := ValidatePasswordStrength(c.TemporaryPassword); err != nil {
		return clinicerrors.Validation("temporaryPassword", err.Error())
	}
	return nil
}

type UpdateRole struct {
	Role AccountRole `json:"role"`
}

type UpdateStatus struct {
	Status Status `json:"status"`
}

// ListParams filters and pages the user list.
type ListParams struct {
	Page   int    `json:"page,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Search string `json:"search,omitempty"`
	Role   string `json:"role,omitempty"`
	Status string `json:"status,omitempty"`
}

// Normalise applies the default paging of page 1, 10 per page.
func (p ListParams) Normalise() ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 10
	}
	return p
}

type AccountList struct {
	Users []*Account `json:"users"`
	Total int        `json:"total"`
	Page  int        `json:"page"`
	Limit int        `json:"limit"`
}

// ChangePassword is the payload for changing the logged in user's password.
type ChangePassword struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword,omitempty"`
}

func (c ChangePassword) Validate() error {
	if c.CurrentPassword == "" {
		return clinicerrors.Validation("currentPassword", "current password is required")
	}
	if c.ConfirmPassword != "" && c.ConfirmPassword != c.NewPassword {
		return clinicerrors.Validation("confirmPassword", "passwords do not match")
	}
	if c.NewPassword == c.CurrentPassword {
		return clinicerrors.Validation("newPassword", "new password must differ from the current one")
	}
	if err := ValidatePasswordStrength(c.NewPassword); err != nil {
		return clinicerrors.Validation("newPassword", err.Error())
	}
	return nil
}

// MaxAvatarLength bounds an avatar, which may be an inline data: URL.
const MaxAvatarLength = 512 << 10

// UpdateProfile is the payload for editing the logged in user's own details.
type UpdateProfile struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
}

// Validate trims the fields and checks them. An empty avatar removes it.
func (p *UpdateProfile) Validate() error {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.Email = strings.TrimSpace(p.Email)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Avatar = strings.TrimSpace(p.Avatar)

	if p.FirstName == "" {
		return clinicerrors.Validation("firstName", "first name is required")
	}
	if p.LastName == "" {
		return clinicerrors.Validation("lastName", "last name is required")
	}
	if !strings.Contains(p.Email, "@") {
		return clinicerrors.Validation("email", "a valid email is required")
	}
	if p.Avatar == "" {
		return nil
	}
	if len(p.Avatar) > MaxAvatarLength {
		return clinicerrors.Validation("avatar", "avatar image is too large")
	}
	for _, prefix := range []string{"https://", "http://", "data:image/"} {
		if strings.HasPrefix(p.Avatar, prefix) {
			return nil
		}
	}
	return clinicerrors.Validation("avatar", "avatar must be an image URL")
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsLower(char) {
			hasLower = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
