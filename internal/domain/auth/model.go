// Package auth provides authentication and the user directory.
package auth

import (
	"strings"
	"time"

	"gaiafact/internal/core/apperror"
	"gaiafact/internal/core/id"
)

// Roles. Every user holds exactly one; admin and superadmin review change
// requests, superadmin additionally manages numbering ranges.
const (
	RoleOperator   = "operator"
	RoleAdmin      = "admin"
	RoleSuperadmin = "superadmin"
)

// ReviewerRoles are the roles allowed to resolve change requests.
var ReviewerRoles = []string{RoleAdmin, RoleSuperadmin}

// ValidRole reports whether s names a known role.
func ValidRole(s string) bool {
	switch s {
	case RoleOperator, RoleAdmin, RoleSuperadmin:
		return true
	}
	return false
}

// User represents a system user.
type User struct {
	ID           id.ID      `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Name         string     `db:"name" json:"name"`
	Role         string     `db:"role" json:"role"`
	Verified     bool       `db:"verified" json:"verified"`
	IsActive     bool       `db:"is_active" json:"isActive"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`
}

// NewUser creates a new user with the operator role.
func NewUser(email, passwordHash, name string) *User {
	now := time.Now().UTC()
	return &User{
		ID:           id.New(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		Name:         name,
		Role:         RoleOperator,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// CanLogin checks if user can login.
func (u *User) CanLogin() error {
	if !u.IsActive {
		return apperror.NewForbidden("account is disabled")
	}
	return nil
}

// IsReviewer reports whether the user may resolve change requests.
func (u *User) IsReviewer() bool {
	return u.Verified && (u.Role == RoleAdmin || u.Role == RoleSuperadmin)
}

// RegisterRequest carries registration input.
type RegisterRequest struct {
	Email    string
	Password string
	Name     string
}

// Credentials for login.
type Credentials struct {
	Email    string
	Password string
}

// TokenResult is a successful login.
type TokenResult struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}
