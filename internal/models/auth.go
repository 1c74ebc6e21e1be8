package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleFaculty UserRole = "FACULTY"
	RoleStudent UserRole = "STUDENT"
)

// LoginRequest holds credentials for authenticating a principal. Students
// log in with their student id, faculty with their email, the administrator
// with the configured admin email.
type LoginRequest struct {
	Principal string   `json:"principal" validate:"required"`
	Password  string   `json:"password" validate:"required"`
	Role      UserRole `json:"role" validate:"required,oneof=ADMIN FACULTY STUDENT"`
}

// LoginResponse returns the issued token and principal info.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	IssuedAt    time.Time `json:"issued_at"`
	Principal   Principal `json:"principal"`
}

// Principal describes the authenticated party in responses and claims.
type Principal struct {
	ID       string   `json:"id"`
	FullName string   `json:"full_name"`
	Role     UserRole `json:"role"`
}

// ChangePasswordRequest payload for updating a password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// ResetPasswordResponse carries the one-time temporary password issued by an
// admin reset.
type ResetPasswordResponse struct {
	TemporaryPassword string `json:"temporary_password"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	PrincipalID string   `json:"principal_id"`
	Role        UserRole `json:"role"`
	FullName    string   `json:"full_name"`
	jwt.RegisteredClaims
}
