package models

import "github.com/golang-jwt/jwt/v5"

// UserRole enumerates operator roles recognised by the API. Tokens are
// issued by the surrounding administration platform; this service only
// validates them.
type UserRole string

const (
	UserRoleAdmin     UserRole = "ADMIN"
	UserRoleScheduler UserRole = "SCHEDULER"
	UserRoleViewer    UserRole = "VIEWER"
)

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	jwt.RegisteredClaims
}
