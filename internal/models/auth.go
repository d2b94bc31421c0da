package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims represents the access-token payload issued by the campus auth
// service. The communication center only verifies tokens; it never issues them.
type JWTClaims struct {
	UserID     string   `json:"user_id"`
	Role       UserRole `json:"role"`
	FullName   string   `json:"full_name"`
	Department string   `json:"department,omitempty"`
	Avatar     string   `json:"avatar,omitempty"`
	jwt.RegisteredClaims
}
