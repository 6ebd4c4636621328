package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating a user.
// Students log in with their student number, teachers with their
// teacher number.
type LoginRequest struct {
	Role     UserRole `json:"role" validate:"required,oneof=STUDENT TEACHER"`
	Number   string   `json:"number" validate:"required,max=20"`
	Password string   `json:"password" validate:"required"`
}

// RegisterRequest creates an account together with its profile row.
type RegisterRequest struct {
	Role     UserRole `json:"role" validate:"required,oneof=STUDENT TEACHER"`
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,min=6"`
	Number   string   `json:"number" validate:"required,max=20"`
	FullName string   `json:"full_name" validate:"omitempty,max=100"`
}

// LoginResponse returns the issued tokens and user info.
type LoginResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"`
	User         UserInfo  `json:"user"`
	IssuedAt     time.Time `json:"issued_at"`
}

// RefreshTokenRequest exchanges a refresh token for a new access token.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse returns the refreshed tokens.
type RefreshTokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"`
	IssuedAt     time.Time `json:"issued_at"`
}

// LogoutRequest revokes the presented refresh token.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID     string   `json:"id"`
	Email  string   `json:"email"`
	Role   UserRole `json:"role"`
	Number string   `json:"number"`
}

// RefreshToken is a persisted refresh token record.
type RefreshToken struct {
	ID        string     `db:"id" json:"id"`
	UserID    string     `db:"user_id" json:"user_id"`
	Token     string     `db:"token" json:"-"`
	ExpiresAt time.Time  `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	Revoked   bool       `db:"revoked" json:"revoked"`
	RevokedAt *time.Time `db:"revoked_at" json:"revoked_at,omitempty"`
}

// JWTClaims represents the JWT payload for access tokens.
// Number carries the role-matching business identifier (student number
// or teacher number) so services never re-probe the identity store.
type JWTClaims struct {
	UserID string   `json:"user_id"`
	Role   UserRole `json:"role"`
	Number string   `json:"number"`
	Email  string   `json:"email"`
	jwt.RegisteredClaims
}
