package types

import "github.com/golang-jwt/jwt/v5"

// SessionClaims are carried in the signed session cookie.
type SessionClaims struct {
	jwt.RegisteredClaims
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
}
