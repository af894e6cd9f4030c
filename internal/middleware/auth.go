package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/matprat/matprat/backend/internal/types"
)

// SessionCookie holds the signed session token.
const SessionCookie = "session"

const claimsKey = "session_claims"

// TokenValidator is an interface for validating session tokens
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*types.SessionClaims, error)
}

// SessionToken returns the token from the session cookie, or from a bearer
// Authorization header for API clients.
func SessionToken(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie
	}
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// WantsJSON reports whether the caller expects a JSON response rather than a
// page: XHR requests, requests accepting JSON and anything under /api.
func WantsJSON(c *gin.Context) bool {
	if c.GetHeader("X-Requested-With") == "XMLHttpRequest" {
		return true
	}
	if strings.Contains(c.GetHeader("Accept"), "application/json") {
		return true
	}
	return strings.HasPrefix(c.Request.URL.Path, "/api/")
}

// RequireAuth lets authenticated sessions through. Pages redirect to /login;
// JSON callers get a 401.
func RequireAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := authenticate(c, validator)
		if !ok {
			if WantsJSON(c) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
				return
			}
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		// Store user info in context
		c.Set(claimsKey, claims)
		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)
		c.Next()
	}
}

// RedirectIfAuthenticated sends a signed-in user from the login page to the
// admin dashboard.
func RedirectIfAuthenticated(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := authenticate(c, validator); ok {
			c.Redirect(http.StatusFound, "/admin")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the claims stored by RequireAuth.
func CurrentUser(c *gin.Context) (*types.SessionClaims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*types.SessionClaims)
	return claims, ok
}

func authenticate(c *gin.Context, validator TokenValidator) (*types.SessionClaims, bool) {
	token := SessionToken(c)
	if token == "" {
		return nil, false
	}
	claims, err := validator.ValidateToken(c.Request.Context(), token)
	if err != nil {
		return nil, false
	}
	return claims, true
}
