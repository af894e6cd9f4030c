package api

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/matprat/matprat/backend/internal/middleware"
	"github.com/matprat/matprat/backend/internal/service"
	"github.com/matprat/matprat/backend/internal/types"
)

const (
	msgMissingCredentials = "Missing username or password"
	msgInvalidCredentials = "Invalid username or password"
	msgLoginFailed        = "An error occurred. Please try again."
)

type AuthHandler struct {
	auth    *service.AuthService
	limiter middleware.Limiter
	log     logrus.FieldLogger
	secure  bool
}

// NewAuthHandler creates the login/logout handler. A nil limiter disables
// login throttling.
func NewAuthHandler(auth *service.AuthService, limiter middleware.Limiter, log logrus.FieldLogger, secure bool) *AuthHandler {
	return &AuthHandler{auth: auth, limiter: limiter, log: log, secure: secure}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/login", middleware.RedirectIfAuthenticated(h.auth), h.LoginPage)

	login := []gin.HandlerFunc{h.Login}
	if h.limiter != nil {
		login = append([]gin.HandlerFunc{middleware.RateLimit(h.limiter, h.log)}, login...)
	}
	router.POST("/login", login...)

	router.POST("/logout", h.Logout)
	router.GET("/logout", h.Logout)
}

func (h *AuthHandler) LoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login", page(c, "Log in", "login", gin.H{"Error": c.Query("error")}))
}

// Login checks the credentials and sets the session cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var req types.LoginRequest
	_ = c.ShouldBind(&req)
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		h.loginFailed(c, http.StatusBadRequest, msgMissingCredentials)
		return
	}

	token, user, err := h.auth.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.log.WithField("username", req.Username).Warn("Failed login attempt")
			h.loginFailed(c, http.StatusUnauthorized, msgInvalidCredentials)
			return
		}
		h.log.WithFields(logrus.Fields{"username": req.Username, "error": err.Error()}).Error("Login error")
		h.loginFailed(c, http.StatusInternalServerError, msgLoginFailed)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, int(h.auth.TTL().Seconds()), "/", "", h.secure, true)
	h.log.WithField("username", user.Username).Info("User logged in")

	if middleware.WantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"success": true, "username": user.Username})
		return
	}
	c.Redirect(http.StatusFound, "/admin")
}

func (h *AuthHandler) loginFailed(c *gin.Context, status int, message string) {
	if middleware.WantsJSON(c) {
		c.JSON(status, gin.H{"error": message})
		return
	}
	c.Redirect(http.StatusFound, "/login?error="+url.QueryEscape(message))
}

// Logout revokes the session, clears the cookie and returns to the front page.
func (h *AuthHandler) Logout(c *gin.Context) {
	if token := middleware.SessionToken(c); token != "" {
		if err := h.auth.Logout(c.Request.Context(), token); err != nil {
			h.log.WithField("error", err.Error()).Error("Error revoking session")
		}
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.secure, true)
	c.Redirect(http.StatusFound, "/")
}
