package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/matprat/matprat/backend/internal/middleware"
	"github.com/matprat/matprat/backend/internal/service"
)

// Deps are the collaborators the route groups are built from.
type Deps struct {
	Recipes      *service.RecipeService
	Auth         *service.AuthService
	Images       *service.ImageService
	Drafts       service.DraftStore // optional
	LoginLimiter middleware.Limiter // optional
	Log          logrus.FieldLogger
	// SecureCookies marks the session cookie Secure; set behind TLS.
	SecureCookies bool
}

// HealthCheck returns the health status of the API
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RegisterRoutes registers every page and API route on router.
func RegisterRoutes(router *gin.Engine, deps Deps) {
	router.GET("/health", HealthCheck)

	NewHomeHandler(deps.Recipes).RegisterRoutes(router.Group(""))
	NewRecipeHandler(deps.Recipes).RegisterRoutes(router.Group("/recipes"))
	NewAuthHandler(deps.Auth, deps.LoginLimiter, deps.Log, deps.SecureCookies).RegisterRoutes(router.Group(""))
	NewAPIHandler(deps.Recipes, deps.Images, deps.Auth, deps.Log).RegisterRoutes(router.Group("/api"))
	NewAdminHandler(deps.Recipes, deps.Drafts, deps.Log).RegisterRoutes(router.Group("/admin", middleware.RequireAuth(deps.Auth)))
}
