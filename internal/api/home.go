package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/matprat/matprat/backend/internal/service"
)

type HomeHandler struct {
	recipes *service.RecipeService
}

func NewHomeHandler(recipes *service.RecipeService) *HomeHandler {
	return &HomeHandler{recipes: recipes}
}

func (h *HomeHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/", h.Home)
}

// Home renders featured recipes and catalog statistics.
func (h *HomeHandler) Home(c *gin.Context) {
	summary, err := h.recipes.HomeSummary(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.HTML(http.StatusOK, "index", page(c, "", "home", gin.H{"Summary": summary}))
}
