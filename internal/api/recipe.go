package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/matprat/matprat/backend/internal/catalog"
	"github.com/matprat/matprat/backend/internal/middleware"
	"github.com/matprat/matprat/backend/internal/portions"
	"github.com/matprat/matprat/backend/internal/service"
)

const noRecipesMessage = "No recipes found in the database."

// RecipeHandler serves the public recipe pages.
type RecipeHandler struct {
	recipes *service.RecipeService
}

func NewRecipeHandler(recipes *service.RecipeService) *RecipeHandler {
	return &RecipeHandler{recipes: recipes}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("", h.ListRecipes)
	router.GET("/:name", h.GetRecipe)
}

// ListRecipes renders the catalog. Filtering happens in the browser.
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	recipes, err := h.recipes.ListRecipes(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	if len(recipes) == 0 {
		c.HTML(http.StatusOK, middleware.ErrorPage, page(c, "Recipes", "", gin.H{
			"Message": noRecipesMessage,
		}))
		return
	}

	c.HTML(http.StatusOK, "recipes", page(c, "Recipes", "recipes", gin.H{
		"Recipes":    recipes,
		"Categories": catalog.Categories(recipes),
	}))
}

// GetRecipe renders one recipe at its default portion count.
func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	detail, err := h.recipes.GetRecipeDetail(c.Request.Context(), c.Param("name"))
	if err != nil {
		c.Error(err)
		return
	}

	amounts := make([]float64, len(detail.Ingredients))
	for i, ing := range detail.Ingredients {
		amounts[i] = ing.Amount
	}
	state := portions.NewScaler(detail.Recipe.DefaultPortions, amounts).State()

	c.HTML(http.StatusOK, "recipe", page(c, detail.Recipe.Name, "recipes", gin.H{
		"Detail":   detail,
		"Portions": state,
	}))
}
