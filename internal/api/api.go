package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/matprat/matprat/backend/internal/catalog"
	"github.com/matprat/matprat/backend/internal/middleware"
	"github.com/matprat/matprat/backend/internal/service"
)

// APIHandler serves the JSON endpoints used by the pages' scripts.
type APIHandler struct {
	recipes *service.RecipeService
	images  *service.ImageService
	auth    middleware.TokenValidator
	log     logrus.FieldLogger
}

func NewAPIHandler(recipes *service.RecipeService, images *service.ImageService, auth middleware.TokenValidator, log logrus.FieldLogger) *APIHandler {
	return &APIHandler{recipes: recipes, images: images, auth: auth, log: log}
}

func (h *APIHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/db/select/recipes", h.RecipeNames)
	router.GET("/db/select/recipe/:name", h.Recipe)

	router.GET("/recipes", h.FilterRecipes)
	router.GET("/recipes/:name/portions", h.Portions)

	images := router.Group("/images")
	{
		images.GET("/search", h.SearchImages)
		images.POST("/upload", middleware.RequireAuth(h.auth), h.UploadImage)
	}
}

// RecipeNames returns every recipe name as a JSON array.
func (h *APIHandler) RecipeNames(c *gin.Context) {
	names, err := h.recipes.RecipeNames(c.Request.Context())
	if err != nil {
		h.log.WithField("error", err.Error()).Error("Database error fetching recipes")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to retrieve recipes. Please try again later."})
		return
	}
	c.JSON(http.StatusOK, names)
}

// Recipe returns the scalar fields of one recipe.
func (h *APIHandler) Recipe(c *gin.Context) {
	recipe, err := h.recipes.GetRecipe(c.Request.Context(), c.Param("name"))
	if err != nil {
		var nf *service.NotFoundError
		if errors.As(err, &nf) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
			return
		}
		h.log.WithFields(logrus.Fields{"recipe": c.Param("name"), "error": err.Error()}).Error("Database error fetching recipe")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to retrieve recipe. Please try again later."})
		return
	}
	c.JSON(http.StatusOK, recipe)
}

// FilterRecipes applies the catalog filter server-side:
// GET /api/recipes?category=breakfast&search=waffle
func (h *APIHandler) FilterRecipes(c *gin.Context) {
	recipes, err := h.recipes.ListRecipes(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	filter := catalog.NewFilter()
	filter.SelectCategory(c.Query("category"))
	filter.SetSearch(c.Query("search"))

	c.JSON(http.StatusOK, gin.H{
		"category":   filter.Category,
		"search":     filter.Search,
		"categories": catalog.Categories(recipes),
		"recipes":    filter.Apply(recipes),
	})
}

// Portions rescales a recipe's ingredients: GET /api/recipes/:name/portions?portions=6
func (h *APIHandler) Portions(c *gin.Context) {
	view, err := h.recipes.ScalePortions(c.Request.Context(), c.Param("name"), c.Query("portions"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// SearchImages returns up to ten stored images whose filename contains query.
func (h *APIHandler) SearchImages(c *gin.Context) {
	files, err := h.images.Search(c.Request.Context(), c.Query("query"))
	if err != nil {
		h.log.WithField("error", err.Error()).Error("Error searching images")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to search images"})
		return
	}
	c.JSON(http.StatusOK, files)
}

// UploadImage stores a single multipart file sent as "image".
func (h *APIHandler) UploadImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.images.MaxBytes()+1<<20)

	header, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			header = nil
		} else {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.Error(service.FileTooLarge(h.images.MaxBytes()))
				return
			}
			c.Error(&service.UploadError{Message: "No file uploaded"})
			return
		}
	}

	result, err := h.images.Upload(c.Request.Context(), header)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}
