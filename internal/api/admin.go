package api

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/matprat/matprat/backend/internal/middleware"
	"github.com/matprat/matprat/backend/internal/models"
	"github.com/matprat/matprat/backend/internal/recipeform"
	"github.com/matprat/matprat/backend/internal/service"
	"github.com/matprat/matprat/backend/internal/types"
)

const (
	msgSaveFailed   = "Unable to save recipe. Please try again."
	msgDeleteFailed = "Failed to delete recipe"

	maxFormMemory = 8 << 20
)

// AdminHandler serves the authenticated recipe editor.
type AdminHandler struct {
	recipes *service.RecipeService
	drafts  service.DraftStore
	log     logrus.FieldLogger
}

// NewAdminHandler creates the admin handler. drafts may be nil, in which case
// previews are not stored.
func NewAdminHandler(recipes *service.RecipeService, drafts service.DraftStore, log logrus.FieldLogger) *AdminHandler {
	return &AdminHandler{recipes: recipes, drafts: drafts, log: log}
}

func (h *AdminHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("", h.Dashboard)

	recipes := router.Group("/recipes")
	{
		recipes.GET("/new", h.NewRecipe)
		recipes.GET("/edit/:name", h.EditRecipe)
		recipes.POST("/preview", h.Preview)
		recipes.POST("/save", h.Save)
		recipes.DELETE("/delete/:name", h.Delete)
	}
}

func (h *AdminHandler) Dashboard(c *gin.Context) {
	dash, err := h.recipes.Dashboard(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.HTML(http.StatusOK, "admin_dashboard", page(c, "Admin", "admin", gin.H{"Dashboard": dash}))
}

// NewRecipe renders a blank form with one empty row per repeated group.
func (h *AdminHandler) NewRecipe(c *gin.Context) {
	lookups, err := h.recipes.Lookups(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.HTML(http.StatusOK, "recipe_form", page(c, "New recipe", "admin", gin.H{
		"Mode":        types.ModeCreate,
		"Recipe":      models.Recipe{DefaultPortions: 1},
		"Ingredients": []models.Ingredient{{Amount: 1}},
		"Steps":       []models.Step{{}},
		"Images":      []models.Image{{}},
		"Categories":  []string{},
		"Lookups":     lookups,
		"Error":       c.Query("error"),
	}))
}

// EditRecipe renders the form filled with the stored recipe.
func (h *AdminHandler) EditRecipe(c *gin.Context) {
	ctx := c.Request.Context()
	detail, err := h.recipes.GetRecipeDetail(ctx, c.Param("name"))
	if err != nil {
		c.Error(err)
		return
	}
	lookups, err := h.recipes.Lookups(ctx)
	if err != nil {
		c.Error(err)
		return
	}

	images := detail.Images
	if len(images) == 0 {
		images = []models.Image{{}}
	}
	c.HTML(http.StatusOK, "recipe_form", page(c, "Edit "+detail.Recipe.Name, "admin", gin.H{
		"Mode":        types.ModeEdit,
		"Recipe":      detail.Recipe,
		"Ingredients": detail.Ingredients,
		"Steps":       detail.Steps,
		"Images":      images,
		"Categories":  detail.Categories,
		"Lookups":     lookups,
		"Error":       c.Query("error"),
	}))
}

// Preview renders the parsed submission without validating or saving it.
// When a draft store is configured the parsed aggregate is kept so it can be
// saved by draft_id.
func (h *AdminHandler) Preview(c *gin.Context) {
	in, _, err := bindRecipe(c)
	if err != nil {
		c.Error(&service.ValidationError{Message: "Invalid recipe data"})
		return
	}

	var draftID string
	if h.drafts != nil {
		draftID, err = h.drafts.SaveDraft(c.Request.Context(), in)
		if err != nil {
			h.log.WithField("error", err.Error()).Warn("Failed to store recipe draft")
			draftID = ""
		}
	}

	if middleware.WantsJSON(c) {
		body := gin.H{"recipe": in}
		if draftID != "" {
			body["draft_id"] = draftID
		}
		c.JSON(http.StatusOK, body)
		return
	}
	c.HTML(http.StatusOK, "recipe_preview", page(c, "Preview "+in.Name, "admin", gin.H{
		"Recipe":  in,
		"DraftID": draftID,
	}))
}

// Save validates and stores a submission, or a previously previewed draft.
// Pages are redirected to the recipe on success and back to the form with
// ?error= on failure.
func (h *AdminHandler) Save(c *gin.Context) {
	ctx := c.Request.Context()
	in, draftID, err := bindRecipe(c)
	if err != nil {
		h.saveFailed(c, in, http.StatusBadRequest, "Invalid recipe data")
		return
	}

	if draftID != "" {
		if h.drafts == nil {
			h.saveFailed(c, in, http.StatusBadRequest, "Recipe drafts are not available")
			return
		}
		draft, err := h.drafts.GetDraft(ctx, draftID)
		if err != nil {
			status, msg := middleware.Resolve(err, false)
			h.saveFailed(c, in, status, msg)
			return
		}
		in = draft
	}

	if err := recipeform.Validate(in); err != nil {
		h.saveFailed(c, in, http.StatusBadRequest, err.Error())
		return
	}

	name, err := h.recipes.SaveRecipe(ctx, in)
	if err != nil {
		status, msg := saveError(err)
		h.saveFailed(c, in, status, msg)
		return
	}

	if draftID != "" {
		if err := h.drafts.DeleteDraft(ctx, draftID); err != nil {
			h.log.WithFields(logrus.Fields{"draft": draftID, "error": err.Error()}).Warn("Failed to delete recipe draft")
		}
	}

	target := "/recipes/" + url.PathEscape(name)
	if middleware.WantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"success": true, "name": name, "url": target})
		return
	}
	c.Redirect(http.StatusFound, target)
}

// saveError keeps client-facing messages for user-correctable failures and
// hides everything else behind the generic save message.
func saveError(err error) (int, string) {
	var (
		ve    *service.ValidationError
		nf    *service.NotFoundError
		dbErr *service.DatabaseError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Message
	case errors.As(err, &nf):
		return http.StatusNotFound, nf.Error()
	case errors.As(err, &dbErr) && dbErr.Status < http.StatusInternalServerError:
		return dbErr.Status, dbErr.Message
	}
	return http.StatusInternalServerError, msgSaveFailed
}

func (h *AdminHandler) saveFailed(c *gin.Context, in *types.RecipeInput, status int, message string) {
	if middleware.WantsJSON(c) {
		c.JSON(status, gin.H{"success": false, "error": message})
		return
	}
	if in == nil {
		in = &types.RecipeInput{Mode: types.ModeCreate}
	}
	c.Redirect(http.StatusFound, recipeform.RedirectWithError(in, message))
}

// Delete removes a recipe and its children.
func (h *AdminHandler) Delete(c *gin.Context) {
	name := c.Param("name")
	err := h.recipes.DeleteRecipe(c.Request.Context(), name)
	if err != nil {
		var nf *service.NotFoundError
		if errors.As(err, &nf) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": nf.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": msgDeleteFailed})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": `Recipe "` + name + `" deleted successfully`,
	})
}

// bindRecipe decodes a JSON body or an indexed form submission into the
// recipe aggregate. The second result is the draft id, if one was sent.
func bindRecipe(c *gin.Context) (*types.RecipeInput, string, error) {
	if strings.HasPrefix(c.ContentType(), "application/json") {
		var req types.RecipeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, "", err
		}
		return recipeform.FromRequest(&req), strings.TrimSpace(req.DraftID), nil
	}

	if err := c.Request.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, "", err
	}
	form := c.Request.PostForm
	return recipeform.Parse(form), strings.TrimSpace(form.Get("draft_id")), nil
}
