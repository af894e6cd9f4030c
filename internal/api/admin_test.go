package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wafflesForm() url.Values {
	return url.Values{
		"mode":                {"create"},
		"name":                {"Waffles"},
		"description":         {"Crispy weekend waffles"},
		"servings":            {"4"},
		"difficulty":          {"easy"},
		"cook_time":           {"20"},
		"ingredient_name_1":   {"Flour"},
		"ingredient_amount_1": {"2,5"},
		"ingredient_unit_1":   {"dl"},
		"ingredient_name_2":   {"Milk"},
		"ingredient_amount_2": {"5"},
		"ingredient_unit_2":   {"dl"},
		"step_1":              {"Whisk everything together"},
		"step_note_1":         {"Let the batter rest"},
		"step_2":              {"Bake in a hot iron"},
		"image_url_2":         {"/images/a.jpg"},
		"image_url_3":         {"/images/b.jpg"},
		"categories":          {"breakfast", "baking"},
	}
}

func TestAdminRequiresSession(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.get("/admin", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Accept", "application/json")
	w = env.serve(req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Authentication required"}`, w.Body.String())

	req = httptest.NewRequest(http.MethodDelete, "/admin/recipes/delete/Waffles", nil)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	w = env.serve(req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminPages(t *testing.T) {
	env := newTestEnv(t, nil)
	cookie := env.sessionCookie(t)
	env.saveWaffles(t)

	w := env.get("/admin", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Waffles")

	w = env.get("/admin/recipes/new", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `name="ingredient_name_1"`)

	w = env.get("/admin/recipes/edit/Waffles", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Crispy weekend waffles")

	w = env.get("/admin/recipes/edit/Nope", cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.get("/admin/recipes/new?error=Recipe+name+missing", cookie)
	assert.Contains(t, w.Body.String(), "Recipe name missing")
}

func TestSaveRecipeForm(t *testing.T) {
	env := newTestEnv(t, nil)
	cookie := env.sessionCookie(t)

	w := env.serve(postForm("/admin/recipes/save", wafflesForm().Encode(), cookie))
	require.Equal(t, http.StatusFound, w.Code, w.Body.String())
	assert.Equal(t, "/recipes/Waffles", w.Header().Get("Location"))

	detail, err := env.recipes.GetRecipeDetail(context.Background(), "Waffles")
	require.NoError(t, err)
	assert.Equal(t, 4, detail.Recipe.DefaultPortions)
	require.Len(t, detail.Ingredients, 2)
	require.Len(t, detail.Steps, 2)
	require.Len(t, detail.Images, 2)
	assert.Equal(t, 1, detail.Images[0].ImageNr)
	assert.Equal(t, "/images/a.jpg", detail.Images[0].Link)
	assert.Equal(t, 2, detail.Images[1].ImageNr)
	assert.ElementsMatch(t, []string{"breakfast", "baking"}, detail.Categories)
}

func TestSaveRecipeFormValidation(t *testing.T) {
	env := newTestEnv(t, nil)
	cookie := env.sessionCookie(t)

	form := wafflesForm()
	form.Del("step_1")
	form.Del("step_2")
	w := env.serve(postForm("/admin/recipes/save", form.Encode(), cookie))
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t,
		"/admin/recipes/new?error=Recipe+name%2C+ingredients%2C+and+steps+are+required",
		w.Header().Get("Location"))

	form.Set("mode", "edit")
	form.Set("originalName", "Old Waffles")
	w = env.serve(postForm("/admin/recipes/save", form.Encode(), cookie))
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "/admin/recipes/edit/Old%20Waffles?error="),
		w.Header().Get("Location"))

	names, err := env.recipes.RecipeNames(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestSaveRecipeJSON(t *testing.T) {
	env := newTestEnv(t, nil)
	cookie := env.sessionCookie(t)

	body := `{
		"name": "Pancakes",
		"servings": 2,
		"ingredients": [{"name": "Flour", "amount": "1.5", "unit": "dl"}],
		"steps": [{"text": "Fry"}],
		"categories": "breakfast"
	}`
	w := env.serve(postJSON("/admin/recipes/save", strings.NewReader(body), cookie))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"success":true,"name":"Pancakes","url":"/recipes/Pancakes"}`, w.Body.String())

	w = env.serve(postJSON("/admin/recipes/save", strings.NewReader(`{"name":"Empty"}`), cookie))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"Recipe name, ingredients, and steps are required"}`, w.Body.String())
}

func TestEditRenamesRecipe(t *testing.T) {
	env := newTestEnv(t, nil)
	cookie := env.sessionCookie(t)
	env.saveWaffles(t)

	form := wafflesForm()
	form.Set("mode", "edit")
	form.Set("originalName", "Waffles")
	form.Set("name", "Belgian Waffles")
	w := env.serve(postForm("/admin/recipes/save", form.Encode(), cookie))
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/recipes/Belgian%20Waffles", w.Header().Get("Location"))

	names, err := env.recipes.RecipeNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Belgian Waffles"}, names)
}

func TestPreviewAndSaveDraft(t *testing.T) {
	drafts := newMemoryDrafts()
	env := newTestEnv(t, drafts)
	cookie := env.sessionCookie(t)

	req := postForm("/admin/recipes/preview", wafflesForm().Encode(), cookie)
	req.Header.Set("Accept", "application/json")
	w := env.serve(req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var preview struct {
		Recipe struct {
			Name   string `json:"name"`
			Images []struct {
				ImageNr int `json:"image_nr"`
			} `json:"images"`
		} `json:"recipe"`
		DraftID string `json:"draft_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &preview))
	assert.Equal(t, "Waffles", preview.Recipe.Name)
	require.Len(t, preview.Recipe.Images, 2)
	assert.Equal(t, 1, preview.Recipe.Images[0].ImageNr)
	require.NotEmpty(t, preview.DraftID)

	names, err := env.recipes.RecipeNames(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names, "preview must not save")

	payload, err := json.Marshal(map[string]string{"draft_id": preview.DraftID})
	require.NoError(t, err)
	w = env.serve(postJSON("/admin/recipes/save", bytes.NewReader(payload), cookie))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	names, err = env.recipes.RecipeNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Waffles"}, names)

	w = env.serve(postJSON("/admin/recipes/save", bytes.NewReader(payload), cookie))
	assert.Equal(t, http.StatusNotFound, w.Code, "draft is removed once saved")
}

func TestPreviewPage(t *testing.T) {
	env := newTestEnv(t, nil)
	cookie := env.sessionCookie(t)

	form := wafflesForm()
	form.Del("name")
	w := env.serve(postForm("/admin/recipes/preview", form.Encode(), cookie))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Whisk everything together")
}

func TestDeleteRecipe(t *testing.T) {
	env := newTestEnv(t, nil)
	cookie := env.sessionCookie(t)
	env.saveWaffles(t)

	w := env.get("/api/db/select/recipes", nil)
	assert.JSONEq(t, `["Waffles"]`, w.Body.String())

	req := httptest.NewRequest(http.MethodDelete, "/admin/recipes/delete/Waffles", nil)
	req.AddCookie(cookie)
	w = env.serve(req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"message":"Recipe \"Waffles\" deleted successfully"}`, w.Body.String())

	w = env.get("/api/db/select/recipes", nil)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = env.get("/recipes/Waffles", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	req = httptest.NewRequest(http.MethodDelete, "/admin/recipes/delete/Waffles", nil)
	req.AddCookie(cookie)
	w = env.serve(req)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, false, decode(t, w)["success"])
}
