package recipeform

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matprat/matprat/backend/internal/types"
)

func TestParseIngredients(t *testing.T) {
	values := url.Values{
		"name":                 {"Pancakes"},
		"ingredient_name_1":    {" Flour "},
		"ingredient_amount_1":  {" 2.5 "},
		"ingredient_unit_1":    {"dl"},
		"ingredient_note_1":    {"sifted"},
		"ingredient_name_4":    {"Milk"},
		"ingredient_amount_4":  {""},
		"ingredient_name_2":    {"   "},
		"ingredient_amount_2":  {"3"},
		"ingredient_name_x":    {"Ignored"},
		"ingredient_name_10":   {"Salt"},
		"ingredient_amount_10": {"abc"},
	}

	in := Parse(values)

	require.Len(t, in.Ingredients, 3)
	assert.Equal(t, types.IngredientInput{Name: "Flour", Amount: 2.5, Unit: "dl", Note: "sifted"}, in.Ingredients[0])
	assert.Equal(t, "Milk", in.Ingredients[1].Name)
	assert.Equal(t, 1.0, in.Ingredients[1].Amount)
	assert.Equal(t, "", in.Ingredients[1].Note)
	assert.Equal(t, "Salt", in.Ingredients[2].Name, "indices sort numerically, not lexically")
	assert.Equal(t, 1.0, in.Ingredients[2].Amount)
}

func TestParseStepsDoNotConfuseNotes(t *testing.T) {
	values := url.Values{
		"step_2":      {"Fry"},
		"step_1":      {"Mix"},
		"step_note_1": {"until smooth"},
		"step_note_2": {"  "},
		"step_note_5": {"orphan note"},
		"step_3":      {""},
	}

	in := Parse(values)

	require.Len(t, in.Steps, 2)
	assert.Equal(t, "Mix", in.Steps[0].Text)
	require.NotNil(t, in.Steps[0].Note)
	assert.Equal(t, "until smooth", *in.Steps[0].Note)
	assert.Equal(t, "Fry", in.Steps[1].Text)
	assert.Nil(t, in.Steps[1].Note)
}

func TestParseImagesAreCompacted(t *testing.T) {
	values := url.Values{
		"image_url_1":  {""},
		"image_desc_1": {"skipped"},
		"image_url_2":  {"/a.jpg"},
		"image_desc_2": {"first"},
		"image_url_3":  {"/b.jpg"},
	}

	in := Parse(values)

	require.Len(t, in.Images, 2)
	assert.Equal(t, types.ImageInput{ImageNr: 1, Link: "/a.jpg", Description: "first"}, in.Images[0])
	assert.Equal(t, types.ImageInput{ImageNr: 2, Link: "/b.jpg"}, in.Images[1])
}

func TestParseCategories(t *testing.T) {
	single := Parse(url.Values{"categories": {" dinner "}})
	assert.Equal(t, []string{"dinner"}, single.Categories)

	multi := Parse(url.Values{"categories[]": {"dinner", "", "dinner", "quick"}})
	assert.Equal(t, []string{"dinner", "dinner", "quick"}, multi.Categories, "duplicates pass through")

	none := Parse(url.Values{})
	assert.Empty(t, none.Categories)
}

func TestParseScalarsAndMode(t *testing.T) {
	in := Parse(url.Values{
		"mode":         {"edit"},
		"originalName": {"Old name"},
		"name":         {"  New name "},
		"servings":     {"4"},
		"cook_time":    {"45 min"},
		"difficulty":   {"easy"},
	})
	assert.True(t, in.IsEdit())
	assert.Equal(t, "Old name", in.OriginalName)
	assert.Equal(t, "New name", in.Name)
	assert.Equal(t, 4, in.DefaultPortions)
	assert.Equal(t, 45, in.CookTime)
	assert.Equal(t, "easy", in.Difficulty)

	defaults := Parse(url.Values{"mode": {"bogus"}, "servings": {"x"}, "cook_time": {""}})
	assert.False(t, defaults.IsEdit())
	assert.Equal(t, types.ModeCreate, defaults.Mode)
	assert.Equal(t, 1, defaults.DefaultPortions)
	assert.Equal(t, 0, defaults.CookTime)

	negative := Parse(url.Values{"servings": {"-3"}})
	assert.Equal(t, 1, negative.DefaultPortions)
}

func TestParseAmount(t *testing.T) {
	cases := map[string]float64{
		"":         1.0,
		"0":        1.0,
		"abc":      1.0,
		"0.5":      0.5,
		"1,25":     1.25,
		" 3 ":      3,
		"1.5 dl":   1.5,
		"2,5dl":    2.5,
		".5":       0.5,
		"NaN":      1.0,
		"Inf":      1.0,
		"-Inf":     1.0,
		"Infinity": 1.0,
		"1e400":    1.0,
	}
	for raw, want := range cases {
		assert.Equal(t, want, ParseAmount(raw), "amount %q", raw)
	}
}

func TestParseKeepsAmountsFinite(t *testing.T) {
	in := Parse(url.Values{
		"name":                {"Waffles"},
		"ingredient_name_1":   {"Flour"},
		"ingredient_amount_1": {"NaN"},
		"ingredient_name_2":   {"Milk"},
		"ingredient_amount_2": {"Inf"},
		"step_1":              {"Whisk"},
	})
	require.NoError(t, Validate(in))
	require.Len(t, in.Ingredients, 2)
	assert.Equal(t, 1.0, in.Ingredients[0].Amount)
	assert.Equal(t, 1.0, in.Ingredients[1].Amount)

	_, err := json.Marshal(in)
	assert.NoError(t, err)
}

func TestFromRequest(t *testing.T) {
	req := &types.RecipeRequest{
		Mode:     "edit",
		Name:     " Waffles ",
		Servings: "2",
		CookTime: "20",
		Ingredients: []types.IngredientRequest{
			{Name: "Egg", Amount: "2", Unit: "pcs"},
			{Name: "", Amount: "5"},
		},
		Steps:      []types.StepRequest{{Text: "Whisk", Note: "hard"}, {Text: " "}},
		Images:     []types.ImageRequest{{Link: ""}, {Link: "/w.jpg", Description: "cover"}},
		Categories: types.StringList{"breakfast", " "},
	}

	in := FromRequest(req)

	assert.True(t, in.IsEdit())
	assert.Equal(t, "Waffles", in.Name)
	assert.Equal(t, 2, in.DefaultPortions)
	assert.Equal(t, 20, in.CookTime)
	require.Len(t, in.Ingredients, 1)
	assert.Equal(t, 2.0, in.Ingredients[0].Amount)
	require.Len(t, in.Steps, 1)
	assert.Equal(t, "hard", *in.Steps[0].Note)
	require.Len(t, in.Images, 1)
	assert.Equal(t, 1, in.Images[0].ImageNr)
	assert.Equal(t, []string{"breakfast"}, in.Categories)
}
