package testhelpers

import "github.com/matprat/matprat/backend/internal/types"

// WafflesInput is a complete recipe used across handler and service tests.
func WafflesInput() *types.RecipeInput {
	note := "Let the batter rest"
	return &types.RecipeInput{
		Mode:            types.ModeCreate,
		Name:            "Waffles",
		Description:     "Crispy weekend waffles",
		DefaultPortions: 4,
		Difficulty:      "easy",
		CookTime:        20,
		Ingredients: []types.IngredientInput{
			{Name: "Flour", Amount: 2.5, Unit: "dl"},
			{Name: "Milk", Amount: 5, Unit: "dl"},
			{Name: "Egg", Amount: 2, Unit: "pcs", Note: "room temperature"},
		},
		Steps: []types.StepInput{
			{Text: "Whisk everything together", Note: &note},
			{Text: "Bake in a hot iron"},
		},
		Images: []types.ImageInput{
			{ImageNr: 1, Link: "/images/waffles.jpg", Description: "Golden waffles"},
		},
		Categories: []string{"breakfast", "baking"},
	}
}
