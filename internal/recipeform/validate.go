package recipeform

import (
	"fmt"
	"net/url"

	"github.com/matprat/matprat/backend/internal/types"
)

// MissingFieldsMessage is shown when a recipe lacks its required parts.
const MissingFieldsMessage = "Recipe name, ingredients, and steps are required"

// ValidationError carries a message that is safe to show to the user.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validate rejects aggregates without a name, an ingredient or a step.
// Images and categories are optional.
func Validate(in *types.RecipeInput) error {
	if in == nil || in.Name == "" || len(in.Ingredients) == 0 || len(in.Steps) == 0 {
		return &ValidationError{Message: MissingFieldsMessage}
	}
	return nil
}

// FormURL is the admin form a submission came from: the edit form of the
// recipe being edited, or the blank create form.
func FormURL(in *types.RecipeInput) string {
	if in != nil && in.IsEdit() {
		name := in.OriginalName
		if name == "" {
			name = in.Name
		}
		return "/admin/recipes/edit/" + url.PathEscape(name)
	}
	return "/admin/recipes/new"
}

// RedirectWithError returns the form URL with message attached as ?error=.
func RedirectWithError(in *types.RecipeInput, message string) string {
	return fmt.Sprintf("%s?error=%s", FormURL(in), url.QueryEscape(message))
}
