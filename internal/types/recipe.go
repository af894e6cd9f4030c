package types

import "github.com/matprat/matprat/backend/internal/models"

// Form modes for the admin recipe editor.
const (
	ModeCreate = "create"
	ModeEdit   = "edit"
)

// RecipeInput is the recipe aggregate as assembled by the form parser,
// before validation and persistence.
type RecipeInput struct {
	Mode            string            `json:"mode"`
	OriginalName    string            `json:"original_name"`
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	DefaultPortions int               `json:"default_portions"`
	Difficulty      string            `json:"difficulty"`
	CookTime        int               `json:"cook_time"`
	Ingredients     []IngredientInput `json:"ingredients"`
	Steps           []StepInput       `json:"steps"`
	Images          []ImageInput      `json:"images"`
	Categories      []string          `json:"categories"`
}

// IsEdit reports whether the aggregate updates an existing recipe.
func (r *RecipeInput) IsEdit() bool {
	return r.Mode == ModeEdit
}

// TargetName is the name the save is keyed on before any rename is applied.
func (r *RecipeInput) TargetName() string {
	if r.IsEdit() && r.OriginalName != "" {
		return r.OriginalName
	}
	return r.Name
}

type IngredientInput struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
	Note   string  `json:"note"`
}

type StepInput struct {
	Text string  `json:"text"`
	Note *string `json:"note"`
}

type ImageInput struct {
	ImageNr     int    `json:"image_nr"`
	Link        string `json:"link"`
	Description string `json:"description"`
}

// RecipeSummary is one row of the recipe list: scalar fields, the cover
// image (if any) and the recipe's category labels.
type RecipeSummary struct {
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	DefaultPortions  int      `json:"default_portions"`
	Difficulty       string   `json:"difficulty"`
	CookTime         int      `json:"cook_time"`
	Link             string   `json:"link,omitempty"`
	ImageDescription string   `json:"image_description,omitempty"`
	Categories       []string `json:"categories"`
}

// RecipeDetail backs the recipe page and the admin edit form.
type RecipeDetail struct {
	Recipe      models.Recipe       `json:"recipe"`
	Ingredients []models.Ingredient `json:"ingredients"`
	Steps       []models.Step       `json:"steps"`
	Images      []models.Image      `json:"images"`
	Categories  []string            `json:"categories"`
}

type HomeSummary struct {
	Featured        []RecipeSummary `json:"featured"`
	TotalRecipes    int64           `json:"total_recipes"`
	AverageCookTime int             `json:"avg_cook_time"`
}

type Dashboard struct {
	RecipeCount   int64           `json:"recipe_count"`
	RecentRecipes []models.Recipe `json:"recent_recipes"`
}

// Lookups are the option lists for the admin recipe form.
type Lookups struct {
	MeasurementUnits []string `json:"measurement_units"`
	DifficultyLevels []string `json:"difficulty_levels"`
	Categories       []string `json:"categories"`
}
