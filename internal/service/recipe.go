package service

import (
	"context"
	"database/sql"
	"errors"
	"math"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/matprat/matprat/backend/internal/models"
	"github.com/matprat/matprat/backend/internal/portions"
	"github.com/matprat/matprat/backend/internal/recipeform"
	"github.com/matprat/matprat/backend/internal/types"
)

const (
	featuredLimit          = 3
	dashboardLimit         = 10
	defaultAverageCookTime = 30
)

// RecipeService owns the recipe tables: the replace-all-children save
// pipeline, deletion and the read-side view models.
type RecipeService struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, logger logrus.FieldLogger) *RecipeService {
	return &RecipeService{db: db, log: logger}
}

func (s *RecipeService) isPostgres() bool {
	return s.db.Dialector.Name() == "postgres"
}

// SaveRecipe validates the aggregate and writes it in one transaction. In edit
// mode the row named OriginalName is updated, possibly renamed, and every child
// table is replaced. It returns the name the recipe is now stored under.
func (s *RecipeService) SaveRecipe(ctx context.Context, in *types.RecipeInput) (string, error) {
	if err := recipeform.Validate(in); err != nil {
		return "", err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.IsEdit() && in.OriginalName != "" {
			res := tx.Model(&models.Recipe{}).Where("name = ?", in.OriginalName).Updates(recipeColumns(in))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return recipeNotFound(in.OriginalName)
			}
		} else if err := tx.Model(&models.Recipe{}).Create(recipeColumns(in)).Error; err != nil {
			return err
		}
		return replaceChildren(tx, in)
	})
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"recipe":   in.Name,
			"original": in.OriginalName,
			"mode":     in.Mode,
			"error":    err.Error(),
		}).Error("Error saving recipe")
		return "", classify(err)
	}

	s.log.WithFields(logrus.Fields{"recipe": in.Name, "mode": in.Mode}).Info("Recipe saved")
	return in.Name, nil
}

// recipeColumns uses a map so an empty difficulty is stored as NULL rather
// than an empty enum label.
func recipeColumns(in *types.RecipeInput) map[string]interface{} {
	var difficulty interface{}
	if in.Difficulty != "" {
		difficulty = in.Difficulty
	}
	return map[string]interface{}{
		"name":             in.Name,
		"description":      in.Description,
		"default_portions": in.DefaultPortions,
		"difficulty":       difficulty,
		"cook_time":        in.CookTime,
	}
}

// replaceChildren deletes and re-inserts each child table in turn. Renamed
// recipes already carry their children over through ON UPDATE CASCADE.
func replaceChildren(tx *gorm.DB, in *types.RecipeInput) error {
	name := in.Name

	if err := tx.Where("recipe_name = ?", name).Delete(&models.Ingredient{}).Error; err != nil {
		return err
	}
	if len(in.Ingredients) > 0 {
		rows := make([]models.Ingredient, len(in.Ingredients))
		for i, ing := range in.Ingredients {
			rows[i] = models.Ingredient{RecipeName: name, Ingredient: ing.Name, Amount: ing.Amount, Unit: ing.Unit, Note: ing.Note}
		}
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}
	}

	if err := tx.Where("recipe_name = ?", name).Delete(&models.Step{}).Error; err != nil {
		return err
	}
	if len(in.Steps) > 0 {
		rows := make([]models.Step, len(in.Steps))
		for i, st := range in.Steps {
			rows[i] = models.Step{RecipeName: name, StepNr: i + 1, Description: st.Text, Note: st.Note}
		}
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}
	}

	if err := tx.Where("recipe_name = ?", name).Delete(&models.Image{}).Error; err != nil {
		return err
	}
	if len(in.Images) > 0 {
		rows := make([]models.Image, len(in.Images))
		for i, img := range in.Images {
			rows[i] = models.Image{RecipeName: name, ImageNr: img.ImageNr, Link: img.Link, Description: img.Description}
		}
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}
	}

	if err := tx.Where("recipe_name = ?", name).Delete(&models.Category{}).Error; err != nil {
		return err
	}
	if len(in.Categories) > 0 {
		rows := make([]models.Category, len(in.Categories))
		for i, c := range in.Categories {
			rows[i] = models.Category{RecipeName: name, Category: c}
		}
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}
	}
	return nil
}

// DeleteRecipe removes a recipe and all of its children atomically.
func (s *RecipeService) DeleteRecipe(ctx context.Context, name string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, child := range []interface{}{&models.Category{}, &models.Ingredient{}, &models.Step{}, &models.Image{}} {
			if err := tx.Where("recipe_name = ?", name).Delete(child).Error; err != nil {
				return err
			}
		}
		res := tx.Where("name = ?", name).Delete(&models.Recipe{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return recipeNotFound(name)
		}
		return nil
	})
	if err != nil {
		var nf *NotFoundError
		if !errors.As(err, &nf) {
			s.log.WithFields(logrus.Fields{"recipe": name, "error": err.Error()}).Error("Error deleting recipe")
		}
		return classify(err)
	}
	s.log.WithField("recipe", name).Info("Recipe deleted")
	return nil
}

type summaryRow struct {
	Name             string
	Description      *string
	DefaultPortions  int
	Difficulty       *string
	CookTime         int
	Link             *string
	ImageDescription *string
	Categories       pq.StringArray `gorm:"type:text[]"`
}

func (r summaryRow) summary() types.RecipeSummary {
	cats := []string(r.Categories)
	if cats == nil {
		cats = []string{}
	}
	return types.RecipeSummary{
		Name:             r.Name,
		Description:      deref(r.Description),
		DefaultPortions:  r.DefaultPortions,
		Difficulty:       deref(r.Difficulty),
		CookTime:         r.CookTime,
		Link:             deref(r.Link),
		ImageDescription: deref(r.ImageDescription),
		Categories:       cats,
	}
}

const listRecipesPostgres = `
SELECT r.name, r.description, r.default_portions, r.difficulty, r.cook_time,
       i.link, i.description AS image_description,
       COALESCE(ARRAY_AGG(c.category ORDER BY c.id) FILTER (WHERE c.category IS NOT NULL), '{}') AS categories
FROM recipes r
LEFT JOIN images i ON r.name = i.recipe_name AND i.image_nr = 1
LEFT JOIN categories c ON r.name = c.recipe_name
GROUP BY r.name, r.description, r.default_portions, r.difficulty, r.cook_time, i.link, i.description
ORDER BY r.name`

const listRecipesPortable = `
SELECT r.name, r.description, r.default_portions, r.difficulty, r.cook_time,
       i.link, i.description AS image_description
FROM recipes r
LEFT JOIN images i ON r.name = i.recipe_name AND i.image_nr = 1
ORDER BY r.name`

// ListRecipes returns every recipe with its cover image and category labels.
// Zero recipes is an empty slice, not an error.
func (s *RecipeService) ListRecipes(ctx context.Context) ([]types.RecipeSummary, error) {
	db := s.db.WithContext(ctx)
	var rows []summaryRow

	if s.isPostgres() {
		if err := db.Raw(listRecipesPostgres).Scan(&rows).Error; err != nil {
			return nil, classify(err)
		}
	} else {
		if err := db.Raw(listRecipesPortable).Scan(&rows).Error; err != nil {
			return nil, classify(err)
		}
		var cats []models.Category
		if err := db.Order("id").Find(&cats).Error; err != nil {
			return nil, classify(err)
		}
		byRecipe := make(map[string][]string)
		for _, c := range cats {
			byRecipe[c.RecipeName] = append(byRecipe[c.RecipeName], c.Category)
		}
		for i := range rows {
			rows[i].Categories = byRecipe[rows[i].Name]
		}
	}

	out := make([]types.RecipeSummary, len(rows))
	for i, r := range rows {
		out[i] = r.summary()
	}
	return out, nil
}

// GetRecipe looks a recipe up by exact name.
func (s *RecipeService) GetRecipe(ctx context.Context, name string) (*models.Recipe, error) {
	db := s.db.WithContext(ctx)
	var recipe models.Recipe

	if s.isPostgres() {
		var rows []summaryRow
		if err := db.Raw("SELECT * FROM recipe_info(?)", name).Scan(&rows).Error; err != nil {
			return nil, classify(err)
		}
		if len(rows) == 0 {
			return nil, recipeNotFound(name)
		}
		r := rows[0]
		recipe = models.Recipe{
			Name:            r.Name,
			Description:     deref(r.Description),
			DefaultPortions: r.DefaultPortions,
			Difficulty:      deref(r.Difficulty),
			CookTime:        r.CookTime,
		}
		return &recipe, nil
	}

	if err := db.Where("name = ?", name).First(&recipe).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, recipeNotFound(name)
		}
		return nil, classify(err)
	}
	return &recipe, nil
}

// GetRecipeDetail loads a recipe and, once it is known to exist, fetches its
// child collections concurrently.
func (s *RecipeService) GetRecipeDetail(ctx context.Context, name string) (*types.RecipeDetail, error) {
	recipe, err := s.GetRecipe(ctx, name)
	if err != nil {
		return nil, err
	}

	detail := &types.RecipeDetail{Recipe: *recipe}
	var cats []models.Category

	g, gctx := errgroup.WithContext(ctx)
	db := s.db.WithContext(gctx)
	g.Go(func() error {
		return db.Where("recipe_name = ?", name).Order("ingredient").Find(&detail.Ingredients).Error
	})
	g.Go(func() error {
		return db.Where("recipe_name = ?", name).Order("step_nr").Find(&detail.Steps).Error
	})
	g.Go(func() error {
		return db.Where("recipe_name = ?", name).Order("image_nr").Find(&detail.Images).Error
	})
	g.Go(func() error {
		return db.Where("recipe_name = ?", name).Order("id").Find(&cats).Error
	})
	if err := g.Wait(); err != nil {
		return nil, classify(err)
	}

	detail.Categories = make([]string, len(cats))
	for i, c := range cats {
		detail.Categories[i] = c.Category
	}
	return detail, nil
}

// RecipeNames lists all recipe names alphabetically.
func (s *RecipeService) RecipeNames(ctx context.Context) ([]string, error) {
	names := []string{}
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).Order("name").Pluck("name", &names).Error; err != nil {
		return nil, classify(err)
	}
	return names, nil
}

// HomeSummary returns featured recipes (those with a cover image) and stats.
func (s *RecipeService) HomeSummary(ctx context.Context) (*types.HomeSummary, error) {
	db := s.db.WithContext(ctx)
	summary := &types.HomeSummary{AverageCookTime: defaultAverageCookTime}

	var rows []summaryRow
	err := db.Raw(`
SELECT r.name, r.description, r.default_portions, r.difficulty, r.cook_time,
       i.link, i.description AS image_description
FROM recipes r
JOIN images i ON r.name = i.recipe_name AND i.image_nr = 1
ORDER BY r.name
LIMIT ?`, featuredLimit).Scan(&rows).Error
	if err != nil {
		return nil, classify(err)
	}
	summary.Featured = make([]types.RecipeSummary, len(rows))
	for i, r := range rows {
		summary.Featured[i] = r.summary()
	}

	if err := db.Model(&models.Recipe{}).Count(&summary.TotalRecipes).Error; err != nil {
		return nil, classify(err)
	}

	var avg sql.NullFloat64
	if err := db.Model(&models.Recipe{}).Select("AVG(cook_time)").Row().Scan(&avg); err != nil {
		return nil, classify(err)
	}
	if avg.Valid && avg.Float64 > 0 {
		summary.AverageCookTime = int(math.Round(avg.Float64))
	}
	return summary, nil
}

// Dashboard returns the recipe count and the first recipes by name.
func (s *RecipeService) Dashboard(ctx context.Context) (*types.Dashboard, error) {
	db := s.db.WithContext(ctx)
	dash := &types.Dashboard{}
	if err := db.Model(&models.Recipe{}).Count(&dash.RecipeCount).Error; err != nil {
		return nil, classify(err)
	}
	if err := db.Select("name", "cook_time", "difficulty").Order("name").Limit(dashboardLimit).Find(&dash.RecentRecipes).Error; err != nil {
		return nil, classify(err)
	}
	return dash, nil
}

const enumLabels = `
SELECT e.enumlabel
FROM pg_enum e
JOIN pg_type t ON e.enumtypid = t.oid
WHERE t.typname = ?
ORDER BY e.enumsortorder`

// Lookups returns the option lists for the recipe form, read from the enum
// types on Postgres and from built-in defaults elsewhere.
func (s *RecipeService) Lookups(ctx context.Context) (*types.Lookups, error) {
	l := &types.Lookups{
		MeasurementUnits: models.DefaultMeasurementUnits,
		DifficultyLevels: models.DefaultDifficultyLevels,
		Categories:       models.DefaultCategories,
	}
	if !s.isPostgres() {
		return l, nil
	}

	db := s.db.WithContext(ctx)
	for typ, dst := range map[string]*[]string{
		"measurement_units": &l.MeasurementUnits,
		"difficulty":        &l.DifficultyLevels,
		"category":          &l.Categories,
	} {
		var labels []string
		if err := db.Raw(enumLabels, typ).Scan(&labels).Error; err != nil {
			return nil, classify(err)
		}
		if len(labels) > 0 {
			*dst = labels
		}
	}
	return l, nil
}

// PortionView is a recipe's ingredient list rescaled to a serving count.
type PortionView struct {
	Recipe      string              `json:"recipe"`
	Ingredients []models.Ingredient `json:"ingredients"`
	portions.State
}

// ScalePortions rescales the stored default amounts to the requested number
// of servings. Invalid input falls back to the recipe's default.
func (s *RecipeService) ScalePortions(ctx context.Context, name, requested string) (*PortionView, error) {
	recipe, err := s.GetRecipe(ctx, name)
	if err != nil {
		return nil, err
	}
	var ingredients []models.Ingredient
	if err := s.db.WithContext(ctx).Where("recipe_name = ?", name).Order("ingredient").Find(&ingredients).Error; err != nil {
		return nil, classify(err)
	}

	defaults := make([]float64, len(ingredients))
	for i, ing := range ingredients {
		defaults[i] = ing.Amount
	}
	state := portions.NewScaler(recipe.DefaultPortions, defaults).SetFromInput(requested)
	for i := range ingredients {
		ingredients[i].Amount = state.Amounts[i]
	}
	return &PortionView{Recipe: recipe.Name, Ingredients: ingredients, State: state}, nil
}

// classify leaves domain errors untouched and maps everything else through
// ClassifyDBError.
func classify(err error) error {
	var nf *NotFoundError
	var ve *ValidationError
	if errors.As(err, &nf) || errors.As(err, &ve) {
		return err
	}
	return ClassifyDBError(err)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
