package models

// Option lists used when the database has no enum types to read them from.
var (
	DefaultMeasurementUnits = []string{
		"gram", "litre", "dl", "ts", "ss", "small", "medium", "large",
		"cups", "tsp", "tbsp", "ml", "g", "kg", "oz", "lbs", "pcs",
	}
	DefaultDifficultyLevels = []string{"easy", "intermediate", "medium", "hard"}
	DefaultCategories       = []string{"breakfast", "lunch", "dinner", "dessert", "snack", "baking"}
)

// ExtraMeasurementUnits are appended to the measurement_units enum by the
// admin CLI when missing.
var ExtraMeasurementUnits = []string{"cups", "tsp", "tbsp", "ml", "g", "kg", "oz", "lbs", "pcs"}

// AllModels lists every table model in migration order.
func AllModels() []interface{} {
	return []interface{}{
		&Recipe{},
		&Ingredient{},
		&Step{},
		&Image{},
		&Category{},
		&User{},
	}
}
