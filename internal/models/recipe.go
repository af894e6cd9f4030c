package models

// Recipe is the aggregate root. Name is both the primary key and the URL slug,
// so renames cascade into every child table.
type Recipe struct {
	Name            string `gorm:"primaryKey;size:255" json:"name"`
	Description     string `gorm:"type:text" json:"description"`
	DefaultPortions int    `gorm:"not null;default:1;check:default_portions >= 1" json:"default_portions"`
	Difficulty      string `gorm:"size:50" json:"difficulty"`
	CookTime        int    `gorm:"not null;default:0" json:"cook_time"`

	Ingredients []Ingredient `gorm:"foreignKey:RecipeName;references:Name;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"ingredients,omitempty"`
	Steps       []Step       `gorm:"foreignKey:RecipeName;references:Name;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"steps,omitempty"`
	Images      []Image      `gorm:"foreignKey:RecipeName;references:Name;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"images,omitempty"`
	Categories  []Category   `gorm:"foreignKey:RecipeName;references:Name;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"categories,omitempty"`
}

func (Recipe) TableName() string {
	return "recipes"
}

type Ingredient struct {
	ID         uint    `gorm:"primaryKey" json:"-"`
	RecipeName string  `gorm:"size:255;not null;index" json:"recipe_name"`
	Ingredient string  `gorm:"not null" json:"ingredient"`
	Amount     float64 `gorm:"not null;check:amount >= 0.01" json:"amount"`
	Unit       string  `gorm:"size:50" json:"unit"`
	Note       string  `json:"note"`
}

func (Ingredient) TableName() string {
	return "ingredients"
}

// Step numbers are a contiguous 1..N sequence per recipe.
type Step struct {
	ID          uint    `gorm:"primaryKey" json:"-"`
	RecipeName  string  `gorm:"size:255;not null;uniqueIndex:idx_steps_recipe_step" json:"recipe_name"`
	StepNr      int     `gorm:"not null;uniqueIndex:idx_steps_recipe_step" json:"step_nr"`
	Description string  `gorm:"type:text;not null" json:"description"`
	Note        *string `json:"note"`
}

func (Step) TableName() string {
	return "steps"
}

// Image number 1 is the cover image.
type Image struct {
	ID          uint   `gorm:"primaryKey" json:"-"`
	RecipeName  string `gorm:"size:255;not null;uniqueIndex:idx_images_recipe_image" json:"recipe_name"`
	ImageNr     int    `gorm:"not null;uniqueIndex:idx_images_recipe_image" json:"image_nr"`
	Link        string `gorm:"not null" json:"link"`
	Description string `json:"description"`
}

func (Image) TableName() string {
	return "images"
}

type Category struct {
	ID         uint   `gorm:"primaryKey" json:"-"`
	RecipeName string `gorm:"size:255;not null;index" json:"recipe_name"`
	Category   string `gorm:"size:100;not null" json:"category"`
}

func (Category) TableName() string {
	return "categories"
}
