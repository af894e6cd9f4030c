package types

import (
	"encoding/json"
	"strings"
)

// LooseString accepts either a JSON string or a JSON number and keeps its text,
// so numeric fields can go through the same coercion as form values.
type LooseString string

func (l *LooseString) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*l = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*l = LooseString(s)
		return nil
	}
	*l = LooseString(raw)
	return nil
}

// StringList accepts a single string or an array of strings.
type StringList []string

func (s *StringList) UnmarshalJSON(b []byte) error {
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		*s = StringList{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return err
	}
	*s = many
	return nil
}

// RecipeRequest is the structured JSON alternative to the indexed form fields.
type RecipeRequest struct {
	Mode            string              `json:"mode"`
	OriginalName    string              `json:"original_name"`
	Name            string              `json:"name"`
	Description     string              `json:"description"`
	Servings        LooseString         `json:"servings"`
	DefaultPortions LooseString         `json:"default_portions"`
	Difficulty      string              `json:"difficulty"`
	CookTime        LooseString         `json:"cook_time"`
	Ingredients     []IngredientRequest `json:"ingredients"`
	Steps           []StepRequest       `json:"steps"`
	Images          []ImageRequest      `json:"images"`
	Categories      StringList          `json:"categories"`
	DraftID         string              `json:"draft_id"`
}

type IngredientRequest struct {
	Name   string      `json:"name"`
	Amount LooseString `json:"amount"`
	Unit   string      `json:"unit"`
	Note   string      `json:"note"`
}

type StepRequest struct {
	Text string `json:"text"`
	Note string `json:"note"`
}

type ImageRequest struct {
	Link        string `json:"link"`
	Description string `json:"description"`
}

type LoginRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}
