// Package recipeform turns submitted admin recipe forms into recipe aggregates.
//
// Parsing is total: keys with a malformed index or an empty value are dropped
// rather than reported. Deciding whether the result may be saved is left to
// Validate, which lets the preview page render incomplete drafts.
package recipeform

import (
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/matprat/matprat/backend/internal/types"
)

const (
	ingredientNamePrefix   = "ingredient_name_"
	ingredientAmountPrefix = "ingredient_amount_"
	ingredientUnitPrefix   = "ingredient_unit_"
	ingredientNotePrefix   = "ingredient_note_"
	stepPrefix             = "step_"
	stepNotePrefix         = "step_note_"
	imageURLPrefix         = "image_url_"
	imageDescPrefix        = "image_desc_"

	defaultAmount   = 1.0
	defaultPortions = 1
	defaultCookTime = 0
)

// indexedField is a key carrying an ordinal suffix. suffix keeps the exact
// text so sibling fields (amount, note) are looked up under the same key.
type indexedField struct {
	n      int
	suffix string
}

// Parse decodes the indexed form encoding into a recipe aggregate.
func Parse(values url.Values) *types.RecipeInput {
	in := &types.RecipeInput{
		Mode:            parseMode(first(values, "mode")),
		OriginalName:    strings.TrimSpace(first(values, "originalName", "original_name")),
		Name:            strings.TrimSpace(first(values, "name")),
		Description:     strings.TrimSpace(first(values, "description")),
		DefaultPortions: ParseInt(first(values, "servings", "default_portions"), defaultPortions),
		Difficulty:      strings.TrimSpace(first(values, "difficulty")),
		CookTime:        ParseInt(first(values, "cook_time"), defaultCookTime),
	}
	if in.DefaultPortions < 1 {
		in.DefaultPortions = defaultPortions
	}

	for _, f := range indexedFields(values, ingredientNamePrefix, "") {
		name := strings.TrimSpace(values.Get(ingredientNamePrefix + f.suffix))
		if name == "" {
			continue
		}
		in.Ingredients = append(in.Ingredients, types.IngredientInput{
			Name:   name,
			Amount: ParseAmount(values.Get(ingredientAmountPrefix + f.suffix)),
			Unit:   strings.TrimSpace(values.Get(ingredientUnitPrefix + f.suffix)),
			Note:   strings.TrimSpace(values.Get(ingredientNotePrefix + f.suffix)),
		})
	}

	// step_note_N also starts with step_, so it is excluded explicitly.
	for _, f := range indexedFields(values, stepPrefix, "note_") {
		text := strings.TrimSpace(values.Get(stepPrefix + f.suffix))
		if text == "" {
			continue
		}
		step := types.StepInput{Text: text}
		if note := strings.TrimSpace(values.Get(stepNotePrefix + f.suffix)); note != "" {
			step.Note = &note
		}
		in.Steps = append(in.Steps, step)
	}

	for _, f := range indexedFields(values, imageURLPrefix, "") {
		link := strings.TrimSpace(values.Get(imageURLPrefix + f.suffix))
		if link == "" {
			continue
		}
		in.Images = append(in.Images, types.ImageInput{
			Link:        link,
			Description: strings.TrimSpace(values.Get(imageDescPrefix + f.suffix)),
		})
	}
	compactImages(in.Images)

	var cats []string
	cats = append(cats, values["categories"]...)
	cats = append(cats, values["categories[]"]...)
	in.Categories = normalizeCategories(cats)

	return in
}

// FromRequest applies the same normalization to a structured JSON body.
func FromRequest(req *types.RecipeRequest) *types.RecipeInput {
	portions := string(req.Servings)
	if strings.TrimSpace(portions) == "" {
		portions = string(req.DefaultPortions)
	}
	in := &types.RecipeInput{
		Mode:            parseMode(req.Mode),
		OriginalName:    strings.TrimSpace(req.OriginalName),
		Name:            strings.TrimSpace(req.Name),
		Description:     strings.TrimSpace(req.Description),
		DefaultPortions: ParseInt(portions, defaultPortions),
		Difficulty:      strings.TrimSpace(req.Difficulty),
		CookTime:        ParseInt(string(req.CookTime), defaultCookTime),
		Categories:      normalizeCategories(req.Categories),
	}
	if in.DefaultPortions < 1 {
		in.DefaultPortions = defaultPortions
	}
	for _, ing := range req.Ingredients {
		name := strings.TrimSpace(ing.Name)
		if name == "" {
			continue
		}
		in.Ingredients = append(in.Ingredients, types.IngredientInput{
			Name:   name,
			Amount: ParseAmount(string(ing.Amount)),
			Unit:   strings.TrimSpace(ing.Unit),
			Note:   strings.TrimSpace(ing.Note),
		})
	}
	for _, s := range req.Steps {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		step := types.StepInput{Text: text}
		if note := strings.TrimSpace(s.Note); note != "" {
			step.Note = &note
		}
		in.Steps = append(in.Steps, step)
	}
	for _, img := range req.Images {
		link := strings.TrimSpace(img.Link)
		if link == "" {
			continue
		}
		in.Images = append(in.Images, types.ImageInput{
			Link:        link,
			Description: strings.TrimSpace(img.Description),
		})
	}
	compactImages(in.Images)
	return in
}

// ParseInt reads a leading base-10 integer the way form inputs are usually
// typed ("45", "45 min"). Missing, unparsable and zero values fall back to def.
func ParseInt(raw string, def int) int {
	s := strings.TrimSpace(raw)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil || n == 0 {
		return def
	}
	return n
}

// ParseAmount reads the leading decimal number of an ingredient amount
// ("2.5", "1,5 dl"). Empty, unparsable, zero and non-finite amounts become
// 1.0. A decimal comma is accepted.
func ParseAmount(raw string) float64 {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
		digits++
	}
	if end < len(s) && s[end] == '.' {
		end++
		for end < len(s) && s[end] >= '0' && s[end] <= '9' {
			end++
			digits++
		}
	}
	if digits == 0 {
		return defaultAmount
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil || v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return defaultAmount
	}
	return v
}

// indexedFields returns the keys starting with prefix whose remainder is a
// positive integer, ordered by that integer. Keys containing exclude after
// the prefix are ignored.
func indexedFields(values url.Values, prefix, exclude string) []indexedField {
	var fields []indexedField
	for key := range values {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		suffix := key[len(prefix):]
		if exclude != "" && strings.Contains(suffix, exclude) {
			continue
		}
		n, err := strconv.Atoi(suffix)
		if err != nil || n < 1 {
			continue
		}
		fields = append(fields, indexedField{n: n, suffix: suffix})
	}
	sort.Slice(fields, func(i, j int) bool {
		if fields[i].n != fields[j].n {
			return fields[i].n < fields[j].n
		}
		return fields[i].suffix < fields[j].suffix
	})
	return fields
}

// compactImages renumbers images 1..k in submission order.
func compactImages(images []types.ImageInput) {
	for i := range images {
		images[i].ImageNr = i + 1
	}
}

func normalizeCategories(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, c := range raw {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

func parseMode(raw string) string {
	if strings.TrimSpace(raw) == types.ModeEdit {
		return types.ModeEdit
	}
	return types.ModeCreate
}

func first(values url.Values, keys ...string) string {
	for _, k := range keys {
		if v := values.Get(k); v != "" {
			return v
		}
	}
	return ""
}
