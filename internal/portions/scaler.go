// Package portions rescales ingredient amounts to a chosen number of servings.
package portions

import (
	"math"
	"strconv"
	"strings"
)

const (
	MinPortions = 1
	MaxPortions = 99
)

// Scale returns amount rescaled from defaultPortions to portions, rounded to
// one decimal place with halves rounded away from zero.
func Scale(portions, defaultPortions int, amount float64) float64 {
	if defaultPortions < 1 {
		defaultPortions = 1
	}
	scaled := float64(portions) / float64(defaultPortions) * amount
	return math.Round((scaled+epsilon(scaled))*10) / 10
}

// epsilon nudges values like 0.15, which are stored just below the half, onto
// the side the user expects.
func epsilon(v float64) float64 {
	if v < 0 {
		return -1e-9
	}
	return 1e-9
}

// State is what a portion control displays.
type State struct {
	Portions        int       `json:"portions"`
	DefaultPortions int       `json:"default_portions"`
	Amounts         []float64 `json:"amounts"`
	CanIncrement    bool      `json:"can_increment"`
	CanDecrement    bool      `json:"can_decrement"`
}

// Scaler holds the serving count for one recipe view. The default count and
// amounts are fixed at construction and every recomputation starts from them,
// so repeated changes never accumulate rounding error.
type Scaler struct {
	defaultPortions int
	defaultAmounts  []float64
	current         int
}

func NewScaler(defaultPortions int, defaultAmounts []float64) *Scaler {
	if defaultPortions < 1 {
		defaultPortions = 1
	}
	amounts := make([]float64, len(defaultAmounts))
	copy(amounts, defaultAmounts)
	return &Scaler{
		defaultPortions: defaultPortions,
		defaultAmounts:  amounts,
		current:         clamp(defaultPortions),
	}
}

// SetPortions moves to n servings. Non-positive values reset to the default;
// anything else is clamped to [MinPortions, MaxPortions].
func (s *Scaler) SetPortions(n int) State {
	if n < 1 {
		n = s.defaultPortions
	}
	s.current = clamp(n)
	return s.State()
}

// SetFromInput handles direct text entry.
func (s *Scaler) SetFromInput(raw string) State {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		n = 0
	}
	return s.SetPortions(n)
}

func (s *Scaler) Increment() State {
	return s.SetPortions(s.current + 1)
}

func (s *Scaler) Decrement() State {
	if s.current <= MinPortions {
		return s.State()
	}
	return s.SetPortions(s.current - 1)
}

func (s *Scaler) Portions() int {
	return s.current
}

func (s *Scaler) Amounts() []float64 {
	out := make([]float64, len(s.defaultAmounts))
	for i, a := range s.defaultAmounts {
		out[i] = Scale(s.current, s.defaultPortions, a)
	}
	return out
}

func (s *Scaler) State() State {
	return State{
		Portions:        s.current,
		DefaultPortions: s.defaultPortions,
		Amounts:         s.Amounts(),
		CanIncrement:    s.current < MaxPortions,
		CanDecrement:    s.current > MinPortions,
	}
}

func clamp(n int) int {
	if n < MinPortions {
		return MinPortions
	}
	if n > MaxPortions {
		return MaxPortions
	}
	return n
}
