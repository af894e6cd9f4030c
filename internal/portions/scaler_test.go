package portions

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScaleWithinRoundingTolerance(t *testing.T) {
	amounts := []float64{0.01, 0.3, 1, 2.5, 3.33, 12.75, 250}
	for _, def := range []int{1, 2, 3, 4, 7} {
		for p := MinPortions; p <= MaxPortions; p++ {
			for _, a := range amounts {
				exact := float64(p) / float64(def) * a
				got := Scale(p, def, a)
				assert.LessOrEqual(t, math.Abs(got-exact), 0.05+1e-9, "p=%d def=%d a=%v", p, def, a)
			}
		}
	}
}

func TestScaleIdentity(t *testing.T) {
	for _, a := range []float64{0.5, 1, 2.5, 10} {
		assert.Equal(t, a, Scale(4, 4, a))
	}
}

func TestScaleRoundsHalfUp(t *testing.T) {
	assert.Equal(t, 0.2, Scale(1, 1, 0.15))
	assert.Equal(t, 1.3, Scale(1, 2, 2.5))
	assert.Equal(t, 0.7, Scale(1, 3, 2))
}

func TestScalerIsIdempotent(t *testing.T) {
	s := NewScaler(4, []float64{2, 0.75, 3})

	direct := s.SetPortions(8).Amounts
	again := s.SetPortions(8).Amounts
	assert.Equal(t, direct, again)

	s.SetPortions(3)
	s.SetPortions(7)
	s.SetPortions(5)
	assert.Equal(t, direct, s.SetPortions(8).Amounts, "no drift from intermediate values")
	assert.Equal(t, []float64{4, 1.5, 6}, direct)
}

func TestScalerClampsAndTogglesControls(t *testing.T) {
	s := NewScaler(2, []float64{1})

	st := s.SetPortions(150)
	assert.Equal(t, MaxPortions, st.Portions)
	assert.False(t, st.CanIncrement)
	assert.True(t, st.CanDecrement)

	st = s.Increment()
	assert.Equal(t, MaxPortions, st.Portions)

	st = s.SetPortions(1)
	assert.False(t, st.CanDecrement)
	assert.True(t, st.CanIncrement)

	st = s.Decrement()
	assert.Equal(t, MinPortions, st.Portions)

	st = s.SetPortions(5)
	assert.True(t, st.CanIncrement)
	assert.True(t, st.CanDecrement)
}

func TestScalerInvalidInputResetsToDefault(t *testing.T) {
	s := NewScaler(6, []float64{3})
	s.SetPortions(10)

	for _, raw := range []string{"", "abc", "0", "-4", "2.5"} {
		st := s.SetFromInput(raw)
		assert.Equal(t, 6, st.Portions, "input %q", raw)
		assert.Equal(t, []float64{3}, st.Amounts)
		s.SetPortions(10)
	}

	assert.Equal(t, 12, s.SetFromInput(" 12 ").Portions)
}
