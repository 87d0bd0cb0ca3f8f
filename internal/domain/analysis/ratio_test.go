package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentChange_BothZero(t *testing.T) {
	c := PercentChange(2021, 2022, 0, 0)

	assert.Equal(t, ChangePercent, c.Kind)
	assert.Equal(t, 0.0, c.Percent)
	assert.False(t, c.Positive())
	assert.False(t, c.Negative())
}

func TestPercentChange_NewOccurrence(t *testing.T) {
	c := PercentChange(2021, 2022, 0, 7)

	assert.Equal(t, ChangeNewOccurrence, c.Kind)
	assert.True(t, c.Positive())
	assert.True(t, c.Exceeds(20))
	assert.True(t, c.Exceeds(1e9), "a new occurrence exceeds any threshold")
}

func TestPercentChange_Numeric(t *testing.T) {
	c := PercentChange(2021, 2022, 10, 13)
	assert.Equal(t, ChangePercent, c.Kind)
	assert.InDelta(t, 30.0, c.Percent, 1e-9)

	c = PercentChange(2021, 2022, 10, 5)
	assert.InDelta(t, -50.0, c.Percent, 1e-9)
	assert.True(t, c.Negative())
	assert.True(t, c.Exceeds(20))
	assert.False(t, c.Exceeds(50))
}

func TestShare(t *testing.T) {
	assert.Equal(t, 0.0, Share(5, 0), "zero denominator yields zero share")
	assert.InDelta(t, 25.0, Share(1, 4), 1e-9)
	assert.InDelta(t, 100.0, Share(4, 4), 1e-9)
}
