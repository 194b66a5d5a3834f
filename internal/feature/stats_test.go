package feature

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	assert.Zero(t, mean(nil))
	assert.InDelta(t, 3.0, mean([]float64{1, 2, 3, 4, 5}), 1e-12)
}

func TestStdFlavors(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}

	assert.InDelta(t, 2.0, populationStd(values), 1e-12)
	assert.InDelta(t, math.Sqrt(32.0/7.0), sampleStd(values), 1e-12)

	assert.Zero(t, populationStd(nil))
	assert.Zero(t, sampleStd([]float64{42}))
}

func TestMedian(t *testing.T) {
	assert.Zero(t, median(nil))
	assert.InDelta(t, 3.0, median([]float64{5, 1, 3}), 1e-12)
	assert.InDelta(t, 2.5, median([]float64{4, 1, 2, 3}), 1e-12)
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, clamp01(-0.5))
	assert.Equal(t, 1.0, clamp01(1.5))
	assert.Equal(t, 0.42, clamp01(0.42))
	assert.Equal(t, 0.0, clamp01(math.NaN()))
}
