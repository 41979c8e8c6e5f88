package carbo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGaussianProcess(t *testing.T) {
	t.Run("empty surrogate returns the prior", func(t *testing.T) {
		gp := &gaussianProcess{sigma: 0.5, noise: 1e-4}
		mean, variance := gp.predict([]float64{0.5})
		assert.Equal(t, 0.0, mean)
		assert.Equal(t, 1.0, variance)
	})

	t.Run("prediction at an observed point recovers the observation", func(t *testing.T) {
		gp := &gaussianProcess{sigma: 0.5, noise: 1e-4}
		gp.add([]float64{0.3}, 2.5)

		mean, variance := gp.predict([]float64{0.3})
		assert.InDelta(t, 2.5, mean, 1e-9)
		// Full kernel mass at the point collapses variance to the floor.
		assert.Equal(t, gp.noise, variance)
	})

	t.Run("prediction interpolates between observations", func(t *testing.T) {
		gp := &gaussianProcess{sigma: 0.3, noise: 1e-4}
		gp.add([]float64{0.0}, 0.0)
		gp.add([]float64{1.0}, 1.0)

		nearLow, _ := gp.predict([]float64{0.1})
		nearHigh, _ := gp.predict([]float64{0.9})
		assert.Less(t, nearLow, 0.5)
		assert.Greater(t, nearHigh, 0.5)
	})

	t.Run("uncertainty grows away from observations", func(t *testing.T) {
		gp := &gaussianProcess{sigma: 0.1, noise: 1e-4}
		gp.add([]float64{0.0}, 0.0)

		_, nearVar := gp.predict([]float64{0.01})
		_, farVar := gp.predict([]float64{1.0})
		assert.Less(t, nearVar, farVar)
	})

	t.Run("observations are copied on add", func(t *testing.T) {
		gp := &gaussianProcess{sigma: 0.5, noise: 1e-4}
		point := []float64{0.2}
		gp.add(point, 1.0)
		point[0] = 0.9

		mean, _ := gp.predict([]float64{0.2})
		assert.InDelta(t, 1.0, mean, 1e-9)
	})
}

func TestAcquisitionFunctions(t *testing.T) {
	t.Run("lower confidence bound subtracts weighted uncertainty", func(t *testing.T) {
		params := AcquisitionParams{Beta: 2.0}
		assert.InDelta(t, 1.0-2.0*0.5, LowerConfidenceBound(1.0, 0.25, params), 1e-12)
	})

	t.Run("higher beta rewards uncertainty more", func(t *testing.T) {
		cautious := LowerConfidenceBound(1.0, 0.25, AcquisitionParams{Beta: 1.0})
		greedy := LowerConfidenceBound(1.0, 0.25, AcquisitionParams{Beta: 4.0})
		assert.Less(t, greedy, cautious)
	})

	t.Run("expected improvement prefers lower predicted means", func(t *testing.T) {
		params := AcquisitionParams{Xi: 0.01, BestSoFar: 0.0}
		better := ExpectedImprovement(-1.0, 0.25, params)
		worse := ExpectedImprovement(1.0, 0.25, params)
		assert.Less(t, better, worse)
	})

	t.Run("expected improvement is zero without uncertainty", func(t *testing.T) {
		params := AcquisitionParams{Xi: 0.01, BestSoFar: 0.0}
		assert.Equal(t, 0.0, ExpectedImprovement(5.0, 0.0, params))
	})

	t.Run("normal helpers match known values", func(t *testing.T) {
		assert.InDelta(t, 0.5, normalCDF(0), 1e-12)
		assert.InDelta(t, 1/math.Sqrt(2*math.Pi), normalPDF(0), 1e-12)
	})
}
