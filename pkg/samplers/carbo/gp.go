package carbo

import (
	"math"
)

// gaussianProcess is a lightweight kernel-smoother surrogate over the
// unit cube. A fresh instance is built per relative-sampling call from
// the completed-trial snapshot, so no locking is needed; suggestion
// calls are serialized by the engine.
type gaussianProcess struct {
	x     [][]float64
	y     []float64
	sigma float64 // RBF kernel width
	noise float64 // observation-noise floor on predicted variance
}

// rbfKernel measures similarity between two points, decaying
// exponentially with squared distance.
func (gp *gaussianProcess) rbfKernel(x1, x2 []float64) float64 {
	var sum float64
	for i := range x1 {
		diff := x1[i] - x2[i]
		sum += diff * diff
	}
	return math.Exp(-sum / (2 * gp.sigma * gp.sigma))
}

// add appends one observation. The input is copied so later candidate
// reuse cannot alias stored points.
func (gp *gaussianProcess) add(x []float64, y float64) {
	point := make([]float64, len(x))
	copy(point, x)
	gp.x = append(gp.x, point)
	gp.y = append(gp.y, y)
}

// predict estimates the mean and variance at a point. With no
// observations the prior (0, 1) is returned.
func (gp *gaussianProcess) predict(x []float64) (mean, variance float64) {
	if len(gp.x) == 0 {
		return 0, 1
	}

	k := make([]float64, len(gp.x))
	var kSum float64
	for i := range gp.x {
		k[i] = gp.rbfKernel(x, gp.x[i])
		kSum += k[i]
	}

	if kSum > 0 {
		for i := range gp.x {
			mean += k[i] * gp.y[i]
		}
		mean /= kSum
	}

	// Uncertainty shrinks as kernel mass near x grows.
	variance = 1.0
	n := float64(len(gp.x))
	for i := range gp.x {
		variance -= k[i] * k[i] / n
	}
	if variance < gp.noise {
		variance = gp.noise
	}
	return mean, variance
}
