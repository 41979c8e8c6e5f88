package carbo

import "math"

// AcquisitionParams carries the knobs acquisition functions read.
type AcquisitionParams struct {
	// Beta weighs the uncertainty bonus in LowerConfidenceBound.
	Beta float64

	// Xi is the minimum-improvement margin used by
	// ExpectedImprovement.
	Xi float64

	// BestSoFar is the best (lowest) standardized objective observed.
	BestSoFar float64
}

// AcquisitionFunc scores a candidate given the surrogate's prediction.
// Lower scores indicate more promising points; the sampler minimizes
// internally regardless of the study direction.
type AcquisitionFunc func(mean, variance float64, params AcquisitionParams) float64

// LowerConfidenceBound trades off the predicted mean against the
// prediction uncertainty: mean − Beta·sqrt(variance).
func LowerConfidenceBound(mean, variance float64, params AcquisitionParams) float64 {
	return mean - params.Beta*math.Sqrt(variance)
}

// ExpectedImprovement scores the expected magnitude of improvement
// over the incumbent, negated so that lower remains better.
func ExpectedImprovement(mean, variance float64, params AcquisitionParams) float64 {
	sigma := math.Sqrt(variance)
	if sigma == 0 {
		return 0
	}
	z := (params.BestSoFar - params.Xi - mean) / sigma
	ei := (params.BestSoFar-params.Xi-mean)*normalCDF(z) + sigma*normalPDF(z)
	return -ei
}

func normalCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

func normalPDF(x float64) float64 {
	return math.Exp(-x*x/2) / math.Sqrt(2*math.Pi)
}
