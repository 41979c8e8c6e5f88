package carbo

import (
	"math"

	"github.com/jpfeil/hubsampler/pkg/core"
	"github.com/jpfeil/hubsampler/pkg/utils"
)

// unitValue maps an external parameter value into [0, 1], using log
// scale for log distributions. Categorical distributions are excluded
// from the relative space, so only numeric kinds appear here.
func unitValue(dist core.Distribution, value interface{}) (float64, bool) {
	v, ok := floatOf(value)
	if !ok {
		return 0, false
	}

	switch d := dist.(type) {
	case core.FloatDistribution:
		return toUnit(v, d.Low, d.High, d.Log), true
	case core.IntDistribution:
		return toUnit(v, float64(d.Low), float64(d.High), d.Log), true
	}
	return 0, false
}

// externalValue maps a unit-cube coordinate back into the
// distribution's external domain, applying step and integer rounding.
func externalValue(dist core.Distribution, u float64) interface{} {
	u = utils.Clamp(u, 0, 1)

	switch d := dist.(type) {
	case core.FloatDistribution:
		v := fromUnit(u, d.Low, d.High, d.Log)
		if d.Step > 0 {
			v = d.Low + math.Round((v-d.Low)/d.Step)*d.Step
		}
		return utils.Clamp(v, d.Low, d.High)
	case core.IntDistribution:
		v := fromUnit(u, float64(d.Low), float64(d.High), d.Log)
		step := d.Step
		if step < 1 {
			step = 1
		}
		i := d.Low + int(math.Round((v-float64(d.Low))/float64(step)))*step
		return utils.Clamp(i, d.Low, d.High)
	}
	return nil
}

func toUnit(v, low, high float64, log bool) float64 {
	if log {
		v, low, high = math.Log(v), math.Log(low), math.Log(high)
	}
	if high == low {
		return 0
	}
	return utils.Clamp((v-low)/(high-low), 0, 1)
}

func fromUnit(u, low, high float64, log bool) float64 {
	if log {
		return math.Exp(math.Log(low) + u*(math.Log(high)-math.Log(low)))
	}
	return low + u*(high-low)
}

func floatOf(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	}
	return 0, false
}
