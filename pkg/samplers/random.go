// Package samplers provides the baseline random sampler and shared
// distribution-drawing helpers used by the model-based samplers in its
// subpackages.
package samplers

import (
	"math"
	"math/rand"

	"github.com/jpfeil/hubsampler/pkg/core"
	"github.com/jpfeil/hubsampler/pkg/errors"
	"github.com/jpfeil/hubsampler/pkg/utils"
)

// RandomSampler draws every parameter independently and uniformly from
// its distribution. It is both a usable sampler and the fallback the
// model-based samplers delegate independent sampling to.
type RandomSampler struct {
	rng *core.RandomState
}

// NewRandomSampler creates a random sampler. A non-positive seed
// selects a time-based seed.
func NewRandomSampler(seed int64) *RandomSampler {
	return &RandomSampler{rng: core.NewRandomState(seed)}
}

func (s *RandomSampler) InferRelativeSearchSpace(study *core.Study, trial *core.Trial) core.SearchSpace {
	return core.SearchSpace{}
}

func (s *RandomSampler) SampleRelative(study *core.Study, trial *core.Trial, space core.SearchSpace) (map[string]interface{}, error) {
	return nil, nil
}

func (s *RandomSampler) SampleIndependent(study *core.Study, trial *core.Trial, name string, dist core.Distribution) (interface{}, error) {
	return Draw(dist, s.rng.Rand())
}

func (s *RandomSampler) ReseedRNG() {
	s.rng.Reseed()
}

// Draw samples one value uniformly from a distribution's domain,
// honoring log scale and step discretization.
func Draw(dist core.Distribution, rng *rand.Rand) (interface{}, error) {
	switch d := dist.(type) {
	case core.FloatDistribution:
		return drawFloat(d, rng), nil
	case core.IntDistribution:
		return drawInt(d, rng), nil
	case core.CategoricalDistribution:
		if len(d.Choices) == 0 {
			return nil, errors.New(errors.InvalidInput, "categorical distribution has no choices")
		}
		return d.Choices[rng.Intn(len(d.Choices))], nil
	}
	return nil, errors.Newf(errors.InvalidInput, "unknown distribution type %T", dist)
}

func drawFloat(d core.FloatDistribution, rng *rand.Rand) float64 {
	if d.Log {
		v := math.Exp(uniform(rng, math.Log(d.Low), math.Log(d.High)))
		return utils.Clamp(v, d.Low, d.High)
	}
	v := uniform(rng, d.Low, d.High)
	if d.Step > 0 {
		v = d.Low + math.Round((v-d.Low)/d.Step)*d.Step
	}
	return utils.Clamp(v, d.Low, d.High)
}

func drawInt(d core.IntDistribution, rng *rand.Rand) int {
	if d.Log {
		v := int(math.Round(math.Exp(uniform(rng, math.Log(float64(d.Low)), math.Log(float64(d.High))))))
		return utils.Clamp(v, d.Low, d.High)
	}
	step := d.Step
	if step < 1 {
		step = 1
	}
	n := (d.High-d.Low)/step + 1
	return d.Low + rng.Intn(n)*step
}

func uniform(rng *rand.Rand, low, high float64) float64 {
	return low + rng.Float64()*(high-low)
}
