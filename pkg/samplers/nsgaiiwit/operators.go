package nsgaiiwit

import (
	"math/rand"

	"github.com/jpfeil/hubsampler/pkg/core"
	"github.com/jpfeil/hubsampler/pkg/errors"
	"github.com/jpfeil/hubsampler/pkg/samplers"
	"github.com/jpfeil/hubsampler/pkg/utils"
)

// Crossover combines parent parameter sets into a child proposal.
// Implementations are interchangeable strategy objects injected at
// sampler construction.
type Crossover interface {
	// NumParents reports how many parents Cross expects.
	NumParents() int

	// Cross produces a child parameter assignment covering the given
	// search space from the selected parents.
	Cross(parents []*core.Trial, space core.SearchSpace, rng *rand.Rand) (map[string]interface{}, error)
}

// Mutation perturbs a single parameter of a child proposal.
type Mutation interface {
	// Mutate returns a replacement value drawn from the parameter's
	// distribution.
	Mutate(dist core.Distribution, rng *rand.Rand) (interface{}, error)
}

// UniformCrossover inherits each parameter from the first parent,
// swapping in the second parent's value with probability SwappingProb.
type UniformCrossover struct {
	SwappingProb float64
}

func (c UniformCrossover) NumParents() int {
	return 2
}

func (c UniformCrossover) Cross(parents []*core.Trial, space core.SearchSpace, rng *rand.Rand) (map[string]interface{}, error) {
	if len(parents) < 2 {
		return nil, errors.Newf(errors.InvalidInput, "uniform crossover needs 2 parents, got %d", len(parents))
	}

	child := make(map[string]interface{}, len(space))
	for _, name := range utils.SortedKeys(space) {
		source := parents[0]
		if rng.Float64() < c.SwappingProb {
			source = parents[1]
		}
		value, ok := source.Params[name]
		if !ok {
			// Parent never sampled this parameter; the mutation pass
			// or independent sampling fills the gap.
			continue
		}
		child[name] = value
	}
	return child, nil
}

// UniformMutation resamples a parameter uniformly within its domain.
type UniformMutation struct{}

func (m UniformMutation) Mutate(dist core.Distribution, rng *rand.Rand) (interface{}, error) {
	return samplers.Draw(dist, rng)
}
