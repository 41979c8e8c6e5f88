package nsgaiiwit

import (
	"math"
	"math/rand"

	"github.com/jpfeil/hubsampler/pkg/core"
	"github.com/jpfeil/hubsampler/pkg/utils"
)

// childGenerationStrategy turns a selected parent population into one
// child parameter proposal. It owns parent selection and the seeding
// contract; the crossover and mutation arithmetic is delegated to the
// injected operators, whose failures propagate unchanged.
type childGenerationStrategy struct {
	crossover     Crossover
	mutation      Mutation
	crossoverProb float64
	mutationProb  *float64 // nil: derive from search-space dimensionality
	rng           *core.RandomState
	dominates     func(study *core.Study, a, b *core.Trial) bool
}

func (c *childGenerationStrategy) propose(study *core.Study, space core.SearchSpace, parents []*core.Trial) (map[string]interface{}, error) {
	rng := c.rng.Rand()

	var child map[string]interface{}
	if rng.Float64() < c.crossoverProb && len(parents) >= c.crossover.NumParents() {
		selected := c.selectParents(study, parents, c.crossover.NumParents(), rng)
		crossed, err := c.crossover.Cross(selected, space, rng)
		if err != nil {
			return nil, err
		}
		child = crossed
	} else {
		// No crossover: the child inherits a single parent's
		// parameters and relies on mutation for variation.
		parent := parents[rng.Intn(len(parents))]
		child = make(map[string]interface{}, len(space))
		for _, name := range utils.SortedKeys(space) {
			if v, ok := parent.Params[name]; ok {
				child[name] = v
			}
		}
	}

	mutationProb := 1.0 / math.Max(1.0, float64(len(child)))
	if c.mutationProb != nil {
		mutationProb = *c.mutationProb
	}

	for _, name := range utils.SortedKeys(child) {
		if rng.Float64() >= mutationProb {
			continue
		}
		mutated, err := c.mutation.Mutate(space[name], rng)
		if err != nil {
			return nil, err
		}
		if mutated != nil {
			child[name] = mutated
		}
	}

	return child, nil
}

// selectParents picks n parents by independent binary tournaments
// under (constrained) domination.
func (c *childGenerationStrategy) selectParents(study *core.Study, population []*core.Trial, n int, rng *rand.Rand) []*core.Trial {
	parents := make([]*core.Trial, n)
	for i := range parents {
		parents[i] = c.selectParent(study, population, rng)
	}
	return parents
}

func (c *childGenerationStrategy) selectParent(study *core.Study, population []*core.Trial, rng *rand.Rand) *core.Trial {
	a := population[rng.Intn(len(population))]
	b := population[rng.Intn(len(population))]
	if c.dominates(study, b, a) {
		return b
	}
	return a
}
