package nsgaiiwit

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpfeil/hubsampler/pkg/core"
	"github.com/jpfeil/hubsampler/pkg/storage"
)

func parentTrial(number int, x float64, y int, values ...float64) *core.Trial {
	return &core.Trial{
		ID:     number,
		Number: number,
		State:  core.TrialStateComplete,
		Params: map[string]interface{}{"x": x, "y": y},
		Values: values,
	}
}

func newChildStrategy(t *testing.T, opts ...Option) (*Sampler, *childGenerationStrategy) {
	t.Helper()
	sampler, err := New(append([]Option{WithPopulationSize(5), WithSeed(11)}, opts...)...)
	require.NoError(t, err)
	return sampler, sampler.child
}

func TestChildProposal(t *testing.T) {
	study := core.NewStudy(storage.NewMemoryStorage())

	t.Run("without crossover the child inherits one parent", func(t *testing.T) {
		_, child := newChildStrategy(t, WithCrossoverProb(0), WithMutationProb(0))

		parents := []*core.Trial{
			parentTrial(0, 0.25, 3, 1.0),
			parentTrial(1, 0.75, 7, 2.0),
		}
		proposal, err := child.propose(study, testSpace, parents)
		require.NoError(t, err)
		require.Len(t, proposal, 2)

		matchesParent := func(p *core.Trial) bool {
			return proposal["x"] == p.Params["x"] && proposal["y"] == p.Params["y"]
		}
		assert.True(t, matchesParent(parents[0]) || matchesParent(parents[1]))
	})

	t.Run("crossover mixes both parents parameter-wise", func(t *testing.T) {
		_, child := newChildStrategy(t, WithCrossoverProb(1), WithMutationProb(0))

		parents := []*core.Trial{
			parentTrial(0, 0.25, 3, 1.0),
			parentTrial(1, 0.75, 7, 2.0),
		}
		proposal, err := child.propose(study, testSpace, parents)
		require.NoError(t, err)
		require.Len(t, proposal, 2)
		assert.Contains(t, []interface{}{0.25, 0.75}, proposal["x"])
		assert.Contains(t, []interface{}{3, 7}, proposal["y"])
	})

	t.Run("mutation keeps every parameter inside its domain", func(t *testing.T) {
		_, child := newChildStrategy(t, WithMutationProb(1))

		parents := []*core.Trial{
			parentTrial(0, 0.25, 3, 1.0),
			parentTrial(1, 0.75, 7, 2.0),
		}
		for i := 0; i < 50; i++ {
			proposal, err := child.propose(study, testSpace, parents)
			require.NoError(t, err)
			for name, value := range proposal {
				assert.True(t, testSpace[name].Contains(value),
					"parameter %s=%v escaped its domain", name, value)
			}
		}
	})
}

func TestBinaryTournament(t *testing.T) {
	study := core.NewStudy(storage.NewMemoryStorage())
	_, child := newChildStrategy(t)

	good := parentTrial(0, 0.1, 1, 0.0)
	bad := parentTrial(1, 0.9, 9, 10.0)
	population := []*core.Trial{good, bad}

	rng := rand.New(rand.NewSource(5))
	goodCount := 0
	const rounds = 400
	for i := 0; i < rounds; i++ {
		if child.selectParent(study, population, rng) == good {
			goodCount++
		}
	}
	// The dominating trial wins every mixed tournament, losing only
	// when both draws pick the loser.
	assert.Greater(t, goodCount, rounds/2)
}

func TestUniformCrossover(t *testing.T) {
	parents := []*core.Trial{
		parentTrial(0, 0.25, 3, 1.0),
		parentTrial(1, 0.75, 7, 2.0),
	}

	t.Run("zero swapping probability copies the first parent", func(t *testing.T) {
		rng := rand.New(rand.NewSource(1))
		child, err := UniformCrossover{SwappingProb: 0}.Cross(parents, testSpace, rng)
		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{"x": 0.25, "y": 3}, child)
	})

	t.Run("unit swapping probability copies the second parent", func(t *testing.T) {
		rng := rand.New(rand.NewSource(1))
		child, err := UniformCrossover{SwappingProb: 1}.Cross(parents, testSpace, rng)
		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{"x": 0.75, "y": 7}, child)
	})

	t.Run("missing parent parameters are skipped", func(t *testing.T) {
		sparse := []*core.Trial{
			{Number: 0, State: core.TrialStateComplete, Params: map[string]interface{}{"x": 0.5}},
			{Number: 1, State: core.TrialStateComplete, Params: map[string]interface{}{"x": 0.6}},
		}
		rng := rand.New(rand.NewSource(1))
		child, err := UniformCrossover{SwappingProb: 0}.Cross(sparse, testSpace, rng)
		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{"x": 0.5}, child)
	})

	t.Run("fewer than two parents is rejected", func(t *testing.T) {
		rng := rand.New(rand.NewSource(1))
		_, err := UniformCrossover{}.Cross(parents[:1], testSpace, rng)
		assert.Error(t, err)
	})
}
