package carbo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpfeil/hubsampler/pkg/core"
	"github.com/jpfeil/hubsampler/pkg/errors"
	"github.com/jpfeil/hubsampler/pkg/storage"
)

var testSpace = core.SearchSpace{
	"lr":     core.FloatDistribution{Low: 1e-4, High: 1e-1, Log: true},
	"layers": core.IntDistribution{Low: 1, High: 8},
}

func newTestStudy(t *testing.T, s *Sampler) *core.Study {
	t.Helper()
	return core.NewStudy(storage.NewMemoryStorage(), core.WithSampler(s))
}

func addObservation(t *testing.T, study *core.Study, lr float64, layers int, value float64) {
	t.Helper()
	_, err := study.AddTrial(
		map[string]interface{}{"lr": lr, "layers": layers},
		testSpace,
		value,
	)
	require.NoError(t, err)
}

func seedObservations(t *testing.T, study *core.Study, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		lr := 1e-4 * float64(i+1) * 9
		layers := i%8 + 1
		addObservation(t, study, lr, layers, float64(i*i))
	}
}

func TestNew(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		sampler, err := New()
		require.NoError(t, err)
		assert.Equal(t, defaultNStartupTrials, sampler.nStartupTrials)
		assert.Equal(t, defaultNCandidates, sampler.nCandidates)
		assert.Equal(t, defaultBeta, sampler.beta)
		assert.NotNil(t, sampler.acquisition)
	})

	t.Run("negative startup count is rejected", func(t *testing.T) {
		_, err := New(WithNStartupTrials(-1))
		require.Error(t, err)
		assert.Equal(t, errors.InvalidConfiguration, errors.Code(err))
	})

	t.Run("degenerate knobs fall back to defaults", func(t *testing.T) {
		sampler, err := New(WithNCandidates(0), WithKernelWidth(-1))
		require.NoError(t, err)
		assert.Equal(t, defaultNCandidates, sampler.nCandidates)
		assert.Equal(t, defaultKernelWidth, sampler.kernelWidth)
	})
}

func TestInferRelativeSearchSpace(t *testing.T) {
	sampler, err := New(WithSeed(1))
	require.NoError(t, err)
	study := newTestStudy(t, sampler)

	space := core.SearchSpace{
		"lr":        core.FloatDistribution{Low: 1e-4, High: 1e-1, Log: true},
		"layers":    core.IntDistribution{Low: 1, High: 8},
		"act":       core.CategoricalDistribution{Choices: []interface{}{"relu", "tanh"}},
		"fixed_dim": core.FloatDistribution{Low: 3, High: 3},
	}
	params := map[string]interface{}{"lr": 1e-2, "layers": 4, "act": "relu", "fixed_dim": 3.0}
	for i := 0; i < 2; i++ {
		_, err := study.AddTrial(params, space, 1.0)
		require.NoError(t, err)
	}

	// Only numeric, non-degenerate parameters survive.
	relative := sampler.InferRelativeSearchSpace(study, nil)
	assert.Len(t, relative, 2)
	assert.Contains(t, relative, "lr")
	assert.Contains(t, relative, "layers")
}

func TestSampleRelative(t *testing.T) {
	t.Run("empty space defers to independent sampling", func(t *testing.T) {
		sampler, err := New(WithSeed(1))
		require.NoError(t, err)
		study := newTestStudy(t, sampler)

		proposal, err := sampler.SampleRelative(study, nil, core.SearchSpace{})
		require.NoError(t, err)
		assert.Nil(t, proposal)
	})

	t.Run("startup phase defers to independent sampling", func(t *testing.T) {
		sampler, err := New(WithSeed(1), WithNStartupTrials(5))
		require.NoError(t, err)
		study := newTestStudy(t, sampler)
		seedObservations(t, study, 3)

		proposal, err := sampler.SampleRelative(study, nil, testSpace)
		require.NoError(t, err)
		assert.Nil(t, proposal)
	})

	t.Run("surrogate proposal stays inside the domain", func(t *testing.T) {
		sampler, err := New(WithSeed(1), WithNStartupTrials(3))
		require.NoError(t, err)
		study := newTestStudy(t, sampler)
		seedObservations(t, study, 8)

		proposal, err := sampler.SampleRelative(study, nil, testSpace)
		require.NoError(t, err)
		require.NotNil(t, proposal)
		require.Len(t, proposal, 2)

		lr, ok := proposal["lr"].(float64)
		require.True(t, ok)
		assert.GreaterOrEqual(t, lr, 1e-4)
		assert.LessOrEqual(t, lr, 1e-1)

		layers, ok := proposal["layers"].(int)
		require.True(t, ok)
		assert.GreaterOrEqual(t, layers, 1)
		assert.LessOrEqual(t, layers, 8)
	})

	t.Run("identical seeds propose identical points", func(t *testing.T) {
		propose := func() map[string]interface{} {
			sampler, err := New(WithSeed(17), WithNStartupTrials(3))
			require.NoError(t, err)
			study := newTestStudy(t, sampler)
			seedObservations(t, study, 8)

			proposal, err := sampler.SampleRelative(study, nil, testSpace)
			require.NoError(t, err)
			return proposal
		}
		assert.Equal(t, propose(), propose())
	})

	t.Run("expected improvement acquisition proposes in-domain points", func(t *testing.T) {
		sampler, err := New(
			WithSeed(1),
			WithNStartupTrials(3),
			WithAcquisitionFunc(ExpectedImprovement),
		)
		require.NoError(t, err)
		study := newTestStudy(t, sampler)
		seedObservations(t, study, 8)

		proposal, err := sampler.SampleRelative(study, nil, testSpace)
		require.NoError(t, err)
		require.NotNil(t, proposal)
		for name, value := range proposal {
			assert.True(t, testSpace[name].Contains(value),
				"parameter %s=%v escaped its domain", name, value)
		}
	})
}

func TestSampleIndependent(t *testing.T) {
	sampler, err := New(WithSeed(1))
	require.NoError(t, err)
	study := newTestStudy(t, sampler)

	dist := core.CategoricalDistribution{Choices: []interface{}{"relu", "tanh"}}
	value, err := sampler.SampleIndependent(study, nil, "act", dist)
	require.NoError(t, err)
	assert.True(t, dist.Contains(value))
}

func TestReseedRNGCascades(t *testing.T) {
	draw := func(s *Sampler, n int) []interface{} {
		study := newTestStudy(t, s)
		dist := core.FloatDistribution{Low: 0, High: 1}
		values := make([]interface{}, n)
		for i := range values {
			v, err := s.SampleIndependent(study, nil, "x", dist)
			require.NoError(t, err)
			values[i] = v
		}
		return values
	}

	seeded, err := New(WithSeed(33))
	require.NoError(t, err)
	reseeded, err := New(WithSeed(33))
	require.NoError(t, err)

	// Reseeding must decorrelate the embedded fallback too.
	reseeded.ReseedRNG()
	assert.NotEqual(t, draw(seeded, 5), draw(reseeded, 5))
}

func TestStandardize(t *testing.T) {
	t.Run("centers and scales", func(t *testing.T) {
		y := []float64{1, 2, 3}
		standardize(y)

		var sum float64
		for _, v := range y {
			sum += v
		}
		assert.InDelta(t, 0, sum, 1e-12)
		assert.Less(t, y[0], y[1])
		assert.Less(t, y[1], y[2])
	})

	t.Run("constant values do not blow up", func(t *testing.T) {
		y := []float64{5, 5, 5}
		standardize(y)
		assert.Equal(t, []float64{0, 0, 0}, y)
	})

	t.Run("empty input is a no-op", func(t *testing.T) {
		var y []float64
		standardize(y)
		assert.Empty(t, y)
	})
}
