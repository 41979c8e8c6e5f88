package carbo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpfeil/hubsampler/pkg/core"
)

func TestUnitValue(t *testing.T) {
	t.Run("linear float maps proportionally", func(t *testing.T) {
		dist := core.FloatDistribution{Low: 0, High: 10}
		u, ok := unitValue(dist, 2.5)
		require.True(t, ok)
		assert.InDelta(t, 0.25, u, 1e-12)
	})

	t.Run("log float maps in log scale", func(t *testing.T) {
		dist := core.FloatDistribution{Low: 1e-4, High: 1, Log: true}
		u, ok := unitValue(dist, 1e-2)
		require.True(t, ok)
		assert.InDelta(t, 0.5, u, 1e-12)
	})

	t.Run("int values coerce", func(t *testing.T) {
		dist := core.IntDistribution{Low: 0, High: 4}
		u, ok := unitValue(dist, 3)
		require.True(t, ok)
		assert.InDelta(t, 0.75, u, 1e-12)
	})

	t.Run("degenerate domain maps to zero", func(t *testing.T) {
		dist := core.FloatDistribution{Low: 2, High: 2}
		u, ok := unitValue(dist, 2.0)
		require.True(t, ok)
		assert.Equal(t, 0.0, u)
	})

	t.Run("non-numeric values are rejected", func(t *testing.T) {
		dist := core.FloatDistribution{Low: 0, High: 1}
		_, ok := unitValue(dist, "relu")
		assert.False(t, ok)
	})

	t.Run("categorical distributions are rejected", func(t *testing.T) {
		dist := core.CategoricalDistribution{Choices: []interface{}{"a", "b"}}
		_, ok := unitValue(dist, "a")
		assert.False(t, ok)
	})
}

func TestExternalValue(t *testing.T) {
	t.Run("float roundtrips through the unit cube", func(t *testing.T) {
		dist := core.FloatDistribution{Low: -5, High: 5}
		u, ok := unitValue(dist, 2.5)
		require.True(t, ok)
		assert.InDelta(t, 2.5, externalValue(dist, u).(float64), 1e-9)
	})

	t.Run("log float roundtrips", func(t *testing.T) {
		dist := core.FloatDistribution{Low: 1e-3, High: 1, Log: true}
		u, ok := unitValue(dist, 0.05)
		require.True(t, ok)
		assert.InDelta(t, 0.05, externalValue(dist, u).(float64), 1e-9)
	})

	t.Run("float step snaps to the lattice", func(t *testing.T) {
		dist := core.FloatDistribution{Low: 0, High: 1, Step: 0.25}
		assert.InDelta(t, 0.25, externalValue(dist, 0.3).(float64), 1e-12)
		assert.InDelta(t, 0.75, externalValue(dist, 0.8).(float64), 1e-12)
	})

	t.Run("int values round and stay integral", func(t *testing.T) {
		dist := core.IntDistribution{Low: 1, High: 9}
		v, ok := externalValue(dist, 0.5).(int)
		require.True(t, ok)
		assert.Equal(t, 5, v)
	})

	t.Run("int step snaps to the lattice", func(t *testing.T) {
		dist := core.IntDistribution{Low: 0, High: 10, Step: 5}
		v := externalValue(dist, 0.55).(int)
		assert.Contains(t, []int{5, 10}, v)
		assert.Zero(t, v%5)
	})

	t.Run("out-of-range coordinates clamp to the domain", func(t *testing.T) {
		dist := core.FloatDistribution{Low: 0, High: 1}
		assert.Equal(t, 0.0, externalValue(dist, -0.5))
		assert.Equal(t, 1.0, externalValue(dist, 1.5))
	})

	t.Run("unknown distribution kinds yield nil", func(t *testing.T) {
		dist := core.CategoricalDistribution{Choices: []interface{}{"a"}}
		assert.Nil(t, externalValue(dist, 0.5))
	})
}
