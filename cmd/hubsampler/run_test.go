package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpfeil/hubsampler/pkg/core"
)

func TestBenchmark(t *testing.T) {
	trial := &core.Trial{Params: map[string]interface{}{"x": 2.0}}
	values, err := benchmark(trial)
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 0}, values)

	_, err = benchmark(&core.Trial{Params: map[string]interface{}{}})
	assert.Error(t, err)
}

func TestOpenStorage(t *testing.T) {
	store, err := openStorage("")
	require.NoError(t, err)
	defer store.Close()

	id, err := store.CreateTrial("cli")
	require.NoError(t, err)
	assert.Positive(t, id)
}
