package fattree

import (
	"testing"

	"github.com/iti/rngstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDegradeZeroRateKeepsEveryLink(t *testing.T) {
	topo, err := BuildFatTree(4)
	require.NoError(t, err)

	rng := rngstream.New("degrade-zero")
	degraded := Degrade(topo, 0.0, rng)

	assert.Equal(t, len(topo.Links), len(degraded.Links))
	assert.Equal(t, topo.Links, degraded.Links)

	// the copy must not alias the pristine link storage
	degraded.Links[0] = Link{A: -1, B: -1}
	assert.NotEqual(t, topo.Links[0], degraded.Links[0])
}

func TestDegradeFullRateRemovesEveryLink(t *testing.T) {
	topo, err := BuildFatTree(4)
	require.NoError(t, err)

	rng := rngstream.New("degrade-full")
	degraded := Degrade(topo, 100.0, rng)

	assert.Empty(t, degraded.Links)
	assert.Equal(t, 48, len(topo.Links), "pristine topology must be untouched")
}

func TestDegradePartialRateRemovesSomeLinks(t *testing.T) {
	topo, err := BuildFatTree(4)
	require.NoError(t, err)

	rng := rngstream.New("degrade-partial")
	degraded := Degrade(topo, 50.0, rng)

	// with 48 independent coin flips at p=0.5, all-kept or all-removed
	// outcomes are vanishingly unlikely
	assert.Greater(t, len(degraded.Links), 0)
	assert.Less(t, len(degraded.Links), len(topo.Links))
}

func TestDegradeDrawsAreIndependentAcrossCalls(t *testing.T) {
	topo, err := BuildFatTree(8)
	require.NoError(t, err)

	rng := rngstream.New("degrade-indep")
	first := Degrade(topo, 30.0, rng)
	second := Degrade(topo, 30.0, rng)

	// two draws over 384 links at p=0.3 cannot plausibly remove the
	// identical link subset
	assert.NotEqual(t, first.Links, second.Links)
	assert.Equal(t, 384, len(topo.Links))
}
