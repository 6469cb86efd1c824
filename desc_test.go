package fattree

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpCfgFileRoundTrip(t *testing.T) {
	dir := t.TempDir()

	cfg := CreateExpCfg("roundtrip")
	cfg.K = 6
	cfg.FailRates = []float64{0, 2.5, 10}

	for _, name := range []string{"cfg.yaml", "cfg.json"} {
		fullpath := filepath.Join(dir, name)
		require.NoError(t, cfg.WriteToFile(fullpath))

		loaded, err := ReadExpCfg(fullpath, IsYAML(fullpath), nil)
		require.NoError(t, err, name)
		assert.Equal(t, cfg, loaded, name)
	}
}

func TestReadExpCfgFromBytes(t *testing.T) {
	dict := []byte("name: inline\nk: 4\nruns: 25\nsamples: 80\nmaxfailrate: 12.5\npenalty: 9\nseed: 77\nworkers: 2\n")

	cfg, err := ReadExpCfg("unused.yaml", true, dict)
	require.NoError(t, err)
	assert.Equal(t, "inline", cfg.Name)
	assert.Equal(t, 4, cfg.K)
	assert.Equal(t, 25, cfg.Runs)
	assert.Equal(t, 12.5, cfg.MaxFailRate)
	assert.Equal(t, uint64(77), cfg.Seed)
}

func TestReadExpCfgMissingFile(t *testing.T) {
	cfg, err := ReadExpCfg(filepath.Join(t.TempDir(), "absent.yaml"), true, nil)
	assert.Nil(t, cfg)
	assert.Error(t, err)
}

func TestTopoDescListing(t *testing.T) {
	topo, err := BuildFatTree(4)
	require.NoError(t, err)

	td := topo.Desc()
	assert.Equal(t, 4, td.Cores)
	assert.Equal(t, 8, td.Aggs)
	assert.Equal(t, 8, td.Edges)
	assert.Equal(t, 16, td.Hosts)
	assert.Len(t, td.Nodes, 36)
	assert.Len(t, td.Links, 48)

	tiers := make(map[string]int)
	for _, lnk := range td.Links {
		tiers[lnk.Tier]++
	}
	assert.Equal(t, 16, tiers["core-agg"])
	assert.Equal(t, 16, tiers["agg-edge"])
	assert.Equal(t, 16, tiers["edge-host"])
}

func TestSweepResultFileRoundTrip(t *testing.T) {
	dir := t.TempDir()

	result := SweepResult{
		K:       4,
		Runs:    10,
		Samples: 100,
		Penalty: 8,
		Stats: []FailRateStat{
			{FailRate: 0, MeanReachability: 1.0, MeanHops: 4.26, Trials: 10},
			{FailRate: 5, MeanReachability: 0.93, MeanHops: 4.5, StdDevReachability: 0.02, StdDevHops: 0.1, Trials: 10},
		},
	}

	for _, name := range []string{"sweep.yaml", "sweep.json"} {
		fullpath := filepath.Join(dir, name)
		require.NoError(t, result.WriteToFile(fullpath))

		loaded, err := ReadSweepResult(fullpath, IsYAML(fullpath), nil)
		require.NoError(t, err, name)
		assert.Equal(t, &result, loaded, name)
	}
}
