package fattree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRejectsInvalidK(t *testing.T) {
	for _, k := range []int{-2, 0, 1, 3, 5, 7} {
		topo, err := BuildFatTree(k)
		assert.Nil(t, topo, "k=%d", k)
		require.Error(t, err, "k=%d", k)

		var ipe *InvalidParameterError
		require.ErrorAs(t, err, &ipe)
		assert.Equal(t, "k", ipe.Param)
		assert.Equal(t, k, ipe.Value)
	}
}

func TestBuildCountsK4(t *testing.T) {
	topo, err := BuildFatTree(4)
	require.NoError(t, err)

	assert.Equal(t, 4, topo.KindCount(Core))
	assert.Equal(t, 8, topo.KindCount(Agg))
	assert.Equal(t, 8, topo.KindCount(Edge))
	assert.Equal(t, 16, topo.KindCount(Host))
	assert.Equal(t, 48, len(topo.Links))
}

func TestBuildDegreeInvariant(t *testing.T) {
	for _, k := range []int{2, 4, 6, 8} {
		topo, err := BuildFatTree(k)
		require.NoError(t, err, "k=%d", k)

		assert.Equal(t, k*k*k/4, topo.KindCount(Host), "k=%d host count", k)

		deg := topo.Degrees()
		for _, node := range topo.Nodes {
			if node.Kind == Host {
				assert.Equal(t, 1, deg[node.ID], "k=%d host %s degree", k, node.Name())
			} else {
				assert.Equal(t, k, deg[node.ID], "k=%d switch %s degree", k, node.Name())
			}
		}
	}
}

func TestBuildDeterministic(t *testing.T) {
	first, err := BuildFatTree(6)
	require.NoError(t, err)
	second, err := BuildFatTree(6)
	require.NoError(t, err)

	assert.Equal(t, first.Nodes, second.Nodes)
	assert.Equal(t, first.Links, second.Links)
}

// every core switch must reach exactly one aggregation switch in every
// pod, and always the same pod-local aggregation index
func TestCoreStriping(t *testing.T) {
	topo, err := BuildFatTree(4)
	require.NoError(t, err)

	kHalf := topo.Params.KHalf
	neighbors := make(map[int64][]Node)
	for _, lnk := range topo.Links {
		a, b := topo.Nodes[lnk.A], topo.Nodes[lnk.B]
		if a.Kind == Core && b.Kind == Agg {
			neighbors[a.ID] = append(neighbors[a.ID], b)
		}
	}

	for _, core := range topo.Nodes {
		if core.Kind != Core {
			continue
		}
		aggs := neighbors[core.ID]
		require.Len(t, aggs, topo.Params.NumPods, "core %s", core.Name())

		pods := make(map[int]bool)
		for _, agg := range aggs {
			assert.False(t, pods[agg.Pod], "core %s reaches pod %d twice", core.Name(), agg.Pod)
			pods[agg.Pod] = true
			assert.Equal(t, core.Index/kHalf, agg.Index,
				"core %s should stripe to agg index %d", core.Name(), core.Index/kHalf)
		}
	}
}

func TestNodeNames(t *testing.T) {
	topo, err := BuildFatTree(4)
	require.NoError(t, err)

	assert.Equal(t, "C_0", topo.Nodes[0].Name())

	seen := make(map[string]bool)
	for _, node := range topo.Nodes {
		name := node.Name()
		assert.False(t, seen[name], "duplicate label %s", name)
		seen[name] = true
	}
}

func TestParamsClosedForm(t *testing.T) {
	params, err := Params(8)
	require.NoError(t, err)

	assert.Equal(t, 8, params.NumPods)
	assert.Equal(t, 16, params.NumCore)
	assert.Equal(t, 128, params.TotalHosts)
	assert.Equal(t, 384, params.TotalLinks)
}
