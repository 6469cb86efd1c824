package fattree

// routes.go measures host-to-host connectivity over a (possibly
// degraded) topology.  The approach follows the usual recipe of
// converting the topology into the gonum graph representation and
// letting graph/path compute shortest-path trees; with every edge
// weighted 1 a shortest path minimizes hop count.  A tree computed
// from one source host answers every pair sharing that source, so
// trees are cached per source for the duration of one sampling pass.

import (
	"math"

	"github.com/iti/rngstream"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

// A HostPair is an unordered pair of distinct hosts, normalized so
// that Src < Dst.
type HostPair struct {
	Src, Dst int64
}

// A SampleResult records the outcome of probing one host pair against
// a degraded topology.  Hops is the shortest-path link count when the
// pair is reachable and exactly the configured penalty when it is not.
type SampleResult struct {
	Pair    HostPair
	Reached bool
	Hops    int
}

// exhaustiveHostLimit bounds the topology size at which every host
// pair is checked rather than a random sample.  16 hosts corresponds
// to k=4, where the 120 unordered pairs are cheap to probe outright.
const exhaustiveHostLimit = 16

// SelectHostPairs chooses the host pairs one trial will probe.  Small
// topologies (or sample budgets covering every pair) get the full
// unordered pair set; larger ones get nSamples pairs drawn uniformly
// without replacement.  The exhaustive-versus-sampled decision depends
// only on the topology and nSamples, so it is identical for every
// trial in a sweep; the sampled pairs themselves are a fresh draw per
// call.
func SelectHostPairs(topo *Topology, nSamples int, rng *rngstream.RngStream) []HostPair {
	hosts := topo.HostIDs()
	numHosts := len(hosts)
	totalPairs := numHosts * (numHosts - 1) / 2

	if numHosts <= exhaustiveHostLimit || nSamples >= totalPairs {
		pairs := make([]HostPair, 0, totalPairs)
		for i := 0; i < numHosts; i++ {
			for j := i + 1; j < numHosts; j++ {
				pairs = append(pairs, HostPair{Src: hosts[i], Dst: hosts[j]})
			}
		}
		return pairs
	}

	// rejection-sample distinct unordered pairs.  nSamples is well
	// below totalPairs here, so collisions are rare and the loop
	// terminates quickly.
	chosen := make(map[HostPair]struct{}, nSamples)
	pairs := make([]HostPair, 0, nSamples)
	for len(pairs) < nSamples {
		i := rng.RandInt(0, numHosts-1)
		j := rng.RandInt(0, numHosts-1)
		if i == j {
			continue
		}
		if i > j {
			i, j = j, i
		}
		pr := HostPair{Src: hosts[i], Dst: hosts[j]}
		if _, dup := chosen[pr]; dup {
			continue
		}
		chosen[pr] = struct{}{}
		pairs = append(pairs, pr)
	}
	return pairs
}

// buildConnGraph converts the topology's node and link lists into the
// graph/simple representation used for path discovery.  Nodes are
// added explicitly first so that hosts isolated by link failures still
// appear in the graph.
func buildConnGraph(topo *Topology) graph.Graph {
	connGraph := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	for _, node := range topo.Nodes {
		connGraph.AddNode(simple.Node(node.ID))
	}
	for _, lnk := range topo.Links {
		weightedEdge := simple.WeightedEdge{F: simple.Node(lnk.A), T: simple.Node(lnk.B), W: 1.0}
		connGraph.SetWeightedEdge(weightedEdge)
	}
	return connGraph
}

// SamplePairs probes each host pair against the given (typically
// degraded) topology and reports, per pair, whether a path survives
// and how many links the shortest surviving path crosses.  Unreachable
// pairs record hop count = penalty.  The call never fails: a fully
// disconnected topology simply yields all-penalty results.
func SamplePairs(topo *Topology, pairs []HostPair, penalty int) []SampleResult {
	connGraph := buildConnGraph(topo)

	// shortest path trees computed this pass, keyed by source host
	trees := make(map[int64]path.Shortest)

	results := make([]SampleResult, 0, len(pairs))
	for _, pr := range pairs {
		spTree, present := trees[pr.Src]
		if !present {
			spTree = path.DijkstraFrom(simple.Node(pr.Src), connGraph)
			trees[pr.Src] = spTree
		}

		nodeSeq, weight := spTree.To(pr.Dst)
		if len(nodeSeq) == 0 || math.IsInf(weight, 1) {
			results = append(results, SampleResult{Pair: pr, Reached: false, Hops: penalty})
			continue
		}
		results = append(results, SampleResult{Pair: pr, Reached: true, Hops: len(nodeSeq) - 1})
	}
	return results
}
