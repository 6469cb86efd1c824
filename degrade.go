package fattree

// degrade.go holds the link failure injector.  Failures are modeled as
// independent per-link Bernoulli removals: every link survives or dies
// on its own draw, so the number of failed links varies from trial to
// trial around failRate% of the total.

import (
	"github.com/iti/rngstream"
)

// Degrade returns a copy of the topology in which each link has been
// independently removed with probability failRate/100.  The input
// topology is never touched, and the returned value shares no link
// storage with it, so repeated trials always start from the same
// pristine structure.  A failRate of 0 keeps every link; a failRate of
// 100 removes all of them, which downstream sampling must tolerate.
func Degrade(topo *Topology, failRate float64, rng *rngstream.RngStream) *Topology {
	p := failRate / 100.0

	kept := make([]Link, 0, len(topo.Links))
	for _, lnk := range topo.Links {
		if rng.RandU01() < p {
			continue
		}
		kept = append(kept, lnk)
	}

	nodes := make([]Node, len(topo.Nodes))
	copy(nodes, topo.Nodes)

	return &Topology{
		K:      topo.K,
		Params: topo.Params,
		Nodes:  nodes,
		Links:  kept,
	}
}
