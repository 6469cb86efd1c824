package fattree

// fattree.go holds the data structures and construction code for a
// k-ary Fat-Tree topology.  A Fat-Tree with parameter k (an even
// integer) has k pods, each holding k/2 aggregation switches and k/2
// edge switches, with (k/2)^2 core switches above the pods and k/2
// hosts below each edge switch.  Every switch ends up with exactly k
// links, which is what gives the topology its full bisection
// bandwidth property.

import (
	"fmt"
)

// NodeKind discriminates the four layers a node can occupy.
type NodeKind int

const (
	// Core switches sit above the pods and connect across all of them
	Core NodeKind = iota

	// Agg switches sit at the top of a pod, facing the core layer
	Agg

	// Edge switches sit at the bottom of a pod, facing hosts
	Edge

	// Host endpoints hang off edge switches, one link each
	Host
)

func (nk NodeKind) String() string {
	switch nk {
	case Core:
		return "core"
	case Agg:
		return "agg"
	case Edge:
		return "edge"
	case Host:
		return "host"
	}
	return "unknown"
}

// A Node identifies one switch or host in the topology.  Identity is
// derived from the (Kind, Pod, Index) triple through a fixed
// enumeration order, never from insertion order, so two topologies
// built with the same k carry identical node IDs.
type Node struct {
	// ID is the node's position in Topology.Nodes
	ID int64

	// Kind says which layer the node occupies
	Kind NodeKind

	// Pod is the pod the node belongs to, -1 for core switches
	Pod int

	// Index is the node's position within its layer.  Core switches
	// index across the whole core layer; aggregation and edge switches
	// index within their pod; hosts index within their pod, with
	// Index/(k/2) identifying the edge switch the host attaches to.
	Index int
}

// Name renders the stable composite label for the node, e.g. C_3,
// A_2_0, E_2_1, H_2_5.
func (n Node) Name() string {
	if n.Kind == Core {
		return fmt.Sprintf("C_%d", n.Index)
	}
	prefix := map[NodeKind]string{Agg: "A", Edge: "E", Host: "H"}[n.Kind]
	return fmt.Sprintf("%s_%d_%d", prefix, n.Pod, n.Index)
}

// A Link is an undirected edge between two nodes, identified by their
// IDs.  Links exist only between adjacent layers.
type Link struct {
	A, B int64
}

// FatTreeParams holds the closed-form structural counts of a k-ary
// Fat-Tree.
type FatTreeParams struct {
	K            int
	KHalf        int
	NumPods      int
	NumCore      int
	AggPerPod    int
	EdgePerPod   int
	HostsPerEdge int
	TotalHosts   int
	TotalLinks   int
}

// An InvalidParameterError reports a structural parameter the builder
// cannot work with.  It is the only error the package itself raises.
type InvalidParameterError struct {
	Param  string
	Value  int
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%d: %s", e.Param, e.Value, e.Reason)
}

// Params computes the structural counts for a k-port Fat-Tree,
// rejecting k values that do not describe one.
func Params(k int) (FatTreeParams, error) {
	if k < 2 || k%2 != 0 {
		return FatTreeParams{}, &InvalidParameterError{
			Param:  "k",
			Value:  k,
			Reason: "must be an even integer >= 2",
		}
	}

	kHalf := k / 2
	return FatTreeParams{
		K:            k,
		KHalf:        kHalf,
		NumPods:      k,
		NumCore:      kHalf * kHalf,
		AggPerPod:    kHalf,
		EdgePerPod:   kHalf,
		HostsPerEdge: kHalf,
		TotalHosts:   k * k * k / 4,
		// each of the three inter-layer tiers carries k^3/4 links
		TotalLinks: 3 * k * k * k / 4,
	}, nil
}

// A Topology is the full node and link collection of a built Fat-Tree.
// It is immutable once built; failure injection always works on a copy.
type Topology struct {
	K      int
	Params FatTreeParams

	// Nodes is indexed by Node.ID
	Nodes []Node

	Links []Link
}

// BuildFatTree constructs the k-ary Fat-Tree.  The build is
// deterministic: the same k always yields identical node IDs, labels,
// and link lists.
func BuildFatTree(k int) (*Topology, error) {
	params, err := Params(k)
	if err != nil {
		return nil, err
	}

	kHalf := params.KHalf
	podSize := params.AggPerPod + params.EdgePerPod + params.EdgePerPod*params.HostsPerEdge

	topo := &Topology{
		K:      k,
		Params: params,
		Nodes:  make([]Node, 0, params.NumCore+params.NumPods*podSize),
		Links:  make([]Link, 0, params.TotalLinks),
	}

	// core switches come first in the enumeration
	for c := 0; c < params.NumCore; c++ {
		topo.Nodes = append(topo.Nodes, Node{ID: int64(c), Kind: Core, Pod: -1, Index: c})
	}

	// within each pod the order is aggregation, edge, hosts
	for pod := 0; pod < params.NumPods; pod++ {
		podBase := int64(params.NumCore + pod*podSize)
		for a := 0; a < params.AggPerPod; a++ {
			topo.Nodes = append(topo.Nodes, Node{ID: podBase + int64(a), Kind: Agg, Pod: pod, Index: a})
		}
		for e := 0; e < params.EdgePerPod; e++ {
			topo.Nodes = append(topo.Nodes, Node{ID: podBase + int64(kHalf+e), Kind: Edge, Pod: pod, Index: e})
		}
		for h := 0; h < params.EdgePerPod*params.HostsPerEdge; h++ {
			topo.Nodes = append(topo.Nodes, Node{ID: podBase + int64(2*kHalf+h), Kind: Host, Pod: pod, Index: h})
		}
	}

	for pod := 0; pod < params.NumPods; pod++ {
		podBase := int64(params.NumCore + pod*podSize)

		// core <-> aggregation striping: the aggregation switch with
		// pod-local index a connects to the k/2 core switches whose
		// indices lie in [a*k/2, (a+1)*k/2), in every pod.  Each core
		// switch therefore reaches exactly one aggregation switch per
		// pod, for a fan-out of k.
		for a := 0; a < params.AggPerPod; a++ {
			aggID := podBase + int64(a)
			for offset := 0; offset < kHalf; offset++ {
				coreID := int64(a*kHalf + offset)
				topo.Links = append(topo.Links, Link{A: coreID, B: aggID})
			}
		}

		// aggregation <-> edge full mesh within the pod
		for a := 0; a < params.AggPerPod; a++ {
			aggID := podBase + int64(a)
			for e := 0; e < params.EdgePerPod; e++ {
				edgeID := podBase + int64(kHalf+e)
				topo.Links = append(topo.Links, Link{A: aggID, B: edgeID})
			}
		}

		// edge <-> host, k/2 hosts exclusive to each edge switch
		for e := 0; e < params.EdgePerPod; e++ {
			edgeID := podBase + int64(kHalf+e)
			for h := 0; h < params.HostsPerEdge; h++ {
				hostID := podBase + int64(2*kHalf+e*kHalf+h)
				topo.Links = append(topo.Links, Link{A: edgeID, B: hostID})
			}
		}
	}

	return topo, nil
}

// HostIDs returns the IDs of every host node, in enumeration order.
func (topo *Topology) HostIDs() []int64 {
	hosts := make([]int64, 0, topo.Params.TotalHosts)
	for _, node := range topo.Nodes {
		if node.Kind == Host {
			hosts = append(hosts, node.ID)
		}
	}
	return hosts
}

// KindCount returns how many nodes of the given kind the topology holds.
func (topo *Topology) KindCount(kind NodeKind) int {
	count := 0
	for _, node := range topo.Nodes {
		if node.Kind == kind {
			count++
		}
	}
	return count
}

// Degrees computes the degree of every node from the link list.
func (topo *Topology) Degrees() map[int64]int {
	deg := make(map[int64]int, len(topo.Nodes))
	for _, lnk := range topo.Links {
		deg[lnk.A]++
		deg[lnk.B]++
	}
	return deg
}
