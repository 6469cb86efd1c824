package fattree

// desc.go holds the serializable descriptions the experiment exchanges
// with the outside: the experiment configuration read before a run,
// the topology listing exported for external diagram rendering, and
// the sweep dataset handed to reporting.  All of these are pointer
// free so they serialize cleanly; yaml or json is selected from the
// file name extension.

import (
	"encoding/json"
	"os"
	"path"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// An ExpCfg carries the parameters of one experiment run.  The CLI
// validates ranges before the core sees the values; the core itself
// only enforces the structural constraint on K.
type ExpCfg struct {
	// Name labels the experiment in reports
	Name string `json:"name" yaml:"name"`

	// K is the Fat-Tree port count, even and >= 2
	K int `json:"k" yaml:"k"`

	// Runs is the number of independent trials per failure rate
	Runs int `json:"runs" yaml:"runs"`

	// Samples is the host-pair budget per trial, ignored when the
	// topology is small enough for exhaustive probing
	Samples int `json:"samples" yaml:"samples"`

	// MaxFailRate is the top of the swept failure-rate grid, in percent
	MaxFailRate float64 `json:"maxfailrate" yaml:"maxfailrate"`

	// Penalty is the hop count recorded for unreachable pairs
	Penalty int `json:"penalty" yaml:"penalty"`

	// Seed feeds rngstream's master seed before streams are created
	Seed uint64 `json:"seed" yaml:"seed"`

	// Workers bounds trial concurrency; 0 or 1 runs trials sequentially
	Workers int `json:"workers" yaml:"workers"`

	// FailRates optionally replaces the default grid derived from
	// MaxFailRate; it is sorted ascending before use
	FailRates []float64 `json:"failrates,omitempty" yaml:"failrates,omitempty"`
}

// CreateExpCfg is an initialization constructor filling in the
// defaults an unconfigured experiment uses.
func CreateExpCfg(name string) *ExpCfg {
	xc := new(ExpCfg)
	xc.Name = name
	xc.K = 8
	xc.Runs = 100
	xc.Samples = 500
	xc.MaxFailRate = 15.0
	xc.Penalty = 0
	xc.Seed = 1000
	xc.Workers = 1
	return xc
}

// WriteToFile stores the ExpCfg struct to the file whose name is
// given.  Serialization to json or to yaml is selected based on the
// extension of this name.
func (xc *ExpCfg) WriteToFile(filename string) error {
	bytes, err := marshalByExt(filename, *xc)
	if err != nil {
		return err
	}
	return writeFile(filename, bytes)
}

// ReadExpCfg deserializes a byte slice holding a representation of an
// ExpCfg struct.  If the input argument of dict (those bytes) is
// empty, the file whose name is given is read to acquire them.
func ReadExpCfg(filename string, useYAML bool, dict []byte) (*ExpCfg, error) {
	var err error
	if len(dict) == 0 {
		dict, err = os.ReadFile(filename)
		if err != nil {
			return nil, errors.Wrapf(err, "reading experiment config %s", filename)
		}
	}

	example := ExpCfg{}
	if useYAML {
		err = yaml.Unmarshal(dict, &example)
	} else {
		err = json.Unmarshal(dict, &example)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "decoding experiment config %s", filename)
	}
	return &example, nil
}

// A NodeDesc is the serializable listing of one topology node.
type NodeDesc struct {
	Name  string `json:"name" yaml:"name"`
	Kind  string `json:"kind" yaml:"kind"`
	Pod   int    `json:"pod" yaml:"pod"`
	Index int    `json:"index" yaml:"index"`
}

// A LinkDesc is the serializable listing of one topology link, named
// by its endpoints with the tier the link belongs to.
type LinkDesc struct {
	A    string `json:"a" yaml:"a"`
	B    string `json:"b" yaml:"b"`
	Tier string `json:"tier" yaml:"tier"`
}

// A TopoDesc is the full serializable listing of a built topology,
// consumed by external diagram rendering.
type TopoDesc struct {
	K     int        `json:"k" yaml:"k"`
	Cores int        `json:"cores" yaml:"cores"`
	Aggs  int        `json:"aggs" yaml:"aggs"`
	Edges int        `json:"edges" yaml:"edges"`
	Hosts int        `json:"hosts" yaml:"hosts"`
	Nodes []NodeDesc `json:"nodes" yaml:"nodes"`
	Links []LinkDesc `json:"links" yaml:"links"`
}

// Desc transforms the topology into its serializable description.
func (topo *Topology) Desc() TopoDesc {
	td := TopoDesc{
		K:     topo.K,
		Cores: topo.Params.NumCore,
		Aggs:  topo.Params.NumPods * topo.Params.AggPerPod,
		Edges: topo.Params.NumPods * topo.Params.EdgePerPod,
		Hosts: topo.Params.TotalHosts,
		Nodes: make([]NodeDesc, 0, len(topo.Nodes)),
		Links: make([]LinkDesc, 0, len(topo.Links)),
	}

	for _, node := range topo.Nodes {
		td.Nodes = append(td.Nodes, NodeDesc{
			Name:  node.Name(),
			Kind:  node.Kind.String(),
			Pod:   node.Pod,
			Index: node.Index,
		})
	}
	for _, lnk := range topo.Links {
		a := topo.Nodes[lnk.A]
		b := topo.Nodes[lnk.B]
		td.Links = append(td.Links, LinkDesc{
			A:    a.Name(),
			B:    b.Name(),
			Tier: a.Kind.String() + "-" + b.Kind.String(),
		})
	}
	return td
}

// WriteToFile stores the TopoDesc struct to the file whose name is
// given, as json or yaml depending on the extension.
func (td *TopoDesc) WriteToFile(filename string) error {
	bytes, err := marshalByExt(filename, *td)
	if err != nil {
		return err
	}
	return writeFile(filename, bytes)
}

// WriteToFile stores the sweep dataset to the file whose name is
// given, as json or yaml depending on the extension.
func (sr *SweepResult) WriteToFile(filename string) error {
	bytes, err := marshalByExt(filename, *sr)
	if err != nil {
		return err
	}
	return writeFile(filename, bytes)
}

// ReadSweepResult deserializes a byte slice holding a representation
// of a SweepResult.  If dict is empty the named file is read to
// acquire the bytes.
func ReadSweepResult(filename string, useYAML bool, dict []byte) (*SweepResult, error) {
	var err error
	if len(dict) == 0 {
		dict, err = os.ReadFile(filename)
		if err != nil {
			return nil, errors.Wrapf(err, "reading sweep result %s", filename)
		}
	}

	example := SweepResult{}
	if useYAML {
		err = yaml.Unmarshal(dict, &example)
	} else {
		err = json.Unmarshal(dict, &example)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "decoding sweep result %s", filename)
	}
	return &example, nil
}

// IsYAML reports whether the extension of the named file selects yaml
// rather than json.
func IsYAML(filename string) bool {
	ext := path.Ext(filename)
	return ext == ".yaml" || ext == ".YAML" || ext == ".yml"
}

func marshalByExt(filename string, v any) ([]byte, error) {
	var bytes []byte
	var err error
	if IsYAML(filename) {
		bytes, err = yaml.Marshal(v)
	} else {
		bytes, err = json.MarshalIndent(v, "", "\t")
	}
	if err != nil {
		return nil, errors.Wrapf(err, "encoding %s", filename)
	}
	return bytes, nil
}

func writeFile(filename string, bytes []byte) error {
	f, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "creating %s", filename)
	}
	if _, err = f.Write(bytes); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing %s", filename)
	}
	return errors.Wrapf(f.Close(), "closing %s", filename)
}
