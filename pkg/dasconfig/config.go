// Package dasconfig loads simulation Config and Shape (or Shape sweep)
// definitions from YAML files, the way original_source/config_example.py's
// one-Python-dict-per-sweep-dimension pattern is expressed as a typed Go
// config surface.
package dasconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/eth2030/dassim/pkg/dassim"
)

// File is the top-level document: the core Config plus either a single
// Shape (one run) or a ShapeSweep (a parameter sweep expanded by
// pkg/dassweep).
type File struct {
	Config dassim.Config    `yaml:"config"`
	NumJobs int             `yaml:"numJobs"`
	Shape   *dassim.Shape   `yaml:"shape,omitempty"`
	Sweep   *ShapeSweepSpec `yaml:"sweep,omitempty"`
}

// ShapeSweepSpec names a base Shape plus the fields to cartesian-expand.
// Each slice field that is non-empty overrides the base Shape's scalar
// field for that sweep dimension; empty slices mean "use the base value."
type ShapeSweepSpec struct {
	Base dassim.Shape `yaml:"base"`

	BlockSizes   []int     `yaml:"blockSizes,omitempty"`
	FailureRates []int     `yaml:"failureRates,omitempty"`
	NetDegrees   []int     `yaml:"netDegrees,omitempty"`
	Chi1s        []int     `yaml:"chi1s,omitempty"`
	Chi2s        []int     `yaml:"chi2s,omitempty"`
	BWUplinks    [][3]int  `yaml:"bwUplinks,omitempty"` // [proposer, class1, class2] triples
	Runs         []int     `yaml:"runs,omitempty"`
}

// Load reads and parses a config file from path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dasconfig: reading %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("dasconfig: parsing %s: %w", path, err)
	}
	return &f, nil
}
