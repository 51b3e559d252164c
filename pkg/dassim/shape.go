// Package dassim implements a discrete-event simulator of two-dimensional
// Data Availability Sampling (DAS) block dissemination over a row/column
// gossip overlay. See the package-level design notes in Simulator for the
// synchronous step loop that drives it.
package dassim

// LineID identifies a row or a column. Rows and columns share the same
// numbering space [0, BlockSize) but index different dimensions of Block.
type LineID int

// Dim selects which overlay a Neighbor record belongs to.
type Dim int

const (
	// DimRow is the row overlay (dim=0 in the original model).
	DimRow Dim = 0
	// DimColumn is the column overlay (dim=1 in the original model).
	DimColumn Dim = 1
)

// Shape is the external, serializable description of one simulation run. It
// is the sole input to Simulator and is carried through unmodified into
// Result so that a run can be reproduced and its parameters reported
// alongside its outcome.
//
// Shape adopts the richer constructor described in spec.md's open question:
// per-class uplink bandwidths rather than a single shared bwUplink, and a
// numberNodes interpretation derived from numberValidators and the per-class
// validators-per-node (vpn) multiplicity.
type Shape struct {
	// BlockSize is the side length of the square segment matrix.
	BlockSize int `yaml:"blockSize"`

	// NumberValidators is the total validator count before vpn division.
	NumberValidators int `yaml:"numberValidators"`

	// FailureRate is the integer percent chance [0,100] that the proposer
	// fails to publish an individual cell.
	FailureRate int `yaml:"failureRate"`

	// Chi1 / Chi2 are the row-and-column subscription counts for class-1
	// (light) and class-2 (heavy) validators respectively.
	Chi1 int `yaml:"chi1"`
	Chi2 int `yaml:"chi2"`

	// NetDegree is the target regular-graph degree for each topic overlay.
	// Must be even.
	NetDegree int `yaml:"netDegree"`

	// Class1Ratio is the fraction of validators (by ID ordering) that belong
	// to class 1.
	Class1Ratio float64 `yaml:"class1ratio"`

	// VPN1 / VPN2 are the validators-per-node multiplicity for each class;
	// NumberNodes = NumberValidators / VPN (per class proportion).
	VPN1 int `yaml:"vpn1"`
	VPN2 int `yaml:"vpn2"`

	// BWUplinkProd / BWUplink1 / BWUplink2 are per-step uplink bandwidth
	// budgets in segments, for the proposer, class-1, and class-2
	// validators respectively.
	BWUplinkProd int `yaml:"bwUplinkProd"`
	BWUplink1    int `yaml:"bwUplink1"`
	BWUplink2    int `yaml:"bwUplink2"`

	// Run is the seed/index identifying this run within a sweep.
	Run int `yaml:"run"`

	// ProposerPublishOnly, when true, removes the proposer from topic
	// meshes; it instead pushes segments over one-directional publish
	// links (spec.md §3, "Publish-only proposer").
	ProposerPublishOnly bool `yaml:"proposerPublishOnly"`

	// ProposerPublishTo bounds how many peers per owned line the proposer
	// publishes to when ProposerPublishOnly is set.
	ProposerPublishTo int `yaml:"proposerPublishTo"`
}

// Chi returns the row/column subscription count for a given validator ID,
// given the number of class-1 validators implied by Class1Ratio.
func (s Shape) Chi(id int) int {
	if float64(id) <= float64(s.NumberValidators)*s.Class1Ratio {
		return s.Chi1
	}
	return s.Chi2
}

// BWUplink returns the per-step uplink budget for a validator with the given
// ID and proposer flag.
func (s Shape) BWUplink(id int, isProposer bool) int {
	if isProposer {
		return s.BWUplinkProd
	}
	if float64(id) <= float64(s.NumberValidators)*s.Class1Ratio {
		return s.BWUplink1
	}
	return s.BWUplink2
}

// NumberNodes computes the simulated object count per spec.md §6: the
// validator population divided by its class's vpn multiplicity, truncating
// each class's count to a whole number, with a floor of one node.
func (s Shape) NumberNodes() int {
	light := float64(s.NumberValidators) * s.Class1Ratio
	heavy := float64(s.NumberValidators) - light
	nodes := 0
	if s.VPN1 > 0 {
		nodes += int(light) / s.VPN1
	}
	if s.VPN2 > 0 {
		nodes += int(heavy) / s.VPN2
	}
	if nodes < 1 {
		nodes = 1
	}
	return nodes
}

// SendLineUntil is the per-line, per-peer send threshold: once a neighbor's
// sent|received popcount reaches this value, the local side stops sending
// on that line to that peer because the peer can reconstruct locally.
func (s Shape) SendLineUntil() int {
	return (s.BlockSize + 1 + 1) / 2
}

// RepairThreshold is the minimum popcount of a line for it to be considered
// repairable (spec.md §3 invariant (a)).
func (s Shape) RepairThreshold() int {
	return (s.BlockSize + 1) / 2
}
