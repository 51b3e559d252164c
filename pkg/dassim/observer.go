package dassim

import (
	"gonum.org/v1/gonum/stat"

	"github.com/eth2030/dassim/pkg/dlog"
)

// ValidatorClass buckets a validator for traffic reporting.
type ValidatorClass int

const (
	ClassProposer ValidatorClass = iota
	ClassLight
	ClassHeavy
)

// ClassTrafficStats is one class's (proposer / light / heavy) summary of
// this slot's TX, RX, and duplicate-RX counters across its members.
type ClassTrafficStats struct {
	Class ValidatorClass
	Count int

	TxMean, TxMin, TxMax, TxStdDev      float64
	RxMean, RxMin, RxMax, RxStdDev      float64
	DupMean, DupMin, DupMax, DupStdDev float64
}

// Observer is a pure inspector: it never mutates validator state, only
// reads it to compute aggregate progress and traffic statistics.
type Observer struct {
	shape  Shape
	logger *dlog.Logger
}

// NewObserver builds an Observer bound to a run's Shape, used only to know
// the class boundary (Class1Ratio x NumberValidators).
func NewObserver(shape Shape, logger *dlog.Logger) *Observer {
	return &Observer{shape: shape, logger: logger.Module("observer")}
}

func (o *Observer) classOf(v *Validator) ValidatorClass {
	if v.IsProposer {
		return ClassProposer
	}
	if float64(v.ID) <= float64(o.shape.NumberValidators)*o.shape.Class1Ratio {
		return ClassLight
	}
	return ClassHeavy
}

// CheckRowsColumns counts, per topic line, how many non-proposer validators
// are assigned to it, and warns for every line with zero coverage — such a
// line can never be completed.
func (o *Observer) CheckRowsColumns(validators []*Validator) (rowCoverage, columnCoverage map[LineID]int) {
	rowCoverage = make(map[LineID]int)
	columnCoverage = make(map[LineID]int)
	blockSize := 0
	for _, v := range validators {
		if v.IsProposer {
			continue
		}
		blockSize = v.Block.Size()
		for r := range v.RowIDs.Iter() {
			rowCoverage[r]++
		}
		for c := range v.ColumnIDs.Iter() {
			columnCoverage[c]++
		}
	}
	for r := 0; r < blockSize; r++ {
		if rowCoverage[LineID(r)] == 0 {
			o.logger.Warn("row has zero assigned validators, it cannot be reconstructed", "row", r)
		}
	}
	for c := 0; c < blockSize; c++ {
		if columnCoverage[LineID(c)] == 0 {
			o.logger.Warn("column has zero assigned validators, it cannot be reconstructed", "column", c)
		}
	}
	return rowCoverage, columnCoverage
}

// Progress is the snapshot GetProgress returns each step.
type Progress struct {
	MissingSamples    int
	SampleProgress    float64
	NodeProgress      float64
	ValidatorProgress float64
}

// GetProgress aggregates arrived/expected samples across the population and
// reports the fraction of non-proposer validators whose owned lines are
// complete (NodeProgress) versus additionally "validated" (ValidatorProgress):
// complete on this step and the last two. stableStreak carries, per
// validator ID, how many consecutive steps (ending with the current one)
// that validator has had all its owned lines complete.
func (o *Observer) GetProgress(validators []*Validator, stableStreak map[int]int) Progress {
	var arrived, expected int
	var nonProposer, complete, validated int

	for _, v := range validators {
		if v.IsProposer {
			// The proposer never repairs and, under ProposerPublishOnly,
			// never receives its own segments reflected back: counting its
			// own publish failures into the population total would make a
			// network that has actually reached availability read as
			// permanently missing samples.
			continue
		}
		a, e := v.CheckStatus()
		arrived += a
		expected += e
		nonProposer++
		if v.LinesComplete() {
			complete++
			if stableStreak[v.ID] >= 3 {
				validated++
			}
		}
	}

	p := Progress{MissingSamples: expected - arrived}
	if expected > 0 {
		p.SampleProgress = float64(arrived) / float64(expected)
	}
	if nonProposer > 0 {
		p.NodeProgress = float64(complete) / float64(nonProposer)
		p.ValidatorProgress = float64(validated) / float64(nonProposer)
	}
	return p
}

func classStats(xs []float64) (mean, min, max, stddev float64) {
	if len(xs) == 0 {
		return 0, 0, 0, 0
	}
	mean = stat.Mean(xs, nil)
	stddev = stat.StdDev(xs, nil)
	min, max = xs[0], xs[0]
	for _, x := range xs {
		if x < min {
			min = x
		}
		if x > max {
			max = x
		}
	}
	return mean, min, max, stddev
}

// GetTrafficStats partitions validators into proposer/light/heavy buckets
// and computes per-class mean/min/max/stddev of the current slot's TX, RX,
// and duplicate-RX counters.
func (o *Observer) GetTrafficStats(validators []*Validator) []ClassTrafficStats {
	buckets := map[ValidatorClass][]*Validator{}
	for _, v := range validators {
		c := o.classOf(v)
		buckets[c] = append(buckets[c], v)
	}

	var out []ClassTrafficStats
	for _, class := range []ValidatorClass{ClassProposer, ClassLight, ClassHeavy} {
		members := buckets[class]
		tx := make([]float64, len(members))
		rx := make([]float64, len(members))
		dup := make([]float64, len(members))
		for i, v := range members {
			tx[i] = float64(v.StatsTxInSlot)
			rx[i] = float64(v.StatsRxInSlot)
			dup[i] = float64(v.StatsDupInSlot)
		}
		cts := ClassTrafficStats{Class: class, Count: len(members)}
		cts.TxMean, cts.TxMin, cts.TxMax, cts.TxStdDev = classStats(tx)
		cts.RxMean, cts.RxMin, cts.RxMax, cts.RxStdDev = classStats(rx)
		cts.DupMean, cts.DupMin, cts.DupMax, cts.DupStdDev = classStats(dup)
		out = append(out, cts)
	}
	return out
}
