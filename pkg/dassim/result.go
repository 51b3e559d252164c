package dassim

// Progress series keys, exactly as named in the external Shape/Result
// contract so that orchestrator tooling (pkg/dasxml) can address them
// without re-deriving the list.
const (
	SeriesSamplesReceived = "samples received"
	SeriesNodesReady      = "nodes ready"
	SeriesValidatorsReady = "validators ready"
	SeriesTxBuilderMean   = "TX builder mean"
	SeriesTxClass1Mean    = "TX class1 mean"
	SeriesTxClass2Mean    = "TX class2 mean"
	SeriesRxClass1Mean    = "RX class1 mean"
	SeriesRxClass2Mean    = "RX class2 mean"
	SeriesDupClass1Mean   = "Dup class1 mean"
	SeriesDupClass2Mean   = "Dup class2 mean"
)

// Result is the boundary record produced by one Simulator run: the Shape
// that produced it, the per-step missing-sample counts, optionally a named
// progress series, and the terminal metrics.
type Result struct {
	Shape Shape

	// MissingVector holds one entry per step, plus exactly one terminal
	// duplicate appended on the run's terminal transition (success or
	// stall) — never two, per spec.md §9's second open question.
	MissingVector []int

	// Progress maps a SeriesXxx key to its per-step value, present only
	// when the caller requested progress tracking.
	Progress map[string][]float64

	// TTA is the step index at which MissingSamples first reached zero, or
	// -1 if the run stalled instead.
	TTA int

	// MissingSamples is the final missing-sample count.
	MissingSamples int

	// Stalled is true if the run terminated because missingSamples made no
	// progress across consecutive steps, rather than reaching zero.
	Stalled bool
}
