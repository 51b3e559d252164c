package simmetrics

// Pre-defined metrics for the DAS dissemination simulator. All metrics live
// in DefaultRegistry so they are globally accessible without passing a
// registry around, and so a running sweep can expose them over
// PrometheusExporter without every Simulator instance wiring its own
// registry.

var (
	// ---- Run-level metrics ----

	// StepsTotal counts synchronous simulation steps executed across all runs.
	StepsTotal = DefaultRegistry.Counter("run.steps_total")
	// RunsCompleted counts simulations that reached full availability.
	RunsCompleted = DefaultRegistry.Counter("run.completed")
	// RunsStalled counts simulations that terminated on zero net progress.
	RunsStalled = DefaultRegistry.Counter("run.stalled")
	// TimeToAvailability records the step index at which a run became fully
	// available.
	TimeToAvailability = DefaultRegistry.Histogram("run.tta_steps")

	// ---- Overlay metrics ----

	// OverlayDisconnected counts topic overlays whose random regular graph
	// draw was not connected (spec.md's OverlayError).
	OverlayDisconnected = DefaultRegistry.Counter("overlay.disconnected")
	// OverlayEmptyTopic counts topics with zero assigned validators.
	OverlayEmptyTopic = DefaultRegistry.Counter("overlay.empty_topic")
	// OverlayRegenerations counts random-regular-graph redraws needed to
	// reach a connected overlay.
	OverlayRegenerations = DefaultRegistry.Counter("overlay.regenerations")

	// ---- Validator traffic metrics ----

	// SamplesMissing tracks the current population-wide missing sample count.
	SamplesMissing = DefaultRegistry.Gauge("traffic.samples_missing")
	// TxProposerMean / TxClass1Mean / TxClass2Mean track the per-step mean
	// transmitted segment counts by validator class.
	TxProposerMean = DefaultRegistry.Gauge("traffic.tx_proposer_mean")
	TxClass1Mean   = DefaultRegistry.Gauge("traffic.tx_class1_mean")
	TxClass2Mean   = DefaultRegistry.Gauge("traffic.tx_class2_mean")
	// RxClass1Mean / RxClass2Mean track per-step mean received segment counts.
	RxClass1Mean = DefaultRegistry.Gauge("traffic.rx_class1_mean")
	RxClass2Mean = DefaultRegistry.Gauge("traffic.rx_class2_mean")
	// DupClass1Mean / DupClass2Mean track per-step mean duplicate-receive counts.
	DupClass1Mean = DefaultRegistry.Gauge("traffic.dup_class1_mean")
	DupClass2Mean = DefaultRegistry.Gauge("traffic.dup_class2_mean")
)
