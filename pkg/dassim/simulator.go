package dassim

import (
	"github.com/eth2030/dassim/pkg/dlog"
	"github.com/eth2030/dassim/pkg/simmetrics"
)

// Simulator builds the validator population and topic overlays for one run
// and drives the synchronous SEND/RECEIVE/RESTORE/LOG step loop until the
// block is fully available or the run stalls.
type Simulator struct {
	shape Shape
	cfg   Config

	rng    *Rand
	logger *dlog.Logger

	validators []*Validator
	arena      *Arena
	observer   *Observer
}

// NewSimulator wires a Simulator for one run. The RNG seed is shape.Run,
// replaced by cfg.RandomSeed when cfg.Deterministic is set and RandomSeed is
// non-zero; it never comes from a process-global source, so that parallel sweep
// workers never share random state (spec.md §9, "Global RNG").
func NewSimulator(shape Shape, cfg Config, logger *dlog.Logger) *Simulator {
	seed := int64(shape.Run)
	if cfg.Deterministic && cfg.RandomSeed != 0 {
		seed = cfg.RandomSeed
	}
	return &Simulator{
		shape:  shape,
		cfg:    cfg,
		rng:    NewRand(seed),
		logger: logger.Module("simulator"),
	}
}

// InitValidators allocates NumberNodes validators (validator 0 is the
// proposer, interested in every row and column) and assigns non-proposer
// interest sets either by deterministic even-line distribution or by
// independent uniform-without-replacement sampling per validator, per
// Config.EvenLineDistribution.
func (s *Simulator) InitValidators() {
	n := s.shape.NumberNodes()
	s.validators = make([]*Validator, n)
	for id := 0; id < n; id++ {
		s.validators[id] = NewValidator(id, id == 0, s.shape.BlockSize, s.shape, s.cfg.Schedulers, s.rng, nil, s.logger)
	}
	s.arena = NewArena(s.validators)
	for _, v := range s.validators {
		v.arena = s.arena
	}

	proposer := s.validators[0]
	for r := 0; r < s.shape.BlockSize; r++ {
		proposer.RowIDs.Add(LineID(r))
	}
	for c := 0; c < s.shape.BlockSize; c++ {
		proposer.ColumnIDs.Add(LineID(c))
	}

	if s.cfg.EvenLineDistribution {
		s.assignEvenLineDistribution()
	} else {
		s.assignRandomInterest()
	}
}

func (s *Simulator) assignRandomInterest() {
	blockSize := s.shape.BlockSize
	for id := 1; id < len(s.validators); id++ {
		v := s.validators[id]
		chi := s.shape.Chi(id)
		if chi < 1 || chi > blockSize {
			s.logger.Warn("chi out of range, clamping", "err", ErrChiOutOfRange, "validator", id, "chi", chi, "blockSize", blockSize)
		}
		if chi < 1 {
			chi = 1
		}
		if chi > blockSize {
			chi = blockSize
		}
		for _, r := range s.rng.IntsN(blockSize, chi) {
			v.RowIDs.Add(LineID(r))
		}
		for _, c := range s.rng.IntsN(blockSize, chi) {
			v.ColumnIDs.Add(LineID(c))
		}
	}
}

// assignEvenLineDistribution deals row and column IDs by striding over a
// shuffled sequence, so that (given enough validators) every row and every
// column index is claimed by at least one non-proposer.
func (s *Simulator) assignEvenLineDistribution() {
	if len(s.validators) <= 1 {
		return
	}
	blockSize := s.shape.BlockSize
	rowOrder := s.rng.Perm(blockSize)
	colOrder := s.rng.Perm(blockSize)
	cursor := 0
	for id := 1; id < len(s.validators); id++ {
		v := s.validators[id]
		chi := s.shape.Chi(id)
		for k := 0; k < chi; k++ {
			v.RowIDs.Add(LineID(rowOrder[(cursor+k)%blockSize]))
			v.ColumnIDs.Add(LineID(colOrder[(cursor+k)%blockSize]))
		}
		cursor += chi
	}
}

// InitNetwork builds the row and column topic overlays and installs
// Neighbor records on every member, then wires one-directional publish
// links from the proposer when ProposerPublishOnly is set.
func (s *Simulator) InitNetwork() {
	if s.shape.NetDegree%2 != 0 {
		s.logger.Warn("netDegree is odd, random regular graph construction requires even degree", "err", ErrNetDegreeOdd, "netDegree", s.shape.NetDegree)
	}
	for r := 0; r < s.shape.BlockSize; r++ {
		s.wireTopic(DimRow, LineID(r))
	}
	for c := 0; c < s.shape.BlockSize; c++ {
		s.wireTopic(DimColumn, LineID(c))
	}
}

func (s *Simulator) topicMembers(dim Dim, line LineID) []int {
	var members []int
	for _, v := range s.validators {
		if v.IsProposer {
			if !s.shape.ProposerPublishOnly {
				members = append(members, v.ID)
			}
			continue
		}
		interest := v.RowIDs
		if dim == DimColumn {
			interest = v.ColumnIDs
		}
		if interest.Contains(line) {
			members = append(members, v.ID)
		}
	}
	return members
}

func (s *Simulator) wireTopic(dim Dim, line LineID) {
	members := s.topicMembers(dim, line)
	if len(members) == 0 {
		simmetrics.OverlayEmptyTopic.Inc()
	}
	edges, connected := BuildOverlay(members, s.shape.NetDegree, s.rng, s.logger)
	if !connected {
		simmetrics.OverlayDisconnected.Inc()
	}

	sendLineUntil := s.shape.SendLineUntil()
	for _, e := range edges {
		aID, bID := members[e.a], members[e.b]
		a, b := s.arena.Get(aID), s.arena.Get(bID)
		a.AddNeighbor(dim, line, NewNeighbor(bID, dim, line, s.shape.BlockSize, sendLineUntil))
		b.AddNeighbor(dim, line, NewNeighbor(aID, dim, line, s.shape.BlockSize, sendLineUntil))
	}

	if !s.shape.ProposerPublishOnly || len(members) == 0 {
		return
	}
	proposer := s.validators[0]
	owns := (dim == DimRow && proposer.RowIDs.Contains(line)) || (dim == DimColumn && proposer.ColumnIDs.Contains(line))
	if !owns {
		return
	}
	k := s.shape.ProposerPublishTo
	if k > len(members) {
		k = len(members)
	}
	if k <= 0 {
		return
	}
	for _, idx := range s.rng.IntsN(len(members), k) {
		proposer.AddNeighbor(dim, line, NewNeighbor(members[idx], dim, line, s.shape.BlockSize, sendLineUntil))
	}
}

// seedProposerPublication pushes every cell the proposer holds after
// publication onto its own send queues. The proposer never learns cells
// through receiveSegment, so nothing else would ever enqueue them.
func (s *Simulator) seedProposerPublication(proposer *Validator) {
	for r := 0; r < s.shape.BlockSize; r++ {
		for c := 0; c < s.shape.BlockSize; c++ {
			if proposer.Block.GetSegment(LineID(r), LineID(c)) {
				proposer.addToSendQueue(LineID(r), LineID(c))
			}
		}
	}
}

func (s *Simulator) appendProgressSeries(result *Result, progress Progress, stats []ClassTrafficStats) {
	if result.Progress == nil {
		result.Progress = make(map[string][]float64)
	}
	push := func(key string, value float64) {
		result.Progress[key] = append(result.Progress[key], value)
	}
	push(SeriesSamplesReceived, progress.SampleProgress)
	push(SeriesNodesReady, progress.NodeProgress)
	push(SeriesValidatorsReady, progress.ValidatorProgress)
	push(SeriesTxBuilderMean, stats[ClassProposer].TxMean)
	push(SeriesTxClass1Mean, stats[ClassLight].TxMean)
	push(SeriesTxClass2Mean, stats[ClassHeavy].TxMean)
	push(SeriesRxClass1Mean, stats[ClassLight].RxMean)
	push(SeriesRxClass2Mean, stats[ClassHeavy].RxMean)
	push(SeriesDupClass1Mean, stats[ClassLight].DupMean)
	push(SeriesDupClass2Mean, stats[ClassHeavy].DupMean)
}

func updateTrafficGauges(stats []ClassTrafficStats) {
	simmetrics.TxProposerMean.Set(int64(stats[ClassProposer].TxMean))
	simmetrics.TxClass1Mean.Set(int64(stats[ClassLight].TxMean))
	simmetrics.TxClass2Mean.Set(int64(stats[ClassHeavy].TxMean))
	simmetrics.RxClass1Mean.Set(int64(stats[ClassLight].RxMean))
	simmetrics.RxClass2Mean.Set(int64(stats[ClassHeavy].RxMean))
	simmetrics.DupClass1Mean.Set(int64(stats[ClassLight].DupMean))
	simmetrics.DupClass2Mean.Set(int64(stats[ClassHeavy].DupMean))
}

// Run publishes the proposer's block under the configured failure rate,
// then iterates the four-phase step loop in validator-ID order until either
// every sample has arrived or a step makes no net progress. Exactly one
// terminal MissingVector entry is appended on top of the regular per-step
// entries, per spec.md §9's resolved "double append" open question.
func (s *Simulator) Run() Result {
	proposer := s.validators[0]
	proposer.Block.Fill()
	proposer.Block.PublishProposer(s.rng, s.shape.FailureRate)
	s.seedProposerPublication(proposer)

	observer := NewObserver(s.shape, s.logger)
	s.observer = observer

	result := Result{Shape: s.shape, TTA: -1}
	stableStreak := make(map[int]int)
	prevMissing := -1
	var txVec, rxVec []int

	step := 0
	for {
		for _, v := range s.validators {
			v.Send()
		}
		for _, v := range s.validators {
			v.Receive()
		}
		for _, v := range s.validators {
			v.Restore()
		}

		// Traffic stats must be captured before LogStats resets the
		// in-slot counters, since LOG/STATS is itself the reset point.
		trafficStats := observer.GetTrafficStats(s.validators)
		updateTrafficGauges(trafficStats)

		for _, v := range s.validators {
			v.LogStats(&txVec, &rxVec)
		}
		simmetrics.StepsTotal.Inc()

		for _, v := range s.validators {
			if v.IsProposer {
				continue
			}
			if v.LinesComplete() {
				stableStreak[v.ID]++
			} else {
				stableStreak[v.ID] = 0
			}
		}

		progress := observer.GetProgress(s.validators, stableStreak)
		simmetrics.SamplesMissing.Set(int64(progress.MissingSamples))
		result.MissingVector = append(result.MissingVector, progress.MissingSamples)
		if s.cfg.SaveProgress {
			s.appendProgressSeries(&result, progress, trafficStats)
		}
		step++

		if progress.MissingSamples == 0 {
			result.MissingVector = append(result.MissingVector, progress.MissingSamples)
			result.TTA = step
			result.MissingSamples = 0
			simmetrics.RunsCompleted.Inc()
			simmetrics.TimeToAvailability.Observe(float64(step))
			break
		}
		if progress.MissingSamples == prevMissing {
			result.MissingVector = append(result.MissingVector, progress.MissingSamples)
			result.Stalled = true
			result.MissingSamples = progress.MissingSamples
			simmetrics.RunsStalled.Inc()
			break
		}
		prevMissing = progress.MissingSamples
	}
	return result
}

// Validators exposes the validator population for tests and the observer.
func (s *Simulator) Validators() []*Validator {
	return s.validators
}
