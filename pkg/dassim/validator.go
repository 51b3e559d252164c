package dassim

import (
	"log/slog"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/eth2030/dassim/pkg/dlog"
)

// cellRef names one segment by its (row, column) coordinates.
type cellRef struct {
	Row LineID
	Col LineID
}

// SchedulerConfig selects which send strategies a Validator runs, and in
// what order, per spec.md §9's "dynamic strategy switches" design note: the
// four schedulers are independently testable functions composed by
// configuration, not runtime polymorphism over hidden validator state.
type SchedulerConfig struct {
	NodeQueueEnabled               bool
	PerNeighborQueueEnabled        bool
	SegmentShuffleEnabled          bool
	SegmentShuffleSchedulerPersist bool
	DumbRandomEnabled              bool
	DumbRandomTries                int
}

// Validator is one node in the simulation: it owns a Block view, its row and
// column interest sets, per-topic Neighbor tables, in-slot traffic counters,
// and the scheduling strategies that decide what to send each step.
type Validator struct {
	ID         int
	IsProposer bool

	Block         *Block
	receivedBlock *Block // staged receives, merged into Block at RECEIVE

	RowIDs    mapset.Set[LineID]
	ColumnIDs mapset.Set[LineID]

	// RowNeighbors[line][peerID] / ColumnNeighbors[line][peerID] index this
	// validator's Neighbor records by topic line and then by peer, since the
	// same peer may be a neighbor on more than one line.
	RowNeighbors    map[LineID]map[int]*Neighbor
	ColumnNeighbors map[LineID]map[int]*Neighbor

	nodeSendQueue    []cellRef
	nodeReceiveQueue []cellRef

	segmentShuffleGen *shuffleIterator

	StatsTxInSlot  int
	StatsRxInSlot  int
	StatsDupInSlot int

	bwUplink int
	shape    Shape
	cfg      SchedulerConfig
	rng      *Rand
	arena    *Arena
	logger   *dlog.Logger
}

// NewValidator allocates a Validator for the given block size. Interest
// sets, neighbor tables, and wiring are filled in separately by the
// Simulator during InitValidators/InitNetwork.
func NewValidator(id int, isProposer bool, blockSize int, shape Shape, cfg SchedulerConfig, rng *Rand, arena *Arena, logger *dlog.Logger) *Validator {
	bw := shape.BWUplink(id, isProposer)
	return &Validator{
		ID:              id,
		IsProposer:      isProposer,
		Block:           NewBlock(blockSize),
		receivedBlock:   NewBlock(blockSize),
		RowIDs:          mapset.NewThreadUnsafeSet[LineID](),
		ColumnIDs:       mapset.NewThreadUnsafeSet[LineID](),
		RowNeighbors:    make(map[LineID]map[int]*Neighbor),
		ColumnNeighbors: make(map[LineID]map[int]*Neighbor),
		bwUplink:        bw,
		shape:           shape,
		cfg:             cfg,
		rng:             rng,
		arena:           arena,
		logger:          logger.Module("validator"),
	}
}

// AddNeighbor registers a Neighbor record for peer on the given topic line,
// under the owning validator's RowNeighbors or ColumnNeighbors table.
func (v *Validator) AddNeighbor(dim Dim, line LineID, n *Neighbor) {
	table := v.RowNeighbors
	if dim == DimColumn {
		table = v.ColumnNeighbors
	}
	if table[line] == nil {
		table[line] = make(map[int]*Neighbor)
	}
	table[line][n.PeerID] = n
}

// receiveSegment processes an incoming segment (r, c) sent by srcID. It
// suppresses reflection by marking the sender's neighbor record as
// receiving, stages a genuinely new cell for merge at RECEIVE, and always
// counts the arrival.
func (v *Validator) receiveSegment(r, c LineID, srcID int) {
	if peers, ok := v.RowNeighbors[r]; ok {
		if n, ok := peers[srcID]; ok {
			n.MarkReceiving(c)
		}
	}
	if peers, ok := v.ColumnNeighbors[c]; ok {
		if n, ok := peers[srcID]; ok {
			n.MarkReceiving(r)
		}
	}

	isNew := !v.Block.GetSegment(r, c) && !v.receivedBlock.GetSegment(r, c)
	if isNew {
		v.receivedBlock.SetSegment(r, c)
		if v.cfg.NodeQueueEnabled || v.cfg.PerNeighborQueueEnabled {
			v.nodeReceiveQueue = append(v.nodeReceiveQueue, cellRef{Row: r, Col: c})
		}
		v.logger.Debug("segment received", "row", r, "col", c, "src", srcID, "status", "new")
	} else {
		v.StatsDupInSlot++
		v.logger.Debug("segment received", "row", r, "col", c, "src", srcID, "status", "dup")
	}
	v.StatsRxInSlot++
}

// addToSendQueue fans a freshly known (r, c) cell out to the node-level
// queue and/or the per-neighbor queues of every interested line that cell
// touches, per the enabled queueing disciplines.
func (v *Validator) addToSendQueue(r, c LineID) {
	if v.cfg.NodeQueueEnabled {
		v.nodeSendQueue = append(v.nodeSendQueue, cellRef{Row: r, Col: c})
	}
	if v.cfg.PerNeighborQueueEnabled {
		if v.RowIDs.Contains(r) {
			for _, n := range v.RowNeighbors[r] {
				n.EnqueueSend(c)
			}
		}
		if v.ColumnIDs.Contains(c) {
			for _, n := range v.ColumnNeighbors[c] {
				n.EnqueueSend(r)
			}
		}
	}
}

// sendSegmentToNeigh marks the cell sent on n's bitset, delivers it to the
// peer through the arena, and counts it against this step's TX budget.
func (v *Validator) sendSegmentToNeigh(r, c LineID, n *Neighbor) {
	if n.Dim == DimRow {
		n.MarkSent(c)
	} else {
		n.MarkSent(r)
	}
	assertInvariant(v.Block.GetSegment(r, c), "validator: sending a cell not possessed")
	v.arena.Get(n.PeerID).receiveSegment(r, c, v.ID)
	v.StatsTxInSlot++
}

func (v *Validator) budgetExhausted() bool {
	return v.StatsTxInSlot >= v.bwUplink
}

// Send runs the composed scheduling strategies in spec order, each
// returning early once the uplink budget is spent.
func (v *Validator) Send() {
	if v.budgetExhausted() {
		return
	}
	if v.cfg.NodeQueueEnabled {
		v.processSendQueue()
	}
	if v.budgetExhausted() {
		return
	}
	if v.cfg.PerNeighborQueueEnabled {
		v.processPerNeighborSendQueue()
	}
	if v.budgetExhausted() {
		return
	}
	if v.cfg.SegmentShuffleEnabled {
		v.runSegmentShuffleScheduler()
	}
	if v.budgetExhausted() {
		return
	}
	if v.cfg.DumbRandomEnabled {
		v.runDumbRandomScheduler()
	}
}

// Receive commits staged receives into Block, folds every neighbor's
// deferred Receiving into Received, and drains the node-level receive queue
// into the send queues.
func (v *Validator) Receive() {
	v.Block.Merge(v.receivedBlock)
	v.receivedBlock = NewBlock(v.Block.Size())

	for _, peers := range v.RowNeighbors {
		for _, n := range peers {
			n.Commit()
		}
	}
	for _, peers := range v.ColumnNeighbors {
		for _, n := range peers {
			n.Commit()
		}
	}

	queue := v.nodeReceiveQueue
	v.nodeReceiveQueue = nil
	for _, cell := range queue {
		v.addToSendQueue(cell.Row, cell.Col)
	}
}

// Restore attempts on-the-fly repair of every owned row and column; newly
// repaired cells are enqueued for forwarding. The proposer never repairs:
// its lines keep whatever cells publication left it with.
func (v *Validator) Restore() {
	if v.IsProposer {
		return
	}
	threshold := v.shape.RepairThreshold()
	for _, r := range sortedLineIDs(v.RowIDs) {
		delta := v.Block.RepairRow(r, threshold)
		for c := 0; c < v.Block.Size(); c++ {
			if delta.Test(uint(c)) {
				v.addToSendQueue(r, LineID(c))
			}
		}
	}
	for _, c := range sortedLineIDs(v.ColumnIDs) {
		delta := v.Block.RepairColumn(c, threshold)
		for r := 0; r < v.Block.Size(); r++ {
			if delta.Test(uint(r)) {
				v.addToSendQueue(LineID(r), c)
			}
		}
	}
}

// LogStats appends the current slot's TX/RX counters to the provided
// per-step vectors and resets the slot counters.
func (v *Validator) LogStats(txVec, rxVec *[]int) {
	*txVec = append(*txVec, v.StatsTxInSlot)
	*rxVec = append(*rxVec, v.StatsRxInSlot)
	v.StatsTxInSlot = 0
	v.StatsRxInSlot = 0
	v.StatsDupInSlot = 0
}

// CheckStatus returns the count of arrived and expected samples across this
// validator's owned lines: arrived is the sum of known cells on each owned
// row/column, expected is BlockSize per owned line. The proposer counts its
// full interest (every row and column).
func (v *Validator) CheckStatus() (arrived, expected int) {
	for r := range v.RowIDs.Iter() {
		arrived += int(v.Block.GetRow(r).Count())
		expected += v.Block.Size()
	}
	for c := range v.ColumnIDs.Iter() {
		arrived += int(v.Block.GetColumn(c).Count())
		expected += v.Block.Size()
	}
	return arrived, expected
}

// LinesComplete reports whether every owned row and column is fully known.
func (v *Validator) LinesComplete() bool {
	arrived, expected := v.CheckStatus()
	return expected > 0 && arrived == expected
}

// LogIDs dumps the validator's assigned row and column IDs at debug level,
// skipping the allocation entirely when debug logging is disabled.
func (v *Validator) LogIDs() {
	if !v.logger.Enabled(slog.LevelDebug) {
		return
	}
	v.logger.Debug("validator interest", "id", v.ID, "rows", v.RowIDs.ToSlice(), "columns", v.ColumnIDs.ToSlice())
}

// LogRows dumps, at debug level, the full contents of every owned row.
func (v *Validator) LogRows() {
	if !v.logger.Enabled(slog.LevelDebug) {
		return
	}
	for r := range v.RowIDs.Iter() {
		v.logger.Debug("row contents", "id", v.ID, "row", r, "bits", v.Block.GetRow(r).DumpAsBits())
	}
}

// LogColumns dumps, at debug level, the full contents of every owned column.
func (v *Validator) LogColumns() {
	if !v.logger.Enabled(slog.LevelDebug) {
		return
	}
	for c := range v.ColumnIDs.Iter() {
		v.logger.Debug("column contents", "id", v.ID, "col", c, "bits", v.Block.GetColumn(c).DumpAsBits())
	}
}
