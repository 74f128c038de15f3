// Package btb models a branch target buffer: a set-associative table mapping
// fetch addresses to branch targets, shared by hardware threads through
// thread-aware indexing.
package btb

import (
	"fmt"
	"io"

	"github.com/uarchlab/cachelib/assoc"
	"github.com/uarchlab/cachelib/datarecording"
	"github.com/uarchlab/cachelib/satcounter"
)

// BranchType classifies the branch stored in an entry.
type BranchType int

const (
	BranchDirectCond BranchType = iota
	BranchDirectUncond
	BranchIndirect
	BranchCall
	BranchReturn

	numBranchTypes
)

func (t BranchType) String() string {
	switch t {
	case BranchDirectCond:
		return "DirectCond"
	case BranchDirectUncond:
		return "DirectUncond"
	case BranchIndirect:
		return "Indirect"
	case BranchCall:
		return "Call"
	case BranchReturn:
		return "Return"
	default:
		return fmt.Sprintf("BranchType(%d)", int(t))
	}
}

// Stats counts buffer activity per branch type.
type Stats struct {
	Lookups [numBranchTypes]uint64
	Misses  [numBranchTypes]uint64
	Updates [numBranchTypes]uint64
	Inserts uint64
}

type target struct {
	Target     uint64
	Inst       any
	Type       BranchType
	Confidence satcounter.Counter
}

type updateTrace struct {
	PC     uint64
	TID    int
	Target uint64
	Type   string
}

// A TargetBuffer predicts branch targets by fetch address and thread.
type TargetBuffer struct {
	name           string
	buffer         *assoc.Cache[target]
	confidenceBits int
	stats          Stats

	recorder  datarecording.Recorder
	traceName string
}

func (b *TargetBuffer) key(tid int, instPC uint64) assoc.Key {
	return assoc.Key{Addr: instPC, TID: tid}
}

// Name returns the buffer's name.
func (b *TargetBuffer) Name() string {
	return b.name
}

// Valid reports whether the buffer holds a target for the address, without
// disturbing replacement state.
func (b *TargetBuffer) Valid(tid int, instPC uint64) bool {
	return b.buffer.IsEntryValid(b.key(tid, instPC))
}

// Lookup returns the predicted target for a fetch address, and whether the
// buffer hit. A hit counts as a use of the entry.
func (b *TargetBuffer) Lookup(
	tid int,
	instPC uint64,
	brType BranchType,
) (uint64, bool) {
	b.stats.Lookups[brType]++

	entry := b.buffer.AccessEntry(b.key(tid, instPC))
	if entry == nil {
		b.stats.Misses[brType]++
		return 0, false
	}

	return entry.Payload.Target, true
}

// GetInst returns the static instruction stored with the entry, or nil on a
// miss. It does not disturb replacement state.
func (b *TargetBuffer) GetInst(tid int, instPC uint64) any {
	entry := b.buffer.Lookup(b.key(tid, instPC))
	if entry == nil {
		return nil
	}

	return entry.Payload.Inst
}

// Update records the resolved target of a branch. A hit refreshes the entry
// in place; a miss evicts a victim and fills its slot with a fresh confidence
// counter.
func (b *TargetBuffer) Update(
	tid int,
	instPC uint64,
	brTarget uint64,
	brType BranchType,
	inst any,
) {
	b.stats.Updates[brType]++
	b.record(instPC, tid, brTarget, brType)

	key := b.key(tid, instPC)

	entry := b.buffer.Lookup(key)
	if entry != nil {
		entry.Payload.Target = brTarget
		entry.Payload.Inst = inst
		entry.Payload.Type = brType
		b.buffer.Touch(entry)
		return
	}

	b.stats.Inserts++
	victim := b.buffer.FindVictim(key)
	b.buffer.InsertEntry(key, victim, target{
		Target:     brTarget,
		Inst:       inst,
		Type:       brType,
		Confidence: satcounter.New(b.confidenceBits, 0),
	})
}

// UpdateConfidence moves the entry's confidence counter up on a correct
// prediction and down on a mispredict. Misses are ignored.
func (b *TargetBuffer) UpdateConfidence(tid int, instPC uint64, correct bool) {
	entry := b.buffer.Lookup(b.key(tid, instPC))
	if entry == nil {
		return
	}

	if correct {
		entry.Payload.Confidence.Increment()
	} else {
		entry.Payload.Confidence.Decrement()
	}
}

// Confidence returns the entry's confidence saturation in [0, 1], and whether
// the address hit.
func (b *TargetBuffer) Confidence(tid int, instPC uint64) (float64, bool) {
	entry := b.buffer.Lookup(b.key(tid, instPC))
	if entry == nil {
		return 0, false
	}

	return entry.Payload.Confidence.Saturation(), true
}

// Clear invalidates the whole buffer.
func (b *TargetBuffer) Clear() {
	b.buffer.Clear()
}

// Stats returns a snapshot of the activity counters.
func (b *TargetBuffer) Stats() Stats {
	return b.stats
}

// DumpTo writes the buffer contents and counters for debugging.
func (b *TargetBuffer) DumpTo(w io.Writer) {
	b.buffer.DumpTo(w)

	for t := BranchType(0); t < numBranchTypes; t++ {
		fmt.Fprintf(w, "  %-12s lookups %d misses %d updates %d\n",
			t, b.stats.Lookups[t], b.stats.Misses[t], b.stats.Updates[t])
	}
}

func (b *TargetBuffer) record(
	pc uint64,
	tid int,
	brTarget uint64,
	brType BranchType,
) {
	if b.recorder == nil {
		return
	}

	b.recorder.InsertData(b.traceName, updateTrace{
		PC:     pc,
		TID:    tid,
		Target: brTarget,
		Type:   brType.String(),
	})
}
