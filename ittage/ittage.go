// Package ittage implements a TAGE-style indirect branch target predictor.
// Several tagged tables are indexed by the branch address hashed with
// geometrically growing slices of global history; the longest matching table
// provides the prediction, backed by a short-history base table.
package ittage

import (
	"fmt"
	"io"
	"math"
	"math/rand"

	"github.com/uarchlab/cachelib/assoc"
	"github.com/uarchlab/cachelib/satcounter"
)

type tableEntry struct {
	Target     uint64
	Confidence satcounter.Counter
	Useful     satcounter.Counter
}

type baseEntry struct {
	Target uint64
}

type threadHistory struct {
	ghr        []uint8
	foldedIdx  []foldedHistory
	foldedTag0 []foldedHistory
	foldedTag1 []foldedHistory
}

func (h *threadHistory) shift(bit uint8) {
	copy(h.ghr[1:], h.ghr[:len(h.ghr)-1])
	h.ghr[0] = bit

	for i := range h.foldedIdx {
		h.foldedIdx[i].update(h.ghr)
		h.foldedTag0[i].update(h.ghr)
		h.foldedTag1[i].update(h.ghr)
	}
}

func (h *threadHistory) reset() {
	for i := range h.ghr {
		h.ghr[i] = 0
	}

	for i := range h.foldedIdx {
		h.foldedIdx[i].reset()
		h.foldedTag0[i].reset()
		h.foldedTag1[i].reset()
	}
}

// A Predictor predicts indirect branch targets from the branch address and
// per-thread global history.
type Predictor struct {
	name string

	tables      []*assoc.Cache[tableEntry]
	base        *assoc.Cache[baseEntry]
	histLengths []int
	logSize     int
	tagBits     int
	instShift   int

	hist       []threadHistory
	useAltOnNA satcounter.Counter

	tick         int
	uResetPeriod int
	rng          *rand.Rand

	stats Stats
}

// Stats counts predictor activity.
type Stats struct {
	Lookups      uint64
	ProviderHits uint64
	BaseHits     uint64
	Misses       uint64
	Updates      uint64
	Allocations  uint64
	FailedAllocs uint64
	UsefulResets uint64
	AltOverrides uint64
	Mispredicts  uint64
}

// geometricHistoryLengths spreads table history lengths between minHist and
// maxHist on a geometric series.
func geometricHistoryLengths(numTables, minHist, maxHist int) []int {
	lengths := make([]int, numTables)
	lengths[0] = minHist

	for i := 1; i < numTables; i++ {
		ratio := float64(i) / float64(numTables-1)
		lengths[i] = int(math.Round(
			float64(minHist) *
				math.Pow(float64(maxHist)/float64(minHist), ratio)))

		if lengths[i] <= lengths[i-1] {
			lengths[i] = lengths[i-1] + 1
		}
	}

	return lengths
}

// Name returns the predictor's name.
func (p *Predictor) Name() string {
	return p.name
}

func (p *Predictor) tableIndex(t, tid int, pc uint64) uint64 {
	h := &p.hist[tid]
	pc >>= uint(p.instShift)

	idx := pc ^ (pc >> uint(p.logSize-t%p.logSize)) ^ h.foldedIdx[t].comp

	return idx & ((uint64(1) << p.logSize) - 1)
}

func (p *Predictor) tableTag(t, tid int, pc uint64) uint64 {
	h := &p.hist[tid]
	pc >>= uint(p.instShift)

	tag := pc ^ h.foldedTag0[t].comp ^ (h.foldedTag1[t].comp << 1)

	return tag & ((uint64(1) << p.tagBits) - 1)
}

// tableKey packs the hashed tag above the hashed index so the underlying
// direct-mapped cache sees them as its tag and set fields.
func (p *Predictor) tableKey(t, tid int, pc uint64) assoc.Key {
	return assoc.Key{
		Addr: p.tableTag(t, tid, pc)<<p.logSize | p.tableIndex(t, tid, pc),
	}
}

func (p *Predictor) baseKey(pc uint64) assoc.Key {
	return assoc.Key{Addr: pc}
}

type match struct {
	table int
	entry *assoc.Entry[tableEntry]
}

// findMatches returns the two longest-history table hits, provider first.
// Either may be nil.
func (p *Predictor) findMatches(tid int, pc uint64) (provider, alt *match) {
	for t := len(p.tables) - 1; t >= 0; t-- {
		entry := p.tables[t].Lookup(p.tableKey(t, tid, pc))
		if entry == nil {
			continue
		}

		m := &match{table: t, entry: entry}
		if provider == nil {
			provider = m
		} else {
			alt = m
			break
		}
	}

	return provider, alt
}

func (p *Predictor) altTarget(alt *match, pc uint64) (uint64, bool) {
	if alt != nil {
		return alt.entry.Payload.Target, true
	}

	base := p.base.Lookup(p.baseKey(pc))
	if base != nil {
		return base.Payload.Target, true
	}

	return 0, false
}

// newlyAllocated reports whether an entry has not yet built confidence.
func newlyAllocated(e *assoc.Entry[tableEntry]) bool {
	return e.Payload.Confidence.IsMin()
}

// Predict returns the predicted target for an indirect branch, and whether
// any table provided one. It reads no less and no more than Update will see
// for the same branch, and perturbs nothing.
func (p *Predictor) Predict(tid int, pc uint64) (uint64, bool) {
	p.stats.Lookups++

	provider, alt := p.findMatches(tid, pc)
	altTgt, altOK := p.altTarget(alt, pc)

	if provider != nil {
		p.stats.ProviderHits++

		if newlyAllocated(provider.entry) && altOK &&
			p.useAltOnNA.Saturation() > 0.5 {
			p.stats.AltOverrides++
			return altTgt, true
		}

		return provider.entry.Payload.Target, true
	}

	if altOK {
		p.stats.BaseHits++
		return altTgt, true
	}

	p.stats.Misses++

	return 0, false
}

// Update trains the predictor with the resolved target of an indirect branch
// and then folds the outcome into the global history. It must be called with
// the same history state the prediction was made under, before updates for
// younger branches.
func (p *Predictor) Update(tid int, pc uint64, target uint64) {
	p.stats.Updates++

	provider, alt := p.findMatches(tid, pc)
	altTgt, altOK := p.altTarget(alt, pc)

	predicted, predOK := p.finalPrediction(provider, altTgt, altOK)
	mispredicted := !predOK || predicted != target
	if mispredicted {
		p.stats.Mispredicts++
	}

	if provider != nil {
		p.trainProvider(provider, altTgt, altOK, target)
	}

	if mispredicted {
		providerTable := -1
		if provider != nil {
			providerTable = provider.table
		}

		if providerTable < len(p.tables)-1 {
			p.allocate(tid, pc, target, providerTable)
		}
	}

	p.updateBase(pc, target)
	p.tickUsefulness()

	bit := uint8(((pc >> uint(p.instShift)) ^
		(target >> uint(p.instShift))) & 1)
	p.hist[tid].shift(bit)
}

func (p *Predictor) finalPrediction(
	provider *match,
	altTgt uint64,
	altOK bool,
) (uint64, bool) {
	if provider == nil {
		return altTgt, altOK
	}

	if newlyAllocated(provider.entry) && altOK &&
		p.useAltOnNA.Saturation() > 0.5 {
		return altTgt, true
	}

	return provider.entry.Payload.Target, true
}

func (p *Predictor) trainProvider(
	provider *match,
	altTgt uint64,
	altOK bool,
	target uint64,
) {
	e := provider.entry
	providerCorrect := e.Payload.Target == target
	altCorrect := altOK && altTgt == target

	// Weak entries whose alternate disagrees vote on the useAltOnNA policy.
	if newlyAllocated(e) && altOK && altTgt != e.Payload.Target {
		if providerCorrect {
			p.useAltOnNA.Decrement()
		} else {
			p.useAltOnNA.Increment()
		}
	}

	if providerCorrect {
		e.Payload.Confidence.Increment()
	} else if e.Payload.Confidence.IsMin() {
		e.Payload.Target = target
	} else {
		e.Payload.Confidence.Decrement()
	}

	if altOK && altTgt != e.Payload.Target {
		if providerCorrect {
			e.Payload.Useful.Increment()
		} else if altCorrect {
			e.Payload.Useful.Decrement()
		}
	}
}

// allocate claims an entry with no proven usefulness in a table with longer
// history than the provider, starting at a random candidate so the same
// table is not always preferred. When every candidate is still useful, their
// usefulness decays instead.
func (p *Predictor) allocate(tid int, pc uint64, target uint64, after int) {
	numCandidates := len(p.tables) - 1 - after
	start := after + 1 + p.rng.Intn(numCandidates)

	for i := 0; i < numCandidates; i++ {
		t := after + 1 + (start-after-1+i)%numCandidates

		key := p.tableKey(t, tid, pc)
		entry := p.tables[t].Lookup(key)

		if entry != nil && !entry.Payload.Useful.IsMin() {
			continue
		}

		victim := p.tables[t].FindVictim(key)
		p.tables[t].InsertEntry(key, victim, tableEntry{
			Target:     target,
			Confidence: satcounter.New(confidenceBits, 0),
			Useful:     satcounter.New(usefulBits, 0),
		})
		p.stats.Allocations++

		return
	}

	for t := after + 1; t < len(p.tables); t++ {
		entry := p.tables[t].Lookup(p.tableKey(t, tid, pc))
		if entry != nil {
			entry.Payload.Useful.Decrement()
		}
	}

	p.stats.FailedAllocs++
}

func (p *Predictor) updateBase(pc uint64, target uint64) {
	key := p.baseKey(pc)

	entry := p.base.AccessEntry(key)
	if entry != nil {
		entry.Payload.Target = target
		return
	}

	victim := p.base.FindVictim(key)
	p.base.InsertEntry(key, victim, baseEntry{Target: target})
}

// tickUsefulness ages all usefulness counters periodically so stale entries
// become reclaimable.
func (p *Predictor) tickUsefulness() {
	p.tick++
	if p.tick < p.uResetPeriod {
		return
	}

	p.tick = 0
	p.stats.UsefulResets++

	for _, table := range p.tables {
		for set := 0; set < table.NumSets(); set++ {
			for way := 0; way < table.Associativity(); way++ {
				entry := table.EntryAt(assoc.EntryID{Set: set, Way: way})
				if entry.Valid() {
					entry.Payload.Useful.Decrement()
				}
			}
		}
	}
}

// Clear erases all tables, histories, and counters.
func (p *Predictor) Clear() {
	for _, table := range p.tables {
		table.Clear()
	}

	p.base.Clear()

	for i := range p.hist {
		p.hist[i].reset()
	}

	p.useAltOnNA.Reset()
	p.tick = 0
}

// Stats returns a snapshot of the activity counters.
func (p *Predictor) Stats() Stats {
	return p.stats
}

// DumpTo writes the predictor configuration and counters for debugging.
func (p *Predictor) DumpTo(w io.Writer) {
	fmt.Fprintf(w, "%s: %d tagged tables, base %d entries\n",
		p.name, len(p.tables), p.base.Capacity())

	for t, length := range p.histLengths {
		fmt.Fprintf(w, "  table %d history %d\n", t, length)
	}

	fmt.Fprintf(w,
		"  lookups %d updates %d mispredicts %d allocations %d\n",
		p.stats.Lookups, p.stats.Updates,
		p.stats.Mispredicts, p.stats.Allocations)
}
