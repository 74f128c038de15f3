package ittage

import (
	"fmt"
	"math/rand"

	"github.com/uarchlab/cachelib/assoc"
	"github.com/uarchlab/cachelib/satcounter"
)

const (
	confidenceBits = 2
	usefulBits     = 2
	useAltBits     = 4
)

// A Builder configures and creates indirect target predictors.
type Builder struct {
	numTables    int
	logSize      int
	tagBits      int
	minHist      int
	maxHist      int
	baseEntries  int
	baseAssoc    int
	instShiftAmt int
	numThreads   int
	uResetPeriod int
	seed         int64
}

// MakeBuilder returns a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		numTables:    6,
		logSize:      9,
		tagBits:      9,
		minHist:      4,
		maxHist:      128,
		baseEntries:  1024,
		baseAssoc:    2,
		instShiftAmt: 2,
		numThreads:   1,
		uResetPeriod: 1 << 17,
		seed:         1,
	}
}

// WithNumTables sets the number of tagged tables.
func (b Builder) WithNumTables(n int) Builder {
	b.numTables = n
	return b
}

// WithLogSize sets the log2 of each tagged table's entry count.
func (b Builder) WithLogSize(n int) Builder {
	b.logSize = n
	return b
}

// WithTagBits sets the hashed tag width of the tagged tables.
func (b Builder) WithTagBits(n int) Builder {
	b.tagBits = n
	return b
}

// WithHistoryLengths sets the shortest and longest history slice. The tables
// in between follow a geometric series.
func (b Builder) WithHistoryLengths(minHist, maxHist int) Builder {
	b.minHist = minHist
	b.maxHist = maxHist
	return b
}

// WithBaseTable sets the geometry of the tagless base table.
func (b Builder) WithBaseTable(entries, associativity int) Builder {
	b.baseEntries = entries
	b.baseAssoc = associativity
	return b
}

// WithInstShiftAmt sets how many low-order PC bits to ignore.
func (b Builder) WithInstShiftAmt(s int) Builder {
	b.instShiftAmt = s
	return b
}

// WithNumThreads sets the number of hardware threads with separate histories.
func (b Builder) WithNumThreads(n int) Builder {
	b.numThreads = n
	return b
}

// WithUsefulResetPeriod sets how many updates pass between usefulness decays.
func (b Builder) WithUsefulResetPeriod(n int) Builder {
	b.uResetPeriod = n
	return b
}

// WithSeed seeds the allocation randomizer.
func (b Builder) WithSeed(seed int64) Builder {
	b.seed = seed
	return b
}

// Build creates the predictor.
func (b Builder) Build(name string) *Predictor {
	if b.numTables < 2 {
		panic("predictor needs at least 2 tagged tables")
	}

	histLengths := geometricHistoryLengths(b.numTables, b.minHist, b.maxHist)

	p := &Predictor{
		name:         name,
		tables:       make([]*assoc.Cache[tableEntry], b.numTables),
		histLengths:  histLengths,
		logSize:      b.logSize,
		tagBits:      b.tagBits,
		instShift:    b.instShiftAmt,
		hist:         make([]threadHistory, b.numThreads),
		useAltOnNA:   satcounter.New(useAltBits, 1<<(useAltBits-1)-1),
		uResetPeriod: b.uResetPeriod,
		rng:          rand.New(rand.NewSource(b.seed)),
	}

	for t := range p.tables {
		p.tables[t] = assoc.MakeBuilder[tableEntry]().
			WithNumEntries(1 << b.logSize).
			WithAssociativity(1).
			WithTagBits(b.tagBits).
			Build(fmt.Sprintf("%s.T%d", name, t))
	}

	maxLen := histLengths[len(histLengths)-1]

	for tid := range p.hist {
		h := &p.hist[tid]
		h.ghr = make([]uint8, maxLen+1)
		h.foldedIdx = make([]foldedHistory, b.numTables)
		h.foldedTag0 = make([]foldedHistory, b.numTables)
		h.foldedTag1 = make([]foldedHistory, b.numTables)

		for t, length := range histLengths {
			h.foldedIdx[t] = newFoldedHistory(length, b.logSize)
			h.foldedTag0[t] = newFoldedHistory(length, b.tagBits)
			h.foldedTag1[t] = newFoldedHistory(length, b.tagBits-1)
		}
	}

	p.base = assoc.MakeBuilder[baseEntry]().
		WithNumEntries(b.baseEntries).
		WithAssociativity(b.baseAssoc).
		WithLog2EntryGranularity(b.instShiftAmt).
		Build(name + ".Base")

	return p
}
