package btb

import (
	"github.com/uarchlab/cachelib/assoc"
	"github.com/uarchlab/cachelib/datarecording"
)

// A Builder configures and creates target buffers. Defaults model a 2048
// entry, 4-way buffer for one thread with 4-byte instructions.
type Builder struct {
	numEntries          int
	associativity       int
	instShiftAmt        int
	tagBits             int
	numThreads          int
	confidenceBits      int
	replacementStrategy string
	recorder            datarecording.Recorder
}

// MakeBuilder returns a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		numEntries:          2048,
		associativity:       4,
		instShiftAmt:        2,
		tagBits:             64,
		numThreads:          1,
		confidenceBits:      2,
		replacementStrategy: "lru",
	}
}

// WithNumEntries sets the total entry count.
func (b Builder) WithNumEntries(n int) Builder {
	b.numEntries = n
	return b
}

// WithAssociativity sets the number of entries per set.
func (b Builder) WithAssociativity(a int) Builder {
	b.associativity = a
	return b
}

// WithInstShiftAmt sets how many low-order bits of the fetch address to
// ignore.
func (b Builder) WithInstShiftAmt(s int) Builder {
	b.instShiftAmt = s
	return b
}

// WithTagBits limits the stored tag width.
func (b Builder) WithTagBits(n int) Builder {
	b.tagBits = n
	return b
}

// WithNumThreads sets the number of hardware threads sharing the buffer.
func (b Builder) WithNumThreads(n int) Builder {
	b.numThreads = n
	return b
}

// WithConfidenceBits sets the width of the per-entry confidence counter.
func (b Builder) WithConfidenceBits(n int) Builder {
	b.confidenceBits = n
	return b
}

// WithReplacementStrategy selects the replacement policy by name.
func (b Builder) WithReplacementStrategy(s string) Builder {
	b.replacementStrategy = s
	return b
}

// WithTraceRecorder records every update into the recorder's database.
func (b Builder) WithTraceRecorder(r datarecording.Recorder) Builder {
	b.recorder = r
	return b
}

// Build creates the target buffer.
func (b Builder) Build(name string) *TargetBuffer {
	buffer := assoc.MakeBuilder[target]().
		WithNumEntries(b.numEntries).
		WithAssociativity(b.associativity).
		WithLog2EntryGranularity(b.instShiftAmt).
		WithTagBits(b.tagBits).
		WithNumThreads(b.numThreads).
		WithReplacementStrategy(b.replacementStrategy).
		Build(name)

	t := &TargetBuffer{
		name:           name,
		buffer:         buffer,
		confidenceBits: b.confidenceBits,
	}

	if b.recorder != nil {
		t.recorder = b.recorder
		t.traceName = name + "_updates"
		t.recorder.CreateTable(t.traceName, updateTrace{})
	}

	return t
}
