package storeset

import "github.com/uarchlab/cachelib/assoc"

// A Builder configures and creates store-set predictors.
type Builder struct {
	ssitEntries       int
	ssitAssociativity int
	lfstSize          int
	instShiftAmt      int
	clearPeriod       int
}

// MakeBuilder returns a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		ssitEntries:       1024,
		ssitAssociativity: 4,
		lfstSize:          1024,
		instShiftAmt:      2,
		clearPeriod:       250000,
	}
}

// WithSSITEntries sets the store-set ID table capacity.
func (b Builder) WithSSITEntries(n int) Builder {
	b.ssitEntries = n
	return b
}

// WithSSITAssociativity sets the store-set ID table associativity.
func (b Builder) WithSSITAssociativity(a int) Builder {
	b.ssitAssociativity = a
	return b
}

// WithLFSTSize sets the number of store sets tracked at once.
func (b Builder) WithLFSTSize(n int) Builder {
	b.lfstSize = n
	return b
}

// WithInstShiftAmt sets how many low-order PC bits to ignore.
func (b Builder) WithInstShiftAmt(s int) Builder {
	b.instShiftAmt = s
	return b
}

// WithClearPeriod sets how many memory operations pass between full clears.
func (b Builder) WithClearPeriod(n int) Builder {
	b.clearPeriod = n
	return b
}

// Build creates the predictor.
func (b Builder) Build(name string) *Predictor {
	ssit := assoc.MakeBuilder[SSID]().
		WithNumEntries(b.ssitEntries).
		WithAssociativity(b.ssitAssociativity).
		WithLog2EntryGranularity(b.instShiftAmt).
		Build(name + ".SSIT")

	return &Predictor{
		name:         name,
		ssit:         ssit,
		lfst:         make([]InstSeqNum, b.lfstSize),
		validLFST:    make([]bool, b.lfstSize),
		storeList:    make(map[InstSeqNum]SSID),
		instShiftAmt: b.instShiftAmt,
		clearPeriod:  b.clearPeriod,
	}
}
