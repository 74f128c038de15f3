package ittage

// foldedHistory compresses the youngest origLength bits of the global history
// into compLength bits by cyclic folding, updated incrementally as bits shift
// in and out.
type foldedHistory struct {
	comp       uint64
	compLength int
	origLength int
	outpoint   int
}

func newFoldedHistory(origLength, compLength int) foldedHistory {
	return foldedHistory{
		compLength: compLength,
		origLength: origLength,
		outpoint:   origLength % compLength,
	}
}

// update shifts the newest history bit h[0] in and folds the outgoing bit
// h[origLength] out.
func (f *foldedHistory) update(h []uint8) {
	f.comp = (f.comp << 1) | uint64(h[0])
	f.comp ^= uint64(h[f.origLength]) << f.outpoint
	f.comp ^= f.comp >> f.compLength
	f.comp &= (uint64(1) << f.compLength) - 1
}

func (f *foldedHistory) reset() {
	f.comp = 0
}
