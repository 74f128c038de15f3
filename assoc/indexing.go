package assoc

import (
	"errors"
	"math/bits"
)

// ErrUnsupported reports that an indexing policy cannot reconstruct a key
// from a tag and an entry position, because the key carries fields that are
// not recoverable from the stored state.
var ErrUnsupported = errors.New("assoc: key reconstruction not supported")

// An IndexingPolicy maps lookup keys to candidate sets and tags. Policies are
// pure functions of their configuration and the key; they hold no per-entry
// state.
type IndexingPolicy interface {
	// NumSets returns the number of sets the policy partitions keys into.
	NumSets() int

	// SetIndex returns the set a key maps to.
	SetIndex(key Key) int

	// TagOf extracts the tag compared against stored tags.
	TagOf(key Key) Tag

	// RegenerateKey reconstructs the key an entry at id was inserted under.
	// Returns ErrUnsupported when the key space is not invertible.
	RegenerateKey(tag Tag, id EntryID) (Key, error)
}

func log2i(n int) int {
	if n <= 0 || n&(n-1) != 0 {
		panic("assoc: value must be a positive power of 2")
	}

	return bits.TrailingZeros(uint(n))
}

// SetAssociative selects sets by a bit field of the address: the set index is
// the address shifted by the entry granularity and masked by the set count,
// and the tag is the remaining high-order bits masked to the configured
// width. The set count must be a power of 2.
type SetAssociative struct {
	numSets  int
	setShift uint
	setMask  uint64
	tagShift uint
	tagMask  uint64
}

// NewSetAssociative creates a shift/mask indexing policy.
// log2EntryGranularity is the number of low-order address bits covered by one
// entry (e.g. 2 for 4-byte instructions). tagBits limits the stored tag
// width; values outside (0, 64) keep the full remaining address.
func NewSetAssociative(
	numSets int,
	log2EntryGranularity int,
	tagBits int,
) *SetAssociative {
	log2Sets := log2i(numSets)

	p := &SetAssociative{
		numSets:  numSets,
		setShift: uint(log2EntryGranularity),
		setMask:  uint64(numSets - 1),
		tagShift: uint(log2EntryGranularity + log2Sets),
		tagMask:  tagMask(tagBits),
	}

	return p
}

func tagMask(tagBits int) uint64 {
	if tagBits <= 0 || tagBits >= 64 {
		return ^uint64(0)
	}

	return (uint64(1) << tagBits) - 1
}

// NumSets returns the number of sets.
func (p *SetAssociative) NumSets() int {
	return p.numSets
}

// SetIndex extracts the set index bit field from the key's address.
func (p *SetAssociative) SetIndex(key Key) int {
	return int((key.Addr >> p.setShift) & p.setMask)
}

// TagOf extracts the tag bits above the set index field.
func (p *SetAssociative) TagOf(key Key) Tag {
	return Tag{Addr: (key.Addr >> p.tagShift) & p.tagMask}
}

// RegenerateKey rebuilds the address from the tag and set position. Low-order
// bits inside the entry granularity are lost and returned as zero.
func (p *SetAssociative) RegenerateKey(tag Tag, id EntryID) (Key, error) {
	addr := tag.Addr<<p.tagShift | uint64(id.Set)<<p.setShift

	return Key{Addr: addr}, nil
}

// ThreadAwareSetAssociative mixes the hardware-thread id into the set index
// so that threads sharing a structure spread across different sets, and keeps
// the thread id as part of the tag so entries of different threads never
// alias. The thread count must be a power of 2 and cannot exceed the set
// count.
type ThreadAwareSetAssociative struct {
	SetAssociative

	tidShift uint
}

// NewThreadAwareSetAssociative creates a thread-aware shift/mask policy for
// numThreads hardware threads.
func NewThreadAwareSetAssociative(
	numSets int,
	log2EntryGranularity int,
	tagBits int,
	numThreads int,
) *ThreadAwareSetAssociative {
	log2Sets := log2i(numSets)
	log2Threads := log2i(numThreads)

	if log2Threads > log2Sets {
		panic("assoc: thread count cannot exceed set count")
	}

	return &ThreadAwareSetAssociative{
		SetAssociative: *NewSetAssociative(
			numSets, log2EntryGranularity, tagBits),
		tidShift: uint(log2Sets - log2Threads),
	}
}

// SetIndex XORs the thread id, shifted to the top of the index field, with
// the address bit field.
func (p *ThreadAwareSetAssociative) SetIndex(key Key) int {
	return int(((key.Addr >> p.setShift) ^
		(uint64(key.TID) << p.tidShift)) & p.setMask)
}

// TagOf extracts the address tag and carries the thread id alongside it.
func (p *ThreadAwareSetAssociative) TagOf(key Key) Tag {
	return Tag{
		Addr: (key.Addr >> p.tagShift) & p.tagMask,
		TID:  key.TID,
	}
}

// RegenerateKey always fails: the thread id is folded into the set index, so
// the address bits it displaced cannot be recovered.
func (p *ThreadAwareSetAssociative) RegenerateKey(
	tag Tag,
	id EntryID,
) (Key, error) {
	return Key{}, ErrUnsupported
}
