package assoc

// A Builder configures and creates caches. Unset options fall back to a
// 1024-entry, 4-way, LRU-replaced cache indexed by address bits.
type Builder[P any] struct {
	numEntries           int
	associativity        int
	log2EntryGranularity int
	tagBits              int
	numThreads           int
	replacementStrategy  string
	replacement          ReplacementPolicy
	indexing             IndexingPolicy
}

// MakeBuilder returns a builder with default parameters.
func MakeBuilder[P any]() Builder[P] {
	return Builder[P]{
		numEntries:          1024,
		associativity:       4,
		tagBits:             64,
		numThreads:          1,
		replacementStrategy: "lru",
	}
}

// WithNumEntries sets the total entry count.
func (b Builder[P]) WithNumEntries(n int) Builder[P] {
	b.numEntries = n
	return b
}

// WithAssociativity sets the number of entries per set.
func (b Builder[P]) WithAssociativity(a int) Builder[P] {
	b.associativity = a
	return b
}

// WithLog2EntryGranularity sets how many low-order address bits one entry
// covers.
func (b Builder[P]) WithLog2EntryGranularity(g int) Builder[P] {
	b.log2EntryGranularity = g
	return b
}

// WithTagBits limits the stored tag width.
func (b Builder[P]) WithTagBits(n int) Builder[P] {
	b.tagBits = n
	return b
}

// WithNumThreads sets the hardware-thread count. A count above 1 selects
// thread-aware indexing by default.
func (b Builder[P]) WithNumThreads(n int) Builder[P] {
	b.numThreads = n
	return b
}

// WithReplacementStrategy selects a built-in replacement policy by name:
// "lru", "nru", or "random".
func (b Builder[P]) WithReplacementStrategy(s string) Builder[P] {
	b.replacementStrategy = s
	return b
}

// WithReplacementPolicy uses a caller-provided replacement policy, overriding
// the strategy name.
func (b Builder[P]) WithReplacementPolicy(p ReplacementPolicy) Builder[P] {
	b.replacement = p
	return b
}

// WithIndexingPolicy uses a caller-provided indexing policy, overriding the
// default shift/mask policies.
func (b Builder[P]) WithIndexingPolicy(p IndexingPolicy) Builder[P] {
	b.indexing = p
	return b
}

// Build creates the cache. It panics when the capacity does not divide into
// full sets, or when the provided indexing policy disagrees with the derived
// set count.
func (b Builder[P]) Build(name string) *Cache[P] {
	if b.numEntries%b.associativity != 0 {
		panic("cache must have an integer number of sets")
	}

	numSets := b.numEntries / b.associativity

	indexing := b.indexing
	if indexing == nil {
		if b.numThreads > 1 {
			indexing = NewThreadAwareSetAssociative(
				numSets, b.log2EntryGranularity, b.tagBits, b.numThreads)
		} else {
			indexing = NewSetAssociative(
				numSets, b.log2EntryGranularity, b.tagBits)
		}
	}

	if indexing.NumSets() != numSets {
		panic("indexing policy set count does not match cache geometry")
	}

	replacement := b.replacement
	if replacement == nil {
		replacement = b.namedReplacementPolicy()
	}

	c := &Cache[P]{
		name:          name,
		numEntries:    b.numEntries,
		associativity: b.associativity,
		numSets:       numSets,
		indexing:      indexing,
		replacement:   replacement,
		sets:          make([][]Entry[P], numSets),
	}

	for s := range c.sets {
		c.sets[s] = make([]Entry[P], b.associativity)
		for w := range c.sets[s] {
			id := EntryID{Set: s, Way: w}
			c.sets[s][w].id = id
			replacement.Instantiate(id)
		}
	}

	return c
}

func (b Builder[P]) namedReplacementPolicy() ReplacementPolicy {
	switch b.replacementStrategy {
	case "lru":
		return NewLRU()
	case "nru":
		return NewNRU()
	case "random":
		return NewRandom(1)
	default:
		panic("unknown replacement strategy " + b.replacementStrategy)
	}
}
