package assoc

import "math/rand"

// Random evicts a uniformly random candidate, except that invalidated
// candidates are always taken first. The generator is seeded explicitly so
// runs stay reproducible.
type Random struct {
	live map[EntryID]bool
	rng  *rand.Rand
}

// NewRandom returns a random replacement policy with the given seed.
func NewRandom(seed int64) *Random {
	return &Random{
		live: make(map[EntryID]bool),
		rng:  rand.New(rand.NewSource(seed)),
	}
}

// Instantiate starts the entry at minimal priority.
func (p *Random) Instantiate(id EntryID) {
	p.live[id] = false
}

// Touch marks the entry as holding live data.
func (p *Random) Touch(id EntryID) {
	p.live[id] = true
}

// Reset marks the freshly filled entry as holding live data.
func (p *Random) Reset(id EntryID) {
	p.live[id] = true
}

// Invalidate drops the entry back to minimal priority.
func (p *Random) Invalidate(id EntryID) {
	p.live[id] = false
}

// SelectVictim returns the first invalidated candidate, or a random one when
// the whole set is live.
func (p *Random) SelectVictim(candidates []EntryID) EntryID {
	if len(candidates) == 0 {
		panic("assoc: no victim candidates")
	}

	for _, id := range candidates {
		if !p.live[id] {
			return id
		}
	}

	return candidates[p.rng.Intn(len(candidates))]
}
