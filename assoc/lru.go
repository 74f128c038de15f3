package assoc

// LRU evicts the least recently used entry. Invalidated entries carry a zero
// use time, so they are always selected before valid ones.
type LRU struct {
	lastUse map[EntryID]uint64
	clock   uint64
}

// NewLRU returns a least-recently-used replacement policy.
func NewLRU() *LRU {
	return &LRU{lastUse: make(map[EntryID]uint64)}
}

// Instantiate starts the entry at minimal priority.
func (p *LRU) Instantiate(id EntryID) {
	p.lastUse[id] = 0
}

// Touch stamps the entry with the current use time.
func (p *LRU) Touch(id EntryID) {
	p.clock++
	p.lastUse[id] = p.clock
}

// Reset stamps the entry as most recently used.
func (p *LRU) Reset(id EntryID) {
	p.clock++
	p.lastUse[id] = p.clock
}

// Invalidate drops the entry back to minimal priority.
func (p *LRU) Invalidate(id EntryID) {
	p.lastUse[id] = 0
}

// SelectVictim returns the candidate with the oldest use time.
func (p *LRU) SelectVictim(candidates []EntryID) EntryID {
	if len(candidates) == 0 {
		panic("assoc: no victim candidates")
	}

	victim := candidates[0]
	for _, id := range candidates[1:] {
		if p.lastUse[id] < p.lastUse[victim] {
			victim = id
		}
	}

	return victim
}
