package assoc

type nruState uint8

const (
	nruInvalid nruState = iota
	nruIdle
	nruUsed
)

// NRU approximates LRU with a single recently-used bit per entry. Invalidated
// entries are preferred over everything; otherwise the first candidate whose
// bit is clear is evicted, and when every candidate has been used recently
// the whole set is downgraded and the first candidate goes.
type NRU struct {
	state map[EntryID]nruState
}

// NewNRU returns a not-recently-used replacement policy.
func NewNRU() *NRU {
	return &NRU{state: make(map[EntryID]nruState)}
}

// Instantiate starts the entry at minimal priority.
func (p *NRU) Instantiate(id EntryID) {
	p.state[id] = nruInvalid
}

// Touch sets the recently-used bit.
func (p *NRU) Touch(id EntryID) {
	p.state[id] = nruUsed
}

// Reset sets the recently-used bit on the freshly filled entry.
func (p *NRU) Reset(id EntryID) {
	p.state[id] = nruUsed
}

// Invalidate drops the entry back to minimal priority.
func (p *NRU) Invalidate(id EntryID) {
	p.state[id] = nruInvalid
}

// SelectVictim prefers invalidated candidates, then not-recently-used ones.
func (p *NRU) SelectVictim(candidates []EntryID) EntryID {
	if len(candidates) == 0 {
		panic("assoc: no victim candidates")
	}

	for _, id := range candidates {
		if p.state[id] == nruInvalid {
			return id
		}
	}

	for _, id := range candidates {
		if p.state[id] == nruIdle {
			return id
		}
	}

	for _, id := range candidates {
		p.state[id] = nruIdle
	}

	return candidates[0]
}
