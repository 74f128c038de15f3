// Package assoc provides a generic set-associative storage engine. A cache
// holds a fixed number of entries partitioned into sets; an indexing policy
// maps keys to sets and tags, and a replacement policy picks victims within a
// set. The payload type is a type parameter, so the same engine backs branch
// target buffers, memory-dependence tables, and predictor banks.
package assoc

import (
	"fmt"
	"io"
)

// A Cache is a fixed-capacity set-associative table of entries with payloads
// of type P. It is not safe for concurrent use.
type Cache[P any] struct {
	name          string
	numEntries    int
	associativity int
	numSets       int

	indexing    IndexingPolicy
	replacement ReplacementPolicy
	sets        [][]Entry[P]
}

// Name returns the cache's name.
func (c *Cache[P]) Name() string {
	return c.name
}

// Capacity returns the total number of entries.
func (c *Cache[P]) Capacity() int {
	return c.numEntries
}

// Associativity returns the number of entries per set.
func (c *Cache[P]) Associativity() int {
	return c.associativity
}

// NumSets returns the number of sets.
func (c *Cache[P]) NumSets() int {
	return c.numSets
}

// TagOf returns the tag the cache compares for a key.
func (c *Cache[P]) TagOf(key Key) Tag {
	return c.indexing.TagOf(key)
}

// SetIndexOf returns the set a key maps to.
func (c *Cache[P]) SetIndexOf(key Key) int {
	return c.indexing.SetIndex(key)
}

// EntryAt returns the entry at a position. The entry may be invalid.
func (c *Cache[P]) EntryAt(id EntryID) *Entry[P] {
	return &c.sets[id.Set][id.Way]
}

func (c *Cache[P]) candidates(key Key) []Entry[P] {
	return c.sets[c.indexing.SetIndex(key)]
}

// Lookup returns the valid entry matching the key, or nil on a miss. It does
// not update replacement state, so probing never perturbs eviction order.
func (c *Cache[P]) Lookup(key Key) *Entry[P] {
	tag := c.indexing.TagOf(key)
	set := c.candidates(key)

	for i := range set {
		if set[i].match(tag) {
			return &set[i]
		}
	}

	return nil
}

// AccessEntry looks the key up and, on a hit, records the use with the
// replacement policy.
func (c *Cache[P]) AccessEntry(key Key) *Entry[P] {
	entry := c.Lookup(key)
	if entry != nil {
		c.replacement.Touch(entry.id)
	}

	return entry
}

// Touch records a use of an entry previously returned by a lookup.
func (c *Cache[P]) Touch(entry *Entry[P]) {
	c.replacement.Touch(entry.id)
}

// FindVictim selects the entry to evict from the key's set and invalidates it
// immediately. Until the matching InsertEntry, the cache holds one fewer
// valid entry and no lookup can hit the slot.
func (c *Cache[P]) FindVictim(key Key) *Entry[P] {
	set := c.candidates(key)

	ids := make([]EntryID, len(set))
	for i := range set {
		ids[i] = set[i].id
	}

	victim := c.EntryAt(c.replacement.SelectVictim(ids))
	c.invalidate(victim)

	return victim
}

// InsertEntry fills a victim slot with the key's tag and the payload, marks
// it valid, and gives it maximal retention priority. The victim must come
// from a FindVictim call for a key mapping to the same set. Any other valid
// entry in the set already holding the same tag is invalidated first, so a
// tag never appears twice in a set.
func (c *Cache[P]) InsertEntry(key Key, victim *Entry[P], payload P) {
	setIndex := c.indexing.SetIndex(key)
	if victim.id.Set != setIndex {
		panic(fmt.Sprintf(
			"assoc: victim from set %d used for a key mapping to set %d",
			victim.id.Set, setIndex))
	}

	tag := c.indexing.TagOf(key)
	set := c.sets[setIndex]
	for i := range set {
		if set[i].match(tag) && set[i].id != victim.id {
			c.invalidate(&set[i])
		}
	}

	victim.tag = tag
	victim.valid = true
	victim.Payload = payload
	c.replacement.Reset(victim.id)
}

// Invalidate marks an entry invalid and clears its tag. The payload is left
// in place; consumers that treat stale payloads as sensitive must overwrite
// them on insert.
func (c *Cache[P]) Invalidate(entry *Entry[P]) {
	c.invalidate(entry)
}

func (c *Cache[P]) invalidate(entry *Entry[P]) {
	entry.valid = false
	entry.tag = Tag{}
	c.replacement.Invalidate(entry.id)
}

// Clear invalidates every entry. Clearing an already empty cache is a no-op.
func (c *Cache[P]) Clear() {
	for s := range c.sets {
		for w := range c.sets[s] {
			if c.sets[s][w].valid {
				c.invalidate(&c.sets[s][w])
			}
		}
	}
}

// IsEntryValid reports whether the key currently hits.
func (c *Cache[P]) IsEntryValid(key Key) bool {
	return c.Lookup(key) != nil
}

// RegenerateKey reconstructs the key an entry was inserted under, when the
// indexing policy supports it.
func (c *Cache[P]) RegenerateKey(entry *Entry[P]) (Key, error) {
	return c.indexing.RegenerateKey(entry.tag, entry.id)
}

// DumpTo writes the valid entries, one line per entry, for debugging.
func (c *Cache[P]) DumpTo(w io.Writer) {
	fmt.Fprintf(w, "%s: %d sets x %d ways\n",
		c.name, c.numSets, c.associativity)

	for s := range c.sets {
		for way := range c.sets[s] {
			e := &c.sets[s][way]
			if !e.valid {
				continue
			}

			fmt.Fprintf(w, "  set %4d way %2d tag %#x tid %d payload %v\n",
				s, way, e.tag.Addr, e.tag.TID, e.Payload)
		}
	}
}
