package assoc

// A Key identifies the data a consumer wants to find in a cache. Addr is the
// address-like value the indexing policy partitions; TID carries the hardware
// thread for policies that discriminate by thread, and is ignored otherwise.
type Key struct {
	Addr uint64
	TID  int
}

// A Tag is the portion of a key used to disambiguate entries mapped to the
// same set. Policies that do not discriminate by thread leave TID zero.
type Tag struct {
	Addr uint64
	TID  int
}

// An EntryID locates an entry within its cache by set and way. Replacement
// policies track metadata through EntryIDs so that they never hold references
// into the cache's storage.
type EntryID struct {
	Set int
	Way int
}

// An Entry is one storage slot of a cache. The payload is consumer-defined
// and never interpreted by the engine. Entries are allocated once at cache
// construction and reused in place across invalidate/insert cycles.
type Entry[P any] struct {
	id    EntryID
	tag   Tag
	valid bool

	Payload P
}

// ID returns the entry's position within its cache.
func (e *Entry[P]) ID() EntryID {
	return e.id
}

// Tag returns the entry's tag. Only meaningful while the entry is valid.
func (e *Entry[P]) Tag() Tag {
	return e.tag
}

// Valid reports whether the entry holds live data.
func (e *Entry[P]) Valid() bool {
	return e.valid
}

func (e *Entry[P]) match(tag Tag) bool {
	return e.valid && e.tag == tag
}
