package assoc

// A ReplacementPolicy ranks entries for eviction. It owns the per-entry
// replacement metadata, keyed by EntryID, and never touches the entries
// themselves. Any algorithm satisfying these calls is substitutable without
// engine changes.
//
// Policies must keep an explicit minimum-priority state: Instantiate and
// Invalidate establish it, and SelectVictim must prefer entries in that state
// over any valid entry, regardless of recency. Since validity only changes
// through cache calls that also update metadata, a minimum-priority entry is
// exactly an invalid one.
type ReplacementPolicy interface {
	// Instantiate allocates metadata for an entry. Called once per entry at
	// cache construction.
	Instantiate(id EntryID)

	// Touch records a hit on the entry.
	Touch(id EntryID)

	// Reset marks the entry as just filled, giving it maximal retention
	// priority.
	Reset(id EntryID)

	// Invalidate drops the entry to minimal retention priority, making it an
	// immediate next victim candidate.
	Invalidate(id EntryID)

	// SelectVictim picks the entry to evict among the candidates of one set.
	// The candidate list is never empty.
	SelectVictim(candidates []EntryID) EntryID
}
