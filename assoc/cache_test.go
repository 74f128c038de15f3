package assoc

import (
	"bytes"

	ginkgo "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

// keys for a cache with 2 sets and entry granularity 4: set = (addr>>2)&1,
// tag = addr>>3.
var (
	keySet0TagA = Key{Addr: 0x00} // set 0, tag 0
	keySet0TagB = Key{Addr: 0x08} // set 0, tag 1
	keySet0TagC = Key{Addr: 0x10} // set 0, tag 2
	keySet1TagA = Key{Addr: 0x04} // set 1, tag 0
)

var _ = ginkgo.Describe("Cache", func() {
	var c *Cache[string]

	ginkgo.BeforeEach(func() {
		c = MakeBuilder[string]().
			WithNumEntries(4).
			WithAssociativity(2).
			WithLog2EntryGranularity(2).
			Build("Cache")
	})

	ginkgo.It("should report its geometry", func() {
		Expect(c.Name()).To(Equal("Cache"))
		Expect(c.Capacity()).To(Equal(4))
		Expect(c.Associativity()).To(Equal(2))
		Expect(c.NumSets()).To(Equal(2))
	})

	ginkgo.It("should miss on an empty cache", func() {
		Expect(c.Lookup(keySet0TagA)).To(BeNil())
		Expect(c.IsEntryValid(keySet0TagA)).To(BeFalse())
	})

	ginkgo.It("should hit after insert and return the payload", func() {
		victim := c.FindVictim(keySet0TagA)
		c.InsertEntry(keySet0TagA, victim, "a")

		entry := c.Lookup(keySet0TagA)
		Expect(entry).NotTo(BeNil())
		Expect(entry.Valid()).To(BeTrue())
		Expect(entry.Payload).To(Equal("a"))
		Expect(entry.Tag()).To(Equal(c.TagOf(keySet0TagA)))
		Expect(c.IsEntryValid(keySet0TagA)).To(BeTrue())
	})

	ginkgo.It("should keep entries with the same tag in different sets apart", func() {
		v0 := c.FindVictim(keySet0TagA)
		c.InsertEntry(keySet0TagA, v0, "set0")
		v1 := c.FindVictim(keySet1TagA)
		c.InsertEntry(keySet1TagA, v1, "set1")

		Expect(c.Lookup(keySet0TagA).Payload).To(Equal("set0"))
		Expect(c.Lookup(keySet1TagA).Payload).To(Equal("set1"))
	})

	ginkgo.It("should evict only within the key's set", func() {
		v0 := c.FindVictim(keySet0TagA)
		c.InsertEntry(keySet0TagA, v0, "a")
		v1 := c.FindVictim(keySet1TagA)
		c.InsertEntry(keySet1TagA, v1, "other set")

		// Overfill set 0. Set 1 must be untouched.
		c.InsertEntry(keySet0TagB, c.FindVictim(keySet0TagB), "b")
		c.InsertEntry(keySet0TagC, c.FindVictim(keySet0TagC), "c")

		Expect(c.IsEntryValid(keySet1TagA)).To(BeTrue())
		Expect(c.IsEntryValid(keySet0TagA)).To(BeFalse())
		Expect(c.IsEntryValid(keySet0TagB)).To(BeTrue())
		Expect(c.IsEntryValid(keySet0TagC)).To(BeTrue())
	})

	ginkgo.It("should not perturb eviction order on Lookup", func() {
		c.InsertEntry(keySet0TagA, c.FindVictim(keySet0TagA), "a")
		c.InsertEntry(keySet0TagB, c.FindVictim(keySet0TagB), "b")

		c.Lookup(keySet0TagA)
		c.Lookup(keySet0TagA)

		c.InsertEntry(keySet0TagC, c.FindVictim(keySet0TagC), "c")

		Expect(c.IsEntryValid(keySet0TagA)).To(BeFalse())
		Expect(c.IsEntryValid(keySet0TagB)).To(BeTrue())
	})

	ginkgo.It("should protect a touched entry from eviction", func() {
		c.InsertEntry(keySet0TagA, c.FindVictim(keySet0TagA), "a")
		c.InsertEntry(keySet0TagB, c.FindVictim(keySet0TagB), "b")

		Expect(c.AccessEntry(keySet0TagA)).NotTo(BeNil())

		c.InsertEntry(keySet0TagC, c.FindVictim(keySet0TagC), "c")

		Expect(c.IsEntryValid(keySet0TagA)).To(BeTrue())
		Expect(c.IsEntryValid(keySet0TagB)).To(BeFalse())
	})

	ginkgo.It("should reserve the victim slot between FindVictim and InsertEntry",
		func() {
			c.InsertEntry(keySet0TagA, c.FindVictim(keySet0TagA), "a")
			c.InsertEntry(keySet0TagB, c.FindVictim(keySet0TagB), "b")

			victim := c.FindVictim(keySet0TagC)

			Expect(victim.Valid()).To(BeFalse())
			Expect(c.IsEntryValid(keySet0TagA)).To(BeFalse())
			Expect(c.IsEntryValid(keySet0TagB)).To(BeTrue())

			c.InsertEntry(keySet0TagC, victim, "c")
			Expect(c.IsEntryValid(keySet0TagC)).To(BeTrue())
		})

	ginkgo.It("should never hold two valid entries with the same tag in a set",
		func() {
			c.InsertEntry(keySet0TagA, c.FindVictim(keySet0TagA), "old")
			c.InsertEntry(keySet0TagB, c.FindVictim(keySet0TagB), "b")

			// Reinsert tag A. The victim is B's slot, so the engine must
			// invalidate the stale A entry in the other way.
			c.InsertEntry(keySet0TagA, c.FindVictim(keySet0TagA), "new")

			Expect(c.Lookup(keySet0TagA).Payload).To(Equal("new"))

			count := 0
			tag := c.TagOf(keySet0TagA)
			set := c.SetIndexOf(keySet0TagA)
			for way := 0; way < c.Associativity(); way++ {
				e := c.EntryAt(EntryID{Set: set, Way: way})
				if e.Valid() && e.Tag() == tag {
					count++
				}
			}
			Expect(count).To(Equal(1))
		})

	ginkgo.It("should panic when a victim comes from the wrong set", func() {
		victim := c.FindVictim(keySet1TagA)
		Expect(func() {
			c.InsertEntry(keySet0TagA, victim, "a")
		}).To(Panic())
	})

	ginkgo.It("should keep the payload on invalidate but miss on lookup", func() {
		c.InsertEntry(keySet0TagA, c.FindVictim(keySet0TagA), "a")
		entry := c.Lookup(keySet0TagA)

		c.Invalidate(entry)

		Expect(c.Lookup(keySet0TagA)).To(BeNil())
		Expect(entry.Payload).To(Equal("a"))
	})

	ginkgo.It("should clear all entries and be idempotent", func() {
		c.InsertEntry(keySet0TagA, c.FindVictim(keySet0TagA), "a")
		c.InsertEntry(keySet1TagA, c.FindVictim(keySet1TagA), "b")

		c.Clear()
		Expect(c.IsEntryValid(keySet0TagA)).To(BeFalse())
		Expect(c.IsEntryValid(keySet1TagA)).To(BeFalse())

		Expect(c.Clear).NotTo(Panic())
	})

	ginkgo.It("should regenerate the key up to entry granularity", func() {
		key := Key{Addr: 0x1c} // set 1, tag 3, 2 low bits lost
		c.InsertEntry(key, c.FindVictim(key), "x")

		regen, err := c.RegenerateKey(c.Lookup(key))

		Expect(err).To(BeNil())
		Expect(regen.Addr).To(Equal(uint64(0x1c)))
	})

	ginkgo.It("should dump valid entries", func() {
		c.InsertEntry(keySet0TagA, c.FindVictim(keySet0TagA), "a")

		buf := &bytes.Buffer{}
		c.DumpTo(buf)

		Expect(buf.String()).To(ContainSubstring("set    0"))
		Expect(buf.String()).To(ContainSubstring("payload a"))
	})
})

var _ = ginkgo.Describe("Cache with 4 sets of 2 ways", func() {
	ginkgo.It("should evict one of two tags when a third arrives in their set",
		func() {
			c := MakeBuilder[string]().
				WithNumEntries(8).
				WithAssociativity(2).
				WithLog2EntryGranularity(2).
				Build("Cache")

			// All three keys map to set 0 with distinct tags.
			k1 := Key{Addr: 0x00}
			k2 := Key{Addr: 0x10}
			k3 := Key{Addr: 0x20}

			c.InsertEntry(k1, c.FindVictim(k1), "1")
			c.InsertEntry(k2, c.FindVictim(k2), "2")
			c.InsertEntry(k3, c.FindVictim(k3), "3")

			Expect(c.IsEntryValid(k3)).To(BeTrue())
			Expect(c.IsEntryValid(k1)).To(BeFalse())
			Expect(c.IsEntryValid(k2)).To(BeTrue())
		})
})

var _ = ginkgo.Describe("Cache with thread-aware indexing", func() {
	var c *Cache[string]

	ginkgo.BeforeEach(func() {
		c = MakeBuilder[string]().
			WithNumEntries(4).
			WithAssociativity(2).
			WithLog2EntryGranularity(2).
			WithNumThreads(2).
			Build("Cache")
	})

	ginkgo.It("should keep entries of different threads apart", func() {
		k0 := Key{Addr: 0x00, TID: 0}
		k1 := Key{Addr: 0x00, TID: 1}

		c.InsertEntry(k0, c.FindVictim(k0), "t0")
		c.InsertEntry(k1, c.FindVictim(k1), "t1")

		Expect(c.Lookup(k0).Payload).To(Equal("t0"))
		Expect(c.Lookup(k1).Payload).To(Equal("t1"))
	})

	ginkgo.It("should not support key reconstruction", func() {
		key := Key{Addr: 0x00, TID: 1}
		c.InsertEntry(key, c.FindVictim(key), "x")

		_, err := c.RegenerateKey(c.Lookup(key))

		Expect(err).To(MatchError(ErrUnsupported))
	})
})

var _ = ginkgo.Describe("Builder", func() {
	ginkgo.It("should panic when the capacity does not divide into full sets",
		func() {
			Expect(func() {
				MakeBuilder[int]().
					WithNumEntries(6).
					WithAssociativity(4).
					Build("Cache")
			}).To(Panic())
		})

	ginkgo.It("should panic on an unknown replacement strategy", func() {
		Expect(func() {
			MakeBuilder[int]().
				WithReplacementStrategy("clairvoyant").
				Build("Cache")
		}).To(Panic())
	})

	ginkgo.It("should panic when the indexing policy set count mismatches", func() {
		Expect(func() {
			MakeBuilder[int]().
				WithNumEntries(8).
				WithAssociativity(2).
				WithIndexingPolicy(NewSetAssociative(2, 0, 64)).
				Build("Cache")
		}).To(Panic())
	})
})

var _ = ginkgo.Describe("Cache replacement protocol", func() {
	var (
		mockCtrl   *gomock.Controller
		mockPolicy *MockReplacementPolicy
		c          *Cache[int]
	)

	ginkgo.BeforeEach(func() {
		mockCtrl = gomock.NewController(ginkgo.GinkgoT())
		mockPolicy = NewMockReplacementPolicy(mockCtrl)

		mockPolicy.EXPECT().Instantiate(gomock.Any()).Times(4)

		c = MakeBuilder[int]().
			WithNumEntries(4).
			WithAssociativity(2).
			WithLog2EntryGranularity(2).
			WithReplacementPolicy(mockPolicy).
			Build("Cache")
	})

	ginkgo.It("should ask the policy for a victim and invalidate it", func() {
		victimID := EntryID{Set: 0, Way: 1}
		mockPolicy.EXPECT().
			SelectVictim(gomock.Len(2)).
			Return(victimID)
		mockPolicy.EXPECT().Invalidate(victimID)

		victim := c.FindVictim(keySet0TagA)

		Expect(victim.ID()).To(Equal(victimID))
	})

	ginkgo.It("should reset the victim's metadata on insert", func() {
		victimID := EntryID{Set: 0, Way: 0}
		mockPolicy.EXPECT().SelectVictim(gomock.Any()).Return(victimID)
		mockPolicy.EXPECT().Invalidate(victimID)
		mockPolicy.EXPECT().Reset(victimID)

		c.InsertEntry(keySet0TagA, c.FindVictim(keySet0TagA), 1)
	})

	ginkgo.It("should touch on AccessEntry hits only", func() {
		victimID := EntryID{Set: 0, Way: 0}
		mockPolicy.EXPECT().SelectVictim(gomock.Any()).Return(victimID)
		mockPolicy.EXPECT().Invalidate(victimID)
		mockPolicy.EXPECT().Reset(victimID)
		c.InsertEntry(keySet0TagA, c.FindVictim(keySet0TagA), 1)

		mockPolicy.EXPECT().Touch(victimID)
		Expect(c.AccessEntry(keySet0TagA)).NotTo(BeNil())

		// A miss must not touch anything.
		Expect(c.AccessEntry(keySet0TagB)).To(BeNil())
	})
})
