package assoc

import (
	ginkgo "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = ginkgo.Describe("SetAssociative", func() {
	var p *SetAssociative

	ginkgo.BeforeEach(func() {
		p = NewSetAssociative(16, 2, 64)
	})

	ginkgo.It("should extract the set index above the entry granularity", func() {
		Expect(p.SetIndex(Key{Addr: 0x00})).To(Equal(0))
		Expect(p.SetIndex(Key{Addr: 0x04})).To(Equal(1))
		Expect(p.SetIndex(Key{Addr: 0x3c})).To(Equal(15))
		Expect(p.SetIndex(Key{Addr: 0x40})).To(Equal(0))
	})

	ginkgo.It("should extract the tag above the set index field", func() {
		Expect(p.TagOf(Key{Addr: 0x40})).To(Equal(Tag{Addr: 1}))
		Expect(p.TagOf(Key{Addr: 0x44})).To(Equal(Tag{Addr: 1}))
		Expect(p.TagOf(Key{Addr: 0x80})).To(Equal(Tag{Addr: 2}))
	})

	ginkgo.It("should ignore bits inside the entry granularity", func() {
		Expect(p.SetIndex(Key{Addr: 0x07})).To(Equal(p.SetIndex(Key{Addr: 0x04})))
		Expect(p.TagOf(Key{Addr: 0x43})).To(Equal(p.TagOf(Key{Addr: 0x40})))
	})

	ginkgo.It("should truncate the tag to the configured width", func() {
		narrow := NewSetAssociative(16, 2, 4)
		Expect(narrow.TagOf(Key{Addr: 0x440})).To(Equal(Tag{Addr: 0x1}))
	})

	ginkgo.It("should regenerate the address from tag and set", func() {
		key := Key{Addr: 0x9c}
		tag := p.TagOf(key)
		set := p.SetIndex(key)

		regen, err := p.RegenerateKey(tag, EntryID{Set: set})

		Expect(err).To(BeNil())
		Expect(regen.Addr).To(Equal(uint64(0x9c)))
	})

	ginkgo.It("should panic on a non-power-of-2 set count", func() {
		Expect(func() { NewSetAssociative(12, 2, 64) }).To(Panic())
	})
})

var _ = ginkgo.Describe("ThreadAwareSetAssociative", func() {
	var p *ThreadAwareSetAssociative

	ginkgo.BeforeEach(func() {
		p = NewThreadAwareSetAssociative(16, 2, 64, 2)
	})

	ginkgo.It("should map the same address of different threads to different sets",
		func() {
			s0 := p.SetIndex(Key{Addr: 0x40, TID: 0})
			s1 := p.SetIndex(Key{Addr: 0x40, TID: 1})

			Expect(s0).NotTo(Equal(s1))
		})

	ginkgo.It("should fold the thread id into the top of the index field", func() {
		// 16 sets, 2 threads: tid flips bit 3 of the set index.
		s0 := p.SetIndex(Key{Addr: 0x40, TID: 0})
		s1 := p.SetIndex(Key{Addr: 0x40, TID: 1})

		Expect(s0 ^ s1).To(Equal(8))
	})

	ginkgo.It("should carry the thread id in the tag", func() {
		Expect(p.TagOf(Key{Addr: 0x40, TID: 1})).To(
			Equal(Tag{Addr: 1, TID: 1}))
	})

	ginkgo.It("should refuse to regenerate keys", func() {
		_, err := p.RegenerateKey(Tag{Addr: 1}, EntryID{Set: 3})

		Expect(err).To(MatchError(ErrUnsupported))
	})

	ginkgo.It("should panic when threads outnumber sets", func() {
		Expect(func() {
			NewThreadAwareSetAssociative(2, 2, 64, 4)
		}).To(Panic())
	})
})
