package btb

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type recorderStub struct {
	tables  []string
	inserts map[string]int
}

func newRecorderStub() *recorderStub {
	return &recorderStub{inserts: make(map[string]int)}
}

func (r *recorderStub) CreateTable(name string, sampleEntry any) {
	r.tables = append(r.tables, name)
}

func (r *recorderStub) InsertData(name string, entry any) {
	r.inserts[name]++
}

func (r *recorderStub) ListTables() []string {
	return r.tables
}

func (r *recorderStub) Flush() {}

var _ = Describe("TargetBuffer", func() {
	var b *TargetBuffer

	BeforeEach(func() {
		b = MakeBuilder().
			WithNumEntries(8).
			WithAssociativity(2).
			WithNumThreads(2).
			Build("BTB")
	})

	It("should miss on an empty buffer", func() {
		Expect(b.Valid(0, 0x1000)).To(BeFalse())

		_, hit := b.Lookup(0, 0x1000, BranchDirectCond)

		Expect(hit).To(BeFalse())
		Expect(b.Stats().Lookups[BranchDirectCond]).To(Equal(uint64(1)))
		Expect(b.Stats().Misses[BranchDirectCond]).To(Equal(uint64(1)))
	})

	It("should return the target after an update", func() {
		b.Update(0, 0x1000, 0x2000, BranchDirectUncond, nil)

		Expect(b.Valid(0, 0x1000)).To(BeTrue())

		target, hit := b.Lookup(0, 0x1000, BranchDirectUncond)

		Expect(hit).To(BeTrue())
		Expect(target).To(Equal(uint64(0x2000)))
		Expect(b.Stats().Updates[BranchDirectUncond]).To(Equal(uint64(1)))
		Expect(b.Stats().Inserts).To(Equal(uint64(1)))
	})

	It("should refresh a hit in place without a new insert", func() {
		b.Update(0, 0x1000, 0x2000, BranchIndirect, nil)
		b.Update(0, 0x1000, 0x3000, BranchIndirect, nil)

		target, _ := b.Lookup(0, 0x1000, BranchIndirect)

		Expect(target).To(Equal(uint64(0x3000)))
		Expect(b.Stats().Inserts).To(Equal(uint64(1)))
	})

	It("should store the static instruction", func() {
		b.Update(0, 0x1000, 0x2000, BranchCall, "call-inst")

		Expect(b.GetInst(0, 0x1000)).To(Equal("call-inst"))
		Expect(b.GetInst(0, 0x1004)).To(BeNil())
	})

	It("should keep threads apart", func() {
		b.Update(0, 0x1000, 0x2000, BranchReturn, nil)
		b.Update(1, 0x1000, 0x3000, BranchReturn, nil)

		t0, _ := b.Lookup(0, 0x1000, BranchReturn)
		t1, _ := b.Lookup(1, 0x1000, BranchReturn)

		Expect(t0).To(Equal(uint64(0x2000)))
		Expect(t1).To(Equal(uint64(0x3000)))
	})

	It("should track confidence per entry", func() {
		b.Update(0, 0x1000, 0x2000, BranchDirectCond, nil)

		sat, hit := b.Confidence(0, 0x1000)
		Expect(hit).To(BeTrue())
		Expect(sat).To(BeNumerically("==", 0))

		b.UpdateConfidence(0, 0x1000, true)
		b.UpdateConfidence(0, 0x1000, true)
		b.UpdateConfidence(0, 0x1000, true)

		sat, _ = b.Confidence(0, 0x1000)
		Expect(sat).To(BeNumerically("==", 1))

		b.UpdateConfidence(0, 0x1000, false)

		sat, _ = b.Confidence(0, 0x1000)
		Expect(sat).To(BeNumerically("<", 1))
	})

	It("should ignore confidence updates for missing entries", func() {
		Expect(func() {
			b.UpdateConfidence(0, 0x1000, true)
		}).NotTo(Panic())
	})

	It("should forget everything on clear", func() {
		b.Update(0, 0x1000, 0x2000, BranchDirectCond, nil)
		b.Update(1, 0x1000, 0x3000, BranchDirectCond, nil)

		b.Clear()

		Expect(b.Valid(0, 0x1000)).To(BeFalse())
		Expect(b.Valid(1, 0x1000)).To(BeFalse())
	})
})

var _ = Describe("TargetBuffer tracing", func() {
	It("should record updates into the trace table", func() {
		recorder := newRecorderStub()
		b := MakeBuilder().
			WithNumEntries(8).
			WithAssociativity(2).
			WithTraceRecorder(recorder).
			Build("BTB")

		b.Update(0, 0x1000, 0x2000, BranchDirectCond, nil)
		b.Update(0, 0x1004, 0x3000, BranchReturn, nil)

		Expect(recorder.tables).To(ContainElement("BTB_updates"))
		Expect(recorder.inserts["BTB_updates"]).To(Equal(2))
	})
})
