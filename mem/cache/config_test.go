package cache

import (
	"github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = ginkgo.Describe("Config", func() {
	ginkgo.It("should parse placements", func() {
		p, err := ParsePlacement("Fully_Associative")
		Expect(err).NotTo(HaveOccurred())
		Expect(p).To(Equal(FullyAssociative))

		p, err = ParsePlacement("direct-mapped")
		Expect(err).NotTo(HaveOccurred())
		Expect(p).To(Equal(DirectMapped))

		_, err = ParsePlacement("set-associative")
		Expect(err).To(HaveOccurred())
	})

	ginkgo.It("should parse write policies", func() {
		p, err := ParseWritePolicy("write-through")
		Expect(err).NotTo(HaveOccurred())
		Expect(p).To(Equal(WriteThrough))

		p, err = ParseWritePolicy("WB")
		Expect(err).NotTo(HaveOccurred())
		Expect(p).To(Equal(WriteBack))

		_, err = ParseWritePolicy("write-around")
		Expect(err).To(HaveOccurred())
	})

	ginkgo.It("should parse operations", func() {
		for _, s := range []string{"r", "R", "read"} {
			op, err := ParseOperation(s)
			Expect(err).NotTo(HaveOccurred())
			Expect(op).To(Equal(Read))
		}

		op, err := ParseOperation(" Write ")
		Expect(err).NotTo(HaveOccurred())
		Expect(op).To(Equal(Write))

		_, err = ParseOperation("x")
		Expect(err).To(HaveOccurred())
	})

	ginkgo.It("should render names", func() {
		Expect(FullyAssociative.String()).To(Equal("fully-associative"))
		Expect(WriteBack.String()).To(Equal("write-back"))
		Expect(Write.String()).To(Equal("write"))
		Expect(StepMemoryFetch.String()).To(Equal("Memory Fetch"))
		Expect(ConflictMiss.String()).To(Equal("conflict miss"))
	})

	ginkgo.It("should count lines", func() {
		Expect(Config{TotalSize: 64, BlockSize: 8}.NumLines()).To(Equal(8))
		Expect(Config{TotalSize: 64}.NumLines()).To(Equal(0))
	})

	ginkgo.It("should default to a small direct-mapped write-back cache", func() {
		Expect(MakeBuilder().Config()).To(Equal(Config{
			TotalSize:   16,
			BlockSize:   4,
			Placement:   DirectMapped,
			WritePolicy: WriteBack,
		}))
	})
})

var _ = ginkgo.Describe("Statistics", func() {
	ginkgo.It("should report zero ratios before any access", func() {
		s := Statistics{}

		Expect(s.HitRatio()).To(BeZero())
		Expect(s.MissRatio()).To(BeZero())
		Expect(s.Report().HitRatio).To(BeZero())
	})

	ginkgo.It("should round percentages", func() {
		s := Statistics{
			TotalAccesses: 3,
			Hits:          1,
			Misses:        2,
			MemoryReads:   2,
			MemoryWrites:  1,
		}

		r := s.Report()
		Expect(r.HitRatio).To(Equal(33.33))
		Expect(r.MissRatio).To(Equal(66.67))
		Expect(r.TotalMemoryTraffic).To(Equal(uint64(3)))
	})

	ginkgo.It("should compute write reduction", func() {
		wt := Statistics{MemoryWrites: 8}
		wb := Statistics{MemoryWrites: 0}

		Expect(WriteReduction(wt, wb)).To(Equal(100.0))
		Expect(WriteReduction(wb, wt)).To(BeZero())
		Expect(WriteReduction(Statistics{MemoryWrites: 4}, Statistics{MemoryWrites: 3})).
			To(Equal(25.0))
	})
})
