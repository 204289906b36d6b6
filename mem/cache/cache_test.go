package cache

import (
	"errors"

	"github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/cachesim/hooking"
)

func mustBuild(b Builder) *Cache {
	c, err := b.Build()
	Expect(err).NotTo(HaveOccurred())

	return c
}

func runSequence(c *Cache, addrs []uint64, ops []Operation) []AccessResult {
	results := make([]AccessResult, 0, len(addrs))
	for i, addr := range addrs {
		results = append(results, c.Access(addr, ops[i]))
	}

	return results
}

var conflictAddrs = []uint64{0, 16, 32, 0, 16, 32, 0, 16}
var conflictOps = []Operation{Write, Read, Read, Read, Write, Read, Read, Read}

var sequentialAddrs = []uint64{0, 4, 8, 12, 0, 4, 8, 12}
var allWrites = []Operation{Write, Write, Write, Write, Write, Write, Write, Write}

var _ = ginkgo.Describe("Cache", func() {
	var builder Builder

	ginkgo.BeforeEach(func() {
		builder = MakeBuilder().WithTotalSize(16).WithBlockSize(4)
	})

	ginkgo.Context("direct-mapped write-back with conflicting addresses", func() {
		ginkgo.It("should miss on every access", func() {
			c := mustBuild(builder.
				WithPlacement(DirectMapped).
				WithWritePolicy(WriteBack))

			results := runSequence(c, conflictAddrs, conflictOps)

			stats := c.Stats()
			Expect(stats.Hits).To(Equal(uint64(0)))
			Expect(stats.Misses).To(Equal(uint64(8)))
			Expect(stats.HitRatio()).To(Equal(0.0))
			Expect(stats.MemoryReads).To(Equal(uint64(8)))
			Expect(stats.MemoryWrites).To(Equal(uint64(2)))

			Expect(results[0].MissKind).To(Equal(ColdMiss))
			for _, r := range results[1:] {
				Expect(r.MissKind).To(Equal(ConflictMiss))
				Expect(r.Eviction).To(BeTrue())
				Expect(r.Line).To(Equal(0))
			}

			Expect(results[1].DirtyWriteBack).To(BeTrue())
			Expect(results[1].EvictedTag).To(Equal(uint64(0)))
			Expect(results[2].DirtyWriteBack).To(BeFalse())
			Expect(results[5].DirtyWriteBack).To(BeTrue())
		})
	})

	ginkgo.Context("fully associative write-back with the same addresses", func() {
		ginkgo.It("should keep all three blocks resident", func() {
			c := mustBuild(builder.
				WithPlacement(FullyAssociative).
				WithWritePolicy(WriteBack))

			results := runSequence(c, conflictAddrs, conflictOps)

			stats := c.Stats()
			Expect(stats.Hits).To(Equal(uint64(5)))
			Expect(stats.Misses).To(Equal(uint64(3)))
			Expect(stats.Report().HitRatio).To(Equal(62.5))
			Expect(stats.MemoryReads).To(Equal(uint64(3)))
			Expect(stats.MemoryWrites).To(Equal(uint64(0)))

			Expect(results[0].Fields.Tag).To(Equal(uint64(0)))
			Expect(results[1].Fields.Tag).To(Equal(uint64(4)))
			Expect(results[2].Fields.Tag).To(Equal(uint64(8)))

			for _, r := range results {
				Expect(r.Eviction).To(BeFalse())
			}

			Expect(c.State().Lines[1].IsDirty).To(BeTrue())
		})
	})

	ginkgo.Context("direct-mapped write-through with all writes", func() {
		ginkgo.It("should propagate every write to memory", func() {
			c := mustBuild(builder.
				WithPlacement(DirectMapped).
				WithWritePolicy(WriteThrough))

			runSequence(c, sequentialAddrs, allWrites)

			stats := c.Stats()
			Expect(stats.Misses).To(Equal(uint64(4)))
			Expect(stats.Hits).To(Equal(uint64(4)))
			Expect(stats.MemoryWrites).To(Equal(uint64(8)))
			Expect(stats.MemoryReads).To(Equal(uint64(4)))

			for _, line := range c.State().Lines {
				Expect(line.IsValid).To(BeTrue())
				Expect(line.IsDirty).To(BeFalse())
			}
		})
	})

	ginkgo.Context("direct-mapped write-back with all writes", func() {
		ginkgo.It("should defer all writes", func() {
			c := mustBuild(builder.
				WithPlacement(DirectMapped).
				WithWritePolicy(WriteBack))

			runSequence(c, sequentialAddrs, allWrites)

			stats := c.Stats()
			Expect(stats.Misses).To(Equal(uint64(4)))
			Expect(stats.Hits).To(Equal(uint64(4)))
			Expect(stats.MemoryWrites).To(Equal(uint64(0)))
			Expect(stats.MemoryReads).To(Equal(uint64(4)))

			for _, line := range c.State().Lines {
				Expect(line.IsDirty).To(BeTrue())
			}
		})
	})

	ginkgo.Context("invalid configuration", func() {
		ginkgo.It("should not create a cache whose line count is not a power of two", func() {
			c, err := builder.WithTotalSize(15).Build()

			Expect(c).To(BeNil())

			var configErr *ConfigurationError
			Expect(errors.As(err, &configErr)).To(BeTrue())
		})

		ginkgo.DescribeTable("should name the violated constraint",
			func(cfg Config, constraint Constraint) {
				_, err := New(cfg)

				var configErr *ConfigurationError
				Expect(errors.As(err, &configErr)).To(BeTrue())
				Expect(configErr.Constraint).To(Equal(constraint))
				Expect(err.Error()).To(ContainSubstring("invalid cache configuration"))
			},
			ginkgo.Entry("zero total size",
				Config{TotalSize: 0, BlockSize: 4}, ConstraintNonPositive),
			ginkgo.Entry("negative block size",
				Config{TotalSize: 16, BlockSize: -4}, ConstraintNonPositive),
			ginkgo.Entry("block size not a power of two",
				Config{TotalSize: 24, BlockSize: 6}, ConstraintNotPowerOfTwo),
			ginkgo.Entry("block larger than cache",
				Config{TotalSize: 4, BlockSize: 8}, ConstraintBlockExceedsTotal),
			ginkgo.Entry("total size not a multiple",
				Config{TotalSize: 15, BlockSize: 4}, ConstraintNotDivisible),
			ginkgo.Entry("line count not a power of two",
				Config{TotalSize: 12, BlockSize: 4}, ConstraintNotPowerOfTwo),
			ginkgo.Entry("unknown placement",
				Config{TotalSize: 16, BlockSize: 4, Placement: 7},
				ConstraintUnknownPlacement),
			ginkgo.Entry("unknown write policy",
				Config{TotalSize: 16, BlockSize: 4, WritePolicy: 7},
				ConstraintUnknownWritePolicy),
		)

		ginkgo.It("should accept a single line", func() {
			c, err := New(Config{TotalSize: 8, BlockSize: 8})

			Expect(err).NotTo(HaveOccurred())
			Expect(c.State().Lines).To(HaveLen(1))
		})
	})

	ginkgo.Context("trace", func() {
		var c *Cache

		ginkgo.BeforeEach(func() {
			c = mustBuild(builder.WithWritePolicy(WriteBack))
		})

		ginkgo.It("should list the stages of a cold miss", func() {
			r := c.Access(0, Read)

			Expect(r.StepNames()).To(Equal([]string{
				"Decompose", "Probe", "Classify", "Memory Fetch",
				"Commit", "Finalize",
			}))
			Expect(r.Steps[2].Description).To(ContainSubstring("cold miss"))
		})

		ginkgo.It("should list the stages of a conflict miss", func() {
			c.Access(0, Write)
			r := c.Access(16, Read)

			Expect(r.StepNames()).To(Equal([]string{
				"Decompose", "Probe", "Classify", "Evict", "Memory Fetch",
				"Commit", "Finalize",
			}))
			Expect(r.Steps[2].Description).To(
				Equal("Tag mismatch in line 0 (1 != 0): conflict miss"))
			Expect(r.Steps[3].Description).To(ContainSubstring("written back"))
		})

		ginkgo.It("should list the stages of a read hit", func() {
			c.Access(0, Read)
			r := c.Access(0, Read)

			Expect(r.StepNames()).To(Equal([]string{
				"Decompose", "Probe", "Classify", "Commit", "Finalize",
			}))
			Expect(r.Steps[1].Description).To(Equal("Accessing cache line 0"))
		})

		ginkgo.It("should list the stages of a write hit", func() {
			c.Access(0, Read)
			r := c.Access(0, Write)

			Expect(r.StepNames()).To(Equal([]string{
				"Decompose", "Probe", "Classify", "Write", "Commit", "Finalize",
			}))
			Expect(r.Steps[3].Description).To(ContainSubstring("dirty bit set"))
		})

		ginkgo.It("should describe the associative search", func() {
			fa := mustBuild(builder.WithPlacement(FullyAssociative))

			r := fa.Access(16, Read)

			Expect(r.Steps[1].Description).To(
				Equal("Searching 4 lines for tag 4"))
			Expect(r.Fields.HasIndex).To(BeFalse())
		})

		ginkgo.It("should number accesses and snapshot the result", func() {
			c.Access(0, Read)
			r := c.Access(4, Write)

			Expect(r.AccessNumber).To(Equal(uint64(2)))
			Expect(r.Stats.TotalAccesses).To(Equal(uint64(2)))
			Expect(r.Lines).To(HaveLen(4))
			Expect(r.Lines[1].IsDirty).To(BeTrue())
		})
	})

	ginkgo.Context("stored values", func() {
		ginkgo.It("should store the address by default", func() {
			c := mustBuild(builder)

			c.Access(5, Write)

			Expect(c.State().Lines[1].Value).To(Equal(uint64(5)))
		})

		ginkgo.It("should store supplied data", func() {
			c := mustBuild(builder)

			c.AccessWithData(5, Write, 99)
			c.AccessWithData(6, Write, 100)

			line := c.State().Lines[1]
			Expect(line.Value).To(Equal(uint64(100)))
		})
	})

	ginkgo.Context("LRU replacement", func() {
		ginkgo.It("should evict the line untouched for the longest", func() {
			c := mustBuild(builder.
				WithPlacement(FullyAssociative).
				WithWritePolicy(WriteThrough))

			runSequence(c,
				[]uint64{0, 4, 8, 12, 0},
				[]Operation{Read, Read, Read, Read, Read})

			Expect(c.State().LRUQueue).To(Equal([]int{1, 2, 3, 0}))

			r := c.Access(16, Read)

			Expect(r.Eviction).To(BeTrue())
			Expect(r.MissKind).To(Equal(ConflictMiss))
			Expect(r.Line).To(Equal(1))
			Expect(r.EvictedTag).To(Equal(uint64(1)))
			Expect(r.DirtyWriteBack).To(BeFalse())
		})

		ginkgo.It("should write back a dirty victim", func() {
			c := mustBuild(builder.
				WithPlacement(FullyAssociative).
				WithWritePolicy(WriteBack))

			runSequence(c,
				[]uint64{0, 4, 8, 12},
				[]Operation{Write, Read, Read, Read})

			r := c.Access(16, Read)

			Expect(r.Line).To(Equal(0))
			Expect(r.DirtyWriteBack).To(BeTrue())
			Expect(c.Stats().MemoryWrites).To(Equal(uint64(1)))
		})
	})

	ginkgo.Context("write-through eviction", func() {
		ginkgo.It("should never write back", func() {
			c := mustBuild(builder.WithWritePolicy(WriteThrough))

			c.Access(0, Write)
			r := c.Access(16, Write)

			Expect(r.Eviction).To(BeTrue())
			Expect(r.DirtyWriteBack).To(BeFalse())
			Expect(c.Stats().MemoryWrites).To(Equal(uint64(2)))
		})
	})

	ginkgo.Context("unbounded addresses", func() {
		ginkgo.It("should simulate addresses wider than the address width", func() {
			c := mustBuild(builder)

			c.Access(1<<40, Read)
			r := c.Access(1<<40, Read)

			Expect(r.Hit).To(BeTrue())
			Expect(r.Fields.Tag).To(Equal(uint64(1 << 36)))
			Expect(c.Layout().TagBits).To(Equal(28))
		})
	})

	ginkgo.Context("hooks and reset", func() {
		var (
			mockCtrl *gomock.Controller
			hook     *MockHook
			c        *Cache
		)

		ginkgo.BeforeEach(func() {
			mockCtrl = gomock.NewController(ginkgo.GinkgoT())
			hook = NewMockHook(mockCtrl)
			c = mustBuild(builder.WithName("L1"))
			c.AcceptHook(hook)
		})

		ginkgo.AfterEach(func() {
			mockCtrl.Finish()
		})

		ginkgo.It("should invoke hooks after every access", func() {
			hook.EXPECT().
				Func(gomock.Any()).
				Do(func(ctx hooking.HookCtx) {
					Expect(ctx.Pos).To(BeIdenticalTo(HookPosAccess))
					Expect(ctx.Domain).To(BeIdenticalTo(c))
					Expect(ctx.Item.(AccessResult).Address).To(Equal(uint64(8)))
				})

			c.Access(8, Read)
		})

		ginkgo.It("should create a fresh cache with the same configuration", func() {
			hook.EXPECT().Func(gomock.Any()).Times(2)

			c.Access(0, Write)
			c.Access(4, Write)

			var fresh *Cache

			hook.EXPECT().
				Func(gomock.Any()).
				Do(func(ctx hooking.HookCtx) {
					Expect(ctx.Pos).To(BeIdenticalTo(HookPosReset))
				})

			fresh = c.Reset()

			Expect(fresh).NotTo(BeIdenticalTo(c))
			Expect(fresh.Config()).To(Equal(c.Config()))
			Expect(fresh.Name()).To(Equal("L1"))
			Expect(fresh.Stats()).To(Equal(Statistics{}))
			Expect(fresh.NumHooks()).To(Equal(1))

			for _, line := range fresh.State().Lines {
				Expect(line.IsValid).To(BeFalse())
			}

			Expect(c.Stats().TotalAccesses).To(Equal(uint64(2)))
		})
	})
})
