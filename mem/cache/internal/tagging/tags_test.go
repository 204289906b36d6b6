package tagging

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("DirectMappedStore", func() {
	var store *DirectMappedStore

	BeforeEach(func() {
		store = NewDirectMappedStore(4)
	})

	It("should start with all lines invalid", func() {
		Expect(store.NumLines()).To(Equal(4))

		for i, line := range store.Lines() {
			Expect(line).To(Equal(Line{Index: i}))
		}
	})

	It("should match a valid line with the same tag", func() {
		store.Update(Line{Index: 2, IsValid: true, Tag: 7, Value: 100})

		Expect(store.Matches(2, 7)).To(BeTrue())
		Expect(store.Matches(2, 8)).To(BeFalse())
		Expect(store.Matches(1, 7)).To(BeFalse())
	})

	It("should clear metadata when a line is invalidated", func() {
		store.Update(Line{Index: 1, IsValid: true, Tag: 3, IsDirty: true})
		store.Update(Line{Index: 1, Tag: 3, IsDirty: true})

		Expect(store.Lookup(1)).To(Equal(Line{Index: 1}))
	})

	It("should return a copy of the lines", func() {
		lines := store.Lines()
		lines[0].IsValid = true

		Expect(store.Lookup(0).IsValid).To(BeFalse())
	})

	It("should panic on out-of-range index", func() {
		Expect(func() { store.Lookup(4) }).To(Panic())
	})
})

var _ = Describe("AssociativeStore", func() {
	var store *AssociativeStore

	fill := func(index int, tag uint64) {
		store.Update(Line{Index: index, IsValid: true, Tag: tag})
		store.Touch(index)
	}

	BeforeEach(func() {
		store = NewAssociativeStore(4)
	})

	It("should find the first empty line", func() {
		fill(0, 10)

		index, ok := store.FindEmpty()
		Expect(ok).To(BeTrue())
		Expect(index).To(Equal(1))
	})

	It("should report no empty line when full", func() {
		for i := range 4 {
			fill(i, uint64(i))
		}

		_, ok := store.FindEmpty()
		Expect(ok).To(BeFalse())
	})

	It("should find a line by tag", func() {
		fill(0, 10)
		fill(1, 20)

		index, ok := store.FindByTag(20)
		Expect(ok).To(BeTrue())
		Expect(index).To(Equal(1))

		_, ok = store.FindByTag(30)
		Expect(ok).To(BeFalse())
	})

	It("should not find invalid lines by tag", func() {
		store.Update(Line{Index: 0, Tag: 0})

		_, ok := store.FindByTag(0)
		Expect(ok).To(BeFalse())
	})

	It("should have no victim when empty", func() {
		_, ok := store.FindVictim()
		Expect(ok).To(BeFalse())
		Expect(store.LRUQueue()).To(BeEmpty())
	})

	It("should order lines by access", func() {
		for i := range 4 {
			fill(i, uint64(i))
		}

		store.Touch(1)

		Expect(store.LRUQueue()).To(Equal([]int{0, 2, 3, 1}))

		victim, ok := store.FindVictim()
		Expect(ok).To(BeTrue())
		Expect(victim).To(Equal(0))
	})

	It("should evict by access order, not fill order", func() {
		for i := range 4 {
			fill(i, uint64(i))
		}

		store.Touch(0)
		store.Touch(2)

		victim, _ := store.FindVictim()
		Expect(victim).To(Equal(1))
	})

	It("should keep touching the newest line stable", func() {
		fill(0, 1)
		store.Touch(0)
		store.Touch(0)

		Expect(store.LRUQueue()).To(Equal([]int{0}))
	})

	It("should drop invalidated lines from the recency order", func() {
		fill(0, 1)
		fill(1, 2)
		fill(2, 3)

		store.Update(Line{Index: 1})

		Expect(store.LRUQueue()).To(Equal([]int{0, 2}))
	})
})
