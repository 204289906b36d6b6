package addressing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("DirectMapped", func() {
	var codec DirectMapped

	BeforeEach(func() {
		codec = NewDirectMapped(4, 4, DefaultAddressWidth)
	})

	It("should report the layout", func() {
		Expect(codec.Layout()).To(Equal(Layout{
			TagBits:    28,
			IndexBits:  2,
			OffsetBits: 2,
			HasIndex:   true,
		}))
	})

	It("should map conflicting addresses to the same index", func() {
		for i, addr := range []uint64{0, 16, 32} {
			f := codec.Decompose(addr)
			Expect(f.Index).To(Equal(uint64(0)))
			Expect(f.Offset).To(Equal(uint64(0)))
			Expect(f.Tag).To(Equal(uint64(i)))
		}
	})

	It("should split all three fields", func() {
		f := codec.Decompose(0b1101_10_11)

		Expect(f).To(Equal(Fields{
			Tag:      0b1101,
			Index:    0b10,
			Offset:   0b11,
			HasIndex: true,
		}))
	})

	It("should not clip tags wider than the address width", func() {
		f := codec.Decompose(1 << 40)

		Expect(f.Tag).To(Equal(uint64(1 << 36)))
	})

	It("should clamp the tag bits at zero", func() {
		wide := NewDirectMapped(1<<20, 1<<20, 32)

		Expect(wide.Layout().TagBits).To(Equal(0))
	})

	It("should handle a single line", func() {
		single := NewDirectMapped(16, 1, DefaultAddressWidth)
		f := single.Decompose(0x35)

		Expect(f.Index).To(Equal(uint64(0)))
		Expect(f.Offset).To(Equal(uint64(5)))
		Expect(f.Tag).To(Equal(uint64(3)))
	})
})

var _ = Describe("FullyAssociative", func() {
	var codec FullyAssociative

	BeforeEach(func() {
		codec = NewFullyAssociative(4, DefaultAddressWidth)
	})

	It("should report the layout without an index", func() {
		Expect(codec.Layout()).To(Equal(Layout{TagBits: 30, OffsetBits: 2}))
	})

	It("should split tag and offset", func() {
		Expect(codec.Decompose(0).Tag).To(Equal(uint64(0)))
		Expect(codec.Decompose(16).Tag).To(Equal(uint64(4)))
		Expect(codec.Decompose(32).Tag).To(Equal(uint64(8)))

		f := codec.Decompose(35)
		Expect(f.Offset).To(Equal(uint64(3)))
		Expect(f.HasIndex).To(BeFalse())
	})

	It("should format fields", func() {
		Expect(codec.Decompose(35).String()).To(Equal("tag=8 offset=3"))
	})
})
