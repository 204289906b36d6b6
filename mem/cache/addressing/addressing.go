// Package addressing splits memory addresses into the tag, index, and offset
// fields that a cache uses to locate a block.
package addressing

import (
	"fmt"
	"math/bits"
)

// DefaultAddressWidth is the address width used to report the number of tag
// bits. It does not limit the addresses that can be decomposed.
const DefaultAddressWidth = 32

// Fields is the result of decomposing an address.
type Fields struct {
	Tag    uint64
	Index  uint64
	Offset uint64

	// HasIndex is false for caches that do not select a line by index.
	HasIndex bool
}

func (f Fields) String() string {
	if f.HasIndex {
		return fmt.Sprintf("tag=%d index=%d offset=%d", f.Tag, f.Index, f.Offset)
	}

	return fmt.Sprintf("tag=%d offset=%d", f.Tag, f.Offset)
}

// Layout describes how many bits each field occupies.
type Layout struct {
	TagBits    int
	IndexBits  int
	OffsetBits int
	HasIndex   bool
}

// A Codec decomposes addresses.
type Codec interface {
	Decompose(address uint64) Fields
	Layout() Layout
}

// Log2 returns the base-2 logarithm of a power of two.
func Log2(v uint64) int {
	return bits.TrailingZeros64(v)
}

func mask(numBits int) uint64 {
	return (uint64(1) << numBits) - 1
}

func tagBits(addressWidth, usedBits int) int {
	if addressWidth <= 0 {
		addressWidth = DefaultAddressWidth
	}

	if usedBits >= addressWidth {
		return 0
	}

	return addressWidth - usedBits
}

// DirectMapped decomposes addresses into tag, index, and offset.
type DirectMapped struct {
	offsetBits   int
	indexBits    int
	addressWidth int
}

// NewDirectMapped creates a codec for a direct-mapped cache with numLines
// lines of blockSize bytes. Both must be powers of two.
func NewDirectMapped(blockSize, numLines uint64, addressWidth int) DirectMapped {
	return DirectMapped{
		offsetBits:   Log2(blockSize),
		indexBits:    Log2(numLines),
		addressWidth: addressWidth,
	}
}

// Decompose splits the address.
func (c DirectMapped) Decompose(address uint64) Fields {
	return Fields{
		Offset:   address & mask(c.offsetBits),
		Index:    (address >> c.offsetBits) & mask(c.indexBits),
		Tag:      address >> (c.offsetBits + c.indexBits),
		HasIndex: true,
	}
}

// Layout returns the bit widths of the fields.
func (c DirectMapped) Layout() Layout {
	return Layout{
		TagBits:    tagBits(c.addressWidth, c.offsetBits+c.indexBits),
		IndexBits:  c.indexBits,
		OffsetBits: c.offsetBits,
		HasIndex:   true,
	}
}

// FullyAssociative decomposes addresses into tag and offset.
type FullyAssociative struct {
	offsetBits   int
	addressWidth int
}

// NewFullyAssociative creates a codec for a fully associative cache with
// blocks of blockSize bytes.
func NewFullyAssociative(blockSize uint64, addressWidth int) FullyAssociative {
	return FullyAssociative{
		offsetBits:   Log2(blockSize),
		addressWidth: addressWidth,
	}
}

// Decompose splits the address.
func (c FullyAssociative) Decompose(address uint64) Fields {
	return Fields{
		Offset: address & mask(c.offsetBits),
		Tag:    address >> c.offsetBits,
	}
}

// Layout returns the bit widths of the fields.
func (c FullyAssociative) Layout() Layout {
	return Layout{
		TagBits:    tagBits(c.addressWidth, c.offsetBits),
		OffsetBits: c.offsetBits,
	}
}
