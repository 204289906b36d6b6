package cache

import (
	"fmt"
	"strings"

	"github.com/sarchlab/cachesim/mem/cache/addressing"
)

// Placement decides which lines a block may be placed in.
type Placement int

// Placements supported by the cache.
const (
	DirectMapped Placement = iota
	FullyAssociative
)

func (p Placement) String() string {
	switch p {
	case DirectMapped:
		return "direct-mapped"
	case FullyAssociative:
		return "fully-associative"
	default:
		return fmt.Sprintf("Placement(%d)", int(p))
	}
}

// ParsePlacement converts names such as "direct-mapped" into a Placement.
func ParsePlacement(s string) (Placement, error) {
	switch normalize(s) {
	case "direct-mapped", "direct", "dm", "1":
		return DirectMapped, nil
	case "fully-associative", "associative", "fa", "2":
		return FullyAssociative, nil
	default:
		return 0, fmt.Errorf("unknown placement %q", s)
	}
}

// WritePolicy decides when a write reaches the memory below the cache.
type WritePolicy int

// Write policies supported by the cache.
const (
	WriteThrough WritePolicy = iota
	WriteBack
)

func (p WritePolicy) String() string {
	switch p {
	case WriteThrough:
		return "write-through"
	case WriteBack:
		return "write-back"
	default:
		return fmt.Sprintf("WritePolicy(%d)", int(p))
	}
}

// ParseWritePolicy converts names such as "write-back" into a WritePolicy.
func ParseWritePolicy(s string) (WritePolicy, error) {
	switch normalize(s) {
	case "write-through", "writethrough", "wt", "1":
		return WriteThrough, nil
	case "write-back", "writeback", "wb", "2":
		return WriteBack, nil
	default:
		return 0, fmt.Errorf("unknown write policy %q", s)
	}
}

// Operation is the kind of an access.
type Operation int

// Operations that an access can perform.
const (
	Read Operation = iota
	Write
)

func (o Operation) String() string {
	switch o {
	case Read:
		return "read"
	case Write:
		return "write"
	default:
		return fmt.Sprintf("Operation(%d)", int(o))
	}
}

// ParseOperation accepts "r", "read", "w", and "write" in any case.
func ParseOperation(s string) (Operation, error) {
	switch normalize(s) {
	case "r", "read":
		return Read, nil
	case "w", "write":
		return Write, nil
	default:
		return 0, fmt.Errorf("unknown operation %q", s)
	}
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.ReplaceAll(s, "_", "-")
}

// Config is the configuration of a cache.
type Config struct {
	TotalSize   int
	BlockSize   int
	Placement   Placement
	WritePolicy WritePolicy

	// AddressWidth is only used to report the number of tag bits. Zero means
	// addressing.DefaultAddressWidth.
	AddressWidth int
}

// NumLines returns the number of lines the cache has.
func (c Config) NumLines() int {
	if c.BlockSize <= 0 {
		return 0
	}

	return c.TotalSize / c.BlockSize
}

func (c Config) addressWidth() int {
	if c.AddressWidth <= 0 {
		return addressing.DefaultAddressWidth
	}

	return c.AddressWidth
}

func isPowerOfTwo(v int) bool {
	return v > 0 && v&(v-1) == 0
}

// Validate returns a *ConfigurationError naming the first constraint that the
// configuration violates.
func (c Config) Validate() error {
	switch {
	case c.TotalSize <= 0:
		return newConfigurationError("total size", c.TotalSize, ConstraintNonPositive)
	case c.BlockSize <= 0:
		return newConfigurationError("block size", c.BlockSize, ConstraintNonPositive)
	case !isPowerOfTwo(c.BlockSize):
		return newConfigurationError("block size", c.BlockSize, ConstraintNotPowerOfTwo)
	case c.BlockSize > c.TotalSize:
		return newConfigurationError("block size", c.BlockSize, ConstraintBlockExceedsTotal)
	case c.TotalSize%c.BlockSize != 0:
		return newConfigurationError("total size", c.TotalSize, ConstraintNotDivisible)
	case !isPowerOfTwo(c.NumLines()):
		return newConfigurationError("line count", c.NumLines(), ConstraintNotPowerOfTwo)
	}

	if c.Placement != DirectMapped && c.Placement != FullyAssociative {
		return newConfigurationError("placement", int(c.Placement), ConstraintUnknownPlacement)
	}

	if c.WritePolicy != WriteThrough && c.WritePolicy != WriteBack {
		return newConfigurationError("write policy", int(c.WritePolicy), ConstraintUnknownWritePolicy)
	}

	return nil
}
