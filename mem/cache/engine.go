package cache

import (
	"fmt"

	"github.com/sarchlab/cachesim/mem/cache/addressing"
	"github.com/sarchlab/cachesim/mem/cache/internal/tagging"
)

// Line is the metadata of one cache line.
type Line = tagging.Line

// probeResult tells where an access lands. On a hit, target is the line that
// holds the block. On a miss, target is the line the block will be placed in.
type probeResult struct {
	hit    bool
	target int
}

// An engine is a placement strategy. It owns the lines of the cache and knows
// which lines an address may use.
type engine interface {
	addressing.Codec

	describeProbe(f addressing.Fields) string
	probe(f addressing.Fields) probeResult
	lookup(index int) Line
	update(line Line)
	touch(index int)
	lines() []Line
	lruQueue() []int
}

func newEngine(config Config) engine {
	numLines := config.NumLines()

	switch config.Placement {
	case DirectMapped:
		return &directMappedEngine{
			DirectMapped: addressing.NewDirectMapped(
				uint64(config.BlockSize),
				uint64(numLines),
				config.addressWidth(),
			),
			store: tagging.NewDirectMappedStore(numLines),
		}
	case FullyAssociative:
		return &fullyAssociativeEngine{
			FullyAssociative: addressing.NewFullyAssociative(
				uint64(config.BlockSize),
				config.addressWidth(),
			),
			store: tagging.NewAssociativeStore(numLines),
		}
	default:
		panic("unknown placement: " + config.Placement.String())
	}
}

type directMappedEngine struct {
	addressing.DirectMapped
	store *tagging.DirectMappedStore
}

func (e *directMappedEngine) describeProbe(f addressing.Fields) string {
	return fmt.Sprintf("Accessing cache line %d", f.Index)
}

func (e *directMappedEngine) probe(f addressing.Fields) probeResult {
	index := int(f.Index)

	return probeResult{
		hit:    e.store.Matches(index, f.Tag),
		target: index,
	}
}

func (e *directMappedEngine) lookup(index int) Line {
	return e.store.Lookup(index)
}

func (e *directMappedEngine) update(line Line) {
	e.store.Update(line)
}

func (e *directMappedEngine) touch(int) {}

func (e *directMappedEngine) lines() []Line {
	return e.store.Lines()
}

func (e *directMappedEngine) lruQueue() []int {
	return nil
}

type fullyAssociativeEngine struct {
	addressing.FullyAssociative
	store *tagging.AssociativeStore
}

func (e *fullyAssociativeEngine) describeProbe(f addressing.Fields) string {
	return fmt.Sprintf("Searching %d lines for tag %d",
		e.store.NumLines(), f.Tag)
}

func (e *fullyAssociativeEngine) probe(f addressing.Fields) probeResult {
	if index, found := e.store.FindByTag(f.Tag); found {
		return probeResult{hit: true, target: index}
	}

	if index, found := e.store.FindEmpty(); found {
		return probeResult{target: index}
	}

	victim, found := e.store.FindVictim()
	if !found {
		panic("no empty line and no victim")
	}

	return probeResult{target: victim}
}

func (e *fullyAssociativeEngine) lookup(index int) Line {
	return e.store.Lookup(index)
}

func (e *fullyAssociativeEngine) update(line Line) {
	e.store.Update(line)
}

func (e *fullyAssociativeEngine) touch(index int) {
	e.store.Touch(index)
}

func (e *fullyAssociativeEngine) lines() []Line {
	return e.store.Lines()
}

func (e *fullyAssociativeEngine) lruQueue() []int {
	return e.store.LRUQueue()
}
