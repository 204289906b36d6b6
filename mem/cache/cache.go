// Package cache simulates a single-level hardware cache that processes a
// stream of reads and writes.
//
// A Cache is created from a Config, either directly with New or through a
// Builder. Each call to Access runs one access to completion and returns an
// AccessResult that lists the steps the cache went through. A Cache must not
// be accessed by more than one goroutine at a time.
package cache

import (
	"github.com/sarchlab/cachesim/hooking"
	"github.com/sarchlab/cachesim/mem/cache/addressing"
)

// A Cache holds the lines and the counters of one simulated cache.
type Cache struct {
	hooking.HookableBase

	name   string
	config Config
	engine engine
	stats  Statistics
}

// Name returns the name of the cache.
func (c *Cache) Name() string {
	return c.name
}

// Config returns the configuration the cache was created with.
func (c *Cache) Config() Config {
	return c.config
}

// Layout returns the bit widths of the address fields.
func (c *Cache) Layout() addressing.Layout {
	return c.engine.Layout()
}

// Decompose splits an address the way the cache does during an access.
func (c *Cache) Decompose(address uint64) addressing.Fields {
	return c.engine.Decompose(address)
}

// Stats returns the current counters.
func (c *Cache) Stats() Statistics {
	return c.stats
}

// Snapshot is a read-only view of a cache.
type Snapshot struct {
	Name   string
	Config Config
	Layout addressing.Layout
	Lines  []Line

	// LRUQueue lists the valid lines, least recently used first. It is only
	// set for fully associative caches.
	LRUQueue []int

	Stats Statistics
}

// State returns a snapshot of the cache.
func (c *Cache) State() Snapshot {
	return Snapshot{
		Name:     c.name,
		Config:   c.config,
		Layout:   c.engine.Layout(),
		Lines:    c.engine.lines(),
		LRUQueue: c.engine.lruQueue(),
		Stats:    c.stats,
	}
}

// Reset returns a new cache with the same configuration, all lines invalid,
// and all counters zero. The hooks of c are registered on the new cache.
func (c *Cache) Reset() *Cache {
	fresh := &Cache{
		name:   c.name,
		config: c.config,
		engine: newEngine(c.config),
	}

	for _, hook := range c.Hooks() {
		fresh.AcceptHook(hook)
	}

	fresh.traceReset()

	return fresh
}

// Access reads or writes the given address. A write stores the address
// itself as the placeholder value.
func (c *Cache) Access(address uint64, op Operation) AccessResult {
	return c.access(address, op, address)
}

// AccessWithData reads or writes the given address. A write stores data as
// the value of the line.
func (c *Cache) AccessWithData(
	address uint64,
	op Operation,
	data uint64,
) AccessResult {
	return c.access(address, op, data)
}

func (c *Cache) access(address uint64, op Operation, value uint64) AccessResult {
	c.stats.TotalAccesses++

	p := &accessProcess{
		cache: c,
		op:    op,
		value: value,
		result: AccessResult{
			AccessNumber: c.stats.TotalAccesses,
			Address:      address,
			Operation:    op,
		},
	}

	p.run()

	c.traceAccess(p.result)

	return p.result
}
