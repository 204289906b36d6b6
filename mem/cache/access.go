package cache

import (
	"fmt"

	"github.com/sarchlab/cachesim/mem/cache/addressing"
)

// StepKind names a stage of an access.
type StepKind int

// The stages of an access, in the order they are traversed. Write only
// appears on hits and Evict and MemoryFetch only on misses.
const (
	StepDecompose StepKind = iota
	StepProbe
	StepClassify
	StepWrite
	StepEvict
	StepMemoryFetch
	StepCommit
	StepFinalize
)

var stepNames = [...]string{
	StepDecompose:   "Decompose",
	StepProbe:       "Probe",
	StepClassify:    "Classify",
	StepWrite:       "Write",
	StepEvict:       "Evict",
	StepMemoryFetch: "Memory Fetch",
	StepCommit:      "Commit",
	StepFinalize:    "Finalize",
}

func (k StepKind) String() string {
	if k < 0 || int(k) >= len(stepNames) {
		return fmt.Sprintf("StepKind(%d)", int(k))
	}

	return stepNames[k]
}

// A Step is one entry of the trace of an access.
type Step struct {
	Kind        StepKind
	Description string
}

// MissKind tells why an access missed.
type MissKind int

// Kinds of misses.
const (
	NoMiss MissKind = iota
	ColdMiss
	ConflictMiss
)

func (k MissKind) String() string {
	switch k {
	case NoMiss:
		return "hit"
	case ColdMiss:
		return "cold miss"
	case ConflictMiss:
		return "conflict miss"
	default:
		return fmt.Sprintf("MissKind(%d)", int(k))
	}
}

// AccessResult describes what a single access did.
type AccessResult struct {
	AccessNumber uint64
	Address      uint64
	Operation    Operation
	Fields       addressing.Fields

	Hit      bool
	MissKind MissKind

	// Eviction is set when a valid block was replaced. EvictedTag is the tag
	// of that block.
	Eviction       bool
	EvictedTag     uint64
	DirtyWriteBack bool

	// Line is the index of the line that was hit or filled.
	Line int

	Steps []Step

	// Lines and Stats are the state of the cache after the access.
	Lines []Line
	Stats Statistics
}

// StepNames returns the names of the steps, in order.
func (r AccessResult) StepNames() []string {
	names := make([]string, len(r.Steps))
	for i, s := range r.Steps {
		names[i] = s.Kind.String()
	}

	return names
}

// accessProcess carries one access through the stages of the cache.
type accessProcess struct {
	cache  *Cache
	op     Operation
	value  uint64
	probe  probeResult
	result AccessResult
}

func (p *accessProcess) run() {
	p.decompose()
	p.probeLines()

	if p.classify() {
		p.applyWriteOnHit()
		p.commitHit()
	} else {
		p.evict()
		p.fetch()
		p.commitFill()
	}

	p.finalize()
}

func (p *accessProcess) step(kind StepKind, format string, args ...any) {
	p.result.Steps = append(p.result.Steps, Step{
		Kind:        kind,
		Description: fmt.Sprintf(format, args...),
	})
}

func (p *accessProcess) decompose() {
	p.result.Fields = p.cache.engine.Decompose(p.result.Address)
	p.step(StepDecompose, "Address %d (0x%x): %s",
		p.result.Address, p.result.Address, p.result.Fields)
}

func (p *accessProcess) probeLines() {
	p.probe = p.cache.engine.probe(p.result.Fields)
	p.result.Line = p.probe.target
	p.step(StepProbe, "%s", p.cache.engine.describeProbe(p.result.Fields))
}

func (p *accessProcess) classify() bool {
	tag := p.result.Fields.Tag
	occupant := p.cache.engine.lookup(p.probe.target)

	switch {
	case p.probe.hit:
		p.cache.stats.Hits++
		p.result.Hit = true
		p.step(StepClassify, "Tag %d found in line %d: cache hit",
			tag, p.probe.target)
	case occupant.IsValid:
		p.cache.stats.Misses++
		p.result.MissKind = ConflictMiss
		p.step(StepClassify,
			"Tag mismatch in line %d (%d != %d): conflict miss",
			p.probe.target, tag, occupant.Tag)
	default:
		p.cache.stats.Misses++
		p.result.MissKind = ColdMiss
		p.step(StepClassify, "Line %d is empty: cold miss", p.probe.target)
	}

	return p.result.Hit
}

func (p *accessProcess) applyWriteOnHit() {
	if p.op != Write {
		return
	}

	line := p.cache.engine.lookup(p.probe.target)
	line.Value = p.value

	switch p.cache.config.WritePolicy {
	case WriteThrough:
		line.IsDirty = false
		p.cache.stats.MemoryWrites++
		p.step(StepWrite,
			"Write-through: updated line %d and memory (writes: %d)",
			line.Index, p.cache.stats.MemoryWrites)
	case WriteBack:
		line.IsDirty = true
		p.step(StepWrite,
			"Write-back: updated line %d only, dirty bit set", line.Index)
	}

	p.cache.engine.update(line)
}

func (p *accessProcess) commitHit() {
	p.cache.engine.touch(p.probe.target)

	if p.op == Write {
		p.step(StepCommit, "Line %d updated", p.probe.target)
		return
	}

	p.step(StepCommit, "Line %d unchanged", p.probe.target)
}

func (p *accessProcess) evict() {
	victim := p.cache.engine.lookup(p.probe.target)
	if !victim.IsValid {
		return
	}

	p.result.Eviction = true
	p.result.EvictedTag = victim.Tag

	if p.cache.config.WritePolicy == WriteBack && victim.IsDirty {
		p.cache.stats.MemoryWrites++
		p.result.DirtyWriteBack = true
		p.step(StepEvict,
			"Evicting tag %d from line %d: dirty, written back to memory (writes: %d)",
			victim.Tag, victim.Index, p.cache.stats.MemoryWrites)

		return
	}

	p.step(StepEvict, "Evicting tag %d from line %d: clean, no write-back",
		victim.Tag, victim.Index)
}

func (p *accessProcess) fetch() {
	p.cache.stats.MemoryReads++
	p.step(StepMemoryFetch, "Fetching block from memory (reads: %d)",
		p.cache.stats.MemoryReads)
}

func (p *accessProcess) commitFill() {
	line := Line{
		Index:   p.probe.target,
		IsValid: true,
		Tag:     p.result.Fields.Tag,
		Value:   p.value,
	}

	note := ""

	if p.op == Write {
		switch p.cache.config.WritePolicy {
		case WriteThrough:
			p.cache.stats.MemoryWrites++
			note = fmt.Sprintf(", write-through to memory (writes: %d)",
				p.cache.stats.MemoryWrites)
		case WriteBack:
			line.IsDirty = true
			note = ", dirty bit set"
		}
	}

	p.cache.engine.update(line)
	p.cache.engine.touch(line.Index)

	p.step(StepCommit, "Installed tag %d in line %d%s",
		line.Tag, line.Index, note)
}

func (p *accessProcess) finalize() {
	p.result.Lines = p.cache.engine.lines()
	p.result.Stats = p.cache.stats

	p.step(StepFinalize, "Access %d complete: %s",
		p.result.AccessNumber, p.result.MissKind)
}
