// Package trace provides hooks that record the accesses processed by a cache.
package trace

import (
	"log"

	"github.com/rs/xid"

	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/hooking"
	"github.com/sarchlab/cachesim/mem/cache"
)

// Names of the tables written by the DB tracer.
const (
	AccessTable = "cache_accesses"
	StepTable   = "cache_steps"
)

// AccessRecord is a row of the access table.
type AccessRecord struct {
	ID             string
	Location       string
	AccessNumber   uint64
	Address        uint64
	Operation      string
	Tag            uint64
	LineIndex      uint64
	Offset         uint64
	Hit            bool
	MissKind       string
	Eviction       bool
	DirtyWriteBack bool
	Line           int
	Hits           uint64
	Misses         uint64
	MemoryReads    uint64
	MemoryWrites   uint64
}

// StepRecord is a row of the step table. AccessID refers to the ID of an
// AccessRecord.
type StepRecord struct {
	ID          string
	AccessID    string
	Seq         int
	Kind        string
	Description string
}

type named interface {
	Name() string
}

func location(ctx hooking.HookCtx) string {
	if n, ok := ctx.Domain.(named); ok {
		return n.Name()
	}

	return ""
}

// A logTracer is a hook that writes the accesses of a cache to a logger.
type logTracer struct {
	logger *log.Logger
}

// NewLogTracer creates a hook that prints one line per access and one line
// per step.
func NewLogTracer(logger *log.Logger) hooking.Hook {
	return &logTracer{logger: logger}
}

func (t *logTracer) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case cache.HookPosAccess:
		t.logAccess(location(ctx), ctx.Item.(cache.AccessResult))
	case cache.HookPosReset:
		t.logger.Printf("reset, %s\n", location(ctx))
	}
}

func (t *logTracer) logAccess(where string, r cache.AccessResult) {
	t.logger.Printf("access, %s, %d, %s, 0x%x, %s, %d\n",
		where,
		r.AccessNumber,
		r.Operation,
		r.Address,
		r.MissKind,
		r.Line,
	)

	for _, s := range r.Steps {
		t.logger.Printf("step, %s, %d, %s, %s\n",
			where, r.AccessNumber, s.Kind, s.Description)
	}
}

// A dbTracer is a hook that records the accesses of a cache into a database
// using the data recorder.
type dbTracer struct {
	dataRecorder datarecording.DataRecorder
}

// NewDBTracer creates a hook that records every access and its steps.
func NewDBTracer(dataRecorder datarecording.DataRecorder) hooking.Hook {
	t := &dbTracer{dataRecorder: dataRecorder}

	t.dataRecorder.CreateTable(AccessTable, AccessRecord{})
	t.dataRecorder.CreateTable(StepTable, StepRecord{})

	return t
}

func (t *dbTracer) Func(ctx hooking.HookCtx) {
	if ctx.Pos != cache.HookPosAccess {
		return
	}

	r := ctx.Item.(cache.AccessResult)
	id := xid.New().String()

	t.dataRecorder.InsertData(AccessTable, AccessRecord{
		ID:             id,
		Location:       location(ctx),
		AccessNumber:   r.AccessNumber,
		Address:        r.Address,
		Operation:      r.Operation.String(),
		Tag:            r.Fields.Tag,
		LineIndex:      r.Fields.Index,
		Offset:         r.Fields.Offset,
		Hit:            r.Hit,
		MissKind:       r.MissKind.String(),
		Eviction:       r.Eviction,
		DirtyWriteBack: r.DirtyWriteBack,
		Line:           r.Line,
		Hits:           r.Stats.Hits,
		Misses:         r.Stats.Misses,
		MemoryReads:    r.Stats.MemoryReads,
		MemoryWrites:   r.Stats.MemoryWrites,
	})

	for i, s := range r.Steps {
		t.dataRecorder.InsertData(StepTable, StepRecord{
			ID:          xid.New().String(),
			AccessID:    id,
			Seq:         i,
			Kind:        s.Kind.String(),
			Description: s.Description,
		})
	}
}
