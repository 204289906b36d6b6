package trace

import (
	"context"

	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/mem/cache"
)

// ReadAccesses returns the recorded accesses in the order they happened.
func ReadAccesses(
	ctx context.Context,
	reader datarecording.DataReader,
) ([]AccessRecord, error) {
	reader.MapTable(AccessTable, AccessRecord{})

	results, _, err := reader.Query(ctx, AccessTable, datarecording.QueryParams{})
	if err != nil {
		return nil, err
	}

	records := make([]AccessRecord, len(results))
	for i, r := range results {
		records[i] = *r.(*AccessRecord)
	}

	return records, nil
}

// ReadSteps returns the steps of an access, in order.
func ReadSteps(
	ctx context.Context,
	reader datarecording.DataReader,
	accessID string,
) ([]StepRecord, error) {
	reader.MapTable(StepTable, StepRecord{})

	results, _, err := reader.Query(ctx, StepTable, datarecording.QueryParams{
		Where:   "AccessID = ?",
		Args:    []any{accessID},
		OrderBy: "Seq",
	})
	if err != nil {
		return nil, err
	}

	steps := make([]StepRecord, len(results))
	for i, r := range results {
		steps[i] = *r.(*StepRecord)
	}

	return steps, nil
}

// A Summary aggregates the recorded accesses of one cache. A cache is
// recognized by its name and by its access numbers, which start at 1 again
// after a reset.
type Summary struct {
	Location        string
	Accesses        uint64
	Hits            uint64
	ColdMisses      uint64
	ConflictMisses  uint64
	Evictions       uint64
	DirtyWriteBacks uint64
	MemoryReads     uint64
	MemoryWrites    uint64
}

// Summarize groups records, which must be in recording order, by cache.
func Summarize(records []AccessRecord) []Summary {
	var summaries []Summary

	current := map[string]int{}

	for _, r := range records {
		i, ok := current[r.Location]
		if !ok || r.AccessNumber <= summaries[i].Accesses {
			summaries = append(summaries, Summary{Location: r.Location})
			i = len(summaries) - 1
			current[r.Location] = i
		}

		s := &summaries[i]
		s.Accesses = r.AccessNumber
		s.MemoryReads = r.MemoryReads
		s.MemoryWrites = r.MemoryWrites

		switch {
		case r.Hit:
			s.Hits++
		case r.MissKind == cache.ColdMiss.String():
			s.ColdMisses++
		default:
			s.ConflictMisses++
		}

		if r.Eviction {
			s.Evictions++
		}

		if r.DirtyWriteBack {
			s.DirtyWriteBacks++
		}
	}

	return summaries
}
