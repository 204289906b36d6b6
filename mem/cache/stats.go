package cache

import "math"

// Statistics are the running counters of a cache. They only grow until the
// cache is reset.
type Statistics struct {
	TotalAccesses uint64
	Hits          uint64
	Misses        uint64
	MemoryReads   uint64
	MemoryWrites  uint64
}

// HitRatio returns hits/accesses, or 0 before the first access.
func (s Statistics) HitRatio() float64 {
	if s.TotalAccesses == 0 {
		return 0
	}

	return float64(s.Hits) / float64(s.TotalAccesses)
}

// MissRatio returns misses/accesses, or 0 before the first access.
func (s Statistics) MissRatio() float64 {
	if s.TotalAccesses == 0 {
		return 0
	}

	return float64(s.Misses) / float64(s.TotalAccesses)
}

// TotalMemoryTraffic counts both reads and writes to memory.
func (s Statistics) TotalMemoryTraffic() uint64 {
	return s.MemoryReads + s.MemoryWrites
}

// Report is the display form of Statistics. Ratios are percentages rounded
// to two decimals.
type Report struct {
	TotalAccesses      uint64  `json:"total_accesses"`
	Hits               uint64  `json:"hits"`
	Misses             uint64  `json:"misses"`
	HitRatio           float64 `json:"hit_ratio"`
	MissRatio          float64 `json:"miss_ratio"`
	MemoryReads        uint64  `json:"memory_reads"`
	MemoryWrites       uint64  `json:"memory_writes"`
	TotalMemoryTraffic uint64  `json:"total_memory_traffic"`
}

// Report converts the counters into their display form.
func (s Statistics) Report() Report {
	return Report{
		TotalAccesses:      s.TotalAccesses,
		Hits:               s.Hits,
		Misses:             s.Misses,
		HitRatio:           percent(s.HitRatio()),
		MissRatio:          percent(s.MissRatio()),
		MemoryReads:        s.MemoryReads,
		MemoryWrites:       s.MemoryWrites,
		TotalMemoryTraffic: s.TotalMemoryTraffic(),
	}
}

func percent(ratio float64) float64 {
	return math.Round(ratio*100*100) / 100
}

// WriteReduction returns by how many percent the memory writes of other are
// lower than those of base. It is 0 when base has no memory writes.
func WriteReduction(base, other Statistics) float64 {
	if base.MemoryWrites == 0 {
		return 0
	}

	diff := float64(base.MemoryWrites) - float64(other.MemoryWrites)

	return percent(diff / float64(base.MemoryWrites))
}
