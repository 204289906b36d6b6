package server

import (
	"github.com/sarchlab/cachesim/mem/cache"
)

type createReq struct {
	CacheSize    *int    `json:"cache_size"`
	BlockSize    *int    `json:"block_size"`
	CacheType    *string `json:"cache_type"`
	WritePolicy  *string `json:"write_policy"`
	AddressWidth int     `json:"address_width,omitempty"`
}

func (r createReq) config() (cache.Config, error) {
	config := cache.MakeBuilder().Config()

	if r.CacheSize != nil {
		config.TotalSize = *r.CacheSize
	}

	if r.BlockSize != nil {
		config.BlockSize = *r.BlockSize
	}

	if r.CacheType != nil {
		p, err := cache.ParsePlacement(*r.CacheType)
		if err != nil {
			return cache.Config{}, badRequest{err}
		}

		config.Placement = p
	}

	if r.WritePolicy != nil {
		p, err := cache.ParseWritePolicy(*r.WritePolicy)
		if err != nil {
			return cache.Config{}, badRequest{err}
		}

		config.WritePolicy = p
	}

	config.AddressWidth = r.AddressWidth

	return config, nil
}

type accessReq struct {
	Address   uint64  `json:"address"`
	Operation string  `json:"operation"`
	Data      *uint64 `json:"data"`
}

func (r accessReq) operation() (cache.Operation, error) {
	if r.Operation == "" {
		return cache.Read, nil
	}

	op, err := cache.ParseOperation(r.Operation)
	if err != nil {
		return 0, badRequest{err}
	}

	return op, nil
}

type lineRsp struct {
	Index int     `json:"index"`
	Valid int     `json:"valid"`
	Tag   *uint64 `json:"tag"`
	Data  *uint64 `json:"data"`
	Dirty int     `json:"dirty"`
}

func boolToInt(b bool) int {
	if b {
		return 1
	}

	return 0
}

func makeLines(lines []cache.Line) []lineRsp {
	rsp := make([]lineRsp, len(lines))

	for i, l := range lines {
		rsp[i] = lineRsp{
			Index: l.Index,
			Valid: boolToInt(l.IsValid),
			Dirty: boolToInt(l.IsDirty),
		}

		if l.IsValid {
			tag, value := l.Tag, l.Value
			rsp[i].Tag = &tag
			rsp[i].Data = &value
		}
	}

	return rsp
}

type bitsRsp struct {
	Tag    int  `json:"tag"`
	Index  *int `json:"index,omitempty"`
	Offset int  `json:"offset"`
}

type cacheStateRsp struct {
	Name        string       `json:"name"`
	Type        string       `json:"type"`
	Size        int          `json:"size"`
	BlockSize   int          `json:"block_size"`
	NumBlocks   int          `json:"num_blocks"`
	WritePolicy string       `json:"write_policy"`
	Bits        bitsRsp      `json:"bits"`
	Lines       []lineRsp    `json:"lines"`
	LRUQueue    []int        `json:"lru_queue,omitempty"`
	Statistics  cache.Report `json:"statistics"`
}

func makeCacheState(s cache.Snapshot) cacheStateRsp {
	rsp := cacheStateRsp{
		Name:        s.Name,
		Type:        s.Config.Placement.String(),
		Size:        s.Config.TotalSize,
		BlockSize:   s.Config.BlockSize,
		NumBlocks:   s.Config.NumLines(),
		WritePolicy: s.Config.WritePolicy.String(),
		Bits: bitsRsp{
			Tag:    s.Layout.TagBits,
			Offset: s.Layout.OffsetBits,
		},
		Lines:      makeLines(s.Lines),
		LRUQueue:   s.LRUQueue,
		Statistics: s.Stats.Report(),
	}

	if s.Layout.HasIndex {
		indexBits := s.Layout.IndexBits
		rsp.Bits.Index = &indexBits
	}

	return rsp
}

type stateRsp struct {
	Success    bool          `json:"success"`
	SessionID  string        `json:"session_id,omitempty"`
	CacheState cacheStateRsp `json:"cache_state"`
}

type decompositionRsp struct {
	Tag    uint64  `json:"tag"`
	Index  *uint64 `json:"index,omitempty"`
	Offset uint64  `json:"offset"`
}

type stepRsp struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Active      bool   `json:"active"`
}

type accessRsp struct {
	Success        bool             `json:"success"`
	AccessNumber   uint64           `json:"access_number"`
	Address        uint64           `json:"address"`
	Operation      string           `json:"operation"`
	Decomposition  decompositionRsp `json:"decomposition"`
	Steps          []stepRsp        `json:"steps"`
	Hit            bool             `json:"hit"`
	MissKind       string           `json:"miss_kind"`
	Eviction       bool             `json:"eviction"`
	EvictedTag     *uint64          `json:"evicted_tag,omitempty"`
	DirtyWriteback bool             `json:"dirty_writeback"`
	AffectedLine   int              `json:"affected_line"`
	Lines          []lineRsp        `json:"lines"`
	Statistics     cache.Report     `json:"statistics"`
}

func makeAccess(r cache.AccessResult) accessRsp {
	rsp := accessRsp{
		Success:      true,
		AccessNumber: r.AccessNumber,
		Address:      r.Address,
		Operation:    r.Operation.String(),
		Decomposition: decompositionRsp{
			Tag:    r.Fields.Tag,
			Offset: r.Fields.Offset,
		},
		Steps:          make([]stepRsp, len(r.Steps)),
		Hit:            r.Hit,
		MissKind:       r.MissKind.String(),
		Eviction:       r.Eviction,
		DirtyWriteback: r.DirtyWriteBack,
		AffectedLine:   r.Line,
		Lines:          makeLines(r.Lines),
		Statistics:     r.Stats.Report(),
	}

	if r.Fields.HasIndex {
		index := r.Fields.Index
		rsp.Decomposition.Index = &index
	}

	if r.Eviction {
		tag := r.EvictedTag
		rsp.EvictedTag = &tag
	}

	for i, s := range r.Steps {
		rsp.Steps[i] = stepRsp{
			Name:        s.Kind.String(),
			Description: s.Description,
			Active:      true,
		}
	}

	return rsp
}

type sessionsRsp struct {
	Success  bool     `json:"success"`
	Sessions []string `json:"sessions"`
}

type successRsp struct {
	Success bool `json:"success"`
}

type errorRsp struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}
