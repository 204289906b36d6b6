// Package tagging keeps the metadata of the lines of a cache.
package tagging

// A Line of a cache is the metadata associated with one physical cache line.
// Tag and Value are only meaningful when IsValid is set.
type Line struct {
	Index   int
	IsValid bool
	Tag     uint64
	Value   uint64
	IsDirty bool
}

// Holds reports whether the line is valid and stores the given tag.
func (l Line) Holds(tag uint64) bool {
	return l.IsValid && l.Tag == tag
}

type lineArray struct {
	lines []Line
}

func newLineArray(numLines int) lineArray {
	a := lineArray{lines: make([]Line, numLines)}
	for i := range a.lines {
		a.lines[i] = Line{Index: i}
	}

	return a
}

func (a *lineArray) mustBeInRange(index int) {
	if index < 0 || index >= len(a.lines) {
		panic("line index out of range")
	}
}

// NumLines returns the number of physical lines.
func (a *lineArray) NumLines() int {
	return len(a.lines)
}

// Lookup returns the line at the given index.
func (a *lineArray) Lookup(index int) Line {
	a.mustBeInRange(index)

	return a.lines[index]
}

// Lines returns a copy of all the lines, ordered by index.
func (a *lineArray) Lines() []Line {
	lines := make([]Line, len(a.lines))
	copy(lines, a.lines)

	return lines
}

func (a *lineArray) update(line Line) {
	a.mustBeInRange(line.Index)

	if !line.IsValid {
		line = Line{Index: line.Index}
	}

	a.lines[line.Index] = line
}

// DirectMappedStore keeps lines that are addressed by index. Every index has
// exactly one line that can hold it.
type DirectMappedStore struct {
	lineArray
}

// NewDirectMappedStore creates a store with numLines invalid lines.
func NewDirectMappedStore(numLines int) *DirectMappedStore {
	return &DirectMappedStore{lineArray: newLineArray(numLines)}
}

// Matches reports whether the line at index is valid and holds the tag.
func (s *DirectMappedStore) Matches(index int, tag uint64) bool {
	return s.Lookup(index).Holds(tag)
}

// Update overwrites the line at line.Index.
func (s *DirectMappedStore) Update(line Line) {
	s.update(line)
}

// AssociativeStore keeps lines that can hold any block, together with the
// recency order of the valid lines.
type AssociativeStore struct {
	lineArray
	lru *lruList
}

// NewAssociativeStore creates a store with numLines invalid lines.
func NewAssociativeStore(numLines int) *AssociativeStore {
	return &AssociativeStore{
		lineArray: newLineArray(numLines),
		lru:       newLRUList(numLines),
	}
}

// FindByTag returns the index of the valid line that holds the tag.
func (s *AssociativeStore) FindByTag(tag uint64) (int, bool) {
	for _, line := range s.lines {
		if line.Holds(tag) {
			return line.Index, true
		}
	}

	return 0, false
}

// FindEmpty returns the index of the first invalid line.
func (s *AssociativeStore) FindEmpty() (int, bool) {
	for _, line := range s.lines {
		if !line.IsValid {
			return line.Index, true
		}
	}

	return 0, false
}

// FindVictim returns the least recently used valid line.
func (s *AssociativeStore) FindVictim() (int, bool) {
	return s.lru.oldest()
}

// Touch marks the line as the most recently used one.
func (s *AssociativeStore) Touch(index int) {
	s.mustBeInRange(index)
	s.lru.moveToNewest(index)
}

// Update overwrites the line at line.Index. Invalidated lines leave the
// recency order.
func (s *AssociativeStore) Update(line Line) {
	s.update(line)

	if !line.IsValid {
		s.lru.remove(line.Index)
	}
}

// LRUQueue returns the indices of the valid lines, least recently used first.
func (s *AssociativeStore) LRUQueue() []int {
	return s.lru.order()
}
