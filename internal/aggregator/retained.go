package aggregator

import (
	"trxr/internal/domain"
)

// RetainedSet holds the records that will be reported, deduplicated by
// identity and kept in first-insertion order.
type RetainedSet struct {
	index   map[string]int
	records []*domain.TestRecord
}

// NewRetainedSet creates an empty RetainedSet
func NewRetainedSet() *RetainedSet {
	return &RetainedSet{index: make(map[string]int)}
}

// Add inserts r unless a record with the same identity is already present.
// It reports whether r was inserted.
func (s *RetainedSet) Add(r *domain.TestRecord) bool {
	if _, ok := s.index[r.ID]; ok {
		return false
	}
	s.index[r.ID] = len(s.records)
	s.records = append(s.records, r)
	return true
}

// Contains reports whether a record with the given identity was added
func (s *RetainedSet) Contains(id string) bool {
	_, ok := s.index[id]
	return ok
}

// Len returns the number of retained records
func (s *RetainedSet) Len() int {
	return len(s.records)
}

// Records returns the retained records in insertion order
func (s *RetainedSet) Records() []*domain.TestRecord {
	out := make([]*domain.TestRecord, len(s.records))
	copy(out, s.records)
	return out
}
