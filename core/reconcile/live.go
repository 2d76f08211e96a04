package reconcile

import (
	"errors"
	"fmt"

	"cloudsync/core/docstore"
	"cloudsync/core/schema"
	"cloudsync/core/utils"
)

// ErrDuplicateReferenceID is returned when one listing carries the same
// reference_id twice.
var ErrDuplicateReferenceID = errors.New("duplicate reference_id in live listing")

type liveEntry struct {
	ref    string
	record docstore.Document
}

// LiveSet is an insertion-ordered set of live records keyed by reference id.
// Records without a reference id are kept unkeyed and can never be matched.
type LiveSet struct {
	entries []liveEntry
	byRef   map[string]int
}

// NewLiveSet returns an empty set.
func NewLiveSet() *LiveSet {
	return &LiveSet{byRef: make(map[string]int)}
}

// KeyByReferenceID builds a set keyed by each record's reference_id field.
func KeyByReferenceID(records []docstore.Document) (*LiveSet, error) {
	set := NewLiveSet()
	for _, rec := range records {
		if err := set.Add(rec); err != nil {
			return nil, err
		}
	}
	return set, nil
}

// Add inserts record keyed by its reference_id field.
func (s *LiveSet) Add(record docstore.Document) error {
	return s.AddWithRef(referenceOf(record), record)
}

// AddWithRef inserts record under ref. An empty ref stores it unkeyed.
func (s *LiveSet) AddWithRef(ref string, record docstore.Document) error {
	if ref != "" {
		if _, dup := s.byRef[ref]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateReferenceID, ref)
		}
		s.byRef[ref] = len(s.entries)
	}
	s.entries = append(s.entries, liveEntry{ref: ref, record: record})
	return nil
}

// Get returns the record stored under ref.
func (s *LiveSet) Get(ref string) (docstore.Document, bool) {
	if ref == "" {
		return nil, false
	}
	i, ok := s.byRef[ref]
	if !ok {
		return nil, false
	}
	return s.entries[i].record, true
}

// Len returns the number of records, keyed or not.
func (s *LiveSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Refs returns the keyed reference ids in insertion order.
func (s *LiveSet) Refs() []string {
	refs := make([]string, 0, len(s.byRef))
	for _, e := range s.entries {
		if e.ref != "" {
			refs = append(refs, e.ref)
		}
	}
	return refs
}

// Records returns every record in insertion order.
func (s *LiveSet) Records() []docstore.Document {
	if s == nil {
		return nil
	}
	out := make([]docstore.Document, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.record
	}
	return out
}

// without returns a new set holding the entries whose ref is not consumed.
func (s *LiveSet) without(consumed map[string]struct{}) *LiveSet {
	out := NewLiveSet()
	for _, e := range s.entries {
		if _, ok := consumed[e.ref]; ok && e.ref != "" {
			continue
		}
		// refs are already unique
		_ = out.AddWithRef(e.ref, e.record)
	}
	return out
}

func referenceOf(record docstore.Document) string {
	v, ok := record[schema.FieldReferenceID]
	if !ok || v == nil {
		return ""
	}
	return utils.ToString(v)
}
