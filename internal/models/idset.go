package models

import (
	"bytes"
	"encoding/json"
	"sort"
)

// IDSet is an unordered set of entity identifiers. It encodes to JSON as an
// array sorted ascending.
type IDSet map[int64]struct{}

// NewIDSet returns a set holding the provided ids.
func NewIDSet(ids ...int64) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts id. It returns a non-nil set so callers can add to a nil set
// with s = s.Add(id).
func (s IDSet) Add(id int64) IDSet {
	if s == nil {
		s = make(IDSet)
	}
	s[id] = struct{}{}
	return s
}

// Remove deletes id if present.
func (s IDSet) Remove(id int64) {
	delete(s, id)
}

// Has reports whether id is in the set.
func (s IDSet) Has(id int64) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of ids in the set.
func (s IDSet) Len() int { return len(s) }

// Slice returns the ids sorted ascending.
func (s IDSet) Slice() []int64 {
	out := make([]int64, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Intersect returns the ids present in both sets.
func (s IDSet) Intersect(other IDSet) IDSet {
	out := make(IDSet)
	for id := range s {
		if other.Has(id) {
			out[id] = struct{}{}
		}
	}
	return out
}

// Clone returns an independent copy of the set. A nil set clones to an empty set.
func (s IDSet) Clone() IDSet {
	out := make(IDSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// MarshalJSON encodes the set as a sorted array.
func (s IDSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Slice())
}

// UnmarshalJSON decodes an array of ids; duplicates collapse and null yields an empty set.
func (s *IDSet) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*s = make(IDSet)
		return nil
	}

	var ids []int64
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewIDSet(ids...)
	return nil
}
