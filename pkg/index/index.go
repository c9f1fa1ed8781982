// Package index builds the domain of valid spectrum identifiers of a run.
package index

import (
	"strconv"
	"strings"

	"github.com/ChrisMcGann/mzview/pkg/core"
)

// Index is the immutable, ordered set of numeric spectrum identifiers of a run.
type Index struct {
	ids     []int // offset table order
	present map[int]struct{}
	min     int
	max     int
}

// Build filters an offset table down to its integer keys. Non-numeric keys such as the
// TIC pseudo-entry are skipped silently.
func Build(offsets core.OffsetTable) (*Index, error) {
	idx := &Index{
		present: make(map[int]struct{}),
	}

	for _, entry := range offsets {
		id, err := strconv.Atoi(strings.TrimSpace(entry.Key))
		if err != nil {
			continue
		}
		if _, dup := idx.present[id]; dup {
			continue
		}
		if len(idx.ids) == 0 || id < idx.min {
			idx.min = id
		}
		if len(idx.ids) == 0 || id > idx.max {
			idx.max = id
		}
		idx.present[id] = struct{}{}
		idx.ids = append(idx.ids, id)
	}

	if len(idx.ids) == 0 {
		return nil, &core.EmptyIndexError{Keys: len(offsets)}
	}

	return idx, nil
}

// Min returns the smallest identifier.
func (x *Index) Min() int { return x.min }

// Max returns the largest identifier.
func (x *Index) Max() int { return x.max }

// Len returns the number of identifiers.
func (x *Index) Len() int { return len(x.ids) }

// IDs returns a copy of the identifiers in offset table order.
func (x *Index) IDs() []int {
	out := make([]int, len(x.ids))
	copy(out, x.ids)
	return out
}

// Contains reports whether the run holds a spectrum with this identifier.
func (x *Index) Contains(id int) bool {
	_, ok := x.present[id]
	return ok
}

// Clamp limits id to [Min, Max].
func (x *Index) Clamp(id int) int {
	if id < x.min {
		return x.min
	}
	if id > x.max {
		return x.max
	}
	return id
}
