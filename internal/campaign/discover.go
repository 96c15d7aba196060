package campaign

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
)

// ErrNoWorkFound indicates that the root directory holds no calculation
// directories in the requested index range. This aborts the whole run.
var ErrNoWorkFound = errors.New("no calculation directories found")

// calcDirRe matches calculation directory names. The digit group is parsed
// as decimal regardless of leading zeros.
var calcDirRe = regexp.MustCompile(`^calc_(\d+)$`)

// IndexRange is an optional inclusive [Start, End] filter on unit indices.
// Either bound may be open.
type IndexRange struct {
	Start    int
	End      int
	HasStart bool
	HasEnd   bool
}

// Contains reports whether index i falls inside the range.
func (r IndexRange) Contains(i int) bool {
	if r.HasStart && i < r.Start {
		return false
	}
	if r.HasEnd && i > r.End {
		return false
	}
	return true
}

// Discover scans root for calc_<digits> subdirectories, filters them by the
// index range, and returns them sorted ascending by index (ties broken by
// path so the order is total and stable). Entries that do not match the
// naming convention are silently ignored.
func Discover(root string, rng IndexRange) ([]*Unit, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(absRoot)
	if err != nil {
		return nil, fmt.Errorf("reading calculations directory: %w", err)
	}

	var units []*Unit
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		m := calcDirRe.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		// strconv.Atoi is always base 10, so "0008" parses as 8
		index, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if !rng.Contains(index) {
			continue
		}
		units = append(units, &Unit{
			Index: index,
			Name:  entry.Name(),
			Path:  filepath.Join(absRoot, entry.Name()),
			State: StateUnclassified,
		})
	}

	if len(units) == 0 {
		return nil, ErrNoWorkFound
	}

	sort.SliceStable(units, func(i, j int) bool {
		if units[i].Index != units[j].Index {
			return units[i].Index < units[j].Index
		}
		return units[i].Path < units[j].Path
	})

	return units, nil
}
