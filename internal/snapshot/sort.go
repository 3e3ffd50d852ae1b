package snapshot

import (
	"fmt"
	"sort"
	"strings"
)

// SortKey selects the ordering applied within the directory and file groups.
type SortKey int

// Sort keys.
const (
	SortByName SortKey = iota
	SortBySize
	SortByDate
	SortByType
)

var sortKeyNames = []string{"name", "size", "date", "type"}

func (k SortKey) String() string {
	if k < 0 || int(k) >= len(sortKeyNames) {
		return fmt.Sprintf("SortKey(%d)", int(k))
	}
	return sortKeyNames[k]
}

// ParseSortKey parses a sort key name. The empty string means name order.
func ParseSortKey(s string) (SortKey, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return SortByName, nil
	}
	for i, name := range sortKeyNames {
		if s == name {
			return SortKey(i), nil
		}
	}
	return SortByName, fmt.Errorf("unknown sort key %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k SortKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *SortKey) UnmarshalText(text []byte) error {
	parsed, err := ParseSortKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Sort returns a new slice with directories before files and each group
// ordered by key. The sort is stable: equal entries keep their input order.
func Sort(entries []Entry, key SortKey) []Entry {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)

	less := lessFunc(key)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.IsDir != b.IsDir {
			return a.IsDir
		}
		return less(a, b)
	})
	return sorted
}

func lessFunc(key SortKey) func(a, b Entry) bool {
	switch key {
	case SortBySize:
		return func(a, b Entry) bool { return a.Size > b.Size }
	case SortByDate:
		return func(a, b Entry) bool { return a.ModifiedMillis() > b.ModifiedMillis() }
	case SortByType:
		return func(a, b Entry) bool { return compareFold(a.Extension, b.Extension) < 0 }
	default:
		return func(a, b Entry) bool { return compareFold(a.Name, b.Name) < 0 }
	}
}

func compareFold(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}
