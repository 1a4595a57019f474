package frame

import (
	"fmt"
	"sort"
	"strings"
)

// keySeparator joins key parts into a composite group key. Unit separator
// cannot occur in the data (it is not printable in the source files), so
// composite keys cannot collide across part boundaries.
const keySeparator = "\x1f"

// RowKey builds the composite key for a row from the given key columns.
// ok is false when any key component is null: null keys never participate
// in joins or grouping, they are simply unmatched.
func RowKey(f *Frame, row int, keys []string) (string, bool) {
	parts := make([]string, len(keys))
	for i, k := range keys {
		v := f.Value(k, row)
		if v == nil {
			return "", false
		}
		parts[i] = CellString(v)
	}
	return strings.Join(parts, keySeparator), true
}

// LeftJoin joins right onto left by the given key columns. Every left row
// appears exactly once in the result; right rows that match no left key
// (ghost records) are discarded. If right contains duplicate keys the first
// occurrence wins, so callers that need a specific survivor must
// pre-deduplicate with DedupBy.
//
// Right's non-key columns are appended to the result; a name collision with
// a left column is an error. Left rows with a null key component get nulls
// for all joined columns.
func LeftJoin(left, right *Frame, keys []string) (*Frame, error) {
	for _, k := range keys {
		if !left.Has(k) {
			return nil, fmt.Errorf("left join: left frame missing key column %q", k)
		}
		if !right.Has(k) {
			return nil, fmt.Errorf("left join: right frame missing key column %q", k)
		}
	}

	index := make(map[string]int, right.Height())
	for i := 0; i < right.Height(); i++ {
		k, ok := RowKey(right, i, keys)
		if !ok {
			continue
		}
		if _, dup := index[k]; !dup {
			index[k] = i
		}
	}

	out := New()
	out.height = left.height
	for _, c := range left.cols {
		copied := &Column{Name: c.Name, Type: c.Type, Values: c.Values}
		out.cols = append(out.cols, copied)
		out.byName[c.Name] = copied
	}

	keySet := make(map[string]bool, len(keys))
	for _, k := range keys {
		keySet[k] = true
	}

	for _, c := range right.cols {
		if keySet[c.Name] {
			continue
		}
		if out.Has(c.Name) {
			return nil, fmt.Errorf("left join: column %q exists on both sides", c.Name)
		}
		vals := make([]any, left.height)
		for i := 0; i < left.height; i++ {
			k, ok := RowKey(left, i, keys)
			if !ok {
				continue
			}
			if j, hit := index[k]; hit {
				vals[i] = c.Values[j]
			}
		}
		out.MustSetColumn(c.Name, c.Type, vals)
	}

	return out, nil
}

// GroupRows groups row indices by composite key. Rows with a null key
// component are excluded. Keys are returned sorted so iteration order is
// independent of input row order.
func GroupRows(f *Frame, keys []string) (map[string][]int, []string) {
	groups := make(map[string][]int)
	for i := 0; i < f.Height(); i++ {
		k, ok := RowKey(f, i, keys)
		if !ok {
			continue
		}
		groups[k] = append(groups[k], i)
	}
	order := make([]string, 0, len(groups))
	for k := range groups {
		order = append(order, k)
	}
	sort.Strings(order)
	return groups, order
}

// DedupBy returns a frame with exactly one row per distinct composite key.
// choose picks the surviving row index from the group's candidates (given in
// input order); it must be deterministic and must not depend on candidate
// order if identical inputs can arrive in different physical row order.
// Rows with a null key component are dropped. Output rows are ordered by
// sorted key, so the result is itself order-independent.
func DedupBy(f *Frame, keys []string, choose func(rows []int) int) *Frame {
	groups, order := GroupRows(f, keys)
	rows := make([]int, 0, len(order))
	for _, k := range order {
		rows = append(rows, choose(groups[k]))
	}
	return f.Take(rows)
}

// First is a choose function for DedupBy that keeps the first occurrence.
func First(rows []int) int { return rows[0] }
