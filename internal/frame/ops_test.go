package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowKey_NullComponentMeansNoKey(t *testing.T) {
	f := New()
	f.MustSetColumn("a", String, []any{"x", nil})
	f.MustSetColumn("b", String, []any{"y", "z"})

	key, ok := RowKey(f, 0, []string{"a", "b"})
	require.True(t, ok)
	assert.Equal(t, "x\x1fy", key)

	_, ok = RowKey(f, 1, []string{"a", "b"})
	assert.False(t, ok)
}

func TestLeftJoin_EveryLeftRowOnce(t *testing.T) {
	left := New()
	left.MustSetColumn("k", String, []any{"a", "b", "c"})

	right := New()
	right.MustSetColumn("k", String, []any{"b", "ghost"})
	right.MustSetColumn("v", String, []any{"matched", "never"})

	out, err := LeftJoin(left, right, []string{"k"})
	require.NoError(t, err)

	// One output row per left row; ghost right rows never surface.
	assert.Equal(t, 3, out.Height())
	assert.Nil(t, out.Value("v", 0))
	assert.Equal(t, "matched", out.Value("v", 1))
	assert.Nil(t, out.Value("v", 2))
}

func TestLeftJoin_NullKeyGetsNulls(t *testing.T) {
	left := New()
	left.MustSetColumn("k", String, []any{nil})

	right := New()
	right.MustSetColumn("k", String, []any{"a"})
	right.MustSetColumn("v", String, []any{"x"})

	out, err := LeftJoin(left, right, []string{"k"})
	require.NoError(t, err)
	assert.Nil(t, out.Value("v", 0))
}

func TestLeftJoin_DuplicateRightKeysFirstWins(t *testing.T) {
	left := New()
	left.MustSetColumn("k", String, []any{"a"})

	right := New()
	right.MustSetColumn("k", String, []any{"a", "a"})
	right.MustSetColumn("v", String, []any{"first", "second"})

	out, err := LeftJoin(left, right, []string{"k"})
	require.NoError(t, err)
	assert.Equal(t, "first", out.Value("v", 0))
}

func TestLeftJoin_ColumnCollisionFails(t *testing.T) {
	left := New()
	left.MustSetColumn("k", String, []any{"a"})
	left.MustSetColumn("v", String, []any{"left"})

	right := New()
	right.MustSetColumn("k", String, []any{"a"})
	right.MustSetColumn("v", String, []any{"right"})

	_, err := LeftJoin(left, right, []string{"k"})
	require.Error(t, err)
}

func TestLeftJoin_MissingKeyColumnFails(t *testing.T) {
	left := New()
	left.MustSetColumn("k", String, []any{"a"})

	right := New()
	right.MustSetColumn("other", String, []any{"a"})

	_, err := LeftJoin(left, right, []string{"k"})
	require.Error(t, err)
}

func TestLeftJoin_DoesNotMutateLeft(t *testing.T) {
	left := New()
	left.MustSetColumn("k", String, []any{"a"})

	right := New()
	right.MustSetColumn("k", String, []any{"a"})
	right.MustSetColumn("v", String, []any{"x"})

	out, err := LeftJoin(left, right, []string{"k"})
	require.NoError(t, err)
	assert.Equal(t, 1, left.Width())
	assert.Equal(t, 2, out.Width())
}

func TestGroupRows_SortedKeysAndNullExclusion(t *testing.T) {
	f := New()
	f.MustSetColumn("k", String, []any{"b", "a", nil, "a"})

	groups, order := GroupRows(f, []string{"k"})
	assert.Equal(t, []string{"a", "b"}, order)
	assert.Equal(t, []int{1, 3}, groups["a"])
	assert.Equal(t, []int{0}, groups["b"])
}

func TestDedupBy_OrderIndependentOutput(t *testing.T) {
	build := func(keys []string, vals []string) *Frame {
		f := New()
		cells := make([]any, len(keys))
		vcells := make([]any, len(vals))
		for i := range keys {
			cells[i] = keys[i]
			vcells[i] = vals[i]
		}
		f.MustSetColumn("k", String, cells)
		f.MustSetColumn("v", String, vcells)
		return f
	}

	choose := func(f *Frame) func(rows []int) int {
		col := f.Column("v")
		return func(rows []int) int {
			best := rows[0]
			for _, r := range rows[1:] {
				if col.Values[r].(string) < col.Values[best].(string) {
					best = r
				}
			}
			return best
		}
	}

	f1 := build([]string{"b", "a", "a"}, []string{"z", "beta", "alpha"})
	f2 := build([]string{"a", "b", "a"}, []string{"alpha", "z", "beta"})

	d1 := DedupBy(f1, []string{"k"}, choose(f1))
	d2 := DedupBy(f2, []string{"k"}, choose(f2))

	require.Equal(t, d1.Height(), d2.Height())
	for i := 0; i < d1.Height(); i++ {
		assert.Equal(t, d1.RowMap(i), d2.RowMap(i))
	}
	assert.Equal(t, "alpha", d1.Value("v", 0))
	assert.Equal(t, "z", d1.Value("v", 1))
}
