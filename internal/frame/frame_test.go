package frame

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetColumn_FirstColumnEstablishesHeight(t *testing.T) {
	f := New()
	require.NoError(t, f.SetColumn("a", String, []any{"x", "y"}))

	assert.Equal(t, 2, f.Height())
	assert.Equal(t, 1, f.Width())
}

func TestSetColumn_LengthMismatchFails(t *testing.T) {
	f := New()
	require.NoError(t, f.SetColumn("a", String, []any{"x", "y"}))

	err := f.SetColumn("b", String, []any{"only-one"})
	require.Error(t, err)
}

func TestSetColumn_ReplacePreservesPosition(t *testing.T) {
	f := New()
	f.MustSetColumn("a", String, []any{"1"})
	f.MustSetColumn("b", String, []any{"2"})
	f.MustSetColumn("a", Int, []any{int64(9)})

	assert.Equal(t, []string{"a", "b"}, f.Columns())
	assert.Equal(t, Int, f.Column("a").Type)
	assert.Equal(t, int64(9), f.Value("a", 0))
}

func TestSelect_ResultIsIndependentOfSource(t *testing.T) {
	f := New()
	f.MustSetColumn("a", String, []any{"x"})
	f.MustSetColumn("b", String, []any{"y"})

	sub, err := f.Select("a")
	require.NoError(t, err)

	// Replacing a column in the selection must not touch the source.
	sub.MustSetColumn("a", String, []any{"changed"})
	assert.Equal(t, "x", f.Value("a", 0))
	assert.Equal(t, "changed", sub.Value("a", 0))
}

func TestSelect_AbsentColumnFails(t *testing.T) {
	f := New()
	f.MustSetColumn("a", String, []any{"x"})

	_, err := f.Select("missing")
	require.Error(t, err)
}

func TestDrop_RemovesColumn(t *testing.T) {
	f := New()
	f.MustSetColumn("a", String, []any{"x"})
	f.MustSetColumn("b", String, []any{"y"})

	f.Drop("a")
	assert.Equal(t, []string{"b"}, f.Columns())
	assert.False(t, f.Has("a"))

	// Dropping an absent column is a no-op.
	f.Drop("ghost")
	assert.Equal(t, 1, f.Width())
}

func TestRename(t *testing.T) {
	f := New()
	f.MustSetColumn("old", String, []any{"x"})

	f.Rename("old", "new")
	assert.False(t, f.Has("old"))
	assert.Equal(t, "x", f.Value("new", 0))
}

func TestClone_DeepCopiesCells(t *testing.T) {
	f := New()
	f.MustSetColumn("a", String, []any{"x", "y"})

	c := f.Clone()
	c.Column("a").Values[0] = "mutated"

	assert.Equal(t, "x", f.Value("a", 0))
}

func TestFilterRows(t *testing.T) {
	f := New()
	f.MustSetColumn("n", Int, []any{int64(1), int64(2), int64(3)})

	odd := f.FilterRows(func(row int) bool {
		return f.Value("n", row).(int64)%2 == 1
	})
	assert.Equal(t, 2, odd.Height())
	assert.Equal(t, int64(1), odd.Value("n", 0))
	assert.Equal(t, int64(3), odd.Value("n", 1))
}

func TestTake_ReordersRows(t *testing.T) {
	f := New()
	f.MustSetColumn("n", Int, []any{int64(1), int64(2), int64(3)})

	out := f.Take([]int{2, 0})
	assert.Equal(t, 2, out.Height())
	assert.Equal(t, int64(3), out.Value("n", 0))
	assert.Equal(t, int64(1), out.Value("n", 1))
}

func TestStringValue_NullAndAbsent(t *testing.T) {
	f := New()
	f.MustSetColumn("a", String, []any{nil})

	_, ok := f.StringValue("a", 0)
	assert.False(t, ok)
	_, ok = f.StringValue("missing", 0)
	assert.False(t, ok)
}

func TestCellString_CanonicalForms(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"string", "abc", "abc"},
		{"int", int64(42), "42"},
		{"bool_true", true, "true"},
		{"bool_false", false, "false"},
		{"date", time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC), "2010-01-01"},
		{"list", []string{"A", "B"}, "A;B"},
		{"empty_list", []string{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CellString(tt.in))
		})
	}
}
