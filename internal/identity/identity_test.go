package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/drugsfda/internal/frame"
)

func TestGenerateCoreasonID_KnownValue(t *testing.T) {
	f := frame.New()
	f.MustSetColumn("appl_no", frame.String, []any{"070001", "070001"})
	f.MustSetColumn("product_no", frame.String, []any{"001", "002"})

	GenerateCoreasonID(f)

	assert.Equal(t, "a548d445-adb1-5fb8-8571-b5e573bd0118", f.Value("coreason_id", 0))
	assert.Equal(t, "11fea0be-ba43-5934-ab98-d908c43c59fe", f.Value("coreason_id", 1))
}

func TestGenerateCoreasonID_NullKeysRenderEmpty(t *testing.T) {
	f := frame.New()
	f.MustSetColumn("appl_no", frame.String, []any{nil})
	f.MustSetColumn("product_no", frame.String, []any{nil})

	GenerateCoreasonID(f)

	// UUIDv5(NamespaceFDA, "|"): even half-keyed rows get a stable id.
	assert.Equal(t, "76a28415-341f-56eb-90c8-9f470e3f61b4", f.Value("coreason_id", 0))
}

func TestGenerateCoreasonID_Deterministic(t *testing.T) {
	build := func() *frame.Frame {
		f := frame.New()
		f.MustSetColumn("appl_no", frame.String, []any{"012345"})
		f.MustSetColumn("product_no", frame.String, []any{"004"})
		GenerateCoreasonID(f)
		return f
	}
	assert.Equal(t, build().Value("coreason_id", 0), build().Value("coreason_id", 0))
}

func TestGenerateSourceID(t *testing.T) {
	f := frame.New()
	f.MustSetColumn("appl_no", frame.String, []any{"070001", nil})
	f.MustSetColumn("product_no", frame.String, []any{"001", "002"})

	GenerateSourceID(f)

	assert.Equal(t, "070001001", f.Value("source_id", 0))
	assert.Equal(t, "002", f.Value("source_id", 1))
}

func TestGenerateRowHash_KnownValue(t *testing.T) {
	f := frame.New()
	f.MustSetColumn("b", frame.String, []any{"2"})
	f.MustSetColumn("a", frame.String, []any{"1"})

	GenerateRowHash(f)

	// md5("1|2"): sorted column-name order, not frame order.
	assert.Equal(t, "b2595e9d5aa0b6f0be8f792ac7b8547a", f.Value("hash_md5", 0))
}

func TestGenerateRowHash_ColumnOrderInvariant(t *testing.T) {
	f1 := frame.New()
	f1.MustSetColumn("a", frame.String, []any{"1"})
	f1.MustSetColumn("b", frame.String, []any{"2"})
	GenerateRowHash(f1)

	f2 := frame.New()
	f2.MustSetColumn("b", frame.String, []any{"2"})
	f2.MustSetColumn("a", frame.String, []any{"1"})
	GenerateRowHash(f2)

	assert.Equal(t, f1.Value("hash_md5", 0), f2.Value("hash_md5", 0))
}

func TestGenerateRowHash_NullsRenderEmpty(t *testing.T) {
	f := frame.New()
	f.MustSetColumn("a", frame.String, []any{nil})
	f.MustSetColumn("b", frame.String, []any{"x"})

	GenerateRowHash(f)

	// md5("|x")
	assert.Equal(t, "a072b4e3a1bb604bf6480276b047204d", f.Value("hash_md5", 0))
}

func TestGenerateRowHash_CanonicalCellForms(t *testing.T) {
	f := frame.New()
	f.MustSetColumn("list", frame.StringList, []any{[]string{"A", "B"}})
	f.MustSetColumn("flag", frame.Bool, []any{true})
	f.MustSetColumn("when", frame.Date, []any{time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)})

	GenerateRowHash(f)

	v, ok := f.StringValue("hash_md5", 0)
	require.True(t, ok)
	assert.Len(t, v, 32)

	// Same logical content in pre-rendered string form hashes identically.
	g := frame.New()
	g.MustSetColumn("list", frame.String, []any{"A;B"})
	g.MustSetColumn("flag", frame.String, []any{"true"})
	g.MustSetColumn("when", frame.String, []any{"2010-01-01"})
	GenerateRowHash(g)

	assert.Equal(t, g.Value("hash_md5", 0), f.Value("hash_md5", 0))
}
