package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/drugsfda/internal/frame"
	"github.com/roach88/drugsfda/internal/pipeline"
)

func sampleFrame() *frame.Frame {
	f := frame.New()
	f.MustSetColumn("coreason_id", frame.String, []any{"id-1", "id-2"})
	f.MustSetColumn("appl_no", frame.String, []any{"070001", "070002"})
	f.MustSetColumn("count", frame.Int, []any{int64(5), nil})
	f.MustSetColumn("flag", frame.Bool, []any{true, false})
	f.MustSetColumn("when", frame.Date, []any{time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC), nil})
	f.MustSetColumn("list", frame.StringList, []any{[]string{"A", "B"}, []string{}})
	return f
}

func TestLoadReplace_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.LoadReplace(ctx, "bronze_sample", sampleFrame()))

	var count int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM bronze_sample").Scan(&count))
	assert.Equal(t, 2, count)

	var appl, when, list string
	var n sql.NullInt64
	var flag bool
	require.NoError(t, s.db.QueryRow(
		`SELECT appl_no, "count", flag, "when", list FROM bronze_sample WHERE coreason_id = 'id-1'`,
	).Scan(&appl, &n, &flag, &when, &list))
	assert.Equal(t, "070001", appl)
	assert.Equal(t, int64(5), n.Int64)
	assert.True(t, flag)
	assert.Equal(t, "2010-01-01", when)
	assert.JSONEq(t, `["A","B"]`, list)

	// Nulls survive as SQL NULL.
	require.NoError(t, s.db.QueryRow(
		`SELECT "count" FROM bronze_sample WHERE coreason_id = 'id-2'`,
	).Scan(&n))
	assert.False(t, n.Valid)
}

func TestLoadReplace_DropsPreviousContents(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.LoadReplace(ctx, "bronze_sample", sampleFrame()))

	smaller := frame.New()
	smaller.MustSetColumn("coreason_id", frame.String, []any{"id-9"})
	require.NoError(t, s.LoadReplace(ctx, "bronze_sample", smaller))

	var count int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM bronze_sample").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestLoadReplace_SkipsEmptyFrame(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.LoadReplace(context.Background(), "bronze_empty", frame.New()))

	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM bronze_empty").Scan(&count)
	require.Error(t, err, "table should not exist")
}

func TestLoadMerge_UpsertsOnKey(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.LoadMerge(ctx, "silver_products", sampleFrame(), "coreason_id"))

	updated := sampleFrame()
	updated.MustSetColumn("appl_no", frame.String, []any{"099999", "070002"})
	require.NoError(t, s.LoadMerge(ctx, "silver_products", updated, "coreason_id"))

	var count int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM silver_products").Scan(&count))
	assert.Equal(t, 2, count)

	var appl string
	require.NoError(t, s.db.QueryRow(
		"SELECT appl_no FROM silver_products WHERE coreason_id = 'id-1'",
	).Scan(&appl))
	assert.Equal(t, "099999", appl)
}

func TestLoadMerge_EvolvesSchema(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := frame.New()
	first.MustSetColumn("coreason_id", frame.String, []any{"id-1"})
	first.MustSetColumn("appl_no", frame.String, []any{"070001"})
	require.NoError(t, s.LoadMerge(ctx, "silver_products", first, "coreason_id"))

	second := frame.New()
	second.MustSetColumn("coreason_id", frame.String, []any{"id-2"})
	second.MustSetColumn("appl_no", frame.String, []any{"070002"})
	second.MustSetColumn("strength", frame.String, []any{"25MG"})
	require.NoError(t, s.LoadMerge(ctx, "silver_products", second, "coreason_id"))

	// Old row survives with NULL in the new column.
	var strength sql.NullString
	require.NoError(t, s.db.QueryRow(
		"SELECT strength FROM silver_products WHERE coreason_id = 'id-1'",
	).Scan(&strength))
	assert.False(t, strength.Valid)

	require.NoError(t, s.db.QueryRow(
		"SELECT strength FROM silver_products WHERE coreason_id = 'id-2'",
	).Scan(&strength))
	assert.Equal(t, "25MG", strength.String)
}

func TestLoadMerge_MissingKeyColumnFails(t *testing.T) {
	s := openTestStore(t)

	f := frame.New()
	f.MustSetColumn("appl_no", frame.String, []any{"070001"})
	err := s.LoadMerge(context.Background(), "silver_products", f, "coreason_id")
	require.Error(t, err)
}

func TestLoadAll_MixedDispositions(t *testing.T) {
	s := openTestStore(t)

	resources := []pipeline.Resource{
		{Name: "raw_fda__products", Table: "bronze_raw_fda__products", Frame: sampleFrame(), Disposition: pipeline.Replace},
		{Name: "silver_products", Table: "silver_products", Frame: sampleFrame(), Disposition: pipeline.Merge, PrimaryKey: "coreason_id"},
	}

	rows, err := s.LoadAll(context.Background(), resources)
	require.NoError(t, err)
	assert.Equal(t, 4, rows)

	var count int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM bronze_raw_fda__products").Scan(&count))
	assert.Equal(t, 2, count)
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM silver_products").Scan(&count))
	assert.Equal(t, 2, count)
}
