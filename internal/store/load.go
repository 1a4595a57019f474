package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/roach88/drugsfda/internal/frame"
	"github.com/roach88/drugsfda/internal/pipeline"
)

// LoadAll writes every resource to its destination table and returns the
// total number of rows written. Each resource loads in its own transaction,
// so a failure leaves earlier tables intact and later tables untouched.
func (s *Store) LoadAll(ctx context.Context, resources []pipeline.Resource) (int, error) {
	total := 0
	for _, r := range resources {
		var err error
		switch r.Disposition {
		case pipeline.Merge:
			err = s.LoadMerge(ctx, r.Table, r.Frame, r.PrimaryKey)
		default:
			err = s.LoadReplace(ctx, r.Table, r.Frame)
		}
		if err != nil {
			return total, fmt.Errorf("load %s: %w", r.Name, err)
		}
		total += r.Frame.Height()
		slog.Info("resource loaded", "table", r.Table, "rows", r.Frame.Height())
	}
	return total, nil
}

// LoadReplace drops and rewrites a table from the frame's schema.
// A frame with no columns (an empty source file) is skipped entirely.
func (s *Store) LoadReplace(ctx context.Context, table string, f *frame.Frame) error {
	if f.Width() == 0 {
		slog.Info("skipping empty resource", "table", table)
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(table)); err != nil {
		return fmt.Errorf("drop table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, createTableSQL(table, f, "")); err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	if err := insertRows(ctx, tx, table, f, ""); err != nil {
		return err
	}

	return tx.Commit()
}

// LoadMerge upserts frame rows into a table keyed on primaryKey. The table
// is created on first load; columns appearing in later publications are
// added with ALTER TABLE so that historical rows survive schema drift.
func (s *Store) LoadMerge(ctx context.Context, table string, f *frame.Frame, primaryKey string) error {
	if f.Width() == 0 {
		slog.Info("skipping empty resource", "table", table)
		return nil
	}
	if !f.Has(primaryKey) {
		return fmt.Errorf("merge key %q not present in frame", primaryKey)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, createTableSQL(table, f, primaryKey)); err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	if err := evolveSchema(ctx, tx, table, f); err != nil {
		return err
	}
	if err := insertRows(ctx, tx, table, f, primaryKey); err != nil {
		return err
	}

	return tx.Commit()
}

// createTableSQL renders CREATE TABLE IF NOT EXISTS from the frame schema.
// primaryKey, when non-empty, becomes the table's PRIMARY KEY.
func createTableSQL(table string, f *frame.Frame, primaryKey string) string {
	var defs []string
	for _, name := range f.Columns() {
		def := quoteIdent(name) + " " + sqlType(f.Column(name).Type)
		if name == primaryKey {
			def += " PRIMARY KEY"
		}
		defs = append(defs, def)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quoteIdent(table), strings.Join(defs, ", "))
}

// evolveSchema adds frame columns missing from an existing table.
func evolveSchema(ctx context.Context, tx *sql.Tx, table string, f *frame.Frame) error {
	rows, err := tx.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(table)))
	if err != nil {
		return fmt.Errorf("table_info: %w", err)
	}
	defer rows.Close()

	existing := make(map[string]bool)
	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultVal, &pk); err != nil {
			return fmt.Errorf("table_info scan: %w", err)
		}
		existing[name] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("table_info: %w", err)
	}

	for _, name := range f.Columns() {
		if existing[name] {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s",
			quoteIdent(table), quoteIdent(name), sqlType(f.Column(name).Type))
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("add column %s: %w", name, err)
		}
		slog.Info("schema evolved", "table", table, "column", name)
	}
	return nil
}

// insertRows bulk-inserts every frame row. With a primaryKey the insert
// upserts via ON CONFLICT DO UPDATE; without one it is a plain insert.
func insertRows(ctx context.Context, tx *sql.Tx, table string, f *frame.Frame, primaryKey string) error {
	names := f.Columns()

	quoted := make([]string, len(names))
	params := make([]string, len(names))
	for i, name := range names {
		quoted[i] = quoteIdent(name)
		params[i] = "?"
	}

	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table), strings.Join(quoted, ", "), strings.Join(params, ", "))
	if primaryKey != "" {
		var sets []string
		for _, name := range names {
			if name == primaryKey {
				continue
			}
			sets = append(sets, fmt.Sprintf("%s = excluded.%s", quoteIdent(name), quoteIdent(name)))
		}
		if len(sets) == 0 {
			stmt += fmt.Sprintf(" ON CONFLICT(%s) DO NOTHING", quoteIdent(primaryKey))
		} else {
			stmt += fmt.Sprintf(" ON CONFLICT(%s) DO UPDATE SET %s",
				quoteIdent(primaryKey), strings.Join(sets, ", "))
		}
	}

	prepared, err := tx.PrepareContext(ctx, stmt)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer prepared.Close()

	args := make([]any, len(names))
	for row := 0; row < f.Height(); row++ {
		for i, name := range names {
			v, err := cellSQL(f.Value(name, row))
			if err != nil {
				return fmt.Errorf("row %d column %s: %w", row, name, err)
			}
			args[i] = v
		}
		if _, err := prepared.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert row %d: %w", row, err)
		}
	}
	return nil
}

// sqlType maps frame types to SQLite column types. Lists are stored as
// JSON text so downstream consumers can unmarshal them losslessly.
func sqlType(t frame.DType) string {
	switch t {
	case frame.Int:
		return "INTEGER"
	case frame.Bool:
		return "INTEGER"
	default:
		return "TEXT"
	}
}

// cellSQL converts a frame cell to a driver-friendly value.
func cellSQL(v any) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return x.Format("2006-01-02"), nil
	case []string:
		b, err := json.Marshal(x)
		if err != nil {
			return nil, fmt.Errorf("encode list: %w", err)
		}
		return string(b), nil
	default:
		return v, nil
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
