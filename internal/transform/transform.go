// Package transform holds the per-column cleaning steps shared by the
// silver and gold layers: business-key normalization, ingredient list
// splitting, legacy sentinel date reconciliation, and dosage-form casing.
//
// Every function is safe to call on frames lacking the columns it targets;
// absent columns are a no-op so callers never have to branch on file shape.
package transform

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/roach88/drugsfda/internal/frame"
)

// Fixed widths for the composite business key.
const (
	ApplNoWidth    = 6
	ProductNoWidth = 3
)

// LegacyApprovalSentinel is the exact string the archive embeds in date
// columns for pre-1982 approvals. Case-sensitive; no variants are accepted.
const LegacyApprovalSentinel = "Approved prior to Jan 1, 1982"

// HistoricFlagColumn marks rows whose date carried the legacy sentinel.
const HistoricFlagColumn = "is_historic_record"

// LegacyApprovalDate is the calendar date the sentinel maps to.
var LegacyApprovalDate = time.Date(1982, time.January, 1, 0, 0, 0, 0, time.UTC)

// NormalizeIDs canonicalizes appl_no to a 6-digit and product_no to a
// 3-digit zero-padded string. Integer cells are rendered in decimal first
// (4 becomes "4", never "4.0"). A cell that is blank after trimming becomes
// null - never a padded fake-zero key. Values at or beyond the target width
// pass through unchanged; validity is enforced later by schema validation,
// not here.
func NormalizeIDs(f *frame.Frame) {
	padColumn(f, "appl_no", ApplNoWidth)
	padColumn(f, "product_no", ProductNoWidth)
}

func padColumn(f *frame.Frame, name string, width int) {
	col := f.Column(name)
	if col == nil {
		return
	}
	vals := make([]any, len(col.Values))
	for i, v := range col.Values {
		if v == nil {
			continue
		}
		s := strings.TrimSpace(frame.CellString(v))
		if s == "" {
			continue
		}
		vals[i] = Pad(s, width)
	}
	f.MustSetColumn(name, frame.String, vals)
}

// Pad left-pads s with zeros to the target width. Values already at or
// beyond the width are returned unchanged.
func Pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

// CleanIngredients replaces the free-text active_ingredient column with an
// active_ingredients_list column: the source split on ";", each token
// trimmed and uppercased, empty tokens dropped. "A;;B;" becomes
// ["A","B"], never ["A","","B",""]. Null sources and all-delimiter sources
// become the empty list, never null. The list column is always present
// afterwards, even when the source column was absent from the file.
func CleanIngredients(f *frame.Frame) {
	col := f.Column("active_ingredient")
	if col == nil {
		f.MustSetColumn("active_ingredients_list", frame.StringList, frame.Repeat([]string{}, f.Height()))
		return
	}
	vals := make([]any, len(col.Values))
	for i, v := range col.Values {
		if v == nil {
			vals[i] = []string{}
			continue
		}
		vals[i] = SplitIngredients(frame.CellString(v))
	}
	f.Drop("active_ingredient")
	f.MustSetColumn("active_ingredients_list", frame.StringList, vals)
}

// SplitIngredients parses one semicolon-delimited ingredient string.
func SplitIngredients(s string) []string {
	out := []string{}
	for _, tok := range strings.Split(s, ";") {
		tok = strings.ToUpper(strings.TrimSpace(tok))
		if tok == "" {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// ReconcileDates converts each listed string column to a date column.
// The legacy sentinel maps to 1982-01-01 and flags the row in the shared
// is_historic_record column; everything else is parsed strictly as ISO
// YYYY-MM-DD and nulled on failure (wrong format, impossible dates).
// Columns that are absent or already non-string are skipped.
//
// The historic flag is a single shared column: each processed string column
// rewrites it, so the last column in cols wins. Call sites pass exactly one
// column.
func ReconcileDates(f *frame.Frame, cols []string) {
	for _, name := range cols {
		col := f.Column(name)
		if col == nil || col.Type != frame.String {
			continue
		}

		flags := make([]any, len(col.Values))
		dates := make([]any, len(col.Values))
		for i, v := range col.Values {
			flags[i] = false
			if v == nil {
				continue
			}
			d, historic, ok := ParseDateValue(v.(string))
			if !ok {
				continue
			}
			dates[i] = d
			flags[i] = historic
		}

		f.MustSetColumn(name, frame.Date, dates)
		f.MustSetColumn(HistoricFlagColumn, frame.Bool, flags)
	}
}

// ParseDateValue parses a single raw date string under the reconciliation
// rules. historic reports a sentinel match; ok is false when the value is
// neither the sentinel nor a valid ISO date.
func ParseDateValue(s string) (d time.Time, historic bool, ok bool) {
	if s == LegacyApprovalSentinel {
		return LegacyApprovalDate, true, true
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, false, false
	}
	return t.UTC(), false, true
}

// CleanForm title-cases the dosage form column: "TABLET; ORAL" becomes
// "Tablet; Oral". Absent column is a no-op.
func CleanForm(f *frame.Frame) {
	col := f.Column("form")
	if col == nil || col.Type != frame.String {
		return
	}
	caser := cases.Title(language.Und)
	vals := make([]any, len(col.Values))
	for i, v := range col.Values {
		if v == nil {
			continue
		}
		vals[i] = caser.String(v.(string))
	}
	f.MustSetColumn("form", frame.String, vals)
}
