// Package silver assembles the validated per-product layer from the raw
// Products and Submissions tables: approval-date resolution, identifier
// normalization, ingredient splitting, sentinel date reconciliation,
// deterministic identity, and schema validation.
package silver

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/roach88/drugsfda/internal/frame"
	"github.com/roach88/drugsfda/internal/identity"
	"github.com/roach88/drugsfda/internal/transform"
)

// schemaColumns is the silver layer's stable column set. An empty Products
// file still yields a frame with these columns so downstream consumers see
// a fixed shape.
var schemaColumns = []struct {
	name string
	typ  frame.DType
}{
	{"appl_no", frame.String},
	{"product_no", frame.String},
	{"form", frame.String},
	{"strength", frame.String},
	{"active_ingredients_list", frame.StringList},
	{"original_approval_date", frame.Date},
	{"is_historic_record", frame.Bool},
	{"coreason_id", frame.String},
	{"source_id", frame.String},
	{"hash_md5", frame.String},
	{"drug_name", frame.String},
}

// EmptySchema returns a zero-row frame carrying the full silver schema.
func EmptySchema() *frame.Frame {
	f := frame.New()
	for _, c := range schemaColumns {
		f.MustSetColumn(c.name, c.typ, nil)
	}
	return f
}

// Assemble runs the full transformation chain over the raw Products table,
// joining resolved approval dates from Submissions. The input frames are
// not mutated. Submissions may be nil (the gold layer is built even when
// Submissions is absent); products must not be.
//
// The result is unfiltered and unvalidated: it still contains rows with
// missing key components. Finalize applies the silver layer's filter and
// hard validation; the gold layer enriches the assembled frame directly.
func Assemble(products, submissions *frame.Frame) (*frame.Frame, error) {
	if products.Empty() || products.Width() == 0 {
		return EmptySchema(), nil
	}

	f := products.Clone()
	transform.NormalizeIDs(f)

	dates := approvalFrame(ResolveApprovalDates(submissions))
	if f.Has("appl_no") {
		joined, err := frame.LeftJoin(f, dates, []string{"appl_no"})
		if err != nil {
			return nil, fmt.Errorf("silver: join approval dates: %w", err)
		}
		f = joined
		f.Rename("submission_status_date", "original_approval_date")
	} else {
		f.MustSetColumn("original_approval_date", frame.String, frame.Nulls(f.Height()))
	}

	transform.CleanIngredients(f)
	transform.CleanForm(f)
	transform.ReconcileDates(f, []string{"original_approval_date"})

	fillNullStrings(f, "form")
	fillNullStrings(f, "strength")

	identity.GenerateCoreasonID(f)
	identity.GenerateSourceID(f)
	identity.GenerateRowHash(f)

	return f, nil
}

// Finalize filters half-identified rows and validates every survivor.
//
// Rows missing either key component cannot participate in record linkage;
// they are dropped with a warning, which is data loss, not a schema
// violation. Any surviving row that fails validation fails the whole
// batch: past this point the contract is valid-or-fail-loudly.
func Finalize(assembled *frame.Frame) (*frame.Frame, error) {
	f := assembled.FilterRows(func(row int) bool {
		_, applOK := assembled.StringValue("appl_no", row)
		_, prodOK := assembled.StringValue("product_no", row)
		if !applOK || !prodOK {
			slog.Warn("skipping silver row with missing keys",
				"appl_no", assembled.Value("appl_no", row),
				"product_no", assembled.Value("product_no", row))
			return false
		}
		return true
	})

	if _, err := Records(f); err != nil {
		return nil, err
	}
	return f, nil
}

// Build assembles, filters, and validates the silver layer in one step.
func Build(products, submissions *frame.Frame) (*frame.Frame, error) {
	assembled, err := Assemble(products, submissions)
	if err != nil {
		return nil, err
	}
	return Finalize(assembled)
}

// Records converts a finalized silver frame to validated Product records.
func Records(f *frame.Frame) ([]Product, error) {
	out := make([]Product, 0, f.Height())
	for i := 0; i < f.Height(); i++ {
		p := rowProduct(f, i)
		if err := p.Validate(); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// approvalFrame materializes the resolved date map as a two-column join
// surface, sorted by application number for deterministic row order. The
// date column keeps its source name; Assemble renames it to
// original_approval_date after the join.
func approvalFrame(dates map[string]string) *frame.Frame {
	keys := make([]string, 0, len(dates))
	for k := range dates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	appl := make([]any, len(keys))
	date := make([]any, len(keys))
	for i, k := range keys {
		appl[i] = k
		date[i] = dates[k]
	}

	f := frame.New()
	f.MustSetColumn("appl_no", frame.String, appl)
	f.MustSetColumn("submission_status_date", frame.String, date)
	return f
}

func fillNullStrings(f *frame.Frame, name string) {
	col := f.Column(name)
	if col == nil || col.Type != frame.String {
		return
	}
	vals := make([]any, len(col.Values))
	for i, v := range col.Values {
		if v == nil {
			vals[i] = ""
		} else {
			vals[i] = v
		}
	}
	f.MustSetColumn(name, frame.String, vals)
}
