// Package gold denormalizes the silver product table against the auxiliary
// reference tables (Applications, MarketingStatus and its lookup, TE,
// Exclusivity) and derives the business flags and search field.
//
// The layer's single hardest invariant is no fan-out: exactly one gold row
// per silver product key, no matter how many duplicate rows an auxiliary
// table carries for that key. Every join here is therefore preceded by a
// deterministic deduplication, and every join is a left join from silver
// outward, so ghost records in auxiliary tables can never surface.
package gold

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/drugsfda/internal/frame"
	"github.com/roach88/drugsfda/internal/transform"
)

// GenericApplType is the application-type code marking an abbreviated
// (generic) approval pathway.
const GenericApplType = "A"

var productKey = []string{"appl_no", "product_no"}

// AuxTables carries the optional reference tables. Any field may be nil or
// empty; each absent table degrades its derived fields to null/false.
type AuxTables struct {
	Applications          *frame.Frame
	MarketingStatus       *frame.Frame
	MarketingStatusLookup *frame.Frame
	TE                    *frame.Frame
	Exclusivity           *frame.Frame
}

// Enrich produces the gold frame: one row per silver row, never more,
// never fewer. today anchors the exclusivity-protection boundary; a period
// expiring exactly today is not protected (strict inequality).
func Enrich(silver *frame.Frame, aux AuxTables, today time.Time) (*frame.Frame, error) {
	// Degenerate short-circuit: nothing to enrich.
	if silver.Empty() || silver.Width() == 0 {
		return silver, nil
	}

	// The silver frame is shared with the silver resource; never grow it.
	f := silver.Clone()

	var err error
	if f, err = joinApplications(f, orEmpty(aux.Applications)); err != nil {
		return nil, err
	}
	if f, err = joinMarketingStatus(f, orEmpty(aux.MarketingStatus)); err != nil {
		return nil, err
	}
	if f, err = joinStatusLookup(f, orEmpty(aux.MarketingStatusLookup)); err != nil {
		return nil, err
	}
	if f, err = joinTE(f, orEmpty(aux.TE)); err != nil {
		return nil, err
	}
	if f, err = joinExclusivity(f, orEmpty(aux.Exclusivity), today); err != nil {
		return nil, err
	}

	deriveIsGeneric(f)
	deriveSearchVector(f)

	return f, nil
}

func orEmpty(f *frame.Frame) *frame.Frame {
	if f == nil {
		return frame.New()
	}
	return f
}

// joinApplications attaches sponsor_name and appl_type by application
// number. Duplicate application rows are collapsed to one before the join
// so they can never fan out product rows.
func joinApplications(f, apps *frame.Frame) (*frame.Frame, error) {
	apps = apps.Clone()
	transform.NormalizeIDs(apps)

	if !apps.Has("appl_no") || !apps.Has("sponsor_name") {
		f.MustSetColumn("sponsor_name", frame.String, frame.Nulls(f.Height()))
		f.MustSetColumn("appl_type", frame.String, frame.Nulls(f.Height()))
		return f, nil
	}

	cols := []string{"appl_no", "sponsor_name"}
	if apps.Has("appl_type") {
		cols = append(cols, "appl_type")
	}
	sub, err := apps.Select(cols...)
	if err != nil {
		return nil, fmt.Errorf("gold: applications: %w", err)
	}
	sub = frame.DedupBy(sub, []string{"appl_no"}, frame.First)

	out, err := frame.LeftJoin(f, sub, []string{"appl_no"})
	if err != nil {
		return nil, fmt.Errorf("gold: applications join: %w", err)
	}
	return out, nil
}

// joinMarketingStatus attaches marketing_status_id by full product key.
// When duplicate rows disagree, the smallest status id wins: an active or
// prescription status is assumed lower-valued than a discontinued one
// (optimistic availability).
func joinMarketingStatus(f, ms *frame.Frame) (*frame.Frame, error) {
	ms = ms.Clone()
	transform.NormalizeIDs(ms)

	if !ms.Has("appl_no") || !ms.Has("product_no") || !ms.Has("marketing_status_id") {
		f.MustSetColumn("marketing_status_id", frame.Int, frame.Nulls(f.Height()))
		return f, nil
	}

	sub, err := ms.Select("appl_no", "product_no", "marketing_status_id")
	if err != nil {
		return nil, fmt.Errorf("gold: marketing status: %w", err)
	}
	idCol := sub.Column("marketing_status_id")
	sub = frame.DedupBy(sub, productKey, func(rows []int) int {
		best := rows[0]
		for _, r := range rows[1:] {
			if lessCell(idCol.Values[r], idCol.Values[best]) {
				best = r
			}
		}
		return best
	})

	out, err := frame.LeftJoin(f, sub, productKey)
	if err != nil {
		return nil, fmt.Errorf("gold: marketing status join: %w", err)
	}
	castIntColumn(out, "marketing_status_id")
	return out, nil
}

// joinStatusLookup attaches the human-readable status description by
// status id. Duplicate lookup ids with different descriptions resolve to
// the lexicographically first description - a stable rule, so identical
// logical inputs in different physical row order yield identical output.
func joinStatusLookup(f, lookup *frame.Frame) (*frame.Frame, error) {
	if !lookup.Has("marketing_status_id") || !lookup.Has("marketing_status_description") {
		f.MustSetColumn("marketing_status_description", frame.String, frame.Nulls(f.Height()))
		return f, nil
	}

	sub, err := lookup.Select("marketing_status_id", "marketing_status_description")
	if err != nil {
		return nil, fmt.Errorf("gold: status lookup: %w", err)
	}
	sub = sub.Clone()
	castIntColumn(sub, "marketing_status_id")

	descCol := sub.Column("marketing_status_description")
	sub = frame.DedupBy(sub, []string{"marketing_status_id"}, func(rows []int) int {
		best := rows[0]
		for _, r := range rows[1:] {
			if lessCell(descCol.Values[r], descCol.Values[best]) {
				best = r
			}
		}
		return best
	})

	out, err := frame.LeftJoin(f, sub, []string{"marketing_status_id"})
	if err != nil {
		return nil, fmt.Errorf("gold: status lookup join: %w", err)
	}
	return out, nil
}

// joinTE attaches the therapeutic-equivalence code by full product key,
// keeping the lexicographically first code per key.
func joinTE(f, te *frame.Frame) (*frame.Frame, error) {
	te = te.Clone()
	transform.NormalizeIDs(te)

	if !te.Has("appl_no") || !te.Has("product_no") || !te.Has("te_code") {
		f.MustSetColumn("te_code", frame.String, frame.Nulls(f.Height()))
		return f, nil
	}

	sub, err := te.Select("appl_no", "product_no", "te_code")
	if err != nil {
		return nil, fmt.Errorf("gold: te: %w", err)
	}
	codeCol := sub.Column("te_code")
	sub = frame.DedupBy(sub, productKey, func(rows []int) int {
		best := rows[0]
		for _, r := range rows[1:] {
			if lessCell(codeCol.Values[r], codeCol.Values[best]) {
				best = r
			}
		}
		return best
	})

	out, err := frame.LeftJoin(f, sub, productKey)
	if err != nil {
		return nil, fmt.Errorf("gold: te join: %w", err)
	}
	return out, nil
}

// joinExclusivity attaches max_exclusivity_date (the latest parsed
// exclusivity date per product key) and derives is_protected. Unparseable
// dates contribute null and are excluded from the max; a key with no valid
// date at all defaults to unprotected.
func joinExclusivity(f, excl *frame.Frame, today time.Time) (*frame.Frame, error) {
	excl = excl.Clone()
	transform.NormalizeIDs(excl)

	if !excl.Has("appl_no") || !excl.Has("product_no") || !excl.Has("exclusivity_date") {
		f.MustSetColumn("is_protected", frame.Bool, frame.Repeat(false, f.Height()))
		return f, nil
	}

	transform.ReconcileDates(excl, []string{"exclusivity_date"})
	dateCol := excl.Column("exclusivity_date")

	groups, order := frame.GroupRows(excl, productKey)
	agg := frame.New()
	appl := make([]any, 0, len(order))
	prod := make([]any, 0, len(order))
	maxDate := make([]any, 0, len(order))
	for _, k := range order {
		var best any
		for _, r := range groups[k] {
			// The column stays untyped when the raw file carried no
			// parseable ISO dates (all-digit values infer as ints); such
			// cells degrade to null like any other unparseable date.
			d, ok := dateCol.Values[r].(time.Time)
			if !ok {
				continue
			}
			if best == nil || d.After(best.(time.Time)) {
				best = d
			}
		}
		row := groups[k][0]
		appl = append(appl, excl.Value("appl_no", row))
		prod = append(prod, excl.Value("product_no", row))
		maxDate = append(maxDate, best)
	}
	agg.MustSetColumn("appl_no", frame.String, appl)
	agg.MustSetColumn("product_no", frame.String, prod)
	agg.MustSetColumn("max_exclusivity_date", frame.Date, maxDate)

	out, err := frame.LeftJoin(f, agg, productKey)
	if err != nil {
		return nil, fmt.Errorf("gold: exclusivity join: %w", err)
	}

	todayDate := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	maxCol := out.Column("max_exclusivity_date")
	protected := make([]any, out.Height())
	for i := 0; i < out.Height(); i++ {
		v := maxCol.Values[i]
		// Strict inequality: expiring exactly today is not protected.
		protected[i] = v != nil && v.(time.Time).After(todayDate)
	}
	out.MustSetColumn("is_protected", frame.Bool, protected)
	return out, nil
}

// deriveIsGeneric flags abbreviated-pathway applications. A null or absent
// application type is false, never null.
func deriveIsGeneric(f *frame.Frame) {
	col := f.Column("appl_type")
	if col == nil {
		f.MustSetColumn("is_generic", frame.Bool, frame.Repeat(false, f.Height()))
		return
	}
	vals := make([]any, f.Height())
	for i, v := range col.Values {
		vals[i] = v != nil && frame.CellString(v) == GenericApplType
	}
	f.MustSetColumn("is_generic", frame.Bool, vals)
}

// deriveSearchVector concatenates drug name, ingredients, sponsor, and TE
// code (in that fixed order, space separated), trims, and uppercases.
// Absent inputs contribute the empty string - never a literal null token.
func deriveSearchVector(f *frame.Frame) {
	vals := make([]any, f.Height())
	for i := 0; i < f.Height(); i++ {
		parts := []string{
			stringOrEmpty(f, "drug_name", i),
			ingredientsText(f, i),
			stringOrEmpty(f, "sponsor_name", i),
			stringOrEmpty(f, "te_code", i),
		}
		vals[i] = strings.ToUpper(strings.TrimSpace(strings.Join(parts, " ")))
	}
	f.MustSetColumn("search_vector", frame.String, vals)
}

func stringOrEmpty(f *frame.Frame, name string, row int) string {
	v, ok := f.StringValue(name, row)
	if !ok {
		return ""
	}
	return v
}

func ingredientsText(f *frame.Frame, row int) string {
	list, ok := f.Value("active_ingredients_list", row).([]string)
	if !ok {
		return ""
	}
	return strings.Join(list, " ")
}

// lessCell orders two nullable cells deterministically: nulls sort last,
// ints numerically, everything else by canonical string form.
func lessCell(a, b any) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	ai, aOK := a.(int64)
	bi, bOK := b.(int64)
	if aOK && bOK {
		return ai < bi
	}
	return frame.CellString(a) < frame.CellString(b)
}

// castIntColumn converts a string-typed column to int64 in place,
// nulling values that do not parse. Already-int columns pass through.
func castIntColumn(f *frame.Frame, name string) {
	col := f.Column(name)
	if col == nil || col.Type == frame.Int {
		return
	}
	vals := make([]any, len(col.Values))
	for i, v := range col.Values {
		if v == nil {
			continue
		}
		n, err := strconv.ParseInt(strings.TrimSpace(frame.CellString(v)), 10, 64)
		if err != nil {
			continue
		}
		vals[i] = n
	}
	f.MustSetColumn(name, frame.Int, vals)
}
