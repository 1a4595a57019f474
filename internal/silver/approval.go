package silver

import (
	"strings"
	"time"

	"github.com/roach88/drugsfda/internal/frame"
	"github.com/roach88/drugsfda/internal/transform"
)

// ResolveApprovalDates maps each normalized application number to the raw
// status-date string of its chronologically earliest valid ORIG submission.
//
// Chronological matters: the legacy sentinel for "very old" sorts after
// "1985-01-01" lexicographically but parses to 1982-01-01, so selection
// runs on parsed dates, never raw strings. The raw string is returned (not
// the parsed date) so the sentinel survives the join and still sets the
// historic flag when the silver layer reconciles the column.
//
// Rows with an unparseable or empty date contribute nothing; an application
// with zero valid ORIG rows is simply absent from the map. A nil table, or
// one lacking the submission-type or status-date column, yields an empty
// map rather than an error.
func ResolveApprovalDates(submissions *frame.Frame) map[string]string {
	if submissions == nil ||
		!submissions.Has("appl_no") ||
		!submissions.Has("submission_type") ||
		!submissions.Has("submission_status_date") {
		return map[string]string{}
	}

	type candidate struct {
		parsed time.Time
		raw    string
	}
	best := make(map[string]candidate)

	for i := 0; i < submissions.Height(); i++ {
		typ, ok := submissions.StringValue("submission_type", i)
		if !ok || typ != "ORIG" {
			continue
		}

		appl, ok := normalizeKey(submissions.Value("appl_no", i), transform.ApplNoWidth)
		if !ok {
			continue
		}

		raw, ok := submissions.StringValue("submission_status_date", i)
		if !ok {
			continue
		}
		parsed, _, ok := transform.ParseDateValue(raw)
		if !ok {
			continue
		}

		cur, seen := best[appl]
		switch {
		case !seen, parsed.Before(cur.parsed):
			best[appl] = candidate{parsed: parsed, raw: raw}
		case parsed.Equal(cur.parsed) && raw < cur.raw:
			// Equal-date tie-break on the raw string keeps the result
			// independent of input row order.
			best[appl] = candidate{parsed: parsed, raw: raw}
		}
	}

	out := make(map[string]string, len(best))
	for appl, c := range best {
		out[appl] = c.raw
	}
	return out
}

// normalizeKey renders a raw key cell to its padded form. Null, empty, and
// whitespace-only cells are absent, never padded into a fake zero key.
func normalizeKey(v any, width int) (string, bool) {
	if v == nil {
		return "", false
	}
	s := strings.TrimSpace(frame.CellString(v))
	if s == "" {
		return "", false
	}
	return transform.Pad(s, width), true
}
