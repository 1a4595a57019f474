package tsv

import (
	"regexp"
	"strings"
)

var (
	firstCap = regexp.MustCompile(`(.)([A-Z][a-z]+)`)
	allCap   = regexp.MustCompile(`([a-z0-9])([A-Z])`)
)

// ToSnakeCase converts a source header to the canonical lowercase,
// underscore-delimited form: "ApplNo" -> "appl_no",
// "MarketingStatusID" -> "marketing_status_id".
//
// Word boundaries are detected by capital-letter transitions only. An
// all-uppercase header has no transitions and collapses to one fused
// token ("APPLNO" -> "applno"); the archive's headers are CamelCase, so
// this policy never fires in practice, but it is deliberate and tested.
func ToSnakeCase(name string) string {
	s := firstCap.ReplaceAllString(name, "${1}_${2}")
	s = allCap.ReplaceAllString(s, "${1}_${2}")
	return strings.ToLower(s)
}
