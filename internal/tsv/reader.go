// Package tsv reads the tab-separated files published in the Drugs@FDA
// archive into frames.
//
// The files are Windows-1252 encoded (not UTF-8), carry no quoting (quote
// characters are literal data), and are ragged: individual rows may have
// more or fewer fields than the header. The reader tolerates all of this
// and produces a frame with snake_case column names and whitespace-trimmed
// string cells.
package tsv

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/roach88/drugsfda/internal/frame"
)

// DefaultInferLength is the number of rows sampled before committing to a
// column type. The archive's identifier columns look numeric for tens of
// thousands of rows and then contain letters; under-sampling commits to an
// integer type and breaks the read, so the sample must be large.
const DefaultInferLength = 10000

// Options controls reader behavior.
type Options struct {
	// InferLength is the row sample size for type inference.
	// Zero means DefaultInferLength.
	InferLength int

	// Strict makes cells that fail to parse under the inferred type an
	// error. The default (permissive) nulls them instead.
	Strict bool
}

// Read parses tab-separated Windows-1252 bytes into a frame with default
// options: a large inference sample and permissive cell handling.
//
// Empty input yields an empty frame (zero rows, zero columns), not an error.
func Read(content []byte) (*frame.Frame, error) {
	return ReadWith(content, Options{})
}

// ReadWith is Read with explicit options.
func ReadWith(content []byte, opts Options) (*frame.Frame, error) {
	if len(content) == 0 {
		return frame.New(), nil
	}

	decoded, err := charmap.Windows1252.NewDecoder().Bytes(content)
	if err != nil {
		return nil, fmt.Errorf("tsv: decode windows-1252: %w", err)
	}

	lines := splitLines(string(decoded))
	if len(lines) == 0 {
		return frame.New(), nil
	}

	headers := make([]string, 0)
	for _, h := range strings.Split(lines[0], "\t") {
		headers = append(headers, ToSnakeCase(strings.TrimSpace(h)))
	}

	rows := lines[1:]
	cells := make([][]any, len(headers))
	for i := range cells {
		cells[i] = make([]any, len(rows))
	}

	for r, line := range rows {
		fields := strings.Split(line, "\t")
		// Ragged rows: extra fields are truncated to the header width,
		// missing fields stay null.
		for c := range headers {
			if c >= len(fields) {
				break
			}
			v := strings.TrimSpace(fields[c])
			if v == "" {
				continue
			}
			cells[c][r] = v
		}
	}

	inferLen := opts.InferLength
	if inferLen <= 0 {
		inferLen = DefaultInferLength
	}

	f := frame.New()
	for c, name := range headers {
		typ := inferType(cells[c], inferLen)
		vals := cells[c]
		if typ == frame.Int {
			vals, err = castIntColumn(name, vals, opts.Strict)
			if err != nil {
				return nil, err
			}
		}
		if f.Has(name) {
			// Duplicate header after canonicalization: keep the first.
			continue
		}
		if err := f.SetColumn(name, typ, vals); err != nil {
			return nil, fmt.Errorf("tsv: %w", err)
		}
	}

	return f, nil
}

// splitLines splits on \n, tolerating \r\n, and drops the trailing empty
// line a final newline produces.
func splitLines(s string) []string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

var intPattern = regexp.MustCompile(`^[+-]?\d+$`)

// inferType examines up to sample non-null cells and returns Int only when
// every one of them is an integer literal. Anything else stays String.
func inferType(vals []any, sample int) frame.DType {
	seen := 0
	numeric := false
	for _, v := range vals {
		if v == nil {
			continue
		}
		if seen >= sample {
			break
		}
		seen++
		if !intPattern.MatchString(v.(string)) {
			return frame.String
		}
		numeric = true
	}
	if numeric {
		return frame.Int
	}
	return frame.String
}

// castIntColumn converts raw string cells to int64. Cells beyond the
// inference sample can still fail to parse; permissive mode nulls them.
func castIntColumn(name string, vals []any, strict bool) ([]any, error) {
	out := make([]any, len(vals))
	for i, v := range vals {
		if v == nil {
			continue
		}
		n, err := strconv.ParseInt(v.(string), 10, 64)
		if err != nil {
			if strict {
				return nil, fmt.Errorf("tsv: column %q row %d: %q is not an integer", name, i, v)
			}
			continue
		}
		out[i] = n
	}
	return out, nil
}
