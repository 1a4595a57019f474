// Package identity derives the two deterministic identities every product
// row carries: a name-based UUID keyed by the business key, and a content
// hash for change detection.
//
// Both derivations are pure functions of the row: same inputs yield
// byte-identical output across runs and machines. The content hash walks
// columns in sorted-name order so it is invariant to incidental column
// reordering upstream - a correctness requirement for change-data-capture,
// not an optimization.
package identity

import (
	"crypto/md5"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/roach88/drugsfda/internal/frame"
)

// NamespaceFDA is the fixed UUIDv5 namespace for Drugs@FDA identities:
// uuid5(NAMESPACE_DNS, "fda.coreason.ai"). Changing it changes every
// generated identifier, so it is frozen.
var NamespaceFDA = uuid.MustParse("9a527060-639d-5a63-a612-9c1673322488")

// GenerateCoreasonID adds a coreason_id column:
// UUIDv5(NamespaceFDA, "{appl_no}|{product_no}") per row.
//
// Key columns are expected to be normalized (padded) already. Null key
// components render as the empty string, so even half-keyed rows get a
// deterministic identifier; key validity is enforced by schema validation,
// not here.
func GenerateCoreasonID(f *frame.Frame) {
	vals := make([]any, f.Height())
	for i := 0; i < f.Height(); i++ {
		name := keyPart(f, "appl_no", i) + "|" + keyPart(f, "product_no", i)
		vals[i] = uuid.NewSHA1(NamespaceFDA, []byte(name)).String()
	}
	f.MustSetColumn("coreason_id", frame.String, vals)
}

// GenerateSourceID adds a source_id column: the two padded key parts
// concatenated ("070001" + "001" -> "070001001").
func GenerateSourceID(f *frame.Frame) {
	vals := make([]any, f.Height())
	for i := 0; i < f.Height(); i++ {
		vals[i] = keyPart(f, "appl_no", i) + keyPart(f, "product_no", i)
	}
	f.MustSetColumn("source_id", frame.String, vals)
}

func keyPart(f *frame.Frame, col string, row int) string {
	v := f.Value(col, row)
	if v == nil {
		return ""
	}
	return frame.CellString(v)
}

// GenerateRowHash adds a hash_md5 column: the MD5 digest of every column's
// canonical string value (nulls as empty string, lists joined by ";"),
// concatenated with "|" in sorted column-name order. MD5 is not collision
// resistant against adversaries; it is adequate for non-adversarial change
// detection, which is all this hash is for.
func GenerateRowHash(f *frame.Frame) {
	names := f.Columns()
	sort.Strings(names)

	vals := make([]any, f.Height())
	var sb strings.Builder
	for i := 0; i < f.Height(); i++ {
		sb.Reset()
		for j, name := range names {
			if j > 0 {
				sb.WriteByte('|')
			}
			if v := f.Value(name, i); v != nil {
				sb.WriteString(frame.CellString(v))
			}
		}
		sum := md5.Sum([]byte(sb.String()))
		vals[i] = hex.EncodeToString(sum[:])
	}
	f.MustSetColumn("hash_md5", frame.String, vals)
}
