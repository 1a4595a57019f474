// Package testutil provides fixture builders shared by pipeline tests.
package testutil

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"
)

// BuildZip assembles an in-memory ZIP archive from member name to content.
// Member contents are written verbatim, so callers control encoding.
func BuildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("create zip member %s: %v", name, err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatalf("write zip member %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

// TSV joins rows of tab-separated cells into file content with a trailing
// newline, the shape the published files use.
func TSV(rows ...string) string {
	return strings.Join(rows, "\r\n") + "\r\n"
}

// Row joins cells with tabs.
func Row(cells ...string) string {
	return strings.Join(cells, "\t")
}
