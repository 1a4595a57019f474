// Package archive opens the published Drugs@FDA ZIP and exposes the fixed
// set of tab-separated member files the pipeline knows about.
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
)

// TargetFiles is the fixed set of members extracted from the archive.
// Any subset may be present in a given publication.
var TargetFiles = []string{
	"Products.txt",
	"Applications.txt",
	"MarketingStatus.txt",
	"TE.txt",
	"Submissions.txt",
	"Exclusivity.txt",
	"MarketingStatus_Lookup.txt",
}

// Archive holds the extracted target members of one publication.
type Archive struct {
	files map[string][]byte
}

// Open validates the buffer as a ZIP and extracts every target member.
// A malformed archive is fatal - there is nothing to degrade to when the
// container itself is broken.
func Open(content []byte) (*Archive, error) {
	r, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("archive: not a valid ZIP: %w", err)
	}

	members := make(map[string]*zip.File, len(r.File))
	for _, zf := range r.File {
		members[zf.Name] = zf
	}

	a := &Archive{files: make(map[string][]byte)}
	for _, name := range TargetFiles {
		zf, ok := members[name]
		if !ok {
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			return nil, fmt.Errorf("archive: open member %s: %w", name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("archive: read member %s: %w", name, err)
		}
		a.files[name] = data
	}

	return a, nil
}

// Has reports whether the named target file was present.
func (a *Archive) Has(name string) bool {
	_, ok := a.files[name]
	return ok
}

// File returns the raw bytes of a present member.
func (a *Archive) File(name string) ([]byte, bool) {
	data, ok := a.files[name]
	return data, ok
}

// Present returns the present target files, in TargetFiles order.
func (a *Archive) Present() []string {
	var out []string
	for _, name := range TargetFiles {
		if a.Has(name) {
			out = append(out, name)
		}
	}
	return out
}

// Missing returns the expected target files absent from the archive.
func (a *Archive) Missing() []string {
	var out []string
	for _, name := range TargetFiles {
		if !a.Has(name) {
			out = append(out, name)
		}
	}
	return out
}
