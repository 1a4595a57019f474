// Package pipeline orchestrates the medallion layers over one published
// archive: raw (bronze) tables for every present member file, the
// validated silver product table, and the denormalized gold table.
//
// The whole run is a pure function of the archive bytes plus the supplied
// date anchor: repeated runs over identical input produce byte-identical
// rows, which is what lets the loader key upserts on the stable identifier.
package pipeline

import (
	"log/slog"
	"strings"
	"time"

	"github.com/roach88/drugsfda/internal/archive"
	"github.com/roach88/drugsfda/internal/frame"
	"github.com/roach88/drugsfda/internal/gold"
	"github.com/roach88/drugsfda/internal/silver"
	"github.com/roach88/drugsfda/internal/tsv"
)

// Disposition tells the loader how to write a resource.
type Disposition int

const (
	// Replace drops and rewrites the destination table.
	Replace Disposition = iota
	// Merge upserts rows keyed on the resource's primary key.
	Merge
)

// Resource is one logical output table of a run.
type Resource struct {
	// Name is the logical resource name (e.g. "raw_fda__products").
	Name string
	// Table is the destination table, carrying the layer prefix.
	Table string
	// Frame holds the rows.
	Frame *frame.Frame
	// Disposition selects replace vs merge loading.
	Disposition Disposition
	// PrimaryKey is the upsert key column for Merge resources.
	PrimaryKey string
}

// Fixed resource names.
const (
	SilverResource = "silver_products"
	GoldResource   = "dim_drug_product"
)

// Run executes the full transformation over one archive buffer.
//
// The silver resource is produced only when both Products and Submissions
// are present - a stronger guarantee than gold's degrade-to-null policy.
// The gold resource is produced whenever Products is present, regardless
// of auxiliary file availability. today anchors exclusivity protection.
func Run(content []byte, today time.Time) ([]Resource, error) {
	a, err := archive.Open(content)
	if err != nil {
		return nil, wrap(ErrCodeBadArchive, "", "source buffer is not a readable ZIP archive", err)
	}
	for _, name := range a.Missing() {
		slog.Warn("expected file not found in archive", "file", name)
	}
	slog.Info("archive opened", "files_present", len(a.Present()))

	frames := make(map[string]*frame.Frame)
	var resources []Resource

	for _, name := range a.Present() {
		data, _ := a.File(name)
		f, err := tsv.Read(data)
		if err != nil {
			return nil, wrap(ErrCodeReadFailed, name, "failed to parse member file", err)
		}
		frames[name] = f

		stem := tsv.ToSnakeCase(strings.TrimSuffix(name, ".txt"))
		resources = append(resources, Resource{
			Name:        "raw_fda__" + stem,
			Table:       "bronze_raw_fda__" + stem,
			Frame:       f,
			Disposition: Replace,
		})
	}

	products, hasProducts := frames["Products.txt"]
	submissions := frames["Submissions.txt"]

	if hasProducts && submissions != nil {
		slog.Info("generating silver products layer")
		silverFrame, err := silver.Build(products, submissions)
		if err != nil {
			return nil, wrap(ErrCodeValidation, "Products.txt", "silver layer failed validation", err)
		}
		resources = append(resources, Resource{
			Name:        SilverResource,
			Table:       SilverResource,
			Frame:       silverFrame,
			Disposition: Merge,
			PrimaryKey:  "coreason_id",
		})
		slog.Info("silver products layer complete", "rows", silverFrame.Height())
	}

	if hasProducts {
		slog.Info("generating gold products layer")
		assembled, err := silver.Assemble(products, submissions)
		if err != nil {
			return nil, wrap(ErrCodeReadFailed, "Products.txt", "silver assembly failed", err)
		}
		goldFrame, err := gold.Enrich(assembled, gold.AuxTables{
			Applications:          frames["Applications.txt"],
			MarketingStatus:       frames["MarketingStatus.txt"],
			MarketingStatusLookup: frames["MarketingStatus_Lookup.txt"],
			TE:                    frames["TE.txt"],
			Exclusivity:           frames["Exclusivity.txt"],
		}, today)
		if err != nil {
			return nil, wrap(ErrCodeReadFailed, "Products.txt", "gold enrichment failed", err)
		}
		resources = append(resources, Resource{
			Name:        GoldResource,
			Table:       "gold_" + GoldResource,
			Frame:       goldFrame,
			Disposition: Replace,
		})
		slog.Info("gold products layer complete", "rows", goldFrame.Height())
	}

	return resources, nil
}
