package gold

import (
	"time"

	"github.com/roach88/drugsfda/internal/frame"
)

// Product is one denormalized gold-layer row. Unlike the silver record it
// has no hard invariants of its own: every derived field already honors
// its documented default, so conversion cannot fail.
type Product struct {
	CoreasonID           string     `json:"coreason_id"`
	SourceID             string     `json:"source_id"`
	ApplNo               string     `json:"appl_no"`
	ProductNo            string     `json:"product_no"`
	DrugName             string     `json:"drug_name"`
	ActiveIngredients    []string   `json:"active_ingredients_list"`
	SponsorName          *string    `json:"sponsor_name"`
	ApplType             *string    `json:"appl_type"`
	MarketingStatusID    *int64     `json:"marketing_status_id"`
	MarketingStatusDesc  *string    `json:"marketing_status_description"`
	TECode               *string    `json:"te_code"`
	OriginalApprovalDate *time.Time `json:"original_approval_date"`
	MaxExclusivityDate   *time.Time `json:"max_exclusivity_date"`
	IsHistoricRecord     bool       `json:"is_historic_record"`
	IsGeneric            bool       `json:"is_generic"`
	IsProtected          bool       `json:"is_protected"`
	SearchVector         string     `json:"search_vector"`
	HashMD5              string     `json:"hash_md5"`
}

// Records converts an enriched gold frame to Product records.
func Records(f *frame.Frame) []Product {
	out := make([]Product, f.Height())
	for i := range out {
		p := &out[i]
		p.ActiveIngredients = []string{}

		p.CoreasonID, _ = f.StringValue("coreason_id", i)
		p.SourceID, _ = f.StringValue("source_id", i)
		p.ApplNo, _ = f.StringValue("appl_no", i)
		p.ProductNo, _ = f.StringValue("product_no", i)
		p.DrugName, _ = f.StringValue("drug_name", i)
		p.SearchVector, _ = f.StringValue("search_vector", i)
		p.HashMD5, _ = f.StringValue("hash_md5", i)

		if v, ok := f.Value("active_ingredients_list", i).([]string); ok {
			p.ActiveIngredients = v
		}
		p.SponsorName = stringPtr(f, "sponsor_name", i)
		p.ApplType = stringPtr(f, "appl_type", i)
		p.MarketingStatusDesc = stringPtr(f, "marketing_status_description", i)
		p.TECode = stringPtr(f, "te_code", i)
		if v, ok := f.Value("marketing_status_id", i).(int64); ok {
			p.MarketingStatusID = &v
		}
		p.OriginalApprovalDate = datePtr(f, "original_approval_date", i)
		p.MaxExclusivityDate = datePtr(f, "max_exclusivity_date", i)
		if v, ok := f.Value("is_historic_record", i).(bool); ok {
			p.IsHistoricRecord = v
		}
		if v, ok := f.Value("is_generic", i).(bool); ok {
			p.IsGeneric = v
		}
		if v, ok := f.Value("is_protected", i).(bool); ok {
			p.IsProtected = v
		}
	}
	return out
}

func stringPtr(f *frame.Frame, name string, row int) *string {
	if v, ok := f.StringValue(name, row); ok {
		return &v
	}
	return nil
}

func datePtr(f *frame.Frame, name string, row int) *time.Time {
	if v, ok := f.Value(name, row).(time.Time); ok {
		return &v
	}
	return nil
}
