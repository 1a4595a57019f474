package silver

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/roach88/drugsfda/internal/frame"
)

// Product is the validated silver-layer record for one product variant.
//
// The key invariants are structural, not advisory: appl_no must be exactly
// six digits and product_no exactly three. A violation is a hard per-batch
// failure because an invalid identifier means a data-quality incident that
// needs operator attention, never a row to drop silently.
type Product struct {
	CoreasonID           string     `json:"coreason_id" validate:"required,uuid"`
	SourceID             string     `json:"source_id" validate:"required"`
	ApplNo               string     `json:"appl_no" validate:"required,len=6,number"`
	ProductNo            string     `json:"product_no" validate:"required,len=3,number"`
	DrugName             string     `json:"drug_name"`
	Form                 string     `json:"form"`
	Strength             string     `json:"strength"`
	ActiveIngredients    []string   `json:"active_ingredients_list"`
	OriginalApprovalDate *time.Time `json:"original_approval_date"`
	IsHistoricRecord     bool       `json:"is_historic_record"`
	HashMD5              string     `json:"hash_md5" validate:"required,len=32,hexadecimal"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the record's invariants.
func (p *Product) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("silver product appl_no=%q product_no=%q: %w", p.ApplNo, p.ProductNo, err)
	}
	return nil
}

// rowProduct builds a Product from one assembled silver row. Cells the
// frame does not carry stay at their zero value; the ingredient list is
// never nil.
func rowProduct(f *frame.Frame, row int) Product {
	p := Product{ActiveIngredients: []string{}}

	if v, ok := f.StringValue("coreason_id", row); ok {
		p.CoreasonID = v
	}
	if v, ok := f.StringValue("source_id", row); ok {
		p.SourceID = v
	}
	if v, ok := f.StringValue("appl_no", row); ok {
		p.ApplNo = v
	}
	if v, ok := f.StringValue("product_no", row); ok {
		p.ProductNo = v
	}
	if v, ok := f.StringValue("drug_name", row); ok {
		p.DrugName = v
	}
	if v, ok := f.StringValue("form", row); ok {
		p.Form = v
	}
	if v, ok := f.StringValue("strength", row); ok {
		p.Strength = v
	}
	if v, ok := f.Value("active_ingredients_list", row).([]string); ok {
		p.ActiveIngredients = v
	}
	if v, ok := f.Value("original_approval_date", row).(time.Time); ok {
		d := v
		p.OriginalApprovalDate = &d
	}
	if v, ok := f.Value("is_historic_record", row).(bool); ok {
		p.IsHistoricRecord = v
	}
	if v, ok := f.StringValue("hash_md5", row); ok {
		p.HashMD5 = v
	}

	return p
}
