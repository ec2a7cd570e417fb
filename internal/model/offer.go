package model

// Clause describes a contractual clause that may or may not be present in an
// offer document (penalty terms, compliance documentation).
type Clause struct {
	Exists     bool       `json:"exists"`
	Details    string     `json:"details,omitempty"`
	CapPercent *float64   `json:"capPercent,omitempty"`
	Evidence   []Evidence `json:"evidence,omitempty"`
}

// RedFlag is a risk indicator spotted during extraction.
type RedFlag struct {
	Flag     string     `json:"flag"`
	Evidence []Evidence `json:"evidence,omitempty"`
}

// Offer is a normalized vendor offer with per-field provenance. Constructed
// fresh per document by the extractor and immutable after construction.
type Offer struct {
	Vendor           Field[string]   `json:"vendor"`
	TotalPrice       *Field[float64] `json:"totalPrice,omitempty"`
	Currency         *Field[string]  `json:"currency,omitempty"`
	LeadTimeDays     *Field[int]     `json:"leadTimeDays,omitempty"`
	PaymentTermsDays *Field[int]     `json:"paymentTermsDays,omitempty"`
	ValidityDays     *Field[int]     `json:"validityDays,omitempty"`
	PenaltyClause    *Clause         `json:"penaltyClause,omitempty"`
	KvkkGdpr         *Clause         `json:"kvkkGdpr,omitempty"`
	RedFlags         []RedFlag       `json:"redFlags"`
}

// Offer field identifiers shared between the scoring engine and the
// serialization boundary. The order is fixed; missing-field counting
// iterates this exact list.
const (
	FieldVendor           = "vendor"
	FieldTotalPrice       = "totalPrice"
	FieldCurrency         = "currency"
	FieldLeadTimeDays     = "leadTimeDays"
	FieldPaymentTermsDays = "paymentTermsDays"
	FieldPenaltyClause    = "penaltyClause"
	FieldKvkkGdpr         = "kvkkGdpr"
	FieldValidityDays     = "validityDays"
)

// ExpectedOfferFields is the closed list of fields an offer is expected to
// carry. Its length is the denominator for the offer missing-fields risk.
var ExpectedOfferFields = []string{
	FieldVendor,
	FieldTotalPrice,
	FieldCurrency,
	FieldLeadTimeDays,
	FieldPaymentTermsDays,
	FieldPenaltyClause,
	FieldKvkkGdpr,
	FieldValidityDays,
}

// MissingFieldCount returns how many expected fields are wholly absent.
func (o *Offer) MissingFieldCount() int {
	n := 0
	for _, field := range ExpectedOfferFields {
		if !o.HasField(field) {
			n++
		}
	}
	return n
}

// HasField reports whether the named expected field is present on the offer.
func (o *Offer) HasField(field string) bool {
	switch field {
	case FieldVendor:
		return o.Vendor.Value != ""
	case FieldTotalPrice:
		return o.TotalPrice != nil
	case FieldCurrency:
		return o.Currency != nil
	case FieldLeadTimeDays:
		return o.LeadTimeDays != nil
	case FieldPaymentTermsDays:
		return o.PaymentTermsDays != nil
	case FieldPenaltyClause:
		return o.PenaltyClause != nil
	case FieldKvkkGdpr:
		return o.KvkkGdpr != nil
	case FieldValidityDays:
		return o.ValidityDays != nil
	}
	return false
}
