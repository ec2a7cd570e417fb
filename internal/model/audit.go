package model

// AuditRecord is the flat, non-evidence-bearing record shape for generic
// procurement documents (invoices, deliveries, contracts). Absent fields are
// the zero value; the rule engine skips them.
type AuditRecord struct {
	Type      string   `json:"type,omitempty"`
	Amount    *float64 `json:"amount,omitempty"`
	Currency  string   `json:"currency,omitempty"`
	Vendor    string   `json:"vendor,omitempty"`
	Date      string   `json:"date,omitempty"`
	Notes     string   `json:"notes,omitempty"`
	RiskFlags []string `json:"riskFlags"`
}

// ExpectedAuditFields is the closed list of fields a generic audit record is
// expected to carry. Deliberately distinct from ExpectedOfferFields; the two
// denominators must not drift into one another.
var ExpectedAuditFields = []string{
	"type",
	"amount",
	"currency",
	"vendor",
	"date",
}

// MissingFieldCount returns how many expected audit fields are absent.
func (a *AuditRecord) MissingFieldCount() int {
	n := 0
	if a.Type == "" || a.Type == "unknown" {
		n++
	}
	if a.Amount == nil {
		n++
	}
	if a.Currency == "" {
		n++
	}
	if a.Vendor == "" {
		n++
	}
	if a.Date == "" {
		n++
	}
	return n
}
