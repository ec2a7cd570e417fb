package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var idNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func TestAuditID(t *testing.T) {
	millis := "1741608000000"

	tests := []struct {
		name    string
		docType string
		vendor  string
		date    string
		want    string
	}{
		{
			"full parts",
			"invoice", "Acme Corp", "2025-03-09",
			"audit-invoice-acme-corp-2025-03-09-" + millis,
		},
		{
			"type truncated to ten chars",
			"purchase_order", "Acme", "2025-03-09",
			"audit-purchase-o-acme-2025-03-09-" + millis,
		},
		{
			"vendor keeps first two words",
			"invoice", "Stark Industries Global Holdings", "2025-03-09",
			"audit-invoice-stark-industrie-2025-03-09-" + millis,
		},
		{
			"missing date uses today",
			"invoice", "Acme", "",
			"audit-invoice-acme-2025-03-10-" + millis,
		},
		{
			"vendor only",
			"", "Acme", "2025-03-09",
			"audit-acme-2025-03-09-" + millis,
		},
		{
			"nothing to slug",
			"", "", "",
			"audit-" + millis,
		},
		{
			"unknown vendor placeholder dropped",
			"", "Unknown Vendor", "",
			"audit-" + millis,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AuditID(tt.docType, tt.vendor, tt.date, idNow))
		})
	}
}

func TestRFQID(t *testing.T) {
	millis := "1741608000000"

	tests := []struct {
		name   string
		vendor string
		price  float64
		want   string
	}{
		{"vendor and price", "TechNova Solutions", 15750, "rfq-technova-soluti-16k-" + millis},
		{"rounds down", "Acme", 15400, "rfq-acme-15k-" + millis},
		{"no price", "Acme", 0, "rfq-acme-" + millis},
		{"nothing", "", 0, "rfq-" + millis},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RFQID(tt.vendor, tt.price, idNow))
		})
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"Acme Corp.", 20, "acme-corp"},
		{"  spaced   out  ", 20, "spaced-out"},
		{"purchase_order", 10, "purchase-o"},
		{"UPPER", 10, "upper"},
		{"trailing-", 8, "trailing"},
		{"", 10, ""},
		{"---", 10, ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, slugify(tt.in, tt.max), "slugify(%q, %d)", tt.in, tt.max)
	}
}
