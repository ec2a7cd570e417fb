package store

import (
	"strconv"
	"strings"
	"time"
)

const (
	typeSlugMax   = 10
	vendorSlugMax = 15
)

// AuditID builds a human-readable record ID of the form
// audit-<type>-<vendor>-<date>-<millis>. Date falls back to the current
// day when the record has none; when neither type nor vendor yields a
// slug, the ID degrades to audit-<millis>.
func AuditID(docType, vendor, date string, now time.Time) string {
	typeSlug := slugify(docType, typeSlugMax)
	vendorPart := vendorSlug(vendor)

	if typeSlug == "" && vendorPart == "" {
		return "audit-" + strconv.FormatInt(now.UnixMilli(), 10)
	}

	if date == "" {
		date = now.UTC().Format("2006-01-02")
	}

	parts := []string{"audit"}
	if typeSlug != "" {
		parts = append(parts, typeSlug)
	}
	if vendorPart != "" {
		parts = append(parts, vendorPart)
	}
	parts = append(parts, date, strconv.FormatInt(now.UnixMilli(), 10))
	return strings.Join(parts, "-")
}

// RFQID builds a human-readable comparison ID of the form
// rfq-<vendor>-<amount>k-<millis>. Vendor and amount segments are
// dropped when absent, degrading to rfq-<millis>.
func RFQID(vendor string, totalPrice float64, now time.Time) string {
	parts := []string{"rfq"}
	if v := vendorSlug(vendor); v != "" {
		parts = append(parts, v)
	}
	if totalPrice > 0 {
		thousands := int(totalPrice/1000 + 0.5)
		parts = append(parts, strconv.Itoa(thousands)+"k")
	}
	parts = append(parts, strconv.FormatInt(now.UnixMilli(), 10))
	return strings.Join(parts, "-")
}

// vendorSlug keeps the first two words of the vendor name.
func vendorSlug(vendor string) string {
	words := strings.Fields(vendor)
	if len(words) > 2 {
		words = words[:2]
	}
	if vendor == "Unknown Vendor" {
		return ""
	}
	return slugify(strings.Join(words, " "), vendorSlugMax)
}

// slugify lowercases, maps non-alphanumeric runs to single hyphens, and
// truncates to max without leaving a trailing hyphen.
func slugify(s string, max int) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastHyphen = false
		} else if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	out := strings.Trim(b.String(), "-")
	if len(out) > max {
		out = strings.TrimRight(out[:max], "-")
	}
	return out
}
