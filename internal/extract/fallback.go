package extract

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/procurelens/procure-cli/internal/model"
)

// maxQuoteLen bounds evidence quotes to the short-verbatim range.
const maxQuoteLen = 200

// shortInputThreshold suppresses the compliance red flag for inputs too
// short to be a real document.
const shortInputThreshold = 100

var (
	pageMarkerRe = regexp.MustCompile(`(?i)page\s+(\d+)`)

	// Vendor label ladder, tried strictest first. Markdown emphasis
	// (**Vendor:**) appears in text converted from rendered documents.
	vendorPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\*\*Vendor:\*\*\s+([A-Z][A-Za-z\s&.,()]+?)(?:\n|$|\*\*)`),
		regexp.MustCompile(`(?i)(?:^|\n)\*\*Vendor:\*\*\s+([A-Z][A-Za-z\s&.,()]+?)(?:\n|$)`),
		regexp.MustCompile(`(?i)(?:\*\*)?(?:Vendor|Company|Supplier)(?:\*\*)?[\s:]+([A-Z][A-Za-z\s&.,()]+?)(?:\n|$|\.|\*\*)`),
		regexp.MustCompile(`(?im)^OFFER\s+[A-Z]\s*-\s*([A-Za-z\s&.,()]+)`),
	}
	vendorFilenameRe = regexp.MustCompile(`(?i)(?:offer[_\s-]?[A-Z][_\s-]?)?([A-Za-z]+)`)

	pricePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:\*\*)?(?:Total\s+Price|Price|Amount)(?:\*\*)?[\s:]*\$?([\d,]+\.?\d*)`),
		regexp.MustCompile(`(?i)\$([\d,]+\.?\d*)\s*(?:USD|EUR|GBP|TRY)`),
	}

	currencyRe = regexp.MustCompile(`(?i)\b(USD|EUR|GBP|TRY|JPY|CNY)\b`)
	leadTimeRe = regexp.MustCompile(`(?i)(?:\*\*)?(?:Lead\s+Time|Delivery\s+Time)(?:\*\*)?[\s:]*(\d+)\s*(?:calendar\s+)?days?`)
	paymentRe  = regexp.MustCompile(`(?i)Net\s+(\d+)\s*days?`)
	validityRe = regexp.MustCompile(`(?i)(?:valid|validity)[\s:]*(\d+)\s*days?`)

	// Penalty keywords with a bounded trailing window for evidence.
	penaltyWindowRe = regexp.MustCompile(`(?i)(?:penalty|delay.*penalty|late.*fee)[\s\S]{0,500}`)
	penaltyCapRe    = regexp.MustCompile(`(?i)(?:cap|maximum)[\s:]*(\d+)%`)

	complianceRe       = regexp.MustCompile(`(?i)GDPR|KVKK|compliance|data\s+processing\s+agreement|✅.*GDPR|✅.*KVKK`)
	complianceWindowRe = regexp.MustCompile(`(?i)(?:GDPR|KVKK|compliance|data\s+processing)[\s\S]{0,200}`)

	// Audit-record variant patterns.
	auditTypePatterns = []struct {
		re      *regexp.Regexp
		docType string
	}{
		{regexp.MustCompile(`(?i)invoice|inv-`), "invoice"},
		{regexp.MustCompile(`(?i)delivery|shipment|receipt`), "delivery"},
		{regexp.MustCompile(`(?i)contract|agreement`), "contract"},
		{regexp.MustCompile(`(?i)payment|transfer|wire`), "payment"},
		{regexp.MustCompile(`(?i)purchase.?order|po-`), "purchase_order"},
	}
	auditAmountRe   = regexp.MustCompile(`(?i)(?:amount|value|total|price)[\s:]*\$?([\d,]+\.?\d*)`)
	auditVendorRe   = regexp.MustCompile(`(?i)(?:from|vendor|supplier|company)[\s:]+([A-Z][A-Za-z\s&]+?)(?:\.|,|$)`)
	auditDateRe     = regexp.MustCompile(`(\d{4}-\d{2}-\d{2}|\d{1,2}/\d{1,2}/\d{4}|\w+\s+\d{1,2},?\s+\d{4})`)
	auditRiskFlagRe = regexp.MustCompile(`(?i)overdue|late|delayed|urgent|damaged|missing|error`)
)

var titleCaser = cases.Title(language.English)

// FallbackOffer extracts a best-effort offer from raw text using only
// regex heuristics. It is total: any input, including the empty string,
// yields a structurally valid offer. Parse failures skip the field.
func FallbackOffer(text, filename string) model.Offer {
	page := detectPage(text)

	offer := model.Offer{
		Vendor: model.Field[string]{
			Value:    "Unknown Vendor",
			Evidence: []model.Evidence{{Page: page, Quote: "Vendor name not found in document", Section: "Header"}},
		},
		RedFlags: []model.RedFlag{},
	}

	for _, pattern := range vendorPatterns {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		name := strings.ReplaceAll(strings.TrimSpace(m[1]), "**", "")
		name = strings.Trim(name, " \t*")
		if len(name) > 2 {
			offer.Vendor = model.Field[string]{
				Value:    name,
				Evidence: []model.Evidence{{Page: page, Quote: truncate(m[0], maxQuoteLen), Section: "Header"}},
			}
			break
		}
	}

	// Filename as last resort for the vendor name.
	if offer.Vendor.Value == "Unknown Vendor" && filename != "" {
		if m := vendorFilenameRe.FindStringSubmatch(filename); m != nil && len(m[1]) > 2 {
			name := m[1]
			if name == strings.ToLower(name) {
				name = titleCaser.String(name)
			}
			offer.Vendor = model.Field[string]{
				Value:    name,
				Evidence: []model.Evidence{{Page: 1, Quote: "Extracted from filename: " + filename, Section: "Metadata"}},
			}
		}
	}

	for _, pattern := range pricePatterns {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		price, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err != nil {
			continue
		}
		offer.TotalPrice = model.NewField(price, model.Evidence{
			Page: page, Quote: truncate(m[0], maxQuoteLen), Section: "Pricing",
		})
		break
	}

	if m := currencyRe.FindStringSubmatch(text); m != nil {
		offer.Currency = model.NewField(strings.ToUpper(m[1]), model.Evidence{
			Page: page, Quote: m[0], Section: "Pricing",
		})
	}

	if m := leadTimeRe.FindStringSubmatch(text); m != nil {
		if days, err := strconv.Atoi(m[1]); err == nil {
			offer.LeadTimeDays = model.NewField(days, model.Evidence{
				Page: page, Quote: truncate(m[0], maxQuoteLen), Section: "Delivery Terms",
			})
		}
	}

	if m := paymentRe.FindStringSubmatch(text); m != nil {
		if days, err := strconv.Atoi(m[1]); err == nil {
			offer.PaymentTermsDays = model.NewField(days, model.Evidence{
				Page: page, Quote: truncate(m[0], maxQuoteLen), Section: "Payment Terms",
			})
		}
	}

	if window := penaltyWindowRe.FindString(text); window != "" {
		clause := &model.Clause{
			Exists:  true,
			Details: "Penalty clause found in document",
			Evidence: []model.Evidence{{
				Page: page, Quote: truncate(window, maxQuoteLen), Section: "Penalty Clause",
			}},
		}
		if m := penaltyCapRe.FindStringSubmatch(window); m != nil {
			if pct, err := strconv.ParseFloat(m[1], 64); err == nil {
				clause.CapPercent = &pct
			}
		}
		offer.PenaltyClause = clause
	} else {
		offer.PenaltyClause = &model.Clause{Exists: false}
		offer.RedFlags = append(offer.RedFlags, model.RedFlag{
			Flag:     "Missing penalty clause",
			Evidence: []model.Evidence{{Page: page, Quote: "No penalty clause found in document", Section: "Terms"}},
		})
	}

	if complianceRe.MatchString(text) {
		evidence := []model.Evidence{{Page: page, Quote: "GDPR/KVKK compliance mentioned", Section: "Compliance"}}
		if m := complianceWindowRe.FindString(text); m != "" {
			evidence = []model.Evidence{{Page: page, Quote: truncate(m, maxQuoteLen), Section: "Compliance"}}
		}
		offer.KvkkGdpr = &model.Clause{
			Exists:   true,
			Details:  "GDPR/KVKK compliance mentioned",
			Evidence: evidence,
		}
	} else {
		offer.KvkkGdpr = &model.Clause{Exists: false}
		// Very short inputs are demo snippets, not real documents;
		// don't flag them for missing compliance docs.
		if len(text) > shortInputThreshold {
			offer.RedFlags = append(offer.RedFlags, model.RedFlag{
				Flag:     "No GDPR/KVKK compliance documentation",
				Evidence: []model.Evidence{{Page: page, Quote: "No GDPR/KVKK compliance found", Section: "Compliance"}},
			})
		}
	}

	if m := validityRe.FindStringSubmatch(text); m != nil {
		if days, err := strconv.Atoi(m[1]); err == nil {
			offer.ValidityDays = model.NewField(days, model.Evidence{
				Page: page, Quote: truncate(m[0], maxQuoteLen), Section: "Offer Validity",
			})
		}
	}

	return offer
}

// FallbackAudit extracts a best-effort flat audit record from raw text.
// Like FallbackOffer it is total and never errors.
func FallbackAudit(text string) model.AuditRecord {
	record := model.AuditRecord{
		Type:      "unknown",
		RiskFlags: []string{},
	}

	for _, tp := range auditTypePatterns {
		if tp.re.MatchString(text) {
			record.Type = tp.docType
			break
		}
	}

	if m := auditAmountRe.FindStringSubmatch(text); m != nil {
		if amount, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64); err == nil {
			record.Amount = &amount
		}
	}

	if m := currencyRe.FindStringSubmatch(text); m != nil {
		record.Currency = strings.ToUpper(m[1])
	}

	if m := auditVendorRe.FindStringSubmatch(text); m != nil {
		record.Vendor = strings.TrimSpace(m[1])
	}

	if m := auditDateRe.FindStringSubmatch(text); m != nil {
		record.Date = NormalizeDate(m[1])
	}

	if auditRiskFlagRe.MatchString(text) {
		record.RiskFlags = append(record.RiskFlags, "Potential issues detected")
	}

	return record
}

// detectPage infers the evidence page from an inline marker like
// "PAGE 2:" or "--- PAGE 3 ---", defaulting to page 1.
func detectPage(text string) int {
	if m := pageMarkerRe.FindStringSubmatch(text); m != nil {
		if page, err := strconv.Atoi(m[1]); err == nil && page >= 1 {
			return page
		}
	}
	return 1
}

// truncate cuts s to at most n bytes without splitting a multi-byte rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// JoinPages concatenates page texts with inline markers so the fallback
// extractor can recover page numbers for evidence.
func JoinPages(pages []model.PageText) string {
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = "PAGE " + strconv.Itoa(p.Page) + ": " + p.Text
	}
	return strings.Join(parts, "\n\n")
}
