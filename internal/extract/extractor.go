package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/procurelens/procure-cli/internal/model"
	"github.com/procurelens/procure-cli/pkg/anthropic"
)

const offerPrompt = `You are an expert procurement analyst. Extract structured procurement offer information from the following document pages.

CRITICAL RULES:
1. Every extracted field MUST include at least 1 evidence item with (page, quote, section?)
2. quote must be a short verbatim snippet (50-200 chars) from that specific page
3. page must be the exact page number where the information was found
4. section is optional but helpful (e.g., "Pricing", "Delivery Terms", "Compliance")
5. If a field is not found, omit it (do not include null values)
6. For redFlags: include evidence showing why it's a risk

FIELDS TO EXTRACT (each with evidence):
- vendor: Company/vendor name (with evidence)
- totalPrice: Total price amount, numeric only (with evidence)
- currency: Currency code like USD, EUR (with evidence)
- leadTimeDays: Lead time in calendar days (with evidence)
- paymentTermsDays: Payment terms in days, e.g., "Net 30" = 30 (with evidence)
- penaltyClause: Object with exists, details, capPercent, and evidence array
- validityDays: Offer validity period in days (with evidence)
- kvkkGdpr: Object with exists, details, and evidence array
- redFlags: Array of { flag: string, evidence: array } - risk flags with evidence

Output JSON schema:
%s

DOCUMENT PAGES:
%s

Extract the offer information and return it as a single valid JSON object following the schema.
Every field must have evidence with page number and quote. Return only JSON, no prose.`

// offerSchema is the strict output schema for offer extraction. Evidence
// arrays on value-bearing fields require at least one item.
const offerSchema = `{
  "type": "object",
  "required": ["vendor"],
  "properties": {
    "vendor":           {"type": "object", "required": ["value", "evidence"], "properties": {"value": {"type": "string"}, "evidence": {"type": "array", "minItems": 1, "items": {"type": "object", "required": ["page", "quote"], "properties": {"page": {"type": "integer"}, "quote": {"type": "string"}, "section": {"type": "string"}}}}}},
    "totalPrice":       {"type": "object", "required": ["value", "evidence"], "properties": {"value": {"type": "number"}, "evidence": {"type": "array", "minItems": 1, "items": {"type": "object", "required": ["page", "quote"], "properties": {"page": {"type": "integer"}, "quote": {"type": "string"}, "section": {"type": "string"}}}}}},
    "currency":         {"type": "object", "required": ["value", "evidence"], "properties": {"value": {"type": "string"}, "evidence": {"type": "array", "minItems": 1, "items": {"type": "object", "required": ["page", "quote"], "properties": {"page": {"type": "integer"}, "quote": {"type": "string"}, "section": {"type": "string"}}}}}},
    "leadTimeDays":     {"type": "object", "required": ["value", "evidence"], "properties": {"value": {"type": "integer"}, "evidence": {"type": "array", "minItems": 1, "items": {"type": "object", "required": ["page", "quote"], "properties": {"page": {"type": "integer"}, "quote": {"type": "string"}, "section": {"type": "string"}}}}}},
    "paymentTermsDays": {"type": "object", "required": ["value", "evidence"], "properties": {"value": {"type": "integer"}, "evidence": {"type": "array", "minItems": 1, "items": {"type": "object", "required": ["page", "quote"], "properties": {"page": {"type": "integer"}, "quote": {"type": "string"}, "section": {"type": "string"}}}}}},
    "validityDays":     {"type": "object", "required": ["value", "evidence"], "properties": {"value": {"type": "integer"}, "evidence": {"type": "array", "minItems": 1, "items": {"type": "object", "required": ["page", "quote"], "properties": {"page": {"type": "integer"}, "quote": {"type": "string"}, "section": {"type": "string"}}}}}},
    "penaltyClause":    {"type": "object", "required": ["exists"], "properties": {"exists": {"type": "boolean"}, "details": {"type": "string"}, "capPercent": {"type": "number"}, "evidence": {"type": "array", "items": {"type": "object", "required": ["page", "quote"], "properties": {"page": {"type": "integer"}, "quote": {"type": "string"}, "section": {"type": "string"}}}}}},
    "kvkkGdpr":         {"type": "object", "required": ["exists"], "properties": {"exists": {"type": "boolean"}, "details": {"type": "string"}, "evidence": {"type": "array", "items": {"type": "object", "required": ["page", "quote"], "properties": {"page": {"type": "integer"}, "quote": {"type": "string"}, "section": {"type": "string"}}}}}},
    "redFlags":         {"type": "array", "items": {"type": "object", "required": ["flag"], "properties": {"flag": {"type": "string"}, "evidence": {"type": "array", "items": {"type": "object", "required": ["page", "quote"], "properties": {"page": {"type": "integer"}, "quote": {"type": "string"}, "section": {"type": "string"}}}}}}}
  }
}`

const auditPrompt = `You are an expert procurement and auditing assistant. Your task is to extract structured audit information from unstructured text.

INSTRUCTIONS:
1. Analyze the provided text carefully and identify all relevant procurement/audit information
2. Extract the following fields if present:
   - type: The type of record (invoice, delivery, contract, payment, purchase_order, etc.)
   - amount: Any monetary value mentioned (extract as number, no currency symbols)
   - currency: Currency code if mentioned (USD, EUR, TRY, etc.)
   - vendor: Company name, supplier name, or vendor identifier
   - date: Any date mentioned (convert to ISO format YYYY-MM-DD if possible)
   - notes: Important notes, comments, or additional context
   - riskFlags: Any compliance issues, delays, discrepancies, or risk indicators mentioned
3. If a field is not present in the text, omit it (do not include null values)
4. Be precise and only extract information that is explicitly stated or clearly implied in the text

Output JSON schema:
%s

TEXT TO ANALYZE:
%s

Extract the audit information and return it as a single valid JSON object following the schema. Return only JSON, no prose.`

const auditSchema = `{
  "type": "object",
  "required": ["type"],
  "properties": {
    "type":      {"type": "string", "description": "Record type. ex: invoice, delivery, contract"},
    "amount":    {"type": "number", "description": "Monetary amount if present"},
    "currency":  {"type": "string", "description": "Currency code if present"},
    "vendor":    {"type": "string", "description": "Vendor/company name if present"},
    "date":      {"type": "string", "description": "ISO date if present"},
    "notes":     {"type": "string", "description": "Short free-text notes"},
    "riskFlags": {"type": "array", "items": {"type": "string"}, "description": "Any risk/compliance flags"}
  }
}`

// Extractor produces normalized records from document text by calling the
// Anthropic API under a fixed output schema, falling back to the local
// regex extractor on any failure. It holds no mutable state; independent
// documents may be extracted concurrently.
type Extractor struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewExtractor creates an Extractor. The client must be non-nil; a missing
// API key is a configuration error surfaced by the caller before this point.
func NewExtractor(client anthropic.Client, model string, maxTokens int64) *Extractor {
	return &Extractor{client: client, model: model, maxTokens: maxTokens}
}

// ExtractOffer extracts a vendor offer from ordered page texts. It returns
// an error only for configuration failures; every extraction failure
// degrades to the regex fallback instead.
func (e *Extractor) ExtractOffer(ctx context.Context, pages []model.PageText, filename string) (model.Offer, error) {
	if e.client == nil {
		return model.Offer{}, eris.New("extract: anthropic client not configured")
	}

	pageContext := formatPageContext(pages)
	prompt := fmt.Sprintf(offerPrompt, offerSchema, pageContext)

	resp, err := e.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     e.model,
		MaxTokens: e.maxTokens,
		Messages:  []anthropic.Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		if anthropic.IsQuotaError(err) {
			zap.L().Warn("extract: quota exceeded, using fallback",
				zap.String("filename", filename),
			)
		} else {
			zap.L().Warn("extract: request failed, using fallback",
				zap.String("filename", filename),
				zap.Error(err),
			)
		}
		return FallbackOffer(JoinPages(pages), filename), nil
	}

	resp.Usage.LogCost(e.model, "offer_extraction")

	offer, perr := parseOfferResponse(responseText(resp))
	if perr != nil {
		zap.L().Warn("extract: invalid offer response, using fallback",
			zap.String("filename", filename),
			zap.Error(perr),
		)
		return FallbackOffer(JoinPages(pages), filename), nil
	}

	return offer, nil
}

// ExtractAudit extracts a flat audit record from raw text. Same fallback
// contract as ExtractOffer; the extracted date is normalized to ISO form
// as a post-processing step.
func (e *Extractor) ExtractAudit(ctx context.Context, text string) (model.AuditRecord, error) {
	if e.client == nil {
		return model.AuditRecord{}, eris.New("extract: anthropic client not configured")
	}

	prompt := fmt.Sprintf(auditPrompt, auditSchema, text)

	resp, err := e.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     e.model,
		MaxTokens: e.maxTokens,
		Messages:  []anthropic.Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		if anthropic.IsQuotaError(err) {
			zap.L().Warn("extract: quota exceeded, using audit fallback")
		} else {
			zap.L().Warn("extract: request failed, using audit fallback", zap.Error(err))
		}
		return FallbackAudit(text), nil
	}

	resp.Usage.LogCost(e.model, "audit_extraction")

	record, perr := parseAuditResponse(responseText(resp))
	if perr != nil {
		zap.L().Warn("extract: invalid audit response, using fallback", zap.Error(perr))
		return FallbackAudit(text), nil
	}

	record.Date = NormalizeDate(record.Date)
	return record, nil
}

// parseOfferResponse parses and validates the model's offer JSON. Any
// problem here sends the caller to the fallback extractor.
func parseOfferResponse(text string) (model.Offer, error) {
	cleaned := cleanJSON(text)

	// Cheap probe before the strict unmarshal: a degenerate response
	// (empty or placeholder vendor) is not worth parsing further.
	vendor := gjson.Get(cleaned, "vendor.value").String()
	if strings.TrimSpace(vendor) == "" || strings.EqualFold(vendor, "Unknown Vendor") {
		return model.Offer{}, eris.New("extract: degenerate vendor in response")
	}

	var offer model.Offer
	if err := json.Unmarshal([]byte(cleaned), &offer); err != nil {
		return model.Offer{}, eris.Wrap(err, "extract: parse offer JSON")
	}

	if err := validateOffer(&offer); err != nil {
		return model.Offer{}, err
	}
	if offer.RedFlags == nil {
		offer.RedFlags = []model.RedFlag{}
	}

	return offer, nil
}

// validateOffer enforces the evidence contract on every value-bearing field.
func validateOffer(offer *model.Offer) error {
	if err := offer.Vendor.Validate(); err != nil {
		return eris.Wrap(err, "extract: vendor")
	}
	if offer.TotalPrice != nil {
		if err := offer.TotalPrice.Validate(); err != nil {
			return eris.Wrap(err, "extract: totalPrice")
		}
	}
	if offer.Currency != nil {
		if err := offer.Currency.Validate(); err != nil {
			return eris.Wrap(err, "extract: currency")
		}
	}
	if offer.LeadTimeDays != nil {
		if err := offer.LeadTimeDays.Validate(); err != nil {
			return eris.Wrap(err, "extract: leadTimeDays")
		}
	}
	if offer.PaymentTermsDays != nil {
		if err := offer.PaymentTermsDays.Validate(); err != nil {
			return eris.Wrap(err, "extract: paymentTermsDays")
		}
	}
	if offer.ValidityDays != nil {
		if err := offer.ValidityDays.Validate(); err != nil {
			return eris.Wrap(err, "extract: validityDays")
		}
	}
	return nil
}

func parseAuditResponse(text string) (model.AuditRecord, error) {
	cleaned := cleanJSON(text)

	var record model.AuditRecord
	if err := json.Unmarshal([]byte(cleaned), &record); err != nil {
		return model.AuditRecord{}, eris.Wrap(err, "extract: parse audit JSON")
	}
	if strings.TrimSpace(record.Type) == "" {
		return model.AuditRecord{}, eris.New("extract: missing record type in response")
	}
	if record.RiskFlags == nil {
		record.RiskFlags = []string{}
	}

	return record, nil
}

// formatPageContext renders pages with explicit markers so the model can
// cite exact page numbers in evidence.
func formatPageContext(pages []model.PageText) string {
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = fmt.Sprintf("--- PAGE %d ---\n%s", p.Page, p.Text)
	}
	return strings.Join(parts, "\n\n")
}

// responseText concatenates the text content blocks of a response.
func responseText(resp *anthropic.MessageResponse) string {
	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String()
}

// cleanJSON strips markdown code fences and any prose around the outermost
// JSON object.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}
