// Package rules implements the deterministic validation pass that runs over
// flat audit records before any model-backed analysis. It is pure: no I/O,
// no errors, absent fields are skipped.
package rules

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/procurelens/procure-cli/internal/model"
)

// Severity classifies how serious a rule violation is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Result is the outcome of a single rule.
type Result struct {
	Rule     string   `json:"rule"`
	Passed   bool     `json:"passed"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// Report aggregates all rule results for one record. Score is 0-100,
// higher = more issues.
type Report struct {
	Passed  bool     `json:"passed"`
	Score   int      `json:"score"`
	Results []Result `json:"results"`
}

var isoDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Validate runs every rule against the record in fixed order, accumulating
// penalties. Penalties are additive and order-independent; the order only
// determines the order of Results.
func Validate(data model.AuditRecord) Report {
	var results []Result
	issues := 0

	// Rule 1: negative amount.
	if data.Amount != nil && *data.Amount < 0 {
		results = append(results, Result{
			Rule:     "negative_amount",
			Passed:   false,
			Message:  "Amount cannot be negative",
			Severity: SeverityCritical,
		})
		issues += 10
	}

	// Rule 2: amount present without currency.
	if data.Amount != nil && *data.Amount > 0 && data.Currency == "" {
		results = append(results, Result{
			Rule:     "missing_currency",
			Passed:   false,
			Message:  "Currency is required when amount is present",
			Severity: SeverityHigh,
		})
		issues += 5
	}

	// Rule 3: future date. Date-only comparison, time of day stripped.
	if data.Date != "" {
		if recordDate, ok := parseDate(data.Date); ok {
			today := truncateToDay(time.Now())
			if recordDate.After(today) {
				results = append(results, Result{
					Rule:     "future_date",
					Passed:   false,
					Message:  fmt.Sprintf("Date %s is in the future", data.Date),
					Severity: SeverityHigh,
				})
				issues += 8
			}
		}
	}

	// Rule 4: unusually large amount (potential typo).
	if data.Amount != nil && *data.Amount > 1_000_000 {
		results = append(results, Result{
			Rule:     "unusually_large_amount",
			Passed:   false,
			Message:  "Amount exceeds $1M - please verify",
			Severity: SeverityHigh,
		})
		issues += 5
	}

	// Rule 5: missing vendor for invoice/PO.
	if (data.Type == "invoice" || data.Type == "purchase_order") && data.Vendor == "" {
		results = append(results, Result{
			Rule:     "missing_vendor",
			Passed:   false,
			Message:  "Vendor is required for invoices and purchase orders",
			Severity: SeverityHigh,
		})
		issues += 5
	}

	// Rule 6: date format.
	if data.Date != "" && !isoDateRe.MatchString(data.Date) {
		results = append(results, Result{
			Rule:     "invalid_date_format",
			Passed:   false,
			Message:  "Date must be in ISO format (YYYY-MM-DD)",
			Severity: SeverityMedium,
		})
		issues += 3
	}

	// Rule 7: empty type.
	if strings.TrimSpace(data.Type) == "" {
		results = append(results, Result{
			Rule:     "missing_type",
			Passed:   false,
			Message:  "Record type is required",
			Severity: SeverityCritical,
		})
		issues += 10
	}

	if len(results) == 0 {
		results = append(results, Result{
			Rule:     "all_checks_passed",
			Passed:   true,
			Message:  "All validation rules passed",
			Severity: SeverityLow,
		})
	}

	score := issues
	if score > 100 {
		score = 100
	}

	passed := true
	for _, r := range results {
		if !r.Passed {
			passed = false
			break
		}
	}

	return Report{Passed: passed, Score: score, Results: results}
}

// dateLayouts covers ISO, US slash dates, and natural-language dates.
var dateLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"2 January 2006",
}

// parseDate attempts a calendar parse against the known layouts.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
