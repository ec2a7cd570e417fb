package feasibility

import (
	"math"

	"github.com/procurelens/procure-cli/internal/model"
)

// Risk factor names used in component maps and evidence entries.
const (
	FactorLeadTime       = "leadTime"
	FactorPaymentTerms   = "paymentTerms"
	FactorPenaltyClause  = "penaltyClause"
	FactorGdprCompliance = "gdprCompliance"
	FactorRedFlags       = "redFlags"
	FactorPriceOutlier   = "priceOutlier"
	FactorMissingFields  = "missingFields"
)

// Weights holds the relative importance of each risk factor. They are
// normalized to sum to 1 before scoring, so callers may supply any
// non-negative values.
type Weights struct {
	LeadTime       float64 `json:"leadTime" yaml:"leadTime"`
	PaymentTerms   float64 `json:"paymentTerms" yaml:"paymentTerms"`
	PenaltyClause  float64 `json:"penaltyClause" yaml:"penaltyClause"`
	GdprCompliance float64 `json:"gdprCompliance" yaml:"gdprCompliance"`
	RedFlags       float64 `json:"redFlags" yaml:"redFlags"`
	PriceOutlier   float64 `json:"priceOutlier" yaml:"priceOutlier"`
	MissingFields  float64 `json:"missingFields" yaml:"missingFields"`
}

// DefaultWeights returns the standard factor weights.
func DefaultWeights() Weights {
	return Weights{
		LeadTime:       0.20,
		PaymentTerms:   0.15,
		PenaltyClause:  0.10,
		GdprCompliance: 0.15,
		RedFlags:       0.25,
		PriceOutlier:   0.10,
		MissingFields:  0.05,
	}
}

// Sum returns the raw weight total before normalization.
func (w Weights) Sum() float64 {
	return w.LeadTime + w.PaymentTerms + w.PenaltyClause + w.GdprCompliance +
		w.RedFlags + w.PriceOutlier + w.MissingFields
}

// normalize scales the weights to sum to 1. A zero total falls back to
// the defaults.
func (w Weights) normalize() Weights {
	sum := w.Sum()
	if sum <= 0 {
		return DefaultWeights().normalize()
	}
	return Weights{
		LeadTime:       w.LeadTime / sum,
		PaymentTerms:   w.PaymentTerms / sum,
		PenaltyClause:  w.PenaltyClause / sum,
		GdprCompliance: w.GdprCompliance / sum,
		RedFlags:       w.RedFlags / sum,
		PriceOutlier:   w.PriceOutlier / sum,
		MissingFields:  w.MissingFields / sum,
	}
}

// Contribution ties a scored risk factor back to the document evidence
// that produced it. Contribution is the factor's weighted share of the
// total risk, on the 0-100 scale.
type Contribution struct {
	Field        string  `json:"field"`
	Page         int     `json:"page"`
	Quote        string  `json:"quote"`
	Component    float64 `json:"component"`
	Contribution float64 `json:"contribution"`
}

// Result is the scored feasibility of a single offer. Components holds
// per-factor scores on the 0-100 scale (100 = no risk from that factor);
// Weights are the adapted, normalized weights actually applied.
type Result struct {
	FeasibilityScore float64            `json:"feasibilityScore"`
	Components       map[string]float64 `json:"components"`
	Weights          Weights            `json:"weights"`
	Evidence         []Contribution     `json:"evidence"`
}

// Score computes the weighted feasibility of an offer against a benchmark
// price. The weights adapt to the offer before normalization: very long
// lead times shift weight toward delivery risk, and heavily flagged
// offers shift weight toward red flags.
func Score(offer model.Offer, benchmark float64, weights Weights) Result {
	w := adaptWeights(offer, weights).normalize()

	risks := map[string]float64{
		FactorLeadTime:       leadTimeRisk(offer),
		FactorPaymentTerms:   paymentTermsRisk(offer),
		FactorPenaltyClause:  clauseRisk(offer.PenaltyClause),
		FactorGdprCompliance: clauseRisk(offer.KvkkGdpr),
		FactorRedFlags:       redFlagRisk(offer),
		FactorPriceOutlier:   priceOutlierRisk(offer, benchmark),
		FactorMissingFields:  missingFieldRisk(offer),
	}

	factorWeights := map[string]float64{
		FactorLeadTime:       w.LeadTime,
		FactorPaymentTerms:   w.PaymentTerms,
		FactorPenaltyClause:  w.PenaltyClause,
		FactorGdprCompliance: w.GdprCompliance,
		FactorRedFlags:       w.RedFlags,
		FactorPriceOutlier:   w.PriceOutlier,
		FactorMissingFields:  w.MissingFields,
	}

	totalRisk := 0.0
	components := make(map[string]float64, len(risks))
	for factor, risk := range risks {
		riskComponent := risk * 100
		components[factor] = 100 - riskComponent
		totalRisk += factorWeights[factor] * riskComponent
	}

	return Result{
		FeasibilityScore: 100 - clamp(totalRisk, 0, 100),
		Components:       components,
		Weights:          w,
		Evidence:         collectEvidence(offer, risks, factorWeights),
	}
}

// adaptWeights returns a copy of the weights adjusted for offer
// characteristics. Normalization happens once, after all adjustments.
func adaptWeights(offer model.Offer, w Weights) Weights {
	if offer.LeadTimeDays != nil && offer.LeadTimeDays.Value > 60 {
		w.LeadTime += 0.05
		w.PaymentTerms *= 0.95
		w.PriceOutlier *= 0.95
	}

	if len(offer.RedFlags) >= 3 {
		w.RedFlags += 0.10
		w.LeadTime *= 0.90
		w.PaymentTerms *= 0.90
		w.PenaltyClause *= 0.90
		w.GdprCompliance *= 0.90
		w.PriceOutlier *= 0.90
		w.MissingFields *= 0.90
	}

	return w
}

// leadTimeRisk scales linearly to 1.0 at a 90-day lead time. Absent or
// non-positive lead times carry no signal.
func leadTimeRisk(offer model.Offer) float64 {
	if offer.LeadTimeDays == nil || offer.LeadTimeDays.Value <= 0 {
		return 0
	}
	return math.Min(float64(offer.LeadTimeDays.Value)/90, 1)
}

// paymentTermsRisk treats immediate payment as fully favorable; risk
// rises linearly toward Net 60 and saturates beyond it.
func paymentTermsRisk(offer model.Offer) float64 {
	if offer.PaymentTermsDays == nil {
		return 0
	}
	favorable := clamp((60-float64(offer.PaymentTermsDays.Value))/60, 0, 1)
	return 1 - favorable
}

func clauseRisk(clause *model.Clause) float64 {
	if clause != nil && clause.Exists {
		return 0
	}
	return 1
}

// redFlagRisk saturates at five flags.
func redFlagRisk(offer model.Offer) float64 {
	return math.Min(float64(len(offer.RedFlags))/5, 1)
}

// priceOutlierRisk is zero within a ±20% band around the benchmark, then
// scales with relative deviation. No benchmark or no price means no
// signal, not risk.
func priceOutlierRisk(offer model.Offer, benchmark float64) float64 {
	if offer.TotalPrice == nil || offer.TotalPrice.Value <= 0 || benchmark <= 0 {
		return 0
	}
	deviation := math.Abs(offer.TotalPrice.Value-benchmark) / benchmark
	if deviation <= 0.20 {
		return 0
	}
	return math.Min(deviation, 1)
}

func missingFieldRisk(offer model.Offer) float64 {
	return float64(offer.MissingFieldCount()) / float64(len(model.ExpectedOfferFields))
}

// collectEvidence builds the per-factor evidence trail: one entry per
// source evidence item on every populated value-bearing field, riskless
// entries included with contribution 0. Clause factors cite the clause's
// own quotes when it has any; a clause missing outright gets a
// synthesized page-1 entry, since absence has nothing to quote. Red flag
// entries split the factor's contribution evenly across the flags.
func collectEvidence(offer model.Offer, risks, weights map[string]float64) []Contribution {
	var out []Contribution

	add := func(factor string, ev model.Evidence) {
		component := risks[factor] * 100
		out = append(out, Contribution{
			Field:        factor,
			Page:         ev.Page,
			Quote:        ev.Quote,
			Component:    component,
			Contribution: component * weights[factor],
		})
	}

	if offer.LeadTimeDays != nil {
		for _, ev := range offer.LeadTimeDays.Evidence {
			add(FactorLeadTime, ev)
		}
	}

	if offer.PaymentTermsDays != nil {
		for _, ev := range offer.PaymentTermsDays.Evidence {
			add(FactorPaymentTerms, ev)
		}
	}

	out = append(out, clauseEvidence(FactorPenaltyClause, offer.PenaltyClause,
		"No penalty clause found in document", risks, weights)...)
	out = append(out, clauseEvidence(FactorGdprCompliance, offer.KvkkGdpr,
		"No GDPR/KVKK compliance found", risks, weights)...)

	if n := len(offer.RedFlags); n > 0 {
		component := risks[FactorRedFlags] * 100
		share := component * weights[FactorRedFlags] / float64(n)
		for _, flag := range offer.RedFlags {
			for _, ev := range flag.Evidence {
				out = append(out, Contribution{
					Field:        FactorRedFlags,
					Page:         ev.Page,
					Quote:        ev.Quote,
					Component:    component,
					Contribution: share,
				})
			}
		}
	}

	if offer.TotalPrice != nil {
		for _, ev := range offer.TotalPrice.Evidence {
			add(FactorPriceOutlier, ev)
		}
	}

	return out
}

func clauseEvidence(factor string, clause *model.Clause, missingQuote string, risks, weights map[string]float64) []Contribution {
	component := risks[factor] * 100
	contribution := component * weights[factor]

	if clause != nil && len(clause.Evidence) > 0 {
		entries := make([]Contribution, 0, len(clause.Evidence))
		for _, ev := range clause.Evidence {
			entries = append(entries, Contribution{
				Field:        factor,
				Page:         ev.Page,
				Quote:        ev.Quote,
				Component:    component,
				Contribution: contribution,
			})
		}
		return entries
	}

	if clause == nil || !clause.Exists {
		return []Contribution{{
			Field:        factor,
			Page:         1,
			Quote:        missingQuote,
			Component:    component,
			Contribution: contribution,
		}}
	}

	return nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
