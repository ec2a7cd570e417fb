package feasibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procurelens/procure-cli/internal/model"
)

func intField(v int, quote string) *model.Field[int] {
	return model.NewField(v, model.Evidence{Page: 1, Quote: quote})
}

func floatField(v float64, quote string) *model.Field[float64] {
	return model.NewField(v, model.Evidence{Page: 1, Quote: quote})
}

func stringField(v, quote string) *model.Field[string] {
	return model.NewField(v, model.Evidence{Page: 1, Quote: quote})
}

// completeOffer has every expected field present, both clauses in place,
// and no red flags.
func completeOffer() model.Offer {
	return model.Offer{
		Vendor:           *stringField("TechNova Solutions", "Vendor: TechNova Solutions"),
		TotalPrice:       floatField(15000, "Total: $15,000"),
		Currency:         stringField("USD", "USD"),
		LeadTimeDays:     intField(14, "Lead Time: 14 days"),
		PaymentTermsDays: intField(30, "Net 30"),
		ValidityDays:     intField(60, "Valid for 60 days"),
		PenaltyClause:    &model.Clause{Exists: true, Evidence: []model.Evidence{{Page: 2, Quote: "0.5% per day"}}},
		KvkkGdpr:         &model.Clause{Exists: true, Evidence: []model.Evidence{{Page: 3, Quote: "GDPR compliant"}}},
		RedFlags:         []model.RedFlag{},
	}
}

func TestScoreCompleteOffer(t *testing.T) {
	result := Score(completeOffer(), 15000, DefaultWeights())

	// Lead 14/90 and Net 30 are the only risk sources:
	// 0.20*15.556 + 0.15*50 = 10.611
	assert.InDelta(t, 89.389, result.FeasibilityScore, 0.01)
	assert.InDelta(t, 100, result.Components[FactorPenaltyClause], 1e-9)
	assert.InDelta(t, 100, result.Components[FactorGdprCompliance], 1e-9)
	assert.InDelta(t, 100, result.Components[FactorPriceOutlier], 1e-9)
	assert.InDelta(t, 100, result.Components[FactorMissingFields], 1e-9)
	assert.InDelta(t, 50, result.Components[FactorPaymentTerms], 1e-9)
}

func TestScoreMissingPenaltyClauseOnly(t *testing.T) {
	offer := completeOffer()
	offer.PenaltyClause = &model.Clause{Exists: false}
	offer.LeadTimeDays = intField(0, "immediate")
	offer.PaymentTermsDays = intField(0, "Payment due on delivery")

	result := Score(offer, 15000, DefaultWeights())

	// Penalty clause is the sole risk factor at the default 0.10 weight.
	assert.InDelta(t, 90, result.FeasibilityScore, 1e-9)
	assert.InDelta(t, 0, result.Components[FactorPenaltyClause], 1e-9)

	var penalty []Contribution
	for _, ev := range result.Evidence {
		if ev.Field == FactorPenaltyClause {
			penalty = append(penalty, ev)
		} else {
			assert.InDelta(t, 0, ev.Contribution, 1e-9, "field %s", ev.Field)
		}
	}
	require.Len(t, penalty, 1)
	assert.Equal(t, 1, penalty[0].Page)
	assert.Equal(t, "No penalty clause found in document", penalty[0].Quote)
	assert.InDelta(t, 100, penalty[0].Component, 1e-9)
	assert.InDelta(t, 10, penalty[0].Contribution, 1e-9)
}

func TestScoreNonPositiveLeadTimeCarriesNoRisk(t *testing.T) {
	offer := completeOffer()
	offer.LeadTimeDays = intField(-900, "ships immediately")

	result := Score(offer, 15000, DefaultWeights())

	assert.InDelta(t, 100, result.Components[FactorLeadTime], 1e-9)
	for factor, component := range result.Components {
		assert.GreaterOrEqual(t, component, 0.0, "component %s", factor)
		assert.LessOrEqual(t, component, 100.0, "component %s", factor)
	}
}

func TestScoreEmptyOffer(t *testing.T) {
	result := Score(model.Offer{}, 0, DefaultWeights())

	// Absent clauses and all eight fields missing:
	// 0.10*100 + 0.15*100 + 0.05*100 = 30
	assert.InDelta(t, 70, result.FeasibilityScore, 1e-9)
	assert.GreaterOrEqual(t, result.FeasibilityScore, 0.0)
	assert.LessOrEqual(t, result.FeasibilityScore, 100.0)
}

func TestScoreLongLeadTimeAdaptsWeights(t *testing.T) {
	offer := completeOffer()
	offer.LeadTimeDays = intField(75, "Lead Time: 75 days")

	result := Score(offer, 15000, DefaultWeights())

	// leadTime 0.20+0.05, paymentTerms and priceOutlier scaled by 0.95,
	// then one normalization over the 1.0375 total.
	assert.InDelta(t, 0.25/1.0375, result.Weights.LeadTime, 1e-9)
	assert.InDelta(t, 0.1425/1.0375, result.Weights.PaymentTerms, 1e-9)
	assert.InDelta(t, 0.095/1.0375, result.Weights.PriceOutlier, 1e-9)
	assert.InDelta(t, 1.0, result.Weights.Sum(), 1e-9)
}

func TestScoreManyRedFlagsAdaptsWeights(t *testing.T) {
	offer := completeOffer()
	offer.RedFlags = []model.RedFlag{
		{Flag: "No references provided"},
		{Flag: "Unusual payment schedule"},
		{Flag: "Subcontractor not named"},
	}

	result := Score(offer, 15000, DefaultWeights())

	assert.InDelta(t, 0.35/1.025, result.Weights.RedFlags, 1e-9)
	assert.InDelta(t, 0.18/1.025, result.Weights.LeadTime, 1e-9)
	assert.InDelta(t, 1.0, result.Weights.Sum(), 1e-9)
}

func TestScoreWeightsAlwaysNormalized(t *testing.T) {
	tests := []struct {
		name  string
		offer model.Offer
	}{
		{"empty offer", model.Offer{}},
		{"complete offer", completeOffer()},
		{"long lead and flagged", func() model.Offer {
			o := completeOffer()
			o.LeadTimeDays = intField(80, "80 days")
			o.RedFlags = []model.RedFlag{{Flag: "a"}, {Flag: "b"}, {Flag: "c"}, {Flag: "d"}}
			return o
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Score(tt.offer, 100, DefaultWeights())
			assert.InDelta(t, 1.0, result.Weights.Sum(), 1e-9)
		})
	}
}

func TestScorePriceOutlier(t *testing.T) {
	tests := []struct {
		name      string
		price     float64
		benchmark float64
		want      float64 // component score
	}{
		{"at benchmark", 100, 100, 100},
		{"within band", 110, 100, 100},
		{"band edge", 120, 100, 100},
		{"fifty percent over", 150, 100, 50},
		{"more than double", 250, 100, 0},
		{"no benchmark", 150, 0, 100},
		{"non-positive price", -50, 100, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offer := completeOffer()
			offer.TotalPrice = floatField(tt.price, "price")
			result := Score(offer, tt.benchmark, DefaultWeights())
			assert.InDelta(t, tt.want, result.Components[FactorPriceOutlier], 1e-9)
		})
	}
}

func TestScoreRedFlagEvidenceSplitsContribution(t *testing.T) {
	offer := completeOffer()
	offer.RedFlags = []model.RedFlag{
		{Flag: "Overdue references", Evidence: []model.Evidence{{Page: 2, Quote: "references overdue"}}},
		{Flag: "Damaged samples", Evidence: []model.Evidence{{Page: 4, Quote: "samples arrived damaged"}}},
	}

	result := Score(offer, 15000, DefaultWeights())

	// Two flags: risk 0.4, component 40, weighted 10, split 5 per flag.
	var flagEntries []Contribution
	for _, ev := range result.Evidence {
		if ev.Field == FactorRedFlags {
			flagEntries = append(flagEntries, ev)
		}
	}
	require.Len(t, flagEntries, 2)
	for _, ev := range flagEntries {
		assert.InDelta(t, 40, ev.Component, 1e-9)
		assert.InDelta(t, 5, ev.Contribution, 1e-9)
	}
	assert.Equal(t, 2, flagEntries[0].Page)
	assert.Equal(t, "references overdue", flagEntries[0].Quote)
	assert.Equal(t, "samples arrived damaged", flagEntries[1].Quote)
}

func TestScoreQuotelessRedFlagEmitsNoEntry(t *testing.T) {
	offer := completeOffer()
	offer.RedFlags = []model.RedFlag{
		{Flag: "Overdue references", Evidence: []model.Evidence{{Page: 2, Quote: "references overdue"}}},
		{Flag: "Damaged samples"},
	}

	result := Score(offer, 15000, DefaultWeights())

	// The quoteless flag still raises the risk component but has nothing
	// to cite, so only the quoted flag appears, carrying its half share.
	assert.InDelta(t, 60, result.Components[FactorRedFlags], 1e-9)
	var flagEntries []Contribution
	for _, ev := range result.Evidence {
		if ev.Field == FactorRedFlags {
			flagEntries = append(flagEntries, ev)
		}
	}
	require.Len(t, flagEntries, 1)
	assert.Equal(t, "references overdue", flagEntries[0].Quote)
	assert.InDelta(t, 40, flagEntries[0].Component, 1e-9)
	assert.InDelta(t, 5, flagEntries[0].Contribution, 1e-9)
}

func TestScoreEmitsEntryPerEvidenceItem(t *testing.T) {
	offer := completeOffer()
	offer.LeadTimeDays = model.NewField(45,
		model.Evidence{Page: 2, Quote: "Delivery within 45 days", Section: "Delivery Terms"},
		model.Evidence{Page: 5, Quote: "lead time of 45 calendar days"},
	)

	result := Score(offer, 15000, DefaultWeights())

	var leadEntries []Contribution
	for _, ev := range result.Evidence {
		if ev.Field == FactorLeadTime {
			leadEntries = append(leadEntries, ev)
		}
	}
	require.Len(t, leadEntries, 2)

	// 45/90 lead risk: component 50, contribution 0.20*50 = 10 on each entry.
	assert.Equal(t, 2, leadEntries[0].Page)
	assert.Equal(t, 5, leadEntries[1].Page)
	for _, ev := range leadEntries {
		assert.InDelta(t, 50, ev.Component, 1e-9)
		assert.InDelta(t, 10, ev.Contribution, 1e-9)
	}
}

func TestScoreAbsentClauseWithQuotePrefersDocument(t *testing.T) {
	offer := completeOffer()
	offer.KvkkGdpr = &model.Clause{Exists: false, Evidence: []model.Evidence{
		{Page: 6, Quote: "data processing addendum expired"},
	}}

	result := Score(offer, 15000, DefaultWeights())

	// The clause is absent but the document says why; the real quote
	// wins over the synthesized page-1 placeholder.
	var gdprEntries []Contribution
	for _, ev := range result.Evidence {
		if ev.Field == FactorGdprCompliance {
			gdprEntries = append(gdprEntries, ev)
		}
	}
	require.Len(t, gdprEntries, 1)
	assert.Equal(t, 6, gdprEntries[0].Page)
	assert.Equal(t, "data processing addendum expired", gdprEntries[0].Quote)
	assert.InDelta(t, 100, gdprEntries[0].Component, 1e-9)
	assert.InDelta(t, 15, gdprEntries[0].Contribution, 1e-9)
}

func TestScoreZeroWeightsFallBackToDefaults(t *testing.T) {
	result := Score(completeOffer(), 15000, Weights{})
	assert.InDelta(t, 1.0, result.Weights.Sum(), 1e-9)
	assert.InDelta(t, 89.389, result.FeasibilityScore, 0.01)
}
