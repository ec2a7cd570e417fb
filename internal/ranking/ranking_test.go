package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procurelens/procure-cli/internal/model"
)

func priced(price float64, leadDays int) model.Offer {
	return model.Offer{
		TotalPrice:   model.NewField(price, model.Evidence{Page: 1, Quote: "price"}),
		LeadTimeDays: model.NewField(leadDays, model.Evidence{Page: 1, Quote: "lead"}),
	}
}

func TestRankOrdersByTotalScore(t *testing.T) {
	candidates := []Candidate{
		{Vendor: "SlowExpensive", Offer: priced(18000, 25), Feasibility: 100},
		{Vendor: "CheapFast", Offer: priced(14000, 10), Feasibility: 80},
	}

	result := Rank(candidates, DefaultWeights())

	require.Len(t, result.Offers, 2)
	assert.Equal(t, "CheapFast", result.Offers[0].Vendor)
	assert.Equal(t, "CheapFast", result.Recommendation)

	// 0.4*100 + 0.4*80 + 0.2*100
	assert.InDelta(t, 92, result.Offers[0].TotalScore, 1e-9)
	// 0.4*0 + 0.4*100 + 0.2*0
	assert.InDelta(t, 40, result.Offers[1].TotalScore, 1e-9)
}

func TestRankPriceScoreAnchors(t *testing.T) {
	tests := []struct {
		name  string
		price float64
		want  float64
	}{
		{"at low anchor", 14000, 100},
		{"midpoint", 16000, 50},
		{"at high anchor", 18000, 0},
		{"below anchor clamped", 10000, 100},
		{"above anchor clamped", 25000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Rank([]Candidate{{Vendor: "V", Offer: priced(tt.price, 10)}}, DefaultWeights())
			assert.InDelta(t, tt.want, result.Offers[0].PriceScore, 1e-9)
		})
	}
}

func TestRankSpeedScoreAnchors(t *testing.T) {
	tests := []struct {
		name string
		lead int
		want float64
	}{
		{"at fast anchor", 10, 100},
		{"at slow anchor", 25, 0},
		{"faster than anchor clamped", 3, 100},
		{"slower than anchor clamped", 60, 0},
		{"midway", 17, 53.333333333},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Rank([]Candidate{{Vendor: "V", Offer: priced(14000, tt.lead)}}, DefaultWeights())
			assert.InDelta(t, tt.want, result.Offers[0].SpeedScore, 1e-6)
		})
	}
}

func TestRankAbsentFieldsScoreNeutral(t *testing.T) {
	result := Rank([]Candidate{{Vendor: "Sparse", Offer: model.Offer{}, Feasibility: 70}}, DefaultWeights())

	require.Len(t, result.Offers, 1)
	assert.InDelta(t, 50, result.Offers[0].PriceScore, 1e-9)
	assert.InDelta(t, 50, result.Offers[0].SpeedScore, 1e-9)
	// 0.4*50 + 0.4*70 + 0.2*50
	assert.InDelta(t, 58, result.Offers[0].TotalScore, 1e-9)
}

func TestRankZeroWeightsSplitEqually(t *testing.T) {
	result := Rank([]Candidate{{Vendor: "V", Offer: priced(14000, 25), Feasibility: 90}}, Weights{})

	assert.InDelta(t, 1.0/3.0, result.Weights.Price, 1e-9)
	// (100 + 90 + 0) / 3
	assert.InDelta(t, 63.333333333, result.Offers[0].TotalScore, 1e-6)
}

func TestRankCustomWeightsNormalized(t *testing.T) {
	// Raw weights sum to 2; the split must behave like 0.5/0.25/0.25.
	result := Rank([]Candidate{{Vendor: "V", Offer: priced(14000, 10), Feasibility: 60}}, Weights{Price: 1, Feasibility: 0.5, Speed: 0.5})

	assert.InDelta(t, 0.5*100+0.25*60+0.25*100, result.Offers[0].TotalScore, 1e-9)
}

func TestRankEmptyInput(t *testing.T) {
	result := Rank(nil, DefaultWeights())
	assert.Empty(t, result.Offers)
	assert.Empty(t, result.Recommendation)
}

func TestRankEqualScoresKeepInputOrder(t *testing.T) {
	a := Candidate{Vendor: "First", Offer: priced(14000, 10), Feasibility: 80}
	b := Candidate{Vendor: "Second", Offer: priced(14000, 10), Feasibility: 80}

	result := Rank([]Candidate{a, b}, DefaultWeights())

	assert.Equal(t, "First", result.Offers[0].Vendor)
	assert.Equal(t, "Second", result.Offers[1].Vendor)
}
