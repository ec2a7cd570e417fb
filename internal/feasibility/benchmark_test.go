package feasibility

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/procurelens/procure-cli/internal/model"
)

func TestBenchmarkPrice(t *testing.T) {
	tests := []struct {
		name   string
		offers []model.Offer
		want   float64
	}{
		{"no offers", nil, 0},
		{"no prices", []model.Offer{{}, {}}, 0},
		{
			"two priced offers",
			[]model.Offer{
				{TotalPrice: floatField(100, "q")},
				{TotalPrice: floatField(200, "q")},
			},
			150,
		},
		{
			"non-positive prices excluded",
			[]model.Offer{
				{TotalPrice: floatField(0, "q")},
				{TotalPrice: floatField(-50, "q")},
				{TotalPrice: floatField(300, "q")},
			},
			300,
		},
		{
			"unpriced offers excluded from the mean",
			[]model.Offer{
				{},
				{TotalPrice: floatField(120, "q")},
			},
			120,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, BenchmarkPrice(tt.offers), 1e-9)
		})
	}
}
