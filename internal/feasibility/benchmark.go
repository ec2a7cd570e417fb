package feasibility

import "github.com/procurelens/procure-cli/internal/model"

// BenchmarkPrice computes the reference price for a batch of offers as
// the mean of all strictly positive prices. Offers without a price, or
// with a non-positive one, are excluded. Returns 0 when no offer
// qualifies, which disables the price-outlier factor.
func BenchmarkPrice(offers []model.Offer) float64 {
	sum := 0.0
	count := 0
	for _, offer := range offers {
		if offer.TotalPrice == nil || offer.TotalPrice.Value <= 0 {
			continue
		}
		sum += offer.TotalPrice.Value
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}
