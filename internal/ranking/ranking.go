package ranking

import "github.com/procurelens/procure-cli/internal/model"

// Price and speed anchors for the 0-100 linear scales. A price at the
// low anchor scores 100 and loses the full hundred points over one span;
// lead times work the same way.
const (
	priceAnchor = 14000.0
	priceSpan   = 4000.0
	speedAnchor = 10.0
	speedSpan   = 15.0

	// neutralScore is used when an offer carries no signal for a
	// dimension, so absence neither rewards nor punishes.
	neutralScore = 50.0
)

// Weights balances the three ranking dimensions. A zero sum falls back
// to an equal split.
type Weights struct {
	Price       float64 `json:"price" yaml:"price"`
	Feasibility float64 `json:"feasibility" yaml:"feasibility"`
	Speed       float64 `json:"speed" yaml:"speed"`
}

// DefaultWeights returns the standard ranking weights.
func DefaultWeights() Weights {
	return Weights{Price: 0.4, Feasibility: 0.4, Speed: 0.2}
}

func (w Weights) normalize() Weights {
	sum := w.Price + w.Feasibility + w.Speed
	if sum <= 0 {
		third := 1.0 / 3.0
		return Weights{Price: third, Feasibility: third, Speed: third}
	}
	return Weights{Price: w.Price / sum, Feasibility: w.Feasibility / sum, Speed: w.Speed / sum}
}

// Candidate pairs an extracted offer with its feasibility score.
type Candidate struct {
	Vendor      string      `json:"vendor"`
	Offer       model.Offer `json:"offer"`
	Feasibility float64     `json:"feasibility"`
}

// RankedOffer is one candidate's scores across all three dimensions.
type RankedOffer struct {
	Vendor           string  `json:"vendor"`
	PriceScore       float64 `json:"priceScore"`
	SpeedScore       float64 `json:"speedScore"`
	FeasibilityScore float64 `json:"feasibilityScore"`
	TotalScore       float64 `json:"totalScore"`
}

// Ranking is the ordered comparison result. Recommendation names the
// top-ranked vendor, or is empty when there are no candidates.
type Ranking struct {
	Offers         []RankedOffer `json:"offers"`
	Recommendation string        `json:"recommendation"`
	Weights        Weights       `json:"weights"`
}

// Rank scores each candidate on price, speed and feasibility, combines
// the three with the given weights, and orders the result best first.
func Rank(candidates []Candidate, weights Weights) Ranking {
	w := weights.normalize()

	offers := make([]RankedOffer, 0, len(candidates))
	for _, c := range candidates {
		ranked := RankedOffer{
			Vendor:           c.Vendor,
			PriceScore:       priceScore(c.Offer),
			SpeedScore:       speedScore(c.Offer),
			FeasibilityScore: c.Feasibility,
		}
		ranked.TotalScore = w.Price*ranked.PriceScore +
			w.Feasibility*ranked.FeasibilityScore +
			w.Speed*ranked.SpeedScore
		offers = append(offers, ranked)
	}

	sortByTotal(offers)

	result := Ranking{Offers: offers, Weights: w}
	if len(offers) > 0 {
		result.Recommendation = offers[0].Vendor
	}
	return result
}

func priceScore(offer model.Offer) float64 {
	if offer.TotalPrice == nil {
		return neutralScore
	}
	return clamp(100-((offer.TotalPrice.Value-priceAnchor)/priceSpan)*100, 0, 100)
}

func speedScore(offer model.Offer) float64 {
	if offer.LeadTimeDays == nil {
		return neutralScore
	}
	return clamp(100-((float64(offer.LeadTimeDays.Value)-speedAnchor)/speedSpan)*100, 0, 100)
}

// sortByTotal orders offers by total score descending. Insertion sort is
// fine for the handful of offers in a comparison, and keeps equal scores
// in input order.
func sortByTotal(offers []RankedOffer) {
	for i := 1; i < len(offers); i++ {
		current := offers[i]
		j := i - 1
		for j >= 0 && offers[j].TotalScore < current.TotalScore {
			offers[j+1] = offers[j]
			j--
		}
		offers[j+1] = current
	}
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
