package feasibility

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// LoadWeights reads factor weights from a YAML file with a top-level
// "weights" key. Values need not sum to 1; Score normalizes them.
// Negative weights are rejected.
func LoadWeights(path string) (Weights, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Weights{}, eris.Wrapf(err, "feasibility: read weights %s", path)
	}

	var wrapper struct {
		Weights Weights `yaml:"weights"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return Weights{}, eris.Wrap(err, "feasibility: parse weights")
	}

	w := wrapper.Weights
	for name, v := range map[string]float64{
		FactorLeadTime:       w.LeadTime,
		FactorPaymentTerms:   w.PaymentTerms,
		FactorPenaltyClause:  w.PenaltyClause,
		FactorGdprCompliance: w.GdprCompliance,
		FactorRedFlags:       w.RedFlags,
		FactorPriceOutlier:   w.PriceOutlier,
		FactorMissingFields:  w.MissingFields,
	} {
		if v < 0 {
			return Weights{}, eris.Errorf("feasibility: negative weight for %s", name)
		}
	}
	if w.Sum() <= 0 {
		return Weights{}, eris.New("feasibility: weights sum to zero")
	}

	return w, nil
}
