package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/procurelens/procure-cli/internal/feasibility"
	"github.com/procurelens/procure-cli/internal/model"
	"github.com/procurelens/procure-cli/internal/ranking"
	"github.com/procurelens/procure-cli/internal/store"
)

var (
	analyzeWeightsFile string
	analyzeSave        bool
)

// analyzedOffer mirrors the server's per-offer analysis output.
type analyzedOffer struct {
	Vendor      string             `json:"vendor"`
	Filename    string             `json:"filename"`
	Offer       model.Offer        `json:"offer"`
	Feasibility feasibility.Result `json:"feasibility"`
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>...",
	Short: "Extract, score and rank vendor offers",
	Long:  "Extracts structured offers from the given documents, scores each against the batch benchmark price, and ranks them by price, feasibility and speed.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		weights, err := loadScoringWeights(analyzeWeightsFile, cfg)
		if err != nil {
			return err
		}

		extractor := newExtractor(cfg)
		offers := make([]model.Offer, len(args))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(4)
		for i, path := range args {
			g.Go(func() error {
				data, err := os.ReadFile(path)
				if err != nil {
					return eris.Wrapf(err, "read %s", path)
				}
				offer, err := extractor.ExtractOffer(gctx,
					[]model.PageText{{Page: 1, Text: string(data)}},
					filepath.Base(path),
				)
				if err != nil {
					return err
				}
				offers[i] = offer
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		benchmark := feasibility.BenchmarkPrice(offers)

		analyzed := make([]analyzedOffer, len(offers))
		candidates := make([]ranking.Candidate, len(offers))
		for i, offer := range offers {
			result := feasibility.Score(offer, benchmark, weights)
			analyzed[i] = analyzedOffer{
				Vendor:      offer.Vendor.Value,
				Filename:    filepath.Base(args[i]),
				Offer:       offer,
				Feasibility: result,
			}
			candidates[i] = ranking.Candidate{
				Vendor:      offer.Vendor.Value,
				Offer:       offer,
				Feasibility: result.FeasibilityScore,
			}
		}

		output := map[string]any{
			"offers":         analyzed,
			"benchmarkPrice": benchmark,
			"ranking":        ranking.Rank(candidates, ranking.DefaultWeights()),
		}

		if analyzeSave {
			st, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			rnk := output["ranking"].(ranking.Ranking)
			id := store.RFQID(rnk.Recommendation, benchmark, time.Now())
			payload, err := jsonMarshal(output)
			if err != nil {
				return err
			}
			if err := st.CreateRecord(ctx, store.Record{
				ID:      id,
				Kind:    store.KindRFQ,
				Vendor:  rnk.Recommendation,
				Payload: payload,
			}); err != nil {
				return err
			}
			zap.L().Info("analysis saved", zap.String("id", id))
		}

		return printJSON(output)
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeWeightsFile, "weights", "", "YAML file overriding feasibility weights")
	analyzeCmd.Flags().BoolVar(&analyzeSave, "save", false, "persist the analysis to the store")
	rootCmd.AddCommand(analyzeCmd)
}
