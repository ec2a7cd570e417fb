package server

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/procurelens/procure-cli/internal/feasibility"
	"github.com/procurelens/procure-cli/internal/model"
	"github.com/procurelens/procure-cli/internal/ranking"
	"github.com/procurelens/procure-cli/internal/store"
)

// maxConcurrentExtractions bounds parallel API calls during a batch
// analysis.
const maxConcurrentExtractions = 4

// Document is one uploaded offer document, already split into pages.
type Document struct {
	Filename string           `json:"filename"`
	Pages    []model.PageText `json:"pages"`
}

type analyzeRequest struct {
	Documents      []Document           `json:"documents"`
	ScoringWeights *feasibility.Weights `json:"scoringWeights,omitempty"`
	RankingWeights *ranking.Weights     `json:"rankingWeights,omitempty"`
}

// scoredOffer pairs an extracted offer with its feasibility result.
type scoredOffer struct {
	Vendor      string             `json:"vendor"`
	Filename    string             `json:"filename"`
	Offer       model.Offer        `json:"offer"`
	Feasibility feasibility.Result `json:"feasibility"`
}

type analyzeResponse struct {
	Offers         []scoredOffer   `json:"offers"`
	BenchmarkPrice float64         `json:"benchmarkPrice"`
	Ranking        ranking.Ranking `json:"ranking"`
}

func (s *Server) handleAnalyzeRFQ(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Documents) == 0 {
		writeError(w, http.StatusBadRequest, "documents are required")
		return
	}

	analysisID := uuid.NewString()
	zap.L().Info("rfq analysis started",
		zap.String("analysis_id", analysisID),
		zap.Int("documents", len(req.Documents)),
	)

	offers := make([]model.Offer, len(req.Documents))
	g, ctx := errgroup.WithContext(r.Context())
	g.SetLimit(maxConcurrentExtractions)
	for i, doc := range req.Documents {
		g.Go(func() error {
			offer, err := s.extractor.ExtractOffer(ctx, doc.Pages, doc.Filename)
			if err != nil {
				return err
			}
			offers[i] = offer
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		zap.L().Error("rfq analysis failed",
			zap.String("analysis_id", analysisID),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "extraction failed")
		return
	}

	scoringWeights := s.weights
	if req.ScoringWeights != nil {
		scoringWeights = *req.ScoringWeights
	}

	benchmark := feasibility.BenchmarkPrice(offers)

	resp := analyzeResponse{
		Offers:         make([]scoredOffer, len(offers)),
		BenchmarkPrice: benchmark,
	}
	candidates := make([]ranking.Candidate, len(offers))
	for i, offer := range offers {
		result := feasibility.Score(offer, benchmark, scoringWeights)
		resp.Offers[i] = scoredOffer{
			Vendor:      offer.Vendor.Value,
			Filename:    req.Documents[i].Filename,
			Offer:       offer,
			Feasibility: result,
		}
		candidates[i] = ranking.Candidate{
			Vendor:      offer.Vendor.Value,
			Offer:       offer,
			Feasibility: result.FeasibilityScore,
		}
	}
	resp.Ranking = ranking.Rank(candidates, rankingWeightsOrDefault(req.RankingWeights))

	zap.L().Info("rfq analysis complete",
		zap.String("analysis_id", analysisID),
		zap.Float64("benchmark", benchmark),
		zap.String("recommendation", resp.Ranking.Recommendation),
	)
	writeJSON(w, http.StatusOK, resp)
}

// handleStoreRFQ persists a completed analysis document as-is. The
// vendor and price used in the ID come from the analysis itself,
// preferring the ranked recommendation.
func (s *Server) handleStoreRFQ(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body")
		return
	}
	if !gjson.ValidBytes(body) {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	vendor := gjson.GetBytes(body, "ranking.recommendation").String()
	if vendor == "" {
		vendor = gjson.GetBytes(body, "vendor").String()
	}
	price := gjson.GetBytes(body, "benchmarkPrice").Float()
	if p := gjson.GetBytes(body, "totalPrice"); p.Exists() {
		price = p.Float()
	}

	id := store.RFQID(vendor, price, time.Now())
	if err := s.store.CreateRecord(r.Context(), store.Record{
		ID:      id,
		Kind:    store.KindRFQ,
		Vendor:  vendor,
		Payload: body,
	}); err != nil {
		zap.L().Error("server: persist rfq", zap.String("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "persist failed")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}
