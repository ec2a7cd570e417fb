package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/procurelens/procure-cli/internal/feasibility"
	"github.com/procurelens/procure-cli/internal/model"
	"github.com/procurelens/procure-cli/internal/ranking"
	"github.com/procurelens/procure-cli/internal/store"
)

// Extractor is the document extraction surface the server depends on.
// *extract.Extractor implements it.
type Extractor interface {
	ExtractOffer(ctx context.Context, pages []model.PageText, filename string) (model.Offer, error)
	ExtractAudit(ctx context.Context, text string) (model.AuditRecord, error)
}

// Server exposes the extraction and scoring pipeline over HTTP.
type Server struct {
	store     store.Store
	extractor Extractor
	weights   feasibility.Weights
}

// New creates a Server. Weights apply to feasibility scoring for every
// request that does not override them.
func New(st store.Store, extractor Extractor, weights feasibility.Weights) *Server {
	return &Server{store: st, extractor: extractor, weights: weights}
}

// Router builds the HTTP routing table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/ai", func(r chi.Router) {
		r.Post("/audits", s.handleCreateAudit)
	})

	r.Route("/audits", func(r chi.Router) {
		r.Get("/", s.handleListAudits)
		r.Get("/{id}", s.handleGetRecord)
	})

	r.Route("/rfq", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyzeRFQ)
		r.Post("/store", s.handleStoreRFQ)
		r.Get("/", s.handleListRFQs)
		r.Get("/{id}", s.handleGetRecord)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("server: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// rankingWeightsOrDefault resolves optional request weights.
func rankingWeightsOrDefault(w *ranking.Weights) ranking.Weights {
	if w == nil {
		return ranking.DefaultWeights()
	}
	return *w
}
