package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/procurelens/procure-cli/internal/model"
	"github.com/procurelens/procure-cli/internal/rules"
	"github.com/procurelens/procure-cli/internal/store"
)

// auditResult is the full audit analysis persisted and returned to the
// caller.
type auditResult struct {
	ID         string            `json:"id"`
	Record     model.AuditRecord `json:"record"`
	Validation rules.Report      `json:"validation"`
}

func (s *Server) handleCreateAudit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	record, err := s.extractor.ExtractAudit(r.Context(), req.Text)
	if err != nil {
		zap.L().Error("server: audit extraction failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "extraction failed")
		return
	}

	result := auditResult{
		ID:         store.AuditID(record.Type, record.Vendor, record.Date, time.Now()),
		Record:     record,
		Validation: rules.Validate(record),
	}

	payload, err := json.Marshal(result)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "marshal result")
		return
	}
	if err := s.store.CreateRecord(r.Context(), store.Record{
		ID:      result.ID,
		Kind:    store.KindAudit,
		Vendor:  record.Vendor,
		Payload: payload,
	}); err != nil {
		zap.L().Error("server: persist audit", zap.String("id", result.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "persist failed")
		return
	}

	zap.L().Info("audit record created",
		zap.String("id", result.ID),
		zap.Int("score", result.Validation.Score),
	)
	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleListAudits(w http.ResponseWriter, r *http.Request) {
	s.listRecords(w, r, store.KindAudit)
}

func (s *Server) handleListRFQs(w http.ResponseWriter, r *http.Request) {
	s.listRecords(w, r, store.KindRFQ)
}

func (s *Server) listRecords(w http.ResponseWriter, r *http.Request, kind string) {
	filter := store.RecordFilter{
		Kind:   kind,
		Vendor: r.URL.Query().Get("vendor"),
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	records, err := s.store.ListRecords(r.Context(), filter)
	if err != nil {
		zap.L().Error("server: list records", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list failed")
		return
	}
	if records == nil {
		records = []store.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": records})
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	record, err := s.store.GetRecord(r.Context(), id)
	if err != nil {
		zap.L().Error("server: get record", zap.String("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "get failed")
		return
	}
	if record == nil {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}
	writeJSON(w, http.StatusOK, record)
}
