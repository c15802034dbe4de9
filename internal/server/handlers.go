package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"go.uber.org/zap"

	"github.com/hyperjump/toshokan/internal/ingest"
	"github.com/hyperjump/toshokan/internal/models"
	"github.com/hyperjump/toshokan/internal/store"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, models.HealthResponse{
		Status:      "ok",
		ModelLoaded: s.modelLoaded,
		IndexLoaded: s.store.Loaded(),
	})
}

func (s *Server) handleAddDocument(w http.ResponseWriter, r *http.Request) {
	var req models.AddDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Filename == "" {
		s.respondError(w, http.StatusBadRequest, "filename is required")
		return
	}
	s.logger.Debug("add document request", zap.String("filename", req.Filename))

	added, err := s.pipeline.IngestBase64(r.Context(), req.Filename, req.ContentBase64)
	if err != nil {
		var ie *ingest.Error
		if errors.As(err, &ie) && !ie.Fatal() {
			s.respondError(w, http.StatusBadRequest, ie.Error())
			return
		}
		s.logger.Error("add document failed", zap.String("filename", req.Filename), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, models.AddDocumentResponse{
		Status:      "ok",
		Message:     fmt.Sprintf("Added '%s' with %d chunks to knowledge base.", req.Filename, added),
		ChunksAdded: added,
	})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		s.logger.Error("list documents failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	sources := make([]string, 0, len(stats.Sources))
	for source := range stats.Sources {
		sources = append(sources, source)
	}
	sort.Strings(sources)

	files := make([]models.FileInfo, 0, len(sources))
	for _, source := range sources {
		info := stats.Sources[source]
		fi := models.FileInfo{Filename: source, Chunks: info.Chunks}
		if info.Pages > 0 {
			pages := info.Pages
			fi.Pages = &pages
		}
		files = append(files, fi)
	}

	s.respondJSON(w, http.StatusOK, models.ListDocumentsResponse{
		TotalFiles:  len(files),
		TotalChunks: stats.TotalChunks,
		Files:       files,
	})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req models.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("query request", zap.String("query", req.Query))

	results, err := s.engine.Query(r.Context(), req.Query)
	if err != nil {
		if errors.Is(err, store.ErrNoIndex) {
			s.respondError(w, http.StatusNotFound, "Knowledge base is empty. Please add documents first.")
			return
		}
		s.logger.Error("query failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, models.QueryResponse{
		Query:   req.Query,
		Results: results,
	})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, detail string) {
	s.respondJSON(w, status, models.ErrorResponse{Detail: detail})
}
