package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"finsmart/internal/core"
	"finsmart/internal/services"
)

const maxVoiceUploadBytes = 10 << 20

type listResponse struct {
	Items []core.Expense `json:"items"`
	Count int            `json:"count"`
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	items, err := s.expenses.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "List expenses failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read ledger")
		return
	}
	if items == nil {
		items = []core.Expense{}
	}
	writeJSON(w, http.StatusOK, listResponse{Items: items, Count: len(items)})
}

type captureRequest struct {
	Text string `json:"text"`
}

// handleCaptureExpense runs the free-text capture workflow: the request
// carries raw user text, the response a created record or guidance.
func (s *Server) handleCaptureExpense(w http.ResponseWriter, r *http.Request) {
	if s.capture == nil {
		writeError(w, http.StatusServiceUnavailable, "expense capture is not configured")
		return
	}

	var req captureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	outcome, err := s.capture.Submit(r.Context(), req.Text)
	switch {
	case errors.Is(err, services.ErrEmptyInput):
		writeError(w, http.StatusBadRequest, "text is required")
		return
	case errors.Is(err, services.ErrCaptureBusy):
		writeError(w, http.StatusConflict, "a capture is already in progress")
		return
	case errors.Is(err, services.ErrStaleCapture):
		writeError(w, http.StatusConflict, "capture was cancelled")
		return
	case err != nil:
		slog.ErrorContext(r.Context(), "Capture failed", "error", err)
		writeError(w, http.StatusInternalServerError, "capture failed")
		return
	}

	status := http.StatusCreated
	switch outcome.Result {
	case services.CaptureRejected:
		status = http.StatusUnprocessableEntity
	case services.CaptureFailed:
		status = http.StatusBadGateway
	}
	writeJSON(w, status, outcome)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "expense id is required")
		return
	}
	if err := s.expenses.Delete(r.Context(), id); err != nil {
		slog.ErrorContext(r.Context(), "Delete expense failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "failed to delete expense")
		return
	}
	// Removing an absent id is a no-op, the outcome is the same.
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := s.expenses.Overview(r.Context(), core.Today())
	if err != nil {
		slog.ErrorContext(r.Context(), "Overview failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute overview")
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

type insightResponse struct {
	Insight string `json:"insight"`
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	if s.insight == nil {
		writeError(w, http.StatusServiceUnavailable, "insights are not configured")
		return
	}

	text, err := s.insight.Request(r.Context())
	if errors.Is(err, services.ErrInsightBusy) {
		writeError(w, http.StatusConflict, "an analysis is already in progress")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Insight request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "analysis failed")
		return
	}
	writeJSON(w, http.StatusOK, insightResponse{Insight: text})
}

type voiceResponse struct {
	Text string `json:"text"`
}

// handleVoice accepts an audio upload and returns its transcript. The
// transcript is not captured automatically; the client reviews it first.
func (s *Server) handleVoice(w http.ResponseWriter, r *http.Request) {
	if s.speech == nil || !s.speech.Available() {
		writeError(w, http.StatusServiceUnavailable, "speech recognition is not available")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxVoiceUploadBytes)
	file, header, err := r.FormFile("audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, "audio file is required")
		return
	}
	defer file.Close()

	transcript, err := s.speech.Capture(r.Context(), file, header.Filename)
	if errors.Is(err, services.ErrSpeechBusy) {
		writeError(w, http.StatusConflict, "already listening")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Voice transcription failed", "error", err)
		writeError(w, http.StatusBadGateway, "transcription failed")
		return
	}
	writeJSON(w, http.StatusOK, voiceResponse{Text: transcript})
}

func (s *Server) handleSeedDemo(w http.ResponseWriter, r *http.Request) {
	if err := s.expenses.SeedDemo(r.Context(), core.Today()); err != nil {
		slog.ErrorContext(r.Context(), "Demo seeding failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to seed demo data")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
