// Package httpapi provides the REST HTTP adapter for the server surfaces.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hylla/leadflow/internal/adapters/server/common"
	"github.com/hylla/leadflow/internal/app"
	"github.com/hylla/leadflow/internal/domain"
)

// maxRequestBodyBytes limits decoded JSON payload size for fail-closed request handling.
const maxRequestBodyBytes int64 = 1 << 20

// Handler serves the versioned API subrouter mounted under `/api/v1`.
type Handler struct {
	leads  common.LeadService
	router chi.Router
}

// APIError represents one structured API failure response.
type APIError struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Hint    string              `json:"hint,omitempty"`
	Fields  []domain.FieldError `json:"fields,omitempty"`
}

// ErrorEnvelope wraps one structured API error.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// moveBody is the POST /leads/{id}/move payload.
type moveBody struct {
	Status string `json:"status"`
}

// NewHandler constructs the API adapter over one lead service.
func NewHandler(leads common.LeadService) *Handler {
	h := &Handler{leads: leads}
	r := chi.NewRouter()
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSONError(w, http.StatusNotFound, APIError{Code: "not_found", Message: "endpoint not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSONError(w, http.StatusMethodNotAllowed, APIError{Code: "method_not_allowed", Message: "method not allowed"})
	})
	r.Get("/board", h.handleBoard)
	r.Route("/leads", func(r chi.Router) {
		r.Get("/", h.handleListLeads)
		r.Post("/", h.handleCreateLead)
		r.Post("/{id}/move", h.handleMoveLead)
	})
	r.Get("/nav", h.handleNav)
	h.router = r
	return h
}

// ServeHTTP routes one versioned API request to the matching handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.leads == nil {
		writeErrorFrom(w, common.ErrServiceUnavailable)
		return
	}
	h.router.ServeHTTP(w, r)
}

// handleBoard serves GET `/board`.
func (h *Handler) handleBoard(w http.ResponseWriter, r *http.Request) {
	board, err := h.leads.Board(r.Context())
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

// handleListLeads serves GET `/leads`.
func (h *Handler) handleListLeads(w http.ResponseWriter, r *http.Request) {
	leads, err := h.leads.ListLeads(r.Context())
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"leads": leads})
}

// handleCreateLead serves POST `/leads`.
func (h *Handler) handleCreateLead(w http.ResponseWriter, r *http.Request) {
	var req common.CreateLeadRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	res, err := h.leads.CreateLead(r.Context(), req)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// handleMoveLead serves POST `/leads/{id}/move`.
func (h *Handler) handleMoveLead(w http.ResponseWriter, r *http.Request) {
	var body moveBody
	if err := decodeJSONBody(r.Context(), w, r, &body); err != nil {
		writeErrorFrom(w, err)
		return
	}
	res, err := h.leads.MoveLead(r.Context(), common.MoveLeadRequest{
		LeadID: chi.URLParam(r, "id"),
		Status: body.Status,
	})
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleNav serves GET `/nav`.
func (h *Handler) handleNav(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.leads.Nav())
}

// writeErrorFrom maps adapter errors into structured HTTP responses.
func writeErrorFrom(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	switch {
	case err == nil:
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: "unknown error",
		})
	case errors.As(err, &verr):
		writeJSONError(w, http.StatusUnprocessableEntity, APIError{
			Code:    "validation_failed",
			Message: verr.Error(),
			Fields:  verr.Fields,
		})
	case errors.Is(err, common.ErrInvalidRequest), errors.Is(err, domain.ErrInvalidStatus):
		writeJSONError(w, http.StatusBadRequest, APIError{
			Code:    "invalid_request",
			Message: err.Error(),
			Hint:    "status must be one of new, contacted, negotiating, won, lost",
		})
	case errors.Is(err, app.ErrDuplicateID):
		writeJSONError(w, http.StatusConflict, APIError{
			Code:    "duplicate_id",
			Message: err.Error(),
		})
	case errors.Is(err, app.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: err.Error(),
		})
	case errors.Is(err, common.ErrServiceUnavailable):
		writeJSONError(w, http.StatusServiceUnavailable, APIError{
			Code:    "service_unavailable",
			Message: err.Error(),
		})
	default:
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: err.Error(),
		})
	}
}

// writeJSONError writes one structured error envelope.
func writeJSONError(w http.ResponseWriter, statusCode int, apiErr APIError) {
	writeJSON(w, statusCode, ErrorEnvelope{Error: apiErr})
}

// writeJSON writes one JSON response envelope.
func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, fmt.Sprintf(`{"error":{"code":"encode_error","message":"%s"}}`, err.Error()), http.StatusInternalServerError)
	}
}

// decodeJSONBody decodes one required JSON request body with strict shape checks.
func decodeJSONBody(ctx context.Context, w http.ResponseWriter, r *http.Request, out any) error {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	defer reader.Close()

	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("decode request body: %w", errors.Join(common.ErrInvalidRequest, err))
	}
	// Reject trailing payloads so malformed JSON bodies fail closed.
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode request body: trailing content: %w", common.ErrInvalidRequest)
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("request canceled: %w", ctx.Err())
	default:
		return nil
	}
}
