package assistant

import (
	"errors"
	"net/http"

	"partselect-chat/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// Handler is the http api layer for the assistant.
type Handler struct {
	service Service
	logger  logrus.FieldLogger
}

// NewHandler creates a new handler injecting the service.
func NewHandler(s Service, logger logrus.FieldLogger) *Handler {
	return &Handler{
		service: s,
		logger:  logger,
	}
}

// RegisterRoutes attaches the assistant endpoints to the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/get-message", h.handleGetMessage)

	r.Get("/clear-memory", h.handleClearMemory)
	r.Post("/clear-memory", h.handleClearMemory)

	// Ingestion endpoint for scraped product text
	r.Post("/documents", h.handleAddDocument)
}

// --- DTOs ---

type getMessageRequest struct {
	Query string `json:"query"`
}

type statusResponse struct {
	Status string `json:"status"`
}

// --- Handlers ---

// handleGetMessage answers one query from the chat widget.
func (h *Handler) handleGetMessage(w http.ResponseWriter, r *http.Request) {
	log := h.logger.WithFields(logrus.Fields{
		"request_id":      r.Header.Get(domain.HeaderRequestID),
		"conversation_id": r.Header.Get(domain.HeaderConversationID),
	})

	var req getMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	reply, err := h.service.GetMessage(r.Context(), r.Header.Get(domain.HeaderConversationID), req.Query)
	if errors.Is(err, ErrEmptyQuery) {
		writeError(w, http.StatusBadRequest, "Query is required")
		return
	}
	if err != nil {
		log.WithError(err).Error("could not answer query")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, reply)
}

// handleClearMemory resets the conversation's memory.
func (h *Handler) handleClearMemory(w http.ResponseWriter, r *http.Request) {
	h.service.ClearMemory(r.Context(), r.Header.Get(domain.HeaderConversationID))
	writeJSON(w, http.StatusOK, statusResponse{Status: "Memory cleared"})
}

// handleAddDocument stores a product document.
func (h *Handler) handleAddDocument(w http.ResponseWriter, r *http.Request) {
	var doc Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	err := h.service.AddDocument(r.Context(), doc)
	if errors.Is(err, ErrInvalidDocument) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.logger.WithField("part_number", doc.PartNumber).WithError(err).Error("could not store document")
		writeError(w, http.StatusInternalServerError, "Could not store document")
		return
	}

	writeJSON(w, http.StatusCreated, statusResponse{Status: "Document stored"})
}

// writeJSON is a helper function for sending json responses.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError is a helper for sending a standardized json error.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
