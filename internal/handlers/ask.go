package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"threadqa/internal/contextutil"
	"threadqa/internal/rag"
)

// maxRequestBytes bounds the request body, base64 image included.
const maxRequestBytes = 16 << 20

// AskHandler handles HTTP requests for questions about the subthread corpus.
type AskHandler struct {
	engine rag.Engine
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(engine rag.Engine) *AskHandler {
	return &AskHandler{engine: engine}
}

// AskRequest represents the HTTP request payload.
type AskRequest struct {
	Question string `json:"question"`
	// Image is an optional base64-encoded screenshot.
	Image string `json:"image,omitempty"`
}

// AskResponse represents the HTTP response payload.
type AskResponse struct {
	// The generated answer, followed by a sources footer when sources exist
	Answer string `json:"answer"`

	// Permalinks of the subthreads used as context, deduplicated
	Links []string `json:"links"`

	// Set when the language model could not be reached; Links are still returned
	Error string `json:"error,omitempty"`

	// Debug contains retrieval details when ?debug=true is passed
	Debug *rag.DebugInfo `json:"debug,omitempty"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ServeHTTP answers a question.
//
// Returns 200 for both normal and degraded answers, 400 for malformed
// requests or an empty question.
func (h *AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req AskRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Question) == "" {
		logger.WarnContext(ctx, "empty question in request")
		h.writeError(w, http.StatusBadRequest, "Question is required")
		return
	}

	debug := false
	if debugParam := r.URL.Query().Get("debug"); debugParam != "" {
		debug = strings.ToLower(debugParam) == "true" || debugParam == "1"
	}

	ragResp, err := h.engine.Ask(ctx, rag.AskRequest{
		Question: req.Question,
		Image:    req.Image,
		Debug:    debug,
	})
	if err != nil {
		if errors.Is(err, rag.ErrEmptyQuery) {
			h.writeError(w, http.StatusBadRequest, "Question is required")
			return
		}
		logger.ErrorContext(ctx, "failed to answer question", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to answer question")
		return
	}

	links := ragResp.Links
	if links == nil {
		links = []string{}
	}

	resp := AskResponse{
		Answer: ragResp.Answer,
		Links:  links,
		Error:  ragResp.Error,
		Debug:  ragResp.Debug,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// writeError writes an error response.
func (h *AskHandler) writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error: message,
	})
}
