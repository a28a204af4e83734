package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-logr/logr"

	"mistral-chat/internal/models"
)

type chatCompleter interface {
	Complete(ctx context.Context, messages []models.Message) (json.RawMessage, error)
}

type ChatHandler struct {
	completer chatCompleter
	log       logr.Logger
}

func NewChatHandler(completer chatCompleter, logger logr.Logger) *ChatHandler {
	return &ChatHandler{
		completer: completer,
		log:       logger.WithName("chat"),
	}
}

// Chat relays the posted conversation to the completion API. Every failure is
// answered with 500 and the same error string.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, r, err)
		return
	}
	for i, m := range req.Messages {
		if !m.Role.Valid() {
			h.log.V(1).Info("forwarding unexpected role", "role", m.Role, "index", i)
		}
	}

	data, err := h.completer.Complete(r.Context(), req.Messages)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *ChatHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.log.Error(err, "Error", "request_id", r.Header.Get("X-Request-ID"))
	writeJSON(w, http.StatusInternalServerError, models.ProxyErrorResponse{
		Error:   "Failed to get AI response",
		Details: err.Error(),
	})
}

// Shared helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
