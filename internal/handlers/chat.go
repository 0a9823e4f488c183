package handlers

import (
	"context"
	"net/http"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"portfolio-backend/internal/logger"
	"portfolio-backend/internal/models"
)

const maxChatMessageChars = 2000

type chatService interface {
	Chat(ctx context.Context, req models.ChatRequest) models.ChatResult
}

type ChatHandler struct {
	chat   chatService
	logger *zap.Logger
}

func NewChatHandler(chat chatService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{chat: chat, logger: logger}
}

// Chat always answers 200 once the request is valid; provider trouble is
// reported inside the result body.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if fields := validateChatRequest(req); len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", fields, r))
		return
	}

	h.logger.Debug("chat request received",
		zap.String("message", logger.Truncate(req.Message, 100)),
		zap.Int("history", len(req.History)),
	)

	writeJSON(w, http.StatusOK, h.chat.Chat(r.Context(), req))
}

func (h *ChatHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Chat service is running!"))
}

func validateChatRequest(req models.ChatRequest) map[string]string {
	fields := make(map[string]string)
	switch {
	case strings.TrimSpace(req.Message) == "":
		fields["message"] = "Message cannot be blank"
	case utf8.RuneCountInString(req.Message) > maxChatMessageChars:
		fields["message"] = "Message too long (max 2000 chars)"
	}
	return fields
}
