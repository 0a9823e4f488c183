package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"portfolio-backend/internal/models"
)

type contactService interface {
	Submit(ctx context.Context, req models.ContactRequest) (*models.ContactMessage, error)
	Acknowledgement() string
}

type ContactHandler struct {
	contacts contactService
	logger   *zap.Logger
}

func NewContactHandler(contacts contactService, logger *zap.Logger) *ContactHandler {
	return &ContactHandler{contacts: contacts, logger: logger}
}

func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req models.ContactRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	h.logger.Info("contact form submitted", zap.String("email", req.Email))

	if _, err := h.contacts.Submit(r.Context(), req); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, models.ContactResponse{
		Status:  "success",
		Message: h.contacts.Acknowledgement(),
	})
}
