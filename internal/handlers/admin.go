package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"portfolio-backend/internal/models"
	"portfolio-backend/internal/services"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type contactInbox interface {
	List(ctx context.Context, unreadOnly bool, limit, offset int) ([]*models.ContactMessage, int, error)
	GetByID(ctx context.Context, id int64) (*models.ContactMessage, error)
	MarkRead(ctx context.Context, id int64) error
}

type AdminHandler struct {
	inbox  contactInbox
	logger *zap.Logger
}

func NewAdminHandler(inbox contactInbox, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{inbox: inbox, logger: logger}
}

func (h *AdminHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	unreadOnly, _ := strconv.ParseBool(q.Get("unread"))

	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	offset, err := strconv.Atoi(q.Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	messages, total, err := h.inbox.List(r.Context(), unreadOnly, limit, offset)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, models.ContactMessageList{Messages: messages, Total: total})
}

func (h *AdminHandler) GetMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := messageID(w, r)
	if !ok {
		return
	}

	msg, err := h.inbox.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = &services.NotFoundError{Message: "Message not found"}
		}
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, msg)
}

func (h *AdminHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := messageID(w, r)
	if !ok {
		return
	}

	if err := h.inbox.MarkRead(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = &services.NotFoundError{Message: "Message not found"}
		}
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Message marked as read"})
}

func messageID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid message ID", r))
		return 0, false
	}
	return id, true
}
