package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationJob is queued after a contact submission is stored and consumed
// by the worker pool, which mails the owner.
type NotificationJob struct {
	ID          uuid.UUID `json:"id"`
	ContactID   int64     `json:"contact_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Subject     string    `json:"subject"`
	Message     string    `json:"message"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// API Error response
type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}
