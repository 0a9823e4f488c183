package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"portfolio-backend/internal/metrics"
	"portfolio-backend/internal/models"
)

const defaultContactSubject = "Portfolio Contact"

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type contactStore interface {
	Create(ctx context.Context, msg *models.ContactMessage) error
}

type notificationQueue interface {
	Enqueue(ctx context.Context, job models.NotificationJob) error
}

type ContactService struct {
	store     contactStore
	queue     notificationQueue
	metrics   *metrics.Metrics
	logger    *zap.Logger
	ownerName string
}

func NewContactService(store contactStore, queue notificationQueue, m *metrics.Metrics, logger *zap.Logger, ownerName string) *ContactService {
	return &ContactService{
		store:     store,
		queue:     queue,
		metrics:   m,
		logger:    logger,
		ownerName: ownerName,
	}
}

// Submit stores the message and queues the owner notification. Only a storage
// failure is returned; a notification that cannot be queued is logged.
func (s *ContactService) Submit(ctx context.Context, req models.ContactRequest) (*models.ContactMessage, error) {
	if fields := ValidateContactRequest(req); len(fields) > 0 {
		s.metrics.ContactSubmissions.WithLabelValues("invalid").Inc()
		return nil, &ValidationError{Fields: fields}
	}

	subject := defaultContactSubject
	if req.Subject != nil && strings.TrimSpace(*req.Subject) != "" {
		subject = strings.TrimSpace(*req.Subject)
	}

	msg := &models.ContactMessage{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Subject: subject,
		Message: req.Message,
	}

	if err := s.store.Create(ctx, msg); err != nil {
		s.metrics.ContactSubmissions.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("failed to save contact message: %w", err)
	}
	s.metrics.ContactSubmissions.WithLabelValues("stored").Inc()
	s.logger.Info("contact message saved", zap.Int64("id", msg.ID), zap.String("email", msg.Email))

	job := models.NotificationJob{
		ID:          uuid.New(),
		ContactID:   msg.ID,
		Name:        msg.Name,
		Email:       msg.Email,
		Subject:     msg.Subject,
		Message:     msg.Message,
		SubmittedAt: msg.CreatedAt,
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now().UTC()
	}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		s.metrics.NotificationEmails.WithLabelValues("enqueue_failed").Inc()
		s.logger.Error("failed to queue contact notification", zap.Int64("contact_id", msg.ID), zap.Error(err))
	}

	return msg, nil
}

// Acknowledgement is the text shown to the visitor after a submission.
func (s *ContactService) Acknowledgement() string {
	return fmt.Sprintf("Your message has been received! %s will get back to you within 24 hours.", s.ownerName)
}

// ValidateContactRequest returns field errors keyed by JSON field name.
func ValidateContactRequest(req models.ContactRequest) map[string]string {
	fields := make(map[string]string)

	name := strings.TrimSpace(req.Name)
	switch {
	case name == "":
		fields["name"] = "Name is required"
	case utf8.RuneCountInString(name) > 100:
		fields["name"] = "Name too long (max 100 chars)"
	}

	email := strings.TrimSpace(req.Email)
	switch {
	case email == "":
		fields["email"] = "Email is required"
	case utf8.RuneCountInString(email) > 150:
		fields["email"] = "Email too long (max 150 chars)"
	case !emailRegex.MatchString(email):
		fields["email"] = "Invalid email address"
	}

	if req.Subject != nil && utf8.RuneCountInString(*req.Subject) > 200 {
		fields["subject"] = "Subject too long (max 200 chars)"
	}

	switch {
	case strings.TrimSpace(req.Message) == "":
		fields["message"] = "Message is required"
	case utf8.RuneCountInString(req.Message) > 3000:
		fields["message"] = "Message too long (max 3000 chars)"
	}

	return fields
}
