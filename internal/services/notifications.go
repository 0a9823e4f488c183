package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"portfolio-backend/internal/metrics"
	"portfolio-backend/internal/models"
)

const (
	digestPollInterval = 1 * time.Hour
	digestPreviewLimit = 10
)

type unreadInbox interface {
	List(ctx context.Context, unreadOnly bool, limit, offset int) ([]*models.ContactMessage, int, error)
}

type digestState interface {
	LastSent(ctx context.Context) (string, error)
	MarkSent(ctx context.Context, at time.Time) error
}

type digestMailer interface {
	SendUnreadDigest(to string, total int, preview []*models.ContactMessage) error
}

// DigestScheduler reminds the owner of contact messages still unread in the
// admin inbox, at most once per interval.
type DigestScheduler struct {
	inbox      unreadInbox
	state      digestState
	email      digestMailer
	ownerEmail string
	interval   time.Duration
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

func NewDigestScheduler(inbox unreadInbox, state digestState, email digestMailer, ownerEmail string, interval time.Duration, m *metrics.Metrics, logger *zap.Logger) *DigestScheduler {
	return &DigestScheduler{
		inbox:      inbox,
		state:      state,
		email:      email,
		ownerEmail: ownerEmail,
		interval:   interval,
		metrics:    m,
		logger:     logger,
	}
}

// Run checks on startup and then every poll interval until ctx is cancelled.
func (s *DigestScheduler) Run(ctx context.Context) error {
	s.logger.Info("unread digest scheduler started", zap.Duration("interval", s.interval))

	s.runOnce(ctx, time.Now().UTC())

	ticker := time.NewTicker(digestPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.runOnce(ctx, time.Now().UTC())
		}
	}
}

func (s *DigestScheduler) runOnce(ctx context.Context, now time.Time) {
	lastSent, err := s.state.LastSent(ctx)
	if err != nil {
		s.logger.Warn("unread digest: failed to load last sent at", zap.Error(err))
		return
	}
	if !shouldSendByLastSent(lastSent, s.interval, now) {
		return
	}

	preview, total, err := s.inbox.List(ctx, true, digestPreviewLimit, 0)
	if err != nil {
		s.logger.Warn("unread digest: failed to list unread messages", zap.Error(err))
		return
	}
	if total == 0 {
		return
	}

	if err := s.email.SendUnreadDigest(s.ownerEmail, total, preview); err != nil {
		s.metrics.NotificationEmails.WithLabelValues("digest_failed").Inc()
		s.logger.Error("unread digest: failed to send", zap.Error(err))
		return
	}
	s.metrics.NotificationEmails.WithLabelValues("digest_sent").Inc()

	if err := s.state.MarkSent(ctx, now); err != nil {
		s.logger.Warn("unread digest: failed to persist last sent at", zap.Error(err))
	}
}

func shouldSendByLastSent(lastSentRaw string, minInterval time.Duration, now time.Time) bool {
	if lastSentRaw == "" {
		return true
	}

	lastSentAt, err := time.Parse(time.RFC3339, lastSentRaw)
	if err != nil {
		return true
	}

	return now.Sub(lastSentAt) >= minInterval
}
