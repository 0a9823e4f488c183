package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"portfolio-backend/internal/models"
)

func TestContactNotificationBody(t *testing.T) {
	body := contactNotificationBody(models.NotificationJob{
		Name:    "Jane",
		Email:   "jane@example.com",
		Subject: "Portfolio Contact",
		Message: "Hello there",
	})

	assert.Contains(t, body, "You have a new message from your portfolio!")
	assert.Contains(t, body, "Name: Jane\nEmail: jane@example.com\nSubject: Portfolio Contact\n")
	assert.Contains(t, body, "Message:\nHello there\n")
	assert.Contains(t, body, "Sent from your portfolio contact form.")
}

func TestEmailService_DevModeDoesNotSend(t *testing.T) {
	svc := NewEmailService("", "587", "", "", "noreply@portfolio.dev", zap.NewNop())
	assert.True(t, svc.devMode)

	err := svc.SendContactNotification("owner@example.com", models.NotificationJob{Name: "Jane", Email: "jane@example.com"})
	assert.NoError(t, err)
}

func TestUnreadDigestBody(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	body := unreadDigestBody(3, []*models.ContactMessage{
		{Name: "Jane", Email: "jane@example.com", Subject: "Portfolio Contact", CreatedAt: created},
	})

	assert.Contains(t, body, "You have 3 unread message(s)")
	assert.Contains(t, body, "- Jane <jane@example.com>: Portfolio Contact (2026-03-01 09:30)\n")
	assert.Contains(t, body, "...and 2 more.")
}

func TestEmailService_DevModeDigest(t *testing.T) {
	svc := NewEmailService("", "587", "", "", "noreply@portfolio.dev", zap.NewNop())
	assert.NoError(t, svc.SendUnreadDigest("owner@example.com", 1, nil))
}
