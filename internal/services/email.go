package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/mail.v2"

	"portfolio-backend/internal/models"
)

type EmailService struct {
	dialer  *mail.Dialer
	from    string
	devMode bool
	logger  *zap.Logger
}

func NewEmailService(host, port, user, pass, from string, logger *zap.Logger) *EmailService {
	devMode := host == "" || user == ""
	if devMode {
		logger.Warn("email service running in dev mode, notifications are logged instead of sent")
	}

	portNum, err := strconv.Atoi(port)
	if err != nil {
		portNum = 587
	}
	dialer := mail.NewDialer(host, portNum, user, pass)
	dialer.Timeout = 15 * time.Second

	return &EmailService{
		dialer:  dialer,
		from:    from,
		devMode: devMode,
		logger:  logger,
	}
}

// SendContactNotification mails the portfolio owner about a new contact
// submission. Replies go straight to the visitor.
func (s *EmailService) SendContactNotification(to string, job models.NotificationJob) error {
	subject := fmt.Sprintf("[Portfolio] New message from %s", job.Name)
	return s.sendText(to, job.Email, subject, contactNotificationBody(job))
}

func contactNotificationBody(job models.NotificationJob) string {
	return fmt.Sprintf(`You have a new message from your portfolio!

Name: %s
Email: %s
Subject: %s

Message:
%s

---
Sent from your portfolio contact form.
`, job.Name, job.Email, job.Subject, job.Message)
}

// SendUnreadDigest lists the newest unread inbox messages for the owner.
func (s *EmailService) SendUnreadDigest(to string, total int, preview []*models.ContactMessage) error {
	noun := "messages"
	if total == 1 {
		noun = "message"
	}
	subject := fmt.Sprintf("[Portfolio] %d unread %s", total, noun)
	return s.sendText(to, "", subject, unreadDigestBody(total, preview))
}

func unreadDigestBody(total int, preview []*models.ContactMessage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You have %d unread message(s) in your portfolio inbox.\n\n", total)
	for _, m := range preview {
		fmt.Fprintf(&b, "- %s <%s>: %s (%s)\n", m.Name, m.Email, m.Subject, m.CreatedAt.Format("2006-01-02 15:04"))
	}
	if total > len(preview) {
		fmt.Fprintf(&b, "...and %d more.\n", total-len(preview))
	}
	b.WriteString("\n---\nSent from your portfolio backend.\n")
	return b.String()
}

func (s *EmailService) sendText(to, replyTo, subject, body string) error {
	if s.devMode {
		s.logger.Info("dev email",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.String("body", body),
		)
		return nil
	}

	m := mail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	if replyTo != "" {
		m.SetHeader("Reply-To", replyTo)
	}
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}

	s.logger.Info("email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}
