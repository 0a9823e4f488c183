package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"portfolio-backend/internal/logger"
	"portfolio-backend/internal/metrics"
	"portfolio-backend/internal/models"
)

const (
	// ConnectionErrorMessage is shown to the user whenever the provider call fails.
	ConnectionErrorMessage = "I'm having trouble connecting right now. Please try again in a moment!"
	// FallbackReply is returned as a normal assistant line when the provider
	// answered but the reply text could not be found.
	FallbackReply = "I couldn't process that response. Please try again!"
)

// ChatConfig is fixed for the lifetime of the process.
type ChatConfig struct {
	Model        string
	MaxTokens    int
	SystemPrompt string
}

// ProviderRequest is the Messages API body. Field order is stable so identical
// inputs always marshal to identical bytes.
type ProviderRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	System    string        `json:"system"`
	Messages  []models.Turn `json:"messages"`
}

// CompletionClient performs one provider round trip and returns the raw
// response body of a 2xx answer.
type CompletionClient interface {
	Complete(ctx context.Context, req ProviderRequest) ([]byte, error)
}

type ChatService struct {
	cfg     ChatConfig
	client  CompletionClient
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewChatService(cfg ChatConfig, client CompletionClient, m *metrics.Metrics, logger *zap.Logger) (*ChatService, error) {
	if cfg.Model == "" {
		return nil, errors.New("chat model must be provided")
	}
	if cfg.MaxTokens <= 0 {
		return nil, fmt.Errorf("chat max tokens must be positive, got %d", cfg.MaxTokens)
	}
	if client == nil {
		return nil, errors.New("completion client must be provided")
	}
	return &ChatService{
		cfg:     cfg,
		client:  client,
		metrics: m,
		logger:  logger,
	}, nil
}

// Chat answers one user message. Provider trouble of any kind ends up in the
// returned result; Chat never panics and never returns raw provider errors.
func (s *ChatService) Chat(ctx context.Context, req models.ChatRequest) (result models.ChatResult) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("chat pipeline panicked", zap.Any("panic", r))
			s.metrics.ChatRequests.WithLabelValues(metrics.OutcomeFailure).Inc()
			result = models.FailureResult(ConnectionErrorMessage)
		}
	}()

	providerReq := s.BuildRequest(req)

	s.logger.Debug("calling provider",
		zap.String("model", providerReq.Model),
		zap.Int("message_count", len(providerReq.Messages)),
	)

	start := time.Now()
	body, err := s.client.Complete(ctx, providerReq)
	s.metrics.ProviderDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.logger.Error("error calling provider", zap.Error(err))
		s.metrics.ChatRequests.WithLabelValues(metrics.OutcomeFailure).Inc()
		return models.FailureResult(ConnectionErrorMessage)
	}

	reply, err := ExtractReply(body)
	switch {
	case errors.Is(err, ErrShapeMismatch):
		s.logger.Warn("error extracting reply",
			zap.Error(err),
			zap.String("body_preview", logger.Truncate(string(body), 200)),
		)
		s.metrics.ChatRequests.WithLabelValues(metrics.OutcomeFallback).Inc()
		return models.SuccessResult(FallbackReply)
	case err != nil:
		s.logger.Error("error decoding provider response", zap.Error(err))
		s.metrics.ChatRequests.WithLabelValues(metrics.OutcomeFailure).Inc()
		return models.FailureResult(ConnectionErrorMessage)
	}

	s.logger.Debug("provider response received", zap.Int("length", len(reply)))
	s.metrics.ChatRequests.WithLabelValues(metrics.OutcomeSuccess).Inc()
	return models.SuccessResult(reply)
}

// BuildRequest combines the conversation with the fixed model settings.
func (s *ChatService) BuildRequest(req models.ChatRequest) ProviderRequest {
	return ProviderRequest{
		Model:     s.cfg.Model,
		MaxTokens: s.cfg.MaxTokens,
		System:    s.cfg.SystemPrompt,
		Messages:  BuildMessages(req),
	}
}

// BuildMessages returns the history in order followed by the current message
// as a user turn. History roles are forwarded as received.
func BuildMessages(req models.ChatRequest) []models.Turn {
	messages := make([]models.Turn, 0, len(req.History)+1)
	for _, h := range req.History {
		messages = append(messages, models.Turn{Role: h.Role, Content: h.Content})
	}
	return append(messages, models.Turn{Role: models.RoleUser, Content: req.Message})
}
