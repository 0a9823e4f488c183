package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"portfolio-backend/internal/metrics"
	"portfolio-backend/internal/models"
)

const (
	NotificationQueue = "queue:contact-notifications"
	popTimeout        = 5 * time.Second
)

// Queue pushes notification jobs onto the redis list consumed by Pool.
type Queue struct {
	redis *redis.Client
}

func NewQueue(redisClient *redis.Client) *Queue {
	return &Queue{redis: redisClient}
}

func (q *Queue) Enqueue(ctx context.Context, job models.NotificationJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode notification job: %w", err)
	}
	if err := q.redis.LPush(ctx, NotificationQueue, data).Err(); err != nil {
		return fmt.Errorf("failed to push notification job: %w", err)
	}
	return nil
}

type notifier interface {
	SendContactNotification(to string, job models.NotificationJob) error
}

// Pool mails the owner for every queued contact submission. A failed send is
// logged and dropped; the submission itself is already stored.
type Pool struct {
	redis       *redis.Client
	email       notifier
	ownerEmail  string
	metrics     *metrics.Metrics
	logger      *zap.Logger
	workerCount int
}

func NewPool(redisClient *redis.Client, email notifier, ownerEmail string, m *metrics.Metrics, logger *zap.Logger, workerCount int) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	return &Pool{
		redis:       redisClient,
		email:       email,
		ownerEmail:  ownerEmail,
		metrics:     m,
		logger:      logger,
		workerCount: workerCount,
	}
}

// Run blocks until ctx is cancelled and all workers have returned.
func (p *Pool) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for i := 0; i < p.workerCount; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			p.worker(ctx, id)
		}(i)
	}
	p.logger.Info("notification workers started", zap.Int("workers", p.workerCount))

	wg.Wait()
	p.logger.Info("notification workers stopped")
	return nil
}

func (p *Pool) worker(ctx context.Context, id int) {
	log := p.logger.With(zap.Int("worker", id))
	for {
		if ctx.Err() != nil {
			return
		}

		result, err := p.redis.BRPop(ctx, popTimeout, NotificationQueue).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			log.Warn("failed to pop notification job", zap.Error(err))
			sleep(ctx, time.Second)
			continue
		}
		if len(result) < 2 {
			continue
		}

		if err := p.process(result[1]); err != nil {
			log.Error("notification failed", zap.Error(err))
		}
	}
}

func (p *Pool) process(raw string) error {
	var job models.NotificationJob
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		p.metrics.NotificationEmails.WithLabelValues("invalid").Inc()
		return fmt.Errorf("failed to parse notification job: %w", err)
	}

	if err := p.email.SendContactNotification(p.ownerEmail, job); err != nil {
		p.metrics.NotificationEmails.WithLabelValues("failed").Inc()
		return fmt.Errorf("contact %d: %w", job.ContactID, err)
	}

	p.metrics.NotificationEmails.WithLabelValues("sent").Inc()
	p.logger.Info("email notification sent", zap.Int64("contact_id", job.ContactID), zap.String("from", job.Email))
	return nil
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
