package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"portfolio-backend/internal/config"
	"portfolio-backend/internal/database"
	"portfolio-backend/internal/handlers"
	"portfolio-backend/internal/logger"
	"portfolio-backend/internal/metrics"
	"portfolio-backend/internal/middleware"
	"portfolio-backend/internal/repository"
	"portfolio-backend/internal/router"
	"portfolio-backend/internal/services"
	"portfolio-backend/internal/worker"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()

	log := logger.New(cfg.LogDebug)
	defer log.Sync()
	log.Info("starting portfolio backend", zap.String("env", cfg.Env))

	m := metrics.New()

	systemPrompt, err := config.LoadSystemPrompt(cfg.SystemPromptFile)
	if err != nil {
		log.Fatal("system prompt unavailable", zap.Error(err))
	}

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("postgres connection failed", zap.Error(err))
	}
	defer pool.Close()
	log.Info("postgres connected")

	if err := database.RunMigrations(pool, "migrations", log); err != nil {
		log.Fatal("database migration failed", zap.Error(err))
	}

	// ──── Step 3: Initialize Redis Client ────
	redisClient, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Fatal("redis connection failed", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("redis connected")

	// ──── Step 4: Initialize Completion Client ────
	anthropic, err := services.NewAnthropicClient(services.AnthropicConfig{
		APIURL:  cfg.AnthropicAPIURL,
		APIKey:  cfg.AnthropicAPIKey,
		Timeout: cfg.AnthropicTimeout,
	})
	if err != nil {
		log.Fatal("anthropic client initialization failed", zap.Error(err))
	}

	chatService, err := services.NewChatService(services.ChatConfig{
		Model:        cfg.AnthropicModel,
		MaxTokens:    cfg.AnthropicMaxTokens,
		SystemPrompt: systemPrompt,
	}, anthropic, m, log.Named("chat"))
	if err != nil {
		log.Fatal("chat service initialization failed", zap.Error(err))
	}
	log.Info("chat service ready", zap.String("model", cfg.AnthropicModel), zap.Int("max_tokens", cfg.AnthropicMaxTokens))

	// ──── Initialize Services ────
	contactRepo := repository.NewContactRepo(pool)
	queue := worker.NewQueue(redisClient)
	contactService := services.NewContactService(contactRepo, queue, m, log.Named("contact"), cfg.OwnerName)
	emailService := services.NewEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, log.Named("email"))

	// ──── Initialize Handlers ────
	h := router.Handlers{
		Chat:    handlers.NewChatHandler(chatService, log.Named("http")),
		Contact: handlers.NewContactHandler(contactService, log.Named("http")),
	}

	var jwtAuth *middleware.JWTAuth
	if cfg.AdminJWTSecret != "" {
		jwtAuth = middleware.NewJWTAuth(cfg.AdminJWTSecret)
		h.Admin = handlers.NewAdminHandler(contactRepo, log.Named("http"))
		log.Info("admin inbox enabled")
	}

	// ──── Step 5: Start Notification Workers and HTTP Server ────
	workerPool := worker.NewPool(redisClient, emailService, cfg.OwnerEmail, m, log.Named("worker"), cfg.NotifyWorkers)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router.New(h, jwtAuth, m, log.Named("access"), cfg.FrontendURL),
		// The chat route waits on the provider, so writes get the provider
		// timeout plus some headroom.
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.AnthropicTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return workerPool.Run(gctx)
	})

	if cfg.UnreadDigestInterval > 0 {
		digest := services.NewDigestScheduler(
			contactRepo,
			repository.NewDigestStateRepo(redisClient),
			emailService,
			cfg.OwnerEmail,
			cfg.UnreadDigestInterval,
			m,
			log.Named("digest"),
		)
		g.Go(func() error {
			return digest.Run(gctx)
		})
	}

	g.Go(func() error {
		log.Info("portfolio backend ready", zap.String("addr", "http://localhost:"+cfg.Port), zap.String("api", "/api/v1"))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", zap.Error(err))
		os.Exit(1)
	}
	log.Info("server stopped")
}
