package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"portfolio-backend/internal/handlers"
	"portfolio-backend/internal/metrics"
	"portfolio-backend/internal/middleware"
)

type Handlers struct {
	Chat    *handlers.ChatHandler
	Contact *handlers.ContactHandler
	// Admin is optional; the inbox routes are only mounted with an auth.
	Admin *handlers.AdminHandler
}

func New(
	h Handlers,
	jwtAuth *middleware.JWTAuth,
	m *metrics.Metrics,
	logger *zap.Logger,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Instrument(m))
	r.Use(middleware.CORS(frontendURL))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Chat Routes (public) ────
		r.Route("/chat", func(r chi.Router) {
			r.Post("/", h.Chat.Chat)
			r.Get("/health", h.Chat.Health)
		})

		// ──── Contact Routes (public) ────
		r.Post("/contact", h.Contact.Submit)

		// ──── Admin Inbox ────
		if jwtAuth != nil && h.Admin != nil {
			r.Route("/admin/contact-messages", func(r chi.Router) {
				r.Use(jwtAuth.Middleware)
				r.Get("/", h.Admin.ListMessages)
				r.Get("/{id}", h.Admin.GetMessage)
				r.Put("/{id}/read", h.Admin.MarkRead)
			})
		}
	})

	return r
}
