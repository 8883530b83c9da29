package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"concierge-backend/internal/handlers"
	"concierge-backend/internal/middleware"
)

// New wires the HTTP surface. limiter may be nil to disable rate limiting and
// staticDir may be empty to skip serving the landing page. Client addresses
// come from proxy headers only when trustProxy is set, since the rate limiter
// keys on them.
func New(
	log zerolog.Logger,
	chatHandler *handlers.ChatHandler,
	limiter middleware.RateLimiter,
	allowedOrigins []string,
	staticDir string,
	trustProxy bool,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Recoverer)
	if trustProxy {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORS(allowedOrigins))

	// Health check
	r.Get("/health", handlers.Health)

	r.Route("/api", func(r chi.Router) {
		if limiter != nil {
			r.Use(middleware.RateLimit(limiter, log))
		}
		r.MethodNotAllowed(handlers.MethodNotAllowed)

		r.Post("/chat", chatHandler.Chat)
		// Older widget builds post here.
		r.Post("/gemini-chat", chatHandler.Chat)
	})

	if staticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(staticDir)))
	}

	return r
}
