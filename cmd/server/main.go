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

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"concierge-backend/internal/config"
	"concierge-backend/internal/database"
	"concierge-backend/internal/handlers"
	"concierge-backend/internal/logging"
	"concierge-backend/internal/middleware"
	"concierge-backend/internal/router"
	"concierge-backend/internal/services"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ Configuration invalid: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(cfg.LogLevel, cfg.Env, os.Stdout)
	log.Info().Msg("🚀 Starting AI Concierge backend...")
	log.Info().Str("env", cfg.Env).Msg("✓ Environment variables loaded")

	// ──── Step 2: Load Persona ────
	persona, err := cfg.Persona(services.DefaultPersona)
	if err != nil {
		log.Fatal().Err(err).Msg("✗ Persona could not be loaded")
	}
	log.Info().Bool("custom", cfg.PersonaFile != "").Msg("✓ Persona loaded")

	// ──── Step 3: Initialize Gemini Client ────
	if !cfg.HasCredential() {
		log.Warn().Msg("GEMINI_API_KEY is not set, chat requests will fail with CONFIG_ERROR")
	}
	generator, closeGenerator, err := newGenerator(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("✗ Gemini client initialization failed")
	}
	defer closeGenerator()
	log.Info().Str("model", generator.Model()).Str("transport", cfg.GeminiTransport).Msg("✓ Gemini client initialized")

	concierge := services.NewConcierge(generator, persona, cfg.HistoryLimit)
	chatHandler := handlers.NewChatHandler(concierge, cfg.ReplyField, log)

	// ──── Step 4: Initialize Rate Limiter ────
	limiter, closeLimiter, err := newLimiter(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("✗ Redis connection failed")
	}
	defer closeLimiter()

	// ──── Step 5: Start HTTP Server ────
	r := router.New(log, chatHandler, limiter, cfg.AllowedOrigins, cfg.StaticDir, cfg.TrustProxyHeaders)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info().Msg("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown failed")
		}
	}()

	log.Info().Msgf("✓ AI Concierge ready on http://localhost:%s", cfg.Port)
	log.Info().Msgf("  API: http://localhost:%s/api/chat", cfg.Port)

	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server error")
	}
}

// newGenerator picks the Gemini transport. The SDK client needs a key at
// construction, so without one the REST client is used and reports the
// missing credential per request.
func newGenerator(cfg *config.Config) (services.Generator, func(), error) {
	opts := services.GeminiOptions{
		APIKey:          cfg.GeminiAPIKey,
		Model:           cfg.GeminiModel,
		BaseURL:         cfg.GeminiBaseURL,
		Temperature:     cfg.GeminiTemperature,
		MaxOutputTokens: cfg.GeminiMaxOutputTokens,
	}

	if cfg.GeminiTransport == config.TransportSDK && cfg.HasCredential() {
		sdk, err := services.NewGeminiSDK(context.Background(), opts)
		if err != nil {
			return nil, nil, err
		}
		return sdk, func() { sdk.Close() }, nil
	}
	return services.NewGeminiREST(opts), func() {}, nil
}

// newLimiter shares counters through Redis when REDIS_URL is set and keeps
// them in process otherwise. A zero rate disables limiting.
func newLimiter(cfg *config.Config, log zerolog.Logger) (middleware.RateLimiter, func(), error) {
	if cfg.RateLimitPerMinute <= 0 {
		log.Info().Msg("✓ Rate limiting disabled")
		return nil, func() {}, nil
	}

	if cfg.RedisURL != "" {
		client, err := database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Int("per_minute", cfg.RateLimitPerMinute).Msg("✓ Redis connected, rate limits shared")
		return middleware.NewRedisRateLimiter(client, cfg.RateLimitPerMinute, time.Minute), closeRedis(client, log), nil
	}

	limiter := middleware.NewMemoryRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	log.Info().Int("per_minute", cfg.RateLimitPerMinute).Msg("✓ In-memory rate limiter started")
	return limiter, limiter.Stop, nil
}

func closeRedis(client *redis.Client, log zerolog.Logger) func() {
	return func() {
		if err := client.Close(); err != nil {
			log.Error().Err(err).Msg("closing Redis client")
		}
	}
}
