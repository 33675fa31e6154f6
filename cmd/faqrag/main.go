package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/campushelp/faqrag/internal/config"
	dbRedis "github.com/campushelp/faqrag/internal/db/redis"
	logpkg "github.com/campushelp/faqrag/internal/logger"
	"github.com/campushelp/faqrag/internal/metrics"
	indexrepo "github.com/campushelp/faqrag/internal/repository/index"
	recordsrepo "github.com/campushelp/faqrag/internal/repository/records"
	chiTransport "github.com/campushelp/faqrag/internal/transport/chi"
	openaiTransport "github.com/campushelp/faqrag/internal/transport/openai"
	answeruc "github.com/campushelp/faqrag/internal/usecase/answer"
	healthuc "github.com/campushelp/faqrag/internal/usecase/health"
	indexeruc "github.com/campushelp/faqrag/internal/usecase/indexer"
	retrievaluc "github.com/campushelp/faqrag/internal/usecase/retrieval"
	"github.com/campushelp/faqrag/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting faqrag API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("index_addrs", cfg.Index.Addrs),
	)

	// Vector index store
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Index.Addrs,
		Password: cfg.Index.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create index store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Index.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Index store not ready", zap.Error(err))
	}
	logger.Info("Connected to index store")

	// Content store
	gormDB, err := recordsrepo.Open(cfg.Records.DSN)
	if err != nil {
		logger.Fatal("Failed to connect to records database", zap.Error(err))
	}
	records := recordsrepo.New(gormDB)

	// Register Prometheus metrics explicitly (no init())
	metrics.RegisterClientMetrics()
	metrics.RegisterPipelineMetrics()

	// Model providers
	embedder := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Timeout:    time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
		Logger:     logger,
	})
	synthesizer := openaiTransport.NewSynthesizer(&openaiTransport.SynthesizerConfig{
		APIKey:      cfg.Synthesis.APIKey,
		BaseURL:     cfg.Synthesis.BaseURL,
		Model:       cfg.Synthesis.Model,
		Temperature: cfg.Synthesis.Temperature,
		MaxTokens:   cfg.Synthesis.MaxTokens,
		Timeout:     time.Duration(cfg.Synthesis.TimeoutSec) * time.Second,
		Logger:      logger,
	})
	logger.Info("Model clients created",
		zap.String("embedding_model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
		zap.String("synthesis_model", cfg.Synthesis.Model),
	)

	// Repositories
	index := indexrepo.New(store, indexrepo.Config{
		Name:         cfg.Index.Name,
		KeyPrefix:    cfg.Index.KeyPrefix,
		Dimensions:   cfg.Embedding.Dimensions,
		ListPageSize: cfg.Index.ListPageSize,
	})

	// Use case services
	indexerSvc := indexeruc.New(records, index, embedder, logger)
	retrievalSvc := retrievaluc.New(embedder, index, logger)
	answerSvc := answeruc.New(retrievalSvc, synthesizer, answeruc.Config{
		DefaultLanguage: cfg.Answer.DefaultLanguage,
		RedirectLabel:   cfg.Answer.RedirectLabel,
		RedirectURL:     cfg.Answer.RedirectURL,
	}, logger)
	healthSvc := healthuc.New(records, store, embedder)

	// HTTP server
	server := chiTransport.NewServer(answerSvc, indexerSvc, healthSvc, cfg.Answer.DefaultTopK, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// One canonical log line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
