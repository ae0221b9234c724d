package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/bvm-labs/catalogchat/internal/config"
	"github.com/bvm-labs/catalogchat/internal/domain/catalog/field"
	logpkg "github.com/bvm-labs/catalogchat/internal/logger"
	"github.com/bvm-labs/catalogchat/internal/metrics"
	"github.com/bvm-labs/catalogchat/internal/repository/session"
	chiTransport "github.com/bvm-labs/catalogchat/internal/transport/chi"
	openaiLLM "github.com/bvm-labs/catalogchat/internal/transport/openai"
	"github.com/bvm-labs/catalogchat/internal/transport/salsify"
	aggregateuc "github.com/bvm-labs/catalogchat/internal/usecase/aggregate"
	chatuc "github.com/bvm-labs/catalogchat/internal/usecase/chat"
	intentuc "github.com/bvm-labs/catalogchat/internal/usecase/intent"
	"github.com/bvm-labs/catalogchat/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting catalogchat server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("catalog_domain", cfg.Catalog.Domain),
		zap.String("llm_model", cfg.LLM.Model),
		zap.String("session_driver", cfg.Session.Driver),
	)

	metrics.RegisterChatMetrics()

	// Session store based on driver
	var sessions chatuc.SessionStore
	switch cfg.Session.Driver {
	case "memory":
		sessions = session.NewMemoryStore(cfg.Session.MaxEntries)
	case "redis":
		store, err := session.NewRedisStore(session.RedisConfig{
			Addrs:     cfg.Session.Addrs,
			Password:  cfg.Session.Password,
			KeyPrefix: cfg.Session.KeyPrefix,
			Max:       cfg.Session.MaxEntries,
		})
		if err != nil {
			logger.Fatal("Failed to create session store", zap.Error(err))
		}
		defer store.Close()
		if err := store.Ping(context.Background()); err != nil {
			logger.Fatal("Session store not ready", zap.Error(err))
		}
		sessions = store
	default:
		logger.Fatal("Unknown session driver", zap.String("driver", cfg.Session.Driver))
	}

	catalog := salsify.NewClient(&salsify.Config{
		Domain:  cfg.Catalog.Domain,
		Token:   cfg.Catalog.Token,
		Timeout: time.Duration(cfg.Catalog.TimeoutSec) * time.Second,
		Logger:  logger,
	})

	llm := openaiLLM.NewClient(&openaiLLM.Config{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Logger:  logger,
	})

	registry, err := buildRegistry(cfg.Chat.Fields)
	if err != nil {
		logger.Fatal("Invalid attribute set", zap.Error(err))
	}

	intents := intentuc.New(llm, registry).WithPrompt(cfg.LLM.InterpretPrompt)
	aggregator := aggregateuc.New(logger).
		WithChunkSize(cfg.Chat.ChunkSize).
		WithBatchSize(cfg.Chat.BatchSize).
		WithDelay(time.Duration(cfg.Chat.InterBatchDelayMS) * time.Millisecond).
		WithChunkTimeout(time.Duration(cfg.Chat.ChunkTimeoutSec) * time.Second)
	chatSvc := chatuc.New(intents, catalog, llm, aggregator, sessions, logger).
		WithPageSize(cfg.Catalog.PageSize).
		WithSummaryPrompt(cfg.LLM.SummaryPrompt)

	server := chiTransport.NewServer(chatSvc, logger)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(requestLogger(logger))
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

// buildRegistry creates the attribute registry from config, falling back to
// the built-in product attribute set.
func buildRegistry(fields []config.FieldConfig) (*field.Registry, error) {
	if len(fields) == 0 {
		return field.Default(), nil
	}
	defs := make([]field.Definition, 0, len(fields))
	for _, fc := range fields {
		var (
			def field.Definition
			err error
		)
		if fc.Locale != "" {
			def, err = field.NewLocalized(fc.Name, fc.Locale)
		} else {
			def, err = field.New(fc.Name)
		}
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", fc.Name, err)
		}
		defs = append(defs, def)
	}
	return field.NewRegistry(defs...), nil
}

// requestLogger stores a request-scoped logger carrying the request id.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqLogger := logger.With(
				zap.String("request_id", chiMiddleware.GetReqID(r.Context())),
			)
			next.ServeHTTP(w, r.WithContext(logpkg.WithContext(r.Context(), reqLogger)))
		})
	}
}
