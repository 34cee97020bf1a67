package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bizmatters/agent-builder/circuit-designer/internal/auth"
	"github.com/bizmatters/agent-builder/circuit-designer/internal/config"
	"github.com/bizmatters/agent-builder/circuit-designer/internal/editor"
	"github.com/bizmatters/agent-builder/circuit-designer/internal/gateway"
	"github.com/bizmatters/agent-builder/circuit-designer/internal/logging"
	"github.com/bizmatters/agent-builder/circuit-designer/internal/metrics"
	"github.com/bizmatters/agent-builder/circuit-designer/internal/orchestration"
	"github.com/bizmatters/agent-builder/circuit-designer/internal/store"
	"github.com/bizmatters/agent-builder/circuit-designer/internal/telemetry"

	_ "github.com/bizmatters/agent-builder/circuit-designer/docs" // swagger docs
)

// @title AI Circuit Designer API
// @version 1.0
// @description Turns plain-language circuit requests into schematics in the host editor.
// @description
// @description A request is understood by a reasoning model, laid out as components and wires,
// @description placed through the editor bridge and checked by a vision model.

// @contact.name API Support
// @contact.email support@bizmatters.dev

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT token.

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("failed to read .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited with error", zap.Error(err))
	}
	logger.Info("server exited")
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.InitTracer("circuit-designer", os.Stdout)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(flushCtx); err != nil {
			logger.Warn("failed to flush traces", zap.Error(err))
		}
	}()

	logger.Info("connecting to PostgreSQL database")
	pool, err := store.Connect(ctx, cfg.DatabaseURL, 10, 3*time.Second, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := store.EnsureSchema(ctx, pool); err != nil {
		return err
	}
	logger.Info("connected to PostgreSQL database")

	bridge := editor.NewBridgeClient(cfg.Editor, logger.Named("editor"))

	designMetrics, err := metrics.NewDesignMetrics()
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}

	factory, err := orchestration.DefaultClientFactory(cfg, logger)
	if err != nil {
		return err
	}

	manager := orchestration.NewManager(
		userConfigStore(cfg, pool, bridge),
		bridge,
		factory,
		designMetrics,
		logger.Named("designer"),
		orchestration.OptionsFromConfig(cfg.Designer),
	)
	if _, err := manager.Activate(ctx); err != nil {
		// Keys can still be supplied later through PUT /api/settings/ai.
		logger.Error("failed to activate designer", zap.Error(err))
	}

	jwtManager, err := auth.NewJWTManager(cfg.JWTSecret)
	if err != nil {
		return fmt.Errorf("failed to initialize JWT manager: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gateway.NewRouter(gateway.RouterDeps{
		Handler:    gateway.NewHandler(manager, store.NewUserRepository(pool), jwtManager, logger.Named("gateway")),
		Socket:     gateway.NewDesignerSocket(manager, designMetrics, logger.Named("ws"), gateway.SessionConfig{QueueSize: cfg.Designer.ProgressQueueSize, ApprovalTimeout: cfg.Designer.ApprovalTimeout}),
		JWTManager: jwtManager,
		Logger:     logger.Named("http"),
		Readiness: map[string]gateway.ReadinessCheck{
			"database": pool.Ping,
			"editor": func(ctx context.Context) error {
				if !bridge.IsHealthy(ctx) {
					return editor.ErrEditorUnavailable
				}
				return nil
			},
		},
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // a synchronous design run waits on both models
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting AI Circuit Designer API", zap.String("port", cfg.Port), zap.String("version", config.Version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func userConfigStore(cfg *config.Config, pool *pgxpool.Pool, bridge *editor.BridgeClient) store.UserConfigStore {
	if cfg.UserConfigBackend == config.BackendHost {
		return bridge
	}
	return store.NewPostgresUserConfigStore(pool)
}
