package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bizmatters/agent-builder/circuit-designer/internal/config"
	"github.com/bizmatters/agent-builder/circuit-designer/internal/editor"
	"github.com/bizmatters/agent-builder/circuit-designer/internal/logging"
	"github.com/bizmatters/agent-builder/circuit-designer/internal/metrics"
	"github.com/bizmatters/agent-builder/circuit-designer/internal/orchestration"
	"github.com/bizmatters/agent-builder/circuit-designer/internal/store"
	"github.com/bizmatters/agent-builder/circuit-designer/internal/telemetry"
)

type rootOptions struct {
	envFile  string
	logLevel string
}

// env is the shared state built once per command invocation.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	pool   *pgxpool.Pool
	bridge *editor.BridgeClient
	meters *metrics.DesignMetrics

	shutdownTracer func(context.Context) error
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "designerctl",
		Short:         "Operate the AI circuit designer",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override LOG_LEVEL")

	cmd.AddCommand(
		newSeedUserCmd(opts),
		newConfigureCmd(opts),
		newDesignCmd(opts),
		newAboutCmd(),
	)
	return cmd
}

// setup loads config and connects to PostgreSQL when requireDatabase is set
// or user config is stored there.
func (o *rootOptions) setup(ctx context.Context, requireDatabase bool) (*env, error) {
	if err := godotenv.Load(o.envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read %s: %w", o.envFile, err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	shutdown, err := telemetry.InitTracer("designerctl", io.Discard)
	if err != nil {
		return nil, err
	}

	designMetrics, err := metrics.NewDesignMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	e := &env{
		cfg:            cfg,
		logger:         logger,
		bridge:         editor.NewBridgeClient(cfg.Editor, logger.Named("editor")),
		meters:         designMetrics,
		shutdownTracer: shutdown,
	}

	if requireDatabase || cfg.UserConfigBackend == config.BackendPostgres {
		pool, err := store.Connect(ctx, cfg.DatabaseURL, 3, time.Second, logger)
		if err != nil {
			e.close()
			return nil, err
		}
		if err := store.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			e.close()
			return nil, err
		}
		e.pool = pool
	}
	return e, nil
}

// newManager builds an inactive designer manager over the configured backends.
func (e *env) newManager() (*orchestration.Manager, error) {
	factory, err := orchestration.DefaultClientFactory(e.cfg, e.logger)
	if err != nil {
		return nil, err
	}
	return orchestration.NewManager(e.userConfig(), e.bridge, factory, e.meters, e.logger.Named("designer"), orchestration.OptionsFromConfig(e.cfg.Designer)), nil
}

// userConfig returns the backend the API server reads keys from.
func (e *env) userConfig() store.UserConfigStore {
	if e.cfg.UserConfigBackend == config.BackendHost {
		return e.bridge
	}
	return store.NewPostgresUserConfigStore(e.pool)
}

func (e *env) close() {
	if e.pool != nil {
		e.pool.Close()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = e.shutdownTracer(ctx)
	_ = e.logger.Sync()
}

func newAboutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "about",
		Short: "Print the extension name and version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s v%s\n", config.ExtensionName, config.Version)
		},
	}
}
