package orchestration

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/bizmatters/agent-builder/circuit-designer/internal/config"
	"github.com/bizmatters/agent-builder/circuit-designer/internal/editor"
	"github.com/bizmatters/agent-builder/circuit-designer/internal/llm"
	"github.com/bizmatters/agent-builder/circuit-designer/internal/metrics"
	"github.com/bizmatters/agent-builder/circuit-designer/internal/store"
)

// ErrNotInitialized means the API keys are not configured yet.
var ErrNotInitialized = errors.New("orchestrator not initialized. Please configure the API keys first")

// ClientFactory builds the two model clients for a pair of API keys.
type ClientFactory func(ctx context.Context, reasoningKey, visionKey string) (llm.Understander, llm.Validator, error)

// Manager owns the current Orchestrator and rebuilds it when keys change.
type Manager struct {
	store   store.UserConfigStore
	host    editor.Host
	factory ClientFactory
	metrics *metrics.DesignMetrics
	logger  *zap.Logger
	opts    Options

	mu      sync.RWMutex
	current *Orchestrator
}

// NewManager creates an inactive manager. Call Activate to build the orchestrator.
func NewManager(userConfig store.UserConfigStore, host editor.Host, factory ClientFactory, designMetrics *metrics.DesignMetrics, logger *zap.Logger, opts Options) *Manager {
	return &Manager{
		store:   userConfig,
		host:    host,
		factory: factory,
		metrics: designMetrics,
		logger:  logger,
		opts:    opts,
	}
}

// OptionsFromConfig maps designer config onto orchestrator options.
func OptionsFromConfig(cfg config.DesignerConfig) Options {
	return Options{
		FallbackPolicy:  FallbackPolicy(cfg.FallbackPolicy),
		RequireApproval: cfg.RequireApproval,
		HistoryLimit:    cfg.HistoryLimit,
	}
}

// DefaultClientFactory builds the HTTP reasoning client and the genai vision client.
func DefaultClientFactory(cfg *config.Config, logger *zap.Logger) (ClientFactory, error) {
	prompts, err := llm.LoadPrompts()
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context, reasoningKey, visionKey string) (llm.Understander, llm.Validator, error) {
		reasoning := llm.NewReasoningClient(cfg.Reasoning, reasoningKey, prompts, logger.Named("reasoning"))
		vision, err := llm.NewVisionClient(ctx, cfg.Vision, visionKey, prompts, logger.Named("vision"))
		if err != nil {
			return nil, nil, err
		}
		return reasoning, vision, nil
	}, nil
}

// Activate reads both API keys and builds a fresh orchestrator when both are set.
// It reports whether the manager is active afterwards.
func (m *Manager) Activate(ctx context.Context) (bool, error) {
	reasoningKey, err := m.store.Get(ctx, store.KeyReasoningAPIKey)
	if err != nil {
		return false, fmt.Errorf("failed to read reasoning key: %w", err)
	}
	visionKey, err := m.store.Get(ctx, store.KeyVisionAPIKey)
	if err != nil {
		return false, fmt.Errorf("failed to read vision key: %w", err)
	}

	if reasoningKey == "" || visionKey == "" {
		m.logger.Info("API keys not configured, designer stays inactive",
			zap.Bool("reasoning_key", reasoningKey != ""),
			zap.Bool("vision_key", visionKey != ""))
		return m.IsActive(), nil
	}

	understander, validator, err := m.factory(ctx, reasoningKey, visionKey)
	if err != nil {
		return false, fmt.Errorf("failed to create model clients: %w", err)
	}

	orchestrator := NewOrchestrator(understander, validator, m.host, nil, m.metrics, m.logger.Named("orchestrator"), m.opts)

	m.mu.Lock()
	m.current = orchestrator
	m.mu.Unlock()

	m.logger.Info("orchestrator initialized", zap.String("fallback_policy", string(m.opts.FallbackPolicy)))
	return true, nil
}

// Configure stores the non-empty keys and re-activates.
func (m *Manager) Configure(ctx context.Context, reasoningKey, visionKey string) (bool, error) {
	if reasoningKey != "" {
		if err := m.store.Set(ctx, store.KeyReasoningAPIKey, reasoningKey); err != nil {
			return false, fmt.Errorf("failed to save reasoning key: %w", err)
		}
	}
	if visionKey != "" {
		if err := m.store.Set(ctx, store.KeyVisionAPIKey, visionKey); err != nil {
			return false, fmt.Errorf("failed to save vision key: %w", err)
		}
	}
	return m.Activate(ctx)
}

// Current returns the active orchestrator or ErrNotInitialized.
func (m *Manager) Current() (*Orchestrator, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return nil, ErrNotInitialized
	}
	return m.current, nil
}

// IsActive reports whether an orchestrator exists.
func (m *Manager) IsActive() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current != nil
}

// Host returns the editor host the orchestrators use.
func (m *Manager) Host() editor.Host {
	return m.host
}
