package orchestration

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/bizmatters/agent-builder/circuit-designer/internal/config"
	"github.com/bizmatters/agent-builder/circuit-designer/internal/editor/editortest"
	"github.com/bizmatters/agent-builder/circuit-designer/internal/llm"
	"github.com/bizmatters/agent-builder/circuit-designer/internal/metrics"
	"github.com/bizmatters/agent-builder/circuit-designer/internal/store"
)

func newTestManager(t *testing.T, userConfig store.UserConfigStore, factory ClientFactory) *Manager {
	t.Helper()
	m, err := metrics.NewDesignMetrics()
	require.NoError(t, err)
	return NewManager(userConfig, editortest.NewFakeHost(), factory, m, zaptest.NewLogger(t), Options{})
}

func stubFactory(keys *[]string) ClientFactory {
	return func(_ context.Context, reasoningKey, visionKey string) (llm.Understander, llm.Validator, error) {
		*keys = append(*keys, reasoningKey, visionKey)
		return &stubUnderstander{result: ledUnderstanding()}, &stubValidator{}, nil
	}
}

func TestManager_InactiveWithoutKeys(t *testing.T) {
	var keys []string
	userConfig := store.NewMemoryUserConfigStore()
	require.NoError(t, userConfig.Set(context.Background(), store.KeyReasoningAPIKey, "sk-only"))
	m := newTestManager(t, userConfig, stubFactory(&keys))

	active, err := m.Activate(context.Background())
	require.NoError(t, err)
	assert.False(t, active)
	assert.Empty(t, keys)

	_, err = m.Current()
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestManager_Configure(t *testing.T) {
	ctx := context.Background()
	var keys []string
	userConfig := store.NewMemoryUserConfigStore()
	m := newTestManager(t, userConfig, stubFactory(&keys))

	active, err := m.Configure(ctx, "sk-test", "")
	require.NoError(t, err)
	assert.False(t, active, "one key is not enough")

	active, err = m.Configure(ctx, "", "AIza-test")
	require.NoError(t, err)
	assert.True(t, active)
	assert.Equal(t, []string{"sk-test", "AIza-test"}, keys)

	stored, _ := userConfig.Get(ctx, store.KeyReasoningAPIKey)
	assert.Equal(t, "sk-test", stored, "empty input keeps the stored key")

	first, err := m.Current()
	require.NoError(t, err)

	_, err = m.Configure(ctx, "sk-rotated", "")
	require.NoError(t, err)
	second, err := m.Current()
	require.NoError(t, err)
	assert.NotSame(t, first, second, "new keys build a fresh orchestrator")
	assert.Equal(t, "sk-rotated", keys[2])
}

func TestManager_FactoryError(t *testing.T) {
	ctx := context.Background()
	userConfig := store.NewMemoryUserConfigStore()
	m := newTestManager(t, userConfig, func(context.Context, string, string) (llm.Understander, llm.Validator, error) {
		return nil, nil, errors.New("bad key format")
	})

	_, err := m.Configure(ctx, "sk", "AIza")
	require.Error(t, err)
	assert.False(t, m.IsActive())
}

func TestOptionsFromConfig(t *testing.T) {
	opts := OptionsFromConfig(config.DesignerConfig{FallbackPolicy: config.FallbackFail, RequireApproval: true, HistoryLimit: 6})
	assert.Equal(t, Options{FallbackPolicy: FallbackFail, RequireApproval: true, HistoryLimit: 6}, opts)
}

func TestDefaultClientFactory(t *testing.T) {
	cfg := &config.Config{
		Reasoning: config.ReasoningConfig{Endpoint: "http://localhost", Model: "gpt"},
		Vision:    config.VisionConfig{Endpoint: "http://localhost", APIVersion: "v1", Model: "gemini"},
	}
	factory, err := DefaultClientFactory(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	u, v, err := factory(context.Background(), "sk", "AIza")
	require.NoError(t, err)
	assert.IsType(t, &llm.ReasoningClient{}, u)
	assert.IsType(t, &llm.VisionClient{}, v)
}
