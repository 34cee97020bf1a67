package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryUserConfigStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryUserConfigStore()

	value, err := s.Get(ctx, KeyReasoningAPIKey)
	require.NoError(t, err)
	assert.Empty(t, value, "unset keys read as empty")

	require.NoError(t, s.Set(ctx, KeyReasoningAPIKey, "sk-test"))
	require.NoError(t, s.Set(ctx, KeyVisionAPIKey, "AIza-test"))

	value, err = s.Get(ctx, KeyReasoningAPIKey)
	require.NoError(t, err)
	assert.Equal(t, "sk-test", value)

	require.NoError(t, s.Set(ctx, KeyReasoningAPIKey, "sk-rotated"))
	value, _ = s.Get(ctx, KeyReasoningAPIKey)
	assert.Equal(t, "sk-rotated", value)
}
