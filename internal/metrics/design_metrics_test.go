package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDesignMetrics_Creation(t *testing.T) {
	m, err := NewDesignMetrics()
	require.NoError(t, err)
	assert.NotNil(t, m.runsCreatedCounter)
	assert.NotNil(t, m.runsCompletedCounter)
	assert.NotNil(t, m.runsFailedCounter)
	assert.NotNil(t, m.runDurationHistogram)
	assert.NotNil(t, m.runsActiveGauge)
	assert.NotNil(t, m.fallbacksCounter)
	assert.NotNil(t, m.improvementCyclesCount)
	assert.NotNil(t, m.progressDroppedCounter)
}

func TestDesignMetrics_RunLifecycle(t *testing.T) {
	m, err := NewDesignMetrics()
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("completed run", func(t *testing.T) {
		assert.NotPanics(t, func() {
			m.RecordRunStarted(ctx)
			m.RecordFallback(ctx, "understand")
			m.RecordImprovementCycle(ctx, 2)
			m.RecordRunCompleted(ctx, 3*time.Second, true)
		})
	})

	t.Run("failed run", func(t *testing.T) {
		assert.NotPanics(t, func() {
			m.RecordRunStarted(ctx)
			m.RecordRunFailed(ctx, "implement", 500*time.Millisecond)
		})
	})

	t.Run("dropped progress", func(t *testing.T) {
		assert.NotPanics(t, func() {
			m.RecordProgressDropped(ctx, 3)
		})
	})
}
