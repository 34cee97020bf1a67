package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("circuit-designer")

// DesignMetrics provides metrics collection for design runs
type DesignMetrics struct {
	runsCreatedCounter     metric.Int64Counter
	runsCompletedCounter   metric.Int64Counter
	runsFailedCounter      metric.Int64Counter
	runDurationHistogram   metric.Float64Histogram
	runsActiveGauge        metric.Int64UpDownCounter
	fallbacksCounter       metric.Int64Counter
	improvementCyclesCount metric.Int64Counter
	progressDroppedCounter metric.Int64Counter
}

// NewDesignMetrics creates a new design metrics collector
func NewDesignMetrics() (*DesignMetrics, error) {
	runsCreatedCounter, err := meter.Int64Counter(
		"circuit_designer.runs.created",
		metric.WithDescription("Total number of design runs started"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, err
	}

	runsCompletedCounter, err := meter.Int64Counter(
		"circuit_designer.runs.completed",
		metric.WithDescription("Total number of design runs completed successfully"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, err
	}

	runsFailedCounter, err := meter.Int64Counter(
		"circuit_designer.runs.failed",
		metric.WithDescription("Total number of design runs that failed"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, err
	}

	runDurationHistogram, err := meter.Float64Histogram(
		"circuit_designer.run.duration",
		metric.WithDescription("Duration of a design run in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	runsActiveGauge, err := meter.Int64UpDownCounter(
		"circuit_designer.runs.active",
		metric.WithDescription("Number of design runs in progress"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, err
	}

	fallbacksCounter, err := meter.Int64Counter(
		"circuit_designer.llm.fallbacks",
		metric.WithDescription("Model calls replaced by a fallback answer"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	improvementCyclesCount, err := meter.Int64Counter(
		"circuit_designer.improvement.cycles",
		metric.WithDescription("Improvement and revalidation cycles run"),
		metric.WithUnit("{cycle}"),
	)
	if err != nil {
		return nil, err
	}

	progressDroppedCounter, err := meter.Int64Counter(
		"circuit_designer.progress.dropped",
		metric.WithDescription("Progress messages dropped because a session queue was full"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return nil, err
	}

	return &DesignMetrics{
		runsCreatedCounter:     runsCreatedCounter,
		runsCompletedCounter:   runsCompletedCounter,
		runsFailedCounter:      runsFailedCounter,
		runDurationHistogram:   runDurationHistogram,
		runsActiveGauge:        runsActiveGauge,
		fallbacksCounter:       fallbacksCounter,
		improvementCyclesCount: improvementCyclesCount,
		progressDroppedCounter: progressDroppedCounter,
	}, nil
}

// RecordRunStarted records a new design run
func (m *DesignMetrics) RecordRunStarted(ctx context.Context) {
	m.runsCreatedCounter.Add(ctx, 1)
	m.runsActiveGauge.Add(ctx, 1)
}

// RecordRunCompleted records a successful run
func (m *DesignMetrics) RecordRunCompleted(ctx context.Context, duration time.Duration, improved bool) {
	m.runsCompletedCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.Bool("improved", improved),
		),
	)
	m.runDurationHistogram.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.String("status", "completed"),
		),
	)
	m.runsActiveGauge.Add(ctx, -1)
}

// RecordRunFailed records a failed run. stage names the pipeline stage that failed.
func (m *DesignMetrics) RecordRunFailed(ctx context.Context, stage string, duration time.Duration) {
	m.runsFailedCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("stage", stage),
		),
	)
	m.runDurationHistogram.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.String("status", "failed"),
		),
	)
	m.runsActiveGauge.Add(ctx, -1)
}

// RecordFallback records a model call replaced by the fallback answer
func (m *DesignMetrics) RecordFallback(ctx context.Context, stage string) {
	m.fallbacksCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("stage", stage),
		),
	)
}

// RecordImprovementCycle records one improvement and revalidation pass
func (m *DesignMetrics) RecordImprovementCycle(ctx context.Context, applied int) {
	m.improvementCyclesCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.Int("suggestions.applied", applied),
		),
	)
}

// RecordProgressDropped records progress messages lost to a full session queue
func (m *DesignMetrics) RecordProgressDropped(ctx context.Context, count int) {
	m.progressDroppedCounter.Add(ctx, int64(count))
}
