// Package orchestration runs the design pipeline: understand, generate a
// spec, implement it in the host editor, validate the rendering and improve
// it at most once.
package orchestration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/bizmatters/agent-builder/circuit-designer/internal/editor"
	"github.com/bizmatters/agent-builder/circuit-designer/internal/llm"
	"github.com/bizmatters/agent-builder/circuit-designer/internal/metrics"
	"github.com/bizmatters/agent-builder/circuit-designer/internal/models"
)

// ErrImplementationFailed wraps every host failure during the implement stage.
var ErrImplementationFailed = errors.New("circuit implementation failed")

// Options configures an Orchestrator.
type Options struct {
	FallbackPolicy  FallbackPolicy
	RequireApproval bool
	HistoryLimit    int
}

// Orchestrator runs design requests against one host editor.
// Process calls are serialized since they all edit the same open document.
type Orchestrator struct {
	understander llm.Understander
	validator    llm.Validator
	host         editor.Host
	specs        SpecGenerator
	metrics      *metrics.DesignMetrics
	logger       *zap.Logger
	tracer       trace.Tracer
	opts         Options

	run chan struct{}

	mu      sync.Mutex
	history []models.Message
	last    *models.DesignState
}

// NewOrchestrator wires an orchestrator. specs defaults to TemplateSpecGenerator.
func NewOrchestrator(
	understander llm.Understander,
	validator llm.Validator,
	host editor.Host,
	specs SpecGenerator,
	designMetrics *metrics.DesignMetrics,
	logger *zap.Logger,
	opts Options,
) *Orchestrator {
	if specs == nil {
		specs = TemplateSpecGenerator{}
	}
	if opts.FallbackPolicy == "" {
		opts.FallbackPolicy = FallbackDegrade
	}

	return &Orchestrator{
		understander: understander,
		validator:    validator,
		host:         host,
		specs:        specs,
		metrics:      designMetrics,
		logger:       logger,
		tracer:       otel.Tracer("orchestrator"),
		opts:         opts,
		run:          make(chan struct{}, 1),
	}
}

// Process runs the whole pipeline for one user request. It returns a complete
// response or an error, never a partial response.
func (o *Orchestrator) Process(ctx context.Context, userInput string, convCtx *models.ConversationContext, progress Progress) (*models.DesignResponse, error) {
	if progress == nil {
		progress = nopProgress{}
	}

	select {
	case o.run <- struct{}{}:
		defer func() { <-o.run }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	runID := uuid.NewString()
	ctx, span := o.tracer.Start(ctx, "orchestrator.process")
	defer span.End()
	span.SetAttributes(attribute.String("run_id", runID))

	logger := o.logger.With(zap.String("run_id", runID))
	logger.Info("processing design request", zap.Int("input_length", len(userInput)))

	start := time.Now()
	o.metrics.RecordRunStarted(ctx)

	fail := func(stage string, err error) (*models.DesignResponse, error) {
		span.RecordError(err)
		o.metrics.RecordRunFailed(ctx, stage, time.Since(start))
		logger.Error("design request failed", zap.String("stage", stage), zap.Error(err))
		return nil, err
	}

	understanding, err := o.understand(ctx, logger, userInput, convCtx)
	if err != nil {
		return fail("understand", err)
	}

	spec, err := o.specs.Generate(ctx, understanding)
	if err != nil {
		return fail("generate", fmt.Errorf("failed to generate design spec: %w", err))
	}

	impl, err := o.implement(ctx, logger, spec, progress)
	if err != nil {
		return fail("implement", err)
	}

	validation, err := o.validate(ctx, logger, impl)
	if err != nil {
		return fail("validate", err)
	}

	resp := &models.DesignResponse{
		Success:        true,
		Design:         impl,
		VisualAnalysis: validation,
	}

	if validation.NeedsImprovement {
		final, err := o.improve(ctx, logger, impl, validation.Suggestions, progress)
		if err != nil {
			return fail("improve", err)
		}
		resp.VisualAnalysis = final
		resp.Improvements = append([]models.ImprovementSuggestion{}, validation.Suggestions...)
	}

	resp.Explanation = buildExplanation(spec, impl, resp.VisualAnalysis)

	o.mu.Lock()
	o.last = &models.DesignState{
		RunID:          runID,
		UserInput:      userInput,
		Understanding:  understanding,
		Spec:           spec,
		Implementation: impl,
		Response:       resp,
		CompletedAt:    time.Now().UTC(),
	}
	o.mu.Unlock()

	o.metrics.RecordRunCompleted(ctx, time.Since(start), resp.Improvements != nil)
	logger.Info("design request completed",
		zap.Int("components", len(impl.ComponentIDs)),
		zap.Int("wires", len(impl.WireIDs)),
		zap.Float64("score", resp.VisualAnalysis.Score),
		zap.Bool("improved", resp.Improvements != nil),
		zap.Duration("duration", time.Since(start)))

	return resp, nil
}

// LastDesign returns the state of the most recent successful run, or nil.
func (o *Orchestrator) LastDesign() *models.DesignState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.last
}

// History returns a copy of the running conversation history.
func (o *Orchestrator) History() []models.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]models.Message(nil), o.history...)
}

func (o *Orchestrator) understand(ctx context.Context, logger *zap.Logger, userInput string, convCtx *models.ConversationContext) (*models.RequestUnderstanding, error) {
	history := o.History()
	if convCtx != nil && len(convCtx.PreviousMessages) > 0 {
		history = convCtx.PreviousMessages
	}

	understanding, err := o.understander.Understand(ctx, history, userInput)
	if err != nil {
		if ctx.Err() != nil || o.opts.FallbackPolicy == FallbackFail {
			return nil, fmt.Errorf("request understanding failed: %w", err)
		}
		logger.Warn("reasoning call failed, using fallback understanding", zap.Error(err))
		o.metrics.RecordFallback(ctx, "understand")
		return FallbackUnderstanding(userInput), nil
	}

	answer, err := json.Marshal(understanding)
	if err == nil {
		o.appendHistory(
			models.Message{Role: "user", Content: userInput},
			models.Message{Role: "assistant", Content: string(answer)},
		)
	}

	return understanding, nil
}

func (o *Orchestrator) appendHistory(msgs ...models.Message) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.history = append(o.history, msgs...)
	if o.opts.HistoryLimit > 0 && len(o.history) > o.opts.HistoryLimit {
		o.history = append([]models.Message(nil), o.history[len(o.history)-o.opts.HistoryLimit:]...)
	}
}

// implement places all components, then all wires, then captures a screenshot.
// Nothing is rolled back on failure.
func (o *Orchestrator) implement(ctx context.Context, logger *zap.Logger, spec *models.DesignSpec, progress Progress) (*models.CircuitImplementation, error) {
	ctx, span := o.tracer.Start(ctx, "orchestrator.implement")
	defer span.End()

	impl := &models.CircuitImplementation{
		ComponentIDs: []string{},
		WireIDs:      []string{},
	}

	for _, comp := range spec.Schematic.Components {
		id, err := o.placeComponent(ctx, comp)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("%w: %w", ErrImplementationFailed, err)
		}
		impl.ComponentIDs = append(impl.ComponentIDs, id)
		progress.Report(ctx, fmt.Sprintf("Placed %s", comp.ID))
	}

	for _, conn := range spec.Schematic.Connections {
		id, err := o.host.CreateWire(ctx, conn.Path, conn.Net)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("%w: failed to create wire %s: %w", ErrImplementationFailed, conn.Net, err)
		}
		impl.WireIDs = append(impl.WireIDs, id)
		progress.Report(ctx, fmt.Sprintf("Wired %s", conn.Net))
	}

	o.organizeLayout(ctx)

	screenshot, err := o.host.CaptureRenderedArea(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: failed to capture screenshot: %w", ErrImplementationFailed, err)
	}
	impl.Screenshot = screenshot
	impl.Success = true

	span.SetAttributes(
		attribute.Int("components", len(impl.ComponentIDs)),
		attribute.Int("wires", len(impl.WireIDs)),
		attribute.Bool("screenshot", len(screenshot) > 0),
	)
	logger.Debug("circuit implemented",
		zap.Strings("component_ids", impl.ComponentIDs),
		zap.Strings("wire_ids", impl.WireIDs))

	return impl, nil
}

func (o *Orchestrator) placeComponent(ctx context.Context, comp models.ComponentSpec) (string, error) {
	device, err := o.host.LookupDevice(ctx, comp.LCSCID)
	if err != nil {
		return "", fmt.Errorf("failed to look up %s (%s): %w", comp.ID, comp.LCSCID, err)
	}

	id, err := o.host.CreateComponent(ctx, device, comp.Position.X, comp.Position.Y, comp.Rotation)
	if err != nil {
		return "", fmt.Errorf("failed to place %s: %w", comp.ID, err)
	}
	return id, nil
}

// organizeLayout is intentionally empty; the host owns layout.
func (o *Orchestrator) organizeLayout(context.Context) {}

func (o *Orchestrator) validate(ctx context.Context, logger *zap.Logger, impl *models.CircuitImplementation) (*models.ValidationResult, error) {
	if len(impl.Screenshot) == 0 {
		logger.Warn("no screenshot available, skipping visual validation")
		return DefaultValidation(), nil
	}

	result, err := o.validator.Analyze(ctx, impl.Screenshot)
	if err != nil {
		if ctx.Err() != nil || o.opts.FallbackPolicy == FallbackFail {
			return nil, fmt.Errorf("visual validation failed: %w", err)
		}
		logger.Warn("vision call failed, using default validation", zap.Error(err))
		o.metrics.RecordFallback(ctx, "validate")
		return DefaultValidation(), nil
	}
	return result, nil
}

// improve applies error-severity suggestions, re-captures the screenshot and
// validates exactly once more.
func (o *Orchestrator) improve(ctx context.Context, logger *zap.Logger, impl *models.CircuitImplementation, suggestions []models.ImprovementSuggestion, progress Progress) (*models.ValidationResult, error) {
	ctx, span := o.tracer.Start(ctx, "orchestrator.improve")
	defer span.End()

	applied := 0
	for _, s := range suggestions {
		if s.Severity != models.SeverityError {
			continue
		}

		if o.opts.RequireApproval {
			approved, err := requestApproval(ctx, progress, s)
			if err != nil {
				return nil, fmt.Errorf("approval request failed: %w", err)
			}
			if !approved {
				logger.Info("improvement declined", zap.String("component", s.Component), zap.String("action", s.Action))
				continue
			}
		}

		ok, err := o.applyImprovement(ctx, logger, s)
		if err != nil {
			return nil, fmt.Errorf("failed to apply improvement to %s: %w", s.Component, err)
		}
		if ok {
			applied++
			progress.Report(ctx, fmt.Sprintf("Improved %s (%s)", s.Component, s.Action))
		}
	}

	screenshot, err := o.host.CaptureRenderedArea(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to capture screenshot: %w", err)
	}
	impl.Screenshot = screenshot

	o.metrics.RecordImprovementCycle(ctx, applied)
	span.SetAttributes(attribute.Int("applied", applied))

	return o.validate(ctx, logger, impl)
}

func (o *Orchestrator) applyImprovement(ctx context.Context, logger *zap.Logger, s models.ImprovementSuggestion) (bool, error) {
	switch s.Action {
	case models.ActionMove:
		if s.NewPosition == nil {
			return false, nil
		}
		if _, err := o.host.GetPrimitive(ctx, s.Component); err != nil {
			if errors.Is(err, editor.ErrPrimitiveNotFound) {
				logger.Warn("suggested component not found", zap.String("component", s.Component))
				return false, nil
			}
			return false, err
		}
		x, y := s.NewPosition.X, s.NewPosition.Y
		return true, o.host.ModifyComponent(ctx, s.Component, editor.ComponentPatch{X: &x, Y: &y})

	case models.ActionRotate:
		if s.NewRotation == nil {
			return false, nil
		}
		rotation := *s.NewRotation
		return true, o.host.ModifyComponent(ctx, s.Component, editor.ComponentPatch{Rotation: &rotation})

	case models.ActionReplace:
		logger.Info("replace suggestions are not supported", zap.String("component", s.Component))
		return false, nil

	default:
		logger.Warn("unknown improvement action", zap.String("action", s.Action))
		return false, nil
	}
}
