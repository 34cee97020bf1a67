package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/bizmatters/agent-builder/circuit-designer/internal/config"
	"github.com/bizmatters/agent-builder/circuit-designer/internal/models"
)

// Validator judges a rendered schematic screenshot.
type Validator interface {
	Analyze(ctx context.Context, screenshot []byte) (*models.ValidationResult, error)
}

// VisionClient calls a Gemini generateContent endpoint with an inline PNG.
type VisionClient struct {
	client  *genai.Client
	model   string
	prompt  string
	tracer  trace.Tracer
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// visualAnalysis is the JSON verdict the analysis prompt asks for.
type visualAnalysis struct {
	OverallQuality   string                         `json:"overallQuality"`
	LayoutScore      float64                        `json:"layoutScore"`
	Strengths        []string                       `json:"strengths"`
	Issues           []models.ValidationIssue       `json:"issues"`
	Improvements     []models.ImprovementSuggestion `json:"improvements"`
	LearningPoints   []string                       `json:"learningPoints"`
	VisualComplexity string                         `json:"visualComplexity"`
	BeginnerFriendly bool                           `json:"beginnerFriendly"`
}

// NewVisionClient creates a vision client authenticated with apiKey.
func NewVisionClient(ctx context.Context, cfg config.VisionConfig, apiKey string, prompts *Prompts, logger *zap.Logger) (*VisionClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("vision API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    strings.TrimRight(cfg.Endpoint, "/") + "/",
			APIVersion: cfg.APIVersion,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}

	return &VisionClient{
		client:  client,
		model:   cfg.Model,
		prompt:  prompts.VisualAnalysis,
		tracer:  otel.Tracer("vision-client"),
		breaker: newBreaker("vision-llm", logger),
		logger:  logger,
	}, nil
}

// Analyze posts the screenshot with the analysis prompt and maps the verdict.
func (c *VisionClient) Analyze(ctx context.Context, screenshot []byte) (*models.ValidationResult, error) {
	ctx, span := c.tracer.Start(ctx, "llm.analyze_screenshot")
	defer span.End()

	span.SetAttributes(
		attribute.String("model", c.model),
		attribute.Int("screenshot_bytes", len(screenshot)),
	)

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.analyzeInternal(ctx, screenshot)
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("vision request failed: %w", err)
	}

	validation := result.(*models.ValidationResult)
	span.SetAttributes(
		attribute.String("quality", validation.Quality),
		attribute.Float64("score", validation.Score),
	)
	return validation, nil
}

func (c *VisionClient) analyzeInternal(ctx context.Context, screenshot []byte) (*models.ValidationResult, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(c.prompt),
			genai.NewPartFromBytes(screenshot, "image/png"),
		}, genai.RoleUser),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0.4),
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("generateContent failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("vision endpoint returned no text")
	}

	var analysis visualAnalysis
	if err := json.Unmarshal([]byte(text), &analysis); err != nil {
		return nil, fmt.Errorf("failed to parse visual analysis: %w", err)
	}

	c.logger.Debug("visual analysis received",
		zap.String("quality", analysis.OverallQuality),
		zap.Float64("score", analysis.LayoutScore),
		zap.String("complexity", analysis.VisualComplexity),
		zap.Int("improvements", len(analysis.Improvements)))

	return &models.ValidationResult{
		NeedsImprovement: analysis.OverallQuality == models.QualityNeedsImprovement,
		Quality:          analysis.OverallQuality,
		Score:            analysis.LayoutScore,
		Strengths:        analysis.Strengths,
		Issues:           analysis.Issues,
		Suggestions:      analysis.Improvements,
		LearningPoints:   analysis.LearningPoints,
		BeginnerFriendly: analysis.BeginnerFriendly,
	}, nil
}
