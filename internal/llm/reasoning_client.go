package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/bizmatters/agent-builder/circuit-designer/internal/config"
	"github.com/bizmatters/agent-builder/circuit-designer/internal/models"
)

// Understander turns a user request into a structured understanding.
type Understander interface {
	Understand(ctx context.Context, history []models.Message, userInput string) (*models.RequestUnderstanding, error)
}

// ReasoningClient calls an OpenAI compatible chat completions endpoint.
type ReasoningClient struct {
	endpoint     string
	model        string
	apiKey       string
	systemPrompt string
	httpClient   *http.Client
	tracer       trace.Tracer
	breaker      *gobreaker.CircuitBreaker
	logger       *zap.Logger
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatCompletionRequest struct {
	Model           string         `json:"model"`
	Messages        []chatMessage  `json:"messages"`
	Temperature     float64        `json:"temperature"`
	ReasoningEffort string         `json:"reasoning_effort"`
	ResponseFormat  responseFormat `json:"response_format"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Reasoning json.RawMessage `json:"reasoning,omitempty"`
}

// NewReasoningClient creates a reasoning client authenticated with apiKey.
func NewReasoningClient(cfg config.ReasoningConfig, apiKey string, prompts *Prompts, logger *zap.Logger) *ReasoningClient {
	return &ReasoningClient{
		endpoint:     cfg.Endpoint,
		model:        cfg.Model,
		apiKey:       apiKey,
		systemPrompt: prompts.Understanding,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		tracer:       otel.Tracer("reasoning-client"),
		breaker:      newBreaker("reasoning-llm", logger),
		logger:       logger,
	}
}

// Understand sends the system prompt, history and user input and parses the JSON answer.
func (c *ReasoningClient) Understand(ctx context.Context, history []models.Message, userInput string) (*models.RequestUnderstanding, error) {
	ctx, span := c.tracer.Start(ctx, "llm.understand")
	defer span.End()

	span.SetAttributes(
		attribute.String("model", c.model),
		attribute.Int("history_length", len(history)),
	)

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.understandInternal(ctx, history, userInput)
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("reasoning request failed: %w", err)
	}

	return result.(*models.RequestUnderstanding), nil
}

func (c *ReasoningClient) understandInternal(ctx context.Context, history []models.Message, userInput string) (*models.RequestUnderstanding, error) {
	messages := make([]chatMessage, 0, len(history)+2)
	messages = append(messages, chatMessage{Role: "system", Content: c.systemPrompt})
	for _, m := range history {
		messages = append(messages, chatMessage{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, chatMessage{Role: "user", Content: userInput})

	jsonData, err := json.Marshal(chatCompletionRequest{
		Model:           c.model,
		Messages:        messages,
		Temperature:     0.7,
		ReasoningEffort: "high",
		ResponseFormat:  responseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("reasoning endpoint returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var completion chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("reasoning endpoint returned no choices")
	}

	if len(completion.Reasoning) > 0 && string(completion.Reasoning) != "null" {
		c.logger.Debug("reasoning trace", zap.ByteString("reasoning", completion.Reasoning))
	}

	var understanding models.RequestUnderstanding
	if err := json.Unmarshal([]byte(completion.Choices[0].Message.Content), &understanding); err != nil {
		return nil, fmt.Errorf("failed to parse understanding: %w", err)
	}
	return &understanding, nil
}
