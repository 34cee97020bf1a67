package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/bizmatters/agent-builder/circuit-designer/internal/config"
	"github.com/bizmatters/agent-builder/circuit-designer/internal/models"
)

func TestLoadPrompts(t *testing.T) {
	prompts, err := LoadPrompts()
	require.NoError(t, err)

	assert.Contains(t, prompts.Understanding, "requiredComponents")
	assert.Contains(t, prompts.Understanding, "jlcpcbId")
	assert.Contains(t, prompts.VisualAnalysis, "overallQuality")
	assert.Contains(t, prompts.VisualAnalysis, "improvements")
}

func TestReasoningClient_Understand(t *testing.T) {
	prompts, err := LoadPrompts()
	require.NoError(t, err)

	tests := []struct {
		name          string
		handler       http.HandlerFunc
		expectedGoal  string
		expectedError string
	}{
		{
			name: "success",
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

				var req chatCompletionRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, "gpt-test", req.Model)
				assert.Equal(t, 0.7, req.Temperature)
				assert.Equal(t, "high", req.ReasoningEffort)
				assert.Equal(t, "json_object", req.ResponseFormat.Type)
				require.Len(t, req.Messages, 4)
				assert.Equal(t, "system", req.Messages[0].Role)
				assert.Equal(t, "earlier question", req.Messages[1].Content)
				assert.Equal(t, "user", req.Messages[3].Role)
				assert.Equal(t, "blink an LED", req.Messages[3].Content)

				content, _ := json.Marshal(models.RequestUnderstanding{
					UserGoal:           "blink an LED",
					RequiredComponents: []models.ComponentRequirement{{Name: "LED", LCSCID: "C2286"}},
				})
				json.NewEncoder(w).Encode(map[string]any{
					"choices":   []any{map[string]any{"message": map[string]any{"content": string(content)}}},
					"reasoning": "thought about it",
				})
			},
			expectedGoal: "blink an LED",
		},
		{
			name: "server_error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte("bad key"))
			},
			expectedError: "reasoning endpoint returned status 401",
		},
		{
			name: "content_not_json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]any{
					"choices": []any{map[string]any{"message": map[string]any{"content": "sorry"}}},
				})
			},
			expectedError: "failed to parse understanding",
		},
		{
			name: "no_choices",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"choices":[]}`))
			},
			expectedError: "no choices",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := NewReasoningClient(config.ReasoningConfig{
				Endpoint: server.URL,
				Model:    "gpt-test",
				Timeout:  5 * time.Second,
			}, "sk-test", prompts, zaptest.NewLogger(t))

			history := []models.Message{
				{Role: "user", Content: "earlier question"},
				{Role: "assistant", Content: "{}"},
			}
			understanding, err := client.Understand(context.Background(), history, "blink an LED")
			if tt.expectedError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedGoal, understanding.UserGoal)
			require.Len(t, understanding.RequiredComponents, 1)
			assert.Equal(t, "C2286", understanding.RequiredComponents[0].LCSCID)
		})
	}
}

func TestVisionClient_Analyze(t *testing.T) {
	prompts, err := LoadPrompts()
	require.NoError(t, err)

	verdict := `{
		"overallQuality": "needsImprovement",
		"layoutScore": 62,
		"strengths": ["clear labels"],
		"issues": [{"severity": "error", "location": "R1", "description": "overlaps D1"}],
		"improvements": [{"component": "e1", "action": "move", "newPosition": {"x": 200, "y": 100}, "reason": "overlap", "severity": "error"}],
		"learningPoints": ["current limiting"],
		"visualComplexity": "simple",
		"beginnerFriendly": false
	}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "gemini-test:generateContent"), r.URL.Path)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "image/png")
		assert.Contains(t, string(body), "overallQuality")

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{
					"role":  "model",
					"parts": []any{map[string]any{"text": verdict}},
				},
			}},
		})
	}))
	defer server.Close()

	client, err := NewVisionClient(context.Background(), config.VisionConfig{
		Endpoint:   server.URL,
		APIVersion: "v1",
		Model:      "gemini-test",
		Timeout:    5 * time.Second,
	}, "AIza-test", prompts, zaptest.NewLogger(t))
	require.NoError(t, err)

	result, err := client.Analyze(context.Background(), []byte{0x89, 'P', 'N', 'G'})
	require.NoError(t, err)

	assert.True(t, result.NeedsImprovement)
	assert.Equal(t, models.QualityNeedsImprovement, result.Quality)
	assert.Equal(t, 62.0, result.Score)
	assert.False(t, result.BeginnerFriendly)
	require.Len(t, result.Suggestions, 1)
	assert.Equal(t, models.ActionMove, result.Suggestions[0].Action)
	assert.Equal(t, &models.Point{X: 200, Y: 100}, result.Suggestions[0].NewPosition)
}

func TestVisionClient_ServerError(t *testing.T) {
	prompts, err := LoadPrompts()
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": {"code": 500, "message": "boom", "status": "INTERNAL"}}`))
	}))
	defer server.Close()

	client, err := NewVisionClient(context.Background(), config.VisionConfig{
		Endpoint:   server.URL,
		APIVersion: "v1",
		Model:      "gemini-test",
		Timeout:    5 * time.Second,
	}, "AIza-test", prompts, zaptest.NewLogger(t))
	require.NoError(t, err)

	_, err = client.Analyze(context.Background(), []byte{1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vision request failed")
}

func TestNewVisionClient_RequiresKey(t *testing.T) {
	prompts, err := LoadPrompts()
	require.NoError(t, err)

	_, err = NewVisionClient(context.Background(), config.VisionConfig{Model: "m"}, "", prompts, zaptest.NewLogger(t))
	assert.Error(t, err)
}
