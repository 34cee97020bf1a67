package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"github.com/bizmatters/agent-builder/circuit-designer/internal/auth"
	"github.com/bizmatters/agent-builder/circuit-designer/internal/editor/editortest"
	"github.com/bizmatters/agent-builder/circuit-designer/internal/llm"
	"github.com/bizmatters/agent-builder/circuit-designer/internal/metrics"
	"github.com/bizmatters/agent-builder/circuit-designer/internal/models"
	"github.com/bizmatters/agent-builder/circuit-designer/internal/orchestration"
	"github.com/bizmatters/agent-builder/circuit-designer/internal/store"
)

type fakeUsers map[string]*models.User

func (f fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := f[email]; ok {
		return u, nil
	}
	return nil, store.ErrNotFound
}

type fixedUnderstander struct{}

func (fixedUnderstander) Understand(context.Context, []models.Message, string) (*models.RequestUnderstanding, error) {
	return &models.RequestUnderstanding{
		UserGoal: "blink",
		RequiredComponents: []models.ComponentRequirement{
			{Name: "LED", LCSCID: "C2286"},
			{Name: "resistor 330 ohm", LCSCID: "C21190"},
		},
	}, nil
}

type fixedValidator struct {
	result *models.ValidationResult
}

func (v fixedValidator) Analyze(context.Context, []byte) (*models.ValidationResult, error) {
	return v.result, nil
}

type testEnv struct {
	router  *gin.Engine
	host    *editortest.FakeHost
	manager *orchestration.Manager
	token   string
}

func newTestEnv(t *testing.T, opts orchestration.Options, validation *models.ValidationResult) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zaptest.NewLogger(t)

	designMetrics, err := metrics.NewDesignMetrics()
	require.NoError(t, err)

	if validation == nil {
		validation = orchestration.DefaultValidation()
	}
	factory := func(context.Context, string, string) (llm.Understander, llm.Validator, error) {
		return fixedUnderstander{}, fixedValidator{result: validation}, nil
	}

	host := editortest.NewFakeHost()
	manager := orchestration.NewManager(store.NewMemoryUserConfigStore(), host, factory, designMetrics, logger, opts)

	jwtManager, err := auth.NewJWTManager("test-secret")
	require.NoError(t, err)

	hashed, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)
	users := fakeUsers{"dev@example.com": {ID: "user-1", Name: "Dev", Email: "dev@example.com", HashedPassword: string(hashed)}}

	token, _, err := jwtManager.GenerateToken(context.Background(), "user-1", "dev@example.com", time.Hour)
	require.NoError(t, err)

	router := NewRouter(RouterDeps{
		Handler:    NewHandler(manager, users, jwtManager, logger),
		Socket:     NewDesignerSocket(manager, designMetrics, logger, SessionConfig{QueueSize: 16, ApprovalTimeout: 2 * time.Second}),
		JWTManager: jwtManager,
		Logger:     logger,
		Readiness: map[string]ReadinessCheck{
			"editor": func(context.Context) error { return nil },
		},
	})

	return &testEnv{router: router, host: host, manager: manager, token: token}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.token)

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) activate(t *testing.T) {
	t.Helper()
	active, err := e.manager.Configure(context.Background(), "sk-test", "AIza-test")
	require.NoError(t, err)
	require.True(t, active)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t, orchestration.Options{}, nil)

	tests := []struct {
		name         string
		body         any
		expectedCode int
	}{
		{name: "valid", body: models.LoginRequest{Email: "dev@example.com", Password: "correct horse"}, expectedCode: http.StatusOK},
		{name: "wrong password", body: models.LoginRequest{Email: "dev@example.com", Password: "nope"}, expectedCode: http.StatusUnauthorized},
		{name: "unknown user", body: models.LoginRequest{Email: "who@example.com", Password: "x"}, expectedCode: http.StatusUnauthorized},
		{name: "invalid body", body: map[string]string{"email": "not-an-email"}, expectedCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/auth/login", tt.body)
			assert.Equal(t, tt.expectedCode, w.Code)

			if tt.expectedCode == http.StatusOK {
				var resp models.LoginResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.NotEmpty(t, resp.Token)
				assert.Equal(t, "user-1", resp.User.ID)
			}
		})
	}
}

func TestHealthAndReady(t *testing.T) {
	env := newTestEnv(t, orchestration.Options{}, nil)

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/health", nil).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/ready", nil).Code)
}

func TestAbout(t *testing.T) {
	env := newTestEnv(t, orchestration.Options{}, nil)

	w := env.do(t, http.MethodGet, "/api/about", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp AboutResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "AI Circuit Designer", resp.Name)
	assert.NotEmpty(t, resp.Version)
}

func TestCreateDesign(t *testing.T) {
	t.Run("not initialized", func(t *testing.T) {
		env := newTestEnv(t, orchestration.Options{}, nil)

		w := env.do(t, http.MethodPost, "/api/designs", DesignRequest{Input: "blink"})
		assert.Equal(t, http.StatusConflict, w.Code)

		var resp models.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, models.ErrCodeNotInitialized, resp.Code)
		assert.Contains(t, resp.Error, "orchestrator not initialized")
	})

	t.Run("success", func(t *testing.T) {
		env := newTestEnv(t, orchestration.Options{}, nil)
		env.activate(t)

		w := env.do(t, http.MethodPost, "/api/designs", DesignRequest{Input: "blink"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp models.DesignResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Len(t, resp.Design.ComponentIDs, 2)
		assert.Len(t, resp.Design.WireIDs, 1)
		assert.Contains(t, resp.Explanation.HTMLRendered, "<h1>")

		last := env.do(t, http.MethodGet, "/api/designs/last", nil)
		require.Equal(t, http.StatusOK, last.Code)
		var state models.DesignState
		require.NoError(t, json.Unmarshal(last.Body.Bytes(), &state))
		assert.Equal(t, "blink", state.UserInput)
	})

	t.Run("placement failure", func(t *testing.T) {
		env := newTestEnv(t, orchestration.Options{}, nil)
		env.activate(t)
		env.host.Missing["C2286"] = true

		w := env.do(t, http.MethodPost, "/api/designs", DesignRequest{Input: "blink"})
		assert.Equal(t, http.StatusBadGateway, w.Code)

		var resp models.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, models.ErrCodeDesignFailed, resp.Code)
		assert.Contains(t, resp.Error, "circuit implementation failed")
	})

	t.Run("requires auth", func(t *testing.T) {
		env := newTestEnv(t, orchestration.Options{}, nil)
		req := httptest.NewRequest(http.MethodPost, "/api/designs", bytes.NewBufferString(`{"input":"x"}`))
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestGetLastDesign_NoneYet(t *testing.T) {
	env := newTestEnv(t, orchestration.Options{}, nil)
	env.activate(t)

	w := env.do(t, http.MethodGet, "/api/designs/last", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestConfigureAI(t *testing.T) {
	env := newTestEnv(t, orchestration.Options{}, nil)

	w := env.do(t, http.MethodPut, "/api/settings/ai", AISettingsRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPut, "/api/settings/ai", AISettingsRequest{ReasoningAPIKey: "sk-test"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp AISettingsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Active)

	w = env.do(t, http.MethodPut, "/api/settings/ai", AISettingsRequest{VisionAPIKey: "AIza-test"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Active)

	require.Len(t, env.host.Dialogs, 2)
	assert.Contains(t, env.host.Dialogs[1], "Success")
}

func TestOpenDesigner(t *testing.T) {
	env := newTestEnv(t, orchestration.Options{}, nil)

	w := env.do(t, http.MethodPost, "/api/designer/open", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Empty(t, env.host.IFrames)

	env.activate(t)
	w = env.do(t, http.MethodPost, "/api/designer/open", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	require.Len(t, env.host.IFrames, 1)
	frame := env.host.IFrames[0]
	assert.Equal(t, "/iframe/ai-designer.html", frame.HTMLPath)
	assert.Equal(t, 1200, frame.Width)
	assert.Equal(t, 800, frame.Height)
	assert.Equal(t, "ai-designer-main", frame.ID)
}
