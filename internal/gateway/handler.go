// Package gateway exposes the designer over HTTP and WebSocket.
package gateway

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/bizmatters/agent-builder/circuit-designer/internal/auth"
	"github.com/bizmatters/agent-builder/circuit-designer/internal/config"
	"github.com/bizmatters/agent-builder/circuit-designer/internal/editor"
	"github.com/bizmatters/agent-builder/circuit-designer/internal/models"
	"github.com/bizmatters/agent-builder/circuit-designer/internal/orchestration"
	"github.com/bizmatters/agent-builder/circuit-designer/internal/store"
)

const tokenLifetime = 24 * time.Hour

// Host dialog and window constants.
const (
	designerIFramePath   = "/iframe/ai-designer.html"
	designerIFrameID     = "ai-designer-main"
	designerIFrameWidth  = 1200
	designerIFrameHeight = 800

	keysRequiredMessage = "OpenAI and Gemini API keys must be configured to use the AI features"
)

// UserFinder looks up operator accounts for login.
type UserFinder interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// Handler handles HTTP requests for the gateway layer
type Handler struct {
	manager    *orchestration.Manager
	users      UserFinder
	jwtManager *auth.JWTManager
	logger     *zap.Logger
}

// NewHandler creates a new gateway handler
func NewHandler(manager *orchestration.Manager, users UserFinder, jwtManager *auth.JWTManager, logger *zap.Logger) *Handler {
	return &Handler{
		manager:    manager,
		users:      users,
		jwtManager: jwtManager,
		logger:     logger,
	}
}

// DesignRequest is the synchronous form of PROCESS_USER_INPUT
type DesignRequest struct {
	Input   string                     `json:"input" binding:"required"`
	Context models.ConversationContext `json:"context"`
}

// AISettingsRequest carries new API keys; empty fields keep the stored value
type AISettingsRequest struct {
	ReasoningAPIKey string `json:"reasoningApiKey"`
	VisionAPIKey    string `json:"visionApiKey"`
}

// AISettingsResponse reports whether the designer is usable after the change
type AISettingsResponse struct {
	Active  bool   `json:"active"`
	Message string `json:"message"`
}

// AboutResponse describes the running extension
type AboutResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Login godoc
// @Summary User login
// @Description Authenticate an operator and return a JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login credentials"
// @Success 200 {object} models.LoginResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request", Code: models.ErrCodeInvalidRequest})
		return
	}

	user, err := h.users.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			h.logger.Error("user lookup failed", zap.Error(err))
		}
		h.logger.Warn("login rejected", zap.String("email", req.Email))
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid email or password", Code: models.ErrCodeUnauthorized})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		h.logger.Warn("invalid password", zap.String("email", req.Email))
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid email or password", Code: models.ErrCodeUnauthorized})
		return
	}

	token, expiresAt, err := h.jwtManager.GenerateToken(c.Request.Context(), user.ID, user.Email, tokenLifetime)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to generate token", Code: models.ErrCodeInternalError})
		return
	}

	c.JSON(http.StatusOK, models.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user.ToUserInfo(),
	})
}

// CreateDesign godoc
// @Summary Run a design request
// @Description Runs the full design pipeline against the host editor and returns the result
// @Tags designs
// @Accept json
// @Produce json
// @Param request body DesignRequest true "Design request"
// @Success 200 {object} models.DesignResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /designs [post]
func (h *Handler) CreateDesign(c *gin.Context) {
	var req DesignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request", Code: models.ErrCodeInvalidRequest})
		return
	}

	orchestrator, err := h.manager.Current()
	if err != nil {
		respondError(c, err)
		return
	}

	logger := h.logger.With(zap.String("user_id", c.GetString(auth.UserIDKey)))
	progress := orchestration.ProgressFunc(func(_ context.Context, message string) {
		logger.Info("design progress", zap.String("message", message))
	})

	resp, err := orchestrator.Process(c.Request.Context(), req.Input, &req.Context, progress)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetLastDesign godoc
// @Summary Last design
// @Description Returns the design spec, implementation and response of the most recent successful run
// @Tags designs
// @Produce json
// @Success 200 {object} models.DesignState
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /designs/last [get]
func (h *Handler) GetLastDesign(c *gin.Context) {
	orchestrator, err := h.manager.Current()
	if err != nil {
		respondError(c, err)
		return
	}

	last := orchestrator.LastDesign()
	if last == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "No design has been completed yet", Code: models.ErrCodeNotFound})
		return
	}

	c.JSON(http.StatusOK, last)
}

// ConfigureAI godoc
// @Summary Configure AI settings
// @Description Stores the reasoning and vision API keys and re-initializes the orchestrator
// @Tags settings
// @Accept json
// @Produce json
// @Param request body AISettingsRequest true "API keys"
// @Success 200 {object} AISettingsResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /settings/ai [put]
func (h *Handler) ConfigureAI(c *gin.Context) {
	var req AISettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil || (req.ReasoningAPIKey == "" && req.VisionAPIKey == "") {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "At least one API key is required", Code: models.ErrCodeInvalidRequest})
		return
	}

	ctx := c.Request.Context()
	active, err := h.manager.Configure(ctx, req.ReasoningAPIKey, req.VisionAPIKey)
	if err != nil {
		h.logger.Error("failed to save AI settings", zap.Error(err))
		h.notifyHost(ctx, "Error", "Failed to save the AI settings: "+err.Error())
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to save AI settings", Code: models.ErrCodeInternalError})
		return
	}

	resp := AISettingsResponse{Active: active}
	if active {
		resp.Message = "AI settings saved and the orchestrator is initialized."
		h.notifyHost(ctx, "Success", resp.Message)
	} else {
		resp.Message = "API keys saved. Set both keys to enable the AI features."
		h.notifyHost(ctx, "Saved", resp.Message)
	}

	c.JSON(http.StatusOK, resp)
}

// OpenDesigner godoc
// @Summary Open the designer window
// @Description Opens the designer iframe inside the host editor
// @Tags designer
// @Produce json
// @Success 204
// @Failure 409 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /designer/open [post]
func (h *Handler) OpenDesigner(c *gin.Context) {
	if !h.manager.IsActive() {
		c.JSON(http.StatusConflict, models.ErrorResponse{Error: keysRequiredMessage, Code: models.ErrCodeNotInitialized})
		return
	}

	err := h.manager.Host().OpenIFrame(c.Request.Context(), editor.IFrameWindow{
		HTMLPath: designerIFramePath,
		Width:    designerIFrameWidth,
		Height:   designerIFrameHeight,
		ID:       designerIFrameID,
		Title:    config.ExtensionName,
	})
	if err != nil {
		h.logger.Error("failed to open designer window", zap.Error(err))
		c.JSON(http.StatusBadGateway, models.ErrorResponse{Error: "Failed to open the designer: " + err.Error(), Code: models.ErrCodeEditorUnavailable})
		return
	}

	c.Status(http.StatusNoContent)
}

// About godoc
// @Summary About
// @Description Returns the extension name and version
// @Tags designer
// @Produce json
// @Success 200 {object} AboutResponse
// @Router /about [get]
func (h *Handler) About(c *gin.Context) {
	c.JSON(http.StatusOK, AboutResponse{Name: config.ExtensionName, Version: config.Version})
}

func (h *Handler) notifyHost(ctx context.Context, title, message string) {
	if err := h.manager.Host().ShowInformation(ctx, title, message); err != nil {
		h.logger.Warn("failed to show host dialog", zap.Error(err))
	}
}

// respondError maps pipeline errors onto API error envelopes.
func respondError(c *gin.Context, err error) {
	status, code := errorStatus(err)
	c.JSON(status, models.ErrorResponse{Error: err.Error(), Code: code})
}

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, orchestration.ErrNotInitialized):
		return http.StatusConflict, models.ErrCodeNotInitialized
	case errors.Is(err, editor.ErrEditorUnavailable):
		return http.StatusServiceUnavailable, models.ErrCodeEditorUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, models.ErrCodeDesignFailed
	default:
		return http.StatusBadGateway, models.ErrCodeDesignFailed
	}
}
