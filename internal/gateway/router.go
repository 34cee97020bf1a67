package gateway

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/bizmatters/agent-builder/circuit-designer/internal/auth"
)

// ReadinessCheck returns an error when a dependency is not ready.
type ReadinessCheck func(ctx context.Context) error

// RouterDeps are the collaborators the HTTP surface needs.
type RouterDeps struct {
	Handler    *Handler
	Socket     *DesignerSocket
	JWTManager *auth.JWTManager
	Logger     *zap.Logger
	Readiness  map[string]ReadinessCheck
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(deps.Logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		for name, check := range deps.Readiness {
			if err := check(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status": "not ready",
					"error":  name + " check failed",
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api")
	api.POST("/auth/login", deps.Handler.Login)
	api.GET("/about", deps.Handler.About)

	protected := api.Group("")
	protected.Use(auth.RequireAuth(deps.JWTManager, deps.Logger))

	protected.POST("/designs", deps.Handler.CreateDesign)
	protected.GET("/designs/last", deps.Handler.GetLastDesign)
	protected.PUT("/settings/ai", deps.Handler.ConfigureAI)
	protected.POST("/designer/open", deps.Handler.OpenDesigner)
	protected.GET("/ws/designer", deps.Socket.Serve)

	return router
}
