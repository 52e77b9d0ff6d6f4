package router

import (
	"github.com/gin-gonic/gin"

	"afipimport/internal/handler"
	"afipimport/internal/middleware"
	"afipimport/internal/service"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	allowedOrigins []string,
	authSvc service.AuthService,
	importH *handler.ImportHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(allowedOrigins))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Protected routes - require a company-scoped JWT
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authSvc))

	imports := protected.Group("/imports")
	imports.POST("", importH.Upload)
	imports.POST("/object", importH.ImportObject)

	return r
}
