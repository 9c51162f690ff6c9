// Package http wires the gin router for the auth gateway.
package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/lindero/lindero-auth/internal/config"
	"github.com/lindero/lindero-auth/internal/http/handler"
	httpmiddleware "github.com/lindero/lindero-auth/internal/http/middleware"
	"github.com/lindero/lindero-auth/internal/middleware"
)

// NewRouter wires Gin routes and middleware.
func NewRouter(cfg config.Config, authHandler *handler.AuthHandler, authMiddleware *httpmiddleware.Auth, rateLimiter *middleware.RateLimiter, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpmiddleware.RequestLogger(logger))
	if rateLimiter != nil {
		r.Use(rateLimiter.Handler())
	}
	r.Use(middleware.CORS(cfg))
	r.Use(otelgin.Middleware(cfg.ServiceName))

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/password-reset", authHandler.PasswordReset)
		authGroup.POST("/password-reset/confirm", authHandler.PasswordResetConfirm)
		authGroup.POST("/password-update", authMiddleware.ValidateJWT, authHandler.PasswordUpdate)

		authGroup.GET("/me", authMiddleware.ValidateJWT, authHandler.Me)
		authGroup.PUT("/profile", authMiddleware.ValidateJWT, authHandler.UpdateProfile)
	}

	r.GET("/healthz", authHandler.Healthz)

	return r
}
