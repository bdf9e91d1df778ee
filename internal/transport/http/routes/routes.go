package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mercatto/storefront-iam/internal/infra/config"
	"github.com/mercatto/storefront-iam/internal/transport/http/handlers"
	"github.com/mercatto/storefront-iam/internal/transport/http/middleware"
	"github.com/mercatto/storefront-iam/internal/usecase"
)

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config   *config.AppConfig
	Logger   *zap.Logger
	Auth     *usecase.AuthService
	Metrics  *middleware.HTTPMetrics
	Database DatabaseChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}

	healthOptions := make([]handlers.HealthOption, 0, 1)
	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}
	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authHandler := handlers.NewAuthHandler(deps.Config, deps.Auth, deps.Logger)
	r.POST("/login", authHandler.Login)

	tokenFilter := middleware.TokenFilter(deps.Auth, deps.Logger)

	api := r.Group("/api/v1")
	api.Use(tokenFilter)
	{
		sessionHandler := handlers.NewSessionHandler()
		api.GET("/session", middleware.RequireAuthenticated(), sessionHandler.Current)
	}

	return r
}
