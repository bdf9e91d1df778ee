package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/mercatto/storefront-iam/internal/infra/config"
	"github.com/mercatto/storefront-iam/internal/infra/database"
	"github.com/mercatto/storefront-iam/internal/infra/logger"
	"github.com/mercatto/storefront-iam/internal/infra/security"
	postgresrepo "github.com/mercatto/storefront-iam/internal/repository/postgres"
	"github.com/mercatto/storefront-iam/internal/transport/http/middleware"
	"github.com/mercatto/storefront-iam/internal/transport/http/routes"
	"github.com/mercatto/storefront-iam/internal/usecase"
)

// Application wires the authentication core to its HTTP transport.
type Application struct {
	cfg    *config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	pool   *pgxpool.Pool
}

// New builds the application graph from configuration. Configuration errors
// surface here and prevent the process from serving traffic.
func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	tokenService, err := security.NewTokenService(cfg.Security.SigningSecret, cfg.App.Name, cfg.Security.TokenLifetime())
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init token service: %w", err)
	}

	repos := postgresrepo.NewRepositories(pool)

	permissionService := usecase.NewPermissionService(repos.Permissions)
	principalService := usecase.NewPrincipalService(cfg, repos.Users, repos.Roles, permissionService, log)
	authService := usecase.NewAuthService(principalService, tokenService, log)

	metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{Namespace: "storefront"})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	engine := routes.Register(routes.Dependencies{
		Config:   cfg,
		Logger:   log,
		Auth:     authService,
		Metrics:  metrics,
		Database: pool,
	})

	return &Application{
		cfg:    cfg,
		engine: engine,
		logger: log,
		pool:   pool,
	}, nil
}

// Run serves HTTP until the context is cancelled, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()

	addr := fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	a.logger.Info("http server stopped")
	return <-errCh
}
