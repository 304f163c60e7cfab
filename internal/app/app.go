package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Sasmit28/CivicApp/internal/config"
	httpx "github.com/Sasmit28/CivicApp/internal/http"
	"github.com/Sasmit28/CivicApp/internal/http/handlers"
	"github.com/Sasmit28/CivicApp/internal/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Router mounts the HTTP surface over a built container
func Router(c *Container) *gin.Engine {
	h := httpx.Handlers{
		Auth:    handlers.NewAuthHandlers(c.Registry, c.TokenSvc, c.CitizenRepo, c.Logger),
		Reports: handlers.NewReportHandlers(c.Catalog, c.PhotoStore, c.Logger),
		Policy:  handlers.NewPolicyHandlers(c.PolicySvc),
	}
	jwtMW := middleware.NewAuthMW(c.TokenSvc, c.Registry)
	casbinMW := middleware.NewCasbinMW(c.PolicySvc)
	return httpx.BuildRouter(h, jwtMW, casbinMW, c.Limiter, c.Logger)
}

// sweepInterval is how often idle devices are dropped from memory
const sweepInterval = time.Minute

// Run serves until ctx is cancelled, then shuts the server down
func Run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	c, err := NewContainer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	go c.Registry.RunSweeper(ctx, sweepInterval)
	go c.Limiter.RunSweeper(ctx, sweepInterval)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           Router(c),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
