package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/project-tracker/internal/config"
	v1 "github.com/adanyl0v/project-tracker/internal/delivery/http/v1"
)

// ListenAndServeHTTP serves the API until ctx is cancelled and then
// shuts the server down gracefully.
func (a *Application) ListenAndServeHTTP(ctx context.Context) error {
	if a.cfg.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	httpCfg := a.cfg.HTTP
	server := &http.Server{
		Addr:    net.JoinHostPort(httpCfg.Host, httpCfg.Port),
		Handler: a.newRouter(),
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info().
			Str("host", httpCfg.Host).
			Str("port", httpCfg.Port).
			Msg("setting up http server")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error().
				Err(err).
				Msg("failed to listen and serve http")
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	a.logger.Info().Msg("shutting down http server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)
	defer cancel()

	err := server.Shutdown(shutdownCtx)
	if err != nil {
		a.logger.Error().
			Err(err).
			Msg("failed to shutdown http server")
		return err
	}
	a.logger.Info().Msg("shut down http server")
	return nil
}

func (a *Application) newRouter() *gin.Engine {
	router := gin.New()
	router.Use(v1.RequestLogger(a.logger))
	router.Use(v1.Recovery(a.logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     a.cfg.HTTP.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	resolver, authService, projectService, taskService := a.newServices()
	handler := v1.New(
		a.logger,
		a.store,
		resolver,
		authService,
		projectService,
		taskService,
		v1.WithSecureCookies(a.cfg.HTTP.SecureCookies),
	)
	v1.RegisterRoutes(router, handler)
	return router
}
