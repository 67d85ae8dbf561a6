package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/tendant/simple-classroom/internal/logger"
	"github.com/tendant/simple-classroom/pkg/classroom"
	"github.com/tendant/simple-classroom/pkg/classroom/api"
	"github.com/tendant/simple-classroom/pkg/classroom/config"
)

const shutdownTimeout = 10 * time.Second

// Routes builds the full HTTP router: middleware, health check and the
// classroom API under /api/v1.
func Routes(cfg *config.ServerConfig, svc classroom.Service, log *zap.Logger) (http.Handler, error) {
	auth, err := api.NewAuth(cfg.JWTSecret)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.Middleware(log.Named("http")))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	if cfg.Environment == "development" {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Access-Control-Allow-Origin", "*")
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusOK)
					return
				}
				next.ServeHTTP(w, r)
			})
		})
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{
			"status":      "healthy",
			"environment": cfg.Environment,
			"database":    cfg.DatabaseType,
			"storage":     cfg.Storage.Type,
		})
	})
	r.Mount("/api/v1", api.NewHandler(svc, auth, log.Named("api")).Routes())
	return r, nil
}

// Run serves handler on the configured port until ctx is cancelled, then
// shuts down gracefully.
func Run(ctx context.Context, cfg *config.ServerConfig, handler http.Handler, log *zap.Logger) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("classroom server starting",
			zap.String("port", cfg.Port),
			zap.String("environment", cfg.Environment),
			zap.String("database", cfg.DatabaseType),
			zap.String("storage", cfg.Storage.Type))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info("server exited")
	return nil
}
