package handlers

import (
	"SecretKeeper/internal/config"
	"SecretKeeper/internal/middleware"
	"SecretKeeper/internal/service"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	Router chi.Router
}

// NewHandler разводящий для хендлеров. metricsHandler может быть nil.
func NewHandler(
	secretService *service.SecretService,
	metricsHandler http.Handler,
	logger *zap.SugaredLogger,
	config *config.Config,
) *Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithGzip)
	r.Use(middleware.WithLogging)

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	secretHandler := NewSecretHandler(secretService, logger)

	r.Group(func(r chi.Router) {
		r.Use(middleware.WithAuth(config.AuthSecret))
		r.Use(middleware.RequireActor)
		r.Use(middleware.WithTimeout(config.OperationTimeout))

		// Secrets
		r.Get("/api/v1/secrets", secretHandler.List)
		r.Post("/api/v1/secrets/batch", secretHandler.Batch)
		r.Post("/api/v1/secrets/{secretName}", secretHandler.Create)
		r.Get("/api/v1/secrets/{secretName}", secretHandler.Get)
		r.Patch("/api/v1/secrets/{secretName}", secretHandler.Update)
		r.Delete("/api/v1/secrets/{secretName}", secretHandler.Delete)

		// Workspaces
		r.Post("/api/v1/workspaces/{workspaceID}/bootstrap", secretHandler.Bootstrap)
	})

	return &Handler{Router: r}
}
