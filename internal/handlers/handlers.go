package handlers

import (
	"JackTrack/internal/config"
	"JackTrack/internal/middleware"
	"JackTrack/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	Router chi.Router
}

// NewHandler разводящий для хендлеров
func NewHandler(
	recordService *service.RecordService,
	logger *zap.SugaredLogger,
	config *config.Config,
) *Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithGzip)
	r.Use(middleware.WithLogging)

	recordHandler := NewRecordHandler(recordService, logger)

	// проверка доступности без авторизации
	r.Get("/health", Health)

	r.Group(func(r chi.Router) {
		r.Use(middleware.WithAuth(config.AuthSecret))

		r.Route("/{resource}", func(r chi.Router) {
			r.Get("/", recordHandler.List)
			r.Post("/", recordHandler.Create)
			r.Get("/{id}", recordHandler.Get)
			r.Put("/{id}", recordHandler.Replace)
			r.Delete("/{id}", recordHandler.Delete)
		})
	})

	return &Handler{Router: r}
}
