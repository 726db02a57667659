package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/notcis/apartment-app/internal/api"
	"github.com/notcis/apartment-app/internal/room"
	"github.com/notcis/apartment-app/pkg/config"
)

type Dependencies struct {
	Cfg    config.Config
	Log    *zap.Logger
	Rooms  *room.Service
	Events room.EventLister

	// ViewCache wraps the cached GET views; nil disables caching.
	ViewCache func(http.Handler) http.Handler
	// Gatherer backs /metrics; nil uses the default registry.
	Gatherer prometheus.Gatherer
}

func NewRouter(deps Dependencies) http.Handler {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(api.RequestLogger(deps.Log))
	r.Use(api.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))

	roomHandlers := room.Handlers{Rooms: deps.Rooms, Events: deps.Events}

	// v1
	r.Route("/v1", func(r chi.Router) {
		r.Use(api.CORSMiddleware(api.CORSOptions{
			AllowedOrigins: deps.Cfg.AdminAllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
			MaxAgeSeconds:  600,
		}))

		r.Route("/rooms", func(r chi.Router) {
			r.Post("/", roomHandlers.Create)
			r.Get("/form-data", roomHandlers.FormData)
			r.Put("/{id}", roomHandlers.Update)
			r.Delete("/{id}", roomHandlers.Delete)
			r.Get("/{id}/events", roomHandlers.ListEvents)

			// Rendered views invalidated by room mutations.
			r.Group(func(r chi.Router) {
				if deps.ViewCache != nil {
					r.Use(deps.ViewCache)
				}
				r.Get("/", roomHandlers.List)
				r.Get("/{id}", roomHandlers.Get)
			})
		})
	})

	return r
}
