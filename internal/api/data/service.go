package data

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/api/schema"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/config"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/querycache"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Service represents the data API service
type Service struct {
	mtx    sync.Mutex
	server *http.Server

	Config  *config.Config
	Storage storage.Driver
	Queries *querycache.Client

	// Gatherer is exposed on /metrics; nil disables the endpoint
	Gatherer prometheus.Gatherer

	writer *schema.Writer
	now    func() time.Time
}

// Handler builds the HTTP handler serving all data API endpoints
func (service *Service) Handler() http.Handler {
	// Create the HTTP schema writer
	service.writer = &schema.Writer{
		InternalErrorHook: func(err error) {
			log.Error().Err(err).Msg("the data API experienced an unexpected error")
		},
	}
	if service.now == nil {
		service.now = time.Now
	}

	// Create the HTTP router
	router := chi.NewRouter()
	router.Use(middleware.RedirectSlashes)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{service.Config.AllowedOrigin},
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodDelete,
		},
		AllowedHeaders: []string{"*"},
	}))
	router.NotFound(func(writer http.ResponseWriter, _ *http.Request) {
		service.writer.WriteErrors(writer, http.StatusNotFound, schema.ErrNotFound)
	})
	router.MethodNotAllowed(func(writer http.ResponseWriter, _ *http.Request) {
		service.writer.WriteErrors(writer, http.StatusMethodNotAllowed, schema.ErrMethodNotAllowed)
	})

	// Register the API endpoint handlers
	service.registerEndpoints(router)
	return router
}

// Startup starts up the data API
func (service *Service) Startup() error {
	server := &http.Server{
		Addr:              service.Config.ListenAddress,
		Handler:           service.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	service.mtx.Lock()
	service.server = server
	service.mtx.Unlock()
	return server.ListenAndServe()
}

// Shutdown shuts down the data API
func (service *Service) Shutdown() {
	service.mtx.Lock()
	defer service.mtx.Unlock()
	if service.server != nil {
		service.server.Close()
		service.server = nil
	}
}

func (service *Service) registerEndpoints(router chi.Router) {
	// Register the offer controller endpoints
	router.Get("/v1/offers", service.EndpointGetOffers)
	router.Post("/v1/offers", service.EndpointCreateOffer)
	router.Get("/v1/offers/{id}", service.EndpointGetOffer)
	router.Delete("/v1/offers/{id}", service.EndpointDeleteOffer)

	// Register the university controller endpoints
	router.Get("/v1/universities", service.EndpointGetUniversities)
	router.Post("/v1/universities", service.EndpointCreateUniversity)
	router.Get("/v1/universities/{id}", service.EndpointGetUniversity)
	router.Delete("/v1/universities/{id}", service.EndpointDeleteUniversity)

	// Register the cache administration endpoint
	router.Delete("/v1/cache", service.EndpointClearCache)

	if service.Gatherer != nil {
		router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(service.Gatherer, promhttp.HandlerOpts{}))
	}
}
