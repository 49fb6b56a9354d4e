package api

import (
	"errors"
	"net/http"

	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/api/data"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/config"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/querycache"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
)

// Service represents the API service
type Service struct {
	Config   *config.Config
	Storage  storage.Driver
	Queries  *querycache.Client
	Gatherer prometheus.Gatherer
	data     *data.Service
}

// Startup starts up the data API; unexpected server errors are sent to errs
func (service *Service) Startup(errs chan<- error) {
	dataService := &data.Service{
		Config:   service.Config,
		Storage:  service.Storage,
		Queries:  service.Queries,
		Gatherer: service.Gatherer,
	}
	service.data = dataService
	go func() {
		if err := dataService.Startup(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()
}

// Shutdown shuts down the data API
func (service *Service) Shutdown() {
	if service.data != nil {
		service.data.Shutdown()
		service.data = nil
	}
}
