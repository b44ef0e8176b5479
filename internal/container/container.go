package container

import (
	"fmt"
	"net/http"

	"go-image-forensics/internal/config"
	"go-image-forensics/internal/detect"
	"go-image-forensics/internal/engine"
	"go-image-forensics/internal/logger"
	"go-image-forensics/internal/observer"
	"go-image-forensics/internal/service"
	"go-image-forensics/internal/storage"
	"go-image-forensics/internal/transport"
)

// Container holds all application dependencies
type Container struct {
	config    *config.Config
	publisher observer.Subject
	metrics   *observer.MetricsObserver
	service   service.ForensicsService
	handler   http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	publisher := observer.NewEventPublisher()
	publisher.Subscribe(observer.NewLoggingObserver(logger.Logger))
	metrics := observer.NewMetricsObserver().(*observer.MetricsObserver)
	publisher.Subscribe(metrics)

	fetcher := storage.NewHTTPByteFetcher(cfg.MaxRequestBodySize)
	var blobFetcher storage.ByteFetcher
	if cfg.AzureEnabled() {
		azure, err := storage.NewAzureBlobFetcher(cfg.AzureAccountName, cfg.AzureAccountKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create blob fetcher: %w", err)
		}
		blobFetcher = azure
	}

	opts := engine.DefaultOptions().
		WithParams(detect.DefaultParams()).
		WithParallelism(cfg.Parallelism)
	if cfg.IncludeClone {
		opts = opts.WithClone()
	}

	svc := service.NewForensicsService(fetcher, blobFetcher, opts, logger.Logger, publisher)
	handler := transport.NewHandler(svc, cfg, metrics)

	return &Container{
		config:    cfg,
		publisher: publisher,
		metrics:   metrics,
		service:   svc,
		handler:   handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Service returns the forensics service
func (c *Container) Service() service.ForensicsService {
	return c.service
}
