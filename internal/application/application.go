package application

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/eugenenazirov/box-packer/internal/api"
	"github.com/eugenenazirov/box-packer/internal/config"
	"github.com/eugenenazirov/box-packer/internal/geometry"
	"github.com/eugenenazirov/box-packer/internal/optimizer"
	"github.com/eugenenazirov/box-packer/internal/storage"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	storage *storage.MemoryStorage
	handler *api.Handler
	router  http.Handler
	logger  *zap.Logger
	server  *http.Server
}

// New initializes the application with all dependencies from the provided configuration.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	store := storage.NewMemoryStorage()
	if len(cfg.InitialItems) > 0 {
		if err := store.SetItems(cfg.InitialItems); err != nil {
			return nil, fmt.Errorf("failed to apply initial items: %w", err)
		}
	}

	handler := api.NewHandler(store, HandlerDefaults(cfg))
	router := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	server := NewServer(cfg, router)

	return &App{
		storage: store,
		handler: handler,
		router:  router,
		logger:  logger,
		server:  server,
	}, nil
}

// HandlerDefaults maps the loaded configuration onto the API's fallback
// container and optimizer settings.
func HandlerDefaults(cfg config.Config) api.Defaults {
	return api.Defaults{
		ContainerDims: geometry.Vec{
			X: cfg.Container.Length,
			Y: cfg.Container.Width,
			Z: cfg.Container.Height,
		},
		MaxWeight: cfg.Container.MaxWeight,
		Optimizer: optimizer.Options{
			AllowContainerRotation: cfg.Optimizer.AllowContainerRotation,
			MaxOrderings:           cfg.Optimizer.MaxOrderings,
			Workers:                cfg.Optimizer.Workers,
			Seed:                   cfg.Optimizer.Seed,
			Weights:                cfg.Optimizer.Weights,
		},
		OptimizeTimeout: cfg.Optimizer.Timeout,
	}
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}
