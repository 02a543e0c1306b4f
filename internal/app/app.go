package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"

	"bvmtdash/internal/config"
	"bvmtdash/internal/dataprocessing"
	apierrors "bvmtdash/internal/errors"
	"bvmtdash/internal/infrastructure"
	customMiddleware "bvmtdash/internal/middleware"
	"bvmtdash/internal/services"
	handlers "bvmtdash/internal/transport/http"
	"bvmtdash/pkg/contracts"
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.DashboardMetrics
	Store         *dataprocessing.Store
	Labels        *dataprocessing.LabelMap
	Transformer   *dataprocessing.Transformer
	SectorService *services.SectorService
	HealthService *services.HealthService
	FrontendFS    fs.FS

	errorHandler *apierrors.ErrorHandler
	listener     net.Listener
}

// NewApplication loads configuration from the environment and builds the application
func NewApplication(frontendFS fs.FS) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(cfg, logger, frontendFS)
}

// New wires an application from an explicit configuration. Sector data is
// loaded here, so a bad data directory fails construction.
func New(cfg *config.Config, logger *slog.Logger, frontendFS fs.FS) (*Application, error) {
	logger.Info("application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version),
		slog.String("data_dir", cfg.Data.Dir))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.NewOTelConfig(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateDashboardMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		FrontendFS:    frontendFS,
		errorHandler:  apierrors.NewErrorHandler(logger, cfg.Logging.Development),
	}

	if err := app.loadData(context.Background()); err != nil {
		_ = otelProviders.Shutdown(context.Background())
		return nil, fmt.Errorf("failed to load sector data: %w", err)
	}

	app.initializeServices()

	if err := app.setupRouter(); err != nil {
		_ = otelProviders.Shutdown(context.Background())
		return nil, err
	}

	app.createServer()
	return app, nil
}

// loadData reads the label map and every sector file
func (a *Application) loadData(ctx context.Context) error {
	labels := dataprocessing.DefaultLabels()
	if a.Config.Data.LabelsFile != "" {
		var err error
		if labels, err = dataprocessing.LoadLabels(a.Config.Data.LabelsFile); err != nil {
			return err
		}
	}

	convention, err := dataprocessing.ParseConvention(a.Config.Data.Convention)
	if err != nil {
		return err
	}

	store, err := dataprocessing.LoadStore(ctx, dataprocessing.LoadOptions{
		Dir:     a.Config.Data.Dir,
		Workers: a.Config.Data.Workers,
		Labels:  labels,
		Logger:  a.Logger,
	})
	if err != nil {
		return err
	}

	a.Labels = labels
	a.Store = store
	a.Transformer = dataprocessing.NewTransformer(store, labels, dataprocessing.NewNormalizer(convention))
	a.Metrics.SetSectorsLoaded(ctx, store.Len())

	a.Logger.InfoContext(ctx, "sector data ready",
		slog.Any("sectors", store.Names()),
		slog.String("default_sector", store.Default()),
		slog.String("convention", string(convention)))
	return nil
}

func (a *Application) initializeServices() {
	a.SectorService = services.NewSectorService(a.Store, a.Transformer, a.Logger,
		services.WithMetrics(a.Metrics),
		services.WithTracer(a.OTelProviders.Tracer))
	a.HealthService = services.NewHealthService(contracts.Version, contracts.BuildTime, a.Config.Data.Dir, a.Store, a.Logger)
}

// setupRouter configures the router.
// Middleware order: RequestID, RealIP, OTel, Logger, Recoverer, SecurityHeaders, CORS, RateLimit, Timeout.
func (a *Application) setupRouter() error {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	validator := customMiddleware.NewValidator()
	sectorHandler := handlers.NewSectorHandler(a.SectorService, validator, a.Logger, a.errorHandler)
	healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
	clientLogHandler := handlers.NewClientLogHandler(validator, a.Logger, a.errorHandler)

	var dashboard *handlers.DashboardHandler
	if a.FrontendFS != nil {
		var err error
		dashboard, err = handlers.NewDashboardHandler(a.FrontendFS, a.SectorService, a.Logger, a.errorHandler)
		if err != nil {
			return err
		}
	} else {
		a.Logger.Warn("no frontend filesystem, serving the API only")
	}

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics).Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(apierrors.RecoveryMiddleware(a.errorHandler))
		r.Use(customMiddleware.SecurityHeaders(customMiddleware.PlotlyCDN))

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
				AllowedOrigins: a.Config.Security.AllowedOrigins,
			}))
		}

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))

		r.Mount("/api", sectorHandler.Routes())
		r.Mount("/api/health", healthHandler.Routes())
		r.Get("/api/version", healthHandler.Version)
		r.Post("/api/logs", clientLogHandler.Handle)

		if dashboard != nil {
			r.Get("/", dashboard.ServeHTTP)
			r.Handle("/static/*", http.FileServerFS(a.FrontendFS))
		}
	})

	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

	a.Router = r
	return nil
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Server.Addr(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(a.Logger.Handler(), slog.LevelError),
	}
}

// Addr returns the address the server listens on, once started
func (a *Application) Addr() string {
	if a.listener == nil {
		return a.Server.Addr
	}
	return a.listener.Addr().String()
}

// Start binds the listener and serves in the background. A serve failure cancels ctx via cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	a.listener = ln

	go func() {
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.performStartupHealthCheck(ctx)

	a.Logger.InfoContext(ctx, "application started",
		slog.String("address", "http://"+a.Addr()),
		slog.Int("sectors", a.Store.Len()))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "application shutdown complete")
	return infrastructure.CloseLogFile()
}

// Run runs the application until SIGINT or SIGTERM
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case sig := <-sigChan:
		a.Logger.InfoContext(ctx, "received signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
		a.Logger.WarnContext(ctx, "server stopped unexpectedly")
	}

	return a.Stop(context.Background())
}

// performStartupHealthCheck logs the readiness result without failing startup
func (a *Application) performStartupHealthCheck(ctx context.Context) {
	if status := a.HealthService.ReadinessCheck(ctx); status.Status != services.StatusReady {
		a.Logger.WarnContext(ctx, "startup health check failed", slog.String("status", status.Status))
		return
	}
	a.Logger.InfoContext(ctx, "startup health check passed")
}
