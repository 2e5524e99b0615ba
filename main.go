package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mediastream/internal/catalog"
	"mediastream/internal/filesystem"
	"mediastream/internal/handlers"
	"mediastream/internal/logging"
	"mediastream/internal/media"
	"mediastream/internal/metrics"
	"mediastream/internal/middleware"
	"mediastream/internal/startup"
	"mediastream/internal/streaming"

	"github.com/gorilla/mux"
)

const (
	metricsCollectInterval = time.Minute
	shutdownTimeout        = 30 * time.Second
)

func main() {
	startTime := time.Now()

	logFile := logging.EnableFile(logging.FileConfigFromEnv())
	defer logFile.Close()

	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	libs := config.Libraries.All()
	roots := make(map[string]string, len(libs))
	ids := make([]string, 0, len(libs))
	for _, lib := range libs {
		roots[lib.ID] = lib.RootPath
		ids = append(ids, lib.ID)
	}

	filesystem.SetObserver(metrics.NewFilesystemObserver())
	filesystem.SetDefaultVolumeResolver(filesystem.NewVolumeResolver(roots))
	metrics.InitializeMetrics(ids)
	metrics.AppInfo.WithLabelValues(startup.Version, startup.Commit, startup.GoVersion).Set(1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Catalog
	startup.LogCatalogInit(config.CatalogCache, config.CatalogCacheTTL)
	var opts []catalog.Option
	if config.CatalogCache {
		cache := catalog.NewCache(config.CatalogCacheTTL)
		if err := cache.Watch(ctx, libs); err != nil {
			logging.Warn("  Filesystem watcher unavailable, relying on TTL: %v", err)
		} else {
			startup.LogCatalogWatchStarted()
		}
		opts = append(opts, catalog.WithCache(cache))
	}
	cat := catalog.New(config.Libraries, media.NewScanner(), opts...)

	collector := metrics.NewCollector(cat, metricsCollectInterval)
	collector.Start()

	// Streaming
	streamConfig := streaming.DefaultTimeoutWriterConfig()
	streamConfig.WriteTimeout = config.StreamWriteTimeout
	streamConfig.IdleTimeout = config.StreamIdleTimeout
	streamer := streaming.NewServer(streamConfig)

	h := handlers.New(cat, streamer)

	router := setupRouter(h)
	startup.LogHTTPRoutes(router, config.LogStaticFiles, config.LogHealthChecks)

	handler, err := buildHandler(router, config)
	if err != nil {
		startup.LogFatal("Authentication setup error: %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Streams manage their own deadlines
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsSrv = newMetricsServer(config.MetricsPort, h)
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	go handleShutdown(srv, metricsSrv, collector, cancel)

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		startup.LogFatal("Server error: %v", err)
	}
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()

	// Health check and version routes (no auth required)
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/libraries", h.ListLibraries).Methods("GET")
	api.HandleFunc("/library/{type}", h.ListLibrary).Methods("GET")
	api.HandleFunc("/media/{id}", h.GetMedia).Methods("GET")
	api.HandleFunc("/search", h.Search).Methods("GET")
	api.HandleFunc("/debug/scan", h.DebugScan).Methods("GET")

	r.HandleFunc("/stream/{type}/{path:.+}", h.Stream).Methods("GET", "HEAD")

	r.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))

	return r
}

// buildHandler wraps the router, outermost first: request id, access log,
// compression, authentication.
func buildHandler(router http.Handler, config *startup.Config) (http.Handler, error) {
	var auth middleware.Authenticator
	if config.AuthEnabled() {
		bcryptAuth, err := middleware.NewBcryptAuthenticator(config.AuthUsername, config.AuthPasswordHash)
		if err != nil {
			return nil, err
		}
		auth = bcryptAuth
	}

	handler := middleware.BasicAuth(auth, middleware.DefaultAuthConfig())(router)
	handler = middleware.Compression(middleware.DefaultCompressionConfig())(handler)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogStaticFiles = config.LogStaticFiles
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	handler = middleware.Logger(loggingConfig)(handler)

	return middleware.RequestID(handler), nil
}

func newMetricsServer(port string, h *handlers.Handlers) *http.Server {
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", h.MetricsHandler())
	metricsMux.HandleFunc("/health", h.LivenessCheck)

	return &http.Server{
		Addr:              ":" + port,
		Handler:           metricsMux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func handleShutdown(srv, metricsSrv *http.Server, collector *metrics.Collector, cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancelTimeout := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelTimeout()

	startup.LogShutdownStep("Stopping metrics collector")
	collector.Stop()
	startup.LogShutdownStepComplete("Metrics collector stopped")

	startup.LogShutdownStep("Stopping filesystem watcher")
	cancel()
	startup.LogShutdownStepComplete("Filesystem watcher stopped")

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownComplete()
}
