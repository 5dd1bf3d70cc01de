package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dataflow-studio/engine/pkg/config"
	"github.com/dataflow-studio/engine/pkg/health"
	"github.com/dataflow-studio/engine/pkg/logging"
	"github.com/dataflow-studio/engine/pkg/node"
	"github.com/dataflow-studio/engine/pkg/observer"
	"github.com/dataflow-studio/engine/pkg/storage"
	"github.com/dataflow-studio/engine/pkg/telemetry"
)

// contextWithTimeout bounds a single Execute call by engineConfig's
// MaxExecutionTime; a zero timeout means no bound.
func contextWithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// telemetryObserver wraps provider as an observer.Observer, or returns a
// NoOpObserver if provider is nil (e.g. in tests that build a Server
// without a telemetry dependency).
func telemetryObserver(provider *telemetry.Provider) observer.Observer {
	if provider == nil {
		return &observer.NoOpObserver{}
	}
	return telemetry.NewTelemetryObserver(provider)
}

// Config holds the HTTP server's own settings (timeouts, body-size limit,
// CORS), separate from config.Config's engine execution limits.
type Config struct {
	Address            string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	ShutdownTimeout    time.Duration
	MaxRequestBodySize int64
	EnableCORS         bool
}

// DefaultConfig returns the server's default settings.
func DefaultConfig() Config {
	return Config{
		Address:            ":8080",
		ReadTimeout:        30 * time.Second,
		WriteTimeout:       30 * time.Second,
		ShutdownTimeout:    10 * time.Second,
		MaxRequestBodySize: 10 * 1024 * 1024,
		EnableCORS:         true,
	}
}

// Server is the illustrative HTTP front door: upload, run-workflow,
// download, and node-catalog endpoints, each delegating to the engine
// and a TableStore.
type Server struct {
	httpConfig   Config
	engineConfig config.Config
	registry     *node.Registry
	store        node.TableStore

	httpServer        *http.Server
	healthChecker     *health.Checker
	telemetryProvider *telemetry.Provider
	logger            *logging.Logger
}

// New builds a Server that runs workflows with registry/store/engineConfig
// and serves on httpConfig.Address.
func New(httpConfig Config, engineConfig config.Config, registry *node.Registry, store node.TableStore) (*Server, error) {
	logger := logging.New(logging.DefaultConfig())

	telemetryProvider, err := telemetry.NewProvider(context.Background(), telemetry.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create telemetry provider: %w", err)
	}

	healthChecker := health.NewChecker("dataflow-studio-engine", "0.1.0")
	healthChecker.RegisterCheck("engine", engineReadinessCheck(registry, store), 5*time.Second, true)

	s := &Server{
		httpConfig:        httpConfig,
		engineConfig:      engineConfig,
		registry:          registry,
		store:             store,
		healthChecker:     healthChecker,
		telemetryProvider: telemetryProvider,
		logger:            logger,
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.httpServer = &http.Server{
		Addr:         httpConfig.Address,
		Handler:      s.middlewareChain(mux),
		ReadTimeout:  httpConfig.ReadTimeout,
		WriteTimeout: httpConfig.WriteTimeout,
	}

	return s, nil
}

// engineReadinessCheck confirms the registry still has all eight node
// kinds registered, and, when store is a FileStore, that its backing
// directory is still present and a directory (it can be removed out from
// under a running process). A MemoryStore has no external resource to
// check beyond construction.
func engineReadinessCheck(registry *node.Registry, store node.TableStore) health.CheckFunc {
	return func(ctx context.Context) error {
		if n := len(registry.Catalog()); n != 8 {
			return fmt.Errorf("node registry has %d kinds registered, want 8", n)
		}
		if fs, ok := store.(*storage.FileStore); ok {
			info, err := os.Stat(fs.Dir())
			if err != nil {
				return fmt.Errorf("upload directory unavailable: %w", err)
			}
			if !info.IsDir() {
				return fmt.Errorf("upload path %s is not a directory", fs.Dir())
			}
		}
		return nil
	}
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.healthChecker.HTTPHandler())
	mux.HandleFunc("/health/live", s.healthChecker.LivenessHandler())
	mux.HandleFunc("/health/ready", s.healthChecker.ReadinessHandler())
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/api/upload", s.handleUpload)
	mux.HandleFunc("/api/workflows/run", s.handleRunWorkflow)
	mux.HandleFunc("/api/download/", s.handleDownload)
	mux.HandleFunc("/api/nodes", s.handleNodeCatalog)
}

// middlewareChain applies CORS, request logging, and panic recovery, in
// that order.
func (s *Server) middlewareChain(handler http.Handler) http.Handler {
	if s.httpConfig.EnableCORS {
		handler = s.corsMiddleware(handler)
	}
	handler = s.loggingMiddleware(handler)
	handler = s.recoveryMiddleware(handler)
	return handler
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		s.logger.WithFields(map[string]interface{}{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status_code": rw.statusCode,
			"duration_ms": time.Since(start).Milliseconds(),
		}).Info("http request")
	})
}

func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.WithField("error", fmt.Sprintf("%v", rec)).WithField("path", r.URL.Path).Error("panic recovered")
				http.Error(w, "Internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	s.logger.WithField("address", s.httpConfig.Address).Info("starting server")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server and the telemetry provider.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown http server: %w", err)
	}
	if err := s.telemetryProvider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown telemetry: %w", err)
	}
	return nil
}
