package api

import (
	"context"
	"net/http"

	"github.com/danielsultan7/audit-anomaly-service/internal/config"
	"github.com/danielsultan7/audit-anomaly-service/internal/detection"
	"github.com/danielsultan7/audit-anomaly-service/internal/llm"
	"github.com/danielsultan7/audit-anomaly-service/internal/logging"
	"github.com/danielsultan7/audit-anomaly-service/internal/notifications"
)

// APIServer serves the analysis endpoints. The analyzer handle is injected
// at startup and shared across requests; llmManager is nil when running the
// sentiment variant and the cache endpoints report accordingly.
type APIServer struct {
	listenAddr string
	tls        config.TLSConfig
	analyzer   detection.Analyzer
	llmManager *llm.Manager
	notifier   *notifications.Manager
	httpServer *http.Server
}

func NewAPIServer(cfg config.ServerConfig, analyzer detection.Analyzer, llmManager *llm.Manager, notifier *notifications.Manager) *APIServer {
	return &APIServer{
		listenAddr: cfg.ListenAddr,
		tls:        cfg.TLS,
		analyzer:   analyzer,
		llmManager: llmManager,
		notifier:   notifier,
	}
}

// Start blocks serving HTTP (or HTTPS when TLS is enabled) until Shutdown
// is called or the listener fails.
func (s *APIServer) Start() error {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.corsMiddleware(s.handleHealth))
	mux.HandleFunc("/analyze-log", s.corsMiddleware(s.handleAnalyzeLog))
	mux.HandleFunc("/analyze-batch", s.corsMiddleware(s.handleAnalyzeBatch))
	mux.HandleFunc("/cache/stats", s.corsMiddleware(s.handleGetCacheStats))
	mux.HandleFunc("/cache/clear", s.corsMiddleware(s.handleClearCache))

	s.httpServer = &http.Server{
		Addr:    s.listenAddr,
		Handler: mux,
	}

	if s.tls.Enabled {
		logging.Info("[API] listening on %s (TLS)", s.listenAddr)
		err := s.httpServer.ListenAndServeTLS(s.tls.CertFile, s.tls.KeyFile)
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}

	logging.Info("[API] listening on %s", s.listenAddr)
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests.
func (s *APIServer) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *APIServer) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}
