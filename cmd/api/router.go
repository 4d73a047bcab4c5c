package api

import (
	"encoding/json"
	"net/http"
	"os/exec"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/doppio-labs/fiscaldoc/pkg/middleware"
	"github.com/doppio-labs/fiscaldoc/pkg/observability"
)

// SetupRouter configures all routes and returns the HTTP handler
func SetupRouter(deps *Dependencies) http.Handler {
	mux := http.NewServeMux()

	registerDocumentRoutes(mux, deps)
	registerUtilityRoutes(mux, deps)

	var handler http.Handler = mux
	handler = observability.NewMetricsMiddleware()(handler)
	handler = middleware.Logging(deps.Logger)(handler)
	if deps.Config.Server.RateLimitPerSecond > 0 && deps.Config.Server.RateLimitBurst > 0 {
		limiter := rate.NewLimiter(
			rate.Limit(float64(deps.Config.Server.RateLimitPerSecond)),
			deps.Config.Server.RateLimitBurst,
		)
		handler = middleware.RateLimit(limiter)(handler)
	}
	handler = middleware.RequestID(handler)
	handler = middleware.Recovery(deps.Logger)(handler)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           7200,
	})

	return corsHandler.Handler(handler)
}

// registerDocumentRoutes registers the pipeline and review queue routes
func registerDocumentRoutes(mux *http.ServeMux, deps *Dependencies) {
	mux.HandleFunc("POST /v1/documents", deps.DocumentHandler.Submit)
	mux.HandleFunc("POST /v1/documents/analyze", deps.DocumentHandler.Analyze)
	deps.Logger.Info("registered document routes", "paths", "/v1/documents, /v1/documents/analyze")

	if deps.ReviewHandler != nil {
		mux.HandleFunc("GET /v1/review", deps.ReviewHandler.List)
		mux.HandleFunc("POST /v1/review/{id}/resolve", deps.ReviewHandler.Resolve)
		deps.Logger.Info("registered review routes", "paths", "/v1/review, /v1/review/{id}/resolve")
	}
}

// registerUtilityRoutes registers health check, metrics, and other utility routes
func registerUtilityRoutes(mux *http.ServeMux, deps *Dependencies) {
	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		if deps.DB != nil {
			if err := deps.DB.Health(); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				if _, writeErr := w.Write([]byte("database unhealthy")); writeErr != nil {
					deps.Logger.Error("failed to write health response", "error", writeErr)
				}
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("ok")); err != nil {
			deps.Logger.Error("failed to write health response", "error", err)
		}
	})
	deps.Logger.Info("registered health check", "path", "/health")

	// Extended health with details on dependencies
	mux.HandleFunc("/health/details", func(w http.ResponseWriter, _ *http.Request) {
		type status struct {
			Status string `json:"status"`
			Detail string `json:"detail,omitempty"`
		}
		result := map[string]status{
			"db":    {Status: "ok"},
			"ocr":   {Status: "ok"},
			"ready": {Status: "ok"},
		}

		if deps.DB == nil {
			result["db"] = status{Status: "off", Detail: "review queue disabled"}
		} else if err := deps.DB.Health(); err != nil {
			result["db"] = status{Status: "fail", Detail: err.Error()}
			result["ready"] = status{Status: "fail", Detail: "db unavailable"}
		}

		if _, err := exec.LookPath(deps.Config.OCR.Binary); err != nil {
			result["ocr"] = status{Status: "warn", Detail: deps.Config.OCR.Binary + " not found in PATH"}
		}

		for _, v := range result {
			if v.Status == "fail" {
				w.WriteHeader(http.StatusServiceUnavailable)
				if err := json.NewEncoder(w).Encode(result); err != nil {
					deps.Logger.Error("failed to encode health details", "error", err)
				}
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(result); err != nil {
			deps.Logger.Error("failed to encode health details", "error", err)
		}
	})
	deps.Logger.Info("registered health details", "path", "/health/details")

	// Readiness check endpoint
	mux.HandleFunc("/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("ready")); err != nil {
			deps.Logger.Error("failed to write readiness response", "error", err)
		}
	})
	deps.Logger.Info("registered readiness check", "path", "/ready")

	// Metrics endpoint (Prometheus)
	if deps.Config.Observability.MetricsEnabled {
		mux.Handle("/metrics", promhttp.Handler())
		deps.Logger.Info("registered metrics endpoint", "path", "/metrics")
	}
}
