package http

import (
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/swaggo/swag"
	"go.opentelemetry.io/otel/trace"

	"github.com/artpar/cloudrest/adapters/metrics"
	"github.com/artpar/cloudrest/core/method"
	"github.com/artpar/cloudrest/core/openapi"
	"github.com/artpar/cloudrest/core/provider"
)

// GitHubPage is reported by the index endpoint.
const GitHubPage = "https://github.com/artpar/cloudrest"

// IndexResponse is the body of GET /.
type IndexResponse struct {
	GitHubPage string   `json:"github_page"`
	APIVersion string   `json:"api_version"`
	Services   []string `json:"services"`
}

// HealthResponse represents a health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// RouterConfig holds the configuration of the router.
type RouterConfig struct {
	Cache    *method.Cache
	Services []*provider.Registry
	Logger   zerolog.Logger

	// APIVersion is reported by the index endpoint.
	APIVersion string

	Metrics        *metrics.Collector // optional request and invocation metrics
	MetricsHandler http.Handler       // optional /metrics handler, promhttp.Handler() if nil
	MetricsPath    string             // defaults to /metrics

	// OpenAPI enables /openapi.json, the per provider documents and the
	// Swagger UI.
	OpenAPI *openapi.Service

	Tracer trace.Tracer // optional

	// Routes overrides the route table of a service.
	Routes map[string][]Route
}

// NewRouter creates the main HTTP router.
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewLoggingMiddleware(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	if cfg.Metrics != nil {
		r.Use(NewMetricsMiddleware(cfg.Metrics))

		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		if cfg.MetricsHandler != nil {
			r.Handle(path, cfg.MetricsHandler)
		} else {
			r.Handle(path, promhttp.Handler())
		}
	}

	services := make([]string, 0, len(cfg.Services))
	for _, reg := range cfg.Services {
		services = append(services, reg.Service())
	}

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, IndexResponse{
			GitHubPage: GitHubPage,
			APIVersion: cfg.APIVersion,
			Services:   services,
		})
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
	})

	if cfg.OpenAPI != nil {
		mountOpenAPI(r, cfg)
	}

	for _, reg := range cfg.Services {
		routes, ok := cfg.Routes[reg.Service()]
		if !ok {
			routes = DefaultRoutes(reg.Service())
		}
		h := NewHandler(HandlerConfig{
			Registry: reg,
			Cache:    cfg.Cache,
			Logger:   cfg.Logger,
			Metrics:  cfg.Metrics,
			Tracer:   cfg.Tracer,
		})

		r.Route("/"+reg.Service(), func(r chi.Router) {
			r.Get("/providers", h.Providers)
			r.Get("/providers/{provider}", h.ProviderInfo)
			if cfg.OpenAPI != nil {
				r.Get("/providers/{provider}/openapi.json", providerSpec(cfg, reg))
			}
			r.Route("/{provider}", func(r chi.Router) {
				for _, rt := range routes {
					r.Method(rt.Method, rt.Pattern, h.Route(rt))
				}
				r.Post("/{method}", h.Extension)
			})
		})
	}

	return r
}

func mountOpenAPI(r chi.Router, cfg RouterConfig) {
	svc := cfg.OpenAPI

	r.Get("/openapi.json", func(w http.ResponseWriter, req *http.Request) {
		spec, err := svc.Spec(baseURL(req))
		if err != nil {
			writeError(w, req, cfg.Logger, cfg.Metrics, err)
			return
		}
		w.Header().Set("Access-Control-Allow-Origin", "*")
		writeJSON(w, http.StatusOK, spec)
	})

	swaggerDoc.svc.Store(svc)
	registerSwagger.Do(func() { swag.Register(swaggerInstance, swaggerDoc) })
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.InstanceName(swaggerInstance),
		httpSwagger.URL("/swagger/doc.json"),
	))
}

func providerSpec(cfg RouterConfig, reg *provider.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		id := chi.URLParam(req, "provider")
		if _, err := reg.Get(id); err != nil {
			writeError(w, req, cfg.Logger, cfg.Metrics, err)
			return
		}
		spec, err := cfg.OpenAPI.ProviderSpec(reg.Service(), id, baseURL(req))
		if err != nil {
			writeError(w, req, cfg.Logger, cfg.Metrics, err)
			return
		}
		w.Header().Set("Access-Control-Allow-Origin", "*")
		writeJSON(w, http.StatusOK, spec)
	}
}

const swaggerInstance = "cloudrest"

var (
	swaggerDoc      = &specDoc{}
	registerSwagger sync.Once
)

// specDoc serves the generated document to the Swagger UI. swag keeps one
// document per instance name for the whole process, so the most recently
// built router wins.
type specDoc struct {
	svc atomic.Pointer[openapi.Service]
}

func (d *specDoc) ReadDoc() string {
	svc := d.svc.Load()
	if svc == nil {
		return "{}"
	}
	spec, err := svc.Spec("")
	if err != nil {
		return "{}"
	}
	data, err := spec.ToJSON()
	if err != nil {
		return "{}"
	}
	return string(data)
}

func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}

// NewMetricsMiddleware creates middleware that records request metrics.
func NewMetricsMiddleware(m *metrics.Collector) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipObservation(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			m.RequestsInFlight.Inc()
			defer m.RequestsInFlight.Dec()

			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			m.RequestsTotal.WithLabelValues(r.Method, route, statusLabel(ww.Status())).Inc()
			m.RequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}

// statusLabel returns a string label for the status code.
func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "other"
	}
}

func skipObservation(path string) bool {
	return path == "/health" || path == "/metrics" || strings.HasPrefix(path, "/swagger")
}

// NewLoggingMiddleware creates a new logging middleware.
func NewLoggingMiddleware(logger zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			if skipObservation(r.URL.Path) {
				return
			}

			logger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("http request")
		})
	}
}
