// Package http exposes the provider registries over HTTP/JSON.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/artpar/cloudrest/adapters/metrics"
	"github.com/artpar/cloudrest/core/apierror"
	"github.com/artpar/cloudrest/core/entry"
	"github.com/artpar/cloudrest/core/invoke"
	"github.com/artpar/cloudrest/core/method"
	"github.com/artpar/cloudrest/core/provider"
)

const (
	maxBodySize     = 10 << 20
	extensionPrefix = "ex_"
	tracerName      = "github.com/artpar/cloudrest/adapters/http"
)

// Handler serves the driver methods of one service.
type Handler struct {
	registry *provider.Registry
	cache    *method.Cache
	logger   zerolog.Logger
	metrics  *metrics.Collector
	tracer   trace.Tracer
}

// HandlerConfig configures a Handler.
type HandlerConfig struct {
	Registry *provider.Registry
	Cache    *method.Cache
	Logger   zerolog.Logger
	Metrics  *metrics.Collector // optional
	Tracer   trace.Tracer       // optional, defaults to the global provider
}

// NewHandler creates a handler for the service of cfg.Registry.
func NewHandler(cfg HandlerConfig) *Handler {
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	return &Handler{
		registry: cfg.Registry,
		cache:    cfg.Cache,
		logger:   cfg.Logger.With().Str("service", cfg.Registry.Service()).Logger(),
		metrics:  cfg.Metrics,
		tracer:   tracer,
	}
}

// Providers lists the providers of the service.
func (h *Handler) Providers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.registry.List())
}

// ProviderInfo describes one provider and its supported methods.
func (h *Handler) ProviderInfo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "provider")
	info, err := h.registry.Info(id, h.cache, provider.OnSkip(func(name string, err error) {
		h.logger.Info().Err(err).Str("provider", id).Str("method", name).Msg("method skipped")
	}))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// Route returns the handler of a route table entry.
func (h *Handler) Route(rt Route) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.serve(w, r, rt)
	}
}

// Extension invokes an ex_ method named by the URL.
func (h *Handler) Extension(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "method")
	if !strings.HasPrefix(name, extensionPrefix) {
		h.writeError(w, r, apierror.NoSuchOperation.New(name))
		return
	}
	h.serve(w, r, Route{Op: name})
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, rt Route) {
	ctx := r.Context()
	id := strings.ToUpper(chi.URLParam(r, "provider"))

	d, err := h.registry.Get(id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	creds, err := credentials(r.Header)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	driver, err := provider.Connect(ctx, h.cache, d, creds)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	doc, err := requestDocument(w, r, rt)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	s, err := h.cache.Get(d.Type, rt.Op)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.call(ctx, s, d.ID, driver, doc, rt.Download)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if rt.Download {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.WriteHeader(rt.status())
		data, _ := result.(string)
		io.WriteString(w, data)
		return
	}

	if rt.Location != "" {
		if m, ok := result.(map[string]any); ok {
			if loc, ok := m[rt.Location].(string); ok {
				w.Header().Set("Location", loc)
			}
		}
	}
	if rt.status() == http.StatusNoContent {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, rt.status(), result)
}

// call runs s inside an invocation span. raw returns the native result
// instead of its wire form.
func (h *Handler) call(ctx context.Context, s *method.Schema, providerID string, driver any, doc entry.Document, raw bool) (any, error) {
	service := h.registry.Service()
	ctx, span := h.tracer.Start(ctx, "cloudrest.invoke", trace.WithAttributes(
		attribute.String("cloudrest.service", service),
		attribute.String("cloudrest.provider", providerID),
		attribute.String("cloudrest.method", s.Name),
	))
	defer span.End()

	start := time.Now()
	var (
		result any
		err    error
	)
	if raw {
		result, err = invoke.Call(ctx, s, driver, doc)
	} else {
		result, err = invoke.InvokeDocument(ctx, s, driver, doc)
	}

	outcome := "ok"
	if err != nil {
		classified := apierror.From(err)
		outcome = classified.Name
		span.RecordError(err)
		span.SetStatus(codes.Error, classified.Name)
	}
	if h.metrics != nil {
		h.metrics.ObserveInvocation(service, providerID, s.Name, outcome, time.Since(start).Seconds())
	}
	return result, err
}

// credentials reads the credential headers into constructor arguments.
func credentials(header http.Header) (map[string]any, error) {
	creds := make(map[string]any)
	for name, arg := range provider.HeaderArguments {
		v := header.Get(name)
		if v == "" {
			continue
		}
		if arg == "port" {
			port, err := strconv.Atoi(v)
			if err != nil {
				return nil, apierror.Validation.New(name + " must be an integer")
			}
			creds[arg] = port
			continue
		}
		creds[arg] = v
	}
	return creds, nil
}

// requestDocument builds the argument document: the JSON body (or the raw
// upload), then query parameters, then URL parameters.
func requestDocument(w http.ResponseWriter, r *http.Request, rt Route) (entry.Document, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apierror.RequestTooLarge.With(tooLarge.Limit).Wrap(err)
		}
		return nil, apierror.Internal.Wrap(err)
	}

	var doc entry.Document
	if rt.Upload {
		extra := map[string]any{}
		if ct := r.Header.Get("Content-Type"); ct != "" {
			extra["content_type"] = ct
		}
		doc = entry.Document{"data": string(body), "extra": extra}
	} else {
		doc, err = invoke.ParseBody(body)
		if err != nil {
			return nil, err
		}
	}

	for k, v := range r.URL.Query() {
		if _, ok := doc[k]; !ok && len(v) > 0 {
			doc[k] = v[0]
		}
	}

	rctx := chi.RouteContext(r.Context())
	if rctx != nil {
		for i, k := range rctx.URLParams.Keys {
			if k == "provider" || k == "method" || k == "*" {
				continue
			}
			doc[rt.key(k)] = rctx.URLParams.Values[i]
		}
	}
	return doc, nil
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, h.logger, h.metrics, err)
}

func writeError(w http.ResponseWriter, r *http.Request, logger zerolog.Logger, m *metrics.Collector, err error) {
	e := apierror.From(err)

	ev := logger.Warn()
	if e.Status >= http.StatusInternalServerError {
		ev = logger.Error()
	}
	ev.Err(err).
		Int("code", e.Code).
		Str("name", e.Name).
		Str("path", r.URL.Path).
		Str("request_id", middleware.GetReqID(r.Context())).
		Msg("request failed")

	if m != nil {
		m.ObserveError(e.Name)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Status)
	w.Write(e.ToJSON())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
