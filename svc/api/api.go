package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/notifykit/pkg/httpserver"
	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/notifications"
	"github.com/dmitrymomot/notifykit/svc/dispatcher"
)

// Triggerer enqueues notifications; *dispatcher.Producer implements it.
type Triggerer interface {
	Trigger(ctx context.Context, subscriberID uuid.UUID, req dispatcher.TriggerRequest) (notifications.Command, error)
}

// API is the HTTP surface producers use to trigger notifications and read
// delivery history.
type API struct {
	trigger  Triggerer
	logs     notifications.LogStore
	checks   map[string]httpserver.CheckFunc
	gatherer prometheus.Gatherer
	cfg      Config
	logger   *slog.Logger
}

type Option func(*API)

func WithLogger(l *slog.Logger) Option {
	return func(a *API) {
		if l != nil {
			a.logger = l
		}
	}
}

func WithConfig(cfg Config) Option {
	return func(a *API) {
		if cfg.MaxBodyBytes > 0 {
			a.cfg.MaxBodyBytes = cfg.MaxBodyBytes
		}
		if cfg.HealthTimeout > 0 {
			a.cfg.HealthTimeout = cfg.HealthTimeout
		}
		if cfg.MaxPageSize > 0 {
			a.cfg.MaxPageSize = cfg.MaxPageSize
		}
	}
}

// WithLogStore enables the log listing and statistics routes.
func WithLogStore(logs notifications.LogStore) Option {
	return func(a *API) { a.logs = logs }
}

// WithHealthCheck registers a readiness check reported by /healthz.
func WithHealthCheck(name string, check httpserver.CheckFunc) Option {
	return func(a *API) {
		if check != nil {
			a.checks[name] = check
		}
	}
}

// WithMetrics serves g on /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(a *API) { a.gatherer = g }
}

// New panics if trigger is nil.
func New(trigger Triggerer, opts ...Option) *API {
	if trigger == nil {
		panic("api: triggerer cannot be nil")
	}
	a := &API{
		trigger: trigger,
		checks:  make(map[string]httpserver.CheckFunc),
		cfg:     DefaultConfig(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With(logger.Component("api"))
	return a
}

// Handler builds the router:
//
//	POST /v1/subscribers/{subscriberID}/events
//	GET  /v1/subscribers/{subscriberID}/logs        (with a log store)
//	GET  /v1/subscribers/{subscriberID}/logs/stats  (with a log store)
//	GET  /healthz
//	GET  /metrics                                   (with a gatherer)
func (a *API) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(a.logger))
	r.Use(middleware.Recoverer)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, Response{Error: &ErrorDetail{Code: "not_found", Message: "route not found"}})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, Response{Error: &ErrorDetail{Code: "method_not_allowed", Message: "method not allowed"}})
	})

	r.Get("/healthz", httpserver.HealthCheckHandler(a.logger, a.cfg.HealthTimeout, a.checks))
	if a.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(a.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/v1/subscribers/{subscriberID}", func(r chi.Router) {
		r.Post("/events", a.handle(a.triggerEvent))
		if a.logs != nil {
			r.Get("/logs", a.handle(a.listLogs))
			r.Get("/logs/stats", a.handle(a.logStats))
		}
	})
	return r
}

type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// handle turns a returned error into a JSON error response.
func (a *API) handle(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}

		info := classifyError(err)
		if info.status >= http.StatusInternalServerError {
			a.logger.ErrorContext(r.Context(), "request failed", logger.Error(err))
		}
		writeJSON(w, info.status, Response{Error: &ErrorDetail{
			Code:    info.code,
			Message: info.message,
			Details: info.details,
		}})
	}
}

func subscriberIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "subscriberID"))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, ErrInvalidSubscriberID
	}
	return id, nil
}
