package rest

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/oshokin/loadbank-hmi/internal/domain/alarm"
	"github.com/oshokin/loadbank-hmi/internal/logger"
	"github.com/oshokin/loadbank-hmi/internal/render/panel"
	"github.com/oshokin/loadbank-hmi/internal/service/alarms"
)

// Engine is the alarm session the API drives.
type Engine interface {
	Snapshot() alarms.Snapshot
	SelectTab(tab alarm.Tab) error
	Acknowledge(ctx context.Context, id int) error
	AcknowledgeRow(ctx context.Context, row int) (int, error)
	AcknowledgeAll(ctx context.Context) error
	Reset(ctx context.Context) error
	OpenClearDialog() error
	CancelClearDialog() error
	ConfirmClearHistory(ctx context.Context) error
}

// Panel is the painted page.
type Panel interface {
	State() panel.State
}

// NewRouter builds the operator API.
func NewRouter(ctx context.Context, engine Engine, board Panel, gatherer prometheus.Gatherer) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		Debug:          false,
	}).Handler)
	r.Use(middleware.Recoverer)
	r.Use(withLogger(ctx))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/panel", getPanelHandler(board))
		r.Get("/alarms", getAlarmsHandler(engine))
		r.Put("/tab/{tab}", selectTabHandler(engine))

		r.Post("/alarms/ack-all", commandHandler(engine.AcknowledgeAll))
		r.Post("/alarms/{alarmID}/ack", acknowledgeHandler(engine))
		r.Post("/rows/{row}/ack", acknowledgeRowHandler(engine))
		r.Post("/reset", commandHandler(engine.Reset))

		r.Route("/history", func(r chi.Router) {
			r.Post("/clear-dialog", dialogHandler(engine.OpenClearDialog))
			r.Delete("/clear-dialog", dialogHandler(engine.CancelClearDialog))
			r.Post("/clear", commandHandler(engine.ConfirmClearHistory))
		})
	})

	return r
}

// withLogger carries the service logger into request contexts.
func withLogger(ctx context.Context) func(http.Handler) http.Handler {
	base := logger.FromContext(ctx).Named("http")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestLogger := base.With("method", r.Method, "path", r.URL.Path, "remote_addr", r.RemoteAddr)
			if operator := r.Header.Get("X-Operator"); operator != "" {
				requestLogger = requestLogger.With("operator", operator)
			}

			next.ServeHTTP(w, r.WithContext(logger.ToContext(r.Context(), requestLogger)))
		})
	}
}
