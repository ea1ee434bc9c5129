// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"

	"github.com/okian/livetable/internal/adapters/upstream"
	service "github.com/okian/livetable/internal/app"
	"github.com/okian/livetable/internal/domain/standings"
	"github.com/okian/livetable/pkg/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the aggregation service.
type Dependencies interface {
	StatsProvider

	GetBaseTable(ctx context.Context) (service.BaseTable, error)
	GetLiveTable(ctx context.Context) (service.LiveTable, error)
	FindTeam(ctx context.Context, query string) (standings.TeamStanding, error)
	LiveSummary(ctx context.Context) service.LiveSummary

	Source() string
	HasCredentials() bool
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	standingsHandler *StandingsHandler
	logger           logger.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used by request middleware and handlers.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	s.standingsHandler = NewStandingsHandler(deps, s.logger)
	return s
}

// Register attaches all HTTP routes to router.
func (s *Server) Register(_ context.Context, router *mux.Router) {
	if router == nil {
		panic("router is nil")
	}
	router.Use(RecoveryMiddleware(s.logger), RequestIDMiddleware(s.logger))

	router.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz")).Methods(http.MethodGet)
	router.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats")).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/ping", MetricsMiddleware(s.standingsHandler.HandlePing, "ping")).Methods(http.MethodGet)
	api.HandleFunc("/standings", MetricsMiddleware(s.standingsHandler.HandleBase, "standings")).Methods(http.MethodGet)
	api.HandleFunc("/standings/live", MetricsMiddleware(s.standingsHandler.HandleLive, "standings_live")).Methods(http.MethodGet)
	api.HandleFunc("/standings/team/{name}", MetricsMiddleware(s.standingsHandler.HandleTeam, "standings_team")).Methods(http.MethodGet)
	api.HandleFunc("/debug/live", MetricsMiddleware(s.standingsHandler.HandleLiveDebug, "debug_live")).Methods(http.MethodGet)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// statusFor maps a handler error to a response status and code. Upstream
// failures keep the upstream status code when one was received.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrUpstream):
		if code := upstream.StatusCode(err); code >= http.StatusBadRequest {
			return code, "upstream_error"
		}
		return http.StatusInternalServerError, "upstream_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
