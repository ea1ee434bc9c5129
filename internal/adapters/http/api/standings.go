package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	service "github.com/okian/livetable/internal/app"
	"github.com/okian/livetable/pkg/logger"
)

// StandingsHandler serves the league table routes.
type StandingsHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewStandingsHandler creates a new standings handler.
func NewStandingsHandler(deps Dependencies, l logger.Logger) *StandingsHandler {
	return &StandingsHandler{deps: deps, logger: l}
}

type pingResponse struct {
	OK       bool   `json:"ok"`
	HasKey   bool   `json:"hasKey"`
	Provider string `json:"provider"`
}

// HandlePing handles GET /api/ping.
func (h *StandingsHandler) HandlePing(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, pingResponse{
		OK:       true,
		HasKey:   h.deps.HasCredentials(),
		Provider: h.deps.Source(),
	})
}

// HandleBase handles GET /api/standings.
func (h *StandingsHandler) HandleBase(w http.ResponseWriter, r *http.Request) {
	table, err := h.deps.GetBaseTable(r.Context())
	if err != nil {
		h.fail(w, r, WrapKind("standings", ErrUpstream, err))
		return
	}
	writeJSON(w, http.StatusOK, table)
}

// HandleLive handles GET /api/standings/live.
func (h *StandingsHandler) HandleLive(w http.ResponseWriter, r *http.Request) {
	table, err := h.deps.GetLiveTable(r.Context())
	if err != nil {
		h.fail(w, r, WrapKind("standings live", ErrUpstream, err))
		return
	}
	writeJSON(w, http.StatusOK, table)
}

// HandleTeam handles GET /api/standings/team/{name}.
func (h *StandingsHandler) HandleTeam(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	row, err := h.deps.FindTeam(r.Context(), name)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, row)
	case errors.Is(err, service.ErrTeamNotFound):
		h.fail(w, r, WrapKind("standings team", ErrNotFound, err))
	case errors.Is(err, service.ErrEmptyQuery):
		h.fail(w, r, WrapKind("standings team", ErrBadRequest, err))
	default:
		h.fail(w, r, WrapKind("standings team", ErrUpstream, err))
	}
}

// HandleLiveDebug handles GET /api/debug/live.
func (h *StandingsHandler) HandleLiveDebug(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.LiveSummary(r.Context()))
}

func (h *StandingsHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(r.Context(), "request failed",
			logger.String("path", r.URL.Path),
			logger.Int("status", status),
			logger.Error(err),
		)
	}
	writeError(w, status, code, err)
}
