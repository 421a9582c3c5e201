package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/mastermind/internal/simulate"
)

func (s *Server) mountSimulate(r chi.Router) {
	r.With(s.requireSimulateKey).Post("/simulate", s.handleSimulate)
}

type simulateReq struct {
	Games      int   `json:"games"`
	Seed       int64 `json:"seed"`
	Exhaustive bool  `json:"exhaustive"`
}

// handleSimulate runs a batch of self-play games. Runs are CPU heavy, so the
// endpoint is rate limited and the game count capped.
func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	if !s.simLimit.Allow() {
		writeError(w, http.StatusTooManyRequests, "rate_limited")
		return
	}
	req := simulateReq{Games: 200}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	if !req.Exhaustive && (req.Games <= 0 || req.Games > s.opts.SimulateMaxGames) {
		writeError(w, http.StatusBadRequest, "invalid_games")
		return
	}
	if req.Exhaustive && len(s.engine.Universe()) > s.opts.SimulateMaxGames {
		writeError(w, http.StatusBadRequest, "universe_too_large")
		return
	}

	rep, err := simulate.Run(r.Context(), s.engine, simulate.Options{
		Games:      req.Games,
		Seed:       req.Seed,
		Exhaustive: req.Exhaustive,
	})
	if err != nil {
		if errors.Is(err, r.Context().Err()) {
			writeError(w, http.StatusGatewayTimeout, "timeout")
			return
		}
		writeError(w, http.StatusInternalServerError, "simulation_failed")
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
