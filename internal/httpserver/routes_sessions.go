// internal/httpserver/routes_sessions.go
//
// HTTP routes for interactive solve sessions: the client keeps the secret and
// reports feedback for every guess the engine proposes.
//
//   - POST   /sessions               → start a session, returns token + first guess
//   - GET    /sessions/{id}          → current snapshot
//   - POST   /sessions/{id}/feedback → report (exact, color) for the pending guess
//   - DELETE /sessions/{id}          → abandon the session
//
// Everything under /sessions/{id} requires the session token as a Bearer token.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/mastermind/internal/game"
	"github.com/robalobadob/mastermind/internal/metrics"
	"github.com/robalobadob/mastermind/internal/store"
)

// mountSessions registers all /sessions routes.
func (s *Server) mountSessions(r chi.Router) {
	r.Post("/sessions", s.handleNewSession)
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Use(s.requireSessionToken)
		r.Get("/", s.handleGetSession)
		r.Delete("/", s.handleDeleteSession)
		r.Post("/feedback", s.handleFeedback)
	})
}

// sessionRes is the snapshot returned by every session endpoint.
type sessionRes struct {
	SessionID          string     `json:"sessionId"`
	Token              string     `json:"token,omitempty"`
	ExpiresAt          *time.Time `json:"expiresAt,omitempty"`
	State              game.State `json:"state"`
	Attempt            int        `json:"attempt"`
	Remaining          int        `json:"remaining"`
	Guess              *codeView  `json:"guess,omitempty"` // pending guess while active
	SearchSpaceHistory []int      `json:"searchSpaceHistory"`
}

func (s *Server) snapshot(sess *game.Session) sessionRes {
	return sessionRes{
		SessionID:          sess.ID,
		State:              sess.State(),
		Attempt:            sess.Attempts(),
		Remaining:          sess.Remaining(),
		Guess:              s.view(sess.Pending()),
		SearchSpaceHistory: append([]int{}, sess.Space().History()...),
	}
}

// handleNewSession starts a session and proposes the opening guess.
// Stale sessions are swept on the way (best effort).
func (s *Server) handleNewSession(w http.ResponseWriter, r *http.Request) {
	if st, err := s.store.Sweep(r.Context(), time.Now().Add(-s.opts.SessionTTL)); err != nil {
		log.Warn().Err(err).Msg("sweep sessions")
	} else if st.Removed > 0 {
		for i := 0; i < st.Active; i++ {
			metrics.SessionEnded()
		}
		log.Info().Int("sessions", st.Removed).Int("active", st.Active).Msg("swept stale sessions")
	}

	sess := s.engine.NewSession()
	if _, err := sess.Next(); err != nil {
		writeError(w, http.StatusInternalServerError, "start_failed")
		return
	}
	if err := s.store.Save(r.Context(), sess); err != nil {
		log.Error().Err(err).Msg("save session")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	tok, exp, err := s.signSessionToken(sess.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	metrics.SessionStarted()
	log.Info().Str("sessionId", sess.ID).Msg("session started")

	res := s.snapshot(sess)
	res.Token = tok
	res.ExpiresAt = &exp
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	// Read under the session lock so a concurrent feedback cannot race the snapshot.
	var res sessionRes
	_, err := s.store.Update(r.Context(), chi.URLParam(r, "id"), func(sess *game.Session) error {
		res = s.snapshot(sess)
		return nil
	})
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	active, err := s.store.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.storeError(w, err)
		return
	}
	if active {
		metrics.SessionEnded()
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleFeedback validates the reported feedback, applies it to the pending
// guess and proposes the next one while the session stays active.
func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var fb game.Feedback
	if err := json.NewDecoder(r.Body).Decode(&fb); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	if err := fb.Validate(s.engine.CodeLength()); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_feedback")
		return
	}

	id := chi.URLParam(r, "id")
	var (
		snap     sessionRes
		finished *game.Result
	)
	_, err := s.store.Update(r.Context(), id, func(sess *game.Session) error {
		st, err := sess.Apply(fb)
		if err != nil {
			return err
		}
		if st.Terminal() {
			res := sess.Result()
			finished = &res
		} else if _, err := sess.Next(); err != nil {
			return err
		}
		snap = s.snapshot(sess)
		return nil
	})
	if err != nil {
		s.storeError(w, err)
		return
	}

	if finished != nil {
		metrics.ObserveResult(metrics.ModeInteractive, *finished)
		metrics.SessionEnded()
		log.Info().
			Str("sessionId", id).
			Int("attempts", finished.Attempts).
			Stringer("state", finished.State).
			Msg("session finished")
	}
	writeJSON(w, http.StatusOK, snap)
}

// storeError maps store/session errors to responses.
func (s *Server) storeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found")
	case errors.Is(err, game.ErrSessionFinished):
		writeError(w, http.StatusConflict, "session_finished")
	default:
		log.Error().Err(err).Msg("session store")
		writeError(w, http.StatusInternalServerError, "store_error")
	}
}
