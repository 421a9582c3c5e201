// internal/httpserver/server.go
//
// HTTP server wiring for the Mastermind solver.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, access log).
//   - Public endpoints: "/", "/health", "/palette", "/metrics".
//   - Self-play: POST /solve.
//   - Interactive sessions: POST /sessions, then per-round feedback under
//     /sessions/{id}, gated by the session token handed out at creation.
//   - Batch simulation: POST /simulate (key-protected, rate limited).
//
// Notes:
//   - One engine backs every session; sessions live in the store.
//   - Feedback is validated here, before it reaches the engine.

package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/robalobadob/mastermind/internal/game"
	"github.com/robalobadob/mastermind/internal/metrics"
	"github.com/robalobadob/mastermind/internal/palette"
	"github.com/robalobadob/mastermind/internal/store"
)

// Options carries the server settings resolved from config.
type Options struct {
	SessionSecret    string
	SessionTTL       time.Duration
	ClientOrigin     string
	SimulateKeyHash  string  // bcrypt hash; /simulate is disabled when empty
	SimulateRPS      float64 // requests per second for /simulate
	SimulateMaxGames int
	RequestTimeout   time.Duration
}

// Server bundles router, engine, palette and session store.
type Server struct {
	r        *chi.Mux
	engine   *game.Engine
	palette  *palette.Palette
	store    store.Store
	opts     Options
	simLimit *rate.Limiter
}

// New constructs a Server, installs middleware, and registers routes.
func New(engine *game.Engine, pal *palette.Palette, st store.Store, opts Options) *Server {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = time.Hour
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	if opts.SimulateRPS <= 0 {
		opts.SimulateRPS = 1
	}
	if opts.SimulateMaxGames <= 0 {
		opts.SimulateMaxGames = 2000
	}
	s := &Server{
		r:        chi.NewRouter(),
		engine:   engine,
		palette:  pal,
		store:    st,
		opts:     opts,
		simLimit: rate.NewLimiter(rate.Limit(opts.SimulateRPS), 1),
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                   // add X-Request-ID
	s.r.Use(chimw.RealIP)                      // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(accessLog)                         // one zerolog line per request
	s.r.Use(chimw.Recoverer)                   // recover from panics
	s.r.Use(chimw.Timeout(opts.RequestTimeout)) // bound handler time
	s.r.Use(jsonContentType)                   // default JSON responses
	s.r.Use(corsFor(opts.ClientOrigin))        // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"service":"mastermind","endpoints":["/health","/palette","POST /solve","POST /sessions","POST /sessions/{id}/feedback","POST /simulate","/metrics"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Get("/palette", s.handlePalette)
	s.r.Method(http.MethodGet, "/metrics", metrics.Handler())

	s.r.Post("/solve", s.handleSolve)
	s.mountSessions(s.r)
	s.mountSimulate(s.r)

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})
	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error {
	log.Info().Str("addr", addr).Msg("listening")
	return http.ListenAndServe(addr, s.r)
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ------------------------------ views --------------------------------------

// codeView renders a code for clients.
type codeView struct {
	Abbr   string   `json:"abbr"`
	Colors []string `json:"colors"`
}

func (s *Server) view(c game.Code) *codeView {
	if c == nil {
		return nil
	}
	return &codeView{Abbr: s.palette.Abbrev(c), Colors: s.palette.CodeNames(c)}
}

type resultView struct {
	Attempts           int        `json:"attempts"`
	State              game.State `json:"state"`
	SearchSpaceHistory []int      `json:"searchSpaceHistory"`
	Guesses            []codeView `json:"guesses"`
}

func (s *Server) resultView(r game.Result) resultView {
	out := resultView{
		Attempts:           r.Attempts,
		State:              r.State,
		SearchSpaceHistory: r.SearchSpaceHistory,
		Guesses:            make([]codeView, 0, len(r.Guesses)),
	}
	for _, g := range r.Guesses {
		out.Guesses = append(out.Guesses, *s.view(g))
	}
	return out
}

// ------------------------------ palette ------------------------------------

func (s *Server) handlePalette(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"colors":      s.palette.Colors(),
		"codeLength":  s.engine.CodeLength(),
		"maxAttempts": s.engine.MaxAttempts(),
	})
}

// ------------------------------- solve -------------------------------------

type solveReq struct {
	Secret string `json:"secret"` // abbreviations ("ARBN") or names
}

// handleSolve runs a full self-play session against the given secret.
func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	var req solveReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	secret, ok := s.palette.ParseCode(req.Secret, s.engine.CodeLength())
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_code")
		return
	}

	start := time.Now()
	res := s.engine.SolveAgainstSecret(secret)
	metrics.ObserveResult(metrics.ModeSecret, res)
	log.Info().
		Str("secret", s.palette.Abbrev(secret)).
		Int("attempts", res.Attempts).
		Stringer("state", res.State).
		Dur("took", time.Since(start)).
		Msg("self-play finished")

	writeJSON(w, http.StatusOK, s.resultView(res))
}

// ------------------------------- util --------------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
