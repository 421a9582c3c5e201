package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/robalobadob/mastermind/internal/game"
	"github.com/robalobadob/mastermind/internal/palette"
	"github.com/robalobadob/mastermind/internal/store"
)

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	pal, err := palette.Default()
	require.NoError(t, err)
	e, err := game.NewEngine(pal.Names(), 4)
	require.NoError(t, err)
	if opts.SessionSecret == "" {
		opts.SessionSecret = "test-secret"
	}
	return New(e, pal, store.NewMemoryStore(), opts)
}

func do(t *testing.T, s *Server, method, path string, body any, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// activeSessions reads the sessions gauge from the default registry.
func activeSessions(t *testing.T) float64 {
	t.Helper()
	mfs, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() == "mastermind_sessions_active" {
			return mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatal("mastermind_sessions_active not registered")
	return 0
}

func TestHealthAndPalette(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := do(t, s, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/palette", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[struct {
		Colors      []palette.Color `json:"colors"`
		CodeLength  int             `json:"codeLength"`
		MaxAttempts int             `json:"maxAttempts"`
	}](t, rec)
	assert.Len(t, body.Colors, 6)
	assert.Equal(t, 4, body.CodeLength)
	assert.Equal(t, game.DefaultMaxAttempts, body.MaxAttempts)

	rec = do(t, s, http.MethodGet, "/nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSolve(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := do(t, s, http.MethodPost, "/solve", map[string]string{"secret": "ARBN"}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[resultView](t, rec)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, game.Solved, res.State)
	assert.Equal(t, []int{1296, 208}, res.SearchSpaceHistory)
	require.Len(t, res.Guesses, 3)
	assert.Equal(t, "AARR", res.Guesses[0].Abbr)
	assert.Equal(t, "ARBN", res.Guesses[2].Abbr)

	rec = do(t, s, http.MethodPost, "/solve", map[string]string{"secret": "ARB"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"invalid_code"}`, rec.Body.String())

	rec = do(t, s, http.MethodPost, "/solve", "not an object", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionFlow(t *testing.T) {
	s := newTestServer(t, Options{})
	secret := game.Code{0, 1, 2, 3}

	rec := do(t, s, http.MethodPost, "/sessions", nil, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[sessionRes](t, rec)
	require.NotEmpty(t, created.SessionID)
	require.NotEmpty(t, created.Token)
	require.NotNil(t, created.Guess)
	assert.Equal(t, "AARR", created.Guess.Abbr)
	assert.Equal(t, 1, created.Attempt)
	assert.Equal(t, game.Active, created.State)

	auth := map[string]string{"Authorization": "Bearer " + created.Token}
	base := "/sessions/" + created.SessionID

	rec = do(t, s, http.MethodGet, base, nil, auth)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1296, decode[sessionRes](t, rec).Remaining)

	guess := created.Guess
	var last sessionRes
	for i := 0; i < game.DefaultMaxAttempts && guess != nil; i++ {
		code, ok := s.palette.ParseCode(guess.Abbr, 4)
		require.True(t, ok)
		rec = do(t, s, http.MethodPost, base+"/feedback", game.Score(code, secret), auth)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		last = decode[sessionRes](t, rec)
		guess = last.Guess
	}
	assert.Equal(t, game.Solved, last.State)
	assert.Equal(t, 3, last.Attempt)
	assert.Equal(t, []int{1296, 208}, last.SearchSpaceHistory)
	assert.Nil(t, last.Guess)

	rec = do(t, s, http.MethodPost, base+"/feedback", game.Feedback{Exact: 4}, auth)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, s, http.MethodDelete, base, nil, auth)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, s, http.MethodGet, base, nil, auth)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionContradiction(t *testing.T) {
	s := newTestServer(t, Options{})
	created := decode[sessionRes](t, do(t, s, http.MethodPost, "/sessions", nil, nil))
	auth := map[string]string{"Authorization": "Bearer " + created.Token}

	// (3, 1) is valid on its own but no code can produce it.
	rec := do(t, s, http.MethodPost, "/sessions/"+created.SessionID+"/feedback", game.Feedback{Exact: 3, Color: 1}, auth)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[sessionRes](t, rec)
	assert.Equal(t, game.Contradiction, res.State)
	assert.Zero(t, res.Remaining)
}

func TestSessionAuthAndValidation(t *testing.T) {
	s := newTestServer(t, Options{})
	a := decode[sessionRes](t, do(t, s, http.MethodPost, "/sessions", nil, nil))
	b := decode[sessionRes](t, do(t, s, http.MethodPost, "/sessions", nil, nil))
	fbPath := "/sessions/" + a.SessionID + "/feedback"

	rec := do(t, s, http.MethodPost, fbPath, game.Feedback{}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())

	// b's token does not open a.
	rec = do(t, s, http.MethodPost, fbPath, game.Feedback{}, map[string]string{"Authorization": "Bearer " + b.Token})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"invalid_token"}`, rec.Body.String())

	other := newTestServer(t, Options{SessionSecret: "another-secret"})
	forged, _, err := other.signSessionToken(a.SessionID)
	require.NoError(t, err)
	rec = do(t, s, http.MethodPost, fbPath, game.Feedback{}, map[string]string{"Authorization": "Bearer " + forged})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	auth := map[string]string{"Authorization": "Bearer " + a.Token}
	for _, fb := range []game.Feedback{{Exact: -1}, {Exact: 5}, {Exact: 3, Color: 2}, {Color: 5}} {
		rec = do(t, s, http.MethodPost, fbPath, fb, auth)
		assert.Equal(t, http.StatusBadRequest, rec.Code, fb.String())
		assert.JSONEq(t, `{"error":"invalid_feedback"}`, rec.Body.String())
	}

	// Rejected feedback leaves the session untouched.
	rec = do(t, s, http.MethodGet, "/sessions/"+a.SessionID, nil, auth)
	require.Equal(t, http.StatusOK, rec.Code)
	snap := decode[sessionRes](t, rec)
	assert.Equal(t, 1, snap.Attempt)
	assert.Equal(t, game.Active, snap.State)
}

func TestSweepEndsStaleSessions(t *testing.T) {
	s := newTestServer(t, Options{SessionTTL: time.Millisecond})
	before := activeSessions(t)

	rec := do(t, s, http.MethodPost, "/sessions", nil, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	stale := decode[sessionRes](t, rec)
	assert.Equal(t, before+1, activeSessions(t))

	time.Sleep(5 * time.Millisecond)
	rec = do(t, s, http.MethodPost, "/sessions", nil, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	// The first session was swept: one live session, gauge up by one.
	assert.Equal(t, before+1, activeSessions(t))
	_, err := s.store.Get(context.Background(), stale.SessionID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSweepSkipsFinishedSessionsInGauge(t *testing.T) {
	// Token expiry has one-second precision, so the TTL must outlive the feedback call.
	s := newTestServer(t, Options{SessionTTL: 1100 * time.Millisecond})
	before := activeSessions(t)

	created := decode[sessionRes](t, do(t, s, http.MethodPost, "/sessions", nil, nil))
	auth := map[string]string{"Authorization": "Bearer " + created.Token}
	rec := do(t, s, http.MethodPost, "/sessions/"+created.SessionID+"/feedback", game.Feedback{Exact: 4}, auth)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, before, activeSessions(t))

	time.Sleep(1200 * time.Millisecond)
	rec = do(t, s, http.MethodPost, "/sessions", nil, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, before+1, activeSessions(t))
}

func TestConcurrentDeleteEndsSessionOnce(t *testing.T) {
	s := newTestServer(t, Options{})
	created := decode[sessionRes](t, do(t, s, http.MethodPost, "/sessions", nil, nil))
	auth := map[string]string{"Authorization": "Bearer " + created.Token}
	before := activeSessions(t)

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		codes []int
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodDelete, "/sessions/"+created.SessionID, nil)
			req.Header.Set("Authorization", auth["Authorization"])
			rec := httptest.NewRecorder()
			s.Router().ServeHTTP(rec, req)
			mu.Lock()
			codes = append(codes, rec.Code)
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.ElementsMatch(t, []int{http.StatusOK, http.StatusNotFound, http.StatusNotFound, http.StatusNotFound}, codes)
	assert.Equal(t, before-1, activeSessions(t))
}

func TestSimulate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("k3y"), bcrypt.MinCost)
	require.NoError(t, err)
	body := map[string]any{"games": 20, "seed": 7}

	t.Run("disabled", func(t *testing.T) {
		s := newTestServer(t, Options{})
		rec := do(t, s, http.MethodPost, "/simulate", body, map[string]string{"X-Simulate-Key": "k3y"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("wrong key", func(t *testing.T) {
		s := newTestServer(t, Options{SimulateKeyHash: string(hash)})
		rec := do(t, s, http.MethodPost, "/simulate", body, map[string]string{"X-Simulate-Key": "nope"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("runs then rate limits", func(t *testing.T) {
		s := newTestServer(t, Options{SimulateKeyHash: string(hash), SimulateRPS: 0.001})
		hdr := map[string]string{"X-Simulate-Key": "k3y"}

		rec := do(t, s, http.MethodPost, "/simulate", body, hdr)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		rep := decode[struct {
			Games  int            `json:"games"`
			States map[string]int `json:"states"`
		}](t, rec)
		assert.Equal(t, 20, rep.Games)
		assert.Equal(t, 20, rep.States["solved"])

		rec = do(t, s, http.MethodPost, "/simulate", body, hdr)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	})

	t.Run("game cap", func(t *testing.T) {
		s := newTestServer(t, Options{SimulateKeyHash: string(hash), SimulateMaxGames: 10})
		rec := do(t, s, http.MethodPost, "/simulate", body, map[string]string{"X-Simulate-Key": "k3y"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHashKey(t *testing.T) {
	h, err := HashKey("secret")
	require.NoError(t, err)
	assert.True(t, checkKey(h, "secret"))
	assert.False(t, checkKey(h, "other"))
}
