// internal/store/sqlite.go
//
// SQLite-backed Store for solve sessions.
// Responsibilities:
//   - Opening SQLite with safe defaults (WAL, busy timeout, foreign keys).
//   - Applying the embedded migrations (idempotent, recorded in _migrations).
//   - Persisting sessions as a replay log: the played rounds as JSON plus the
//     state. Loading a session replays the rounds on the engine, which is
//     deterministic, and proposes the next guess again for active sessions.
//
// Sessions are kept between rounds with their next guess proposed, which is
// how the HTTP layer always leaves them.
//
// The sessions table is emptied on open: sessions never survive a restart.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/mastermind/assets"
	"github.com/robalobadob/mastermind/internal/game"
)

// OpenDB opens (and creates if missing) a SQLite database.
//
//   - Ensures the parent directory exists for relative paths (e.g. ./data/app.db).
//   - Configures busy timeout and WAL journaling, enforces foreign keys.
//   - Uses a single connection, so ":memory:" databases are shared by all queries.
func OpenDB(dsn string) (*sql.DB, error) {
	if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		dir := filepath.Dir(dsn)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("mkdir %s: %w", dir, err)
			}
		}
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	db, err := sql.Open("sqlite3", dsn+sep+"_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	return db, nil
}

// Migrate applies the embedded SQL migrations.
//
//   - Uses a _migrations table to track applied files.
//   - Executes each script in lexical order inside its own transaction.
//   - Skips scripts already applied.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}
	migrations, err := assets.Migrations()
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}

	for _, m := range migrations {
		var done int
		err := db.QueryRow(`SELECT 1 FROM _migrations WHERE name=?`, m.Name).Scan(&done)
		if err == nil {
			log.Debug().Str("migration", m.Name).Msg("already applied")
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query _migrations: %w", err)
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(m.SQL); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", m.Name, err)
		}
		if _, err := tx.Exec(`INSERT INTO _migrations(name) VALUES (?)`, m.Name); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", m.Name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", m.Name, err)
		}
		log.Info().Str("migration", m.Name).Msg("applied")
	}
	return nil
}

// tsLayout is fixed-width so stored timestamps compare correctly as text.
const tsLayout = "2006-01-02T15:04:05.000000Z07:00"

type sqlStore struct {
	db     *sql.DB
	engine *game.Engine
	now    func() time.Time
}

// NewSQLStore migrates db, clears leftover sessions and returns a Store that
// rebuilds sessions on engine.
func NewSQLStore(ctx context.Context, db *sql.DB, engine *game.Engine) (Store, error) {
	if err := Migrate(db); err != nil {
		return nil, err
	}
	res, err := db.ExecContext(ctx, `DELETE FROM sessions`)
	if err != nil {
		return nil, fmt.Errorf("clear sessions: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		log.Info().Int64("sessions", n).Msg("discarded sessions from previous run")
	}
	return &sqlStore{db: db, engine: engine, now: time.Now}, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *sqlStore) Save(ctx context.Context, sess *game.Session) error {
	return s.save(ctx, s.db, sess)
}

func (s *sqlStore) save(ctx context.Context, db execer, sess *game.Session) error {
	rounds, err := json.Marshal(sess.Rounds())
	if err != nil {
		return fmt.Errorf("encode rounds: %w", err)
	}
	now := s.now().UTC().Format(tsLayout)
	_, err = db.ExecContext(ctx, `
        INSERT INTO sessions (id, rounds, state, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET rounds=excluded.rounds, state=excluded.state, updated_at=excluded.updated_at`,
		sess.ID, string(rounds), sess.State().String(), now, now,
	)
	if err != nil {
		return fmt.Errorf("save session %s: %w", sess.ID, err)
	}
	return nil
}

type rowQueryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *sqlStore) Get(ctx context.Context, id string) (*game.Session, error) {
	return s.load(ctx, s.db, id)
}

func (s *sqlStore) load(ctx context.Context, db rowQueryer, id string) (*game.Session, error) {
	var raw, state string
	err := db.QueryRowContext(ctx, `SELECT rounds, state FROM sessions WHERE id=?`, id).Scan(&raw, &state)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}

	var rounds []game.Round
	if err := json.Unmarshal([]byte(raw), &rounds); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	sess, err := s.engine.Restore(rounds)
	if err != nil {
		return nil, fmt.Errorf("restore session %s: %w", id, err)
	}
	sess.ID = id
	if want, err := game.ParseState(state); err == nil && want != sess.State() {
		log.Warn().Str("sessionId", id).Str("stored", state).Stringer("replayed", sess.State()).Msg("session state mismatch")
	}
	if !sess.State().Terminal() {
		if _, err := sess.Next(); err != nil {
			return nil, err
		}
	}
	return sess, nil
}

func (s *sqlStore) Update(ctx context.Context, id string, fn func(*game.Session) error) (*game.Session, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	sess, err := s.load(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(sess); err != nil {
		return sess, err
	}
	if err := s.save(ctx, tx, sess); err != nil {
		return sess, err
	}
	if err := tx.Commit(); err != nil {
		return sess, fmt.Errorf("commit session %s: %w", id, err)
	}
	return sess, nil
}

func (s *sqlStore) Delete(ctx context.Context, id string) (bool, error) {
	var state string
	err := s.db.QueryRowContext(ctx, `DELETE FROM sessions WHERE id=? RETURNING state`, id).Scan(&state)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("delete session %s: %w", id, err)
	}
	return state == game.Active.String(), nil
}

func (s *sqlStore) Sweep(ctx context.Context, before time.Time) (SweepStats, error) {
	var st SweepStats
	rows, err := s.db.QueryContext(ctx, `DELETE FROM sessions WHERE updated_at < ? RETURNING state`,
		before.UTC().Format(tsLayout))
	if err != nil {
		return st, err
	}
	defer rows.Close()
	for rows.Next() {
		var state string
		if err := rows.Scan(&state); err != nil {
			return st, err
		}
		st.Removed++
		if state == game.Active.String() {
			st.Active++
		}
	}
	return st, rows.Err()
}
