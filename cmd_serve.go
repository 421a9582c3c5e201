package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/mastermind/internal/config"
	"github.com/robalobadob/mastermind/internal/game"
	"github.com/robalobadob/mastermind/internal/httpserver"
	"github.com/robalobadob/mastermind/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve the solver over HTTP: self-play (POST /solve), interactive sessions
(POST /sessions, POST /sessions/{id}/feedback), batch simulation (POST /simulate)
and Prometheus metrics (GET /metrics).

Examples:
  mastermind serve --port 8080
  STORE_BACKEND=sqlite DB_DSN=./data/sessions.db mastermind serve`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("port", "", "listen port (env PORT)")
	serveCmd.Flags().String("store", "", "session store: memory | sqlite (env STORE_BACKEND)")
	serveCmd.Flags().String("db", "", "sqlite DSN (env DB_DSN)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, pal, engine, err := setup(cmd, false)
	if err != nil {
		return err
	}
	if v, _ := cmd.Flags().GetString("port"); v != "" {
		cfg.Port = v
	}
	if v, _ := cmd.Flags().GetString("store"); v != "" {
		cfg.StoreBackend = v
	}
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		cfg.DBDSN = v
	}
	if cfg.SessionSecret == config.DevSessionSecret {
		log.Warn().Msg("SESSION_SECRET not set; using development secret")
	}

	st, err := openStore(cmd.Context(), cfg, engine)
	if err != nil {
		return err
	}

	srv := httpserver.New(engine, pal, st, httpserver.Options{
		SessionSecret:    cfg.SessionSecret,
		SessionTTL:       cfg.SessionTTL,
		ClientOrigin:     cfg.ClientOrigin,
		SimulateKeyHash:  cfg.SimulateKeyHash,
		SimulateRPS:      cfg.SimulateRPS,
		SimulateMaxGames: cfg.SimulateMaxGames,
	})
	log.Info().
		Str("port", cfg.Port).
		Int("colors", pal.Len()).
		Int("codeLength", engine.CodeLength()).
		Int("universe", len(engine.Universe())).
		Str("store", cfg.StoreBackend).
		Msg("starting mastermind server")
	return srv.Start(":" + cfg.Port)
}

func openStore(ctx context.Context, cfg config.Config, engine *game.Engine) (store.Store, error) {
	switch cfg.StoreBackend {
	case "memory":
		return store.NewMemoryStore(), nil
	case "sqlite":
		db, err := store.OpenDB(cfg.DBDSN)
		if err != nil {
			return nil, err
		}
		return store.NewSQLStore(ctx, db, engine)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
