// internal/config/config.go
//
// Process configuration, read from the environment after loading an optional
// .env file (development convenience).
//
// Environment variables:
//
//	PORT                 HTTP port (5175)
//	LOG_LEVEL            zerolog level name (info)
//	LOG_FORMAT           json | console (json)
//	PALETTE_FILE         YAML palette; embedded default when unset
//	CODE_LENGTH          pegs per code (4)
//	MAX_ATTEMPTS         rounds per session (10)
//	STORE_BACKEND        memory | sqlite (memory)
//	DB_DSN               sqlite path (:memory:)
//	SESSION_SECRET       HMAC key for session tokens
//	SESSION_TTL_MINUTES  session token lifetime (60)
//	CLIENT_ORIGIN        CORS origin (http://localhost:5173)
//	SIMULATE_KEY_HASH    bcrypt hash of the /simulate key; endpoint disabled when unset
//	SIMULATE_RPS         /simulate requests per second (1)
//	SIMULATE_MAX_GAMES   per-request game cap for /simulate (2000)

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config is the resolved process configuration.
type Config struct {
	Port             string
	LogLevel         string
	LogFormat        string
	PaletteFile      string
	CodeLength       int
	MaxAttempts      int
	StoreBackend     string
	DBDSN            string
	SessionSecret    string
	SessionTTL       time.Duration
	ClientOrigin     string
	SimulateKeyHash  string
	SimulateRPS      float64
	SimulateMaxGames int
}

// DevSessionSecret is used when SESSION_SECRET is unset.
const DevSessionSecret = "dev_secret_change_me"

// Load reads .env (if present) and the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	c := Config{
		Port:            GetEnv("PORT", "5175"),
		LogLevel:        GetEnv("LOG_LEVEL", "info"),
		LogFormat:       strings.ToLower(GetEnv("LOG_FORMAT", "json")),
		PaletteFile:     os.Getenv("PALETTE_FILE"),
		StoreBackend:    strings.ToLower(GetEnv("STORE_BACKEND", "memory")),
		DBDSN:           GetEnv("DB_DSN", ":memory:"),
		SessionSecret:   GetEnv("SESSION_SECRET", DevSessionSecret),
		ClientOrigin:    GetEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		SimulateKeyHash: os.Getenv("SIMULATE_KEY_HASH"),
	}

	var err error
	if c.CodeLength, err = envInt("CODE_LENGTH", 4); err != nil {
		return c, err
	}
	if c.MaxAttempts, err = envInt("MAX_ATTEMPTS", 10); err != nil {
		return c, err
	}
	ttl, err := envInt("SESSION_TTL_MINUTES", 60)
	if err != nil {
		return c, err
	}
	c.SessionTTL = time.Duration(ttl) * time.Minute
	if c.SimulateMaxGames, err = envInt("SIMULATE_MAX_GAMES", 2000); err != nil {
		return c, err
	}
	if v := os.Getenv("SIMULATE_RPS"); v != "" {
		if c.SimulateRPS, err = strconv.ParseFloat(v, 64); err != nil {
			return c, fmt.Errorf("SIMULATE_RPS: %w", err)
		}
	} else {
		c.SimulateRPS = 1
	}

	switch c.StoreBackend {
	case "memory", "sqlite":
	default:
		return c, fmt.Errorf("STORE_BACKEND: unknown backend %q", c.StoreBackend)
	}
	return c, nil
}

// SetupLogging applies LOG_LEVEL/LOG_FORMAT to the global zerolog logger.
func (c Config) SetupLogging() {
	if lvl, err := zerolog.ParseLevel(c.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if c.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

// GetEnv returns the value of k or def if unset/empty.
func GetEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return n, nil
}
