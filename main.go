// main.go
//
// Entry point for the Mastermind codebreaker.
// Responsibilities:
//   - Build the cobra command tree (serve, solve, play, simulate, hash-key).
//   - Resolve configuration (env / .env, then command flags) and build the
//     palette + engine shared by every command.
//
// Running the bare binary starts the HTTP server.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/robalobadob/mastermind/internal/config"
	"github.com/robalobadob/mastermind/internal/game"
	"github.com/robalobadob/mastermind/internal/palette"
)

var rootCmd = &cobra.Command{
	Use:   "mastermind",
	Short: "Minimax Mastermind codebreaker",
	Long: `Mastermind codebreaker: proposes guesses, prunes the candidate set with the
feedback it receives and picks each next guess by minimax.

Running without a subcommand starts the HTTP server (same as "mastermind serve").`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("palette", "", "YAML palette file (env PALETTE_FILE; embedded default when empty)")
	pf.Int("length", 0, "pegs per code (env CODE_LENGTH)")
	pf.Int("max-attempts", 0, "attempt limit per session (env MAX_ATTEMPTS)")
	pf.String("log-level", "", "zerolog level (env LOG_LEVEL)")

	rootCmd.AddCommand(serveCmd, solveCmd, playCmd, simulateCmd, hashKeyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads config, applies the persistent flags, configures logging and
// builds the palette and engine. Terminal commands log to the console unless
// LOG_FORMAT says otherwise.
func setup(cmd *cobra.Command, terminal bool) (config.Config, *palette.Palette, *game.Engine, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, nil, nil, err
	}
	flags := cmd.Flags()
	if v, _ := flags.GetString("palette"); v != "" {
		cfg.PaletteFile = v
	}
	if v, _ := flags.GetInt("length"); v > 0 {
		cfg.CodeLength = v
	}
	if v, _ := flags.GetInt("max-attempts"); v > 0 {
		cfg.MaxAttempts = v
	}
	if v, _ := flags.GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if terminal && os.Getenv("LOG_FORMAT") == "" {
		cfg.LogFormat = "console"
	}
	cfg.SetupLogging()

	pal, err := palette.Load(cfg.PaletteFile)
	if err != nil {
		return cfg, nil, nil, err
	}
	engine, err := game.NewEngine(pal.Names(), cfg.CodeLength, game.WithMaxAttempts(cfg.MaxAttempts))
	if err != nil {
		return cfg, nil, nil, err
	}
	return cfg, pal, engine, nil
}
