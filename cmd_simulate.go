package main

import (
	"github.com/spf13/cobra"

	"github.com/robalobadob/mastermind/internal/simulate"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Play many random secrets and report statistics",
	Long: `Batch self-play: plays random secrets (or every code with --exhaustive) and
prints attempt statistics, a histogram and the average search-space shrinkage.

Examples:
  mastermind simulate                   # 200 random games
  mastermind simulate --games 1000 --seed 42
  mastermind simulate --exhaustive`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, engine, err := setup(cmd, true)
		if err != nil {
			return err
		}
		games, _ := cmd.Flags().GetInt("games")
		seed, _ := cmd.Flags().GetInt64("seed")
		workers, _ := cmd.Flags().GetInt("workers")
		exhaustive, _ := cmd.Flags().GetBool("exhaustive")

		rep, err := simulate.Run(cmd.Context(), engine, simulate.Options{
			Games:      games,
			Seed:       seed,
			Workers:    workers,
			Exhaustive: exhaustive,
		})
		if err != nil {
			return err
		}
		return rep.Render(cmd.OutOrStdout())
	},
}

func init() {
	simulateCmd.Flags().Int("games", 200, "number of random games")
	simulateCmd.Flags().Int64("seed", 1, "seed for secret generation")
	simulateCmd.Flags().Int("workers", 0, "concurrent games (default GOMAXPROCS)")
	simulateCmd.Flags().Bool("exhaustive", false, "play every possible secret once")
}
