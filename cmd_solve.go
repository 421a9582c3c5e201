package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/robalobadob/mastermind/internal/game"
)

var solveCmd = &cobra.Command{
	Use:   "solve <code>",
	Short: "Let the solver crack a known secret",
	Long: `Self-play: the solver plays against the given secret, computing feedback itself,
and prints every round.

The code is either abbreviation letters or color names:
  mastermind solve ARBN
  mastermind solve "azul rojo blanco negro"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, pal, engine, err := setup(cmd, true)
		if err != nil {
			return err
		}
		secret, ok := pal.ParseCode(args[0], engine.CodeLength())
		if !ok {
			return fmt.Errorf("invalid code %q: expected %d colors from: %s", args[0], engine.CodeLength(), legend(pal))
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Secret: %s\n\n", pegs(pal, secret))

		start := time.Now()
		res := engine.SolveAgainstSecret(secret)
		elapsed := time.Since(start)

		for i, g := range res.Guesses {
			fb := game.Score(g, secret)
			remaining := ""
			if i < len(res.SearchSpaceHistory) {
				remaining = fmt.Sprintf("  candidates before: %d", res.SearchSpaceHistory[i])
			}
			fmt.Fprintf(out, "Attempt %2d: %s  feedback %s%s\n", i+1, pegs(pal, g), fb, remaining)
		}

		fmt.Fprintln(out)
		fmt.Fprintf(out, "Result:   %s in %d attempts\n", stateLine(res.State), res.Attempts)
		fmt.Fprintf(out, "Time:     %s\n", elapsed.Round(time.Microsecond))
		if len(res.SearchSpaceHistory) > 0 {
			fmt.Fprintf(out, "Space:    %s\n", evolution(res.SearchSpaceHistory))
		}
		if res.State == game.Solved {
			color.New(color.FgGreen).Fprintln(out, "Cracked.")
		}
		return nil
	},
}
