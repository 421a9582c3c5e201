package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/robalobadob/mastermind/internal/game"
	"github.com/robalobadob/mastermind/internal/palette"
)

var errAborted = errors.New("aborted by user")

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Think of a secret and let the solver guess it",
	Long: `Interactive mode: keep a secret code to yourself. For every guess the solver
proposes, type the feedback as two numbers:

  <exact> <color>

exact = pegs with the right color in the right position,
color = pegs with the right color in the wrong position.

Ctrl+C or Ctrl+D stops the game.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, pal, engine, err := setup(cmd, true)
		if err != nil {
			return err
		}

		rl, err := readline.NewEx(&readline.Config{
			Prompt:          color.CyanString("feedback> "),
			InterruptPrompt: "^C",
			EOFPrompt:       "exit",
		})
		if err != nil {
			return fmt.Errorf("init readline: %w", err)
		}
		defer rl.Close()
		out := rl.Stdout()

		fmt.Fprintf(out, "Colors: %s\n", legend(pal))
		fmt.Fprintf(out, "Code length %d, up to %d attempts. Think of a secret and answer \"<exact> <color>\".\n\n",
			engine.CodeLength(), engine.MaxAttempts())

		res, err := playGame(engine, pal, rl, out)
		fmt.Fprintln(out)
		if errors.Is(err, errAborted) {
			fmt.Fprintf(out, "Stopped after %d attempts.\n", res.Attempts)
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Result:   %s in %d attempts\n", stateLine(res.State), res.Attempts)
		if len(res.SearchSpaceHistory) > 0 {
			fmt.Fprintf(out, "Space:    %s\n", evolution(res.SearchSpaceHistory))
		}
		if res.State == game.Contradiction {
			fmt.Fprintln(out, "No code matches all the feedback given; one of the answers was wrong.")
		}
		return nil
	},
}

// lineReader is the part of *readline.Instance the game loop needs.
type lineReader interface {
	Readline() (string, error)
}

// playGame runs one session, reading feedback lines from in until the
// session ends. Bad lines are reported and read again. After every round it
// prints how many candidate codes remain.
func playGame(engine *game.Engine, pal *palette.Palette, in lineReader, out io.Writer) (game.Result, error) {
	sess := engine.NewSession()
	for !sess.State().Terminal() {
		guess, err := sess.Next()
		if err != nil {
			return sess.Result(), err
		}
		fmt.Fprintf(out, "Attempt %d: %s\n", sess.Attempts(), pegs(pal, guess))

		fb, err := readFeedback(in, out, engine.CodeLength())
		if err != nil {
			return sess.Result(), err
		}
		st, err := sess.Apply(fb)
		if err != nil {
			return sess.Result(), err
		}
		if st != game.Solved {
			fmt.Fprintf(out, "  %d candidates left\n", sess.Remaining())
		}
	}
	return sess.Result(), nil
}

func readFeedback(in lineReader, out io.Writer, length int) (game.Feedback, error) {
	for {
		line, err := in.Readline()
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			return game.Feedback{}, errAborted
		}
		if err != nil {
			return game.Feedback{}, err
		}
		fb, err := parseFeedback(line, length)
		if err != nil {
			fmt.Fprintln(out, color.RedString("  %v", err))
			continue
		}
		return fb, nil
	}
}

// parseFeedback reads "<exact> <color>" (space or comma separated) and checks
// it against the code length.
func parseFeedback(line string, length int) (game.Feedback, error) {
	fields := strings.FieldsFunc(line, func(r rune) bool { return r == ' ' || r == ',' || r == '\t' })
	if len(fields) != 2 {
		return game.Feedback{}, fmt.Errorf("expected two numbers, e.g. \"1 2\"")
	}
	exact, err := strconv.Atoi(fields[0])
	if err != nil {
		return game.Feedback{}, fmt.Errorf("exact: %q is not a number", fields[0])
	}
	col, err := strconv.Atoi(fields[1])
	if err != nil {
		return game.Feedback{}, fmt.Errorf("color: %q is not a number", fields[1])
	}
	fb := game.Feedback{Exact: exact, Color: col}
	if err := fb.Validate(length); err != nil {
		return game.Feedback{}, err
	}
	return fb, nil
}
