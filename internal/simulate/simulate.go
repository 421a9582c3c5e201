// internal/simulate/simulate.go
//
// Batch self-play harness.
// Plays many secrets through independent sessions of one engine and
// aggregates attempt counts and search-space shrinkage.
//
//   - Random mode draws Games secrets from a seeded generator up front, so a
//     report only depends on (engine, seed, games), not on scheduling.
//   - Exhaustive mode plays every code of the universe once.
//   - Games run on an errgroup pool bounded by Workers.

package simulate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"runtime"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/robalobadob/mastermind/internal/game"
	"github.com/robalobadob/mastermind/internal/metrics"
)

// Options controls a simulation run.
type Options struct {
	Games      int   // random games to play; ignored when Exhaustive
	Seed       int64 // seed for secret generation
	Workers    int   // concurrent sessions; defaults to GOMAXPROCS
	Exhaustive bool  // play every code of the universe
}

// Report aggregates a simulation run.
type Report struct {
	Games          int            `json:"games"`
	States         map[string]int `json:"states"`
	MeanAttempts   float64        `json:"meanAttempts"`
	MinAttempts    int            `json:"minAttempts"`
	MaxAttempts    int            `json:"maxAttempts"`
	Distribution   map[int]int    `json:"distribution"`
	InitialSpace   int            `json:"initialSpace"`
	AvgSearchSpace []float64      `json:"avgSearchSpace"`
}

// Run plays the configured games and returns the aggregate report.
func Run(ctx context.Context, engine *game.Engine, opts Options) (Report, error) {
	secrets, err := pickSecrets(engine, opts)
	if err != nil {
		return Report{}, err
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]game.Result, len(secrets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	step := len(secrets) / 10
	for i, secret := range secrets {
		i, secret := i, secret // per-iteration copy for go < 1.22 loop semantics
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = engine.SolveAgainstSecret(secret)
			metrics.ObserveResult(metrics.ModeSimulation, results[i])
			if step > 0 && (i+1)%step == 0 {
				log.Debug().Int("game", i+1).Int("of", len(secrets)).Msg("simulation progress")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	rep := Aggregate(results, len(engine.Universe()))
	log.Info().Int("games", rep.Games).Float64("mean", rep.MeanAttempts).Int("max", rep.MaxAttempts).Msg("simulation finished")
	return rep, nil
}

func pickSecrets(engine *game.Engine, opts Options) ([]game.Code, error) {
	if opts.Exhaustive {
		return engine.Universe(), nil
	}
	if opts.Games <= 0 {
		return nil, errors.New("games must be positive")
	}
	rng := rand.New(rand.NewSource(opts.Seed))
	colors := len(engine.Colors())
	secrets := make([]game.Code, opts.Games)
	for i := range secrets {
		code := make(game.Code, engine.CodeLength())
		for p := range code {
			code[p] = game.Color(rng.Intn(colors))
		}
		secrets[i] = code
	}
	return secrets, nil
}

// Aggregate builds a report from finished sessions. Search-space histories
// are padded to the longest one with their last value (a game solved on the
// first guess has no history and is padded with initialSpace) before the
// per-round average is taken.
func Aggregate(results []game.Result, initialSpace int) Report {
	rep := Report{
		Games:        len(results),
		States:       map[string]int{},
		Distribution: map[int]int{},
		InitialSpace: initialSpace,
	}
	if len(results) == 0 {
		return rep
	}

	width, total := 0, 0
	rep.MinAttempts = results[0].Attempts
	for _, r := range results {
		rep.States[r.State.String()]++
		rep.Distribution[r.Attempts]++
		total += r.Attempts
		if r.Attempts < rep.MinAttempts {
			rep.MinAttempts = r.Attempts
		}
		if r.Attempts > rep.MaxAttempts {
			rep.MaxAttempts = r.Attempts
		}
		if len(r.SearchSpaceHistory) > width {
			width = len(r.SearchSpaceHistory)
		}
	}
	rep.MeanAttempts = float64(total) / float64(len(results))

	sums := make([]float64, width)
	for _, r := range results {
		last := initialSpace
		for i := 0; i < width; i++ {
			if i < len(r.SearchSpaceHistory) {
				last = r.SearchSpaceHistory[i]
			}
			sums[i] += float64(last)
		}
	}
	rep.AvgSearchSpace = make([]float64, width)
	for i, s := range sums {
		rep.AvgSearchSpace[i] = s / float64(len(results))
	}
	return rep
}

// Render writes a text summary with an attempts histogram.
func (r Report) Render(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Games:                 %d\n", r.Games)
	fmt.Fprintf(&b, "Mean attempts:         %.2f\n", r.MeanAttempts)
	fmt.Fprintf(&b, "Min attempts:          %d\n", r.MinAttempts)
	fmt.Fprintf(&b, "Max attempts:          %d\n", r.MaxAttempts)
	fmt.Fprintf(&b, "Initial search space:  %d\n", r.InitialSpace)
	if n := len(r.AvgSearchSpace); n > 0 {
		fmt.Fprintf(&b, "Final avg space:       %.2f\n", r.AvgSearchSpace[n-1])
	}

	states := make([]string, 0, len(r.States))
	for s := range r.States {
		states = append(states, s)
	}
	sort.Strings(states)
	for _, s := range states {
		fmt.Fprintf(&b, "  %-14s %d\n", s+":", r.States[s])
	}

	b.WriteString("\nAttempts distribution:\n")
	peak := 0
	for _, n := range r.Distribution {
		if n > peak {
			peak = n
		}
	}
	for a := r.MinAttempts; a <= r.MaxAttempts && peak > 0; a++ {
		n := r.Distribution[a]
		bar := strings.Repeat("#", (n*40+peak-1)/peak)
		fmt.Fprintf(&b, "  %2d | %-40s %d\n", a, bar, n)
	}

	if len(r.AvgSearchSpace) > 0 {
		b.WriteString("\nAverage search space before each prune:\n")
		for i, v := range r.AvgSearchSpace {
			fmt.Fprintf(&b, "  attempt %2d: %9.2f\n", i+1, v)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
