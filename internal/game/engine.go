// internal/game/engine.go
//
// Mastermind codebreaker engine.
// Responsibilities:
//   - Validate the palette/length configuration and build the code universe once.
//   - Start solve sessions (each with its own freshly reset search space).
//   - Run fully automatic sessions against a known secret.
//   - Run interactive sessions fed by a caller-supplied feedback function.
//
// Notes:
//   - An Engine is read-only after construction and may back many sessions,
//     including concurrently; a Session is owned by a single caller.
//   - The engine never parses free text; see the palette package for that.
package game

import (
	"fmt"
)

const (
	// DefaultMaxAttempts bounds the number of rounds of a session.
	DefaultMaxAttempts = 10

	// MaxCodeLength is the longest supported code.
	MaxCodeLength = 8

	// MaxColors is the largest supported palette.
	MaxColors = 16

	// MaxUniverse bounds colors^length.
	MaxUniverse = 1 << 20
)

// Engine holds the immutable configuration and the code universe.
type Engine struct {
	colors      []string
	length      int
	maxAttempts int
	universe    []Code
}

// Option customizes an Engine.
type Option func(*Engine)

// WithMaxAttempts overrides DefaultMaxAttempts. Values < 1 are ignored.
func WithMaxAttempts(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxAttempts = n
		}
	}
}

// NewEngine validates the configuration and generates the universe of all
// colors^codeLength codes in lexicographic order (last position fastest).
func NewEngine(colors []string, codeLength int, opts ...Option) (*Engine, error) {
	if codeLength <= 0 {
		return nil, fmt.Errorf("%w: code length must be positive, got %d", ErrInvalidConfiguration, codeLength)
	}
	if codeLength > MaxCodeLength {
		return nil, fmt.Errorf("%w: code length %d exceeds %d", ErrInvalidConfiguration, codeLength, MaxCodeLength)
	}
	if len(colors) == 0 {
		return nil, fmt.Errorf("%w: empty color palette", ErrInvalidConfiguration)
	}
	if len(colors) > MaxColors {
		return nil, fmt.Errorf("%w: palette of %d colors exceeds %d", ErrInvalidConfiguration, len(colors), MaxColors)
	}
	seen := make(map[string]struct{}, len(colors))
	for _, c := range colors {
		if c == "" {
			return nil, fmt.Errorf("%w: empty color name", ErrInvalidConfiguration)
		}
		if _, dup := seen[c]; dup {
			return nil, fmt.Errorf("%w: duplicate color %q", ErrInvalidConfiguration, c)
		}
		seen[c] = struct{}{}
	}
	size := 1
	for i := 0; i < codeLength; i++ {
		size *= len(colors)
		if size > MaxUniverse {
			return nil, fmt.Errorf("%w: %d^%d codes exceed %d", ErrInvalidConfiguration, len(colors), codeLength, MaxUniverse)
		}
	}

	e := &Engine{
		colors:      append([]string(nil), colors...),
		length:      codeLength,
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.universe = buildUniverse(len(colors), codeLength, size)
	return e, nil
}

// buildUniverse enumerates the Cartesian product colors^length.
// All codes share one backing array.
func buildUniverse(colors, length, size int) []Code {
	backing := make([]Color, size*length)
	out := make([]Code, size)
	for i := 0; i < size; i++ {
		code := Code(backing[i*length : (i+1)*length : (i+1)*length])
		rem := i
		for pos := length - 1; pos >= 0; pos-- {
			code[pos] = Color(rem % colors)
			rem /= colors
		}
		out[i] = code
	}
	return out
}

// Colors returns the palette names in index order.
func (e *Engine) Colors() []string { return append([]string(nil), e.colors...) }

// CodeLength is the number of positions per code.
func (e *Engine) CodeLength() int { return e.length }

// MaxAttempts is the per-session round limit.
func (e *Engine) MaxAttempts() int { return e.maxAttempts }

// Universe returns every possible code. Callers must not modify it.
func (e *Engine) Universe() []Code { return e.universe }

// Valid reports whether code has the engine's length and only palette colors.
func (e *Engine) Valid(code Code) bool {
	if len(code) != e.length {
		return false
	}
	for _, c := range code {
		if int(c) >= len(e.colors) {
			return false
		}
	}
	return true
}

// SolveAgainstSecret plays a full self-play session, computing feedback with
// Score against secret. The secret must satisfy Valid.
func (e *Engine) SolveAgainstSecret(secret Code) Result {
	s := e.NewSession()
	for !s.State().Terminal() {
		guess, _ := s.Next()
		_, _ = s.Apply(Score(guess, secret))
	}
	return s.Result()
}

// FeedbackFunc supplies the feedback for a proposed guess. It may block, for
// example on interactive input. Validating the returned value (and retrying
// on bad input) is the provider's responsibility.
type FeedbackFunc func(guess Code) (Feedback, error)

// SolveInteractive plays a session whose feedback comes from fn. If fn
// returns an error the session stops and the partial result is returned with
// that error.
func (e *Engine) SolveInteractive(fn FeedbackFunc) (Result, error) {
	s := e.NewSession()
	for !s.State().Terminal() {
		guess, err := s.Next()
		if err != nil {
			return s.Result(), err
		}
		fb, err := fn(guess)
		if err != nil {
			return s.Result(), fmt.Errorf("feedback for attempt %d: %w", s.Attempts(), err)
		}
		if _, err := s.Apply(fb); err != nil {
			return s.Result(), err
		}
	}
	return s.Result(), nil
}

// Restore rebuilds a session by replaying previously played rounds. Because
// selection is deterministic, the replayed guesses must match the recorded
// ones; a mismatch means the rounds came from a different configuration.
func (e *Engine) Restore(rounds []Round) (*Session, error) {
	s := e.NewSession()
	for i, r := range rounds {
		guess, err := s.Next()
		if err != nil {
			return nil, fmt.Errorf("replay round %d: %w", i+1, err)
		}
		if !guess.Equal(r.Guess) {
			return nil, fmt.Errorf("replay round %d: expected guess %v, engine proposed %v", i+1, r.Guess, guess)
		}
		if _, err := s.Apply(r.Feedback); err != nil {
			return nil, fmt.Errorf("replay round %d: %w", i+1, err)
		}
	}
	return s, nil
}
