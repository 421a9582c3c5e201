// internal/game/types.go
//
// Core type definitions for the Mastermind solving engine.
// Defines:
//   - Color: index of a peg color within the engine palette.
//   - Code: an ordered, fixed-length sequence of colors.
//   - Feedback: (exact, color) score pair for a guess.
//   - State: solve-session lifecycle (active → solved/exhausted/contradiction).
//   - Result: structured outcome returned for every terminal state.

package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidConfiguration is returned by NewEngine for unusable palette/length combinations.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInvalidFeedback is returned by Feedback.Validate for out-of-range pairs.
	ErrInvalidFeedback = errors.New("invalid feedback")

	// ErrSessionFinished is returned when a terminal session is asked to keep playing.
	ErrSessionFinished = errors.New("session finished")

	// ErrNoPendingGuess is returned by Apply when Next has not proposed a guess yet.
	ErrNoPendingGuess = errors.New("no pending guess")
)

// Color is the index of a peg color within the engine palette.
type Color uint8

// Code is an ordered sequence of colors. Codes handed out by the engine are
// shared with its universe and must not be modified.
type Code []Color

// Key returns a comparable form of the code for map lookups.
func (c Code) Key() string {
	b := make([]byte, len(c))
	for i, x := range c {
		b[i] = byte(x)
	}
	return string(b)
}

// Equal reports whether both codes hold the same colors in the same order.
func (c Code) Equal(o Code) bool {
	if len(c) != len(o) {
		return false
	}
	for i := range c {
		if c[i] != o[i] {
			return false
		}
	}
	return true
}

// Clone returns a private copy of the code.
func (c Code) Clone() Code {
	out := make(Code, len(c))
	copy(out, c)
	return out
}

// String renders the code as color indexes, e.g. "[0 0 1 1]".
func (c Code) String() string {
	parts := make([]string, len(c))
	for i, x := range c {
		parts[i] = fmt.Sprint(int(x))
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// MarshalJSON encodes the code as an array of color indexes
// (a plain []uint8 would otherwise be base64 encoded).
func (c Code) MarshalJSON() ([]byte, error) {
	ints := make([]int, len(c))
	for i, x := range c {
		ints[i] = int(x)
	}
	return json.Marshal(ints)
}

// UnmarshalJSON decodes an array of color indexes.
func (c *Code) UnmarshalJSON(b []byte) error {
	var ints []int
	if err := json.Unmarshal(b, &ints); err != nil {
		return err
	}
	out := make(Code, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			return fmt.Errorf("color index %d out of range", v)
		}
		out[i] = Color(v)
	}
	*c = out
	return nil
}

// Feedback is the score of a guess against a reference code.
//   - Exact: black pegs, same color in the same position.
//   - Color: white pegs, right color in another position once exact matches are removed.
type Feedback struct {
	Exact int `json:"exact"`
	Color int `json:"color"`
}

// Validate checks the feedback invariant for codes of the given length:
// both counts non-negative, Exact <= length and Exact+Color <= length.
func (f Feedback) Validate(length int) error {
	if f.Exact < 0 || f.Color < 0 {
		return fmt.Errorf("%w: counts must be non-negative", ErrInvalidFeedback)
	}
	if f.Exact > length || f.Exact+f.Color > length {
		return fmt.Errorf("%w: exact+color cannot exceed %d", ErrInvalidFeedback, length)
	}
	return nil
}

func (f Feedback) String() string {
	return fmt.Sprintf("(%d, %d)", f.Exact, f.Color)
}

// State is the lifecycle of a solve session.
type State int

const (
	Active State = iota
	Solved
	Exhausted
	Contradiction
)

var stateNames = [...]string{"active", "solved", "exhausted", "contradiction"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// Terminal reports whether no further rounds may be played.
func (s State) Terminal() bool { return s != Active }

// MarshalJSON encodes the state as its lower-case name.
func (s State) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

// UnmarshalJSON accepts the lower-case names produced by MarshalJSON.
func (s *State) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}
	st, err := ParseState(name)
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// ParseState maps a state name back to its value.
func ParseState(name string) (State, error) {
	for i, n := range stateNames {
		if n == name {
			return State(i), nil
		}
	}
	return Active, fmt.Errorf("unknown state %q", name)
}

// Round is one played guess together with the feedback it received.
type Round struct {
	Guess    Code     `json:"guess"`
	Feedback Feedback `json:"feedback"`
}

// Result is the structured outcome of a solve session.
type Result struct {
	Attempts           int    `json:"attempts"`
	State              State  `json:"state"`
	SearchSpaceHistory []int  `json:"searchSpaceHistory"`
	Guesses            []Code `json:"guesses"`
}
