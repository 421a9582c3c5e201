// internal/game/space.go
//
// Search-space bookkeeping for a single solve session.
// Responsibilities:
//   - Own the candidate set (codes still consistent with every feedback seen).
//   - Record the guesses played and the candidate-set size before each prune.
//   - Filter candidates with the consistency predicate built on Score.
//
// A Space belongs to exactly one session and is not safe for concurrent use.

package game

// Space holds the mutable per-session search state.
type Space struct {
	universe   []Code // shared, read-only
	candidates []Code
	guesses    []Code
	history    []int
}

// NewSpace returns a Space reset to the given universe.
func NewSpace(universe []Code) *Space {
	s := &Space{universe: universe}
	s.Reset()
	return s
}

// Reset restores the full universe and clears both histories.
func (s *Space) Reset() {
	s.candidates = make([]Code, len(s.universe))
	copy(s.candidates, s.universe)
	s.guesses = nil
	s.history = nil
}

// Consistent reports whether code could be the secret given that guess
// received fb. This is the only filter predicate used by Prune.
func Consistent(code, guess Code, fb Feedback) bool {
	return Score(guess, code) == fb
}

// Prune records the current candidate count and keeps only the candidates
// consistent with (guess, fb). It must be called once per real feedback
// observation. Contradictory feedback leaves the set empty; that is reported
// through Empty rather than as an error.
func (s *Space) Prune(guess Code, fb Feedback) {
	s.history = append(s.history, len(s.candidates))

	kept := make([]Code, 0, len(s.candidates))
	for _, c := range s.candidates {
		if Consistent(c, guess, fb) {
			kept = append(kept, c)
		}
	}
	s.candidates = kept
}

// Record appends a played guess to the guess history.
func (s *Space) Record(guess Code) { s.guesses = append(s.guesses, guess) }

// Candidates returns the current candidate set. Callers must not modify it.
func (s *Space) Candidates() []Code { return s.candidates }

// Universe returns the full code universe. Callers must not modify it.
func (s *Space) Universe() []Code { return s.universe }

// Guesses returns the guesses played so far, in order.
func (s *Space) Guesses() []Code { return s.guesses }

// History returns the candidate-set sizes recorded before each prune.
func (s *Space) History() []int { return s.history }

// Len is the number of remaining candidates.
func (s *Space) Len() int { return len(s.candidates) }

// Empty reports whether the accumulated feedback was contradictory.
func (s *Space) Empty() bool { return len(s.candidates) == 0 }

// Contains reports whether code is still a candidate.
func (s *Space) Contains(code Code) bool {
	for _, c := range s.candidates {
		if c.Equal(code) {
			return true
		}
	}
	return false
}
