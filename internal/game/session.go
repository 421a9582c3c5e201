package game

import "github.com/google/uuid"

// Session is one solve session: the Active → Solved/Exhausted/Contradiction
// state machine driving Select and Space round by round.
//
// Each round is Next (propose and record a guess) followed by Apply (consume
// its feedback). Sessions are not safe for concurrent use.
type Session struct {
	ID string // random UUID, assigned at creation

	engine  *Engine
	space   *Space
	state   State
	pending Code
	rounds  []Round
}

// NewSession starts a session with the candidate set reset to the universe.
func (e *Engine) NewSession() *Session {
	return &Session{ID: uuid.NewString(), engine: e, space: NewSpace(e.universe), state: Active}
}

// Next proposes the guess for the current round. Calling it again before
// Apply returns the same guess.
func (s *Session) Next() (Code, error) {
	if s.state.Terminal() {
		return nil, ErrSessionFinished
	}
	if s.pending != nil {
		return s.pending, nil
	}
	e := s.engine
	guess := Select(s.space.Candidates(), e.universe, s.space.Guesses(), e.length, len(e.colors))
	s.space.Record(guess)
	s.pending = guess
	return guess, nil
}

// Apply feeds the feedback for the pending guess and returns the new state.
//
//   - Exact equal to the code length: Solved.
//   - Otherwise prune; no candidates left: Contradiction.
//   - Otherwise the attempt limit reached: Exhausted, else still Active.
func (s *Session) Apply(fb Feedback) (State, error) {
	if s.state.Terminal() {
		return s.state, ErrSessionFinished
	}
	if s.pending == nil {
		return s.state, ErrNoPendingGuess
	}
	guess := s.pending
	s.pending = nil
	s.rounds = append(s.rounds, Round{Guess: guess, Feedback: fb})

	switch {
	case fb.Exact == s.engine.length:
		s.state = Solved
	default:
		s.space.Prune(guess, fb)
		if s.space.Empty() {
			s.state = Contradiction
		} else if s.Attempts() >= s.engine.maxAttempts {
			s.state = Exhausted
		}
	}
	return s.state, nil
}

// State is the current lifecycle state.
func (s *Session) State() State { return s.state }

// Attempts is the number of guesses proposed so far.
func (s *Session) Attempts() int { return len(s.space.Guesses()) }

// Pending returns the proposed guess awaiting feedback, or nil.
func (s *Session) Pending() Code { return s.pending }

// Remaining is the current candidate count.
func (s *Session) Remaining() int { return s.space.Len() }

// Space exposes the session's search space for inspection.
func (s *Session) Space() *Space { return s.space }

// Engine returns the engine backing the session.
func (s *Session) Engine() *Engine { return s.engine }

// Rounds returns the completed rounds in order.
func (s *Session) Rounds() []Round { return append([]Round(nil), s.rounds...) }

// Result snapshots the session outcome.
func (s *Session) Result() Result {
	return Result{
		Attempts:           s.Attempts(),
		State:              s.state,
		SearchSpaceHistory: append([]int{}, s.space.History()...),
		Guesses:            append([]Code(nil), s.space.Guesses()...),
	}
}
