package game

// Histogram counts candidates per hypothetical feedback, indexed by
// exact*(length+1)+color. Only cells with exact+color <= length are valid.
type Histogram struct {
	length int
	cells  []int
}

// NewHistogram returns an empty table for codes of the given length.
func NewHistogram(length int) *Histogram {
	return &Histogram{length: length, cells: make([]int, (length+1)*(length+1))}
}

func (h *Histogram) reset() {
	for i := range h.cells {
		h.cells[i] = 0
	}
}

func (h *Histogram) add(fb Feedback) { h.cells[fb.Exact*(h.length+1)+fb.Color]++ }

// Count returns the bucket size for fb.
func (h *Histogram) Count(fb Feedback) int { return h.cells[fb.Exact*(h.length+1)+fb.Color] }

// Min returns the smallest bucket over every syntactically valid feedback
// pair, including pairs no code can actually produce such as (length-1, 1).
func (h *Histogram) Min() int {
	best := -1
	for b := 0; b <= h.length; b++ {
		for w := 0; b+w <= h.length; w++ {
			if n := h.cells[b*(h.length+1)+w]; best < 0 || n < best {
				best = n
			}
		}
	}
	if best < 0 {
		return 0
	}
	return best
}

// Fill buckets every candidate by the feedback guess would receive against it.
func (h *Histogram) Fill(guess Code, candidates []Code) {
	h.reset()
	for _, c := range candidates {
		h.add(Score(guess, c))
	}
}

// MinimaxScore is the smallest cell of guess's feedback histogram over
// candidates. Cells no candidate falls into count as 0.
func MinimaxScore(guess Code, candidates []Code, length int) int {
	h := NewHistogram(length)
	h.Fill(guess, candidates)
	return h.Min()
}

// Opening returns the fixed first guess: the first half of the positions in
// the palette's first color, the rest in the second. For the classic 4x6 game
// that is (c0, c0, c1, c1). It is fixed, never computed.
func Opening(length, colors int) Code {
	code := make(Code, length)
	second := Color(0)
	if colors > 1 {
		second = 1
	}
	for i := length / 2; i < length; i++ {
		code[i] = second
	}
	return code
}

// Select chooses the next guess.
//
//  1. No guesses played yet: the fixed Opening.
//  2. A single candidate left: that candidate.
//  3. Otherwise the candidate with the highest MinimaxScore; ties go to the
//     first one encountered.
//  4. If no candidate could be scored, scan the universe skipping candidates
//     and already-played guesses with the same scoring.
//
// Step 4 only triggers on an empty candidate set. Select has no side effects.
func Select(candidates, universe, history []Code, length, colors int) Code {
	if len(history) == 0 {
		return Opening(length, colors)
	}
	if len(candidates) == 1 {
		return candidates[0]
	}

	h := NewHistogram(length)
	bestScore := -1
	var best Code
	for _, c := range candidates {
		h.Fill(c, candidates)
		if score := h.Min(); score > bestScore {
			bestScore, best = score, c
		}
	}
	if best != nil {
		return best
	}

	inCandidates := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		inCandidates[c.Key()] = struct{}{}
	}
	played := make(map[string]struct{}, len(history))
	for _, g := range history {
		played[g.Key()] = struct{}{}
	}
	for _, c := range universe {
		if _, ok := inCandidates[c.Key()]; ok {
			continue
		}
		if _, ok := played[c.Key()]; ok {
			continue
		}
		h.Fill(c, candidates)
		if score := h.Min(); score > bestScore {
			bestScore, best = score, c
		}
	}
	if best != nil {
		return best
	}
	if len(candidates) > 0 {
		return candidates[0]
	}
	return universe[0]
}
