package game

// Score computes the feedback for guess as if reference were the secret.
//
// Pass 1 counts exact matches and consumes those positions on both sides.
// Pass 2 walks the remaining guess positions in order; each one consumes the
// first unconsumed reference position holding the same color, if any, and
// counts a color match.
//
// Consumption is tracked in private flag arrays, so neither input is modified.
// Both codes must have the same length, at most MaxCodeLength.
func Score(guess, reference Code) Feedback {
	var usedG, usedR [MaxCodeLength]bool
	var fb Feedback

	n := len(guess)
	for i := 0; i < n; i++ {
		if guess[i] == reference[i] {
			fb.Exact++
			usedG[i], usedR[i] = true, true
		}
	}

	for i := 0; i < n; i++ {
		if usedG[i] {
			continue
		}
		for j := 0; j < n; j++ {
			if !usedR[j] && reference[j] == guess[i] {
				fb.Color++
				usedR[j] = true
				break
			}
		}
	}
	return fb
}
