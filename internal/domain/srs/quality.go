package srs

// DeriveQuality translates raw answer data into the 0..5 quality scale.
// Callers that only have correctness, a confidence estimate in [0,1], and
// timing relative to an expected answer time use this to feed Review.
//
// Incorrect answers still earn partial credit for recognition: high
// confidence suggests the concept is partially there, a blank guess does
// not. Correct answers are graded down as confidence drops or time runs
// past the expected duration.
//
// When expectedTime is zero or negative there is no timing baseline, so
// the timing condition is dropped rather than treated as failed: a
// confident correct answer without timing data grades 5, not 3.
func DeriveQuality(correct bool, confidence, timeSpent, expectedTime float64) int {
	if !correct {
		switch {
		case confidence > 0.5:
			return 2
		case confidence > 0.2:
			return 1
		default:
			return 0
		}
	}

	if expectedTime <= 0 {
		// No timing baseline; grade on confidence alone.
		if confidence >= 0.9 {
			return 5
		}
		if confidence >= 0.8 {
			return 4
		}
		return 3
	}

	switch {
	case confidence >= 0.9 && timeSpent <= 0.7*expectedTime:
		return 5
	case confidence >= 0.8 && timeSpent <= expectedTime:
		return 4
	default:
		return 3
	}
}
