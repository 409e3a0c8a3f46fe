package srs

import (
	"math"
	"time"

	"github.com/lernia/review-api/internal/domain"
)

// Quality rating boundaries. Ratings below PassingQuality count as failed
// recall and reset the repetition streak.
const (
	MinQuality     = 0
	MaxQuality     = 5
	PassingQuality = 3
)

// calculateNewEaseFactor applies the SM-2 ease update for a 0..5 quality
// rating and clamps the result to the configured limits.
//
// The update is EF' = EF + (0.1 - (5-q) * (0.08 + (5-q) * 0.02)). A perfect
// recall (q=5) raises the factor by 0.1, a hesitant pass (q=4) leaves it
// unchanged, and anything below erodes it. The floor keeps a struggling
// card from spiralling into ever shorter intervals; the ceiling is applied
// only when the params configure one.
func calculateNewEaseFactor(currentEF float64, quality int, params *Params) float64 {
	miss := float64(MaxQuality - quality)
	newEF := currentEF + (0.1 - miss*(0.08+miss*0.02))

	if newEF < params.MinEaseFactor {
		newEF = params.MinEaseFactor
	}
	if params.MaxEaseFactor > 0 && newEF > params.MaxEaseFactor {
		newEF = params.MaxEaseFactor
	}

	return newEF
}

// calculateNewInterval determines the interval in days after a successful
// review. The first two repetitions walk the grade-band table directly;
// from the third on, the table step is scaled by the ease factor. The
// repetition count passed here is the count after the current success.
func calculateNewInterval(repetitions int, easeFactor float64, table IntervalTable) int {
	switch repetitions {
	case 1:
		return table[0]
	case 2:
		return table[1]
	default:
		idx := repetitions - 1
		if idx > len(table)-1 {
			idx = len(table) - 1
		}
		return int(math.Round(float64(table[idx]) * easeFactor))
	}
}

// calculateNewStatus derives the card status after a successful review.
// Mastery requires a sustained streak and a high ease factor.
func calculateNewStatus(repetitions int, easeFactor float64, params *Params) domain.CardStatus {
	if repetitions <= 2 {
		return domain.CardStatusLearning
	}
	if repetitions >= params.MasteryRepetitions && easeFactor >= params.MasteryEaseFactor {
		return domain.CardStatusMastered
	}
	return domain.CardStatusReview
}

// applyReview computes the card's next scheduling state for a review
// outcome. It mutates the given card, which callers obtain via Clone so
// the original stays untouched until the result is persisted.
func applyReview(card *domain.Card, perf Performance, now time.Time, params *Params) {
	card.EaseFactor = calculateNewEaseFactor(card.EaseFactor, perf.Quality, params)

	if perf.Quality < PassingQuality {
		// Failed recall: restart the streak and bring the card back soon.
		card.Repetitions = 0
		card.Interval = 0
		card.Status = domain.CardStatusLearning
		card.NextReviewAt = now.Add(params.FailureRetry)
	} else {
		card.Repetitions++
		table := params.TableForGrade(card.GradeLevel)
		card.Interval = calculateNewInterval(card.Repetitions, card.EaseFactor, table)
		card.Status = calculateNewStatus(card.Repetitions, card.EaseFactor, params)
		card.NextReviewAt = now.AddDate(0, 0, card.Interval)
	}

	reviewedAt := now
	card.LastReviewedAt = &reviewedAt

	card.AppendReview(domain.ReviewRecord{
		ReviewedAt: now,
		Quality:    perf.Quality,
		TimeSpent:  perf.TimeSpent,
		Correct:    perf.Correct,
		Interval:   card.Interval,
		EaseFactor: card.EaseFactor,
	})
}
