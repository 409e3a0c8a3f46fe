package review

import (
	"sort"

	"github.com/lernia/review-api/internal/domain"
)

// Session composition shares: half the session is learning cards, roughly a
// third review cards, and the remainder new material.
const (
	learningShare = 0.5
	reviewShare   = 0.3
)

// orderByUrgency sorts cards most overdue first. Ties on the scheduled time
// are broken by status priority, new cards first. The sort is stable so
// equal cards keep their store order.
func orderByUrgency(cards []*domain.Card) {
	sort.SliceStable(cards, func(i, j int) bool {
		if !cards[i].NextReviewAt.Equal(cards[j].NextReviewAt) {
			return cards[i].NextReviewAt.Before(cards[j].NextReviewAt)
		}
		return cards[i].Status.SelectionPriority() < cards[j].Status.SelectionPriority()
	})
}

// composeSession selects the session's card list from an urgency-ordered
// due pool. Buckets fill in order: up to floor(target*0.5) learning cards,
// up to floor(target*0.3) review cards, then new cards capped at maxNew.
// A bucket's shortfall is backfilled from the leftover learning and review
// cards, in that order, so the session reaches the target whenever enough
// due cards exist. The new-card cap is never exceeded by backfill.
//
// Returns the selection in review order and the count of new cards in it.
func composeSession(pool []*domain.Card, target, maxNew int) ([]*domain.Card, int) {
	var learning, reviewing, fresh []*domain.Card
	for _, card := range pool {
		switch card.Status {
		case domain.CardStatusLearning:
			learning = append(learning, card)
		case domain.CardStatusNew:
			if len(fresh) < maxNew {
				fresh = append(fresh, card)
			}
		default:
			// Mastered cards that come due again review like review cards.
			reviewing = append(reviewing, card)
		}
	}

	learningQuota := int(float64(target) * learningShare)
	reviewQuota := int(float64(target) * reviewShare)

	selected := make([]*domain.Card, 0, target)
	selected = append(selected, take(learning, learningQuota)...)
	selected = append(selected, take(reviewing, reviewQuota)...)

	newCount := 0
	for _, card := range fresh {
		if len(selected) >= target {
			break
		}
		selected = append(selected, card)
		newCount++
	}

	// Backfill any remaining capacity from the unused learning and review
	// cards. New cards are already capped and do not backfill.
	if len(selected) < target {
		leftovers := append(drop(learning, learningQuota), drop(reviewing, reviewQuota)...)
		for _, card := range leftovers {
			if len(selected) >= target {
				break
			}
			selected = append(selected, card)
		}
	}

	if len(selected) > target {
		selected = selected[:target]
	}

	return selected, newCount
}

func take(cards []*domain.Card, n int) []*domain.Card {
	if n > len(cards) {
		n = len(cards)
	}
	return cards[:n]
}

func drop(cards []*domain.Card, n int) []*domain.Card {
	if n > len(cards) {
		return nil
	}
	return cards[n:]
}
