package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CardStatus represents where a card sits in its learning lifecycle.
type CardStatus string

// Possible card status values.
const (
	CardStatusNew      CardStatus = "new"
	CardStatusLearning CardStatus = "learning"
	CardStatusReview   CardStatus = "review"
	CardStatusMastered CardStatus = "mastered"
	CardStatusRetired  CardStatus = "retired"
)

// IsValid reports whether the status is one of the recognized values.
func (s CardStatus) IsValid() bool {
	switch s {
	case CardStatusNew, CardStatusLearning, CardStatusReview,
		CardStatusMastered, CardStatusRetired:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the status excludes the card from scheduling.
// Retired cards only leave this state through an explicit reset.
func (s CardStatus) IsTerminal() bool {
	return s == CardStatusRetired
}

// SelectionPriority orders statuses for due-card tie-breaking: new cards
// win exact ties, then learning, then review. Lower is more urgent.
func (s CardStatus) SelectionPriority() int {
	switch s {
	case CardStatusNew:
		return 0
	case CardStatusLearning:
		return 1
	case CardStatusReview:
		return 2
	default:
		return 3
	}
}

// Default scheduling values for newly created cards.
const (
	// DefaultEaseFactor is the starting easiness factor for a new card.
	DefaultEaseFactor = 2.5

	// MinEaseFactor is the floor below which the easiness factor never drops.
	MinEaseFactor = 1.3

	// MaxReviewHistory caps the per-card review log; oldest entries are
	// dropped first.
	MaxReviewHistory = 50

	// KindergartenGrade is the sentinel grade level for kindergarten.
	KindergartenGrade = 0
)

// Common validation errors for Card.
var (
	ErrEmptyCardID          = errors.New("card ID cannot be empty")
	ErrEmptyCardStudentID   = errors.New("card student ID cannot be empty")
	ErrEmptyCardQuestionRef = errors.New("card question reference cannot be empty")
	ErrInvalidGradeLevel    = errors.New("grade level must be between 0 (K) and 12")
	ErrInvalidDifficulty    = errors.New("difficulty must be between 1 and 10")
	ErrInvalidEaseFactor    = fmt.Errorf("ease factor must be at least %v", MinEaseFactor)
	ErrInvalidInterval      = errors.New("interval must be greater than or equal to 0")
	ErrInvalidRepetitions   = errors.New("repetitions must be greater than or equal to 0")
)

// ReviewRecord is one entry in a card's bounded review history.
type ReviewRecord struct {
	ReviewedAt time.Time `json:"reviewed_at"`
	Quality    int       `json:"quality"`      // 0..5 recall rating
	TimeSpent  float64   `json:"time_spent"`   // Seconds spent answering
	Correct    bool      `json:"correct"`      // Whether the answer was correct
	Interval   int       `json:"interval"`     // Resulting interval in days
	EaseFactor float64   `json:"ease_factor"`  // Resulting ease factor
}

// Card is the unit of knowledge being scheduled for one student.
// Scheduling fields are mutated exclusively through the srs package.
type Card struct {
	ID                uuid.UUID      `json:"id"`
	StudentID         uuid.UUID      `json:"student_id"`
	TopicID           string         `json:"topic_id"`
	Subject           string         `json:"subject"`
	GradeLevel        int            `json:"grade_level"` // 0 represents kindergarten
	QuestionRef       string         `json:"question_ref"`
	Difficulty        int            `json:"difficulty"` // 1-10, informational only
	EaseFactor        float64        `json:"ease_factor"`
	Interval          int            `json:"interval"` // Days until next review
	Repetitions       int            `json:"repetitions"`
	Status            CardStatus     `json:"status"`
	CreatedAt         time.Time      `json:"created_at"`
	LastReviewedAt    *time.Time     `json:"last_reviewed_at,omitempty"`
	NextReviewAt      time.Time      `json:"next_review_at"`
	ReviewHistory     []ReviewRecord `json:"review_history,omitempty"`
	TotalReviews      int            `json:"total_reviews"`
	SuccessfulReviews int            `json:"successful_reviews"`
}

// NewCard creates a card for a concept the student has just been exposed to.
// The card starts in the new state and is due for review immediately.
func NewCard(
	studentID uuid.UUID,
	topicID, subject string,
	gradeLevel int,
	questionRef string,
	difficulty int,
	now time.Time,
) (*Card, error) {
	card := &Card{
		ID:           uuid.New(),
		StudentID:    studentID,
		TopicID:      topicID,
		Subject:      subject,
		GradeLevel:   gradeLevel,
		QuestionRef:  questionRef,
		Difficulty:   difficulty,
		EaseFactor:   DefaultEaseFactor,
		Interval:     0,
		Repetitions:  0,
		Status:       CardStatusNew,
		CreatedAt:    now,
		NextReviewAt: now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Card has valid data.
// Returns an error if any field fails validation.
func (c *Card) Validate() error {
	if c.ID == uuid.Nil {
		return ErrEmptyCardID
	}

	if c.StudentID == uuid.Nil {
		return ErrEmptyCardStudentID
	}

	if c.QuestionRef == "" {
		return ErrEmptyCardQuestionRef
	}

	if c.GradeLevel < KindergartenGrade || c.GradeLevel > 12 {
		return ErrInvalidGradeLevel
	}

	if c.Difficulty < 1 || c.Difficulty > 10 {
		return ErrInvalidDifficulty
	}

	if c.EaseFactor < MinEaseFactor {
		return ErrInvalidEaseFactor
	}

	if c.Interval < 0 {
		return ErrInvalidInterval
	}

	if c.Repetitions < 0 {
		return ErrInvalidRepetitions
	}

	if !c.Status.IsValid() {
		return ErrInvalidCardStatus
	}

	return nil
}

// IsDue reports whether the card is eligible for review at the given time.
// Retired cards are never due.
func (c *Card) IsDue(now time.Time) bool {
	return !c.Status.IsTerminal() && !c.NextReviewAt.After(now)
}

// AppendReview adds a record to the review history, dropping the oldest
// entries once the cap is reached, and updates the aggregate counters.
func (c *Card) AppendReview(rec ReviewRecord) {
	c.ReviewHistory = append(c.ReviewHistory, rec)
	if len(c.ReviewHistory) > MaxReviewHistory {
		c.ReviewHistory = c.ReviewHistory[len(c.ReviewHistory)-MaxReviewHistory:]
	}

	c.TotalReviews++
	if rec.Correct {
		c.SuccessfulReviews++
	}
}

// Clone returns a deep copy of the card. The srs package works on copies so
// a failed save never leaves a half-updated card in the caller's hands.
func (c *Card) Clone() *Card {
	clone := *c
	if c.LastReviewedAt != nil {
		t := *c.LastReviewedAt
		clone.LastReviewedAt = &t
	}
	if c.ReviewHistory != nil {
		clone.ReviewHistory = make([]ReviewRecord, len(c.ReviewHistory))
		copy(clone.ReviewHistory, c.ReviewHistory)
	}
	return &clone
}
