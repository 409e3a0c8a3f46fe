package srs

import "time"

// IntervalTableSize is the number of steps in a grade-band interval table.
const IntervalTableSize = 8

// IntervalTable is an ascending sequence of day counts indexed by
// repetition count. Younger grade bands use shorter, denser sequences.
type IntervalTable [IntervalTableSize]int

// Params defines all configurable parameters for the scheduling algorithm.
type Params struct {
	// Core limits
	MinEaseFactor float64
	MaxEaseFactor float64 // Ceiling applied only when > 0; disabled by default

	// FailureRetry is how soon a failed card comes back.
	FailureRetry time.Duration

	// Mastery thresholds: a card is mastered once it reaches this many
	// consecutive successful repetitions with at least this ease factor.
	MasteryRepetitions int
	MasteryEaseFactor  float64

	// Retirement thresholds for the archival sweep.
	RetireRepetitions int
	RetireAfter       time.Duration

	// Grade-band interval tables
	LowerElementaryTable IntervalTable // K-2
	UpperElementaryTable IntervalTable // 3-5
	StandardTable        IntervalTable // 6 and above
	DefaultTable         IntervalTable // Unrecognized grade levels
}

// ParamsConfig allows overriding the default parameters when creating a new
// Params instance. Zero values leave the corresponding default in place.
type ParamsConfig struct {
	MinEaseFactor float64
	MaxEaseFactor float64

	FailureRetry time.Duration

	MasteryRepetitions int
	MasteryEaseFactor  float64

	RetireRepetitions int
	RetireAfter       time.Duration
}

// NewDefaultParams creates a new Params instance with default values.
func NewDefaultParams() *Params {
	return &Params{
		MinEaseFactor: 1.3,
		MaxEaseFactor: 0, // No enforced ceiling

		// Failed cards come back the same day
		FailureRetry: 12 * time.Hour,

		MasteryRepetitions: 6,
		MasteryEaseFactor:  2.3,

		RetireRepetitions: 8,
		RetireAfter:       180 * 24 * time.Hour,

		// K-2 reviews stay dense; young memories decay fast.
		LowerElementaryTable: IntervalTable{1, 2, 4, 8, 15, 25, 40, 60},

		// 3-5 stretches further between repetitions.
		UpperElementaryTable: IntervalTable{1, 3, 7, 14, 25, 40, 70, 120},

		// Grades 6 and above share one standard sequence.
		StandardTable: IntervalTable{1, 4, 9, 18, 35, 70, 140, 240},

		// Fall back to the mid band when the grade is unrecognized.
		DefaultTable: IntervalTable{1, 3, 7, 14, 25, 40, 70, 120},
	}
}

// NewParams creates a new Params instance with custom configuration.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.MinEaseFactor > 0 {
		params.MinEaseFactor = config.MinEaseFactor
	}
	if config.MaxEaseFactor > 0 {
		params.MaxEaseFactor = config.MaxEaseFactor
	}
	if config.FailureRetry > 0 {
		params.FailureRetry = config.FailureRetry
	}
	if config.MasteryRepetitions > 0 {
		params.MasteryRepetitions = config.MasteryRepetitions
	}
	if config.MasteryEaseFactor > 0 {
		params.MasteryEaseFactor = config.MasteryEaseFactor
	}
	if config.RetireRepetitions > 0 {
		params.RetireRepetitions = config.RetireRepetitions
	}
	if config.RetireAfter > 0 {
		params.RetireAfter = config.RetireAfter
	}

	return params
}

// Grade band boundaries. Kindergarten is grade 0.
const (
	lowerElementaryMax = 2
	upperElementaryMax = 5
	highestGrade       = 12
)

// TableForGrade returns the interval table for a school grade level.
func (p *Params) TableForGrade(gradeLevel int) IntervalTable {
	switch {
	case gradeLevel >= 0 && gradeLevel <= lowerElementaryMax:
		return p.LowerElementaryTable
	case gradeLevel <= upperElementaryMax && gradeLevel > lowerElementaryMax:
		return p.UpperElementaryTable
	case gradeLevel > upperElementaryMax && gradeLevel <= highestGrade:
		return p.StandardTable
	default:
		return p.DefaultTable
	}
}
