package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidQuality is returned when a review quality rating is
	// outside the 0..5 scale.
	ErrInvalidQuality = errors.New("quality must be between 0 and 5")

	// ErrInvalidCardStatus is returned when a card status is not one of
	// the recognized values.
	ErrInvalidCardStatus = errors.New("invalid card status")

	// ErrInvalidSessionStatus is returned when a session status is not
	// one of the recognized values.
	ErrInvalidSessionStatus = errors.New("invalid session status")

	// ErrInvalidState is returned when an operation is attempted against
	// an entity in a state that does not permit it, such as recording a
	// review on a completed session.
	ErrInvalidState = errors.New("invalid state for operation")
)
