// Package domain defines the core business entities of the scheduling
// engine: cards, review sessions, and the errors shared across layers.
// Entities validate themselves and carry no persistence or transport
// concerns.
package domain
