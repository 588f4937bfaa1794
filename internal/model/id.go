package model

import "github.com/google/uuid"

// NewID returns a fresh time-ordered UUID (version 7). Version 7 keeps
// primary-key inserts roughly append-only, which matters for the allocation
// table under load. Falls back to a random v4 when the clock source fails.
func NewID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}
