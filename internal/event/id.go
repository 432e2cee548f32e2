package event

import "github.com/google/uuid"

// IDFunc produces identifiers for new events.
type IDFunc func() string

// NewID returns a random v4 UUID. Unlike a timestamp it cannot collide
// for two events created in the same millisecond.
func NewID() string {
	return uuid.NewString()
}
