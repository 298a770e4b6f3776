// Package uuid generates time-ordered UUIDv7 identifiers on top of
// github.com/google/uuid.
package uuid

import (
	"github.com/google/uuid"
)

// UUID represents a UUID, aliased from github.com/google/uuid.UUID
type UUID = uuid.UUID

// New returns a new UUIDv7. Panics if UUID generation fails.
func New() UUID {
	uuidv7, err := uuid.NewV7()
	if err != nil {
		panic(err)
	}
	return uuidv7
}

// Parse parses a UUID string into a UUID value.
func Parse(s string) (UUID, error) {
	return uuid.Parse(s)
}

// Short returns the last 8 hex digits of id. For UUIDv7 these are random bits,
// so values generated in the same millisecond still differ.
func Short(id UUID) string {
	s := id.String()
	return s[len(s)-8:]
}

// Nil is the zero UUID value.
var Nil = uuid.Nil
