package id

import (
	"crypto/rand"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// New generates a new ULID string. ULIDs sort by creation time, which keeps
// user partition keys roughly ordered by sign-up.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

// NewUUID generates a random version 4 UUID string.
func NewUUID() string {
	return uuid.NewString()
}
