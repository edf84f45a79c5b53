package utils

import (
	"github.com/google/uuid"
)

// GenerateID returns a new opaque identifier. Used for websocket client
// ids and stored upload names; event and item ids are monotonic counters
// owned by the registry instead.
func GenerateID() string {
	return uuid.NewString()
}
