package utils

import (
	"github.com/google/uuid"
)

// GenerateTokenID returns a unique identifier used as the JTI claim of
// refresh tokens, so individual tokens can be revoked on logout.
func GenerateTokenID() string {
	return uuid.New().String()
}
