package pkg

import "github.com/google/uuid"

// GenerateSessionID returns a fresh identifier for a game session.
func GenerateSessionID() string {
	return uuid.NewString()
}

// IsSessionID reports whether id looks like something GenerateSessionID produced.
func IsSessionID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
