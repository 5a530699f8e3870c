package pkg

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const idBytes = 32

// GenerateNewSessionID - generates a new unique player ID.
func GenerateNewSessionID() string {
	b := make([]byte, idBytes)
	if _, err := rand.Read(b); err != nil {
		return "error-generating-session-id"
	}

	return base64.RawURLEncoding.EncodeToString(b)
}

// GenerateGameID - generates a unique identifier for the game.
func GenerateGameID() (string, error) {
	b := make([]byte, idBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate game id: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}
