// Package config validates the gateway's security-sensitive configuration
// at startup, before the server begins accepting traffic.
package config

import (
	"fmt"
	"os"
	"strings"
)

const (
	// sessionSecretEnv is the environment variable holding the HMAC key
	// shared with the platform that issues session tokens.
	sessionSecretEnv = "SESSION_SECRET"

	// minSecretLength is the minimum byte length for the session secret.
	// HS256 keys shorter than the hash output weaken the signature.
	minSecretLength = 32
)

// weakSecretList contains placeholder values that must never be used as a
// signing key in any environment.
var weakSecretList = []string{
	"secret",
	"changeme",
	"change-me",
	"password",
	"session-secret",
	"development",
	"dev-secret",
	"test-secret",
	"example",
	"default",
	"insecure",
}

// ValidateSessionSecret checks the session token signing secret at startup.
// It must be called before the server starts: a gateway running with an
// empty or guessable secret would accept forged sessions.
//
// Requirements:
//   - SESSION_SECRET must not be empty
//   - the secret must be at least 32 bytes
//   - the secret must not be a known placeholder value
//   - the secret must not consist of a single repeated character
//
// The returned error is safe to log; it never includes the secret itself.
func ValidateSessionSecret() ([]byte, error) {
	secret := os.Getenv(sessionSecretEnv)

	if secret == "" {
		return nil, fmt.Errorf("session secret validation failed: %s must not be empty", sessionSecretEnv)
	}

	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("session secret validation failed: %s must be at least %d bytes (current length: %d)",
			sessionSecretEnv, minSecretLength, len(secret))
	}

	if isRepeatedChar(secret) {
		return nil, fmt.Errorf("session secret validation failed: %s must not be a single repeated character", sessionSecretEnv)
	}

	lower := strings.ToLower(secret)
	for _, weak := range weakSecretList {
		if strings.HasPrefix(lower, weak) {
			return nil, fmt.Errorf("session secret validation failed: %s must not be based on a placeholder value", sessionSecretEnv)
		}
	}

	return []byte(secret), nil
}

// isRepeatedChar checks if the value consists of a single repeated character.
// Example: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
func isRepeatedChar(s string) bool {
	if len(s) == 0 {
		return false
	}

	first := s[0]
	for i := 1; i < len(s); i++ {
		if s[i] != first {
			return false
		}
	}
	return true
}
