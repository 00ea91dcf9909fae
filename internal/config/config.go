package config

import "os"

// Relay limits. Messages violating these are rejected before they reach
// the partner.
const (
	MaxMessageLen   = 500      // runes, after trimming
	MaxAudioSeconds = 120      // seconds of recorded audio
	MaxAudioBytes   = 10 << 20 // bytes of the encoded audio payload
)

// Profile limits enforced at registration.
const (
	MinAge     = 12
	MaxAge     = 100
	MaxNameLen = 20
)

// Env reads an environment variable, falling back to def when unset.
func Env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// JWTSecret returns the HS256 signing key for anon-id tokens.
func JWTSecret() []byte {
	return []byte(Env("JWT_SECRET", "dev-only-secret"))
}
