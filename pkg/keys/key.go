package keys

import (
	"crypto/rand"
	"regexp"
)

// Key is an IndexNow API key. A valid key is 8-128 characters from
// [a-zA-Z0-9-], never empty, never containing whitespace.
type Key string

const (
	minKeyLen = 8
	maxKeyLen = 128

	// generatedKeyLen matches the conventional 32-character keys most
	// IndexNow tooling produces.
	generatedKeyLen = 32
)

var keyPattern = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)

// Valid reports whether the key satisfies the IndexNow key grammar.
func (k Key) Valid() bool {
	if len(k) < minKeyLen || len(k) > maxKeyLen {
		return false
	}
	return keyPattern.MatchString(string(k))
}

func (k Key) String() string {
	return string(k)
}

// Generate returns a fresh random 32-character alphanumeric key.
func Generate() Key {
	const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	buf := make([]byte, generatedKeyLen)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failure means the platform RNG is broken; there is
		// no weaker source worth falling back to for an auth credential.
		panic("keys: system random source unavailable: " + err.Error())
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return Key(buf)
}
