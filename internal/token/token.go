// Package token generates client share tokens and the digests used to look them up.
package token

import (
	"crypto/rand"
	"io"

	"golang.org/x/crypto/blake2b"
)

// Length is the number of characters in a share token.
const Length = 32

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// maxByte is the largest multiple of len(alphabet) that fits in a byte;
// bytes at or above it are rejected to keep the distribution uniform.
const maxByte = 256 - (256 % len(alphabet))

// New returns a fresh share token drawn from crypto/rand.
func New() (string, error) { return NewFrom(rand.Reader) }

// NewFrom draws a token from r using rejection sampling.
func NewFrom(r io.Reader) (string, error) {
	out := make([]byte, 0, Length)
	buf := make([]byte, Length*2)
	for len(out) < Length {
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) >= maxByte {
				continue
			}
			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == Length {
				break
			}
		}
	}
	return string(out), nil
}

// Valid reports whether s has the shape of a share token.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}

// Digest returns the BLAKE2b-256 digest stored next to the token and used for lookups.
func Digest(tok string) []byte {
	h := blake2b.Sum256([]byte(tok))
	return h[:]
}
