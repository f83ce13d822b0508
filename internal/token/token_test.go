package token

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_ShapeAndUniqueness(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		tok, err := New()
		require.NoError(t, err)
		require.Len(t, tok, Length)
		require.True(t, Valid(tok), tok)
		require.False(t, seen[tok], "duplicate token")
		seen[tok] = true
	}
}

func TestNewFrom_RejectsBiasedBytes(t *testing.T) {
	// 0xFF is above maxByte and must be skipped; 0 maps to 'A', 61 maps to '9'.
	src := bytes.Repeat([]byte{0xFF, 0, 61}, 64)
	tok, err := NewFrom(bytes.NewReader(src))
	require.NoError(t, err)
	require.Len(t, tok, Length)
	require.Equal(t, "A9A9A9A9A9A9A9A9A9A9A9A9A9A9A9A9", tok)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("no entropy") }

func TestNewFrom_ReaderError(t *testing.T) {
	_, err := NewFrom(failingReader{})
	require.Error(t, err)
}

func TestValid(t *testing.T) {
	require.False(t, Valid(""))
	require.False(t, Valid("short"))
	require.False(t, Valid("AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA-"))
	require.True(t, Valid("abcdefghijklmnopqrstuvwxyz012345"))
}

func TestDigest_Deterministic(t *testing.T) {
	a := Digest("abc")
	require.Len(t, a, 32)
	require.Equal(t, a, Digest("abc"))
	require.NotEqual(t, a, Digest("abd"))
}
