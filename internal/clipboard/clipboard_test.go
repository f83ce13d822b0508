package clipboard

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCopy_SystemClipboard(t *testing.T) {
	var got string
	var out bytes.Buffer
	c := &Copier{
		writeAll:   func(s string) error { got = s; return nil },
		out:        &out,
		isTerminal: func() bool { return true },
	}
	m, err := c.Copy("hei")
	require.NoError(t, err)
	require.Equal(t, MethodSystem, m)
	require.Equal(t, "hei", got)
	require.Zero(t, out.Len())
}

func TestCopy_FallsBackToOSC52(t *testing.T) {
	var out bytes.Buffer
	c := &Copier{
		writeAll:   func(string) error { return errors.New("no xclip") },
		out:        &out,
		isTerminal: func() bool { return true },
	}
	m, err := c.Copy("hei")
	require.NoError(t, err)
	require.Equal(t, MethodOSC52, m)
	require.Equal(t, "\x1b]52;c;aGVp\a", out.String())
}

func TestCopy_Unavailable(t *testing.T) {
	var out bytes.Buffer
	c := &Copier{
		writeAll:   func(string) error { return errors.New("no xclip") },
		out:        &out,
		isTerminal: func() bool { return false },
	}
	_, err := c.Copy("hei")
	require.ErrorIs(t, err, ErrUnavailable)
	require.ErrorContains(t, err, "no xclip")
	require.Zero(t, out.Len())
}
