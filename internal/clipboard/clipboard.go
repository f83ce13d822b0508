// Package clipboard copies text to the system clipboard, falling back to an
// OSC 52 terminal escape when no clipboard utility is available.
package clipboard

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/atotto/clipboard"
	"golang.org/x/term"
)

// ErrUnavailable means neither the system clipboard nor a terminal was usable.
var ErrUnavailable = errors.New("clipboard unavailable")

// Method reports how text was copied.
type Method string

const (
	MethodSystem Method = "system"
	MethodOSC52  Method = "osc52"
)

// Copier copies text with a two-tier fallback.
type Copier struct {
	writeAll   func(string) error
	out        io.Writer
	isTerminal func() bool
}

// New returns a Copier writing OSC 52 sequences to stdout.
func New() *Copier {
	return &Copier{
		writeAll:   clipboard.WriteAll,
		out:        os.Stdout,
		isTerminal: func() bool { return term.IsTerminal(int(os.Stdout.Fd())) },
	}
}

// Copy places text on the clipboard.
func (c *Copier) Copy(text string) (Method, error) {
	err := c.writeAll(text)
	if err == nil {
		return MethodSystem, nil
	}
	if c.isTerminal == nil || !c.isTerminal() {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if _, werr := io.WriteString(c.out, OSC52(text)); werr != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, werr)
	}
	return MethodOSC52, nil
}

// OSC52 returns the escape sequence that asks the terminal to set its clipboard.
func OSC52(text string) string {
	return "\x1b]52;c;" + base64.StdEncoding.EncodeToString([]byte(text)) + "\a"
}
