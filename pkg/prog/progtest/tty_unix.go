//go:build !windows

package progtest

import (
	"io"
	"testing"

	"github.com/creack/pty"

	"src.mvu.sh/pkg/prog"
)

func runTTY(t *testing.T, p prog.Program, args []string, stdin string) (int, string, string) {
	t.Helper()
	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skipf("no pseudo-terminal: %v", err)
	}
	defer ptmx.Close()
	defer tty.Close()
	// Discard the echo.
	go io.Copy(io.Discard, ptmx)
	// ^D at the start of a line ends the input.
	ptmx.WriteString(stdin + "\x04")
	return runWithStdin(p, tty, args)
}
