// Package progtest contains utilities for testing a [prog.Program].
package progtest

import (
	"io"
	"os"
	"strings"
	"testing"

	"src.mvu.sh/pkg/must"
	"src.mvu.sh/pkg/prog"
)

// Case is a test case for Test. It is created by ThatProgram and refined with
// its methods, which return a modified copy.
type Case struct {
	args  []string
	stdin string
	tty   bool
	want  result
}

type result struct {
	exitStatus int
	stdout     output
	stderr     output
}

type output struct {
	content string
	partial bool
}

func (o output) String() string {
	if o.partial {
		return "text containing " + quote(o.content)
	}
	return quote(o.content)
}

func quote(s string) string {
	if s == "" {
		return "nothing"
	}
	return "\"" + strings.ReplaceAll(s, "\n", "\\n") + "\""
}

// ThatProgram returns a Case that runs the program with the given arguments,
// not including the program name. The default expectation is that the
// program exits with 0 and writes nothing.
func ThatProgram(args ...string) Case {
	return Case{args: args}
}

// WithStdin returns a copy of c whose program reads s from stdin.
func (c Case) WithStdin(s string) Case {
	c.stdin = s
	return c
}

// WithTTYStdin is like WithStdin, but the program reads from the slave side
// of a pseudo-terminal instead of a pipe.
func (c Case) WithTTYStdin(s string) Case {
	c.stdin = s
	c.tty = true
	return c
}

// DoesNothing returns c unchanged. It documents that a case expects no output
// and a zero exit status.
func (c Case) DoesNothing() Case { return c }

// ExitsWith returns a copy of c that expects the given exit status.
func (c Case) ExitsWith(code int) Case {
	c.want.exitStatus = code
	return c
}

// WritesStdout returns a copy of c that expects exactly s on stdout.
func (c Case) WritesStdout(s string) Case {
	c.want.stdout = output{s, false}
	return c
}

// WritesStdoutContaining returns a copy of c that expects s somewhere in
// stdout.
func (c Case) WritesStdoutContaining(s string) Case {
	c.want.stdout = output{s, true}
	return c
}

// WritesStderr returns a copy of c that expects exactly s on stderr.
func (c Case) WritesStderr(s string) Case {
	c.want.stderr = output{s, false}
	return c
}

// WritesStderrContaining returns a copy of c that expects s somewhere in
// stderr.
func (c Case) WritesStderrContaining(s string) Case {
	c.want.stderr = output{s, true}
	return c
}

// Test runs each case against p and reports mismatches.
func Test(t *testing.T, p prog.Program, cases ...Case) {
	t.Helper()
	for _, c := range cases {
		var exit int
		var stdout, stderr string
		if c.tty {
			exit, stdout, stderr = runTTY(t, p, c.args, c.stdin)
		} else {
			exit, stdout, stderr = Run(p, c.stdin, c.args...)
		}
		if exit != c.want.exitStatus {
			t.Errorf("counter %s exits with %d, want %d\nstderr: %q",
				strings.Join(c.args, " "), exit, c.want.exitStatus, stderr)
		}
		if !match(c.want.stdout, stdout) {
			t.Errorf("counter %s writes stdout %q, want %s",
				strings.Join(c.args, " "), stdout, c.want.stdout)
		}
		if !match(c.want.stderr, stderr) {
			t.Errorf("counter %s writes stderr %q, want %s",
				strings.Join(c.args, " "), stderr, c.want.stderr)
		}
	}
}

func match(want output, got string) bool {
	if want.partial {
		return strings.Contains(got, want.content)
	}
	return got == want.content
}

// Run runs p with the given stdin and arguments, and returns its exit status
// and what it wrote to stdout and stderr.
func Run(p prog.Program, stdin string, args ...string) (exit int, stdout, stderr string) {
	r0, w0 := must.OK2(os.Pipe())
	go func() {
		w0.WriteString(stdin)
		w0.Close()
	}()
	defer r0.Close()
	return runWithStdin(p, r0, args)
}

func runWithStdin(p prog.Program, stdin *os.File, args []string) (int, string, string) {
	r1, w1 := must.OK2(os.Pipe())
	r2, w2 := must.OK2(os.Pipe())
	// Drain both pipes while the program runs, so that it can't block on a
	// full pipe.
	stdoutCh := readAllAsync(r1)
	stderrCh := readAllAsync(r2)

	exit := prog.Run([3]*os.File{stdin, w1, w2}, append([]string{"counter"}, args...), p)
	w1.Close()
	w2.Close()
	return exit, <-stdoutCh, <-stderrCh
}

func readAllAsync(r *os.File) <-chan string {
	ch := make(chan string, 1)
	go func() {
		data, _ := io.ReadAll(r)
		r.Close()
		ch <- string(data)
	}()
	return ch
}
