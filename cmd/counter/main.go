// Counter is an interactive counter built on a message dispatch loop. It reads
// commands from its arguments or from stdin, prints every new state, and can
// record its session in a database and replay it later.
package main

import (
	"os"

	"src.mvu.sh/pkg/buildinfo"
	"src.mvu.sh/pkg/counter"
	"src.mvu.sh/pkg/prog"
)

func main() {
	os.Exit(prog.Run(
		[3]*os.File{os.Stdin, os.Stdout, os.Stderr}, os.Args,
		prog.Composite(
			buildinfo.Program{}, counter.ReplayProgram{}, counter.Program{})))
}
