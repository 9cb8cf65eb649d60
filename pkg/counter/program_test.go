package counter_test

import (
	"path/filepath"
	"strings"
	"testing"

	. "src.mvu.sh/pkg/counter"
	"src.mvu.sh/pkg/prog"
	"src.mvu.sh/pkg/prog/progtest"
	"src.mvu.sh/pkg/testutil"
)

var (
	Test        = progtest.Test
	ThatProgram = progtest.ThatProgram
)

var program = prog.Composite(ReplayProgram{}, Program{})

func TestProgram_Args(t *testing.T) {
	Test(t, program,
		ThatProgram().WritesStdout("count: 0\n"),
		ThatProgram("inc", "inc").WritesStdout("count: 0\ncount: 1\ncount: 2\n"),
		ThatProgram("inc", "inc", "dec", "reset").
			WritesStdout("count: 0\ncount: 1\ncount: 2\ncount: 1\ncount: 0\n"),
		ThatProgram("step 3", "inc", "dec", "dec").
			WritesStdout("count: 0\ncount: 0, step: 3\ncount: 3, step: 3\ncount: 0, step: 3\ncount: -3, step: 3\n"),
		ThatProgram("inc", "reset").WritesStdout("count: 0\ncount: 1\ncount: 0\n"),
		ThatProgram("inc", "quit", "inc").WritesStdout("count: 0\ncount: 1\n"),
		ThatProgram("", "  ", "inc").WritesStdout("count: 0\ncount: 1\n"),
		ThatProgram("fail disk full").WritesStdout("count: 0\ncount: 0, errors: [\"disk full\"]\n"),
	)
}

func TestProgram_BadCommands(t *testing.T) {
	Test(t, program,
		ThatProgram("jump").
			ExitsWith(1).
			WritesStdout("count: 0\n" +
				`count: 0, errors: ["unknown action \"jump\", valid actions are dec, fail, inc, reset, step"]` + "\n").
			WritesStderr(`unknown action "jump", valid actions are dec, fail, inc, reset, step` + "\n"),
		ThatProgram("step -1", "inc").
			ExitsWith(1).
			WritesStdout("count: 0\n" +
				`count: 0, errors: ["step: step must be a positive integer"]` + "\n" +
				`count: 1, errors: ["step: step must be a positive integer"]` + "\n").
			WritesStderr("step: step must be a positive integer\n"),
	)
}

func TestProgram_Help(t *testing.T) {
	Test(t, program,
		ThatProgram("help").
			WritesStdout("count: 0\ncommands: dec, fail, inc, reset, step, help, quit\n"),
	)
}

func TestProgram_Stdin(t *testing.T) {
	Test(t, program,
		ThatProgram().WithStdin("inc\n\nstep 2\ninc\n").
			WritesStdout("count: 0\ncount: 1\ncount: 1, step: 2\ncount: 3, step: 2\n"),
		ThatProgram().WithStdin("inc\nquit\ninc\n").
			WritesStdout("count: 0\ncount: 1\n"),
		ThatProgram().WithStdin("inc\nbad\n").
			ExitsWith(1).
			WritesStdoutContaining("count: 1\ncount: 1, errors: [").
			WritesStderrContaining(`unknown action "bad"`),
		// Arguments take precedence over stdin.
		ThatProgram("dec").WithStdin("inc\n").
			WritesStdout("count: 0\ncount: -1\n"),
	)
}

func TestProgram_TTY(t *testing.T) {
	Test(t, program,
		ThatProgram().WithTTYStdin("inc\n").
			WritesStdout("count: 0\n> count: 1\n> \n"),
		// Failures are reported but don't change the exit status.
		ThatProgram().WithTTYStdin("bad\n").
			WritesStdoutContaining("count: 0\n> count: 0, errors: [").
			WritesStderrContaining(`unknown action "bad"`),
	)
}

func TestProgram_Formats(t *testing.T) {
	Test(t, program,
		ThatProgram("-json", "inc").
			WritesStdout(`{"count":0,"step":1,"errors":[]}` + "\n" +
				`{"count":1,"step":1,"errors":[]}` + "\n"),
		ThatProgram("-yaml", "inc").
			WritesStdoutContaining("---\ncount: 1\nstep: 1\n"),
		ThatProgram("-json", "-yaml").
			ExitsWith(2).
			WritesStderrContaining("-json and -yaml can't be used together\nUsage:"),
	)
}

func TestProgram_Burst(t *testing.T) {
	var want strings.Builder
	for i := 0; i <= 50; i++ {
		want.WriteString("count: " + itoa(i) + "\n")
	}
	Test(t, program,
		ThatProgram("-burst", "50").WritesStdout(want.String()),
		ThatProgram("-burst", "2", "dec").WritesStdout("count: 0\ncount: 1\ncount: 2\ncount: 1\n"),
		ThatProgram("-burst", "-1").
			ExitsWith(2).
			WritesStderrContaining("-burst must not be negative"),
	)
}

func itoa(i int) string {
	if i < 10 {
		return string(rune('0' + i))
	}
	return itoa(i/10) + itoa(i%10)
}

func TestProgram_RecordAndReplay(t *testing.T) {
	db := filepath.Join(testutil.TempDir(t), "db")

	Test(t, program,
		ThatProgram("-db", db, "inc", "step 2").
			WritesStdout("count: 0\ncount: 1\ncount: 1, step: 2\n"),
		// The next session continues from the recorded state.
		ThatProgram("-db", db, "inc").
			WritesStdout("count: 1, step: 2\ncount: 3, step: 2\n"),
		// Sessions are independent.
		ThatProgram("-db", db, "-name", "other", "dec").
			WritesStdout("count: 0\ncount: -1\n"),

		ThatProgram("-db", db, "-replay").
			WritesStdout("0: count: 0\n" +
				"1: Increment => count: 1\n" +
				"2: SetStep{step = 2} => count: 1, step: 2\n" +
				"3: Increment => count: 3, step: 2\n"),
		ThatProgram("-db", db, "-replay", "-name", "other", "-json").
			WritesStdout(`{"count":0,"step":1,"errors":[]}` + "\n" +
				`{"count":-1,"step":1,"errors":[]}` + "\n"),
		ThatProgram("-db", db, "-replay", "-name", "nope").
			ExitsWith(2).
			WritesStderr("no session named nope; recorded sessions are counter, other\n"),
	)
}

func TestProgram_SnapshotEvery(t *testing.T) {
	db := filepath.Join(testutil.TempDir(t), "db")

	Test(t, program,
		ThatProgram("-db", db, "-every", "2", "inc", "inc", "inc", "inc", "inc").
			WritesStdoutContaining("count: 5\n"),
		ThatProgram("-db", db, "-every", "2", "dec").
			WritesStdout("count: 5\ncount: 4\n"),
		ThatProgram("-db", db, "-replay").
			WritesStdoutContaining("5: Increment => count: 5\n6: Decrement => count: 4\n"),
	)
}

func TestProgram_ReplayUsage(t *testing.T) {
	db := filepath.Join(testutil.TempDir(t), "db")

	Test(t, program,
		ThatProgram("-replay").
			ExitsWith(2).
			WritesStderrContaining("-replay requires -db\nUsage:"),
		ThatProgram("-replay", "-db", db, "inc").
			ExitsWith(2).
			WritesStderrContaining("arguments are not allowed with -replay\nUsage:"),
		ThatProgram("-replay", "-db", db).
			ExitsWith(2).
			WritesStderr("no session named counter; the database has no sessions\n"),
	)
}

func TestProgram_BadDB(t *testing.T) {
	Test(t, program,
		ThatProgram("-db", filepath.Join(testutil.TempDir(t), "no", "such", "dir", "db"), "inc").
			ExitsWith(2).
			WritesStderrContaining("no such file or directory"),
	)
}
