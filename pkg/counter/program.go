package counter

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/sync/errgroup"

	"src.mvu.sh/pkg/dispatch"
	"src.mvu.sh/pkg/logutil"
	"src.mvu.sh/pkg/prog"
	"src.mvu.sh/pkg/store"
	"src.mvu.sh/pkg/store/storedefs"
	"src.mvu.sh/pkg/vals"
	"src.mvu.sh/pkg/view"
)

var logger = logutil.GetLogger("[counter] ")

const prompt = "> "

// Program is the interactive counter. Each argument is one command; without
// arguments, commands are read from stdin, one per line. A prompt is shown
// when stdin is a terminal.
//
// Besides the actions of NewView, "help" lists the commands and "quit" stops
// reading. Commands that can't be handled are reported on stderr and recorded
// as Failed messages; when not reading from a terminal, they also make the
// program exit with 1.
type Program struct{}

func (Program) Run(fds [3]*os.File, f *prog.Flags, args []string) error {
	format, err := formatOf(f)
	if err != nil {
		return err
	}
	if f.Burst < 0 {
		return prog.BadUsage("-burst must not be negative")
	}

	state, base := Init, uint64(0)
	var rec *store.Recorder[vals.Record]
	if f.DB != "" {
		st, err := store.NewStore(f.DB)
		if err != nil {
			return err
		}
		defer st.Close()
		state, base, err = restore(st, f.Name)
		if err != nil {
			return err
		}
		logger.Printf("session %s starts at %d", f.Name, base)
		every := uint64(0)
		if f.Every > 0 {
			every = uint64(f.Every)
		}
		rec = store.NewRecorder[vals.Record](st, f.Name, base, every)
	}

	lp := dispatch.New(state, Reducer, dispatch.WithName(f.Name))
	if rec != nil {
		detach, err := rec.Attach(lp)
		if err != nil {
			return err
		}
		defer detach()
	}

	v := NewView(format)
	b := view.Bind[vals.Record, string](lp, v, func(s string) { io.WriteString(fds[1], s) })
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runErr := make(chan error, 1)
	go func() { runErr <- lp.Run(ctx) }()

	s := &session{fds: fds, lp: lp, v: v, b: b}
	err = s.burst(ctx, f.Burst)
	if err == nil {
		if len(args) > 0 {
			err = s.fromArgs(ctx, args)
		} else {
			err = s.fromStdin(ctx)
		}
	}

	lp.Stop()
	if loopErr := <-runErr; err == nil {
		err = loopErr
	}
	if err == nil && rec != nil {
		err = rec.Err()
	}
	if err == nil && s.failures > 0 && !s.interactive {
		return prog.Exit(1)
	}
	return err
}

func formatOf(f *prog.Flags) (Format, error) {
	switch {
	case f.JSON && f.YAML:
		return Text, prog.BadUsage("-json and -yaml can't be used together")
	case f.JSON:
		return JSON, nil
	case f.YAML:
		return YAML, nil
	default:
		return Text, nil
	}
}

// restore returns the last recorded state of a session and its sequence
// number, or the initial state if the session has never been recorded.
func restore(st storedefs.Store, name string) (vals.Record, uint64, error) {
	state, seq, err := store.Restore[vals.Record](st, name, Messages, Reducer)
	if errors.Is(err, storedefs.ErrNoSnapshot) {
		return Init, 0, nil
	}
	return state, seq, err
}

type session struct {
	fds [3]*os.File
	lp  *dispatch.Loop[vals.Record]
	v   *view.View[vals.Record, string]
	b   *view.Binding[vals.Record, string]

	interactive bool
	failures    int
}

var errQuit = errors.New("quit")

// burst submits n increments from n goroutines at once.
func (s *session) burst(ctx context.Context, n int) error {
	if n == 0 {
		return nil
	}
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			_, err := s.lp.Dispatch(ctx, Increment)
			return err
		})
	}
	return g.Wait()
}

func (s *session) fromArgs(ctx context.Context, args []string) error {
	for _, arg := range args {
		if err := s.command(ctx, arg); err != nil {
			if err == errQuit {
				return nil
			}
			return err
		}
	}
	return nil
}

func (s *session) fromStdin(ctx context.Context) error {
	fd := s.fds[0].Fd()
	s.interactive = isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	scanner := bufio.NewScanner(s.fds[0])
	for {
		if s.interactive {
			io.WriteString(s.fds[1], prompt)
		}
		if !scanner.Scan() {
			if s.interactive {
				io.WriteString(s.fds[1], "\n")
			}
			return scanner.Err()
		}
		if err := s.command(ctx, scanner.Text()); err != nil {
			if err == errQuit {
				return nil
			}
			return err
		}
	}
}

// command runs one command. It only returns errors that end the session.
func (s *session) command(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	switch fields[0] {
	case "quit":
		return errQuit
	case "help":
		fmt.Fprintf(s.fds[1], "commands: %s, help, quit\n", strings.Join(s.v.Actions(), ", "))
		return nil
	}
	err := s.b.Do(ctx, fields[0], fields[1:]...)
	if err == nil || isFatal(ctx, err) {
		return err
	}
	s.failures++
	fmt.Fprintln(s.fds[2], err)
	_, err = s.lp.Dispatch(ctx, Failed(err.Error()))
	return err
}

// isFatal reports whether an error from Binding.Do came from the loop rather
// than from handling the action.
func isFatal(ctx context.Context, err error) bool {
	var reduceErr *dispatch.ReduceError
	return errors.Is(err, dispatch.ErrStopped) || errors.As(err, &reduceErr) || ctx.Err() != nil
}
