package counter

import (
	"fmt"
	"os"
	"strings"

	"src.mvu.sh/pkg/codec"
	"src.mvu.sh/pkg/dispatch"
	"src.mvu.sh/pkg/msg"
	"src.mvu.sh/pkg/prog"
	"src.mvu.sh/pkg/store"
	"src.mvu.sh/pkg/store/storedefs"
	"src.mvu.sh/pkg/vals"
)

// ReplayProgram prints a recorded session from its first snapshot, one state
// per journal entry, and checks that the result agrees with the latest
// snapshot. It runs when -replay is given.
type ReplayProgram struct{}

func (ReplayProgram) Run(fds [3]*os.File, f *prog.Flags, args []string) error {
	if !f.Replay {
		return prog.ErrNotSuitable
	}
	if f.DB == "" {
		return prog.BadUsage("-replay requires -db")
	}
	if len(args) > 0 {
		return prog.BadUsage("arguments are not allowed with -replay")
	}
	format, err := formatOf(f)
	if err != nil {
		return err
	}

	st, err := store.NewStore(f.DB)
	if err != nil {
		return err
	}
	defer st.Close()

	first, initial, msgs, err := loadSession(st, f.Name)
	if err != nil {
		return err
	}
	states, err := dispatch.Replay(Reducer, initial, msgs)
	if err != nil {
		return err
	}

	v := NewView(format)
	show := func(seq uint64, m *msg.Msg, s vals.Record) {
		if format != Text {
			fmt.Fprint(fds[1], v.Render(s))
		} else if m == nil {
			fmt.Fprintf(fds[1], "%d: %s", seq, v.Render(s))
		} else {
			fmt.Fprintf(fds[1], "%d: %s => %s", seq, m.Repr(), v.Render(s))
		}
	}
	show(first, nil, initial)
	for i, s := range states {
		show(first+uint64(i)+1, &msgs[i], s)
	}

	final := initial
	if len(states) > 0 {
		final = states[len(states)-1]
	}
	restored, seq, err := store.Restore[vals.Record](st, f.Name, Messages, Reducer)
	if err != nil {
		return err
	}
	if seq != first+uint64(len(states)) || !vals.Equal(final, restored) {
		return fmt.Errorf("session %s: replay ends with %s at %d, but the latest snapshot gives %s at %d",
			f.Name, Render(final), first+uint64(len(states)), Render(restored), seq)
	}
	return nil
}

// loadSession returns the first snapshot of a session, its sequence number
// and all messages recorded after it.
func loadSession(st storedefs.Store, name string) (uint64, vals.Record, []msg.Msg, error) {
	seqs, err := st.SnapshotSeqs(name)
	if err != nil {
		return 0, vals.Record{}, nil, err
	}
	if len(seqs) == 0 {
		names, err := st.Names()
		if err != nil {
			return 0, vals.Record{}, nil, err
		}
		if len(names) == 0 {
			return 0, vals.Record{}, nil, fmt.Errorf("no session named %s; the database has no sessions", name)
		}
		return 0, vals.Record{}, nil, fmt.Errorf("no session named %s; recorded sessions are %s",
			name, strings.Join(names, ", "))
	}
	first := seqs[0]
	data, err := st.Snapshot(name, first)
	if err != nil {
		return 0, vals.Record{}, nil, err
	}
	v, err := codec.DecodeYAML(data)
	if err != nil {
		return 0, vals.Record{}, nil, fmt.Errorf("snapshot %d of %s: %w", first, name, err)
	}
	initial, ok := v.(vals.Record)
	if !ok {
		return 0, vals.Record{}, nil, fmt.Errorf("snapshot %d of %s: not a record", first, name)
	}
	entries, err := st.Messages(name, first+1)
	if err != nil {
		return 0, vals.Record{}, nil, err
	}
	msgs := make([]msg.Msg, len(entries))
	for i, entry := range entries {
		if want := first + uint64(i) + 1; entry.Seq != want {
			return 0, vals.Record{}, nil, fmt.Errorf("journal of %s: missing message %d", name, want)
		}
		msgs[i], err = codec.DecodeMsg(Messages, entry.Data)
		if err != nil {
			return 0, vals.Record{}, nil, fmt.Errorf("journal of %s at %d: %w", name, entry.Seq, err)
		}
	}
	return first, initial, msgs, nil
}
