package store

import (
	"errors"
	"fmt"
	"sync"

	"src.mvu.sh/pkg/codec"
	"src.mvu.sh/pkg/dispatch"
	"src.mvu.sh/pkg/msg"
	"src.mvu.sh/pkg/store/storedefs"
)

// Recorder writes the transitions of a dispatch loop to a store: every
// message to the journal, and the state to a snapshot every so many messages.
//
// Journal sequence numbers continue from base, so a program restored at
// sequence number n records its next message as n+1.
type Recorder[S any] struct {
	st    storedefs.Store
	name  string
	base  uint64
	every uint64

	mu  sync.Mutex
	err error
}

// NewRecorder creates a Recorder. If every is 0, no snapshots are written
// after the initial one.
func NewRecorder[S any](st storedefs.Store, name string, base, every uint64) *Recorder[S] {
	return &Recorder[S]{st: st, name: name, base: base, every: every}
}

// Attach writes the initial snapshot of lp, unless one exists at base, and
// starts recording its transitions. It returns a function that stops
// recording. It must be called before lp starts running.
func (r *Recorder[S]) Attach(lp *dispatch.Loop[S]) (detach func(), err error) {
	if _, err := r.st.Snapshot(r.name, r.base); errors.Is(err, storedefs.ErrNoSnapshot) {
		if err := r.snapshot(r.base, lp.Current()); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}
	return lp.Observe(r.Observe), nil
}

// Observe records one transition. Errors are kept and reported by Err;
// recording stops after the first one.
func (r *Recorder[S]) Observe(tr dispatch.Transition[S]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return
	}
	seq := r.base + tr.Seq
	data, err := codec.EncodeMsg(tr.Msg)
	if err == nil {
		err = r.st.AppendMessage(r.name, seq, data)
	}
	if err == nil && r.every > 0 && tr.Seq%r.every == 0 {
		err = r.snapshot(seq, tr.State)
	}
	if err != nil {
		logger.Printf("recording %s at %d: %v", r.name, seq, err)
		r.err = err
	}
}

func (r *Recorder[S]) snapshot(seq uint64, state S) error {
	data, err := codec.EncodeYAML(state)
	if err != nil {
		return fmt.Errorf("snapshot %d of %s: %w", seq, r.name, err)
	}
	return r.st.PutSnapshot(r.name, seq, data)
}

// Err returns the first error met while recording.
func (r *Recorder[S]) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Restore rebuilds the state of a program from its latest snapshot and the
// journal entries after it. It returns the state and its sequence number.
func Restore[S any](st storedefs.Store, name string, set *msg.Set, r dispatch.Reducer[S]) (S, uint64, error) {
	var zero S
	snap, err := st.LatestSnapshot(name)
	if err != nil {
		return zero, 0, err
	}
	v, err := codec.DecodeYAML(snap.Data)
	if err != nil {
		return zero, 0, fmt.Errorf("snapshot %d of %s: %w", snap.Seq, name, err)
	}
	state, ok := v.(S)
	if !ok {
		return zero, 0, fmt.Errorf("snapshot %d of %s: decoded to %T, want %T", snap.Seq, name, v, zero)
	}
	entries, err := st.Messages(name, snap.Seq+1)
	if err != nil {
		return zero, 0, err
	}
	msgs := make([]msg.Msg, len(entries))
	for i, entry := range entries {
		if entry.Seq != snap.Seq+uint64(i)+1 {
			return zero, 0, fmt.Errorf("journal of %s: missing message %d", name, snap.Seq+uint64(i)+1)
		}
		msgs[i], err = codec.DecodeMsg(set, entry.Data)
		if err != nil {
			return zero, 0, fmt.Errorf("journal of %s at %d: %w", name, entry.Seq, err)
		}
	}
	states, err := dispatch.Replay(r, state, msgs)
	if err != nil {
		return zero, 0, err
	}
	if len(states) == 0 {
		return state, snap.Seq, nil
	}
	return states[len(states)-1], snap.Seq + uint64(len(states)), nil
}
