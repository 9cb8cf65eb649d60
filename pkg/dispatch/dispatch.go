// Package dispatch implements the loop that owns an application's state.
//
// A Loop holds the current state, receives messages from any number of
// goroutines and applies them one at a time with a reducer, in the order they
// were received. After each message it publishes the new state to its
// subscribers. Messages are never reordered or coalesced, and every message
// accepted before Stop is called or Run's context is done gets applied.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"src.mvu.sh/pkg/logutil"
	"src.mvu.sh/pkg/msg"
	"src.mvu.sh/pkg/persistent/list"
	"src.mvu.sh/pkg/vals"
)

var logger = logutil.GetLogger("[dispatch] ")

var (
	// ErrStopped is returned when a message is submitted after Stop or after
	// the loop has stopped, and by Run when called on a stopped loop.
	ErrStopped = errors.New("loop stopped")
	// ErrRunning is returned by Run when the loop is already running.
	ErrRunning = errors.New("loop already running")
)

// Reducer computes the next state from a message and the current state.
// *reducer.Reducer satisfies this interface.
type Reducer[S any] interface {
	Reduce(m msg.Msg, s S) (S, error)
}

// ReducerFunc adapts a function to the Reducer interface.
type ReducerFunc[S any] func(m msg.Msg, s S) (S, error)

// Reduce calls f.
func (f ReducerFunc[S]) Reduce(m msg.Msg, s S) (S, error) { return f(m, s) }

// Transition is the result of applying one message.
type Transition[S any] struct {
	// Position of the message, starting from 1.
	Seq   uint64
	Msg   msg.Msg
	State S
}

type request[S any] struct {
	m     msg.Msg
	reply chan result[S]
}

type result[S any] struct {
	state S
	err   error
}

type subscriber[S any] struct {
	id int
	f  func(Transition[S])
}

// Loop is a dispatch loop. It is safe for concurrent use.
type Loop[S any] struct {
	cfg     config
	reducer Reducer[S]
	inputCh chan request[S]
	started atomic.Bool
	doneCh  chan struct{}

	// Guards acceptance of messages. Once stopping is set, no more sends are
	// admitted, and stopCh is closed as soon as the admitted ones finish.
	intakeMutex sync.Mutex
	stopping    bool
	inflight    sync.WaitGroup
	stopCh      chan struct{}

	// Written only by the goroutine executing Run.
	stateMutex sync.RWMutex
	current    S
	seq        uint64
	history    list.List[Transition[S]]

	subsMutex   sync.Mutex
	subscribers []subscriber[S]
	nextSubID   int
}

// New creates a Loop with the given initial state and reducer. The loop does
// nothing until Run is called, although messages may already be submitted.
func New[S any](init S, r Reducer[S], opts ...Option) *Loop[S] {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Loop[S]{
		cfg:     cfg,
		reducer: r,
		inputCh: make(chan request[S], cfg.buffer),
		doneCh:  make(chan struct{}),
		stopCh:  make(chan struct{}),
		current: init,
		history: list.Empty[Transition[S]](),
	}
}

// Current returns the current state.
func (lp *Loop[S]) Current() S {
	lp.stateMutex.RLock()
	defer lp.stateMutex.RUnlock()
	return lp.current
}

// Seq returns the number of messages applied so far.
func (lp *Loop[S]) Seq() uint64 {
	lp.stateMutex.RLock()
	defer lp.stateMutex.RUnlock()
	return lp.seq
}

// History returns the most recent transitions, newest first, up to the number
// set with WithHistory. The returned list is immutable and is not affected by
// later messages.
func (lp *Loop[S]) History() list.List[Transition[S]] {
	lp.stateMutex.RLock()
	defer lp.stateMutex.RUnlock()
	return lp.history.Take(lp.cfg.history)
}

// Done returns a channel that is closed when Run returns.
func (lp *Loop[S]) Done() <-chan struct{} { return lp.doneCh }

// Subscribe registers f to be called with the new state after each applied
// message. It returns a function that cancels the subscription.
func (lp *Loop[S]) Subscribe(f func(S)) (unsubscribe func()) {
	return lp.Observe(func(tr Transition[S]) { f(tr.State) })
}

// Observe is like Subscribe, but f receives the whole Transition.
//
// Subscribers are called from the goroutine executing Run, one at a time and
// in the order they were registered. They must not call Dispatch, and should
// not call Submit when the buffer may be full.
func (lp *Loop[S]) Observe(f func(Transition[S])) (unsubscribe func()) {
	lp.subsMutex.Lock()
	defer lp.subsMutex.Unlock()
	id := lp.nextSubID
	lp.nextSubID++
	lp.subscribers = append(lp.subscribers, subscriber[S]{id, f})
	lp.cfg.logger.Printf("%s: subscriber %d added", lp.cfg.name, id)
	return func() {
		lp.subsMutex.Lock()
		defer lp.subsMutex.Unlock()
		for i, sub := range lp.subscribers {
			if sub.id == id {
				lp.subscribers = append(lp.subscribers[:i:i], lp.subscribers[i+1:]...)
				return
			}
		}
	}
}

// Submit enqueues a message. It blocks while the buffer is full, and returns
// ErrStopped if Stop has been called or the loop has stopped. A nil error
// means the message will be applied, unless the reducer fails on an earlier
// one.
func (lp *Loop[S]) Submit(m msg.Msg) error {
	return lp.SubmitContext(context.Background(), m)
}

// SubmitContext is like Submit, but gives up when ctx is done.
func (lp *Loop[S]) SubmitContext(ctx context.Context, m msg.Msg) error {
	return lp.send(ctx, request[S]{m: m})
}

// Dispatch submits a message and waits until it has been applied and
// published. It returns the resulting state. If the reducer fails, Dispatch
// returns its error and the loop stops.
//
// If ctx is done after the message was enqueued, Dispatch returns ctx.Err()
// but the message is still applied.
func (lp *Loop[S]) Dispatch(ctx context.Context, m msg.Msg) (S, error) {
	var zero S
	reply := make(chan result[S], 1)
	if err := lp.send(ctx, request[S]{m: m, reply: reply}); err != nil {
		return zero, err
	}
	select {
	case r := <-reply:
		return r.state, r.err
	case <-lp.doneCh:
		// The reply is sent before doneCh is closed.
		select {
		case r := <-reply:
			return r.state, r.err
		default:
			return zero, ErrStopped
		}
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Stop asks the loop to stop after applying all messages submitted before it.
// Messages submitted after Stop are rejected with ErrStopped. Stop does not
// wait for the loop to stop; use Done for that. Calling Stop more than once
// returns ErrStopped.
func (lp *Loop[S]) Stop() error {
	if !lp.closeIntake() {
		return ErrStopped
	}
	return nil
}

// closeIntake stops admitting messages and reports whether it was the first
// call to do so.
func (lp *Loop[S]) closeIntake() bool {
	lp.intakeMutex.Lock()
	defer lp.intakeMutex.Unlock()
	if lp.stopping {
		return false
	}
	lp.stopping = true
	go func() {
		lp.inflight.Wait()
		close(lp.stopCh)
	}()
	return true
}

func (lp *Loop[S]) send(ctx context.Context, req request[S]) error {
	lp.intakeMutex.Lock()
	if lp.stopping {
		lp.intakeMutex.Unlock()
		return ErrStopped
	}
	lp.inflight.Add(1)
	lp.intakeMutex.Unlock()
	defer lp.inflight.Done()

	select {
	case lp.inputCh <- req:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run runs the loop until ctx is done, Stop is called or the reducer fails. It
// returns nil in the first two cases and the reducer's error in the last; a
// reducer error is a programming error and the loop cannot continue after it.
//
// When Stop is called or ctx is done, Run first applies every message that
// was accepted before. After a reducer failure, the messages still queued are
// discarded and their Dispatch callers get ErrStopped.
//
// Run is fully serial: messages are reduced and subscribers are called from
// the calling goroutine only. Calling Run on a loop that is running returns
// ErrRunning, and on a loop that has stopped returns ErrStopped.
func (lp *Loop[S]) Run(ctx context.Context) error {
	if !lp.started.CompareAndSwap(false, true) {
		select {
		case <-lp.doneCh:
			return ErrStopped
		default:
			return ErrRunning
		}
	}
	defer close(lp.doneCh)
	lp.cfg.logger.Printf("%s: started", lp.cfg.name)
	how := "stopped"
	ctxDone := ctx.Done()
	for {
		select {
		case req := <-lp.inputCh:
			if err := lp.apply(req); err != nil {
				return lp.fail(err)
			}
		case <-ctxDone:
			// A nil channel never becomes ready again.
			ctxDone = nil
			how = "cancelled"
			lp.closeIntake()
		case <-lp.stopCh:
			// Every accepted message is now in inputCh.
			for {
				select {
				case req := <-lp.inputCh:
					if err := lp.apply(req); err != nil {
						return lp.fail(err)
					}
				default:
					lp.cfg.logger.Printf("%s: %s after %d messages", lp.cfg.name, how, lp.Seq())
					return nil
				}
			}
		}
	}
}

// fail logs err and discards the remaining messages.
func (lp *Loop[S]) fail(err error) error {
	lp.cfg.logger.Printf("%s: %v", lp.cfg.name, err)
	lp.closeIntake()
	discard := func(req request[S]) {
		if req.reply != nil {
			req.reply <- result[S]{lp.current, ErrStopped}
		}
	}
	for {
		select {
		case req := <-lp.inputCh:
			discard(req)
		case <-lp.stopCh:
			for {
				select {
				case req := <-lp.inputCh:
					discard(req)
				default:
					return err
				}
			}
		}
	}
}

func (lp *Loop[S]) apply(req request[S]) error {
	next, err := lp.reducer.Reduce(req.m, lp.current)
	if err != nil {
		err = &ReduceError{Seq: lp.seq + 1, Msg: req.m, Err: err}
		if req.reply != nil {
			req.reply <- result[S]{lp.current, err}
		}
		return err
	}

	lp.stateMutex.Lock()
	lp.seq++
	tr := Transition[S]{lp.seq, req.m, next}
	lp.current = next
	if lp.cfg.history > 0 {
		lp.history = lp.history.Cons(tr)
		// Trimming copies the kept prefix, so only trim at twice the limit.
		if lp.history.Len() >= 2*lp.cfg.history {
			lp.history = lp.history.Take(lp.cfg.history)
		}
	}
	lp.stateMutex.Unlock()

	lp.publish(tr)
	if req.reply != nil {
		req.reply <- result[S]{next, nil}
	}
	return nil
}

func (lp *Loop[S]) publish(tr Transition[S]) {
	lp.subsMutex.Lock()
	subs := lp.subscribers
	lp.subsMutex.Unlock()
	for _, sub := range subs {
		sub.f(tr)
	}
}

// ReduceError wraps an error returned by the reducer.
type ReduceError struct {
	Seq uint64
	Msg msg.Msg
	Err error
}

func (e *ReduceError) Error() string {
	return fmt.Sprintf("reducing message %d (%s): %v", e.Seq, vals.Repr(e.Msg), e.Err)
}

func (e *ReduceError) Unwrap() error { return e.Err }

// Replay applies msgs to init in order and returns the state after each
// message. It stops at the first error, returning the states computed so far
// and a *ReduceError.
func Replay[S any](r Reducer[S], init S, msgs []msg.Msg) ([]S, error) {
	states := make([]S, 0, len(msgs))
	s := init
	for i, m := range msgs {
		next, err := r.Reduce(m, s)
		if err != nil {
			return states, &ReduceError{Seq: uint64(i + 1), Msg: m, Err: err}
		}
		s = next
		states = append(states, s)
	}
	return states, nil
}
