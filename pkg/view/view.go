// Package view binds rendering functions to a dispatch loop.
//
// A view is pure on both sides: Render derives a render tree from a state, and
// Handle turns a named user action into a message. Neither touches the state;
// new states only come back through the loop.
package view

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"src.mvu.sh/pkg/msg"
)

// Contract is what a loop needs from a view.
type Contract[S, T any] interface {
	// Render returns the render tree for a state.
	Render(s S) T
	// Handle translates a user action into a message, given the state the
	// user was looking at.
	Handle(s S, action string, args ...string) (msg.Msg, error)
}

// Action translates one named user action into a message.
type Action[S any] func(s S, args []string) (msg.Msg, error)

// Const returns an Action that always produces m and takes no arguments.
func Const[S any](m msg.Msg) Action[S] {
	return func(_ S, args []string) (msg.Msg, error) {
		if len(args) > 0 {
			return msg.Msg{}, fmt.Errorf("takes no arguments, got %d", len(args))
		}
		return m, nil
	}
}

// View implements Contract from a render function and a table of actions.
type View[S, T any] struct {
	render  func(S) T
	actions map[string]Action[S]
}

// New returns a View with the given render function and no actions.
func New[S, T any](render func(S) T) *View[S, T] {
	return &View[S, T]{render, make(map[string]Action[S])}
}

// On registers an action and returns the view.
func (v *View[S, T]) On(name string, a Action[S]) *View[S, T] {
	v.actions[name] = a
	return v
}

// Actions returns the names of all registered actions, sorted.
func (v *View[S, T]) Actions() []string {
	names := make([]string, 0, len(v.actions))
	for name := range v.actions {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (v *View[S, T]) Render(s S) T { return v.render(s) }

func (v *View[S, T]) Handle(s S, action string, args ...string) (msg.Msg, error) {
	a, ok := v.actions[action]
	if !ok {
		return msg.Msg{}, &UnknownAction{Name: action, Valid: v.Actions()}
	}
	m, err := a(s, args)
	if err != nil {
		return msg.Msg{}, fmt.Errorf("%s: %w", action, err)
	}
	return m, nil
}

// UnknownAction is returned by Handle for an action that was not registered.
type UnknownAction struct {
	Name  string
	Valid []string
}

func (e *UnknownAction) Error() string {
	return fmt.Sprintf("unknown action %q, valid actions are %s", e.Name, strings.Join(e.Valid, ", "))
}

// Source is the side of a dispatch loop a binding uses. *dispatch.Loop
// satisfies it.
type Source[S any] interface {
	Current() S
	Dispatch(ctx context.Context, m msg.Msg) (S, error)
	Subscribe(f func(S)) (unsubscribe func())
}

// Binding connects a Contract to a Source. Every state published by the
// source is rendered and passed to the output function.
type Binding[S, T any] struct {
	src         Source[S]
	c           Contract[S, T]
	unsubscribe func()
}

// Bind renders the current state of src immediately, and every later state as
// it is published. out is called from the goroutine running the loop, except
// for the first call, which happens before Bind returns.
func Bind[S, T any](src Source[S], c Contract[S, T], out func(T)) *Binding[S, T] {
	out(c.Render(src.Current()))
	unsubscribe := src.Subscribe(func(s S) { out(c.Render(s)) })
	return &Binding[S, T]{src, c, unsubscribe}
}

// Do handles a user action against the current state and dispatches the
// resulting message. It returns after the new state has been rendered.
func (b *Binding[S, T]) Do(ctx context.Context, action string, args ...string) error {
	m, err := b.c.Handle(b.src.Current(), action, args...)
	if err != nil {
		return err
	}
	_, err = b.src.Dispatch(ctx, m)
	return err
}

// Close stops rendering published states.
func (b *Binding[S, T]) Close() { b.unsubscribe() }
