// Package list implements a persistent singly-linked list.
package list

// List is a persistent list. Cons shares the whole receiver with the returned
// list, so prepending is O(1) and old lists stay valid.
type List[T any] interface {
	// Len returns the number of values in the list.
	Len() int
	// Cons returns a new list with an additional value in the front.
	Cons(T) List[T]
	// First returns the first value in the list. It returns the zero value if
	// the list is empty.
	First() T
	// Rest returns the list after the first value. It returns the receiver if
	// the list is empty.
	Rest() List[T]
	// Take returns a list of the first n values.
	Take(n int) List[T]
}

// Empty returns an empty list.
func Empty[T any]() List[T] {
	return &list[T]{}
}

type list[T any] struct {
	first T
	rest  *list[T]
	count int
}

func (l *list[T]) Len() int {
	return l.count
}

func (l *list[T]) Cons(val T) List[T] {
	return &list[T]{val, l, l.count + 1}
}

func (l *list[T]) First() T {
	return l.first
}

func (l *list[T]) Rest() List[T] {
	if l.count == 0 {
		return l
	}
	return l.rest
}

func (l *list[T]) Take(n int) List[T] {
	if n >= l.count {
		return l
	}
	if n <= 0 {
		return &list[T]{}
	}
	// The prefix has to be copied; its tail end cannot be shared.
	vals := make([]T, 0, n)
	for p := l; len(vals) < n; p = p.rest {
		vals = append(vals, p.first)
	}
	var ret List[T] = &list[T]{}
	for i := len(vals) - 1; i >= 0; i-- {
		ret = ret.Cons(vals[i])
	}
	return ret
}

// ToSlice returns the values of l from first to last.
func ToSlice[T any](l List[T]) []T {
	s := make([]T, 0, l.Len())
	for ; l.Len() > 0; l = l.Rest() {
		s = append(s, l.First())
	}
	return s
}
