// Package vector implements a persistent vector.
//
// The layout follows Clojure's PersistentVector: a 32-way trie of leaves plus
// a tail buffer holding the last (up to) 32 elements. For an introduction to
// the internals, see
// https://hypirion.com/musings/understanding-persistent-vector-pt-1.
package vector

const (
	chunkBits  = 5
	nodeSize   = 1 << chunkBits
	tailMaxLen = nodeSize
	chunkMask  = nodeSize - 1
)

// Vector is a persistent sequential container. It supports O(1) lookup by
// index, modification by index, and insertion and removal at the end. Every
// modification returns a new Vector sharing all untouched nodes with the
// original; a Vector is never changed after it is created, so it is safe for
// concurrent use.
type Vector[T any] interface {
	// Len returns the length of the vector.
	Len() int
	// Index returns the i-th element of the vector, if it exists. The second
	// return value indicates whether the element exists.
	Index(i int) (T, bool)
	// Assoc returns an almost identical Vector, with the i-th element
	// replaced. If the index is smaller than 0 or greater than the length of
	// the vector, it returns nil. If the index is equal to the size of the
	// vector, it is equivalent to Conj.
	Assoc(i int, val T) Vector[T]
	// Conj returns an almost identical Vector, with an additional element
	// appended to the end.
	Conj(val T) Vector[T]
	// Pop returns an almost identical Vector, with the last element removed. It
	// returns nil if the vector is already empty.
	Pop() Vector[T]
	// SubVector returns a subvector containing the elements from i up to but
	// not including j. It returns nil if the range is invalid.
	SubVector(i, j int) Vector[T]
	// Iterator returns an iterator over the vector.
	Iterator() Iterator[T]
}

// Iterator is an iterator over vector elements. It can be used like this:
//
//	for it := v.Iterator(); it.HasElem(); it.Next() {
//	    elem := it.Elem()
//	    // do something with elem...
//	}
type Iterator[T any] interface {
	// Elem returns the element at the current position.
	Elem() T
	// HasElem returns whether the iterator is pointing to an element.
	HasElem() bool
	// Next moves the iterator to the next position.
	Next()
}

// Empty returns an empty Vector.
func Empty[T any]() Vector[T] {
	return &vector[T]{}
}

// FromSlice returns a Vector holding the elements of s in order. The slice is
// not retained.
func FromSlice[T any](s []T) Vector[T] {
	var v Vector[T] = &vector[T]{}
	for _, x := range s {
		v = v.Conj(x)
	}
	return v
}

type vector[T any] struct {
	count int
	// height of the trie; 0 when root is a leaf (or nil).
	height uint
	root   *node[T]
	tail   []T
}

// node is either an internal node (kids non-nil) or a leaf (elems non-nil).
// Both slices always have length nodeSize when present.
type node[T any] struct {
	kids  []*node[T]
	elems []T
}

func newInternal[T any]() *node[T] {
	return &node[T]{kids: make([]*node[T], nodeSize)}
}

func newLeaf[T any](s []T) *node[T] {
	elems := make([]T, nodeSize)
	copy(elems, s)
	return &node[T]{elems: elems}
}

func (n *node[T]) clone() *node[T] {
	if n.kids != nil {
		return &node[T]{kids: append([]*node[T](nil), n.kids...)}
	}
	return &node[T]{elems: append([]T(nil), n.elems...)}
}

func (v *vector[T]) Len() int {
	return v.count
}

// treeSize returns the number of elements stored in the trie (as opposed to
// the tail). It is always a multiple of nodeSize.
func (v *vector[T]) treeSize() int {
	if v.count < tailMaxLen {
		return 0
	}
	return ((v.count - 1) >> chunkBits) << chunkBits
}

// leafFor returns the slice holding the i-th element. The index must be in
// bound; the element is at leafFor(i)[i&chunkMask].
func (v *vector[T]) leafFor(i int) []T {
	if i >= v.treeSize() {
		return v.tail
	}
	n := v.root
	for shift := v.height * chunkBits; shift > 0; shift -= chunkBits {
		n = n.kids[(i>>shift)&chunkMask]
	}
	return n.elems
}

func (v *vector[T]) Index(i int) (T, bool) {
	if i < 0 || i >= v.count {
		var zero T
		return zero, false
	}
	return v.leafFor(i)[i&chunkMask], true
}

func (v *vector[T]) Assoc(i int, val T) Vector[T] {
	if i < 0 || i > v.count {
		return nil
	} else if i == v.count {
		return v.Conj(val)
	}
	if i >= v.treeSize() {
		newTail := append([]T(nil), v.tail...)
		newTail[i&chunkMask] = val
		return &vector[T]{v.count, v.height, v.root, newTail}
	}
	return &vector[T]{v.count, v.height, assocIn(v.height, v.root, i, val), v.tail}
}

// assocIn returns a copy of the path from n to the i-th element with that
// element replaced. Nodes off the path are shared.
func assocIn[T any](height uint, n *node[T], i int, val T) *node[T] {
	m := n.clone()
	if height == 0 {
		m.elems[i&chunkMask] = val
	} else {
		sub := (i >> (height * chunkBits)) & chunkMask
		m.kids[sub] = assocIn(height-1, n.kids[sub], i, val)
	}
	return m
}

func (v *vector[T]) Conj(val T) Vector[T] {
	if v.count-v.treeSize() < tailMaxLen {
		newTail := make([]T, len(v.tail)+1)
		copy(newTail, v.tail)
		newTail[len(v.tail)] = val
		return &vector[T]{v.count + 1, v.height, v.root, newTail}
	}
	// The tail is full; move it into the trie.
	tailNode := newLeaf(v.tail)
	newHeight := v.height
	var newRoot *node[T]
	if (v.count >> chunkBits) > (1 << (v.height * chunkBits)) {
		// The trie is full at this height; grow a level.
		newRoot = newInternal[T]()
		newRoot.kids[0] = v.root
		newRoot.kids[1] = newPath(v.height, tailNode)
		newHeight++
	} else {
		newRoot = v.pushTail(v.height, v.root, tailNode)
	}
	return &vector[T]{v.count + 1, newHeight, newRoot, []T{val}}
}

// pushTail returns a copy of n with the leaf appended at the rightmost free
// position.
func (v *vector[T]) pushTail(height uint, n, leaf *node[T]) *node[T] {
	if height == 0 {
		return leaf
	}
	idx := ((v.count - 1) >> (height * chunkBits)) & chunkMask
	m := n.clone()
	if child := n.kids[idx]; child == nil {
		m.kids[idx] = newPath(height-1, leaf)
	} else {
		m.kids[idx] = v.pushTail(height-1, child, leaf)
	}
	return m
}

// newPath wraps leaf in a left-branching chain of the given height.
func newPath[T any](height uint, leaf *node[T]) *node[T] {
	if height == 0 {
		return leaf
	}
	ret := newInternal[T]()
	ret.kids[0] = newPath(height-1, leaf)
	return ret
}

func (v *vector[T]) Pop() Vector[T] {
	switch v.count {
	case 0:
		return nil
	case 1:
		return &vector[T]{}
	}
	if v.count-v.treeSize() > 1 {
		return &vector[T]{v.count - 1, v.height, v.root, v.tail[:len(v.tail)-1:len(v.tail)-1]}
	}
	// The tail holds a single element; the last leaf of the trie becomes the
	// new tail.
	newTail := v.leafFor(v.count - 2)
	if v.height == 0 {
		return &vector[T]{v.count - 1, 0, nil, newTail}
	}
	newRoot := v.popTail(v.height, v.root)
	newHeight := v.height
	if newRoot.kids[1] == nil {
		newRoot = newRoot.kids[0]
		newHeight--
	}
	return &vector[T]{v.count - 1, newHeight, newRoot, newTail}
}

// popTail returns a copy of the internal node n with its rightmost leaf
// removed, or nil if nothing remains.
func (v *vector[T]) popTail(level uint, n *node[T]) *node[T] {
	idx := ((v.count - 2) >> (level * chunkBits)) & chunkMask
	if level > 1 {
		newChild := v.popTail(level-1, n.kids[idx])
		if newChild == nil && idx == 0 {
			return nil
		}
		m := n.clone()
		m.kids[idx] = newChild
		return m
	}
	if idx == 0 {
		return nil
	}
	m := n.clone()
	m.kids[idx] = nil
	return m
}

func (v *vector[T]) SubVector(begin, end int) Vector[T] {
	if begin < 0 || begin > end || end > v.count {
		return nil
	}
	return &subVector[T]{v, begin, end}
}

func (v *vector[T]) Iterator() Iterator[T] {
	return newIterator(v, 0, v.count)
}

type subVector[T any] struct {
	v     *vector[T]
	begin int
	end   int
}

func (s *subVector[T]) Len() int {
	return s.end - s.begin
}

func (s *subVector[T]) Index(i int) (T, bool) {
	if i < 0 || s.begin+i >= s.end {
		var zero T
		return zero, false
	}
	return s.v.Index(s.begin + i)
}

func (s *subVector[T]) Assoc(i int, val T) Vector[T] {
	if i < 0 || s.begin+i > s.end {
		return nil
	} else if s.begin+i == s.end {
		return s.Conj(val)
	}
	return s.v.Assoc(s.begin+i, val).SubVector(s.begin, s.end)
}

func (s *subVector[T]) Conj(val T) Vector[T] {
	return s.v.Assoc(s.end, val).SubVector(s.begin, s.end+1)
}

func (s *subVector[T]) Pop() Vector[T] {
	switch s.Len() {
	case 0:
		return nil
	case 1:
		return &vector[T]{}
	default:
		return s.v.SubVector(s.begin, s.end-1)
	}
}

func (s *subVector[T]) SubVector(i, j int) Vector[T] {
	if i < 0 || i > j || s.begin+j > s.end {
		return nil
	}
	return s.v.SubVector(s.begin+i, s.begin+j)
}

func (s *subVector[T]) Iterator() Iterator[T] {
	return newIterator(s.v, s.begin, s.end)
}

// iterator walks one leaf at a time, looking up the next leaf whenever the
// index crosses a chunk boundary.
type iterator[T any] struct {
	v     *vector[T]
	index int
	end   int
	leaf  []T
}

func newIterator[T any](v *vector[T], begin, end int) *iterator[T] {
	it := &iterator[T]{v: v, index: begin, end: end}
	if begin < end {
		it.leaf = v.leafFor(begin)
	}
	return it
}

func (it *iterator[T]) Elem() T {
	return it.leaf[it.index&chunkMask]
}

func (it *iterator[T]) HasElem() bool {
	return it.index < it.end
}

func (it *iterator[T]) Next() {
	it.index++
	if it.index < it.end && it.index&chunkMask == 0 {
		it.leaf = it.v.leafFor(it.index)
	}
}
