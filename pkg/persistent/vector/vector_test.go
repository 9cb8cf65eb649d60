package vector

import (
	"math/rand"
	"testing"
)

// Nx is the minimum number of elements for the internal tree of the vector to
// be x levels deep.
const (
	N1 = tailMaxLen + 1                              // 33
	N2 = nodeSize + tailMaxLen + 1                   // 65
	N3 = nodeSize*nodeSize + tailMaxLen + 1          // 1057
	N4 = nodeSize*nodeSize*nodeSize + tailMaxLen + 1 // 32801
)

func TestVector(t *testing.T) {
	const (
		subst = "233"
		n     = N4
	)

	v := testConj(t, n)
	testIndex(t, v, 0, n)
	testAssoc(t, v, subst)
	testIterator(t, v.Iterator(), 0, n)
	testPop(t, v)
}

// testConj creates a vector containing 0...n-1 with Conj, and ensures that the
// length of the old and new vectors are expected after each Conj. It returns
// the created vector.
func testConj(t *testing.T, n int) Vector[any] {
	v := Empty[any]()
	for i := 0; i < n; i++ {
		oldv := v
		v = v.Conj(i)

		if count := oldv.Len(); count != i {
			t.Errorf("oldv.Len() == %v, want %v", count, i)
		}
		if count := v.Len(); count != i+1 {
			t.Errorf("v.Len() == %v, want %v", count, i+1)
		}
	}
	return v
}

// testIndex tests Index, assuming that the vector contains begin...int-1.
func testIndex(t *testing.T, v Vector[any], begin, end int) {
	t.Helper()
	n := v.Len()
	for i := 0; i < n; i++ {
		elem, _ := v.Index(i)
		if elem != i {
			t.Errorf("v.Index(%v) == %v, want %v", i, elem, i)
		}
	}
	for _, i := range []int{-2, -1, n, n + 1, n * 2} {
		if elem, ok := v.Index(i); ok {
			t.Errorf("v.Index(%d) == (%v, true), want (nil, false)", i, elem)
		}
	}
}

// testIterator tests the iterator, assuming that the result is begin...end-1.
func testIterator(t *testing.T, it Iterator[any], begin, end int) {
	t.Helper()
	i := begin
	for ; it.HasElem(); it.Next() {
		elem := it.Elem()
		if elem != i {
			t.Errorf("iterator produce %v, want %v", elem, i)
		}
		i++
	}
	if i != end {
		t.Errorf("iterator produces up to %v, want %v", i, end)
	}
}

// testAssoc tests Assoc by replacing each element.
func testAssoc(t *testing.T, v Vector[any], subst any) {
	t.Helper()
	n := v.Len()
	for i := 0; i <= n; i++ {
		oldv := v
		v = v.Assoc(i, subst)

		if i < n {
			elem, _ := oldv.Index(i)
			if elem != i {
				t.Errorf("oldv.Index(%v) == %v, want %v", i, elem, i)
			}
		}

		elem, _ := v.Index(i)
		if elem != subst {
			t.Errorf("v.Index(%v) == %v, want %v", i, elem, subst)
		}
	}

	n++
	for _, i := range []int{-1, n + 1, n + 2, n * 2} {
		newv := v.Assoc(i, subst)
		if newv != nil {
			t.Errorf("v.Assoc(%d) = %v, want nil", i, newv)
		}
	}
}

// testPop tests Pop by removing each element.
func testPop(t *testing.T, v Vector[any]) {
	t.Helper()
	n := v.Len()
	for i := 0; i < n; i++ {
		oldv := v
		v = v.Pop()

		if count := oldv.Len(); count != n-i {
			t.Errorf("oldv.Len() == %v, want %v", count, n-i)
		}
		if count := v.Len(); count != n-i-1 {
			t.Errorf("v.Len() == %v, want %v", count, n-i-1)
		}
	}
	newv := v.Pop()
	if newv != nil {
		t.Errorf("v.Pop() = %v, want nil", newv)
	}
}

func TestPop_KeepsRemainingElements(t *testing.T) {
	for _, n := range []int{N1, N2, N3} {
		v := testConj(t, n)
		for v.Len() > 0 {
			v = v.Pop()
			testIndex(t, v, 0, v.Len())
		}
	}
}

func TestAssoc_SharesUntouchedLeaves(t *testing.T) {
	v := testConj(t, N3).(*vector[any])
	w := v.Assoc(0, "x").(*vector[any])

	if v.root.kids[0] == w.root.kids[0] {
		t.Errorf("path to the changed element is shared, want copied")
	}
	for i := 1; i < nodeSize; i++ {
		if v.root.kids[i] != w.root.kids[i] {
			t.Errorf("subtree %d is copied, want shared", i)
		}
	}
	if &v.tail[0] != &w.tail[0] {
		t.Errorf("tail is copied, want shared")
	}
}

func TestFromSlice(t *testing.T) {
	s := make([]any, N2)
	for i := range s {
		s[i] = i
	}
	v := FromSlice(s)
	testIndex(t, v, 0, N2)
	s[0] = "changed"
	if elem, _ := v.Index(0); elem != 0 {
		t.Errorf("vector retains the slice passed to FromSlice")
	}
}

func TestSubVector(t *testing.T) {
	v := Empty[any]()
	for i := 0; i < 10; i++ {
		v = v.Conj(i)
	}

	sv := v.SubVector(0, 4)
	testIndex(t, sv, 0, 4)
	testAssoc(t, sv, "233")
	testIterator(t, sv.Iterator(), 0, 4)
	testPop(t, sv)

	sv = v.SubVector(1, 4)
	if !checkVector(sv, 1, 2, 3) {
		t.Errorf("v[1:4] is not expected")
	}
	if !checkVector(sv.Assoc(1, "233"), 1, "233", 3) {
		t.Errorf("v[1:4].Assoc is not expected")
	}
	if !checkVector(sv.Conj("233"), 1, 2, 3, "233") {
		t.Errorf("v[1:4].Conj is not expected")
	}
	if !checkVector(sv.Pop(), 1, 2) {
		t.Errorf("v[1:4].Pop is not expected")
	}
	if !checkVector(sv.SubVector(1, 2), 2) {
		t.Errorf("v[1:4][1:2] is not expected")
	}
	testIterator(t, sv.Iterator(), 1, 4)

	if !checkVector(v.SubVector(1, 1)) {
		t.Errorf("v[1:1] is not expected")
	}
	// Begin is allowed to be equal to n if end is also n
	if !checkVector(v.SubVector(10, 10)) {
		t.Errorf("v[10:10] is not expected")
	}

	for _, r := range [][2]int{{-1, 0}, {5, 100}, {-1, 100}, {4, 2}} {
		if bad := v.SubVector(r[0], r[1]); bad != nil {
			t.Errorf("v.SubVector(%d, %d) = %v, want nil", r[0], r[1], bad)
		}
	}
	if bad := sv.SubVector(0, 4); bad != nil {
		t.Errorf("v[1:4].SubVector(0, 4) = %v, want nil", bad)
	}
}

func checkVector(v Vector[any], values ...any) bool {
	if v.Len() != len(values) {
		return false
	}
	for i, a := range values {
		if elem, _ := v.Index(i); elem != a {
			return false
		}
	}
	return true
}

func TestIterator_RandomAccessAgrees(t *testing.T) {
	s := make([]int64, N3)
	for i := range s {
		s[i] = rand.Int63()
	}
	v := FromSlice(s)
	i := 0
	for it := v.Iterator(); it.HasElem(); it.Next() {
		if it.Elem() != s[i] {
			t.Errorf("iterator produces %v at %d, want %v", it.Elem(), i, s[i])
		}
		i++
	}
	if i != len(s) {
		t.Errorf("iterator produces %d elements, want %d", i, len(s))
	}
}

func BenchmarkConjN3(b *testing.B) {
	for r := 0; r < b.N; r++ {
		v := Empty[int]()
		for i := 0; i < N3; i++ {
			v = v.Conj(i)
		}
	}
}

func BenchmarkIndexN4(b *testing.B) {
	v := Empty[int]()
	for i := 0; i < N4; i++ {
		v = v.Conj(i)
	}
	b.ResetTimer()
	for r := 0; r < b.N; r++ {
		for i := 0; i < N4; i++ {
			_, _ = v.Index(i)
		}
	}
}
