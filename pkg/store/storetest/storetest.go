// Package storetest keeps test suites against storedefs.Store.
package storetest

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"src.mvu.sh/pkg/store/storedefs"
)

// TestSnapshot tests the snapshot functionality of a Store.
func TestSnapshot(t *testing.T, st storedefs.Store) {
	t.Helper()

	if _, err := st.LatestSnapshot("p"); !errors.Is(err, storedefs.ErrNoSnapshot) {
		t.Errorf("LatestSnapshot on empty store -> %v, want ErrNoSnapshot", err)
	}
	if _, err := st.Snapshot("p", 0); !errors.Is(err, storedefs.ErrNoSnapshot) {
		t.Errorf("Snapshot on empty store -> %v, want ErrNoSnapshot", err)
	}

	for _, seq := range []uint64{0, 300, 10} {
		if err := st.PutSnapshot("p", seq, []byte{byte(seq)}); err != nil {
			t.Errorf("PutSnapshot(p, %d) -> %v", seq, err)
		}
	}
	st.PutSnapshot("q", 5, []byte("other"))

	data, err := st.Snapshot("p", 10)
	if err != nil || string(data) != "\x0a" {
		t.Errorf("Snapshot(p, 10) -> (%q, %v)", data, err)
	}
	if _, err := st.Snapshot("p", 11); !errors.Is(err, storedefs.ErrNoSnapshot) {
		t.Errorf("Snapshot(p, 11) -> %v, want ErrNoSnapshot", err)
	}

	latest, err := st.LatestSnapshot("p")
	want := storedefs.Entry{Seq: 300, Data: []byte{byte(300 % 256)}}
	if err != nil || !cmp.Equal(latest, want) {
		t.Errorf("LatestSnapshot(p) -> (%v, %v), want %v", latest, err, want)
	}

	seqs, err := st.SnapshotSeqs("p")
	if err != nil || !cmp.Equal(seqs, []uint64{0, 10, 300}) {
		t.Errorf("SnapshotSeqs(p) -> (%v, %v)", seqs, err)
	}
	seqs, err = st.SnapshotSeqs("none")
	if err != nil || len(seqs) != 0 {
		t.Errorf("SnapshotSeqs(none) -> (%v, %v)", seqs, err)
	}

	st.PutSnapshot("p", 10, []byte("replaced"))
	if data, _ := st.Snapshot("p", 10); string(data) != "replaced" {
		t.Errorf("PutSnapshot did not replace, got %q", data)
	}
}

// TestJournal tests the journal functionality of a Store.
func TestJournal(t *testing.T, st storedefs.Store) {
	t.Helper()

	if seq, err := st.LastMessageSeq("p"); seq != 0 || err != nil {
		t.Errorf("LastMessageSeq on empty journal -> (%d, %v)", seq, err)
	}
	if entries, err := st.Messages("p", 0); len(entries) != 0 || err != nil {
		t.Errorf("Messages on empty journal -> (%v, %v)", entries, err)
	}

	for seq := uint64(1); seq <= 4; seq++ {
		if err := st.AppendMessage("p", seq, []byte{'m', byte('0' + seq)}); err != nil {
			t.Errorf("AppendMessage(p, %d) -> %v", seq, err)
		}
	}
	st.AppendMessage("q", 1, []byte("q1"))

	err := st.AppendMessage("p", 4, []byte("again"))
	wantErr := &storedefs.OutOfOrder{Name: "p", Seq: 4, Last: 4}
	if !cmp.Equal(err, error(wantErr)) {
		t.Errorf("AppendMessage(p, 4) again -> %v, want %v", err, wantErr)
	}

	if seq, err := st.LastMessageSeq("p"); seq != 4 || err != nil {
		t.Errorf("LastMessageSeq(p) -> (%d, %v), want 4", seq, err)
	}

	entries, err := st.Messages("p", 3)
	wantEntries := []storedefs.Entry{{Seq: 3, Data: []byte("m3")}, {Seq: 4, Data: []byte("m4")}}
	if err != nil || !cmp.Equal(entries, wantEntries) {
		t.Errorf("Messages(p, 3) -> (%v, %v), want %v", entries, err, wantEntries)
	}
	if entries, _ := st.Messages("p", 5); len(entries) != 0 {
		t.Errorf("Messages(p, 5) -> %v, want none", entries)
	}

	names, err := st.Names()
	if err != nil || !cmp.Equal(names, []string{"p", "q"}) {
		t.Errorf("Names() -> (%v, %v), want [p q]", names, err)
	}
}
