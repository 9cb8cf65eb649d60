package store_test

import (
	"path/filepath"
	"strings"
	"testing"

	bolt "go.etcd.io/bbolt"

	"src.mvu.sh/pkg/store"
	"src.mvu.sh/pkg/store/storetest"
	"src.mvu.sh/pkg/testutil"
)

func TestSnapshot(t *testing.T) {
	storetest.TestSnapshot(t, store.MustTempStore(t))
}

func TestJournal(t *testing.T) {
	storetest.TestJournal(t, store.MustTempStore(t))
}

func TestNewStore_Reopen(t *testing.T) {
	dbname := filepath.Join(testutil.TempDir(t), "db")
	st, err := store.NewStore(dbname)
	if err != nil {
		t.Fatal(err)
	}
	st.PutSnapshot("p", 1, []byte("one"))
	st.Close()

	st, err = store.NewStore(dbname)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	if data, err := st.Snapshot("p", 1); string(data) != "one" || err != nil {
		t.Errorf("after reopening, Snapshot(p, 1) -> (%q, %v)", data, err)
	}
}

func TestNewStore_SchemaMismatch(t *testing.T) {
	dbname := filepath.Join(testutil.TempDir(t), "db")
	db, err := bolt.Open(dbname, 0644, nil)
	if err != nil {
		t.Fatal(err)
	}
	db.Update(func(tx *bolt.Tx) error {
		b, _ := tx.CreateBucket([]byte("schema"))
		return b.Put([]byte("version"), []byte{0, 0, 0, 0, 0, 0, 0, 99})
	})
	db.Close()

	_, err = store.NewStore(dbname)
	if err == nil || !strings.Contains(err.Error(), "schema version 99") {
		t.Errorf("got %v, want a schema version error", err)
	}
}

func TestNewStore_BadPath(t *testing.T) {
	_, err := store.NewStore(filepath.Join(testutil.TempDir(t), "no", "such", "db"))
	if err == nil {
		t.Errorf("NewStore in a missing directory succeeded")
	}
}
