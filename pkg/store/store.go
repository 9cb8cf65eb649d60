// Package store is the bbolt-backed implementation of storedefs.Store.
package store

import (
	"encoding/binary"
	"fmt"
	"slices"
	"time"

	bolt "go.etcd.io/bbolt"

	"src.mvu.sh/pkg/logutil"
	"src.mvu.sh/pkg/store/storedefs"
)

var logger = logutil.GetLogger("[store] ")

// SchemaVersion is the current schema version. It is written to new databases
// and checked when opening existing ones.
const SchemaVersion = 1

// DBStore is the permanent storage backend. It is safe for concurrent use.
type DBStore interface {
	storedefs.Store
	Close() error
}

var initDB = map[string](func(*bolt.Tx) error){}

func init() {
	initDB["initialize schema version"] = func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(bucketSchema))
		if err != nil {
			return err
		}
		v := b.Get([]byte("version"))
		if v == nil {
			return b.Put([]byte("version"), marshalSeq(SchemaVersion))
		}
		if got := unmarshalSeq(v); got != SchemaVersion {
			return fmt.Errorf("schema version %d, want %d", got, SchemaVersion)
		}
		return nil
	}
}

type dbStore struct {
	db *bolt.DB
}

func dbWithDefaultOptions(dbname string) (*bolt.DB, error) {
	return bolt.Open(dbname, 0644, &bolt.Options{Timeout: time.Second})
}

// NewStore creates a new Store from the given file.
func NewStore(dbname string) (DBStore, error) {
	db, err := dbWithDefaultOptions(dbname)
	if err != nil {
		return nil, err
	}
	st, err := NewStoreFromDB(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return st, nil
}

// NewStoreFromDB creates a new Store from a bolt DB.
func NewStoreFromDB(db *bolt.DB) (DBStore, error) {
	logger.Println("initializing store")
	defer logger.Println("initialized store")
	st := &dbStore{db}

	err := db.Update(func(tx *bolt.Tx) error {
		for name, fn := range initDB {
			if err := fn(tx); err != nil {
				return fmt.Errorf("failed to %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}

// Close closes the store.
func (s *dbStore) Close() error {
	return s.db.Close()
}

// Names returns the names of all programs with snapshots or journal entries,
// sorted.
func (s *dbStore) Names() ([]string, error) {
	seen := make(map[string]bool)
	var names []string
	err := s.db.View(func(tx *bolt.Tx) error {
		for _, top := range []string{bucketSnapshot, bucketJournal} {
			err := tx.Bucket([]byte(top)).ForEach(func(k, v []byte) error {
				// Nested buckets have nil values.
				if v == nil && !seen[string(k)] {
					seen[string(k)] = true
					names = append(names, string(k))
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	slices.Sort(names)
	return names, err
}

// Returns the nested bucket of a program, or nil if it does not exist.
func programBucket(tx *bolt.Tx, top, name string) *bolt.Bucket {
	return tx.Bucket([]byte(top)).Bucket([]byte(name))
}

func marshalSeq(seq uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return b
}

func unmarshalSeq(key []byte) uint64 {
	return binary.BigEndian.Uint64(key)
}
