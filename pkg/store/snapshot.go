package store

import (
	bolt "go.etcd.io/bbolt"

	"src.mvu.sh/pkg/store/storedefs"
)

func init() {
	initDB["initialize snapshot table"] = func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketSnapshot))
		return err
	}
}

// PutSnapshot stores the encoded state of a program after the given number of
// messages, replacing any snapshot with the same sequence number.
func (s *dbStore) PutSnapshot(name string, seq uint64, data []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.Bucket([]byte(bucketSnapshot)).CreateBucketIfNotExists([]byte(name))
		if err != nil {
			return err
		}
		return b.Put(marshalSeq(seq), data)
	})
}

// Snapshot returns the snapshot with the given sequence number.
func (s *dbStore) Snapshot(name string, seq uint64) ([]byte, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := programBucket(tx, bucketSnapshot, name)
		if b == nil {
			return storedefs.ErrNoSnapshot
		}
		v := b.Get(marshalSeq(seq))
		if v == nil {
			return storedefs.ErrNoSnapshot
		}
		// Values returned by bolt are only valid within the transaction.
		data = append([]byte(nil), v...)
		return nil
	})
	return data, err
}

// LatestSnapshot returns the snapshot with the highest sequence number.
func (s *dbStore) LatestSnapshot(name string) (storedefs.Entry, error) {
	var entry storedefs.Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		b := programBucket(tx, bucketSnapshot, name)
		if b == nil {
			return storedefs.ErrNoSnapshot
		}
		k, v := b.Cursor().Last()
		if k == nil {
			return storedefs.ErrNoSnapshot
		}
		entry = storedefs.Entry{Seq: unmarshalSeq(k), Data: append([]byte(nil), v...)}
		return nil
	})
	return entry, err
}

// SnapshotSeqs returns the sequence numbers of all snapshots of a program, in
// ascending order.
func (s *dbStore) SnapshotSeqs(name string) ([]uint64, error) {
	var seqs []uint64
	err := s.db.View(func(tx *bolt.Tx) error {
		b := programBucket(tx, bucketSnapshot, name)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, _ []byte) error {
			seqs = append(seqs, unmarshalSeq(k))
			return nil
		})
	})
	return seqs, err
}
