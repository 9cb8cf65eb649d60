package store

import (
	bolt "go.etcd.io/bbolt"

	"src.mvu.sh/pkg/store/storedefs"
)

func init() {
	initDB["initialize journal table"] = func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketJournal))
		return err
	}
}

// AppendMessage appends an encoded message to the journal of a program. The
// sequence number must be greater than that of the last message.
func (s *dbStore) AppendMessage(name string, seq uint64, data []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.Bucket([]byte(bucketJournal)).CreateBucketIfNotExists([]byte(name))
		if err != nil {
			return err
		}
		if k, _ := b.Cursor().Last(); k != nil && unmarshalSeq(k) >= seq {
			return &storedefs.OutOfOrder{Name: name, Seq: seq, Last: unmarshalSeq(k)}
		}
		return b.Put(marshalSeq(seq), data)
	})
}

// LastMessageSeq returns the sequence number of the last message in the
// journal of a program, or 0 if the journal is empty.
func (s *dbStore) LastMessageSeq(name string) (uint64, error) {
	var seq uint64
	err := s.db.View(func(tx *bolt.Tx) error {
		b := programBucket(tx, bucketJournal, name)
		if b == nil {
			return nil
		}
		if k, _ := b.Cursor().Last(); k != nil {
			seq = unmarshalSeq(k)
		}
		return nil
	})
	return seq, err
}

// Messages returns all messages in the journal of a program with sequence
// numbers from the given one (inclusive), in order.
func (s *dbStore) Messages(name string, from uint64) ([]storedefs.Entry, error) {
	var entries []storedefs.Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		b := programBucket(tx, bucketJournal, name)
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, v := c.Seek(marshalSeq(from)); k != nil; k, v = c.Next() {
			entries = append(entries, storedefs.Entry{Seq: unmarshalSeq(k), Data: append([]byte(nil), v...)})
		}
		return nil
	})
	return entries, err
}
