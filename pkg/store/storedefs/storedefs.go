// Package storedefs contains definitions of the store API.
//
// It is a separate package so that packages that only depend on the store API
// does not need to depend on the concrete implementation.
package storedefs

import (
	"errors"
	"fmt"
)

// ErrNoSnapshot is returned when a snapshot query completes with no result.
var ErrNoSnapshot = errors.New("no snapshot")

// Store keeps state snapshots and message journals of named programs. All
// data is opaque to the store; sequence numbers order it.
type Store interface {
	PutSnapshot(name string, seq uint64, data []byte) error
	Snapshot(name string, seq uint64) ([]byte, error)
	LatestSnapshot(name string) (Entry, error)
	SnapshotSeqs(name string) ([]uint64, error)

	AppendMessage(name string, seq uint64, data []byte) error
	LastMessageSeq(name string) (uint64, error)
	Messages(name string, from uint64) ([]Entry, error)

	Names() ([]string, error)
}

// Entry is a snapshot or a journal entry.
type Entry struct {
	Seq  uint64
	Data []byte
}

// OutOfOrder is returned by AppendMessage when the sequence number does not
// follow the last one in the journal.
type OutOfOrder struct {
	Name string
	Seq  uint64
	Last uint64
}

func (e *OutOfOrder) Error() string {
	return fmt.Sprintf("journal of %s: message %d appended after %d", e.Name, e.Seq, e.Last)
}
