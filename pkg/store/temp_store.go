package store

import (
	"path/filepath"

	"src.mvu.sh/pkg/testutil"
)

// MustTempStore returns a Store backed by a temporary file for testing. The
// Store is closed and the file removed when the test finishes.
func MustTempStore(c testutil.Cleanuper) DBStore {
	st, err := NewStore(filepath.Join(testutil.TempDir(c), "db"))
	if err != nil {
		panic(err)
	}
	// Registered after TempDir's cleanup, so it runs before it.
	c.Cleanup(func() { st.Close() })
	return st
}
