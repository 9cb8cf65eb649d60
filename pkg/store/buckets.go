package store

// The following are the names of the buckets used by the store. Each holds
// one nested bucket per program name.
const (
	bucketSnapshot = "snapshot"
	bucketJournal  = "journal"
	bucketSchema   = "schema"
)
