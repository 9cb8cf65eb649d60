package vals

import "src.mvu.sh/pkg/persistent/hash"

// Hasher wraps the Hash method.
type Hasher interface {
	// Hash computes the hash code of the receiver.
	Hash() uint32
}

// Hash returns the 32-bit hash of a value. It is consistent with Equal and
// stable across runs, so it can serve as a persisted fingerprint of a state.
// For unsupported types it returns 0, which is correct if not useful.
func Hash(v any) uint32 {
	switch v := v.(type) {
	case bool:
		return hash.Bool(v)
	case int:
		return hash.Int(v)
	case float64:
		return hash.Float64(v)
	case string:
		return hash.String(v)
	case Hasher:
		return v.Hash()
	default:
		return 0
	}
}
