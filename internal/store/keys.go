package store

import (
	"strconv"
	"sync"
)

// Stable key layout. Changing any of these orphans existing data.
const (
	libraryKey        = "stories:v2"
	bookmarkPrefix    = "bookmark:"
	ledgerKey         = "achievements:ledger"
	quarantinePrefix  = "library:corrupt:"
	placeholderPrefix = "blurhash:"
)

// keyPool provides reusable byte slices for building database keys.
var keyPool = sync.Pool{
	New: func() any {
		// Prefix plus a decimal int64 or a hex digest fits comfortably.
		return make([]byte, 0, 64)
	},
}

// buildKey constructs prefix+suffix in a pooled buffer.
// Callers MUST call releaseKey once the transaction using the key has finished.
func buildKey(prefix, suffix string) []byte {
	buf, _ := keyPool.Get().([]byte)
	buf = append(buf[:0], prefix...)
	return append(buf, suffix...)
}

// buildIDKey constructs prefix+decimal(id) in a pooled buffer.
// Callers MUST call releaseKey once the transaction using the key has finished.
func buildIDKey(prefix string, id int64) []byte {
	buf, _ := keyPool.Get().([]byte)
	buf = append(buf[:0], prefix...)
	return strconv.AppendInt(buf, id, 10)
}

// releaseKey returns a key buffer to the pool. The slice must not be used afterwards.
func releaseKey(key []byte) {
	if cap(key) <= 256 {
		keyPool.Put(key[:0]) //nolint:staticcheck // slice header allocation is acceptable here
	}
}

// parseIDKey extracts the id from a prefix+decimal key.
func parseIDKey(prefix string, key []byte) (int64, bool) {
	if len(key) <= len(prefix) || string(key[:len(prefix)]) != prefix {
		return 0, false
	}
	id, err := strconv.ParseInt(string(key[len(prefix):]), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
