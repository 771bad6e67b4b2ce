// Package treecache memoizes parsed syntax trees by file identity.
package treecache

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/maypok86/otter"
	"gitlab.com/tozd/go/errors"

	"github.com/dejo1307/swiftdecl/internal/swiftparse"
)

// Key identifies one version of a file.
type Key struct {
	Path string
	Hash string // Content hash; a new hash is a new entry
}

// Sum returns the hex SHA-256 of src, the Hash of a Key.
func Sum(src []byte) string {
	sum := sha256.Sum256(src)
	return hex.EncodeToString(sum[:])
}

// ParseFunc produces the tree for a cache miss.
type ParseFunc func() *swiftparse.File

// Cache is implemented by Slot and Shared.
type Cache interface {
	Get(key Key, parse ParseFunc) *swiftparse.File
}

// Slot remembers the most recently parsed file only, which is enough for a
// single reader handed the same file repeatedly, as the extract command is.
// It is not safe for concurrent use; give each worker its own Slot or use
// Shared.
type Slot struct {
	key    Key
	file   *swiftparse.File
	Hits   int
	Misses int
}

// Get returns the cached tree for key, parsing on a miss.
func (s *Slot) Get(key Key, parse ParseFunc) *swiftparse.File {
	if s.file != nil && s.key == key {
		s.Hits++
		return s.file
	}
	s.Misses++
	s.key = key
	s.file = parse()
	return s.file
}

// Shared is a bounded cache safe for concurrent use. Two workers missing on
// the same key may both parse; parsing is deterministic so either result is
// kept.
type Shared struct {
	cache otter.Cache[Key, *swiftparse.File]
}

// NewShared creates a cache holding up to capacity trees.
func NewShared(capacity int) (*Shared, error) {
	cache, err := otter.MustBuilder[Key, *swiftparse.File](capacity).
		CollectStats().
		Build()
	if err != nil {
		return nil, errors.Errorf("building tree cache: %w", err)
	}
	return &Shared{cache: cache}, nil
}

// Get returns the cached tree for key, parsing on a miss.
func (s *Shared) Get(key Key, parse ParseFunc) *swiftparse.File {
	if f, ok := s.cache.Get(key); ok {
		return f
	}
	f := parse()
	s.cache.Set(key, f)
	return f
}

// Stats reports cache hits and misses.
func (s *Shared) Stats() (hits, misses int64) {
	st := s.cache.Stats()
	return st.Hits(), st.Misses()
}

// Len returns the number of cached trees.
func (s *Shared) Len() int {
	return s.cache.Size()
}

// Close releases the cache's background resources.
func (s *Shared) Close() {
	s.cache.Close()
}
