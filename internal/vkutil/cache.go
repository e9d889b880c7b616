package vkutil

import (
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// SignatureCache is the small thread-safe cache for parsed token streams
// and MinHash signatures keyed by (normalised source, H, k), named in
// §4.7. It follows the read-write discipline of §5/§9: concurrent readers,
// an exclusive writer on invalidation, snapshots published atomically.
type SignatureCache struct {
	mu      sync.RWMutex
	tokens  map[uint64][]string
	hashes  map[uint64][]uint64
}

func NewSignatureCache() *SignatureCache {
	return &SignatureCache{
		tokens: make(map[uint64][]string),
		hashes: make(map[uint64][]uint64),
	}
}

// Key derives a stable cache key from normalised source text and the
// (H, k) parameters the signature was produced under. Signatures are only
// ever comparable to others sharing identical parameters, so the
// parameters are part of the key rather than an afterthought.
func Key(normalizedSource string, h, k int) uint64 {
	d := xxhash.New()
	fmt.Fprintf(d, "%s\x00%d\x00%d", normalizedSource, h, k)
	return d.Sum64()
}

func (c *SignatureCache) GetTokens(key uint64) ([]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.tokens[key]
	return v, ok
}

func (c *SignatureCache) PutTokens(key uint64, tokens []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens[key] = tokens
}

func (c *SignatureCache) GetSignature(key uint64) ([]uint64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.hashes[key]
	return v, ok
}

func (c *SignatureCache) PutSignature(key uint64, sig []uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hashes[key] = sig
}

// Invalidate atomically drops both the token and signature maps, used when
// the underlying entity set changes (§4.3.5's "new entity triggers
// recomputation only when the set changes").
func (c *SignatureCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = make(map[uint64][]string)
	c.hashes = make(map[uint64][]uint64)
}

// Len reports the number of cached signatures, for diagnostics.
func (c *SignatureCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.hashes)
}
