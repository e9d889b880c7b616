// Package vkutil holds the shared utilities of §4.7: path-adjacent AST
// helpers, memory pools for signature buffers and token vectors, and a
// thread-safe cache for parsed token streams and MinHash signatures.
package vkutil

import "sync"

// SlabTierConfig is one size tier of a SlabAllocator.
type SlabTierConfig struct {
	Capacity int
	Weight   float64
}

// DefaultTierConfigs sizes generic-purpose buffers.
var DefaultTierConfigs = []SlabTierConfig{
	{Capacity: 16, Weight: 0.35},
	{Capacity: 64, Weight: 0.30},
	{Capacity: 256, Weight: 0.20},
	{Capacity: 1024, Weight: 0.10},
	{Capacity: 4096, Weight: 0.05},
}

// SignatureTierConfigs is sized for MinHash/WeightedMinHash signature
// buffers, whose length is fixed per run (typically 64-256 slots).
var SignatureTierConfigs = []SlabTierConfig{
	{Capacity: 64, Weight: 0.2},
	{Capacity: 128, Weight: 0.5},
	{Capacity: 256, Weight: 0.3},
}

// TokenTierConfigs is sized for per-entity token/shingle vectors, which
// scale with source length.
var TokenTierConfigs = []SlabTierConfig{
	{Capacity: 32, Weight: 0.3},
	{Capacity: 128, Weight: 0.35},
	{Capacity: 512, Weight: 0.25},
	{Capacity: 2048, Weight: 0.1},
}

type poolTier[T any] struct {
	capacity int
	pool     sync.Pool
}

// SlabAllocator is a tiered sync.Pool wrapper: Get returns a zero-length
// slice with at least the requested capacity, Put returns it for reuse.
// This is a non-observable optimisation per §4.7 — callers never depend on
// whether a slice came fresh or recycled.
type SlabAllocator[T any] struct {
	pools []*poolTier[T]

	mu    sync.Mutex
	stats AllocatorStats
}

// AllocatorStats tracks pool effectiveness for diagnostics only.
type AllocatorStats struct {
	Allocations int64
	Reuses      int64
	PoolHits    int64
	PoolMisses  int64
}

func NewSlabAllocator[T any](configs []SlabTierConfig) *SlabAllocator[T] {
	sa := &SlabAllocator[T]{pools: make([]*poolTier[T], len(configs))}
	for i, cfg := range configs {
		capacity := cfg.Capacity
		sa.pools[i] = &poolTier[T]{
			capacity: capacity,
			pool: sync.Pool{New: func() any {
				return make([]T, 0, capacity)
			}},
		}
	}
	return sa
}

// Get returns a slice with capacity >= requested, pulled from the smallest
// tier that fits.
func (sa *SlabAllocator[T]) Get(capacity int) []T {
	if capacity <= 0 {
		return make([]T, 0)
	}
	for _, tier := range sa.pools {
		if tier.capacity >= capacity {
			slice := tier.pool.Get().([]T)
			sa.record(func(s *AllocatorStats) { s.Reuses++; s.PoolHits++ })
			return slice
		}
	}
	sa.record(func(s *AllocatorStats) { s.Allocations++; s.PoolMisses++ })
	return make([]T, 0, capacity)
}

// Put returns a slice to its tier pool. On error paths buffers are simply
// dropped instead (the pool tolerates shrinkage), so callers are never
// required to call Put.
func (sa *SlabAllocator[T]) Put(slice []T) {
	if slice == nil {
		return
	}
	c := cap(slice)
	for _, tier := range sa.pools {
		if tier.capacity == c {
			tier.pool.Put(slice[:0])
			return
		}
	}
}

func (sa *SlabAllocator[T]) record(f func(*AllocatorStats)) {
	sa.mu.Lock()
	f(&sa.stats)
	sa.mu.Unlock()
}

// Stats returns a snapshot of allocator statistics, surfaced in
// AnalysisResults.Statistics.Memory.
func (sa *SlabAllocator[T]) Stats() AllocatorStats {
	sa.mu.Lock()
	defer sa.mu.Unlock()
	return sa.stats
}

// Pools is a process-wide (but per-pipeline-instance — never global,
// per §9) set of allocators handed to the LSH and entity stages.
type Pools struct {
	Signatures *SlabAllocator[uint64]
	WeightedSignatures *SlabAllocator[float64]
	Tokens     *SlabAllocator[string]
}

// NewPools constructs a fresh Pools set, torn down with its owning
// pipeline instance.
func NewPools() *Pools {
	return &Pools{
		Signatures:         NewSlabAllocator[uint64](SignatureTierConfigs),
		WeightedSignatures: NewSlabAllocator[float64](SignatureTierConfigs),
		Tokens:             NewSlabAllocator[string](TokenTierConfigs),
	}
}

// HighWaterMarks reports, per allocator, the cumulative number of
// allocations made outside its tiers (requests larger than the largest
// tier), fed into AnalysisResults.Statistics.Memory.
func (p *Pools) HighWaterMarks() map[string]int64 {
	return map[string]int64{
		"signatures":          p.Signatures.Stats().Allocations,
		"weighted_signatures": p.WeightedSignatures.Stats().Allocations,
		"tokens":              p.Tokens.Stats().Allocations,
	}
}
