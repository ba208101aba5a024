// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfq

// Algorithm selects the ring protocol a Builder-constructed queue uses.
type Algorithm int

const (
	// AlgorithmCRQ uses a double-word CAS per slot (component D).
	AlgorithmCRQ Algorithm = iota
	// AlgorithmPRQ uses a single-word CAS per slot with a tagged bottom
	// sentinel (component E). Pushed pointers must be word-aligned.
	AlgorithmPRQ
	// AlgorithmMTQ uses per-slot ticket-and-sequence matching (component
	// F).
	AlgorithmMTQ
	// AlgorithmFAA uses append-only fetch-and-add nodes (component G).
	// Bounded FAA queues never reuse a slot once dequeued.
	AlgorithmFAA
	// AlgorithmMutex is the sync.Mutex correctness baseline (component
	// I), not a lock-free algorithm.
	AlgorithmMutex
)

// Options configures queue creation via Builder.
type Options struct {
	algorithm  Algorithm
	capacity   int
	unbounded  bool
	maxThreads int
}

// Builder creates queues with fluent configuration.
//
// Example:
//
//	// Bounded CRQ queue of capacity 1024
//	q := lfq.Build(lfq.New(1024))
//
//	// Unbounded PRQ queue, 256-slot segments, up to 64 concurrent threads
//	q := lfq.Build(lfq.New(256).Algorithm(lfq.AlgorithmPRQ).Unbounded().MaxThreads(64))
//
//	// Mutex baseline, for differential testing against the lock-free families
//	q := lfq.Build(lfq.New(1024).Algorithm(lfq.AlgorithmMutex))
type Builder struct {
	opts Options
}

// New creates a queue builder with the given capacity (a bounded
// queue's total capacity, or an unbounded queue's per-segment
// capacity). Default algorithm is CRQ, default is bounded, default
// MaxThreads is 64.
//
// Panics if capacity <= 0.
func New(capacity int) *Builder {
	if capacity <= 0 {
		panic("lfq: capacity must be > 0")
	}
	return &Builder{opts: Options{capacity: capacity, algorithm: AlgorithmCRQ, maxThreads: 64}}
}

// Algorithm selects the ring protocol.
func (b *Builder) Algorithm(a Algorithm) *Builder {
	b.opts.algorithm = a
	return b
}

// Unbounded configures the builder to build the unbounded variant of the
// selected algorithm instead of one fixed-size queue: CRQ, PRQ and MTQ
// chain closeable segments through the linked-ring driver, FAA chains its
// own nodes, and AlgorithmMutex builds a MutexUnbounded.
func (b *Builder) Unbounded() *Builder {
	b.opts.unbounded = true
	return b
}

// MaxThreads bounds the number of distinct tid values an unbounded
// queue's hazard registry will serve. Ignored for bounded queues.
func (b *Builder) MaxThreads(n int) *Builder {
	b.opts.maxThreads = n
	return b
}

// Build creates a Queue with the configured algorithm and capacity.
//
// Algorithm + bounded/unbounded selection:
//
//	CRQ,   bounded   -> *CRQBounded
//	CRQ,   unbounded -> *CRQUnbounded
//	PRQ,   bounded   -> *PRQBounded
//	PRQ,   unbounded -> *PRQUnbounded
//	MTQ,   bounded   -> *MTQBounded
//	MTQ,   unbounded -> *MTQUnbounded
//	FAA,   bounded   -> *FAABounded
//	FAA,   unbounded -> *FAAUnbounded
//	Mutex, bounded   -> *MutexBounded
//	Mutex, unbounded -> *MutexUnbounded
func Build(b *Builder) Queue {
	maxThreads := b.opts.maxThreads
	if maxThreads <= 0 {
		maxThreads = 64
	}
	switch b.opts.algorithm {
	case AlgorithmCRQ:
		if b.opts.unbounded {
			return NewCRQUnbounded(b.opts.capacity, maxThreads)
		}
		return NewCRQBounded(b.opts.capacity)
	case AlgorithmPRQ:
		if b.opts.unbounded {
			return NewPRQUnbounded(b.opts.capacity, maxThreads)
		}
		return NewPRQBounded(b.opts.capacity)
	case AlgorithmMTQ:
		if b.opts.unbounded {
			return NewMTQUnbounded(b.opts.capacity, maxThreads)
		}
		return NewMTQBounded(b.opts.capacity)
	case AlgorithmFAA:
		if b.opts.unbounded {
			return NewFAAUnbounded(b.opts.capacity, maxThreads)
		}
		return NewFAABounded(b.opts.capacity)
	case AlgorithmMutex:
		if b.opts.unbounded {
			return NewMutexUnbounded()
		}
		return NewMutexBounded(b.opts.capacity)
	default:
		panic("lfq: unknown algorithm")
	}
}

// pad is cache line padding to prevent false sharing.
type pad [64]byte
