// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package lfq provides lock-free FIFO queues for unsafe.Pointer payloads,
// in both bounded and unbounded forms, across four ring protocols:
//
//   - CRQ: double-word CAS per slot (best general-purpose throughput)
//   - PRQ: single-word CAS per slot, no 128-bit CAS needed, requires
//     word-aligned payload pointers
//   - MTQ: per-slot ticket-and-sequence matching, simplest to reason about
//   - FAA: append-only fetch-and-add nodes, no slot reuse within a segment
//
// plus [MutexBounded] and [MutexUnbounded], a sync.Mutex baseline with
// the same [Queue] surface, used to differentially test the lock-free
// families against a trivially-correct implementation.
//
// # Quick Start
//
//	q := lfq.NewCRQBounded(1024)
//
//	msg := &Message{Data: payload}
//	if !q.Push(unsafe.Pointer(msg), tid) {
//	    // queue full, apply backpressure
//	}
//
//	ptr, ok := q.Pop(tid)
//	if ok {
//	    msg := (*Message)(ptr)
//	    process(msg)
//	}
//
// Builder API:
//
//	q := lfq.Build(lfq.New(1024))                                            // CRQBounded
//	q := lfq.Build(lfq.New(1024).Algorithm(lfq.AlgorithmPRQ))                // PRQBounded
//	q := lfq.Build(lfq.New(256).Algorithm(lfq.AlgorithmFAA).Unbounded())     // FAAUnbounded
//	q := lfq.Build(lfq.New(1024).Algorithm(lfq.AlgorithmMutex))              // MutexBounded
//
// # Thread IDs
//
// Every [Queue] method takes an explicit tid in [0, maxThreads). Callers
// are responsible for a stable, non-overlapping assignment of tids to
// concurrently active goroutines; reusing a tid across two goroutines
// that are both live is undefined behavior. PRQ queues write tid into the
// tag that marks a slot claim in progress; the other bounded queues
// ignore tid. The lock-free unbounded queues use it to index their
// hazard-pointer registry.
//
// # Bounded vs. Unbounded
//
// A bounded queue (CRQBounded, PRQBounded, MTQBounded, FAABounded,
// MutexBounded) is one fixed-size ring. Push returns false once full;
// it never blocks and never allocates after construction.
//
// An unbounded queue (CRQUnbounded, PRQUnbounded, MTQUnbounded) chains
// bounded segments through a linked-ring driver: when the current segment
// fills, it is closed and a fresh one is linked and appended to.
// FAAUnbounded reaches the same property by chaining its own append-only
// nodes directly rather than going through that driver, since an FAA
// node has no ring to wrap or reuse. MutexUnbounded is a mutex-guarded
// list. Push on all of these always succeeds (barring allocation failure,
// which surfaces as a Go runtime panic, not an error return). The
// lock-free ones retire exhausted segments/nodes via a hazard-pointer
// registry once no in-flight reader still references them.
//
//	q := lfq.NewCRQUnbounded(256 /* segment capacity */, 64 /* maxThreads */)
//
// # Graceful Shutdown
//
// Unbounded queues implement [Drainer]:
//
//	prodWg.Wait() // producers are done
//	if d, ok := q.(lfq.Drainer); ok {
//	    d.Drain()
//	}
//	// consumers can now fully empty the queue; no further Push calls
//	// may be made after Drain
//
// Apart from FAABounded, whose Drain is a no-op, bounded queues do not
// implement Drainer: there is no producer-side gate to release. A type
// assertion naturally reflects this.
//
// # PRQ Alignment Precondition
//
// PRQ distinguishes a slot an enqueuer is still filling from one holding
// a payload using the low bit of the slot word as a tag, so pushed
// pointers must have that bit clear.
// Any normally allocated Go value satisfies this; Push panics if it
// does not, rather than silently corrupting a neighboring tag.
//
// # Capacity
//
// Bounded CRQ/PRQ/MTQ capacities round up to the next power of two
// (build with -tags lfq_modulo for exact capacities at the cost of a
// division per operation). FAABounded and MutexBounded use capacity
// exactly as given.
//
// # Build Tags
//
//	lfq_nopad     - pack ring cells to their natural size instead of a
//	                cache line (less memory, more false sharing)
//	lfq_modulo    - exact capacities via modulo instead of a pow2 mask
//	lfq_nohazard  - disable hazard-pointer protection; retire reclaims
//	                immediately, safe only when the caller externally
//	                guarantees no reader still references a retired
//	                segment
//	lfq_nonuma    - disable the NUMA cluster-affinity heuristic
//	lfq_cautious  - add an empty short-circuit at dequeue entry, trading
//	                a small fixed cost for avoiding a wasted ticket round
//	                trip when the ring is observably empty
//
// # Error Handling
//
// Push and Pop signal "cannot proceed right now" via a boolean return,
// not an error: a full or empty queue is an ordinary, expected outcome
// in a non-blocking API, not a failure. [ErrWouldBlock] and its
// classifiers ([IsWouldBlock], [IsSemantic], [IsNonFailure]) remain
// available, sourced from [code.hybscloud.com/iox], for callers that
// compose lfq with other iox-based APIs that do report errors.
//
// Construction-time misuse (non-positive capacity, a nil or misaligned
// payload pointer, more threads than a registry was built for) panics
// immediately rather than returning an error: these are programmer
// errors, not runtime conditions a caller should branch on.
//
// # Race Detection
//
// Go's race detector tracks explicit synchronization primitives but
// cannot observe the happens-before relationships these algorithms
// establish through acquire-release atomics on separate memory
// locations. Expect false positives under -race; see [RaceEnabled] and
// the package's test files for how stress tests are gated accordingly.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/atomix] for atomic primitives
// with explicit memory ordering (including the 128-bit CAS2 primitive
// CRQ's cell layout depends on), [code.hybscloud.com/spin] for bounded
// busy-wait backoff, and [code.hybscloud.com/iox] for semantic error
// classification.
package lfq
