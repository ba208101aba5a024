// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfq

import "unsafe"

// Queue is the programmatic interface every queue family (CRQ, PRQ, MTQ,
// FAA, and the mutex baseline — bounded or unbounded) implements.
//
// Push and Pop both take an explicit thread id tid in [0, maxThreads);
// the caller is responsible for stable, non-overlapping assignment.
// Supplying the same tid from two concurrently active goroutines is
// undefined behavior.
type Queue interface {
	// Push adds item to the queue. item must be non-nil: pushing nil
	// panics, since a nil payload can never be distinguished from an
	// empty slot.
	//
	// Bounded queues return false when full. Unbounded queues always
	// return true; they only fail to allocate, which propagates however
	// the Go runtime reports out-of-memory.
	Push(item unsafe.Pointer, tid int) bool

	// Pop removes and returns the oldest item, or (nil, false) if the
	// queue is currently empty.
	Pop(tid int) (unsafe.Pointer, bool)

	// Length returns an approximate element count. For unbounded queues
	// in particular this reads hazard-protected segments with no further
	// synchronization: treat it as an estimate, never a
	// snapshot, under concurrency.
	Length(tid int) int

	// ClassName returns a stable identifier for reporting, e.g.
	// "CRQBounded" or "FAAUnbounded".
	ClassName() string
}

// Drainer signals that no more Push calls will occur.
//
// Unbounded queues (CRQUnbounded, PRQUnbounded, MTQUnbounded,
// FAAUnbounded) use Drain to force-close their current tail segment, so
// consumers can empty every already-enqueued item without a producer
// racing in a fresh one. It is a hint: the caller must ensure no further
// Push calls are made after calling Drain.
type Drainer interface {
	Drain()
}

// segment is the capability the linked-ring driver (component H) needs
// from a bounded ring implementation: enqueue/dequeue/close plus the
// chain-membership and accounting fields every concrete segment (CRQ,
// PRQ, MTQ) exposes via segBase.
type segment interface {
	enqueue(item unsafe.Pointer, tid int) bool
	dequeue(tid int) (unsafe.Pointer, bool)
	closeSeg(ticket uint64, force bool) bool
	fixState()
	length() int
	startTicket() uint64
	tailTicket() uint64
	headTicket() uint64
	isClosed() bool

	// identity returns the segment's own address, used as the hazard
	// registry's publication key.
	identity() unsafe.Pointer
	// loadNext returns the successor segment, or nil if none is linked.
	loadNext() segment
	// casNext links newSeg as successor iff none is currently linked.
	casNext(newSeg segment) bool
}
