// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfq

import (
	"unsafe"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// segmentFactory allocates a fresh segment of one concrete ring family
// (CRQ, PRQ, or MTQ) starting at the given global ticket. FAA chains its
// own append-only nodes directly and does not use this driver.
type segmentFactory func(capacity, start uint64) segment

// segmentWrap recovers the segment interface value from a raw address
// previously obtained via identity(). Every address a linkedQueue ever
// stores came from its own segmentFactory, so the concrete type behind
// the pointer is always the same family.
type segmentWrap func(unsafe.Pointer) segment

// linkedQueue drives an unbounded queue out of closeable bounded
// segments: push routes to the current tail segment; when that segment
// reports full (or already closed by a racing close), the driver closes
// it, links a freshly allocated successor, and retries. Pop follows the same chain from the head side,
// retiring exhausted segments through the hazard registry once a
// successor exists to take their place.
//
// headPtr/tailPtr store a segment's identity() address rather than the
// segment interface value itself, since atomix.Uintptr has no interface
// counterpart; wrap turns that address back into a segment, which is
// safe because every segment a given linkedQueue ever stores comes from
// the same segmentFactory.
type linkedQueue struct {
	_            pad
	headPtr      atomix.Uintptr
	_            pad
	tailPtr      atomix.Uintptr
	_            pad
	liveSegments atomix.Int64
	_            pad
	closed       atomix.Bool

	hz          *hazardRegistry
	wrap        segmentWrap
	newSeg      segmentFactory
	segCapacity uint64
}

func newLinkedQueue(segCapacity uint64, maxThreads int, newSeg segmentFactory, wrap segmentWrap) *linkedQueue {
	first := newSeg(segCapacity, 0)
	q := &linkedQueue{
		wrap:        wrap,
		newSeg:      newSeg,
		segCapacity: segCapacity,
	}
	q.headPtr.StoreRelaxed(uintptr(first.identity()))
	q.tailPtr.StoreRelaxed(uintptr(first.identity()))
	q.liveSegments.StoreRelaxed(1)
	q.hz = newHazardRegistry(maxThreads, q.reclaimSegment)
	return q
}

func (q *linkedQueue) reclaimSegment(unsafe.Pointer) {
	q.liveSegments.AddAcqRel(-1)
}

// liveSegmentCount reports how many segments are currently linked and
// not yet reclaimed — the testable proxy for "no leaks" that stands in
// for literal free() in a garbage-collected runtime.
func (q *linkedQueue) liveSegmentCount() int64 {
	return q.liveSegments.LoadAcquire()
}

func (q *linkedQueue) push(item unsafe.Pointer, tid int) bool {
	sw := spin.Wait{}
	for {
		tailAddr := q.hz.protect(hazardSlotTail, tid, &q.tailPtr)
		seg := q.wrap(tailAddr)

		if next := seg.loadNext(); next != nil {
			q.tailPtr.CompareAndSwapAcqRel(uintptr(tailAddr), uintptr(next.identity()))
			continue
		}

		if seg.enqueue(item, tid) {
			q.hz.clearSlot(hazardSlotTail, tid)
			return true
		}

		// Segment rejected the item: either full or already closed by a
		// racing thread. Ensure it is closed, then try to be the one that
		// links its successor.
		seg.closeSeg(seg.tailTicket(), true)
		if seg.loadNext() == nil {
			cand := q.newSeg(q.segCapacity, seg.startTicket()+q.segCapacity)
			if seg.casNext(cand) {
				q.liveSegments.AddAcqRel(1)
				q.tailPtr.CompareAndSwapAcqRel(uintptr(tailAddr), uintptr(cand.identity()))
			}
			// Lost the race to link: cand is simply dropped; the GC
			// reclaims it since nothing else ever observes its address.
		} else if next := seg.loadNext(); next != nil {
			q.tailPtr.CompareAndSwapAcqRel(uintptr(tailAddr), uintptr(next.identity()))
		}
		sw.Once()
	}
}

func (q *linkedQueue) pop(tid int) (unsafe.Pointer, bool) {
	for {
		headAddr := q.hz.protect(hazardSlotHead, tid, &q.headPtr)
		seg := q.wrap(headAddr)

		if item, ok := seg.dequeue(tid); ok {
			q.hz.clearSlot(hazardSlotHead, tid)
			return item, true
		}

		next := seg.loadNext()
		if next == nil {
			q.hz.clearSlot(hazardSlotHead, tid)
			return nil, false
		}
		// seg reported empty and already has a successor, which only
		// happens after seg was closed (push only links a successor
		// post-close), so nothing more will ever arrive here and it's
		// safe to retire.
		if q.headPtr.CompareAndSwapAcqRel(uintptr(headAddr), uintptr(next.identity())) {
			q.hz.retire(headAddr, tid)
		}
	}
}

func (q *linkedQueue) length() int {
	headAddr := q.headPtr.LoadAcquire()
	seg := q.wrap(unsafe.Pointer(headAddr))
	total := seg.length()
	for {
		next := seg.loadNext()
		if next == nil {
			break
		}
		total += next.length()
		seg = next
	}
	return total
}

// drain force-closes the current tail segment so that no further pushes
// can land, letting consumers empty the chain without producer
// pressure. Callers must ensure no further push calls occur afterward.
//
// No hazard protection is needed here: the tail segment is never
// retired while it is still reachable as tail, since retirement only
// happens to segments the head pointer has already passed.
func (q *linkedQueue) drain() {
	q.closed.StoreRelease(true)
	tailAddr := q.tailPtr.LoadAcquire()
	q.wrap(unsafe.Pointer(tailAddr)).closeSeg(0, true)
}

// CRQUnbounded is an unbounded multi-producer multi-consumer queue built
// by chaining closeable CRQ rings through the linked-ring driver.
type CRQUnbounded struct {
	q *linkedQueue
}

// NewCRQUnbounded creates an unbounded CRQ-backed queue. segCapacity is
// the ring size of each chained segment; maxThreads bounds concurrent
// callers for hazard-pointer bookkeeping.
func NewCRQUnbounded(segCapacity, maxThreads int) *CRQUnbounded {
	if segCapacity <= 0 {
		panic("lfq: segCapacity must be > 0")
	}
	newSeg := func(capacity, start uint64) segment { return newCRQSegment(capacity, start, true) }
	wrap := func(p unsafe.Pointer) segment { return (*crqSegment)(p) }
	return &CRQUnbounded{q: newLinkedQueue(uint64(segCapacity), maxThreads, newSeg, wrap)}
}

func (q *CRQUnbounded) Push(item unsafe.Pointer, tid int) bool {
	return q.q.push(item, tid)
}

func (q *CRQUnbounded) Pop(tid int) (unsafe.Pointer, bool) {
	return q.q.pop(tid)
}

func (q *CRQUnbounded) Length(tid int) int {
	return q.q.length()
}

func (q *CRQUnbounded) ClassName() string {
	return "CRQUnbounded"
}

func (q *CRQUnbounded) Drain() {
	q.q.drain()
}

func (q *CRQUnbounded) LiveSegments() int64 {
	return q.q.liveSegmentCount()
}

// PRQUnbounded is an unbounded multi-producer multi-consumer queue built
// by chaining closeable PRQ rings through the linked-ring driver.
type PRQUnbounded struct {
	q *linkedQueue
}

// NewPRQUnbounded creates an unbounded PRQ-backed queue.
func NewPRQUnbounded(segCapacity, maxThreads int) *PRQUnbounded {
	if segCapacity <= 0 {
		panic("lfq: segCapacity must be > 0")
	}
	newSeg := func(capacity, start uint64) segment { return newPRQSegment(capacity, start, true) }
	wrap := func(p unsafe.Pointer) segment { return (*prqSegment)(p) }
	return &PRQUnbounded{q: newLinkedQueue(uint64(segCapacity), maxThreads, newSeg, wrap)}
}

func (q *PRQUnbounded) Push(item unsafe.Pointer, tid int) bool {
	return q.q.push(item, tid)
}

func (q *PRQUnbounded) Pop(tid int) (unsafe.Pointer, bool) {
	return q.q.pop(tid)
}

func (q *PRQUnbounded) Length(tid int) int {
	return q.q.length()
}

func (q *PRQUnbounded) ClassName() string {
	return "PRQUnbounded"
}

func (q *PRQUnbounded) Drain() {
	q.q.drain()
}

func (q *PRQUnbounded) LiveSegments() int64 {
	return q.q.liveSegmentCount()
}

// MTQUnbounded is an unbounded multi-producer multi-consumer queue built
// by chaining closeable MTQ rings through the linked-ring driver.
type MTQUnbounded struct {
	q *linkedQueue
}

// NewMTQUnbounded creates an unbounded MTQ-backed queue.
func NewMTQUnbounded(segCapacity, maxThreads int) *MTQUnbounded {
	if segCapacity <= 0 {
		panic("lfq: segCapacity must be > 0")
	}
	newSeg := func(capacity, start uint64) segment { return newMTQSegment(capacity, start, true) }
	wrap := func(p unsafe.Pointer) segment { return (*mtqSegment)(p) }
	return &MTQUnbounded{q: newLinkedQueue(uint64(segCapacity), maxThreads, newSeg, wrap)}
}

func (q *MTQUnbounded) Push(item unsafe.Pointer, tid int) bool {
	return q.q.push(item, tid)
}

func (q *MTQUnbounded) Pop(tid int) (unsafe.Pointer, bool) {
	return q.q.pop(tid)
}

func (q *MTQUnbounded) Length(tid int) int {
	return q.q.length()
}

func (q *MTQUnbounded) ClassName() string {
	return "MTQUnbounded"
}

func (q *MTQUnbounded) Drain() {
	q.q.drain()
}

func (q *MTQUnbounded) LiveSegments() int64 {
	return q.q.liveSegmentCount()
}
