// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfq

import (
	"unsafe"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// crqUnsafeBit is the top bit of a cell's idx word: once set, a dequeuer
// has poisoned the slot against a stale enqueuer.
const crqUnsafeBit = uint64(1) << 63

// crqCloseThreshold bounds how many failed weak closes a segment accepts
// before an enqueuer force-closes it unconditionally.
const crqCloseThreshold = 10

// crqDequeueRetryBudget bounds the inner dequeue spin before a thread
// gives up and poisons the cell rather than waiting indefinitely for an
// in-flight enqueuer.
const crqDequeueRetryBudget = 1000

func crqEncodeIdx(unsafeBit bool, idx uint64) uint64 {
	if unsafeBit {
		return idx | crqUnsafeBit
	}
	return idx &^ crqUnsafeBit
}

func crqDecodeIdx(raw uint64) (unsafeBit bool, idx uint64) {
	return raw&crqUnsafeBit != 0, raw &^ crqUnsafeBit
}

// crqCell is a (value, idx) pair packed into a single 128-bit atomic so
// both fields move together under one compare-and-swap. lo carries idx
// (unsafe bit | logical index), hi carries the payload pointer's bits (0
// means empty).
//
// This is the double-word analogue of an mpmc128Slot-style (lo=cycle,
// hi=value) layout: same packing trick, repurposed so the low word is a
// per-slot sequence rather than a cycle counter.
type crqCell struct {
	entry atomix.Uint128
	_     [cellPadBytes]byte
}

// crqSegment is a bounded ring using the CRQ (Concurrent Ring Queue)
// protocol: a double-word CAS matches (value, idx) atomically, so a
// dequeuer can tell a fresh empty slot from one an enqueuer is still
// filling without a separate sentinel.
type crqSegment struct {
	segBase
	cells    []crqCell
	linkable bool // false for a standalone bounded queue: never closes
}

func newCRQSegment(capacity, start uint64, linkable bool) *crqSegment {
	s := &crqSegment{linkable: linkable}
	s.initBase(capacity, start)
	s.cells = make([]crqCell, s.capacity)
	for i := uint64(0); i < s.capacity; i++ {
		t := start + i
		s.cells[s.slot(t)].entry.StoreRelaxed(t, 0)
	}
	return s
}

func (s *crqSegment) enqueue(item unsafe.Pointer, tid int) bool {
	if item == nil {
		panic("lfq: nil item")
	}
	safeCluster(&s.cluster)
	var closeAttempts int64
	sw := spin.Wait{}
	for {
		raw := s.tail.AddAcqRel(1) - 1
		if s.linkable && isClosedTail(raw) {
			return false
		}
		ti := tailIndex(raw)
		cell := &s.cells[s.slot(ti)]
		lo, hi := cell.entry.LoadAcquire()
		unsafeBit, idx := crqDecodeIdx(lo)

		if hi == 0 && idx <= ti && (!unsafeBit || s.head.LoadAcquire() < ti) {
			if cell.entry.CompareAndSwapAcqRel(lo, hi, ti, uint64(uintptr(item))) {
				return true
			}
		}

		if ti >= s.head.LoadAcquire()+s.capacity {
			if !s.linkable {
				return false
			}
			closeAttempts++
			if s.closeSegment(ti, closeAttempts > crqCloseThreshold) {
				return false
			}
		}
		sw.Once()
	}
}

func (s *crqSegment) dequeue(tid int) (unsafe.Pointer, bool) {
	if s.cautiousEmpty() {
		return nil, false
	}
	safeCluster(&s.cluster)
	sw := spin.Wait{}
	for {
		h := s.head.AddAcqRel(1) - 1
		cell := &s.cells[s.slot(h)]
		r := 0
	inner:
		for {
			lo, hi := cell.entry.LoadAcquire()
			unsafeBit, idx := crqDecodeIdx(lo)

			switch {
			case idx > h:
				break inner
			case hi != 0 && idx == h:
				if cell.entry.CompareAndSwapAcqRel(lo, hi, crqEncodeIdx(unsafeBit, h+s.capacity), 0) {
					return ptrFromWord(uintptr(hi)), true
				}
			case hi != 0:
				// Stale tail: poison the slot so the racing enqueuer
				// that owns idx discovers it lost the cell.
				if cell.entry.CompareAndSwapAcqRel(lo, hi, crqEncodeIdx(true, idx), hi) {
					break inner
				}
			default:
				if unsafeBit || isClosedTail(s.tail.LoadAcquire()) || r >= crqDequeueRetryBudget {
					if cell.entry.CompareAndSwapAcqRel(lo, hi, crqEncodeIdx(true, h+s.capacity), 0) {
						break inner
					}
				}
				r++
			}
			sw.Once()
		}

		if tailIndex(s.tail.LoadAcquire()) <= h {
			s.fixState()
			return nil, false
		}
	}
}

func (s *crqSegment) closeSeg(ticket uint64, force bool) bool {
	return s.closeSegment(ticket, force)
}

func (s *crqSegment) tailTicket() uint64 {
	return s.tail.LoadAcquire()
}

func (s *crqSegment) headTicket() uint64 {
	return s.head.LoadAcquire()
}

func (s *crqSegment) isClosed() bool {
	return isClosedTail(s.tail.LoadAcquire())
}

func (s *crqSegment) identity() unsafe.Pointer {
	return unsafe.Pointer(s)
}

func (s *crqSegment) loadNext() segment {
	p := s.next.LoadAcquire()
	if p == 0 {
		return nil
	}
	return (*crqSegment)(unsafe.Pointer(p))
}

func (s *crqSegment) casNext(newSeg segment) bool {
	ns, ok := newSeg.(*crqSegment)
	if !ok {
		panic("lfq: segment type mismatch in chain")
	}
	return s.next.CompareAndSwapAcqRel(0, uintptr(unsafe.Pointer(ns)))
}

// CRQBounded is a bounded multi-producer multi-consumer queue using the
// CRQ double-word-CAS ring protocol. It never closes: Push simply returns
// false once the ring is full.
type CRQBounded struct {
	seg *crqSegment
}

// NewCRQBounded creates a bounded CRQ queue. Capacity rounds up to the
// next power of two unless built with -tags lfq_modulo.
func NewCRQBounded(capacity int) *CRQBounded {
	if capacity <= 0 {
		panic("lfq: capacity must be > 0")
	}
	return &CRQBounded{seg: newCRQSegment(uint64(capacity), 0, false)}
}

func (q *CRQBounded) Push(item unsafe.Pointer, tid int) bool {
	return q.seg.enqueue(item, tid)
}

func (q *CRQBounded) Pop(tid int) (unsafe.Pointer, bool) {
	return q.seg.dequeue(tid)
}

func (q *CRQBounded) Length(tid int) int {
	return q.seg.length()
}

func (q *CRQBounded) ClassName() string {
	return "CRQBounded"
}

func (q *CRQBounded) Cap() int {
	return int(q.seg.capacity)
}
