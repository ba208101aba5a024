// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfq

import (
	"unsafe"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// prqDequeueRetryBudget bounds how many times a dequeuer re-reads a slot
// before giving up and poisoning it, rather than waiting indefinitely for
// an in-flight enqueuer.
const prqDequeueRetryBudget = 4096

// prqBottomTag marks a slot's value word as a per-thread bottom sentinel
// rather than a live pointer. Live payload pointers must leave their low
// bit clear, which platform alignment guarantees for any
// normally-allocated Go value.
const prqBottomTag = uintptr(1)

func prqIsBottom(raw uintptr) bool {
	return raw&prqBottomTag != 0
}

// prqBottomOf encodes the claiming thread's id into a bottom sentinel:
// (tid<<1)|1. The tag only needs to be distinguishable from a live
// pointer; the thread id it carries is never read back, it just keeps two
// concurrent claimants from producing the same bit pattern by accident.
func prqBottomOf(tid int) uintptr {
	return uintptr(tid)<<1 | prqBottomTag
}

// prqCell holds idx and val as two independent single-word atomics, so
// each step of the enqueue protocol below is its own single-word CAS
// rather than the CAS2 crqCell uses.
type prqCell struct {
	idx atomix.Uint64
	val atomix.Uintptr
	_   [cellPadBytes]byte
}

// prqSegment is a bounded ring using the PRQ (Pointer Ring Queue)
// protocol: claiming a slot takes three single-word CASes instead of
// CRQ's one double-word CAS, trading a more involved enqueue for
// portability to platforms without a 128-bit CAS.
type prqSegment struct {
	segBase
	cells    []prqCell
	linkable bool
}

func newPRQSegment(capacity, start uint64, linkable bool) *prqSegment {
	s := &prqSegment{linkable: linkable}
	s.initBase(capacity, start)
	s.cells = make([]prqCell, s.capacity)
	for i := uint64(0); i < s.capacity; i++ {
		t := start + i
		s.cells[s.slot(t)].idx.StoreRelaxed(t)
		s.cells[s.slot(t)].val.StoreRelaxed(0)
	}
	return s
}

// enqueue runs the three-CAS bottom(tid) sequence: claim the slot's value
// with a thread-tagged bottom sentinel, commit the slot's idx past this
// lap, then publish the real item over the bottom. A failure on the idx
// CAS rolls the bottom claim back to null; a failure on the final publish
// simply abandons this ticket and retries with a fresh one.
func (s *prqSegment) enqueue(item unsafe.Pointer, tid int) bool {
	if item == nil {
		panic("lfq: nil item")
	}
	if uintptr(item)&prqBottomTag != 0 {
		panic("lfq: payload pointer must be word-aligned")
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

		idxRaw := cell.idx.LoadAcquire()
		unsafeBit, idx := crqDecodeIdx(idxRaw)
		val := cell.val.LoadAcquire()

		if val == 0 && idx <= ti && (!unsafeBit || s.head.LoadAcquire() < ti) {
			bottom := prqBottomOf(tid)
			if cell.val.CompareAndSwapAcqRel(val, bottom) {
				if cell.idx.CompareAndSwapAcqRel(idxRaw, ti+s.capacity) {
					if cell.val.CompareAndSwapAcqRel(bottom, uintptr(item)) {
						return true
					}
					// Lost the publish race to a dequeuer that poisoned
					// the bottom first: the idx CAS already committed, so
					// there's nothing to roll back. Retry on a new ticket.
				} else {
					cell.val.CompareAndSwapAcqRel(bottom, 0)
				}
			}
		}

		if ti >= s.head.LoadAcquire()+s.capacity {
			closeAttempts++
			if s.closeSegment(ti, closeAttempts > crqCloseThreshold) {
				return false
			}
		}
		sw.Once()
	}
}

// dequeue mirrors CRQ's poison-on-stale-tail shape but must additionally
// treat a bottom sentinel as "enqueuer in progress": it is neither a live
// payload nor proof the slot is free, so it is waited on (bounded) or
// poisoned, never returned as a value.
func (s *prqSegment) dequeue(tid int) (unsafe.Pointer, bool) {
	if s.cautiousEmpty() {
		return nil, false
	}
	safeCluster(&s.cluster)
	sw := spin.Wait{}
	for {
		h := s.head.AddAcqRel(1) - 1
		cell := &s.cells[s.slot(h)]
		r := 0
		var tt uint64
	inner:
		for {
			cellIdx := cell.idx.LoadAcquire()
			unsafeBit, idx := crqDecodeIdx(cellIdx)
			val := cell.val.LoadAcquire()

			if val != 0 && !prqIsBottom(val) {
				if idx == h+s.capacity {
					cell.val.StoreRelease(0)
					return ptrFromWord(val), true
				}
				if unsafeBit {
					if cell.idx.LoadAcquire() == cellIdx {
						break inner
					}
				} else if cell.idx.CompareAndSwapAcqRel(cellIdx, crqEncodeIdx(true, idx)) {
					break inner
				}
			} else {
				if r&255 == 0 {
					tt = s.tail.LoadAcquire()
				}
				closed := isClosedTail(tt)
				t := tailIndex(tt)
				if unsafeBit || t < h+1 || closed || r > prqDequeueRetryBudget {
					if prqIsBottom(val) && !cell.val.CompareAndSwapAcqRel(val, 0) {
						sw.Once()
						continue
					}
					if cell.idx.CompareAndSwapAcqRel(cellIdx, crqEncodeIdx(unsafeBit, h+s.capacity)) {
						break inner
					}
				}
				r++
			}
			sw.Once()
		}

		if tailIndex(s.tail.LoadAcquire()) <= h+1 {
			s.fixState()
			return nil, false
		}
	}
}

func (s *prqSegment) closeSeg(ticket uint64, force bool) bool {
	return s.closeSegment(ticket, force)
}

func (s *prqSegment) tailTicket() uint64 {
	return s.tail.LoadAcquire()
}

func (s *prqSegment) headTicket() uint64 {
	return s.head.LoadAcquire()
}

func (s *prqSegment) isClosed() bool {
	return isClosedTail(s.tail.LoadAcquire())
}

func (s *prqSegment) identity() unsafe.Pointer {
	return unsafe.Pointer(s)
}

func (s *prqSegment) loadNext() segment {
	p := s.next.LoadAcquire()
	if p == 0 {
		return nil
	}
	return (*prqSegment)(unsafe.Pointer(p))
}

func (s *prqSegment) casNext(newSeg segment) bool {
	ns, ok := newSeg.(*prqSegment)
	if !ok {
		panic("lfq: segment type mismatch in chain")
	}
	return s.next.CompareAndSwapAcqRel(0, uintptr(unsafe.Pointer(ns)))
}

// PRQBounded is a bounded multi-producer multi-consumer queue using the
// PRQ single-word-CAS ring protocol. Its slots are the same size as
// CRQBounded's but need no 128-bit CAS, at the cost of a stricter
// alignment precondition on pushed pointers.
type PRQBounded struct {
	seg *prqSegment
}

// NewPRQBounded creates a bounded PRQ queue. Pushed pointers must be at
// least 2-byte aligned; Push panics otherwise.
func NewPRQBounded(capacity int) *PRQBounded {
	if capacity <= 0 {
		panic("lfq: capacity must be > 0")
	}
	return &PRQBounded{seg: newPRQSegment(uint64(capacity), 0, false)}
}

func (q *PRQBounded) Push(item unsafe.Pointer, tid int) bool {
	return q.seg.enqueue(item, tid)
}

func (q *PRQBounded) Pop(tid int) (unsafe.Pointer, bool) {
	return q.seg.dequeue(tid)
}

func (q *PRQBounded) Length(tid int) int {
	return q.seg.length()
}

func (q *PRQBounded) ClassName() string {
	return "PRQBounded"
}

func (q *PRQBounded) Cap() int {
	return int(q.seg.capacity)
}
