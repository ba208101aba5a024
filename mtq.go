// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfq

import (
	"unsafe"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// mtqCell pairs a payload with a per-slot sequence number: seq == ticket
// means the slot is ready to fill, seq == ticket+1 means it is ready to
// drain.
type mtqCell struct {
	seq   atomix.Uint64
	value atomix.Uintptr
	_     [cellPadBytes]byte
}

// mtqSegment is a bounded ring using ticket-plus-sequence matching: each
// slot carries its own generation counter. A single-word CAS on tail
// (enqueue) or head (dequeue) claims the ticket once seq matches it, and a
// store to seq then publishes the slot's new state.
type mtqSegment struct {
	segBase
	cells    []mtqCell
	linkable bool
}

func newMTQSegment(capacity, start uint64, linkable bool) *mtqSegment {
	s := &mtqSegment{linkable: linkable}
	s.initBase(capacity, start)
	s.cells = make([]mtqCell, s.capacity)
	for i := uint64(0); i < s.capacity; i++ {
		t := start + i
		s.cells[s.slot(t)].seq.StoreRelaxed(t)
	}
	return s
}

func (s *mtqSegment) enqueue(item unsafe.Pointer, tid int) bool {
	if item == nil {
		panic("lfq: nil item")
	}
	safeCluster(&s.cluster)
	sw := spin.Wait{}
	for {
		raw := s.tail.LoadAcquire()
		if s.linkable && isClosedTail(raw) {
			return false
		}
		ti := tailIndex(raw)
		cell := &s.cells[s.slot(ti)]
		seq := cell.seq.LoadAcquire()
		diff := int64(seq) - int64(ti)

		switch {
		case diff == 0:
			if s.tail.CompareAndSwapAcqRel(raw, ti+1) {
				cell.value.StoreRelease(uintptr(item))
				cell.seq.StoreRelease(ti + 1)
				return true
			}
		case diff < 0:
			if s.linkable && ti >= s.head.LoadAcquire()+s.capacity {
				// tail is advanced by CAS here, not fetch-add, so the tail
				// this thread observed is ti itself: ticket ti-1 in
				// closeSegment's terms.
				if s.closeSegment(ti-1, false) {
					return false
				}
			} else {
				return false
			}
		}
		sw.Once()
	}
}

func (s *mtqSegment) dequeue(tid int) (unsafe.Pointer, bool) {
	if s.cautiousEmpty() {
		return nil, false
	}
	safeCluster(&s.cluster)
	sw := spin.Wait{}
	for {
		h := s.head.LoadAcquire()
		cell := &s.cells[s.slot(h)]
		seq := cell.seq.LoadAcquire()
		diff := int64(seq) - int64(h+1)

		switch {
		case diff == 0:
			if s.head.CompareAndSwapAcqRel(h, h+1) {
				v := cell.value.LoadAcquire()
				cell.value.StoreRelease(0)
				cell.seq.StoreRelease(h + s.capacity)
				return ptrFromWord(v), true
			}
		case diff < 0:
			if tailIndex(s.tail.LoadAcquire()) <= h {
				s.fixState()
				return nil, false
			}
		}
		sw.Once()
	}
}

func (s *mtqSegment) closeSeg(ticket uint64, force bool) bool {
	return s.closeSegment(ticket, force)
}

func (s *mtqSegment) tailTicket() uint64 {
	return s.tail.LoadAcquire()
}

func (s *mtqSegment) headTicket() uint64 {
	return s.head.LoadAcquire()
}

func (s *mtqSegment) isClosed() bool {
	return isClosedTail(s.tail.LoadAcquire())
}

func (s *mtqSegment) identity() unsafe.Pointer {
	return unsafe.Pointer(s)
}

func (s *mtqSegment) loadNext() segment {
	p := s.next.LoadAcquire()
	if p == 0 {
		return nil
	}
	return (*mtqSegment)(unsafe.Pointer(p))
}

func (s *mtqSegment) casNext(newSeg segment) bool {
	ns, ok := newSeg.(*mtqSegment)
	if !ok {
		panic("lfq: segment type mismatch in chain")
	}
	return s.next.CompareAndSwapAcqRel(0, uintptr(unsafe.Pointer(ns)))
}

// MTQBounded is a bounded multi-producer multi-consumer queue using
// ticket-plus-sequence matching: single-word CASes on head and tail, full
// ABA safety via the per-slot generation counter.
type MTQBounded struct {
	seg *mtqSegment
}

// NewMTQBounded creates a bounded MTQ queue.
func NewMTQBounded(capacity int) *MTQBounded {
	if capacity <= 0 {
		panic("lfq: capacity must be > 0")
	}
	return &MTQBounded{seg: newMTQSegment(uint64(capacity), 0, false)}
}

func (q *MTQBounded) Push(item unsafe.Pointer, tid int) bool {
	return q.seg.enqueue(item, tid)
}

func (q *MTQBounded) Pop(tid int) (unsafe.Pointer, bool) {
	return q.seg.dequeue(tid)
}

func (q *MTQBounded) Length(tid int) int {
	return q.seg.length()
}

func (q *MTQBounded) ClassName() string {
	return "MTQBounded"
}

func (q *MTQBounded) Cap() int {
	return int(q.seg.capacity)
}
