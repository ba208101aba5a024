// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfq

import (
	"unsafe"

	"code.hybscloud.com/atomix"
)

// ptrFromWord reinterprets a uintptr-sized atomic payload word as
// unsafe.Pointer without an arithmetic uintptr->Pointer conversion,
// which keeps go vet's unsafeptr check quiet.
func ptrFromWord(w uintptr) unsafe.Pointer {
	return *(*unsafe.Pointer)(unsafe.Pointer(&w))
}

// closedBit is the top bit of a segment's tail counter. Once set, the
// segment rejects new enqueues. It does not freeze tailIndex(tail): a CRQ
// or PRQ enqueuer's fetch-add that lands after the close still advances
// it before that enqueuer sees the bit and gives up, and fixState can
// raise it to head.
const closedBit = uint64(1) << 63

// tailIndex strips the closed bit, returning the logical enqueue ticket
// count.
func tailIndex(t uint64) uint64 {
	return t &^ closedBit
}

// isClosedTail reports whether the closed bit is set.
func isClosedTail(t uint64) bool {
	return t&closedBit != 0
}

// segBase is the shared state and shared behavior of every bounded ring
// segment (CRQ, PRQ, MTQ): head/tail tickets, the closed bit encoded in
// tail, the chain's next link, a NUMA locality hint, and the segment's
// starting ticket offset.
//
// segBase carries no cells: concrete segments embed it and add their own
// slot storage, because the cell layout (packed vs padded, CAS2 vs
// single-word) differs per algorithm.
type segBase struct {
	_        pad
	tail     atomix.Uint64
	_        pad
	head     atomix.Uint64
	_        pad
	cluster  atomix.Int64
	_        pad
	next     atomix.Uintptr // *concrete segment type, 0 = none
	capacity uint64
	mask     uint64 // capacity-1, meaningful only under the pow2 build
	start    uint64 // ticket value at which this segment's ring begins
}

func (s *segBase) initBase(capacity, start uint64) {
	n := roundCapacity(capacity)
	s.capacity = n
	s.mask = n - 1
	s.start = start
	s.tail.StoreRelaxed(start)
	s.head.StoreRelaxed(start)
}

// closeSegment attempts to seal the segment against further enqueues. If
// force is false it only succeeds when tail is still exactly ticket+1
// (no other enqueuer has raced ahead); if force is true it unconditionally
// sets the bit. Returns whether the closed bit is now set, by either this
// call or a prior one.
func (s *segBase) closeSegment(ticket uint64, force bool) bool {
	if force {
		for {
			old := s.tail.LoadAcquire()
			if isClosedTail(old) {
				return true
			}
			if s.tail.CompareAndSwapAcqRel(old, old|closedBit) {
				return true
			}
		}
	}
	want := ticket + 1
	if s.tail.CompareAndSwapAcqRel(want, want|closedBit) {
		return true
	}
	return isClosedTail(s.tail.LoadAcquire())
}

// fixState repeatedly observes (tail, head); if head has outrun
// tailIndex(tail) — possible when dequeuers fetch-add past a segment that
// never receives the matching enqueue — it CASes tail up to head,
// preserving the closed bit. Terminates as soon as an observation shows
// head <= tailIndex(tail).
func (s *segBase) fixState() {
	for {
		t := s.tail.LoadAcquire()
		h := s.head.LoadAcquire()
		if h <= tailIndex(t) {
			return
		}
		if s.tail.CompareAndSwapAcqRel(t, h|(t&closedBit)) {
			return
		}
	}
}

// length returns max(0, tail - head), an approximation valid only when no
// concurrent operations are in flight.
func (s *segBase) length() int {
	h := s.head.LoadAcquire()
	t := tailIndex(s.tail.LoadAcquire())
	if t <= h {
		return 0
	}
	return int(t - h)
}

// startTicket returns the global ticket value at which this segment's
// ring begins.
func (s *segBase) startTicket() uint64 {
	return s.start
}
