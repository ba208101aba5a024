// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfq

import (
	"unsafe"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// faaTakenTag marks a slot as already dequeued, distinguishing a drained
// slot from one an enqueuer has simply not filled in yet. Live payload
// pointers must leave their low bit clear, the same alignment
// precondition PRQ imposes.
const faaTakenTag = uintptr(1)

// faaDequeueRetryBudget bounds how many times a dequeuer re-reads a
// claimed slot before giving up on the enqueuer ever finishing its store.
// A slot only sits in this state while a producer is between its index
// claim and its value write, a window measured in instructions, so a
// budget this size is never exhausted by a live producer, only a
// descheduled or crashed one.
const faaDequeueRetryBudget = 4096

type faaSlot struct {
	value atomix.Uintptr
	_     [cellPadBytes]byte
}

// take atomically exchanges the slot's value for the taken sentinel,
// returning whatever was there. atomix has no native exchange, so this is
// a CAS-retry loop instead; the loop only spins while some other
// dequeuer is racing for the same slot, which a fetch-add index claim
// already prevents, so in practice it succeeds on the first pass.
func (c *faaSlot) take() uintptr {
	for {
		cur := c.value.LoadAcquire()
		if c.value.CompareAndSwapAcqRel(cur, faaTakenTag) {
			return cur
		}
	}
}

// faaNode is a fixed-capacity, append-only array: enqidx and deqidx are
// independent counters over a direct-indexed (never wrapped, never masked)
// slot array. enqidx is advanced by fetch-add; deqidx is advanced by CAS,
// and only past indices enqidx has already handed out, so it never runs
// ahead of enqidx. Each index is claimed by exactly one enqueuer
// and one dequeuer; the slot itself still needs a CAS on both sides,
// since a dequeuer can claim an index before the matching enqueuer has
// published its value there.
type faaNode struct {
	_        pad
	enqidx   atomix.Uint64
	_        pad
	deqidx   atomix.Uint64
	_        pad
	cluster  atomix.Int64
	_        pad
	next     atomix.Uintptr
	slots    []faaSlot
	capacity uint64
	start    uint64
}

func newFAANode(capacity, start uint64) *faaNode {
	if capacity < 1 {
		capacity = 1
	}
	n := &faaNode{capacity: capacity, start: start}
	n.slots = make([]faaSlot, capacity)
	n.enqidx.StoreRelaxed(0)
	n.deqidx.StoreRelaxed(0)
	return n
}

// enqueue claims the next free index and CASes the item into place. The
// CAS (rather than a plain store) matters because a dequeuer may already
// have claimed this index and, after its retry budget, tagged the slot as
// taken before the producer's store; without the CAS that race would silently overwrite a
// still-relevant taken marker with a live pointer no dequeuer will ever
// come back for.
func (n *faaNode) enqueue(item unsafe.Pointer, tid int) bool {
	if item == nil {
		panic("lfq: nil item")
	}
	if uintptr(item)&faaTakenTag != 0 {
		panic("lfq: payload pointer must be word-aligned")
	}
	safeCluster(&n.cluster)
	idx := n.enqidx.AddAcqRel(1) - 1
	if idx >= n.capacity {
		return false
	}
	if !n.slots[idx].value.CompareAndSwapAcqRel(0, uintptr(item)) {
		// A dequeuer already poisoned this slot with the taken tag ahead
		// of us; the index is burned but the item was never published,
		// so the caller must retry on whatever comes next.
		return false
	}
	return true
}

// dequeue claims the next unconsumed index and waits out the race where
// the matching enqueuer has reserved the slot but not yet written it. The
// wait is bounded: past the retry budget the slot is poisoned with the
// taken tag so no later reader waits on it either, and this dequeue
// reports empty rather than spinning forever on a stalled producer.
func (n *faaNode) dequeue(tid int) (unsafe.Pointer, bool) {
	if n.cautiousEmpty() {
		return nil, false
	}
	safeCluster(&n.cluster)
	sw := spin.Wait{}
	for {
		idx := n.deqidx.LoadAcquire()
		if idx >= n.capacity {
			return nil, false // exhausted: caller moves on to the next node
		}
		if idx >= n.enqidx.LoadAcquire() {
			return nil, false // nothing enqueued at this index yet
		}
		if !n.deqidx.CompareAndSwapAcqRel(idx, idx+1) {
			sw.Once()
			continue
		}
		slot := &n.slots[idx]
		for r := 0; slot.value.LoadAcquire() == 0; r++ {
			if r > faaDequeueRetryBudget {
				if !slot.value.CompareAndSwapAcqRel(0, faaTakenTag) {
					break // enqueuer finally landed its write; fall through
				}
				return nil, false
			}
			sw.Once()
		}
		return ptrFromWord(slot.take()), true
	}
}

// closeSeg forces enqidx to capacity: the FAA node's form of "closed" is
// index exhaustion rather than a tagged bit, since enqidx and deqidx
// never share a word.
func (n *faaNode) closeSeg() {
	for {
		cur := n.enqidx.LoadAcquire()
		if cur >= n.capacity {
			return
		}
		if n.enqidx.CompareAndSwapAcqRel(cur, n.capacity) {
			return
		}
	}
}

func (n *faaNode) length() int {
	enq := n.enqidx.LoadAcquire()
	if enq > n.capacity {
		enq = n.capacity
	}
	deq := n.deqidx.LoadAcquire()
	if deq >= enq {
		return 0
	}
	return int(enq - deq)
}

func (n *faaNode) identity() unsafe.Pointer {
	return unsafe.Pointer(n)
}

func (n *faaNode) loadNext() *faaNode {
	p := n.next.LoadAcquire()
	if p == 0 {
		return nil
	}
	return (*faaNode)(unsafe.Pointer(p))
}

func (n *faaNode) casNext(next *faaNode) bool {
	return n.next.CompareAndSwapAcqRel(0, uintptr(unsafe.Pointer(next)))
}

// FAABounded is a bounded multi-producer multi-consumer queue backed by
// a single append-only FAA node. Unlike CRQ/PRQ/MTQ it never drains a
// ring for reuse: once capacity enqueues have happened, Push always
// returns false even if every item has since been popped. Use
// FAAUnbounded for a queue that keeps accepting work.
type FAABounded struct {
	node *faaNode
}

// NewFAABounded creates a bounded, single-use-capacity FAA queue.
func NewFAABounded(capacity int) *FAABounded {
	if capacity <= 0 {
		panic("lfq: capacity must be > 0")
	}
	return &FAABounded{node: newFAANode(uint64(capacity), 0)}
}

func (q *FAABounded) Push(item unsafe.Pointer, tid int) bool {
	return q.node.enqueue(item, tid)
}

func (q *FAABounded) Pop(tid int) (unsafe.Pointer, bool) {
	return q.node.dequeue(tid)
}

func (q *FAABounded) Length(tid int) int {
	return q.node.length()
}

func (q *FAABounded) ClassName() string {
	return "FAABounded"
}

func (q *FAABounded) Cap() int {
	return int(q.node.capacity)
}

// Drain lets consumers keep draining a FAABounded after producers are
// done; since FAA nodes never wrap, this is already always the queue's
// behavior — Drain exists only to satisfy the Drainer interface for
// callers written generically against it.
func (q *FAABounded) Drain() {
}

// FAAUnbounded is an unbounded multi-producer multi-consumer queue built
// by chaining append-only FAA nodes directly. Unlike CRQ/PRQ/MTQ it does
// not go through the linked-ring driver: FAA nodes never reuse a slot
// once it's been taken, so there is no ring-wraparound or segment
// interface polymorphism to share with those three families, only the
// same head/tail chase and hazard-protected retirement the driver also
// does, wired straight against faaNode instead of the segment interface.
type FAAUnbounded struct {
	_         pad
	headPtr   atomix.Uintptr
	_         pad
	tailPtr   atomix.Uintptr
	_         pad
	liveNodes atomix.Int64
	_         pad
	closed    atomix.Bool

	hz           *hazardRegistry
	nodeCapacity uint64
}

// NewFAAUnbounded creates an unbounded FAA-backed queue. nodeCapacity is
// the slot count of each chained node; maxThreads bounds concurrent
// callers for hazard-pointer bookkeeping.
func NewFAAUnbounded(nodeCapacity, maxThreads int) *FAAUnbounded {
	if nodeCapacity <= 0 {
		panic("lfq: nodeCapacity must be > 0")
	}
	first := newFAANode(uint64(nodeCapacity), 0)
	q := &FAAUnbounded{nodeCapacity: uint64(nodeCapacity)}
	q.headPtr.StoreRelaxed(uintptr(first.identity()))
	q.tailPtr.StoreRelaxed(uintptr(first.identity()))
	q.liveNodes.StoreRelaxed(1)
	q.hz = newHazardRegistry(maxThreads, q.reclaimNode)
	return q
}

func (q *FAAUnbounded) reclaimNode(unsafe.Pointer) {
	q.liveNodes.AddAcqRel(-1)
}

func (q *FAAUnbounded) Push(item unsafe.Pointer, tid int) bool {
	sw := spin.Wait{}
	for {
		tailAddr := q.hz.protect(hazardSlotTail, tid, &q.tailPtr)
		node := (*faaNode)(tailAddr)

		if next := node.loadNext(); next != nil {
			q.tailPtr.CompareAndSwapAcqRel(uintptr(tailAddr), uintptr(next.identity()))
			continue
		}

		if node.enqueue(item, tid) {
			q.hz.clearSlot(hazardSlotTail, tid)
			return true
		}

		node.closeSeg()
		if node.loadNext() == nil {
			cand := newFAANode(q.nodeCapacity, node.start+q.nodeCapacity)
			if node.casNext(cand) {
				q.liveNodes.AddAcqRel(1)
				q.tailPtr.CompareAndSwapAcqRel(uintptr(tailAddr), uintptr(cand.identity()))
			}
			// Lost the race to link: cand is simply dropped; the GC
			// reclaims it since nothing else ever observes its address.
		} else if next := node.loadNext(); next != nil {
			q.tailPtr.CompareAndSwapAcqRel(uintptr(tailAddr), uintptr(next.identity()))
		}
		sw.Once()
	}
}

func (q *FAAUnbounded) Pop(tid int) (unsafe.Pointer, bool) {
	for {
		headAddr := q.hz.protect(hazardSlotHead, tid, &q.headPtr)
		node := (*faaNode)(headAddr)

		if item, ok := node.dequeue(tid); ok {
			q.hz.clearSlot(hazardSlotHead, tid)
			return item, true
		}

		next := node.loadNext()
		if next == nil {
			q.hz.clearSlot(hazardSlotHead, tid)
			return nil, false
		}
		// node reported empty and already has a successor, which only
		// happens after node was closed (push only links a successor
		// post-close), so nothing more will ever arrive here and it's
		// safe to retire.
		if q.headPtr.CompareAndSwapAcqRel(uintptr(headAddr), uintptr(next.identity())) {
			q.hz.retire(headAddr, tid)
		}
	}
}

func (q *FAAUnbounded) Length(tid int) int {
	headAddr := q.headPtr.LoadAcquire()
	node := (*faaNode)(unsafe.Pointer(headAddr))
	total := node.length()
	for {
		next := node.loadNext()
		if next == nil {
			break
		}
		total += next.length()
		node = next
	}
	return total
}

func (q *FAAUnbounded) ClassName() string {
	return "FAAUnbounded"
}

// Drain force-closes the current tail node so that no further pushes can
// land, letting consumers empty the chain without producer pressure.
// Callers must ensure no further push calls occur afterward.
func (q *FAAUnbounded) Drain() {
	q.closed.StoreRelease(true)
	tailAddr := q.tailPtr.LoadAcquire()
	(*faaNode)(unsafe.Pointer(tailAddr)).closeSeg()
}

func (q *FAAUnbounded) LiveSegments() int64 {
	return q.liveNodes.LoadAcquire()
}
