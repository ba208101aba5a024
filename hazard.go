// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !lfq_nohazard

package lfq

import (
	"unsafe"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// HazardMaxThreads is the compile-time cap on the number of distinct
// thread ids a hazard registry can serve. Constructors reject
// maxThreads > HazardMaxThreads rather than growing the table.
const HazardMaxThreads = 256

// hazardSlotsPerThread is fixed: slot 0 protects the tail segment, slot 1
// protects the head segment.
const hazardSlotsPerThread = 2

const (
	hazardSlotTail = 0
	hazardSlotHead = 1
)

// reclaimer is invoked exactly once per retired pointer, after the scan
// confirms no thread still holds it hazard-protected. The unbounded queues
// use it only to decrement their live-segment (or live-node) counter, which
// is what the "no leaks" property is tested against; the Go garbage
// collector frees the memory once the segment is unreachable.
type reclaimer func(unsafe.Pointer)

// hazardRegistry is a per-queue, fixed-size publish table plus per-thread
// retire lists. It is never process-global.
//
// Publish uses release ordering so a subsequent scanner observes the
// published pointer before any other store; protect()'s re-read uses
// acquire ordering so the caller observes a value any concurrent scan
// would also observe.
type hazardRegistry struct {
	slots      [HazardMaxThreads][hazardSlotsPerThread]atomix.Uintptr
	retired    [HazardMaxThreads][]unsafe.Pointer
	maxThreads int
	reclaim    reclaimer
}

func newHazardRegistry(maxThreads int, reclaim reclaimer) *hazardRegistry {
	if maxThreads <= 0 || maxThreads > HazardMaxThreads {
		panic("lfq: maxThreads must be in (0, HazardMaxThreads]")
	}
	return &hazardRegistry{maxThreads: maxThreads, reclaim: reclaim}
}

// protect publishes the current value of source into hazard[tid][slot],
// then re-reads source until the published value is stable, returning it.
// This is the standard hazard-pointer publish/verify loop: without the
// re-read a retiring thread could free the object between the publish and
// the caller's use of it.
func (r *hazardRegistry) protect(slot, tid int, source *atomix.Uintptr) unsafe.Pointer {
	sw := spin.Wait{}
	for {
		cur := source.LoadAcquire()
		r.slots[tid][slot].StoreRelease(cur)
		if source.LoadAcquire() == cur {
			return unsafe.Pointer(cur)
		}
		sw.Once()
	}
}

// protectPtr is protect for a raw pointer read rather than an atomic
// source, used when re-checking against a value already in hand (e.g. the
// driver's "re-check against tail.load(); if stale, re-protect" step).
func (r *hazardRegistry) protectPtr(slot, tid int, p unsafe.Pointer) {
	r.slots[tid][slot].StoreRelease(uintptr(p))
}

// clear publishes null into every slot owned by tid.
func (r *hazardRegistry) clear(tid int) {
	for slot := range r.slots[tid] {
		r.slots[tid][slot].StoreRelease(0)
	}
}

// clearSlot publishes null into a single slot owned by tid.
func (r *hazardRegistry) clearSlot(slot, tid int) {
	r.slots[tid][slot].StoreRelease(0)
}

// retire appends ptr to tid's retired list and attempts a scan. An object
// is freed iff no thread currently has it published in any slot; objects
// that fail the check are kept for the next retire call, so reclamation
// is amortized rather than immediate.
func (r *hazardRegistry) retire(ptr unsafe.Pointer, tid int) {
	if ptr == nil {
		return
	}
	r.retired[tid] = append(r.retired[tid], ptr)
	r.scan(tid)
}

// scan walks the full registry matrix once per retired object still
// pending for tid, freeing those no slot references.
func (r *hazardRegistry) scan(tid int) {
	list := r.retired[tid]
	kept := list[:0]
	for _, ptr := range list {
		if r.isProtected(ptr) {
			kept = append(kept, ptr)
			continue
		}
		r.reclaim(ptr)
	}
	r.retired[tid] = kept
}

func (r *hazardRegistry) isProtected(ptr unsafe.Pointer) bool {
	want := uintptr(ptr)
	for t := 0; t < r.maxThreads; t++ {
		for s := 0; s < hazardSlotsPerThread; s++ {
			if r.slots[t][s].LoadAcquire() == want {
				return true
			}
		}
	}
	return false
}
