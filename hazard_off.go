// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build lfq_nohazard

package lfq

import (
	"unsafe"

	"code.hybscloud.com/atomix"
)

// HazardMaxThreads still bounds thread ids when hazard pointers are
// compiled out, so tid remains a well-defined index for callers that
// switch the build tag on and off.
const HazardMaxThreads = 256

const (
	hazardSlotTail = 0
	hazardSlotHead = 1
)

type reclaimer func(unsafe.Pointer)

// hazardRegistry degenerates to a no-op under DISABLE_HAZARD: retire
// reclaims immediately. This is only safe if reclamation is externally
// guaranteed — e.g. a single-threaded test harness, or a caller
// that quiesces all threads before a segment can be unlinked.
type hazardRegistry struct {
	maxThreads int
	reclaim    reclaimer
}

func newHazardRegistry(maxThreads int, reclaim reclaimer) *hazardRegistry {
	if maxThreads <= 0 || maxThreads > HazardMaxThreads {
		panic("lfq: maxThreads must be in (0, HazardMaxThreads]")
	}
	return &hazardRegistry{maxThreads: maxThreads, reclaim: reclaim}
}

func (r *hazardRegistry) protect(_, _ int, source *atomix.Uintptr) unsafe.Pointer {
	return unsafe.Pointer(source.LoadAcquire())
}

func (r *hazardRegistry) protectPtr(_, _ int, _ unsafe.Pointer) {
}

func (r *hazardRegistry) clear(_ int) {
}

func (r *hazardRegistry) clearSlot(_, _ int) {
}

func (r *hazardRegistry) retire(ptr unsafe.Pointer, _ int) {
	if ptr == nil {
		return
	}
	r.reclaim(ptr)
}
