// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfq

import (
	"testing"
	"unsafe"

	"code.hybscloud.com/atomix"
)

func TestHazardRegistryProtectAndRetire(t *testing.T) {
	var reclaimed []unsafe.Pointer
	r := newHazardRegistry(4, func(p unsafe.Pointer) {
		reclaimed = append(reclaimed, p)
	})

	obj := new(int)
	ptr := unsafe.Pointer(obj)

	var src atomix.Uintptr
	src.StoreRelaxed(uintptr(ptr))

	got := r.protect(hazardSlotHead, 0, &src)
	if got != ptr {
		t.Fatalf("protect returned %p, want %p", got, ptr)
	}

	r.retire(ptr, 1)
	if len(reclaimed) != 0 {
		t.Fatal("retire should not reclaim a pointer still published in a hazard slot")
	}

	r.clearSlot(hazardSlotHead, 0)
	r.retire(ptr, 1)
	if len(reclaimed) != 1 || reclaimed[0] != ptr {
		t.Fatalf("expected ptr to be reclaimed once slot was cleared, reclaimed=%v", reclaimed)
	}
}

func TestHazardRegistryRetireNilIsNoop(t *testing.T) {
	called := false
	r := newHazardRegistry(1, func(unsafe.Pointer) { called = true })
	r.retire(nil, 0)
	if called {
		t.Fatal("retire(nil) must not invoke the reclaimer")
	}
}

func TestHazardRegistryRejectsOutOfRangeMaxThreads(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for maxThreads <= 0")
		}
	}()
	newHazardRegistry(0, func(unsafe.Pointer) {})
}

func TestHazardRegistryRejectsTooManyThreads(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for maxThreads > HazardMaxThreads")
		}
	}()
	newHazardRegistry(HazardMaxThreads+1, func(unsafe.Pointer) {})
}
