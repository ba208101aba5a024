// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfq_test

import (
	"testing"
	"unsafe"

	"github.com/hayabusa-cloud-go/mpmcq"
)

func TestPRQBoundedFIFOOrder(t *testing.T) {
	q := lfq.NewPRQBounded(8)
	vals := []int{1, 2, 3, 4, 5}

	for i := range vals {
		if !q.Push(unsafe.Pointer(&vals[i]), 0) {
			t.Fatalf("push %d failed unexpectedly", i)
		}
	}
	for i := range vals {
		got, ok := q.Pop(0)
		if !ok {
			t.Fatalf("pop %d: queue reported empty too early", i)
		}
		if got != unsafe.Pointer(&vals[i]) {
			t.Fatalf("pop %d returned wrong pointer", i)
		}
	}
	if _, ok := q.Pop(0); ok {
		t.Fatal("pop on empty queue should return false")
	}
}

func TestPRQBoundedRejectsWhenFull(t *testing.T) {
	q := lfq.NewPRQBounded(4)
	vals := make([]int, q.Cap()+1)
	for i := 0; i < q.Cap(); i++ {
		if !q.Push(unsafe.Pointer(&vals[i]), 0) {
			t.Fatalf("push %d should have succeeded within capacity", i)
		}
	}
	if q.Push(unsafe.Pointer(&vals[q.Cap()]), 0) {
		t.Fatal("push beyond capacity should return false")
	}
}

func TestPRQBoundedClassName(t *testing.T) {
	q := lfq.NewPRQBounded(4)
	if q.ClassName() != "PRQBounded" {
		t.Fatalf("ClassName() = %q, want PRQBounded", q.ClassName())
	}
}

func TestPRQBoundedPushPanicsOnMisalignedPointer(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic pushing a tagged-low-bit pointer")
		}
	}()
	var b [2]byte
	misaligned := unsafe.Pointer(uintptr(unsafe.Pointer(&b[0])) | 1)
	lfq.NewPRQBounded(4).Push(misaligned, 0)
}

func TestPRQBoundedRefillAfterDrain(t *testing.T) {
	q := lfq.NewPRQBounded(4)
	var a, b int
	q.Push(unsafe.Pointer(&a), 0)
	if _, ok := q.Pop(0); !ok {
		t.Fatal("expected pop to succeed")
	}
	if !q.Push(unsafe.Pointer(&b), 0) {
		t.Fatal("ring should accept a new item after head has advanced past a drained slot")
	}
	got, ok := q.Pop(0)
	if !ok || got != unsafe.Pointer(&b) {
		t.Fatal("expected to pop back the refilled item")
	}
}
