// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfq_test

import (
	"testing"
	"unsafe"

	"github.com/hayabusa-cloud-go/mpmcq"
)

func TestCRQBoundedFIFOOrder(t *testing.T) {
	q := lfq.NewCRQBounded(8)
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

func TestCRQBoundedRejectsWhenFull(t *testing.T) {
	q := lfq.NewCRQBounded(4) // rounds to 4
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

func TestCRQBoundedCapacityRoundsToPow2(t *testing.T) {
	q := lfq.NewCRQBounded(5)
	if q.Cap() != 8 {
		t.Fatalf("Cap() = %d, want 8", q.Cap())
	}
}

func TestCRQBoundedClassName(t *testing.T) {
	q := lfq.NewCRQBounded(4)
	if q.ClassName() != "CRQBounded" {
		t.Fatalf("ClassName() = %q, want CRQBounded", q.ClassName())
	}
}

func TestCRQBoundedPushPanicsOnNil(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic pushing a nil item")
		}
	}()
	lfq.NewCRQBounded(4).Push(nil, 0)
}

func TestCRQBoundedRefillAfterDrain(t *testing.T) {
	q := lfq.NewCRQBounded(4)
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
