// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfq_test

import (
	"testing"
	"unsafe"

	"github.com/hayabusa-cloud-go/mpmcq"
)

func TestFAABoundedFIFOOrder(t *testing.T) {
	q := lfq.NewFAABounded(4)
	vals := []int{1, 2, 3, 4}

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
}

func TestFAABoundedExactCapacityNoRounding(t *testing.T) {
	q := lfq.NewFAABounded(5)
	if q.Cap() != 5 {
		t.Fatalf("Cap() = %d, want 5 (FAA capacity is not rounded)", q.Cap())
	}
}

func TestFAABoundedNeverReusesSlotsAfterExhaustion(t *testing.T) {
	q := lfq.NewFAABounded(2)
	var a, b, c int
	q.Push(unsafe.Pointer(&a), 0)
	q.Push(unsafe.Pointer(&b), 0)
	if q.Push(unsafe.Pointer(&c), 0) {
		t.Fatal("push beyond capacity should fail")
	}
	q.Pop(0)
	q.Pop(0)
	// Capacity is spent even though the queue is now logically empty:
	// an FAA node is append-only and never wraps.
	if q.Push(unsafe.Pointer(&c), 0) {
		t.Fatal("an exhausted FAA node must never accept further pushes")
	}
}

func TestFAABoundedClassName(t *testing.T) {
	q := lfq.NewFAABounded(4)
	if q.ClassName() != "FAABounded" {
		t.Fatalf("ClassName() = %q, want FAABounded", q.ClassName())
	}
}

func TestFAABoundedPushPanicsOnNil(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic pushing a nil item")
		}
	}()
	lfq.NewFAABounded(4).Push(nil, 0)
}
