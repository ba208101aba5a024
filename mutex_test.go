// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfq_test

import (
	"sync"
	"testing"
	"unsafe"

	"github.com/hayabusa-cloud-go/mpmcq"
)

func TestMutexBoundedFIFOOrder(t *testing.T) {
	q := lfq.NewMutexBounded(4)
	vals := []int{1, 2, 3, 4}
	for i := range vals {
		if !q.Push(unsafe.Pointer(&vals[i]), 0) {
			t.Fatalf("push %d failed unexpectedly", i)
		}
	}
	if q.Push(unsafe.Pointer(&vals[0]), 0) {
		t.Fatal("push beyond capacity should fail")
	}
	for i := range vals {
		got, ok := q.Pop(0)
		if !ok || got != unsafe.Pointer(&vals[i]) {
			t.Fatalf("pop %d returned wrong pointer or reported empty", i)
		}
	}
	if _, ok := q.Pop(0); ok {
		t.Fatal("pop on empty queue should return false")
	}
}

func TestMutexBoundedClassName(t *testing.T) {
	if lfq.NewMutexBounded(4).ClassName() != "MutexBounded" {
		t.Fatal("unexpected ClassName for MutexBounded")
	}
}

func TestMutexUnboundedNeverRejectsPush(t *testing.T) {
	q := lfq.NewMutexUnbounded()
	vals := make([]int, 1000)
	for i := range vals {
		if !q.Push(unsafe.Pointer(&vals[i]), 0) {
			t.Fatalf("unbounded push %d must never fail", i)
		}
	}
	if q.Length(0) != len(vals) {
		t.Fatalf("Length() = %d, want %d", q.Length(0), len(vals))
	}
	for i := range vals {
		got, ok := q.Pop(0)
		if !ok || got != unsafe.Pointer(&vals[i]) {
			t.Fatalf("pop %d returned wrong pointer or reported empty", i)
		}
	}
}

func TestMutexBoundedConcurrentTransferAll(t *testing.T) {
	if lfq.RaceEnabled {
		t.Skip("skip: heavy concurrent stress test under -race")
	}
	const numProducers = 8
	const itemsPerProducer = 2000
	q := lfq.NewMutexBounded(64)

	items := make([][]int, numProducers)
	for p := range items {
		items[p] = make([]int, itemsPerProducer)
		for i := range items[p] {
			items[p][i] = p*itemsPerProducer + i
		}
	}

	var wg sync.WaitGroup
	wg.Add(numProducers)
	for p := 0; p < numProducers; p++ {
		go func(p int) {
			defer wg.Done()
			for i := range items[p] {
				for !q.Push(unsafe.Pointer(&items[p][i]), 0) {
				}
			}
		}(p)
	}

	seen := make(map[int]bool)
	var mu sync.Mutex
	var consumerWg sync.WaitGroup
	consumerWg.Add(4)
	for c := 0; c < 4; c++ {
		go func() {
			defer consumerWg.Done()
			for {
				ptr, ok := q.Pop(0)
				if !ok {
					mu.Lock()
					done := len(seen) == numProducers*itemsPerProducer
					mu.Unlock()
					if done {
						return
					}
					continue
				}
				v := *(*int)(ptr)
				mu.Lock()
				seen[v] = true
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
	consumerWg.Wait()

	if len(seen) != numProducers*itemsPerProducer {
		t.Fatalf("saw %d distinct values, want %d", len(seen), numProducers*itemsPerProducer)
	}
}
