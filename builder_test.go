// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfq_test

import (
	"testing"

	"github.com/hayabusa-cloud-go/mpmcq"
)

func TestBuildDefaultsToBoundedCRQ(t *testing.T) {
	q := lfq.Build(lfq.New(16))
	if q.ClassName() != "CRQBounded" {
		t.Fatalf("ClassName() = %q, want CRQBounded", q.ClassName())
	}
}

func TestBuildDispatchTable(t *testing.T) {
	cases := []struct {
		name      string
		build     func() lfq.Queue
		className string
	}{
		{"crq-bounded", func() lfq.Queue { return lfq.Build(lfq.New(16).Algorithm(lfq.AlgorithmCRQ)) }, "CRQBounded"},
		{"crq-unbounded", func() lfq.Queue { return lfq.Build(lfq.New(16).Algorithm(lfq.AlgorithmCRQ).Unbounded()) }, "CRQUnbounded"},
		{"prq-bounded", func() lfq.Queue { return lfq.Build(lfq.New(16).Algorithm(lfq.AlgorithmPRQ)) }, "PRQBounded"},
		{"prq-unbounded", func() lfq.Queue { return lfq.Build(lfq.New(16).Algorithm(lfq.AlgorithmPRQ).Unbounded()) }, "PRQUnbounded"},
		{"mtq-bounded", func() lfq.Queue { return lfq.Build(lfq.New(16).Algorithm(lfq.AlgorithmMTQ)) }, "MTQBounded"},
		{"mtq-unbounded", func() lfq.Queue { return lfq.Build(lfq.New(16).Algorithm(lfq.AlgorithmMTQ).Unbounded()) }, "MTQUnbounded"},
		{"faa-bounded", func() lfq.Queue { return lfq.Build(lfq.New(16).Algorithm(lfq.AlgorithmFAA)) }, "FAABounded"},
		{"faa-unbounded", func() lfq.Queue { return lfq.Build(lfq.New(16).Algorithm(lfq.AlgorithmFAA).Unbounded()) }, "FAAUnbounded"},
		{"mutex-bounded", func() lfq.Queue { return lfq.Build(lfq.New(16).Algorithm(lfq.AlgorithmMutex)) }, "MutexBounded"},
		{"mutex-unbounded", func() lfq.Queue { return lfq.Build(lfq.New(16).Algorithm(lfq.AlgorithmMutex).Unbounded()) }, "MutexUnbounded"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := tc.build()
			if q.ClassName() != tc.className {
				t.Fatalf("ClassName() = %q, want %q", q.ClassName(), tc.className)
			}
		})
	}
}

func TestNewPanicsOnNonPositiveCapacity(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for capacity <= 0")
		}
	}()
	lfq.New(0)
}
