// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build lfq_cautious

package lfq

// cautiousEmpty adds an empty-check short-circuit at dequeue entry
// (CAUTIOUS_DEQUEUE): a thread that sees head caught up to tail skips the
// fetch-add entirely, avoiding an unnecessary round through the ring.
func (s *segBase) cautiousEmpty() bool {
	return tailIndex(s.tail.LoadAcquire()) <= s.head.LoadAcquire()
}

// cautiousEmpty is the FAA node's form of the same short-circuit: deqidx
// caught up to enqidx with no successor linked means nothing further can
// arrive at this node.
func (n *faaNode) cautiousEmpty() bool {
	return n.deqidx.LoadAcquire() >= n.enqidx.LoadAcquire() && n.next.LoadAcquire() == 0
}
