// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !lfq_cautious

package lfq

// cautiousEmpty is a no-op by default: CRQ/PRQ/MTQ dequeue always attempts the
// fetch-add ticket path and relies on the inner retry loop to discover
// emptiness.
func (s *segBase) cautiousEmpty() bool {
	return false
}

// cautiousEmpty is a no-op by default for FAA nodes too.
func (n *faaNode) cautiousEmpty() bool {
	return false
}
