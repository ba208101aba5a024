// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !lfq_modulo

package lfq

// roundCapacity rounds n up to the next power of two so that slot lookup
// can use a cached bit-mask instead of a division.
func roundCapacity(n uint64) uint64 {
	return roundToPow2Uint64(n)
}

// slot maps a ticket to its physical array position via the cached mask.
func (s *segBase) slot(ticket uint64) uint64 {
	return ticket & s.mask
}

func roundToPow2Uint64(n uint64) uint64 {
	if n < 2 {
		return 2
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}
