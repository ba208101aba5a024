// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build lfq_modulo

package lfq

// roundCapacity is the identity under DISABLE_POW2: any capacity >= 2 is
// accepted as-is and slot lookup falls back to modulo arithmetic.
func roundCapacity(n uint64) uint64 {
	if n < 2 {
		return 2
	}
	return n
}

// slot maps a ticket to its physical array position via modulo.
func (s *segBase) slot(ticket uint64) uint64 {
	return ticket % s.capacity
}
