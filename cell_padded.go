// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !lfq_nopad

package lfq

// cellPadBytes pads a 16-byte (value, idx) cell out to a full cache line
// to suppress false sharing between adjacent slots.
// This is the default layout; build with -tags lfq_nopad for the packed
// 16-byte layout instead.
const cellPadBytes = 64 - 16
