// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build lfq_nopad

package lfq

// cellPadBytes is zero under DISABLE_PADDING: cells pack to their natural
// 16-byte size rather than a cache line, trading false-sharing resistance
// for memory density.
const cellPadBytes = 0
