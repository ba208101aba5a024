// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build lfq_nonuma

package lfq

import "code.hybscloud.com/atomix"

// safeCluster is a no-op under DISABLE_NUMA: locality is never a
// correctness gate, so stubbing the probe changes performance only.
func safeCluster(_ *atomix.Int64) {
}
