// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package topology provides a best-effort NUMA-cluster lookup for hot-path
// locality hints.
//
// ClusterID never blocks and never fails: on platforms where the lookup is
// unsupported or the syscall errors, it degrades to a constant 0. Callers
// must treat the result as an optimistic hint, not a correctness input.
package topology
