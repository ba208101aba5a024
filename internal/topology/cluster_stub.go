// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !(linux && amd64)

package topology

// ClusterID is a stub for platforms without a cheap NUMA-node syscall.
// Always returns 0, which safeCluster treats as "no preferred cluster".
func ClusterID() int {
	return 0
}
