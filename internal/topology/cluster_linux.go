// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux && amd64

package topology

import (
	"syscall"
	"unsafe"
)

// sysGetcpu is the Linux getcpu(2) syscall number on amd64.
const sysGetcpu = 309

// ClusterID returns the calling thread's current NUMA node, as reported by
// the kernel's getcpu(2). Returns 0 if the syscall is unavailable or fails;
// the caller only ever uses the result to bias retry loops toward locality,
// never as a correctness input.
func ClusterID() int {
	var cpu, node uint32
	_, _, errno := syscall.RawSyscall(sysGetcpu, uintptr(unsafe.Pointer(&cpu)), uintptr(unsafe.Pointer(&node)), 0)
	if errno != 0 {
		return 0
	}
	return int(node)
}
