// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !lfq_nonuma

package lfq

import (
	"time"

	"code.hybscloud.com/atomix"

	"github.com/hayabusa-cloud-go/mpmcq/internal/topology"
)

// numaBackoff separates repeated ownership-steal attempts so that threads
// on two different clusters don't thrash the cluster field back and forth.
const numaBackoff = 100 * time.Microsecond

// numaMaxAttempts bounds the spin: safeCluster is a locality heuristic,
// never a correctness gate, so it must always return.
const numaMaxAttempts = 4

// safeCluster biases the calling thread toward the segment's last
// observed NUMA cluster: if the segment is already "owned" by this
// thread's cluster it returns immediately, otherwise it tries to steal
// ownership via CAS, backing off briefly between attempts.
func safeCluster(cluster *atomix.Int64) {
	mine := int64(topology.ClusterID())
	for attempt := 0; attempt < numaMaxAttempts; attempt++ {
		owner := cluster.LoadAcquire()
		if owner == mine {
			return
		}
		if cluster.CompareAndSwapAcqRel(owner, mine) {
			return
		}
		time.Sleep(numaBackoff)
	}
}
