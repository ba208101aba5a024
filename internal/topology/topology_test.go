// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package topology_test

import (
	"testing"

	"github.com/hayabusa-cloud-go/mpmcq/internal/topology"
)

func TestClusterIDNeverNegative(t *testing.T) {
	if id := topology.ClusterID(); id < 0 {
		t.Fatalf("ClusterID: got %d, want >= 0", id)
	}
}

func TestClusterIDRepeatedCallsNeverNegative(t *testing.T) {
	// A thread's cluster id should not change between two back-to-back
	// calls absent a scheduler migration; we only assert it stays sane.
	for range 1000 {
		if id := topology.ClusterID(); id < 0 {
			t.Fatalf("ClusterID: got %d, want >= 0", id)
		}
	}
}
