//go:build !linux

package affinity

import (
	"runtime"
	"sync"

	"github.com/ssfdust/burst-elastic/internal/common/logging"
)

var warnUnsupported sync.Once

func coreIDs() ([]int, error) {
	ids := make([]int, runtime.NumCPU())
	for i := range ids {
		ids[i] = i
	}
	return ids, nil
}

func pin(int) error {
	warnUnsupported.Do(func() {
		logging.Warnf("CPU affinity is not supported on %s; worker threads will not be pinned", runtime.GOOS)
	})
	return nil
}
