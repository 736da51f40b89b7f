package affinity

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestCoreIDs_Linux(t *testing.T) {
	ids, err := CoreIDs()
	require.NoError(t, err)
	require.NotEmpty(t, ids)

	for i := 1; i < len(ids); i++ {
		assert.Less(t, ids[i-1], ids[i], "core ids must be ascending")
	}
}

func TestPin_BindsCallingThread(t *testing.T) {
	ids, err := CoreIDs()
	require.NoError(t, err)
	core := ids[len(ids)-1]

	done := make(chan struct{})
	go func() {
		defer close(done)
		runtime.LockOSThread()
		// The thread is discarded when the goroutine exits still locked, so the pinning cannot leak.

		if !assert.NoError(t, Pin(core)) {
			return
		}

		var set unix.CPUSet
		assert.NoError(t, unix.SchedGetaffinity(0, &set))
		assert.Equal(t, 1, set.Count())
		assert.True(t, set.IsSet(core))
	}()
	<-done
}
