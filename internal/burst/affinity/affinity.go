// Package affinity discovers the CPU cores available to the process and binds OS threads to them.
//
// Pinning applies to the calling OS thread only. Goroutines must call runtime.LockOSThread before Pin and stay locked
// for as long as the binding should hold; threads started elsewhere in the process keep their own affinity.
package affinity

import (
	"github.com/pkg/errors"
)

// CoreIDs lists the ids of the cores this process may run on, in ascending order.
func CoreIDs() ([]int, error) {
	return coreIDs()
}

// Pin binds the calling OS thread to core. On platforms without a thread affinity mechanism it logs a warning once and
// leaves the thread unpinned.
func Pin(core int) error {
	if core < 0 {
		return errors.Errorf("invalid core id %d", core)
	}
	return errors.Wrapf(pin(core), "pinning thread to core %d", core)
}
