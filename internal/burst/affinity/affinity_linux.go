package affinity

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

func coreIDs() ([]int, error) {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err != nil {
		return nil, errors.Wrap(err, "reading process cpu affinity")
	}
	ids := make([]int, 0, set.Count())
	for cpu := 0; len(ids) < set.Count(); cpu++ {
		if set.IsSet(cpu) {
			ids = append(ids, cpu)
		}
	}
	return ids, nil
}

// pin uses tid 0, which sched_setaffinity interprets as the calling thread.
func pin(core int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(core)
	return unix.SchedSetaffinity(0, &set)
}
