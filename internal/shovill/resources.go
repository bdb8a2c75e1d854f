package shovill

import (
	"github.com/kristyhoran/shovill-1/config"
	"golang.org/x/sys/unix"
)

// resources is the thread and memory budget for the run, computed once from
// the user's declared ceilings before the pipeline starts. The split between
// a stage's primary tool and the sorting helper it pipes into is fixed for
// the whole run; there is no rebalancing.
type resources struct {
	// threads granted to each stage's primary tool
	cpus int

	// total memory ceiling in GB
	ramGB int

	// threads granted to alignment sorting
	sortCPUs int

	// per-thread memory for alignment sorting, in MB
	sortMB int
}

// newResources computes the budget split from the declared ceilings.
func newResources(cpus, ramGB int, c *config.Config) resources {
	sortCPUs := sortThreads(cpus)

	return resources{
		cpus:     cpus,
		ramGB:    ramGB,
		sortCPUs: sortCPUs,
		sortMB:   sortMemMB(ramGB, sortCPUs, c.Resource.SortFraction, c.Resource.MinSortMB),
	}
}

// sortThreads is the share of the CPU ceiling handed to the IO-bound
// alignment sorter: a quarter of the CPUs, clamped to [1, 4].
func sortThreads(cpus int) int {
	threads := cpus / 4
	if threads > 4 {
		threads = 4
	}
	if threads < 1 {
		threads = 1
	}

	return threads
}

// sortMemMB divides the sorter's share of the memory ceiling across its
// threads, with a per-thread floor.
func sortMemMB(ramGB, threads int, fraction float64, floorMB int) int {
	mb := int(float64(ramGB) * 1024.0 * fraction / float64(threads))
	if mb < floorMB {
		mb = floorMB
	}

	return mb
}

// machineRAMGB reports the host's total RAM in GB.
func machineRAMGB() (int, error) {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0, err
	}

	totalBytes := uint64(info.Totalram) * uint64(info.Unit)
	return int(totalBytes >> 30), nil
}
