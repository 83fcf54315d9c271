package generator

import (
	"runtime"
)

// GetWorkerCount returns the number of workers to use.
// If configured workers is 0, auto-detects using runtime.NumCPU().
func GetWorkerCount(configured int) int {
	if configured > 0 {
		return configured
	}
	cpus := runtime.NumCPU()
	if cpus < 1 {
		return 1
	}
	return cpus
}

// ChunkSize splits total items into batches for progress reporting, aiming
// for roughly 100 updates and never less than one item per batch.
func ChunkSize(total int) int {
	size := total / 100
	if size < 1 {
		return 1
	}
	return size
}
