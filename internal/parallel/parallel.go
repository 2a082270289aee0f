// Package parallel chunks independent per-body work across goroutines,
// adapted from akmonengine-feather's pipeline.go. Used to integrate
// dynamic bodies within a substep concurrently when a world's body count
// passes World.Workers' threshold — bodies integrate independently of one
// another, only constraint solving is sequential (SPEC_FULL.md §5), so
// chunked concurrent integration is safe.
package parallel

import "sync"

// Run splits [0, size) into workers contiguous chunks and calls fn(start,
// end) for each chunk concurrently, blocking until all chunks finish. A
// size <= 0 returns without calling fn; a workers value <= 1, or a size
// smaller than workers, runs fn(0, size) once inline with no goroutines.
func Run(workers, size int, fn func(start, end int)) {
	if size <= 0 {
		return
	}
	if workers <= 1 || size < workers {
		fn(0, size)
		return
	}

	var wg sync.WaitGroup
	chunkSize := (size + workers - 1) / workers

	for workerID := 0; workerID < workers; workerID++ {
		start := workerID * chunkSize
		if start >= size {
			break
		}
		end := min((workerID+1)*chunkSize, size)

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			fn(start, end)
		}(start, end)
	}
	wg.Wait()
}
