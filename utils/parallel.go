package utils

import (
	"context"
	"runtime"
	"sync"

	"github.com/pkg/errors"
)

// ParallelFactor controls the max level of parallelization. This might be useful
// to set in tests where too much parallelism actually slows tests down in
// aggregate.
var ParallelFactor = runtime.GOMAXPROCS(0)

func init() {
	if ParallelFactor <= 0 {
		ParallelFactor = 1
	}
}

// GroupWorkFunc handles the work items in [from, to).
type GroupWorkFunc func(groupNum, from, to int) error

// GroupWorkParallel splits totalSize work items into at most ParallelFactor contiguous groups and
// runs each group on its own goroutine. It returns the error of the lowest numbered failing group.
func GroupWorkParallel(ctx context.Context, totalSize int, groupWork GroupWorkFunc) error {
	if totalSize <= 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	numGroups := ParallelFactor
	if numGroups < 1 {
		numGroups = 1
	}
	if numGroups > totalSize {
		numGroups = totalSize
	}
	groupSize := totalSize / numGroups
	extra := totalSize % numGroups

	errs := make([]error, numGroups)
	var wait sync.WaitGroup
	wait.Add(numGroups)
	from := 0
	for groupNum := 0; groupNum < numGroups; groupNum++ {
		to := from + groupSize
		if groupNum < extra {
			to++
		}
		go func(groupNum, from, to int) {
			defer wait.Done()
			defer func() {
				if r := recover(); r != nil {
					errs[groupNum] = errors.Errorf("panic in work group %d: %v", groupNum, r)
				}
			}()
			errs[groupNum] = groupWork(groupNum, from, to)
		}(groupNum, from, to)
		from = to
	}
	wait.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return ctx.Err()
}
