package testutil

import (
	"errors"
	"sync"
	"sync/atomic"

	dErrors "inkwell/pkg/domain-errors"
)

// ConcurrentResult tracks outcomes of concurrent test operations.
type ConcurrentResult struct {
	Successes int32
	Rejected  int32
	Invalid   int32
	Errors    int32
}

// Total returns the total number of operations executed.
func (r *ConcurrentResult) Total() int32 {
	return r.Successes + r.Rejected + r.Invalid + r.Errors
}

var (
	errRateLimited  = &dErrors.Error{Code: dErrors.CodeRateLimitExceeded}
	errInvalidToken = &dErrors.Error{Code: dErrors.CodeInvalidToken}
)

// RunConcurrent starts all goroutines behind a barrier so they race for real,
// then buckets outcomes: nil is a success, RateLimitExceeded a rejection,
// InvalidToken an invalid credential, anything else an error.
func RunConcurrent(goroutines int, fn func(idx int) error) *ConcurrentResult {
	var (
		wg                              sync.WaitGroup
		successes, rejected, invalid, e atomic.Int32
	)
	start := make(chan struct{})

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			<-start
			err := fn(idx)
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, errRateLimited):
				rejected.Add(1)
			case errors.Is(err, errInvalidToken):
				invalid.Add(1)
			default:
				e.Add(1)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	return &ConcurrentResult{
		Successes: successes.Load(),
		Rejected:  rejected.Load(),
		Invalid:   invalid.Load(),
		Errors:    e.Load(),
	}
}
