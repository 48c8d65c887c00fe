package pipeline

import (
	"context"
	"runtime"
	"sync"
)

// BatchResult pairs one blob's outcome with its input index.
type BatchResult struct {
	Index  int
	Result *Result
	Err    error
}

// ProcessAll runs the pipeline over multiple blobs with a bounded worker
// pool and returns results in input order. Process is reentrant, so workers
// share the pipeline without locking. Blobs not yet started when ctx is
// canceled come back with the context error.
func (p *Pipeline) ProcessAll(ctx context.Context, blobs []UploadedBlob, workers int) []BatchResult {
	results := make([]BatchResult, len(blobs))
	if len(blobs) == 0 {
		return results
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(blobs) {
		workers = len(blobs)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				res, err := p.Process(blobs[idx])
				results[idx] = BatchResult{Index: idx, Result: res, Err: err}
			}
		}()
	}

feed:
	for i := range blobs {
		select {
		case <-ctx.Done():
			for j := i; j < len(blobs); j++ {
				results[j] = BatchResult{Index: j, Err: ctx.Err()}
			}
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
	return results
}
