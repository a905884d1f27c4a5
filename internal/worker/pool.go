package worker

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// Result pairs an input with what processing it produced.
type Result[T any, R any] struct {
	Input  T
	Output R
	Err    error
}

// ProcessFunc processes a single input.
type ProcessFunc[T any, R any] func(ctx context.Context, input T) (R, error)

// Pool runs a ProcessFunc over a slice of inputs with bounded concurrency.
type Pool[T any, R any] struct {
	workers int
	process ProcessFunc[T, R]
}

// NewPool creates a new worker pool.
func NewPool[T any, R any](workers int, fn ProcessFunc[T, R]) *Pool[T, R] {
	if workers < 1 {
		workers = 1
	}
	return &Pool[T, R]{
		workers: workers,
		process: fn,
	}
}

// Execute processes every input and returns results in input order.
// Inputs not started before ctx is cancelled get ctx.Err() as their error.
func (p *Pool[T, R]) Execute(ctx context.Context, inputs []T) []Result[T, R] {
	results := make([]Result[T, R], len(inputs))
	for i, in := range inputs {
		results[i] = Result[T, R]{Input: in}
	}
	inputCh := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for idx := range inputCh {
				out, err := p.process(ctx, inputs[idx])
				results[idx] = Result[T, R]{Input: inputs[idx], Output: out, Err: err}
				if err != nil {
					log.Debug().Err(err).Int("worker", workerID).Int("index", idx).Msg("Task failed")
				}
			}
		}(w)
	}

	for i := range inputs {
		if ctx.Err() == nil {
			select {
			case <-ctx.Done():
			case inputCh <- i:
				continue
			}
		}
		for j := i; j < len(inputs); j++ {
			results[j].Err = ctx.Err()
		}
		break
	}
	close(inputCh)

	wg.Wait()
	return results
}
