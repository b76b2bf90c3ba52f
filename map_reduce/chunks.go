package map_reduce

import (
	"context"

	"github.com/kevwan/mapreduce/v2"
)

// Each worker gets a few chunks so a slow chunk does not stall the stage.
const chunksPerWorker = 4

type chunk[U any] struct {
	index int
	value U
}

// inChunks splits items into contiguous chunks, applies fn to each chunk on
// up to workers goroutines and returns the results in chunk order. With one
// worker fn runs once over all items on the calling goroutine.
func inChunks[T, U any](ctx context.Context, items []T, workers int, fn func([]T) U) ([]U, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	if workers <= 1 {
		return []U{fn(items)}, nil
	}

	n := workers * chunksPerWorker
	size := (len(items) + n - 1) / n
	n = (len(items) + size - 1) / size

	out, err := mapreduce.MapReduce[int, chunk[U], []U](
		func(source chan<- int) {
			for i := 0; i < n; i++ {
				source <- i
			}
		},
		func(i int, writer mapreduce.Writer[chunk[U]], cancel func(error)) {
			start := i * size
			end := min(start+size, len(items))
			writer.Write(chunk[U]{index: i, value: fn(items[start:end])})
		},
		func(pipe <-chan chunk[U], writer mapreduce.Writer[[]U], cancel func(error)) {
			out := make([]U, n)
			for c := range pipe {
				out[c.index] = c.value
			}
			writer.Write(out)
		},
		mapreduce.WithWorkers(workers),
		mapreduce.WithContext(ctx),
	)
	if err != nil {
		// mapreduce reports any done context as a deadline
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	return out, nil
}
