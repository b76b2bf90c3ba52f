package map_reduce

import (
	"context"
	"fmt"
	"runtime"
)

type Runner struct {
	mapper  Mapper
	reducer Reducer
	workers int
}

type Option func(*Runner)

// WithWorkers bounds the goroutines used by each stage. n <= 0 means
// GOMAXPROCS, 1 runs every stage sequentially.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		r.workers = n
	}
}

func NewRunner(m Mapper, r Reducer, opts ...Option) *Runner {
	runner := &Runner{
		mapper:  m,
		reducer: r,
	}
	for _, opt := range opts {
		opt(runner)
	}
	if runner.workers <= 0 {
		runner.workers = runtime.GOMAXPROCS(0)
	}
	return runner
}

func (r *Runner) Workers() int {
	return r.workers
}

// Map runs the mapper over every line. Events keep line order and, within a
// line, word order.
func (r *Runner) Map(ctx context.Context, lines []string) ([]KeyValue, error) {
	parts, err := inChunks(ctx, lines, r.workers, func(chunk []string) []KeyValue {
		var kvs []KeyValue
		for _, line := range chunk {
			kvs = append(kvs, r.mapper.Map(line)...)
		}
		return kvs
	})
	if err != nil {
		return nil, fmt.Errorf("mapping error: %w", err)
	}
	if len(parts) == 1 {
		return parts[0], nil
	}

	total := 0
	for _, p := range parts {
		total += len(p)
	}
	kvs := make([]KeyValue, 0, total)
	for _, p := range parts {
		kvs = append(kvs, p...)
	}
	return kvs, nil
}

// Shuffle groups values by key. Each worker groups a contiguous slice of the
// events and the partial groups are merged in slice order, so every value
// list stays in encounter order.
func (r *Runner) Shuffle(ctx context.Context, kvs []KeyValue) (Groups, error) {
	parts, err := inChunks(ctx, kvs, r.workers, group)
	if err != nil {
		return nil, fmt.Errorf("shuffle error: %w", err)
	}
	if len(parts) == 1 {
		return parts[0], nil
	}

	groups := make(Groups)
	for _, part := range parts {
		for k, vs := range part {
			groups[k] = append(groups[k], vs...)
		}
	}
	return groups, nil
}

func group(kvs []KeyValue) Groups {
	groups := make(Groups)
	for _, kv := range kvs {
		groups[kv.Key] = append(groups[kv.Key], kv.Value)
	}
	return groups
}

// Reduce folds every group independently. The result is unordered.
func (r *Runner) Reduce(ctx context.Context, groups Groups) ([]Aggregate, error) {
	list := make([]Group, 0, len(groups))
	for k, vs := range groups {
		list = append(list, Group{Key: k, Values: vs})
	}

	parts, err := inChunks(ctx, list, r.workers, func(chunk []Group) []Aggregate {
		aggs := make([]Aggregate, 0, len(chunk))
		for _, g := range chunk {
			aggs = append(aggs, Aggregate{Key: g.Key, Count: r.reducer.Reduce(g.Key, g.Values)})
		}
		return aggs
	})
	if err != nil {
		return nil, fmt.Errorf("reduce error: %w", err)
	}

	aggs := make([]Aggregate, 0, len(list))
	for _, p := range parts {
		aggs = append(aggs, p...)
	}
	return aggs, nil
}

func (r *Runner) Run(ctx context.Context, lines []string) ([]Aggregate, error) {
	kvs, err := r.Map(ctx, lines)
	if err != nil {
		return nil, err
	}
	groups, err := r.Shuffle(ctx, kvs)
	if err != nil {
		return nil, err
	}
	return r.Reduce(ctx, groups)
}
