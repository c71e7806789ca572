package alarms

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Ascending returns the indices 1..min(count, limit).
func Ascending(count, limit int) []int {
	k := min(count, limit)
	if k <= 0 {
		return nil
	}

	indices := make([]int, k)
	for i := range indices {
		indices[i] = i + 1
	}

	return indices
}

// Descending returns the indices count, count-1, ... down to count-min(count, limit)+1.
func Descending(count, limit int) []int {
	k := min(count, limit)
	if k <= 0 {
		return nil
	}

	indices := make([]int, k)
	for i := range indices {
		indices[i] = count - i
	}

	return indices
}

// Load reads every index concurrently and returns the present records in
// the order of indices, whatever order the reads complete in. Callers that
// pass Descending therefore get the newest record first, not the first one to
// arrive. read reports false for an absent record, which is skipped. Load
// returns only after every issued read finished, and fails only when ctx is
// done.
func Load[T any](ctx context.Context, indices []int, read func(ctx context.Context, index int) (T, bool)) ([]T, error) {
	type slot struct {
		record  T
		present bool
	}

	slots := make([]slot, len(indices))
	group, groupCtx := errgroup.WithContext(ctx)

	for i, index := range indices {
		group.Go(func() error {
			record, ok := read(groupCtx, index)
			slots[i] = slot{record: record, present: ok}

			return nil
		})
	}

	_ = group.Wait() //nolint:errcheck // Readers never fail, absence is reported per slot.

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records := make([]T, 0, len(slots))

	for _, s := range slots {
		if s.present {
			records = append(records, s.record)
		}
	}

	return records, nil
}
