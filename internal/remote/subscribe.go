package remote

import (
	"context"
	"reflect"
	"time"
)

// Poll emulates a push subscription on top of a Reader: every interval it
// reads name and calls onChange when the value differs from the last one
// delivered. Absent reads are skipped. Poll returns when ctx is done.
func Poll(ctx context.Context, r Reader, name string, interval time.Duration, onChange func(any)) {
	var (
		last      any
		delivered bool
	)

	check := func() {
		v, err := r.Read(ctx, name)
		if err != nil {
			return
		}

		if delivered && reflect.DeepEqual(v, last) {
			return
		}

		last, delivered = v, true
		onChange(v)
	}

	check()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			check()
		}
	}
}
