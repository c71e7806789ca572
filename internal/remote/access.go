package remote

import (
	"context"
	"errors"
	"time"
)

// ErrAbsent reports that a read produced no value. Transport errors and
// missing variables are indistinguishable to callers.
var ErrAbsent = errors.New("remote value absent")

// Reader performs point-in-time reads.
// Values are plain Go values: nil, bool, float64, string, []any or map[string]any.
type Reader interface {
	Read(ctx context.Context, name string) (any, error)
}

// Writer performs fire-and-forget writes; the error is the completion result.
type Writer interface {
	Write(ctx context.Context, name string, value any) error
}

// Subscriber pushes value changes of name every interval until ctx is done.
// Subscribe blocks for the lifetime of the subscription.
type Subscriber interface {
	Subscribe(ctx context.Context, name string, interval time.Duration, onChange func(value any))
}

// Access is the full remote variable contract.
type Access interface {
	Reader
	Writer
	Subscriber
}
