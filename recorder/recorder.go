// Package recorder persists a TransactionRecord after a payment succeeds.
// Recording is best effort: callers log failures and never roll back.
package recorder

import (
	"context"

	"github.com/vitwit/paylink/types"
)

// Recorder stores one record per successful attempt. key identifies the
// attempt so a replayed call does not create a second row.
type Recorder interface {
	Record(ctx context.Context, key string, rec *types.TransactionRecord) error
}

// NoopRecorder discards records.
type NoopRecorder struct{}

func (NoopRecorder) Record(context.Context, string, *types.TransactionRecord) error { return nil }

// Func adapts a function to Recorder.
type Func func(ctx context.Context, key string, rec *types.TransactionRecord) error

func (f Func) Record(ctx context.Context, key string, rec *types.TransactionRecord) error {
	return f(ctx, key, rec)
}
