// sink.go defines the injected telemetry egress.

package telemetry

import (
	"context"
)

// Sink consumes telemetry snapshots. Implementations must be cheap or
// internally asynchronous: the reporter invokes them off the render
// tick, but they still should not accumulate unbounded work.
type Sink interface {
	ReportTelemetry(ctx context.Context, snapshot Snapshot)
}

// SinkFunc adapts a function into a Sink.
type SinkFunc func(ctx context.Context, snapshot Snapshot)

func (fn SinkFunc) ReportTelemetry(ctx context.Context, snapshot Snapshot) {
	fn(ctx, snapshot)
}

// Discard drops every snapshot.
var Discard Sink = SinkFunc(func(context.Context, Snapshot) {})
