// Package transport defines the frame carrier boundary. The SDK core only
// constructs frames; how they travel is a capability supplied externally.
package transport

import (
	"context"
	"log"
)

// Transport carries protocol frames to a remote endpoint.
type Transport interface {
	// Send delivers one frame to the given transport address. An error
	// means the frame was not acknowledged.
	Send(ctx context.Context, frame any, endpoint string) error
	// Close releases any connections held by the transport.
	Close() error
}

// NullTransport drops every frame. It stands in where no real carrier is
// configured, mirroring the stub behaviour of early SDK releases.
type NullTransport struct {
	// Quiet suppresses the per-frame debug log line.
	Quiet bool
}

// Send logs and discards the frame.
func (t *NullTransport) Send(_ context.Context, frame any, endpoint string) error {
	if !t.Quiet {
		log.Printf("transport(null): dropping %T for %s", frame, endpoint)
	}
	return nil
}

// Close is a no-op.
func (t *NullTransport) Close() error { return nil }
