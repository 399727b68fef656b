package provider

import (
	"context"
	"encoding/json"
)

// Transport is the abstract capability the provider runtime dispatches
// through. A Transport submits one method call to the remote client and
// delivers its unsolicited pushes; everything else (framing, timeouts,
// reconnection) is the transport's concern.
//
// pkg/jsonrpc ships a WebSocket JSON-RPC implementation, but any transport
// satisfying this interface works, including in-process fakes for tests.
type Transport interface {
	// Call submits method and params to the remote client and blocks until
	// a raw outcome arrives. A success value is returned untouched; failures
	// are returned as errors for the dispatcher to map. The context can
	// cancel the wait, surfaced as an error.
	Call(ctx context.Context, method string, params any) (json.RawMessage, error)

	// Notifications returns the feed of raw unsolicited payloads. The
	// channel closes when the transport shuts down.
	Notifications() <-chan json.RawMessage
}
