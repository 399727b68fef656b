// Package jsonrpc implements a JSON-RPC 2.0 client over WebSocket, the
// reference transport for the provider package.
//
// WebsocketTransport maintains one connection, correlates responses to
// in-flight calls by request id, and surfaces unsolicited notifications
// (such as eth_subscription pushes) on a channel the provider pumps into
// its subscription router. Client errors arrive as *Error values carrying
// the code, message, and data from the wire, so the provider's error
// mapping can pass them through verbatim.
package jsonrpc
