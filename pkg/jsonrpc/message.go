package jsonrpc

import (
	"encoding/json"
	"fmt"

	gethrpc "github.com/ethereum/go-ethereum/rpc"
)

// jsonrpcVersion is the protocol version stamped on every outgoing request.
const jsonrpcVersion = "2.0"

// request is the outbound JSON-RPC 2.0 call envelope.
type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

func newRequest(id uint64, method string, params any) request {
	return request{
		JSONRPC: jsonrpcVersion,
		ID:      id,
		Method:  method,
		Params:  params,
	}
}

// message is the inbound envelope. Responses carry an id and exactly one of
// result or error; unsolicited notifications carry a method and params but
// no id.
type message struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *uint64         `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// isNotification reports whether the message is a server push rather than a
// response to a pending call.
func (m *message) isNotification() bool {
	return m.ID == nil && m.Method != ""
}

// Error is a client-reported JSON-RPC error. Its code and message are passed
// through to callers verbatim; it satisfies go-ethereum's rpc.Error and
// rpc.DataError so the provider's error mapper preserves them.
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

var (
	_ error             = (*Error)(nil)
	_ gethrpc.Error     = (*Error)(nil)
	_ gethrpc.DataError = (*Error)(nil)
)

// Error implements the error interface.
func (e *Error) Error() string { return e.Message }

// ErrorCode implements go-ethereum's rpc.Error.
func (e *Error) ErrorCode() int { return e.Code }

// ErrorData implements go-ethereum's rpc.DataError.
func (e *Error) ErrorData() any {
	if len(e.Data) == 0 {
		return nil
	}
	return e.Data
}

// Sentinel errors returned by the WebSocket transport.
var (
	ErrAlreadyConnected  = fmt.Errorf("already connected")
	ErrNotConnected      = fmt.Errorf("not connected to server")
	ErrConnectionTimeout = fmt.Errorf("websocket connection timeout")
	ErrReadingMessage    = fmt.Errorf("error reading message")
	ErrMarshalingRequest = fmt.Errorf("error marshaling request")
	ErrSendingRequest    = fmt.Errorf("error sending request")
	ErrNoResponse        = fmt.Errorf("no response received")
	ErrDialingWebsocket  = fmt.Errorf("error dialing websocket server")
)
