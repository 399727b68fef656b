package provider

import (
	"errors"
	"fmt"

	gethrpc "github.com/ethereum/go-ethereum/rpc"
)

// Provider error codes. These are fixed by the provider contract: a caller
// may rely on the numeric values to distinguish rejection causes.
const (
	// CodeUserRejectedRequest indicates the user rejected the request.
	CodeUserRejectedRequest = 4001
	// CodeUnauthorized indicates the requested method or account is not
	// authorized for the application.
	CodeUnauthorized = 4100
	// CodeUnsupportedMethod indicates the provider does not support the
	// requested method.
	CodeUnsupportedMethod = 4200
	// CodeDisconnected indicates the provider is not connected to any chain.
	CodeDisconnected = 4900
	// CodeChainDisconnected indicates the provider is connected, but not to
	// the chain the request targeted.
	CodeChainDisconnected = 4901
)

// Close status codes used as the code of the disconnect event payload.
// They follow the WebSocket CloseEvent numbering and never overlap with the
// provider codes above.
const (
	// CloseCodeNormal signals a deliberate shutdown.
	CloseCodeNormal = 1000
	// CloseCodeAbnormal signals detected loss of connectivity.
	CloseCodeAbnormal = 1006
)

const (
	// codeInvalidRequest is the JSON-RPC code for a malformed request,
	// returned when RequestArgs fail validation before dispatch.
	codeInvalidRequest = -32600
	// codeInternalFallback is the JSON-RPC internal-error code used when a
	// failure carries no structured information to map.
	codeInternalFallback = -32603
)

// RPCError is the single error shape that reaches provider callers.
// It is immutable after construction and safe to copy.
//
// RPCError satisfies go-ethereum's rpc.Error and rpc.DataError interfaces so
// it interoperates with geth-based tooling.
type RPCError struct {
	// Code classifies the failure: one of the provider codes above, a
	// client-reported JSON-RPC code passed through verbatim, or a close
	// status code on disconnect payloads.
	Code int `json:"code"`
	// Message is a human-readable description, always non-empty.
	Message string `json:"message"`
	// Data optionally carries the original unmapped cause for diagnostics.
	Data any `json:"data,omitempty"`
}

var (
	_ error             = (*RPCError)(nil)
	_ gethrpc.Error     = (*RPCError)(nil)
	_ gethrpc.DataError = (*RPCError)(nil)
)

// NewRPCError constructs an RPCError with the given code, message and
// optional diagnostic data.
func NewRPCError(code int, message string, data any) *RPCError {
	return &RPCError{Code: code, Message: message, Data: data}
}

// Error implements the error interface.
func (e *RPCError) Error() string {
	return fmt.Sprintf("provider error %d: %s", e.Code, e.Message)
}

// ErrorCode implements go-ethereum's rpc.Error.
func (e *RPCError) ErrorCode() int { return e.Code }

// ErrorData implements go-ethereum's rpc.DataError.
func (e *RPCError) ErrorData() any { return e.Data }

// MapFailure normalizes an arbitrary failure into an RPCError.
//
// Classification precedence:
//  1. An RPCError anywhere in the chain is returned as-is; provider-detected
//     conditions (unauthorized, not connected, chain mismatch) are
//     constructed directly as RPCErrors by the dispatcher and pass through
//     here unchanged.
//  2. A structured client error (go-ethereum's rpc.Error) keeps its code and
//     message verbatim, plus any attached data.
//  3. Anything else maps to the generic internal-error code with the cause
//     preserved in Data.
func MapFailure(cause error) *RPCError {
	if cause == nil {
		return nil
	}

	var pe *RPCError
	if errors.As(cause, &pe) {
		return pe
	}

	var clientErr gethrpc.Error
	if errors.As(cause, &clientErr) {
		mapped := &RPCError{
			Code:    clientErr.ErrorCode(),
			Message: clientErr.Error(),
		}
		var dataErr gethrpc.DataError
		if errors.As(cause, &dataErr) {
			mapped.Data = dataErr.ErrorData()
		}
		return mapped
	}

	return &RPCError{
		Code:    codeInternalFallback,
		Message: cause.Error(),
		Data:    cause.Error(),
	}
}
