package provider

import (
	"context"
	"encoding/json"
)

// LegacyRequest mirrors the loosely typed JSON-RPC envelope accepted by the
// deprecated SendAsync calling convention.
type LegacyRequest struct {
	JSONRPC string `json:"jsonrpc,omitempty"`
	ID      any    `json:"id,omitempty"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// LegacyResponse is the envelope handed to SendAsync callbacks.
type LegacyResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// Send is the deprecated positional calling convention. It is a pure adapter
// over Request and carries no policy of its own.
//
// Deprecated: use Request.
func (p *Provider) Send(ctx context.Context, method string, params any) (json.RawMessage, error) {
	return p.Request(ctx, RequestArgs{Method: method, Params: params})
}

// SendAsync is the deprecated request-object-and-callback calling
// convention. It adapts the envelope into one Request call and invokes the
// callback with the outcome; no dispatch policy lives here.
//
// Deprecated: use Request.
func (p *Provider) SendAsync(ctx context.Context, req LegacyRequest, callback func(*LegacyResponse, error)) {
	if callback == nil {
		panic("SendAsync callback cannot be nil")
	}

	go func() {
		res := &LegacyResponse{JSONRPC: "2.0", ID: req.ID}

		result, err := p.Request(ctx, RequestArgs{Method: req.Method, Params: req.Params})
		if err != nil {
			res.Error = MapFailure(err)
			callback(res, err)
			return
		}

		res.Result = result
		callback(res, nil)
	}()
}
