package jsonrpc

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage_IsNotification(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		frame string
		want  bool
	}{
		{
			name:  "subscription push",
			frame: `{"jsonrpc":"2.0","method":"eth_subscription","params":{"subscription":"0x1","result":"0x2"}}`,
			want:  true,
		},
		{
			name:  "call response",
			frame: `{"jsonrpc":"2.0","id":7,"result":"0x1"}`,
			want:  false,
		},
		{
			name:  "error response",
			frame: `{"jsonrpc":"2.0","id":7,"error":{"code":4200,"message":"unsupported"}}`,
			want:  false,
		},
		{
			name:  "server-initiated request carries an id",
			frame: `{"jsonrpc":"2.0","id":3,"method":"client_ping"}`,
			want:  false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var m message
			require.NoError(t, json.Unmarshal([]byte(tc.frame), &m))
			assert.Equal(t, tc.want, m.isNotification())
		})
	}
}

func TestError_Interfaces(t *testing.T) {
	t.Parallel()

	e := &Error{Code: 4001, Message: "User rejected the request.", Data: json.RawMessage(`"origin"`)}
	assert.Equal(t, "User rejected the request.", e.Error())
	assert.Equal(t, 4001, e.ErrorCode())
	assert.Equal(t, json.RawMessage(`"origin"`), e.ErrorData())

	empty := &Error{Code: 4200, Message: "unsupported"}
	assert.Nil(t, empty.ErrorData())
}

func TestNewRequest_Envelope(t *testing.T) {
	t.Parallel()

	req := newRequest(42, "eth_call", []string{"0xdead"})
	raw, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":42,"method":"eth_call","params":["0xdead"]}`, string(raw))
}
