package jsonrpc

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/erc1193/providerkit/pkg/log"
	"github.com/erc1193/providerkit/pkg/provider"
)

// WebsocketTransportConfig configures the WebSocket transport.
type WebsocketTransportConfig struct {
	// HandshakeTimeout bounds the WebSocket handshake.
	HandshakeTimeout time.Duration

	// PingInterval is how often protocol-level pings keep the connection
	// alive.
	PingInterval time.Duration

	// NotificationChanSize is the buffer of the unsolicited-push channel.
	// A larger buffer tolerates slow consumers before pushes are dropped.
	NotificationChanSize int
}

// DefaultWebsocketTransportConfig provides sensible defaults.
var DefaultWebsocketTransportConfig = WebsocketTransportConfig{
	HandshakeTimeout:     5 * time.Second,
	PingInterval:         15 * time.Second,
	NotificationChanSize: 100,
}

// connCtx holds the resources of one established connection.
type connCtx struct {
	ctx  context.Context
	conn *websocket.Conn
	lg   log.Logger
}

// WebsocketTransport is a JSON-RPC 2.0 client over a WebSocket connection.
// It correlates responses to pending calls by request id and feeds
// unsolicited notifications to the channel returned by Notifications,
// satisfying the provider.Transport capability.
//
// The transport is safe for concurrent use; any number of calls may be
// outstanding at once.
type WebsocketTransport struct {
	cfg WebsocketTransportConfig

	connCtx       *connCtx
	notifyCh      chan json.RawMessage
	responseSinks map[uint64]chan *message
	mu            sync.RWMutex // protects connCtx and responseSinks
	writeMu       sync.Mutex   // serializes WebSocket writes
}

var _ provider.Transport = (*WebsocketTransport)(nil)

// NewWebsocketTransport creates a disconnected transport with the given
// configuration.
func NewWebsocketTransport(cfg WebsocketTransportConfig) *WebsocketTransport {
	return &WebsocketTransport{
		cfg:           cfg,
		notifyCh:      make(chan json.RawMessage, cfg.NotificationChanSize),
		responseSinks: make(map[uint64]chan *message),
	}
}

// Dial establishes the WebSocket connection and starts the read and ping
// loops. It returns once the connection is up; handleClosure is invoked
// exactly once when the connection later closes, with the first error that
// caused the closure (nil on clean shutdown). The caller typically reports
// the closure to the provider's connectivity tracker.
func (t *WebsocketTransport) Dial(parentCtx context.Context, url string, handleClosure func(err error)) error {
	if t.IsConnected() {
		return ErrAlreadyConnected
	}

	dialer := websocket.Dialer{
		HandshakeTimeout:  t.cfg.HandshakeTimeout,
		EnableCompression: true,
	}

	conn, _, err := dialer.DialContext(parentCtx, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDialingWebsocket, err)
	}

	childCtx, cancel := context.WithCancel(parentCtx)
	wg := sync.WaitGroup{}
	wg.Add(3)

	var closureErr error
	var closureErrMu sync.Mutex
	childHandleClosure := func(err error) {
		closureErrMu.Lock()
		defer closureErrMu.Unlock()

		// Keep the first error encountered.
		if err != nil && closureErr == nil {
			closureErr = err
		}

		cancel()
		wg.Done()
	}

	readDone := make(chan struct{})
	notifyCh := make(chan json.RawMessage, t.cfg.NotificationChanSize)

	t.mu.Lock()
	t.connCtx = &connCtx{
		ctx:  childCtx,
		conn: conn,
		lg:   log.FromContext(parentCtx).WithName("ws-transport"),
	}
	t.notifyCh = notifyCh
	t.mu.Unlock()

	go t.closeOnContextDone(childCtx, notifyCh, readDone, childHandleClosure)
	go t.readMessages(childCtx, notifyCh, readDone, childHandleClosure)
	go t.pingPeriodically(childCtx, childHandleClosure)

	go func() {
		wg.Wait()

		closureErrMu.Lock()
		defer closureErrMu.Unlock()
		handleClosure(closureErr)
	}()

	return nil
}

// IsConnected reports whether the transport has an active connection.
func (t *WebsocketTransport) IsConnected() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.connCtx != nil && t.connCtx.ctx.Err() == nil
}

// Notifications returns the feed of unsolicited notification params. For
// subscription pushes each element is the {subscription, result} object.
// The channel closes when the connection shuts down.
func (t *WebsocketTransport) Notifications() <-chan json.RawMessage {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.notifyCh
}

// Call submits one JSON-RPC request and blocks until its response, a
// connection closure, or context cancellation. Client-reported errors are
// returned as *Error with their code and message intact.
func (t *WebsocketTransport) Call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	// Register the response sink and grab the connection atomically.
	t.mu.Lock()
	if t.connCtx == nil || t.connCtx.ctx.Err() != nil {
		t.mu.Unlock()
		return nil, ErrNotConnected
	}
	conn := t.connCtx.conn
	connDone := t.connCtx.ctx.Done()

	id := uint64(uuid.New().ID())
	sink := make(chan *message, 1) // buffered so the read loop never blocks
	t.responseSinks[id] = sink
	t.mu.Unlock()

	reqJSON, err := json.Marshal(newRequest(id, method, params))
	if err != nil {
		t.dropSink(id)
		return nil, fmt.Errorf("%w: %w", ErrMarshalingRequest, err)
	}

	t.writeMu.Lock()
	err = conn.WriteMessage(websocket.TextMessage, reqJSON)
	t.writeMu.Unlock()

	if err != nil {
		t.dropSink(id)
		return nil, fmt.Errorf("%w: %w", ErrSendingRequest, err)
	}

	var res *message
	select {
	case <-ctx.Done():
	case <-connDone:
	case res = <-sink:
	}
	t.dropSink(id)

	if res == nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", ErrNoResponse, ctx.Err())
		}
		return nil, fmt.Errorf("%w for request %d", ErrNoResponse, id)
	}
	if res.Error != nil {
		return nil, res.Error
	}
	return res.Result, nil
}

func (t *WebsocketTransport) dropSink(id uint64) {
	t.mu.Lock()
	delete(t.responseSinks, id)
	t.mu.Unlock()
}

// closeOnContextDone tears the connection down once the context is done and
// releases every pending call. The notification feed is closed only after
// the read loop has exited, since the read loop is its sole sender.
func (t *WebsocketTransport) closeOnContextDone(ctx context.Context, notifyCh chan json.RawMessage, readDone <-chan struct{}, handleClosure func(err error)) {
	<-ctx.Done()

	t.mu.RLock()
	conn := t.connCtx.conn
	t.mu.RUnlock()

	err := conn.Close()
	<-readDone
	close(notifyCh)

	t.mu.Lock()
	for _, sink := range t.responseSinks {
		close(sink)
	}
	t.responseSinks = make(map[uint64]chan *message)
	t.mu.Unlock()

	handleClosure(err)
}

// readMessages reads frames off the connection and routes each one: matched
// ids resolve pending calls, id-less method frames feed the notification
// channel, anything else is logged and dropped.
func (t *WebsocketTransport) readMessages(ctx context.Context, notifyCh chan<- json.RawMessage, readDone chan<- struct{}, handleClosure func(err error)) {
	defer close(readDone)

	t.mu.RLock()
	conn := t.connCtx.conn
	lg := t.connCtx.lg
	t.mu.RUnlock()

	for {
		_, frame, err := conn.ReadMessage()
		if ctx.Err() != nil {
			handleClosure(nil)
			lg.Info("read loop exiting due to context done")
			return
		} else if _, ok := err.(net.Error); ok {
			handleClosure(fmt.Errorf("%w: %w", ErrConnectionTimeout, err))
			lg.Error("websocket connection timeout", "error", err)
			return
		} else if err != nil {
			handleClosure(fmt.Errorf("%w: %w", ErrReadingMessage, err))
			lg.Error("websocket read error", "error", err)
			return
		}

		var msg message
		if err := json.Unmarshal(frame, &msg); err != nil {
			lg.Warn("malformed message", "message", string(frame), "error", err)
			continue
		}

		if msg.isNotification() {
			select {
			case <-ctx.Done():
				handleClosure(nil)
				return
			case notifyCh <- msg.Params:
			default:
				lg.Warn("notification channel full, dropping push", "method", msg.Method)
			}
			continue
		}
		if msg.ID == nil {
			lg.Warn("message carries neither id nor method", "message", string(frame))
			continue
		}

		t.mu.Lock()
		sink, exists := t.responseSinks[*msg.ID]
		t.mu.Unlock()

		if !exists {
			lg.Warn("response for unknown request id", "requestID", *msg.ID)
			continue
		}

		select {
		case <-ctx.Done():
			handleClosure(nil)
			return
		case sink <- &msg:
		default:
			// The sink is buffered for one response; a second one for the
			// same id is a protocol violation.
			lg.Warn("duplicate response, dropping", "requestID", *msg.ID)
		}
	}
}

// pingPeriodically sends protocol-level pings to keep the connection alive.
func (t *WebsocketTransport) pingPeriodically(ctx context.Context, handleClosure func(err error)) {
	t.mu.RLock()
	conn := t.connCtx.conn
	lg := t.connCtx.lg
	t.mu.RUnlock()

	ticker := time.NewTicker(t.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			handleClosure(nil)
			lg.Info("ping loop exiting due to context done")
			return
		case <-ticker.C:
			deadline := time.Now().Add(t.cfg.PingInterval / 2)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				handleClosure(fmt.Errorf("%w: %w", ErrSendingRequest, err))
				lg.Error("error sending ping", "error", err)
				return
			}
		}
	}
}
