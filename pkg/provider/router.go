package provider

import (
	"encoding/json"
	"sync"

	"github.com/erc1193/providerkit/pkg/log"
)

// MessageTypeSubscription is the message type of pub/sub notification pushes.
const MessageTypeSubscription = "eth_subscription"

// Message is the payload of every message event.
type Message struct {
	// Type tags the shape of Data; subscription pushes use
	// MessageTypeSubscription.
	Type string `json:"type"`
	Data any    `json:"data"`
}

// SubscriptionPayload is the Data of a subscription push message.
type SubscriptionPayload struct {
	// Subscription is the identifier returned by the subscribe-style RPC
	// call that created the stream.
	Subscription string `json:"subscription"`
	// Result is the untouched notification body.
	Result json.RawMessage `json:"result"`
}

// PushDecoder recognizes one unsolicited payload shape. It returns the
// message to publish and true when the raw payload matches its shape.
type PushDecoder func(raw json.RawMessage) (Message, bool)

// SubscriptionRouter demultiplexes raw push notifications into message
// events. It owns no subscription lifecycle: subscriptions are created by
// ordinary requests, and the router only keys incoming pushes by the
// subscription field they carry.
//
// The router is polymorphic over push shapes: additional decoders can be
// registered for transports that deliver non-subscription pushes.
type SubscriptionRouter struct {
	mu       sync.RWMutex
	decoders []PushDecoder

	bus     *EventBus
	lg      log.Logger
	metrics *Metrics
}

// NewSubscriptionRouter creates a router with the standard subscription
// decoder installed. Logger and metrics may be nil.
func NewSubscriptionRouter(bus *EventBus, lg log.Logger, metrics *Metrics) *SubscriptionRouter {
	if bus == nil {
		panic("subscription router requires an event bus")
	}
	if lg == nil {
		lg = log.NewNoopLogger()
	}
	r := &SubscriptionRouter{
		bus:     bus,
		lg:      lg.WithName("router"),
		metrics: metrics,
	}
	r.decoders = []PushDecoder{decodeSubscriptionPush}
	return r
}

// RegisterDecoder adds a decoder for an additional push shape. Decoders are
// tried in registration order after the built-in subscription decoder.
func (r *SubscriptionRouter) RegisterDecoder(d PushDecoder) {
	if d == nil {
		panic("push decoder cannot be nil")
	}
	r.mu.Lock()
	r.decoders = append(r.decoders, d)
	r.mu.Unlock()
}

// OnRawPush routes one unsolicited payload. Recognized shapes publish
// exactly one message event; unrecognized payloads are dropped with a log
// line so a misbehaving client cannot crash listeners.
func (r *SubscriptionRouter) OnRawPush(raw json.RawMessage) {
	if len(raw) == 0 {
		return
	}

	r.mu.RLock()
	decoders := r.decoders
	r.mu.RUnlock()

	for _, decode := range decoders {
		msg, ok := decode(raw)
		if !ok {
			continue
		}
		if r.metrics != nil {
			r.metrics.SubscriptionPushes.Inc()
		}
		r.bus.Emit(EventMessage, msg)
		return
	}

	if r.metrics != nil {
		r.metrics.DroppedPushes.Inc()
	}
	r.lg.Warn("unrecognized push payload", "payload", string(raw))
}

// decodeSubscriptionPush matches the pub/sub notification shape: an object
// carrying a subscription identifier and a result field.
func decodeSubscriptionPush(raw json.RawMessage) (Message, bool) {
	var probe struct {
		Subscription *string         `json:"subscription"`
		Result       json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return Message{}, false
	}
	if probe.Subscription == nil || len(probe.Result) == 0 {
		return Message{}, false
	}

	return Message{
		Type: MessageTypeSubscription,
		Data: SubscriptionPayload{
			Subscription: *probe.Subscription,
			Result:       probe.Result,
		},
	}, true
}
