package provider

import (
	"sync"

	"github.com/erc1193/providerkit/pkg/log"
)

// Event names emitted by the provider runtime.
const (
	// EventConnect fires on every Disconnected->Connected edge with a
	// ConnectInfo payload.
	EventConnect = "connect"
	// EventDisconnect fires on every Connected->Disconnected edge with an
	// *RPCError payload whose code is a close status code.
	EventDisconnect = "disconnect"
	// EventChainChanged fires when the connected chain changes, with the new
	// ChainID as payload.
	EventChainChanged = "chainChanged"
	// EventAccountsChanged fires when the authorized account sequence
	// changes, with the new AccountSet as payload.
	EventAccountsChanged = "accountsChanged"
	// EventMessage fires for demultiplexed push notifications with a Message
	// payload.
	EventMessage = "message"
)

// ConnectInfo is the payload of the connect event.
type ConnectInfo struct {
	ChainID ChainID `json:"chainId"`
}

// Listener receives event payloads. Listeners for the same event run
// synchronously in registration order; a panicking listener does not prevent
// the remaining ones from running.
type Listener func(payload any)

// ListenerHandle identifies a single registration. Registrations of the same
// function are independent; removal is by handle, never by function identity.
type ListenerHandle struct {
	event string
	id    uint64
}

// Event returns the event name the handle was registered for.
func (h ListenerHandle) Event() string { return h.event }

type registration struct {
	id      uint64
	fn      Listener
	removed bool
}

// EventBus is a minimal typed publish/subscribe mechanism.
//
// Emit snapshots the listener list, so a listener registered during an emit
// is not invoked for that pass, and a listener removed during an emit is not
// invoked again by that pass. Reentrant On/RemoveListener/Emit calls from
// inside a listener are safe.
type EventBus struct {
	mu        sync.Mutex
	nextID    uint64
	listeners map[string][]*registration

	lg      log.Logger
	metrics *Metrics
}

// NewEventBus creates an EventBus. Logger and metrics may be nil.
func NewEventBus(lg log.Logger, metrics *Metrics) *EventBus {
	if lg == nil {
		lg = log.NewNoopLogger()
	}
	return &EventBus{
		listeners: make(map[string][]*registration),
		lg:        lg.WithName("events"),
		metrics:   metrics,
	}
}

// On registers fn for the named event and returns its handle.
func (b *EventBus) On(event string, fn Listener) ListenerHandle {
	if fn == nil {
		panic("event listener cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	reg := &registration{id: b.nextID, fn: fn}
	b.listeners[event] = append(b.listeners[event], reg)

	if b.metrics != nil {
		b.metrics.ActiveListeners.Inc()
	}
	return ListenerHandle{event: event, id: reg.id}
}

// RemoveListener drops the registration identified by the handle.
// It reports whether a registration was actually removed; removing the same
// handle twice is a no-op.
func (b *EventBus) RemoveListener(h ListenerHandle) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	regs := b.listeners[h.event]
	for i, reg := range regs {
		if reg.id != h.id {
			continue
		}
		// Mark first so an in-flight emit pass skips it, then drop it from
		// the registry.
		reg.removed = true
		b.listeners[h.event] = append(regs[:i], regs[i+1:]...)
		if len(b.listeners[h.event]) == 0 {
			delete(b.listeners, h.event)
		}
		if b.metrics != nil {
			b.metrics.ActiveListeners.Dec()
		}
		return true
	}
	return false
}

// ListenerCount returns the number of live registrations for the event.
func (b *EventBus) ListenerCount(event string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners[event])
}

// Emit invokes every listener currently registered for the event, in
// registration order, with the given payload.
func (b *EventBus) Emit(event string, payload any) {
	b.mu.Lock()
	snapshot := make([]*registration, len(b.listeners[event]))
	copy(snapshot, b.listeners[event])
	b.mu.Unlock()

	if b.metrics != nil {
		b.metrics.EventsEmitted.WithLabelValues(event).Inc()
	}

	for _, reg := range snapshot {
		b.mu.Lock()
		skip := reg.removed
		b.mu.Unlock()
		if skip {
			continue
		}
		b.invoke(event, reg, payload)
	}
}

// invoke runs one listener, isolating panics so the rest of the pass
// proceeds.
func (b *EventBus) invoke(event string, reg *registration, payload any) {
	defer func() {
		if r := recover(); r != nil {
			b.lg.Error("event listener panicked", "event", event, "panic", r)
		}
	}()
	reg.fn(payload)
}
