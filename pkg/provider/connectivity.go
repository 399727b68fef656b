package provider

import (
	"sync"

	"github.com/erc1193/providerkit/pkg/log"
)

// ProviderState is the externally visible connectivity snapshot.
// Connected == false implies no RPC request may be serviced;
// Connected == true implies ChainID is set.
type ProviderState struct {
	Connected bool
	ChainID   ChainID
	Accounts  AccountSet
}

// pendingEvent is one queued emission of a recorded transition.
type pendingEvent struct {
	name    string
	payload any
}

// ConnectivityTracker owns the provider's connection state and decides which
// events each reported transition must fire.
//
// Each report is evaluated and recorded atomically, but events are emitted
// with no lock held: a listener may report connectivity from inside a
// connect or disconnect handler (an auto-reconnect hook, for instance)
// without deadlocking. Re-entrant and concurrent reports enqueue their
// emissions behind the in-flight ones, so listeners observe events in
// exactly the order the transitions were recorded.
type ConnectivityTracker struct {
	mu       sync.Mutex
	state    ProviderState
	queue    []pendingEvent
	emitting bool

	bus     *EventBus
	lg      log.Logger
	metrics *Metrics
}

// NewConnectivityTracker creates a tracker in the Disconnected state.
// Logger and metrics may be nil.
func NewConnectivityTracker(bus *EventBus, lg log.Logger, metrics *Metrics) *ConnectivityTracker {
	if bus == nil {
		panic("connectivity tracker requires an event bus")
	}
	if lg == nil {
		lg = log.NewNoopLogger()
	}
	return &ConnectivityTracker{
		bus:     bus,
		lg:      lg.WithName("connectivity"),
		metrics: metrics,
	}
}

// CurrentState returns a defensive copy of the state. Pure read; safe to
// call from listeners while an emission is in flight.
func (t *ConnectivityTracker) CurrentState() ProviderState {
	t.mu.Lock()
	defer t.mu.Unlock()

	return ProviderState{
		Connected: t.state.Connected,
		ChainID:   t.state.ChainID,
		Accounts:  t.state.Accounts.Clone(),
	}
}

// ReportConnectivity records the transport-health collaborator's view of the
// remote client and fires the events the transition requires:
//
//   - Disconnected -> Connected: connect with the chain id
//   - Connected -> Disconnected: disconnect with an *RPCError carrying an
//     abnormal close status code
//   - chain change while connected: chainChanged with the new chain id
//   - account change while connected: accountsChanged with the new sequence
//   - chain and account change on one report: chainChanged first, then
//     accountsChanged, as two distinct emissions
//
// Identical reports are idempotent and emit nothing.
func (t *ConnectivityTracker) ReportConnectivity(ok bool, chainID ChainID, accounts AccountSet) {
	t.mu.Lock()

	if !ok {
		t.disconnectLocked(CloseCodeAbnormal, "provider lost connection to all chains")
		t.drainAndUnlock()
		return
	}

	if chainID.IsZero() {
		t.mu.Unlock()
		t.lg.Warn("ignoring connectivity report with no chain id")
		return
	}

	prev := t.state

	if !prev.Connected {
		t.state = ProviderState{Connected: true, ChainID: chainID, Accounts: accounts.Clone()}
		if t.metrics != nil {
			t.metrics.ConnectivityTransitions.WithLabelValues("connect").Inc()
		}
		t.lg.Info("provider connected", "chainID", chainID)
		t.queue = append(t.queue, pendingEvent{EventConnect, ConnectInfo{ChainID: chainID}})
		t.drainAndUnlock()
		return
	}

	chainChanged := chainID != prev.ChainID
	accountsChanged := !accounts.Equal(prev.Accounts)
	if !chainChanged && !accountsChanged {
		t.mu.Unlock()
		return
	}

	t.state = ProviderState{Connected: true, ChainID: chainID, Accounts: accounts.Clone()}

	if chainChanged {
		t.lg.Info("chain changed", "previous", prev.ChainID, "current", chainID)
		t.queue = append(t.queue, pendingEvent{EventChainChanged, chainID})
	}
	if accountsChanged {
		t.lg.Info("accounts changed", "count", len(accounts))
		t.queue = append(t.queue, pendingEvent{EventAccountsChanged, accounts.Clone()})
	}
	t.drainAndUnlock()
}

// Shutdown reports a deliberate disconnect, surfaced with the normal close
// status code instead of the abnormal one.
func (t *ConnectivityTracker) Shutdown(reason string) {
	if reason == "" {
		reason = "provider closed"
	}

	t.mu.Lock()
	t.disconnectLocked(CloseCodeNormal, reason)
	t.drainAndUnlock()
}

// disconnectLocked records the Connected -> Disconnected edge and enqueues
// its emission. Callers must hold mu.
func (t *ConnectivityTracker) disconnectLocked(closeCode int, reason string) {
	if !t.state.Connected {
		return
	}

	t.state = ProviderState{}
	if t.metrics != nil {
		t.metrics.ConnectivityTransitions.WithLabelValues("disconnect").Inc()
	}
	t.lg.Info("provider disconnected", "code", closeCode, "reason", reason)
	t.queue = append(t.queue, pendingEvent{EventDisconnect, NewRPCError(closeCode, reason, nil)})
}

// drainAndUnlock delivers queued emissions with the lock released. Exactly
// one goroutine drains at a time: a re-entrant or concurrent report finds
// emitting set, enqueues, and returns, leaving delivery to the draining
// goroutine. Callers must hold mu; it is released on return.
func (t *ConnectivityTracker) drainAndUnlock() {
	if t.emitting {
		t.mu.Unlock()
		return
	}
	t.emitting = true

	for len(t.queue) > 0 {
		ev := t.queue[0]
		t.queue = t.queue[1:]

		t.mu.Unlock()
		t.bus.Emit(ev.name, ev.payload)
		t.mu.Lock()
	}

	t.emitting = false
	t.mu.Unlock()
}
