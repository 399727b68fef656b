package provider_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erc1193/providerkit/pkg/provider"
)

// eventRecorder captures every emission on the bus in order.
type eventRecorder struct {
	names    []string
	payloads []any
}

func newEventRecorder(bus *provider.EventBus) *eventRecorder {
	rec := &eventRecorder{}
	for _, name := range []string{
		provider.EventConnect,
		provider.EventDisconnect,
		provider.EventChainChanged,
		provider.EventAccountsChanged,
		provider.EventMessage,
	} {
		event := name
		bus.On(event, func(payload any) {
			rec.names = append(rec.names, event)
			rec.payloads = append(rec.payloads, payload)
		})
	}
	return rec
}

func newTrackerWithRecorder(t *testing.T) (*provider.ConnectivityTracker, *eventRecorder) {
	t.Helper()

	bus := provider.NewEventBus(nil, nil)
	rec := newEventRecorder(bus)
	return provider.NewConnectivityTracker(bus, nil, nil), rec
}

func TestConnectivityTracker_InitialState(t *testing.T) {
	t.Parallel()

	tracker, _ := newTrackerWithRecorder(t)

	state := tracker.CurrentState()
	assert.False(t, state.Connected)
	assert.True(t, state.ChainID.IsZero())
	assert.Empty(t, state.Accounts)
}

func TestConnectivityTracker_Connect(t *testing.T) {
	t.Parallel()

	tracker, rec := newTrackerWithRecorder(t)

	accounts := provider.AccountSet{"0xaaa", "0xbbb"}
	tracker.ReportConnectivity(true, "0x1", accounts)

	require.Equal(t, []string{provider.EventConnect}, rec.names)
	info, ok := rec.payloads[0].(provider.ConnectInfo)
	require.True(t, ok)
	assert.Equal(t, provider.ChainID("0x1"), info.ChainID)

	state := tracker.CurrentState()
	assert.True(t, state.Connected)
	assert.Equal(t, provider.ChainID("0x1"), state.ChainID)
	assert.Equal(t, accounts, state.Accounts)
}

func TestConnectivityTracker_IdenticalReportIsIdempotent(t *testing.T) {
	t.Parallel()

	tracker, rec := newTrackerWithRecorder(t)

	accounts := provider.AccountSet{"0xaaa"}
	tracker.ReportConnectivity(true, "0x1", accounts)
	tracker.ReportConnectivity(true, "0x1", accounts)
	tracker.ReportConnectivity(true, "0x1", accounts)

	assert.Equal(t, []string{provider.EventConnect}, rec.names)
}

func TestConnectivityTracker_Disconnect(t *testing.T) {
	t.Parallel()

	tracker, rec := newTrackerWithRecorder(t)

	tracker.ReportConnectivity(true, "0x1", nil)
	tracker.ReportConnectivity(false, "", nil)

	require.Equal(t, []string{provider.EventConnect, provider.EventDisconnect}, rec.names)

	rpcErr, ok := rec.payloads[1].(*provider.RPCError)
	require.True(t, ok)
	assert.Equal(t, provider.CloseCodeAbnormal, rpcErr.Code)
	assert.NotEmpty(t, rpcErr.Message)

	state := tracker.CurrentState()
	assert.False(t, state.Connected)
	assert.True(t, state.ChainID.IsZero())
	assert.Empty(t, state.Accounts)
}

func TestConnectivityTracker_DisconnectWhileDisconnected(t *testing.T) {
	t.Parallel()

	tracker, rec := newTrackerWithRecorder(t)

	tracker.ReportConnectivity(false, "", nil)
	tracker.ReportConnectivity(false, "", nil)

	assert.Empty(t, rec.names)
}

func TestConnectivityTracker_ChainChanged(t *testing.T) {
	t.Parallel()

	tracker, rec := newTrackerWithRecorder(t)

	tracker.ReportConnectivity(true, "0x1", nil)
	tracker.ReportConnectivity(true, "0x89", nil)

	require.Equal(t, []string{provider.EventConnect, provider.EventChainChanged}, rec.names)
	assert.Equal(t, provider.ChainID("0x89"), rec.payloads[1])

	assert.Equal(t, provider.ChainID("0x89"), tracker.CurrentState().ChainID)
}

func TestConnectivityTracker_AccountsChanged(t *testing.T) {
	t.Parallel()

	tracker, rec := newTrackerWithRecorder(t)

	tracker.ReportConnectivity(true, "0x1", provider.AccountSet{"0xaaa"})
	tracker.ReportConnectivity(true, "0x1", provider.AccountSet{"0xaaa", "0xbbb"})

	require.Equal(t, []string{provider.EventConnect, provider.EventAccountsChanged}, rec.names)
	assert.Equal(t, provider.AccountSet{"0xaaa", "0xbbb"}, rec.payloads[1])
}

func TestConnectivityTracker_AccountReorderingCounts(t *testing.T) {
	t.Parallel()

	tracker, rec := newTrackerWithRecorder(t)

	tracker.ReportConnectivity(true, "0x1", provider.AccountSet{"0xaaa", "0xbbb"})
	tracker.ReportConnectivity(true, "0x1", provider.AccountSet{"0xbbb", "0xaaa"})

	require.Equal(t, []string{provider.EventConnect, provider.EventAccountsChanged}, rec.names)
}

func TestConnectivityTracker_CombinedChainAndAccountChange(t *testing.T) {
	t.Parallel()

	tracker, rec := newTrackerWithRecorder(t)

	tracker.ReportConnectivity(true, "0x1", provider.AccountSet{"0xaaa"})
	tracker.ReportConnectivity(true, "0x89", provider.AccountSet{"0xbbb"})

	require.Equal(t, []string{
		provider.EventConnect,
		provider.EventChainChanged,
		provider.EventAccountsChanged,
	}, rec.names)
	assert.Equal(t, provider.ChainID("0x89"), rec.payloads[1])
	assert.Equal(t, provider.AccountSet{"0xbbb"}, rec.payloads[2])
}

func TestConnectivityTracker_ReconnectCycle(t *testing.T) {
	t.Parallel()

	tracker, rec := newTrackerWithRecorder(t)

	tracker.ReportConnectivity(true, "0x1", provider.AccountSet{"0xaaa"})
	tracker.ReportConnectivity(false, "", nil)
	tracker.ReportConnectivity(true, "0x89", provider.AccountSet{"0xbbb"})

	// Reconnecting on a different chain emits only connect: chain and
	// account payloads travel with the connect edge, not as change events.
	require.Equal(t, []string{
		provider.EventConnect,
		provider.EventDisconnect,
		provider.EventConnect,
	}, rec.names)

	info, ok := rec.payloads[2].(provider.ConnectInfo)
	require.True(t, ok)
	assert.Equal(t, provider.ChainID("0x89"), info.ChainID)
}

func TestConnectivityTracker_ZeroChainIDReportIgnored(t *testing.T) {
	t.Parallel()

	tracker, rec := newTrackerWithRecorder(t)

	tracker.ReportConnectivity(true, "", provider.AccountSet{"0xaaa"})

	assert.Empty(t, rec.names)
	assert.False(t, tracker.CurrentState().Connected)
}

func TestConnectivityTracker_Shutdown(t *testing.T) {
	t.Parallel()

	tracker, rec := newTrackerWithRecorder(t)

	tracker.ReportConnectivity(true, "0x1", nil)
	tracker.Shutdown("host going away")

	require.Equal(t, []string{provider.EventConnect, provider.EventDisconnect}, rec.names)

	rpcErr, ok := rec.payloads[1].(*provider.RPCError)
	require.True(t, ok)
	assert.Equal(t, provider.CloseCodeNormal, rpcErr.Code)
	assert.Equal(t, "host going away", rpcErr.Message)
}

func TestConnectivityTracker_ShutdownWhileDisconnected(t *testing.T) {
	t.Parallel()

	tracker, rec := newTrackerWithRecorder(t)

	tracker.Shutdown("")
	assert.Empty(t, rec.names)
}

func TestConnectivityTracker_ReentrantReportFromListener(t *testing.T) {
	t.Parallel()

	bus := provider.NewEventBus(nil, nil)
	tracker := provider.NewConnectivityTracker(bus, nil, nil)

	// An auto-reconnect hook: reports connectivity from inside the
	// disconnect handler.
	bus.On(provider.EventDisconnect, func(payload any) {
		tracker.ReportConnectivity(true, "0x89", nil)
	})
	rec := newEventRecorder(bus)

	tracker.ReportConnectivity(true, "0x1", nil)

	done := make(chan struct{})
	go func() {
		tracker.ReportConnectivity(false, "", nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("re-entrant report from a disconnect listener did not return")
	}

	// The re-entrant report's connect is delivered after the disconnect
	// that triggered it.
	require.Equal(t, []string{
		provider.EventConnect,
		provider.EventDisconnect,
		provider.EventConnect,
	}, rec.names)

	state := tracker.CurrentState()
	assert.True(t, state.Connected)
	assert.Equal(t, provider.ChainID("0x89"), state.ChainID)
}

func TestConnectivityTracker_CurrentStateDuringEmit(t *testing.T) {
	t.Parallel()

	bus := provider.NewEventBus(nil, nil)
	tracker := provider.NewConnectivityTracker(bus, nil, nil)

	var observed provider.ProviderState
	bus.On(provider.EventConnect, func(payload any) {
		observed = tracker.CurrentState()
	})

	tracker.ReportConnectivity(true, "0x1", provider.AccountSet{"0xaaa"})

	// The state must already reflect the transition when listeners run.
	assert.True(t, observed.Connected)
	assert.Equal(t, provider.ChainID("0x1"), observed.ChainID)
}

func TestConnectivityTracker_StateCopyIsDefensive(t *testing.T) {
	t.Parallel()

	tracker, _ := newTrackerWithRecorder(t)

	tracker.ReportConnectivity(true, "0x1", provider.AccountSet{"0xaaa", "0xbbb"})

	state := tracker.CurrentState()
	state.Accounts[0] = "0xmutated"

	assert.Equal(t, provider.AccountSet{"0xaaa", "0xbbb"}, tracker.CurrentState().Accounts)
}
