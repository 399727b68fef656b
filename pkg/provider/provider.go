package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/erc1193/providerkit/pkg/log"
)

// RequestArgs describes a single RPC request. The struct is immutable for
// the duration of one dispatch and is not retained afterwards.
type RequestArgs struct {
	// Method is the RPC method name. Required.
	Method string `json:"method" validate:"required"`
	// Params is the opaque method parameter value, forwarded untouched.
	Params any `json:"params,omitempty"`
	// Extra carries caller-supplied fields beyond the fixed ones. A
	// "chainId" entry declares the target chain for the request.
	Extra map[string]any `json:"-"`
}

// TargetChainID returns the chain the request declares through its Extra
// fields, if any.
func (a RequestArgs) TargetChainID() (ChainID, bool) {
	raw, ok := a.Extra["chainId"]
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	if !ok {
		return "", false
	}
	id, err := NewChainID(s)
	if err != nil {
		return "", false
	}
	return id, true
}

// Options configures a Provider. Only Transport is required.
type Options struct {
	// Config sets the dispatch policy; nil means DefaultConfig. A non-nil
	// Config is taken as given, so both policy knobs may be disabled
	// explicitly.
	Config *Config
	// Logger receives the runtime's structured logs. Defaults to a noop
	// logger.
	Logger log.Logger
	// Registry receives the provider metrics. Nil disables metrics
	// registration entirely.
	Registry prometheus.Registerer
}

// Provider brokers RPC requests to a remote Ethereum-compatible client over
// an abstract Transport, tracks the connectivity/chain/account state of that
// relationship, and surfaces asynchronous notifications to listeners.
//
// A Provider is safe for concurrent use. Multiple Request calls may be in
// flight simultaneously; each resolves independently and exactly once.
type Provider struct {
	cfg       Config
	transport Transport

	bus     *EventBus
	tracker *ConnectivityTracker
	router  *SubscriptionRouter

	validate *validator.Validate
	metrics  *Metrics
	lg       log.Logger
}

// New creates a Provider over the given transport. The provider starts
// Disconnected; the transport-health collaborator moves it to Connected
// through ReportConnectivity.
func New(transport Transport, opts Options) (*Provider, error) {
	if transport == nil {
		return nil, fmt.Errorf("transport cannot be nil")
	}

	lg := opts.Logger
	if lg == nil {
		lg = log.NewNoopLogger()
	}
	lg = lg.WithName("provider")

	cfg := DefaultConfig()
	if opts.Config != nil {
		cfg = *opts.Config
	}

	var metrics *Metrics
	if opts.Registry != nil {
		metrics = NewMetricsWithRegistry(opts.Registry)
	}

	bus := NewEventBus(lg, metrics)
	return &Provider{
		cfg:       cfg,
		transport: transport,
		bus:       bus,
		tracker:   NewConnectivityTracker(bus, lg, metrics),
		router:    NewSubscriptionRouter(bus, lg, metrics),
		validate:  validator.New(),
		metrics:   metrics,
		lg:        lg,
	}, nil
}

// Request dispatches one RPC request and returns the raw outcome.
//
// The success value is the client's result, untouched: the dispatcher never
// reshapes method-specific result types. Every failure is an *RPCError:
//
//   - 4900 when the provider is Disconnected (unless
//     Config.ForwardWhenDisconnected is set)
//   - 4901 when the request declares a target chain other than the
//     connected one (unless Config.EnforceChainAffinity is unset)
//   - 4100 when a failed request targeted an account outside the current
//     authorized set, regardless of what the transport reported
//   - otherwise the transport failure mapped through MapFailure
func (p *Provider) Request(ctx context.Context, args RequestArgs) (json.RawMessage, error) {
	if err := p.validate.Struct(args); err != nil {
		return nil, p.reject(args.Method, NewRPCError(codeInvalidRequest, fmt.Sprintf("invalid request: %v", err), nil))
	}

	state := p.tracker.CurrentState()

	if !state.Connected && !p.cfg.ForwardWhenDisconnected {
		return nil, p.reject(args.Method, NewRPCError(CodeDisconnected, "provider is not connected to any chain", nil))
	}

	if p.cfg.EnforceChainAffinity && state.Connected {
		if target, ok := args.TargetChainID(); ok && target != state.ChainID {
			msg := fmt.Sprintf("provider is connected to chain %s, not %s", state.ChainID, target)
			return nil, p.reject(args.Method, NewRPCError(CodeChainDisconnected, msg, nil))
		}
	}

	log.FromContext(ctx).Debug("dispatching request", "method", args.Method)

	result, err := p.transport.Call(ctx, args.Method, args.Params)
	if err != nil {
		mapped := MapFailure(err)
		if acct, ok := requestedAccount(args); ok && !state.Accounts.Contains(acct) {
			mapped = NewRPCError(CodeUnauthorized,
				fmt.Sprintf("account %s is not authorized", acct), err.Error())
		}
		return nil, p.reject(args.Method, mapped)
	}

	if p.metrics != nil {
		p.metrics.RequestsTotal.WithLabelValues(args.Method, "resolved").Inc()
	}
	return result, nil
}

// Run pumps the transport's notification feed into the subscription router
// until the context is done or the feed closes. Typically invoked as a
// goroutine right after the transport connects.
func (p *Provider) Run(ctx context.Context) {
	notifications := p.transport.Notifications()
	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-notifications:
			if !ok {
				p.lg.Debug("notification feed closed")
				return
			}
			p.router.OnRawPush(raw)
		}
	}
}

// On registers a listener for the named event.
func (p *Provider) On(event string, fn Listener) ListenerHandle {
	return p.bus.On(event, fn)
}

// RemoveListener drops a registration previously returned by On.
func (p *Provider) RemoveListener(h ListenerHandle) bool {
	return p.bus.RemoveListener(h)
}

// Emit publishes an event to all registered listeners. Exposed so host
// environments can layer additional event kinds on the same bus.
func (p *Provider) Emit(event string, payload any) {
	p.bus.Emit(event, payload)
}

// ReportConnectivity is the hook for the transport-health collaborator; see
// ConnectivityTracker.ReportConnectivity for the transition rules.
func (p *Provider) ReportConnectivity(ok bool, chainID ChainID, accounts AccountSet) {
	p.tracker.ReportConnectivity(ok, chainID, accounts)
}

// HandleRawPush routes one unsolicited payload, for hosts that deliver
// pushes by callback instead of through Run.
func (p *Provider) HandleRawPush(raw json.RawMessage) {
	p.router.OnRawPush(raw)
}

// CurrentState returns the tracker's connectivity snapshot.
func (p *Provider) CurrentState() ProviderState {
	return p.tracker.CurrentState()
}

// Close reports a deliberate shutdown: if connected, the disconnect event
// fires with the normal close status code. Close does not tear down the
// transport, which the host owns.
func (p *Provider) Close() {
	p.tracker.Shutdown("provider closed")
}

func (p *Provider) reject(method string, err *RPCError) *RPCError {
	if p.metrics != nil {
		p.metrics.RequestsTotal.WithLabelValues(method, "rejected").Inc()
	}
	p.lg.Debug("request rejected", "method", method, "code", err.Code)
	return err
}

// signingAccountIndex maps sign-style methods to the position of their
// account argument in positional params.
var signingAccountIndex = map[string]int{
	"eth_sign":               0,
	"personal_sign":          1,
	"eth_signTypedData":      0,
	"eth_signTypedData_v3":   0,
	"eth_signTypedData_v4":   0,
	"eth_sendTransaction":    0,
	"eth_signTransaction":    0,
	"eth_sendRawTransaction": -1, // raw payloads carry no account argument
}

// requestedAccount extracts the account a request acts on behalf of, when
// the method makes that recoverable: the "from" field of an object
// parameter (positional or bare), or the positional address argument of
// sign-style methods.
func requestedAccount(args RequestArgs) (string, bool) {
	idx, known := signingAccountIndex[args.Method]
	if !known || idx < 0 || args.Params == nil {
		return "", false
	}

	raw, err := json.Marshal(args.Params)
	if err != nil {
		return "", false
	}

	var positional []json.RawMessage
	if err := json.Unmarshal(raw, &positional); err != nil {
		// A bare object param carries the account in its from field.
		return fromField(raw)
	}
	if len(positional) <= idx {
		return "", false
	}

	elem := positional[idx]

	// Transaction-style methods wrap the account in an object's from field.
	if acct, ok := fromField(elem); ok {
		return acct, true
	}

	// Sign-style methods pass the address directly.
	var addr string
	if err := json.Unmarshal(elem, &addr); err == nil && strings.HasPrefix(addr, "0x") {
		return addr, true
	}
	return "", false
}

// fromField extracts the from field of a transaction-style object param.
func fromField(raw json.RawMessage) (string, bool) {
	var txLike struct {
		From *string `json:"from"`
	}
	if err := json.Unmarshal(raw, &txLike); err != nil || txLike.From == nil {
		return "", false
	}
	return *txLike.From, true
}
