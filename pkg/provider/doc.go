// Package provider implements an Ethereum Provider runtime: it brokers RPC
// requests from an application to a remote Ethereum-compatible client,
// tracks the connectivity, chain and account state of that relationship, and
// surfaces asynchronous notifications to listeners.
//
// # Architecture
//
// The runtime is a small state machine plus dispatcher layered over an
// abstract Transport:
//
//   - EventBus: ordered publish/subscribe with handle-based removal and
//     snapshot-at-emit reentrancy semantics
//   - ConnectivityTracker: the Disconnected/Connected state machine deciding
//     when connect, disconnect, chainChanged and accountsChanged fire
//   - SubscriptionRouter: stateless demux of raw push notifications into
//     message events
//   - RPCError and MapFailure: the single error shape callers see, with the
//     normative provider codes 4001/4100/4200/4900/4901
//   - Provider: the facade binding them together around Transport.Call
//
// # Usage
//
//	transport := jsonrpc.NewWebsocketTransport(jsonrpc.DefaultWebsocketTransportConfig)
//	prov, err := provider.New(transport, provider.Options{Logger: logger})
//	if err != nil {
//	    return err
//	}
//
//	prov.On(provider.EventChainChanged, func(payload any) {
//	    chainID := payload.(provider.ChainID)
//	    logger.Info("chain changed", "chainID", chainID)
//	})
//
//	go transport.Dial(ctx, url, func(err error) {
//	    prov.ReportConnectivity(false, "", nil)
//	})
//	go prov.Run(ctx)
//
//	result, err := prov.Request(ctx, provider.RequestArgs{Method: "eth_chainId"})
//
// The provider owns no transport policy: framing, timeouts and reconnection
// belong to the Transport implementation, and connectivity semantics enter
// the runtime only through ReportConnectivity.
package provider
