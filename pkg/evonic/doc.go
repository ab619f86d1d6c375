// Package evonic is a client for Evonic decorative fires on the local network.
//
// A fire serves its full state document over HTTP on port 80 (/modules.json) and
// streams partial state updates over a WebSocket on port 81, which also accepts
// control messages. This package bootstraps the state over HTTP, keeps a merged
// Snapshot up to date from the WebSocket, and validates commands against the
// capabilities the fire reports before sending them.
//
// # Usage Example
//
//	client := evonic.NewClient("192.168.1.190", evonic.WithLogger(logger))
//	defer func() { _ = client.Close() }()
//
//	if err := client.Connect(ctx); err != nil {
//	    return err
//	}
//
//	go func() {
//	    err := client.Listen(ctx, func(s *evonic.Snapshot) {
//	        fmt.Println("effect:", *s.Lighting.Effect)
//	    })
//	    log.Printf("listen stopped: %v", err)
//	}()
//
//	if err := client.SetTemperature(ctx, 21); err != nil {
//	    return err
//	}
//
// # Snapshots and Partial Updates
//
// Inbound documents are decoded into an Update whose fields are each present or
// absent (see Field). Merging overwrites only present fields; an explicit JSON
// null clears a field. Numeric strings are coerced to integers, and anything that
// cannot be coerced is rejected with a KindDecode error instead of becoming zero.
//
// # Capabilities
//
// The effect catalog is derived from the model code (DeviceInfo.Configs) by
// EffectsFor. Feature light, RGB zone and temperature commands require the
// matching entry in DeviceInfo.Modules.
//
// # Lifecycle
//
//	Disconnected → Connecting → Connected → Closed
//
// Connect is a no-op when connected. A remote close or read error ends Listen and
// returns the client to Disconnected, so the caller may Connect again; reconnecting
// is always the caller's decision. Disconnect and Close are terminal.
//
// # Error Handling
//
// Every failure is an *Error with a Kind. Use the IsXxx helpers or errors.Is with
// the ErrXxx sentinels:
//
//	if errors.Is(err, evonic.ErrOutOfRange) { ... }
//
// # Thread Safety
//
// Listen runs on one goroutine while commands may be sent from others. Writes to
// the WebSocket are serialized, and snapshot merges are serialized with each other
// and with command validation. Callers that read the Snapshot from a goroutine
// other than the one running Listen should take a Clone inside the callback.
package evonic
