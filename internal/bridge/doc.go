// Package bridge publishes an Evonic fire's state to an MQTT broker and
// accepts commands from it.
//
// With a topic prefix of "evonic" the bridge uses:
//
//	evonic/state         retained JSON snapshot, republished after every update
//	evonic/availability  retained "online" or "offline" (also the last will)
//	evonic/set           command requests, e.g. {"command": "power", "value": "on"}
//	evonic/error         {"command", "kind", "error"} for rejected commands
//
// The fire connection is re-established with exponential backoff when it
// drops. Broker reconnects are left to paho's auto-reconnect.
package bridge
