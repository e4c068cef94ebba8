// Package realtime delivers room state changes to mounted viewers.
//
// # Patches
//
// A [Patch] names one room and carries the attributes that changed:
//
//	{"roomId": "kitchen", "lightOn": true}
//
// Patches are idempotent snapshots of the new value, not toggles, so
// re-delivery is harmless and the last write wins. [Apply] writes the patched
// attributes into the matching block in place and never touches geometry or
// the viewport transform. A patch for a room the floor does not contain is
// dropped without error.
//
// # Channels
//
// A [Channel] is a push stream scoped to one floor. Subscribing returns a
// [Subscription] whose Close is synchronous: once it returns, the handler is
// never called again. Handlers on one subscription are never called
// concurrently. Close must not be called from inside the handler.
//
// Four transports are provided:
//
//   - [Memory]: in-process broker, used by tests and single-binary setups
//   - [Redis]: Redis pub/sub, one channel per floor
//   - [MQTT]: MQTT topics, one topic per floor
//   - [WebSocket]: a read-only client for a server that relays patches
//
// Memory, Redis and MQTT also implement [Publisher].
//
// # Failure
//
// A transport that loses its connection logs the error and stops delivering.
// Viewers keep the last state they applied; there is no replay.
package realtime
