// Package wire defines the radio message model of a homewire node.
//
// Every frame on the air carries a small fixed header followed by a
// type-specific payload:
//
//	len | cnt | flags | type | from(3) | to(3) | payload...
//
// The length byte counts everything after itself. The message counter is
// chosen by the sender and echoed by the receiver in its reply, which is
// how acknowledgements are correlated.
//
// # Message Types
//
//   - CONFIG (0x01): pairing, peer management, list reads and indexed writes.
//     The first payload byte is the channel, the second the subcommand.
//   - ACTION (0x11): direct actuator commands (SET).
//   - REMOTE_EVENT (0x40): a button press forwarded from a paired remote.
//   - RESPONSE (0x02) and INFO (0x10): replies produced by the device.
//   - DEVICE_INFO (0x00): the identity announcement sent while pairing.
//
// # Typed Views
//
// Handlers never index Payload directly. Instead they ask the message for a
// typed view (ConfigPeerAdd, ActionSet, RemoteEvent, ...) which checks the
// payload length once and exposes named accessors.
//
// # Envelopes
//
// When frames travel over an IP gateway they are wrapped in an Envelope and
// encoded as CBOR (RFC 8949) with integer keys.
package wire
