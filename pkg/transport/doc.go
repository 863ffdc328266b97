// Package transport carries radio frames between a device and the air.
//
// Three radios are provided:
//   - Loopback queues frames in memory for tests and the interactive console
//   - StreamRadio exchanges self-delimiting frames over a byte stream such
//     as a serial gateway or a TCP socket
//   - MQTTRadio exchanges CBOR envelopes with an MQTT radio gateway
//
// Every radio implements device.Radio and delivers decoded inbound messages
// on the channel returned by Inbound. The device loop selects on that
// channel and calls Process for each message.
//
// # MQTT topics
//
//	<prefix>/<node id>/tx      frames sent by this node
//	<prefix>/<node id>/rx      frames addressed to this node
//	<prefix>/broadcast/rx      broadcast frames
package transport
