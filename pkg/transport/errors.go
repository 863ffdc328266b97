package transport

import "errors"

// Radio errors.
var (
	// ErrClosed is returned when sending on a closed radio.
	ErrClosed = errors.New("transport: radio closed")

	// ErrNotConnected is returned when the MQTT client is not connected.
	ErrNotConnected = errors.New("transport: not connected")

	// ErrConnectionFailed is returned when the initial broker connection fails.
	ErrConnectionFailed = errors.New("transport: connection failed")

	// ErrPublishFailed is returned when a publish fails or times out.
	ErrPublishFailed = errors.New("transport: publish failed")

	// ErrSubscribeFailed is returned when a subscription fails.
	ErrSubscribeFailed = errors.New("transport: subscribe failed")

	// ErrInboundFull is returned when an inbound message is dropped because
	// the inbound queue is full.
	ErrInboundFull = errors.New("transport: inbound queue full")
)
