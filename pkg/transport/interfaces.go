package transport

import (
	"github.com/homewire/homewire-go/pkg/device"
	"github.com/homewire/homewire-go/pkg/wire"
)

// Radio is a device.Radio that also delivers inbound messages.
type Radio interface {
	device.Radio

	// Inbound returns the channel decoded inbound messages arrive on. It is
	// closed when the radio is closed.
	Inbound() <-chan *wire.Message

	// Close stops the radio.
	Close() error
}

// FrameReadWriter provides frame I/O.
// Implemented by Framer.
type FrameReadWriter interface {
	ReadFrame() ([]byte, error)
	WriteFrame(frame []byte) error
}

// Compile-time interface satisfaction checks.
var (
	_ Radio           = (*Loopback)(nil)
	_ Radio           = (*StreamRadio)(nil)
	_ Radio           = (*MQTTRadio)(nil)
	_ FrameReadWriter = (*Framer)(nil)
)
