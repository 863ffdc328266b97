package log

import (
	"fmt"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/homewire/homewire-go/pkg/wire"
)

// Event is one protocol log record.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred.
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID identifies the process run that produced the event (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Direction indicates message flow.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event.
	Category Category `cbor:"5,keyasint"`

	// DeviceID is the local node id.
	DeviceID string `cbor:"6,keyasint,omitempty"`

	// PeerID is the remote node id, when there is one.
	PeerID string `cbor:"7,keyasint,omitempty"`

	// Type-specific payload (one of these is set).
	Frame       *FrameEvent       `cbor:"10,keyasint,omitempty"`
	Message     *MessageEvent     `cbor:"11,keyasint,omitempty"`
	StateChange *StateChangeEvent `cbor:"12,keyasint,omitempty"`
	Error       *ErrorEventData   `cbor:"14,keyasint,omitempty"`
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn indicates a received message.
	DirectionIn Direction = 0
	// DirectionOut indicates a sent message.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// ParseDirection parses "in" or "out" in any case.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(s) {
	case "in":
		return DirectionIn, true
	case "out":
		return DirectionOut, true
	default:
		return 0, false
	}
}

// Layer indicates where an event was captured.
type Layer uint8

const (
	// LayerRadio is the transport layer (raw frames).
	LayerRadio Layer = 0
	// LayerWire is the decoded message layer.
	LayerWire Layer = 1
	// LayerDevice is the dispatcher and channel layer.
	LayerDevice Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerRadio:
		return "RADIO"
	case LayerWire:
		return "WIRE"
	case LayerDevice:
		return "DEVICE"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryMessage indicates a protocol message.
	CategoryMessage Category = 0
	// CategoryState indicates a state change.
	CategoryState Category = 2
	// CategoryError indicates an error or rejected input.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryMessage:
		return "MESSAGE"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// FrameEvent captures a raw radio frame.
type FrameEvent struct {
	// Size is the frame size in bytes.
	Size int `cbor:"1,keyasint"`

	// Data is the raw frame.
	Data []byte `cbor:"2,keyasint,omitempty"`

	// RSSI is the receive signal strength in dBm, 0 when unknown.
	RSSI int8 `cbor:"3,keyasint,omitempty"`
}

// MessageEvent captures a decoded message.
type MessageEvent struct {
	Type       wire.MessageType `cbor:"1,keyasint"`
	Counter    uint8            `cbor:"2,keyasint"`
	Flags      wire.Flags       `cbor:"3,keyasint,omitempty"`
	From       string           `cbor:"4,keyasint"`
	To         string           `cbor:"5,keyasint"`
	Command    uint8            `cbor:"6,keyasint,omitempty"`
	Subcommand uint8            `cbor:"7,keyasint,omitempty"`
	Payload    []byte           `cbor:"8,keyasint,omitempty"`
}

// NewMessageEvent captures m.
func NewMessageEvent(m *wire.Message) *MessageEvent {
	ev := &MessageEvent{
		Type:    m.Type,
		Counter: m.Counter,
		Flags:   m.Flags,
		From:    m.From.String(),
		To:      m.To.String(),
		Payload: append([]byte(nil), m.Payload...),
	}
	if len(m.Payload) > 0 {
		ev.Command = m.Command()
	}
	if len(m.Payload) > 1 {
		ev.Subcommand = m.Subcommand()
	}
	return ev
}

// StateChangeEvent captures channel, session and pairing state changes.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// Channel is the channel number for channel changes.
	Channel uint8 `cbor:"2,keyasint,omitempty"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"3,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"4,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"5,keyasint,omitempty"`
}

// StateEntity indicates what changed state.
type StateEntity uint8

const (
	// StateEntityChannel indicates an actuator channel.
	StateEntityChannel StateEntity = 0
	// StateEntitySession indicates the configuration session.
	StateEntitySession StateEntity = 1
	// StateEntityPairing indicates pairing and master id changes.
	StateEntityPairing StateEntity = 2
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityChannel:
		return "CHANNEL"
	case StateEntitySession:
		return "SESSION"
	case StateEntityPairing:
		return "PAIRING"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures errors and rejected input.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Context describes what was being processed.
	Context string `cbor:"4,keyasint,omitempty"`
}

// eventModes is the CBOR codec of the .hwlog format. Keys are integers
// and sorted canonically; times are RFC 3339 strings so files stay
// readable with generic CBOR tools. Unknown keys are skipped on decode so
// older tools can read newer files.
var eventModes = mustEventModes()

type codecModes struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

func mustEventModes() codecModes {
	enc, err := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("log: event encoder: %v", err))
	}
	dec, err := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyQuiet,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("log: event decoder: %v", err))
	}
	return codecModes{enc: enc, dec: dec}
}

// EncodeEvent returns the .hwlog record of e.
func EncodeEvent(e Event) ([]byte, error) {
	return eventModes.enc.Marshal(e)
}

// DecodeEvent parses one .hwlog record.
func DecodeEvent(data []byte) (Event, error) {
	var e Event
	err := eventModes.dec.Unmarshal(data, &e)
	return e, err
}
