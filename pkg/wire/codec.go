package wire

import (
	"errors"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Frame layout constants.
const (
	// HeaderSize is the number of bytes before the payload, including the
	// length byte: len, cnt, flags, type, from(3), to(3).
	HeaderSize = 10

	// MaxFrameSize is the largest frame the radio carries.
	MaxFrameSize = 64

	// MaxPayloadSize is the payload allowance of a single frame.
	MaxPayloadSize = MaxFrameSize - HeaderSize
)

// Codec errors.
var (
	ErrFrameTooShort  = errors.New("frame too short")
	ErrFrameLength    = errors.New("frame length mismatch")
	ErrPayloadTooLong = errors.New("payload too long")
)

// Encode serialises a message into its on-air form.
func Encode(m *Message) ([]byte, error) {
	if len(m.Payload) > MaxPayloadSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrPayloadTooLong, len(m.Payload), MaxPayloadSize)
	}
	data := make([]byte, HeaderSize+len(m.Payload))
	data[0] = byte(len(data) - 1)
	data[1] = m.Counter
	data[2] = byte(m.Flags)
	data[3] = byte(m.Type)
	copy(data[4:7], m.From[:])
	copy(data[7:10], m.To[:])
	copy(data[HeaderSize:], m.Payload)
	return data, nil
}

// Decode parses an on-air frame. Trailing bytes beyond the length byte are ignored.
func Decode(data []byte) (*Message, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooShort, len(data))
	}
	n := int(data[0]) + 1
	if n < HeaderSize || n > len(data) {
		return nil, fmt.Errorf("%w: length byte %d, frame %d", ErrFrameLength, data[0], len(data))
	}
	m := &Message{
		Counter: data[1],
		Flags:   Flags(data[2]),
		Type:    MessageType(data[3]),
		Payload: make([]byte, n-HeaderSize),
	}
	copy(m.From[:], data[4:7])
	copy(m.To[:], data[7:10])
	copy(m.Payload, data[HeaderSize:n])
	return m, nil
}

// encMode is the CBOR encoder mode for envelopes.
// Configured for deterministic encoding with integer keys.
var encMode cbor.EncMode

// decMode is the CBOR decoder mode for envelopes.
var decMode cbor.DecMode

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR encoder mode: %v", err))
	}

	// Lenient decoding so newer gateways can add keys.
	decOpts := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyQuiet,
		IndefLength:       cbor.IndefLengthAllowed,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}
	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR decoder mode: %v", err))
	}
}

// Envelope wraps an on-air frame for transport over an IP gateway.
//
// CBOR encoding:
//
//	{
//	  1: frame,     // bytes: Encode output
//	  2: rssi,      // int: received signal strength (dBm), 0 when sending
//	  3: timestamp  // time: receive or send time
//	}
type Envelope struct {
	Frame     []byte    `cbor:"1,keyasint"`
	RSSI      int8      `cbor:"2,keyasint,omitempty"`
	Timestamp time.Time `cbor:"3,keyasint,omitempty"`
}

// EncodeEnvelope encodes m into a CBOR envelope.
func EncodeEnvelope(m *Message, rssi int8, at time.Time) ([]byte, error) {
	frame, err := Encode(m)
	if err != nil {
		return nil, err
	}
	return encMode.Marshal(Envelope{Frame: frame, RSSI: rssi, Timestamp: at})
}

// DecodeEnvelope decodes a CBOR envelope and the frame inside it.
func DecodeEnvelope(data []byte) (*Message, Envelope, error) {
	var env Envelope
	if err := decMode.Unmarshal(data, &env); err != nil {
		return nil, env, fmt.Errorf("failed to decode envelope: %w", err)
	}
	m, err := Decode(env.Frame)
	if err != nil {
		return nil, env, fmt.Errorf("failed to decode frame: %w", err)
	}
	return m, env, nil
}
