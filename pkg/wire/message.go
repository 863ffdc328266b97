package wire

import (
	"errors"
	"fmt"
)

// ErrShortPayload is returned when a payload is too short for the view requested.
var ErrShortPayload = errors.New("payload too short")

// Message is a decoded radio frame.
type Message struct {
	Counter uint8
	Flags   Flags
	Type    MessageType
	From    NodeID
	To      NodeID
	Payload []byte
}

// Command returns the first payload byte. For CONFIG messages it is the
// channel, for ACTION messages the action command.
func (m *Message) Command() uint8 {
	if len(m.Payload) < 1 {
		return 0
	}
	return m.Payload[0]
}

// Subcommand returns the second payload byte.
func (m *Message) Subcommand() uint8 {
	if len(m.Payload) < 2 {
		return 0
	}
	return m.Payload[1]
}

// Data returns the payload after command and subcommand.
func (m *Message) Data() []byte {
	if len(m.Payload) < 2 {
		return nil
	}
	return m.Payload[2:]
}

// AckRequired reports whether the sender asked for an acknowledgement.
func (m *Message) AckRequired() bool {
	return m.Flags.Has(FlagBidi)
}

// IsConfig reports whether m is a CONFIG message with the given subcommand.
func (m *Message) IsConfig(sub ConfigSubcommand) bool {
	return m.Type == TypeConfig && ConfigSubcommand(m.Subcommand()) == sub
}

// IsBroadcastEligible reports whether m may be accepted when addressed to
// the broadcast id. Only pairing by serial qualifies.
func (m *Message) IsBroadcastEligible() bool {
	return m.IsConfig(ConfigPairSerialCmd)
}

// String returns a compact one-line description for logs.
func (m *Message) String() string {
	return fmt.Sprintf("cnt=%02X flags=%02X type=%s from=%s to=%s payload=% X",
		m.Counter, uint8(m.Flags), m.Type, m.From, m.To, m.Payload)
}

func (m *Message) need(n int) error {
	if len(m.Payload) < n {
		return fmt.Errorf("%w: %s needs %d bytes, got %d", ErrShortPayload, m.Type, n, len(m.Payload))
	}
	return nil
}

// ConfigPeers is the shared view of PEER_ADD and PEER_REMOVE.
//
// Payload: channel, subcmd, peer id(3), peer channel A, peer channel B.
// Two peers are addressed when channel B is non-zero; both share the id.
type ConfigPeers struct {
	channel uint8
	id      NodeID
	chA     uint8
	chB     uint8
}

// Channel returns the local channel.
func (v ConfigPeers) Channel() uint8 { return v.channel }

// Peers returns 1 or 2.
func (v ConfigPeers) Peers() int {
	if v.chB != 0 {
		return 2
	}
	return 1
}

// Peer1 returns the first peer.
func (v ConfigPeers) Peer1() Peer { return Peer{ID: v.id, Channel: v.chA} }

// Peer2 returns the second peer. Only meaningful when Peers() == 2.
func (v ConfigPeers) Peer2() Peer { return Peer{ID: v.id, Channel: v.chB} }

// ConfigPeers decodes a PEER_ADD or PEER_REMOVE payload.
func (m *Message) ConfigPeers() (ConfigPeers, error) {
	if err := m.need(7); err != nil {
		return ConfigPeers{}, err
	}
	v := ConfigPeers{channel: m.Payload[0], chA: m.Payload[5], chB: m.Payload[6]}
	copy(v.id[:], m.Payload[2:5])
	return v, nil
}

// ConfigListSelect is the shared view of PARAM_REQ and START.
//
// Payload: channel, subcmd, peer(4), list number.
type ConfigListSelect struct {
	Channel uint8
	Peer    Peer
	List    uint8
}

// ConfigListSelect decodes a PARAM_REQ or START payload.
func (m *Message) ConfigListSelect() (ConfigListSelect, error) {
	if err := m.need(7); err != nil {
		return ConfigListSelect{}, err
	}
	return ConfigListSelect{
		Channel: m.Payload[0],
		Peer:    PeerFromBytes(m.Payload[2:6]),
		List:    m.Payload[6],
	}, nil
}

// ConfigWriteIndex is the view of a WRITE_INDEX message.
type ConfigWriteIndex struct {
	Channel uint8
	// Data holds register/value pairs.
	Data []byte
}

// ConfigWriteIndex decodes a WRITE_INDEX payload.
func (m *Message) ConfigWriteIndex() (ConfigWriteIndex, error) {
	if err := m.need(2); err != nil {
		return ConfigWriteIndex{}, err
	}
	return ConfigWriteIndex{Channel: m.Payload[0], Data: m.Payload[2:]}, nil
}

// PairSerial returns the serial carried by a PAIR_SERIAL message.
func (m *Message) PairSerial() (Serial, error) {
	var sn Serial
	if err := m.need(2 + SerialSize); err != nil {
		return sn, err
	}
	copy(sn[:], m.Payload[2:2+SerialSize])
	return sn, nil
}

// ActionSet is the view of an ACTION/SET message.
//
// Payload: 0x02, channel, value, delay(2, big endian, optional).
type ActionSet struct {
	Channel uint8
	Value   uint8
	Delay   uint16
}

// ActionSet decodes an ACTION/SET payload.
func (m *Message) ActionSet() (ActionSet, error) {
	if err := m.need(3); err != nil {
		return ActionSet{}, err
	}
	v := ActionSet{Channel: m.Payload[1], Value: m.Payload[2]}
	if len(m.Payload) >= 5 {
		v.Delay = uint16(m.Payload[3])<<8 | uint16(m.Payload[4])
	}
	return v, nil
}

// RemoteEvent is the view of a REMOTE_EVENT message.
//
// Payload: channel|flags, counter.
type RemoteEvent struct {
	Peer    Peer
	Long    bool
	LowBat  bool
	Counter uint8
}

// RemoteEvent decodes a REMOTE_EVENT payload. The peer is the sender
// combined with the channel of the pressed button.
func (m *Message) RemoteEvent() (RemoteEvent, error) {
	if err := m.need(2); err != nil {
		return RemoteEvent{}, err
	}
	b := m.Payload[0]
	return RemoteEvent{
		Peer:    Peer{ID: m.From, Channel: b & remoteChannelMask},
		Long:    b&remoteLongFlag != 0,
		LowBat:  b&remoteLowBatFlag != 0,
		Counter: m.Payload[1],
	}, nil
}
