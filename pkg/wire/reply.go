package wire

// Chunk sizes for multi-frame info replies.
const (
	PeersPerFrame = 4
	PairsPerFrame = 8
)

// Actuator levels reported for the two switch states.
const (
	LevelOff uint8 = 0x00
	LevelOn  uint8 = 0xC8
)

// ActuatorStatus is the state of one channel as carried by ACK_STATUS and
// INFO_ACTUATOR_STATUS frames.
type ActuatorStatus struct {
	Channel uint8
	Level   uint8
	Flags   uint8
	RSSI    uint8
}

// On reports whether the level means "switched on".
func (s ActuatorStatus) On() bool {
	return s.Level != LevelOff
}

func (s ActuatorStatus) bytes() []byte {
	return []byte{s.Channel, s.Level, s.Flags, s.RSSI}
}

// DeviceInfo is the identity a node announces while pairing.
type DeviceInfo struct {
	Firmware uint8
	Model    uint16
	Serial   Serial
	Subtype  uint8
	Info     [3]byte
}

func reply(req *Message, from NodeID, t MessageType, payload []byte) *Message {
	return &Message{
		Counter: req.Counter,
		Flags:   FlagRptEn,
		Type:    t,
		From:    from,
		To:      req.From,
		Payload: payload,
	}
}

// NewAck acknowledges req.
func NewAck(req *Message, from NodeID) *Message {
	return reply(req, from, TypeResponse, []byte{respAck})
}

// NewAckStatus acknowledges req and attaches the status of a channel.
func NewAckStatus(req *Message, from NodeID, st ActuatorStatus) *Message {
	return reply(req, from, TypeResponse, append([]byte{respAckStatus}, st.bytes()...))
}

// NewNack rejects req.
func NewNack(req *Message, from NodeID) *Message {
	return reply(req, from, TypeResponse, []byte{respNack})
}

// NewDeviceInfo announces the node identity to "to".
func NewDeviceInfo(cnt uint8, from, to NodeID, info DeviceInfo) *Message {
	payload := make([]byte, 0, 17)
	payload = append(payload, info.Firmware, byte(info.Model>>8), byte(info.Model))
	payload = append(payload, info.Serial[:]...)
	payload = append(payload, info.Subtype)
	payload = append(payload, info.Info[:]...)
	flags := FlagRptEn | FlagBidi
	if to.IsBroadcast() {
		flags = FlagRptEn | FlagBcast
	}
	return &Message{Counter: cnt, Flags: flags, Type: TypeDeviceInfo, From: from, To: to, Payload: payload}
}

// NewInfoActuatorStatus reports the status of a channel.
func NewInfoActuatorStatus(cnt uint8, from, to NodeID, st ActuatorStatus) *Message {
	return &Message{
		Counter: cnt,
		Flags:   FlagRptEn | FlagBidi,
		Type:    TypeInfo,
		From:    from,
		To:      to,
		Payload: append([]byte{infoActuatorStatus}, st.bytes()...),
	}
}

// NewInfoPeerList carries up to PeersPerFrame peers. The final frame of a
// listing has last set and ends with an all-zero peer.
func NewInfoPeerList(cnt uint8, from, to NodeID, peers []Peer, last bool) *Message {
	payload := []byte{infoPeerList}
	for _, p := range peers {
		payload = append(payload, p.Bytes()...)
	}
	if last {
		payload = append(payload, Peer{}.Bytes()...)
	}
	return &Message{Counter: cnt, Flags: FlagRptEn | FlagBidi, Type: TypeInfo, From: from, To: to, Payload: payload}
}

// NewInfoParamResponsePairs carries register/value pairs. The final frame
// has last set and ends with 0x00 0x00.
func NewInfoParamResponsePairs(cnt uint8, from, to NodeID, pairs []byte, last bool) *Message {
	payload := append([]byte{infoParamPairs}, pairs...)
	if last {
		payload = append(payload, 0x00, 0x00)
	}
	return &Message{Counter: cnt, Flags: FlagRptEn | FlagBidi, Type: TypeInfo, From: from, To: to, Payload: payload}
}

// IsAck reports whether m is a plain or status acknowledgement.
func (m *Message) IsAck() bool {
	return m.Type == TypeResponse && (m.Command() == respAck || m.Command() == respAckStatus)
}

// IsNack reports whether m is a negative acknowledgement.
func (m *Message) IsNack() bool {
	return m.Type == TypeResponse && m.Command() == respNack
}

// ActuatorStatus decodes ACK_STATUS and INFO_ACTUATOR_STATUS frames.
func (m *Message) ActuatorStatus() (ActuatorStatus, bool) {
	isStatus := (m.Type == TypeResponse && m.Command() == respAckStatus) ||
		(m.Type == TypeInfo && m.Command() == infoActuatorStatus)
	if !isStatus || len(m.Payload) < 3 {
		return ActuatorStatus{}, false
	}
	st := ActuatorStatus{Channel: m.Payload[1], Level: m.Payload[2]}
	if len(m.Payload) > 3 {
		st.Flags = m.Payload[3]
	}
	if len(m.Payload) > 4 {
		st.RSSI = m.Payload[4]
	}
	return st, true
}

// PeerList decodes an INFO peer list frame. The terminating zero peer is
// not included in the result.
func (m *Message) PeerList() ([]Peer, bool) {
	if m.Type != TypeInfo || m.Command() != infoPeerList {
		return nil, false
	}
	var peers []Peer
	for b := m.Payload[1:]; len(b) >= PeerSize; b = b[PeerSize:] {
		p := PeerFromBytes(b)
		if p == (Peer{}) {
			break
		}
		peers = append(peers, p)
	}
	return peers, true
}

// ParamPairs decodes an INFO param response frame into a register map.
func (m *Message) ParamPairs() (map[uint8]uint8, bool) {
	if m.Type != TypeInfo || m.Command() != infoParamPairs {
		return nil, false
	}
	out := make(map[uint8]uint8)
	for b := m.Payload[1:]; len(b) >= 2; b = b[2:] {
		if b[0] == 0 && b[1] == 0 {
			break
		}
		out[b[0]] = b[1]
	}
	return out, true
}

// DeviceInfo decodes a DEVICE_INFO frame.
func (m *Message) DeviceInfo() (DeviceInfo, bool) {
	if m.Type != TypeDeviceInfo || len(m.Payload) < 17 {
		return DeviceInfo{}, false
	}
	var info DeviceInfo
	info.Firmware = m.Payload[0]
	info.Model = uint16(m.Payload[1])<<8 | uint16(m.Payload[2])
	copy(info.Serial[:], m.Payload[3:13])
	info.Subtype = m.Payload[13]
	copy(info.Info[:], m.Payload[14:17])
	return info, true
}
