package wire

// Request builders used by controllers, the interactive console and tests.

func configMessage(cnt uint8, from, to NodeID, ch uint8, sub ConfigSubcommand, data ...byte) *Message {
	payload := append([]byte{ch, uint8(sub)}, data...)
	return &Message{
		Counter: cnt,
		Flags:   FlagBidi | FlagRptEn,
		Type:    TypeConfig,
		From:    from,
		To:      to,
		Payload: payload,
	}
}

// NewPairSerial builds a PAIR_SERIAL request addressed to the broadcast id.
func NewPairSerial(cnt uint8, from NodeID, serial Serial) *Message {
	return configMessage(cnt, from, Broadcast, 0, ConfigPairSerialCmd, serial[:]...)
}

// NewPeerAdd builds a PEER_ADD request. chB of zero adds a single peer.
func NewPeerAdd(cnt uint8, from, to NodeID, ch uint8, peer NodeID, chA, chB uint8) *Message {
	return configMessage(cnt, from, to, ch, ConfigPeerAddCmd, peer[0], peer[1], peer[2], chA, chB)
}

// NewPeerRemove builds a PEER_REMOVE request.
func NewPeerRemove(cnt uint8, from, to NodeID, ch uint8, peer NodeID, chA, chB uint8) *Message {
	return configMessage(cnt, from, to, ch, ConfigPeerRemoveCmd, peer[0], peer[1], peer[2], chA, chB)
}

// NewPeerListReq builds a PEER_LIST_REQ request.
func NewPeerListReq(cnt uint8, from, to NodeID, ch uint8) *Message {
	return configMessage(cnt, from, to, ch, ConfigPeerListReqCmd)
}

// NewParamReq builds a PARAM_REQ request.
func NewParamReq(cnt uint8, from, to NodeID, ch uint8, peer Peer, list uint8) *Message {
	return configMessage(cnt, from, to, ch, ConfigParamReqCmd, append(peer.Bytes(), list)...)
}

// NewConfigStart builds a START request.
func NewConfigStart(cnt uint8, from, to NodeID, ch uint8, peer Peer, list uint8) *Message {
	return configMessage(cnt, from, to, ch, ConfigStartCmd, append(peer.Bytes(), list)...)
}

// NewConfigEnd builds an END request.
func NewConfigEnd(cnt uint8, from, to NodeID, ch uint8) *Message {
	return configMessage(cnt, from, to, ch, ConfigEndCmd)
}

// NewWriteIndex builds a WRITE_INDEX request carrying register/value pairs.
func NewWriteIndex(cnt uint8, from, to NodeID, ch uint8, pairs ...byte) *Message {
	return configMessage(cnt, from, to, ch, ConfigWriteIndexCmd, pairs...)
}

// NewStatusRequest builds a STATUS_REQUEST for channel ch.
func NewStatusRequest(cnt uint8, from, to NodeID, ch uint8) *Message {
	return configMessage(cnt, from, to, ch, ConfigStatusReqCmd)
}

// NewActionSet builds an ACTION/SET request.
func NewActionSet(cnt uint8, from, to NodeID, ch, value uint8, delay uint16) *Message {
	return &Message{
		Counter: cnt,
		Flags:   FlagBidi | FlagRptEn,
		Type:    TypeAction,
		From:    from,
		To:      to,
		Payload: []byte{uint8(ActionSetCmd), ch, value, byte(delay >> 8), byte(delay)},
	}
}

// NewRemoteEvent builds a REMOTE_EVENT sent by the button btn of node from.
func NewRemoteEvent(cnt uint8, from, to NodeID, btn uint8, long bool, counter uint8) *Message {
	b := btn & remoteChannelMask
	if long {
		b |= remoteLongFlag
	}
	return &Message{
		Counter: cnt,
		Flags:   FlagBidi | FlagRptEn,
		Type:    TypeRemoteEvent,
		From:    from,
		To:      to,
		Payload: []byte{b, counter},
	}
}
