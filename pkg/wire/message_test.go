package wire

import (
	"errors"
	"testing"
)

func TestParseNodeID(t *testing.T) {
	id, err := ParseNodeID("1a2B3c")
	if err != nil {
		t.Fatalf("ParseNodeID failed: %v", err)
	}
	if id != (NodeID{0x1A, 0x2B, 0x3C}) {
		t.Errorf("id = %v", id)
	}
	if id.String() != "1A2B3C" {
		t.Errorf("String() = %q", id.String())
	}

	for _, bad := range []string{"", "12345", "1234567", "zzzzzz"} {
		if _, err := ParseNodeID(bad); !errors.Is(err, ErrInvalidNodeID) {
			t.Errorf("ParseNodeID(%q) err = %v, want ErrInvalidNodeID", bad, err)
		}
	}
}

func TestParsePeer(t *testing.T) {
	p, err := ParsePeer("1A2B3C:02")
	if err != nil {
		t.Fatalf("ParsePeer failed: %v", err)
	}
	want := Peer{ID: NodeID{0x1A, 0x2B, 0x3C}, Channel: 2}
	if p != want {
		t.Errorf("peer = %v, want %v", p, want)
	}
	if p.String() != "1A2B3C:02" {
		t.Errorf("String() = %q", p.String())
	}
	if _, err := ParsePeer("1A2B3C"); err == nil {
		t.Error("expected error for missing channel")
	}
}

func TestParseSerial(t *testing.T) {
	sn, err := ParseSerial("HW0001")
	if err != nil {
		t.Fatalf("ParseSerial failed: %v", err)
	}
	if sn.String() != "HW0001" {
		t.Errorf("String() = %q", sn.String())
	}
	if sn[9] != ' ' {
		t.Errorf("serial not padded: % X", sn[:])
	}
	if _, err := ParseSerial("ABCDEFGHIJK"); !errors.Is(err, ErrInvalidSerial) {
		t.Errorf("err = %v, want ErrInvalidSerial", err)
	}
}

func TestConfigPeersView(t *testing.T) {
	remote := NodeID{1, 2, 3}

	single := NewPeerAdd(1, testCentral, testDevice, 2, remote, 1, 0)
	v, err := single.ConfigPeers()
	if err != nil {
		t.Fatalf("ConfigPeers failed: %v", err)
	}
	if v.Channel() != 2 || v.Peers() != 1 || v.Peer1() != (Peer{ID: remote, Channel: 1}) {
		t.Errorf("single view = %+v", v)
	}

	pair := NewPeerRemove(1, testCentral, testDevice, 2, remote, 1, 2)
	v, err = pair.ConfigPeers()
	if err != nil {
		t.Fatalf("ConfigPeers failed: %v", err)
	}
	if v.Peers() != 2 || v.Peer2() != (Peer{ID: remote, Channel: 2}) {
		t.Errorf("pair view = %+v", v)
	}

	for _, n := range []int{3, 6} {
		short := &Message{Type: TypeConfig, Payload: single.Payload[:n]}
		if _, err := short.ConfigPeers(); !errors.Is(err, ErrShortPayload) {
			t.Errorf("%d byte payload: err = %v, want ErrShortPayload", n, err)
		}
	}
}

func TestListSelectView(t *testing.T) {
	peer := Peer{ID: NodeID{9, 8, 7}, Channel: 1}
	m := NewParamReq(1, testCentral, testDevice, 1, peer, 3)
	v, err := m.ConfigListSelect()
	if err != nil {
		t.Fatalf("ConfigListSelect failed: %v", err)
	}
	if v.Channel != 1 || v.Peer != peer || v.List != 3 {
		t.Errorf("view = %+v", v)
	}
}

func TestActionSetView(t *testing.T) {
	m := NewActionSet(1, testCentral, testDevice, 2, LevelOn, 0x1234)
	v, err := m.ActionSet()
	if err != nil {
		t.Fatalf("ActionSet failed: %v", err)
	}
	if v.Channel != 2 || v.Value != LevelOn || v.Delay != 0x1234 {
		t.Errorf("view = %+v", v)
	}
	if ActionCommand(m.Command()) != ActionSetCmd {
		t.Errorf("command = %02X", m.Command())
	}
}

func TestRemoteEventView(t *testing.T) {
	m := NewRemoteEvent(1, testCentral, testDevice, 3, true, 42)
	v, err := m.RemoteEvent()
	if err != nil {
		t.Fatalf("RemoteEvent failed: %v", err)
	}
	if v.Peer != (Peer{ID: testCentral, Channel: 3}) || !v.Long || v.Counter != 42 || v.LowBat {
		t.Errorf("view = %+v", v)
	}
}

func TestBroadcastEligible(t *testing.T) {
	sn, _ := ParseSerial("HW0001")
	if !NewPairSerial(1, testCentral, sn).IsBroadcastEligible() {
		t.Error("PAIR_SERIAL should be broadcast eligible")
	}
	if NewConfigEnd(1, testCentral, Broadcast, 0).IsBroadcastEligible() {
		t.Error("END should not be broadcast eligible")
	}
}

func TestReplies(t *testing.T) {
	req := NewActionSet(0x33, testCentral, testDevice, 1, LevelOn, 0)

	ack := NewAckStatus(req, testDevice, ActuatorStatus{Channel: 1, Level: LevelOn})
	if !ack.IsAck() || ack.IsNack() {
		t.Error("ack status not recognised as ack")
	}
	if ack.Counter != req.Counter || ack.To != testCentral || ack.From != testDevice {
		t.Errorf("ack addressing = %v", ack)
	}
	st, ok := ack.ActuatorStatus()
	if !ok || st.Channel != 1 || !st.On() {
		t.Errorf("status = %+v ok=%v", st, ok)
	}

	if !NewNack(req, testDevice).IsNack() {
		t.Error("nack not recognised")
	}

	pl := NewInfoPeerList(1, testDevice, testCentral, []Peer{{ID: NodeID{1, 2, 3}, Channel: 1}}, true)
	peers, ok := pl.PeerList()
	if !ok || len(peers) != 1 {
		t.Errorf("peers = %v ok=%v", peers, ok)
	}

	pp := NewInfoParamResponsePairs(1, testDevice, testCentral, []byte{0x02, 0x07, 0x30, 0x06}, true)
	pairs, ok := pp.ParamPairs()
	if !ok || pairs[0x02] != 0x07 || pairs[0x30] != 0x06 || len(pairs) != 2 {
		t.Errorf("pairs = %v ok=%v", pairs, ok)
	}

	sn, _ := ParseSerial("HW0001")
	di := NewDeviceInfo(5, testDevice, Broadcast, DeviceInfo{Firmware: 0x10, Model: 0x00F1, Serial: sn})
	info, ok := di.DeviceInfo()
	if !ok || info.Model != 0x00F1 || info.Serial != sn {
		t.Errorf("device info = %+v ok=%v", info, ok)
	}
	if !di.Flags.Has(FlagBcast) {
		t.Error("broadcast device info should carry the broadcast flag")
	}
}
