package wire

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Identity errors.
var (
	ErrInvalidNodeID = errors.New("invalid node id")
	ErrInvalidSerial = errors.New("invalid serial")
)

// NodeID is the 3-byte radio address of a node.
type NodeID [3]byte

// Broadcast is the address every node listens to for broadcast-eligible messages.
var Broadcast = NodeID{0x00, 0x00, 0x00}

// ParseNodeID parses a 6 digit hex string such as "1a2b3c".
func ParseNodeID(s string) (NodeID, error) {
	var id NodeID
	b, err := hex.DecodeString(strings.TrimPrefix(strings.ToLower(s), "0x"))
	if err != nil || len(b) != len(id) {
		return id, fmt.Errorf("%w: %q", ErrInvalidNodeID, s)
	}
	copy(id[:], b)
	return id, nil
}

// String returns the id as 6 upper-case hex digits.
func (id NodeID) String() string {
	return strings.ToUpper(hex.EncodeToString(id[:]))
}

// IsBroadcast reports whether id is the broadcast address.
func (id NodeID) IsBroadcast() bool {
	return id == Broadcast
}

// Peer identifies a channel on a remote node. The zero Peer marks an
// empty peer slot.
type Peer struct {
	ID      NodeID
	Channel uint8
}

// PeerSize is the encoded size of a Peer.
const PeerSize = 4

// PeerFromBytes decodes a peer from its 4 byte wire form.
func PeerFromBytes(b []byte) Peer {
	var p Peer
	if len(b) < PeerSize {
		return p
	}
	copy(p.ID[:], b[:3])
	p.Channel = b[3]
	return p
}

// Bytes returns the 4 byte wire form of the peer.
func (p Peer) Bytes() []byte {
	return []byte{p.ID[0], p.ID[1], p.ID[2], p.Channel}
}

// Valid reports whether the peer refers to a real node.
func (p Peer) Valid() bool {
	return !p.ID.IsBroadcast()
}

// String returns "ID:channel".
func (p Peer) String() string {
	return fmt.Sprintf("%s:%02d", p.ID, p.Channel)
}

// ParsePeer parses the "ID:channel" form produced by String.
func ParsePeer(s string) (Peer, error) {
	idPart, chPart, ok := strings.Cut(s, ":")
	if !ok {
		return Peer{}, fmt.Errorf("%w: peer %q needs id:channel", ErrInvalidNodeID, s)
	}
	id, err := ParseNodeID(idPart)
	if err != nil {
		return Peer{}, err
	}
	var ch uint8
	if _, err := fmt.Sscanf(chPart, "%d", &ch); err != nil {
		return Peer{}, fmt.Errorf("%w: peer channel %q", ErrInvalidNodeID, chPart)
	}
	return Peer{ID: id, Channel: ch}, nil
}

// SerialSize is the length of a device serial number.
const SerialSize = 10

// Serial is the 10 character serial number a node is paired by.
type Serial [SerialSize]byte

// ParseSerial converts s into a Serial. Shorter strings are padded with
// spaces; longer ones are rejected.
func ParseSerial(s string) (Serial, error) {
	var sn Serial
	if len(s) == 0 || len(s) > SerialSize {
		return sn, fmt.Errorf("%w: %q must be 1-%d characters", ErrInvalidSerial, s, SerialSize)
	}
	for i := range sn {
		sn[i] = ' '
	}
	copy(sn[:], s)
	return sn, nil
}

// String returns the serial without padding.
func (s Serial) String() string {
	return strings.TrimRight(string(s[:]), " \x00")
}
