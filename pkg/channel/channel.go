package channel

import (
	"errors"
	"fmt"

	"github.com/homewire/homewire-go/pkg/list"
	"github.com/homewire/homewire-go/pkg/wire"
)

// Channel errors.
var (
	ErrPeerTableFull = errors.New("peer table full")
	ErrPeerNotFound  = errors.New("peer not found")
	ErrInvalidPeer   = errors.New("invalid peer")
	ErrNotSetUp      = errors.New("channel not set up")
)

// Spec describes the static shape of a channel type.
type Spec struct {
	// List1 is the layout of the per-channel list. Required.
	List1 *list.Layout

	// List3 is the layout of the peer-keyed List3, nil when unsupported.
	List3 *list.Layout

	// List4 is the layout of the peer-keyed List4, nil when unsupported.
	List4 *list.Layout

	// PeerCount is the capacity of the peer table.
	PeerCount int
}

// Size returns the storage bytes one channel of this spec occupies.
func (s Spec) Size() int {
	n := s.List1.Size() + wire.PeerSize*s.PeerCount
	if s.List3 != nil {
		n += s.List3.Size() * s.PeerCount
	}
	if s.List4 != nil {
		n += s.List4.Size() * s.PeerCount
	}
	return n
}

// Channel is one channel of a device.
// Channel is not safe for concurrent use; the device serialises access.
type Channel struct {
	spec    Spec
	store   list.Storage
	number  uint8
	addr    uint16
	changed bool

	onPeerAdded   func(slot int, p wire.Peer)
	onPeerRemoved func(p wire.Peer)
}

// New creates a channel of the given spec. It is unusable until Setup.
func New(spec Spec) *Channel {
	return &Channel{spec: spec}
}

// Setup binds the channel to its number and storage address.
func (c *Channel) Setup(store list.Storage, number uint8, addr uint16) {
	c.store = store
	c.number = number
	c.addr = addr
}

// Number returns the 1-based channel number, 0 before Setup.
func (c *Channel) Number() uint8 {
	return c.number
}

// Address returns the storage base address.
func (c *Channel) Address() uint16 {
	return c.addr
}

// Size returns the storage bytes the channel occupies.
func (c *Channel) Size() int {
	return c.spec.Size()
}

// PeerCount returns the peer table capacity.
func (c *Channel) PeerCount() int {
	return c.spec.PeerCount
}

// HasList3 reports whether the channel type has a List3.
func (c *Channel) HasList3() bool {
	return c.spec.List3 != nil
}

// HasList4 reports whether the channel type has a List4.
func (c *Channel) HasList4() bool {
	return c.spec.List4 != nil
}

// Changed reports whether the channel has an unreported state change.
func (c *Channel) Changed() bool {
	return c.changed
}

// SetChanged sets or clears the changed flag.
func (c *Channel) SetChanged(v bool) {
	c.changed = v
}

// OnPeerAdded sets a callback invoked after a peer is stored.
func (c *Channel) OnPeerAdded(fn func(slot int, p wire.Peer)) {
	c.onPeerAdded = fn
}

// OnPeerRemoved sets a callback invoked after a peer is removed.
func (c *Channel) OnPeerRemoved(fn func(p wire.Peer)) {
	c.onPeerRemoved = fn
}

func (c *Channel) peerTableAddr() uint16 {
	return c.addr + uint16(c.spec.List1.Size())
}

func (c *Channel) list3Addr(slot int) uint16 {
	return c.peerTableAddr() + uint16(wire.PeerSize*c.spec.PeerCount) + uint16(slot*c.spec.List3.Size())
}

func (c *Channel) list4Addr(slot int) uint16 {
	base := c.peerTableAddr() + uint16(wire.PeerSize*c.spec.PeerCount)
	if c.spec.List3 != nil {
		base += uint16(c.spec.List3.Size() * c.spec.PeerCount)
	}
	return base + uint16(slot*c.spec.List4.Size())
}

// List1 returns the per-channel list.
func (c *Channel) List1() list.GenericList {
	if c.store == nil {
		return list.Invalid()
	}
	return list.New(c.store, c.addr, c.spec.List1)
}

// List3 returns the List3 of a known peer, or an invalid list.
func (c *Channel) List3(p wire.Peer) list.GenericList {
	if c.spec.List3 == nil {
		return list.Invalid()
	}
	slot, ok := c.FindPeer(p)
	if !ok {
		return list.Invalid()
	}
	return list.New(c.store, c.list3Addr(slot), c.spec.List3)
}

// List4 returns the List4 of a known peer, or an invalid list.
func (c *Channel) List4(p wire.Peer) list.GenericList {
	if c.spec.List4 == nil {
		return list.Invalid()
	}
	slot, ok := c.FindPeer(p)
	if !ok {
		return list.Invalid()
	}
	return list.New(c.store, c.list4Addr(slot), c.spec.List4)
}

// PeerAt returns the peer stored in slot. Empty slots yield the zero peer.
func (c *Channel) PeerAt(slot int) wire.Peer {
	if c.store == nil || slot < 0 || slot >= c.spec.PeerCount {
		return wire.Peer{}
	}
	var b [wire.PeerSize]byte
	if err := c.store.ReadAt(c.peerTableAddr()+uint16(slot*wire.PeerSize), b[:]); err != nil {
		return wire.Peer{}
	}
	return wire.PeerFromBytes(b[:])
}

func (c *Channel) writePeer(slot int, p wire.Peer) error {
	return c.store.WriteAt(c.peerTableAddr()+uint16(slot*wire.PeerSize), p.Bytes())
}

// FindPeer returns the slot holding p.
func (c *Channel) FindPeer(p wire.Peer) (int, bool) {
	if !p.Valid() {
		return 0, false
	}
	for i := 0; i < c.spec.PeerCount; i++ {
		if c.PeerAt(i) == p {
			return i, true
		}
	}
	return 0, false
}

// Peers returns the stored peers in slot order.
func (c *Channel) Peers() []wire.Peer {
	var out []wire.Peer
	for i := 0; i < c.spec.PeerCount; i++ {
		if p := c.PeerAt(i); p.Valid() {
			out = append(out, p)
		}
	}
	return out
}

// AddPeer stores p in the first free slot and returns the slot.
// A peer already present keeps its slot.
func (c *Channel) AddPeer(p wire.Peer) (int, error) {
	if c.store == nil {
		return 0, ErrNotSetUp
	}
	if !p.Valid() {
		return 0, ErrInvalidPeer
	}
	if slot, ok := c.FindPeer(p); ok {
		return slot, nil
	}
	for i := 0; i < c.spec.PeerCount; i++ {
		if c.PeerAt(i).Valid() {
			continue
		}
		if err := c.writePeer(i, p); err != nil {
			return 0, fmt.Errorf("failed to store peer %s: %w", p, err)
		}
		if c.onPeerAdded != nil {
			c.onPeerAdded(i, p)
		}
		return i, nil
	}
	return 0, ErrPeerTableFull
}

// DeletePeer removes p from the peer table.
func (c *Channel) DeletePeer(p wire.Peer) error {
	slot, ok := c.FindPeer(p)
	if !ok {
		return ErrPeerNotFound
	}
	if err := c.writePeer(slot, wire.Peer{}); err != nil {
		return fmt.Errorf("failed to clear peer %s: %w", p, err)
	}
	if c.onPeerRemoved != nil {
		c.onPeerRemoved(p)
	}
	return nil
}

// FirstInit writes factory defaults: List1 defaults, an empty peer table
// and default peer lists in every slot.
func (c *Channel) FirstInit() error {
	if c.store == nil {
		return ErrNotSetUp
	}
	if err := c.List1().Defaults(); err != nil {
		return fmt.Errorf("channel %d list1: %w", c.number, err)
	}
	for i := 0; i < c.spec.PeerCount; i++ {
		if err := c.writePeer(i, wire.Peer{}); err != nil {
			return fmt.Errorf("channel %d peer table: %w", c.number, err)
		}
		if c.spec.List3 != nil {
			if err := list.New(c.store, c.list3Addr(i), c.spec.List3).Defaults(); err != nil {
				return fmt.Errorf("channel %d list3: %w", c.number, err)
			}
		}
		if c.spec.List4 != nil {
			if err := list.New(c.store, c.list4Addr(i), c.spec.List4).Defaults(); err != nil {
				return fmt.Errorf("channel %d list4: %w", c.number, err)
			}
		}
	}
	return nil
}
