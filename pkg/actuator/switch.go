package actuator

import (
	"github.com/homewire/homewire-go/pkg/channel"
	"github.com/homewire/homewire-go/pkg/list"
	"github.com/homewire/homewire-go/pkg/wire"
)

// SwitchSpec returns the channel shape of a switch with peerCount peers.
func SwitchSpec(peerCount int) channel.Spec {
	return channel.Spec{
		List1:     list.SwitchList1Layout,
		List3:     list.SwitchList3Layout,
		PeerCount: peerCount,
	}
}

// SwitchChannel is a switch actuator channel.
type SwitchChannel struct {
	*channel.Channel

	sm        *StateMachine
	out       Output
	pins      PinMap
	lowActive bool
}

// NewSwitchChannel creates a switch channel. A nil pins maps channel n to pin n.
func NewSwitchChannel(peerCount int, out Output, pins PinMap) *SwitchChannel {
	if pins == nil {
		pins = ChannelPins
	}
	c := &SwitchChannel{
		Channel: channel.New(SwitchSpec(peerCount)),
		out:     out,
		pins:    pins,
	}
	c.sm = NewStateMachine(c)
	return c
}

// Setup binds the channel and drives its pin to the off level.
func (c *SwitchChannel) Setup(store list.Storage, number uint8, addr uint16) {
	c.Channel.Setup(store, number, addr)
	c.drive(StateOff)
}

// SwitchState drives the pin for the new state and marks the channel changed.
func (c *SwitchChannel) SwitchState(_, next State) {
	c.drive(next)
	c.SetChanged(true)
}

func (c *SwitchChannel) drive(s State) {
	if c.out == nil {
		return
	}
	c.out.Set(c.pins(c.Number()), (s == StateOn) != c.lowActive)
}

// State returns the logical state.
func (c *SwitchChannel) State() State {
	return c.sm.State()
}

// Delay returns the delay of the last SET command.
func (c *SwitchChannel) Delay() uint16 {
	return c.sm.Delay()
}

// LowActive reports whether the output polarity is inverted.
func (c *SwitchChannel) LowActive() bool {
	return c.lowActive
}

// SetLowActive sets the output polarity and re-drives the pin. It is a
// local reconfiguration: the changed flag is cleared afterwards.
func (c *SwitchChannel) SetLowActive(v bool) {
	c.lowActive = v
	c.sm.Reapply()
	c.SetChanged(false)
}

// ProcessSet applies an ACTION/SET command. It always succeeds.
func (c *SwitchChannel) ProcessSet(set wire.ActionSet) bool {
	c.sm.SetStatus(set.Value, set.Delay)
	return true
}

// ProcessRemote applies a remote event. It returns false when the sending
// peer is not registered on this channel.
func (c *SwitchChannel) ProcessRemote(ev wire.RemoteEvent) bool {
	l3 := list.NewSwitchList3(c.List3(ev.Peer))
	if !l3.Valid() {
		return false
	}
	pl := l3.Short()
	if ev.Long {
		pl = l3.Long()
	}
	c.sm.Remote(pl, ev.Counter)
	return true
}

// InitPeerList writes a preset into the List3 of a registered peer.
func (c *SwitchChannel) InitPeerList(p wire.Peer, preset list.Preset) error {
	l3 := list.NewSwitchList3(c.List3(p))
	if !l3.Valid() {
		return channel.ErrPeerNotFound
	}
	return l3.Apply(preset)
}

// Status returns the channel status as reported on the wire.
func (c *SwitchChannel) Status() wire.ActuatorStatus {
	st := wire.ActuatorStatus{Channel: c.Number(), Level: wire.LevelOff}
	if c.sm.State() == StateOn {
		st.Level = wire.LevelOn
	}
	return st
}
