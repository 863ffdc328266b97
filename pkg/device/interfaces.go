package device

import (
	"fmt"
	"time"

	"github.com/homewire/homewire-go/pkg/list"
	"github.com/homewire/homewire-go/pkg/wire"
)

// ChannelType is the capability set the device needs from its channels.
type ChannelType interface {
	Number() uint8
	Setup(store list.Storage, number uint8, addr uint16)
	Size() int
	FirstInit() error

	Changed() bool
	SetChanged(v bool)

	PeerCount() int
	Peers() []wire.Peer
	FindPeer(p wire.Peer) (int, bool)
	AddPeer(p wire.Peer) (int, error)
	DeletePeer(p wire.Peer) error
	InitPeerList(p wire.Peer, preset list.Preset) error

	List1() list.GenericList
	List3(p wire.Peer) list.GenericList
	List4(p wire.Peer) list.GenericList
	HasList3() bool
	HasList4() bool

	ProcessSet(set wire.ActionSet) bool
	ProcessRemote(ev wire.RemoteEvent) bool
	Status() wire.ActuatorStatus
}

// Radio sends frames and services the receive path.
type Radio interface {
	// Send transmits a message. Retries are the radio's concern.
	Send(msg *wire.Message) error

	// Poll services the radio and reports whether it did any work.
	Poll() bool
}

// IndicatorMode is a status LED pattern.
type IndicatorMode uint8

const (
	IndicatorNothing IndicatorMode = iota
	IndicatorWelcome
	IndicatorPairing
)

// String returns the mode name.
func (m IndicatorMode) String() string {
	switch m {
	case IndicatorNothing:
		return "nothing"
	case IndicatorWelcome:
		return "welcome"
	case IndicatorPairing:
		return "pairing"
	default:
		return fmt.Sprintf("indicator(%d)", m)
	}
}

// Indicator shows the device status to the user.
type Indicator interface {
	Set(mode IndicatorMode)
}

// Activity keeps a power-managed device awake.
type Activity interface {
	StayAwake(d time.Duration)
}

// NoopIndicator ignores indicator changes.
type NoopIndicator struct{}

// Set does nothing.
func (NoopIndicator) Set(IndicatorMode) {}

// NoopActivity ignores wake requests.
type NoopActivity struct{}

// StayAwake does nothing.
func (NoopActivity) StayAwake(time.Duration) {}

var (
	_ Indicator = NoopIndicator{}
	_ Activity  = NoopActivity{}
)
