package device

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/homewire/homewire-go/pkg/list"
	"github.com/homewire/homewire-go/pkg/log"
	"github.com/homewire/homewire-go/pkg/wire"
)

// MaxChannels is the largest channel count a device can have.
const MaxChannels = 255

// PairingWindow is how long StartPairing keeps the device awake.
const PairingWindow = 20 * time.Second

// Config holds the device dependencies and settings.
type Config struct {
	// BaseAddress is the storage address of List0.
	BaseAddress uint16

	// Channels is the number of channels, 1..MaxChannels.
	Channels int

	// Info is announced while pairing. Its serial is filled in by Init.
	Info wire.DeviceInfo

	// Indicator shows pairing state. Defaults to NoopIndicator.
	Indicator Indicator

	// Activity keeps the device awake while pairing. Defaults to NoopActivity.
	Activity Activity

	// Logger receives operational logs. Defaults to slog.Default().
	Logger *slog.Logger

	// ProtocolLogger receives protocol events. Nil disables them.
	ProtocolLogger log.Logger

	// SessionID tags protocol events of this run.
	SessionID string

	// SessionTimeout closes configuration sessions older than this on the
	// next WRITE_INDEX. Zero keeps sessions open until CONFIG_END.
	SessionTimeout time.Duration

	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time
}

// session is the open configuration session.
type session struct {
	open     bool
	channel  uint8
	peer     wire.Peer
	listNo   uint8
	list     list.GenericList
	openedAt time.Time
}

// SessionInfo describes the configuration session.
type SessionInfo struct {
	Open     bool
	Channel  uint8
	List     list.GenericList
	OpenedAt time.Time
}

// MultiChannelDevice is a homewire node with a fixed set of channels.
type MultiChannelDevice[C ChannelType] struct {
	cfg      Config
	store    list.Storage
	list0    list.List0
	channels []C

	radio   Radio
	id      wire.NodeID
	serial  wire.Serial
	master  wire.NodeID
	counter uint8
	session session

	logger    *slog.Logger
	plog      log.Logger
	indicator Indicator
	activity  Activity
	clock     func() time.Time
}

// StorageSize returns the bytes a device with these parameters needs,
// including the base address offset.
func StorageSize[C ChannelType](base uint16, channels int, factory func() C) int {
	n := int(base) + list.List0Layout.Size()
	if channels > 0 {
		n += channels * factory().Size()
	}
	return n
}

// New creates a device and lays out List0 and the channels in store.
// Channel i+1 is created by the i-th factory call.
func New[C ChannelType](cfg Config, store list.Storage, factory func() C) (*MultiChannelDevice[C], error) {
	if cfg.Channels < 1 || cfg.Channels > MaxChannels {
		return nil, fmt.Errorf("%w: %d", ErrChannelCount, cfg.Channels)
	}
	if cfg.Indicator == nil {
		cfg.Indicator = NoopIndicator{}
	}
	if cfg.Activity == nil {
		cfg.Activity = NoopActivity{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	d := &MultiChannelDevice[C]{
		cfg:       cfg,
		store:     store,
		list0:     list.NewList0(store, cfg.BaseAddress),
		channels:  make([]C, cfg.Channels),
		logger:    cfg.Logger,
		plog:      cfg.ProtocolLogger,
		indicator: cfg.Indicator,
		activity:  cfg.Activity,
		clock:     cfg.Clock,
	}

	limit := store.Size()
	if limit > 0x10000 {
		limit = 0x10000
	}
	addr := int(cfg.BaseAddress) + list.List0Layout.Size()
	if addr > limit {
		return nil, fmt.Errorf("%w: list0 ends at %d, have %d", ErrStorageTooSmall, addr, limit)
	}
	for i := range d.channels {
		ch := factory()
		if addr+ch.Size() > limit {
			return nil, fmt.Errorf("%w: channel %d ends at %d, have %d", ErrStorageTooSmall, i+1, addr+ch.Size(), limit)
		}
		ch.Setup(store, uint8(i+1), uint16(addr))
		d.channels[i] = ch
		addr += ch.Size()
	}
	return d, nil
}

// SetProtocolLogger sets the protocol logger and the session id of its events.
func (d *MultiChannelDevice[C]) SetProtocolLogger(l log.Logger, sessionID string) {
	d.plog = l
	d.cfg.SessionID = sessionID
}

// Init binds the radio and identity. The master id is read from List0.
func (d *MultiChannelDevice[C]) Init(radio Radio, id wire.NodeID, serial wire.Serial) {
	d.radio = radio
	d.id = id
	d.serial = serial
	d.master = d.list0.MasterID()
	d.logger.Info("device initialised",
		"id", d.id.String(),
		"serial", d.serial.String(),
		"master", d.master.String(),
		"channels", len(d.channels))
}

// InitFromStorage binds the radio and reads the identity from storage:
// 3 id bytes at idAddr and 10 serial bytes at serialAddr.
func (d *MultiChannelDevice[C]) InitFromStorage(radio Radio, idAddr, serialAddr uint16) error {
	var id wire.NodeID
	if err := d.store.ReadAt(idAddr, id[:]); err != nil {
		return fmt.Errorf("failed to read device id: %w", err)
	}
	var serial wire.Serial
	if err := d.store.ReadAt(serialAddr, serial[:]); err != nil {
		return fmt.Errorf("failed to read serial: %w", err)
	}
	d.Init(radio, id, serial)
	return nil
}

// FirstInit writes factory defaults into List0 and every channel.
func (d *MultiChannelDevice[C]) FirstInit() error {
	if err := d.list0.Defaults(); err != nil {
		return fmt.Errorf("list0 defaults: %w", err)
	}
	for _, ch := range d.channels {
		if err := ch.FirstInit(); err != nil {
			return err
		}
	}
	return nil
}

// Reset restores factory defaults and re-reads the master id.
func (d *MultiChannelDevice[C]) Reset() error {
	if err := d.FirstInit(); err != nil {
		return err
	}
	old := d.master
	d.master = d.list0.MasterID()
	d.indicator.Set(IndicatorWelcome)
	d.logState(log.StateEntityPairing, 0, old.String(), d.master.String(), "reset")
	return nil
}

// StartPairing shows the pairing indication, keeps the device awake for
// PairingWindow and broadcasts the device info.
func (d *MultiChannelDevice[C]) StartPairing() {
	d.indicator.Set(IndicatorPairing)
	d.activity.StayAwake(PairingWindow)
	d.send(wire.NewDeviceInfo(d.nextCounter(), d.id, wire.Broadcast, d.deviceInfo()))
}

// Poll services the radio and reports every changed channel to the master,
// in ascending channel order. It reports whether any work was done.
func (d *MultiChannelDevice[C]) Poll() bool {
	worked := false
	if d.radio != nil && d.radio.Poll() {
		worked = true
	}
	for _, ch := range d.channels {
		if !ch.Changed() {
			continue
		}
		d.send(wire.NewInfoActuatorStatus(d.nextCounter(), d.id, d.master, ch.Status()))
		ch.SetChanged(false)
		worked = true
	}
	return worked
}

// ID returns the device id.
func (d *MultiChannelDevice[C]) ID() wire.NodeID {
	return d.id
}

// Serial returns the device serial.
func (d *MultiChannelDevice[C]) Serial() wire.Serial {
	return d.serial
}

// MasterID returns the current master id.
func (d *MultiChannelDevice[C]) MasterID() wire.NodeID {
	return d.master
}

// List0 returns the master list.
func (d *MultiChannelDevice[C]) List0() list.List0 {
	return d.list0
}

// Channels returns the channel count.
func (d *MultiChannelDevice[C]) Channels() int {
	return len(d.channels)
}

// HasChannel reports whether number is a valid channel number.
func (d *MultiChannelDevice[C]) HasChannel(number uint8) bool {
	return number != 0 && int(number) <= len(d.channels)
}

// Channel returns channel number. The second result is false for invalid numbers.
func (d *MultiChannelDevice[C]) Channel(number uint8) (C, bool) {
	if !d.HasChannel(number) {
		var zero C
		return zero, false
	}
	return d.channels[number-1], true
}

// Session returns the configuration session.
func (d *MultiChannelDevice[C]) Session() SessionInfo {
	return SessionInfo{
		Open:     d.session.open,
		Channel:  d.session.channel,
		List:     d.session.list,
		OpenedAt: d.session.openedAt,
	}
}

// FindList resolves a list by channel, peer and list number. List 0 is the
// master list regardless of channel and peer. Lists 1, 3 and 4 need a valid
// channel; lists 3 and 4 also need a channel type that has them and a peer
// known to the channel. Everything else is the invalid list.
func (d *MultiChannelDevice[C]) FindList(number uint8, peer wire.Peer, listNo uint8) list.GenericList {
	if listNo == 0 {
		return d.list0.GenericList
	}
	ch, ok := d.Channel(number)
	if !ok {
		return list.Invalid()
	}
	switch listNo {
	case 1:
		return ch.List1()
	case 3:
		if ch.HasList3() {
			return ch.List3(peer)
		}
	case 4:
		if ch.HasList4() {
			return ch.List4(peer)
		}
	}
	return list.Invalid()
}

func (d *MultiChannelDevice[C]) nextCounter() uint8 {
	d.counter++
	return d.counter
}

func (d *MultiChannelDevice[C]) deviceInfo() wire.DeviceInfo {
	info := d.cfg.Info
	info.Serial = d.serial
	return info
}
