package device

import (
	"errors"
	"fmt"

	"github.com/homewire/homewire-go/pkg/list"
	"github.com/homewire/homewire-go/pkg/log"
	"github.com/homewire/homewire-go/pkg/wire"
)

// Process handles one inbound message. Messages addressed to another node,
// or broadcasts of a kind that is not broadcast-eligible, are dropped
// without a reply.
func (d *MultiChannelDevice[C]) Process(msg *wire.Message) {
	if !d.addressed(msg) {
		return
	}
	d.logMessage(log.DirectionIn, msg)

	switch msg.Type {
	case wire.TypeConfig:
		d.processConfig(msg)
	case wire.TypeAction:
		d.processAction(msg)
	case wire.TypeRemoteEvent:
		d.processRemoteEvent(msg)
	default:
		d.ackIfRequested(msg)
	}
}

func (d *MultiChannelDevice[C]) addressed(msg *wire.Message) bool {
	if msg.To == d.id {
		return true
	}
	if msg.To == wire.Broadcast && msg.IsBroadcastEligible() {
		return true
	}
	d.logger.Debug("dropping message", "error", ErrAddressMismatch, "to", msg.To.String(), "type", msg.Type.String())
	return false
}

func (d *MultiChannelDevice[C]) processConfig(msg *wire.Message) {
	switch wire.ConfigSubcommand(msg.Subcommand()) {
	case wire.ConfigPairSerialCmd:
		d.handlePairSerial(msg)
	case wire.ConfigPeerAddCmd:
		d.handlePeerAdd(msg)
	case wire.ConfigPeerRemoveCmd:
		d.handlePeerRemove(msg)
	case wire.ConfigPeerListReqCmd:
		d.handlePeerListReq(msg)
	case wire.ConfigParamReqCmd:
		d.handleParamReq(msg)
	case wire.ConfigStatusReqCmd:
		d.handleStatusRequest(msg)
	case wire.ConfigStartCmd:
		d.handleConfigStart(msg)
	case wire.ConfigEndCmd:
		d.handleConfigEnd(msg)
	case wire.ConfigWriteIndexCmd:
		d.handleWriteIndex(msg)
	default:
		d.reject(msg, ErrUnrecognizedSubcommand)
		d.ackIfRequested(msg)
	}
}

func (d *MultiChannelDevice[C]) handlePairSerial(msg *wire.Message) {
	serial, err := msg.PairSerial()
	if err != nil {
		d.reject(msg, err)
		return
	}
	if serial != d.serial {
		return
	}
	d.indicator.Set(IndicatorPairing)
	if err := d.list0.SetMasterID(msg.From); err != nil {
		d.logger.Error("failed to persist master id", "error", err)
	}
	old := d.master
	d.master = d.list0.MasterID()
	d.logState(log.StateEntityPairing, 0, old.String(), d.master.String(), "PAIR_SERIAL")
	d.send(wire.NewDeviceInfo(msg.Counter, d.id, d.master, d.deviceInfo()))
}

func (d *MultiChannelDevice[C]) handlePeerAdd(msg *wire.Message) {
	v, err := msg.ConfigPeers()
	if err != nil {
		d.reject(msg, err)
		d.send(wire.NewNack(msg, d.id))
		return
	}
	ch, ok := d.Channel(v.Channel())
	if !ok {
		d.reject(msg, fmt.Errorf("%w: %d", ErrInvalidChannel, v.Channel()))
		d.send(wire.NewNack(msg, d.id))
		return
	}
	if v.Peers() == 1 {
		err = d.addPeers(ch, v.Peer1())
	} else {
		err = d.addPeers(ch, v.Peer1(), v.Peer2())
	}
	if err != nil {
		d.reject(msg, err)
		d.send(wire.NewNack(msg, d.id))
		return
	}
	d.send(wire.NewAck(msg, d.id))
}

// handlePeerRemove removes one or two peers. Every requested removal is
// attempted; removals that succeeded stay applied even when the reply is
// a nack.
func (d *MultiChannelDevice[C]) handlePeerRemove(msg *wire.Message) {
	v, err := msg.ConfigPeers()
	if err != nil {
		d.reject(msg, err)
		d.send(wire.NewNack(msg, d.id))
		return
	}
	ch, ok := d.Channel(v.Channel())
	if !ok {
		d.reject(msg, fmt.Errorf("%w: %d", ErrInvalidChannel, v.Channel()))
		d.send(wire.NewNack(msg, d.id))
		return
	}
	peers := []wire.Peer{v.Peer1()}
	if v.Peers() == 2 {
		peers = append(peers, v.Peer2())
	}
	var errs []error
	for _, p := range peers {
		if err := ch.DeletePeer(p); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p, err))
		}
	}
	if len(errs) > 0 {
		d.reject(msg, errors.Join(errs...))
		d.send(wire.NewNack(msg, d.id))
		return
	}
	d.send(wire.NewAck(msg, d.id))
}

func (d *MultiChannelDevice[C]) handlePeerListReq(msg *wire.Message) {
	ch, ok := d.Channel(msg.Command())
	if !ok {
		d.reject(msg, fmt.Errorf("%w: %d", ErrInvalidChannel, msg.Command()))
		return
	}
	peers := ch.Peers()
	for {
		n := min(len(peers), wire.PeersPerFrame)
		last := n == len(peers)
		d.send(wire.NewInfoPeerList(msg.Counter, d.id, msg.From, peers[:n], last))
		if last {
			return
		}
		peers = peers[n:]
	}
}

func (d *MultiChannelDevice[C]) handleParamReq(msg *wire.Message) {
	v, err := msg.ConfigListSelect()
	if err != nil {
		d.reject(msg, err)
		return
	}
	gl := d.FindList(v.Channel, v.Peer, v.List)
	if !gl.Valid() {
		d.reject(msg, fmt.Errorf("%w: channel %d list %d peer %s", ErrInvalidList, v.Channel, v.List, v.Peer))
		return
	}
	pairs, err := gl.PairBytes()
	if err != nil {
		d.logger.Error("failed to read list", "list", gl.String(), "error", err)
		return
	}
	const chunk = 2 * wire.PairsPerFrame
	for {
		n := min(len(pairs), chunk)
		last := n == len(pairs)
		d.send(wire.NewInfoParamResponsePairs(msg.Counter, d.id, msg.From, pairs[:n], last))
		if last {
			return
		}
		pairs = pairs[n:]
	}
}

func (d *MultiChannelDevice[C]) handleStatusRequest(msg *wire.Message) {
	ch, ok := d.Channel(msg.Command())
	if !ok {
		d.reject(msg, fmt.Errorf("%w: %d", ErrInvalidChannel, msg.Command()))
		d.send(wire.NewNack(msg, d.id))
		return
	}
	d.send(wire.NewInfoActuatorStatus(msg.Counter, d.id, msg.From, ch.Status()))
}

func (d *MultiChannelDevice[C]) handleConfigStart(msg *wire.Message) {
	v, err := msg.ConfigListSelect()
	if err != nil {
		d.reject(msg, err)
		d.closeSession("malformed CONFIG_START")
	} else {
		d.openSession(v.Channel, v.Peer, v.List)
	}
	d.send(wire.NewAck(msg, d.id))
}

func (d *MultiChannelDevice[C]) handleConfigEnd(msg *wire.Message) {
	if d.session.open && d.session.list.Equal(d.list0.GenericList) {
		old := d.master
		d.master = d.list0.MasterID()
		d.indicator.Set(IndicatorNothing)
		if old != d.master {
			d.logState(log.StateEntityPairing, 0, old.String(), d.master.String(), "CONFIG_END")
		}
	}
	d.closeSession("CONFIG_END")
	d.send(wire.NewAck(msg, d.id))
}

func (d *MultiChannelDevice[C]) handleWriteIndex(msg *wire.Message) {
	defer d.send(wire.NewAck(msg, d.id))

	v, err := msg.ConfigWriteIndex()
	if err != nil {
		d.reject(msg, err)
		return
	}
	gl, err := d.sessionList(v.Channel)
	if err != nil {
		d.reject(msg, err)
		return
	}
	n, err := gl.WriteIndex(v.Data)
	if err != nil {
		d.logger.Error("list write failed", "list", gl.String(), "applied", n, "error", err)
		return
	}
	d.logger.Debug("list written", "list", gl.String(), "pairs", n)
}

func (d *MultiChannelDevice[C]) processAction(msg *wire.Message) {
	switch wire.ActionCommand(msg.Command()) {
	case wire.ActionSetCmd:
		v, err := msg.ActionSet()
		if err != nil {
			d.reject(msg, err)
			d.send(wire.NewNack(msg, d.id))
			return
		}
		ch, ok := d.Channel(v.Channel)
		if !ok {
			d.reject(msg, fmt.Errorf("%w: %d", ErrInvalidChannel, v.Channel))
			d.send(wire.NewNack(msg, d.id))
			return
		}
		before := ch.Status()
		ch.ProcessSet(v)
		d.logChannelChange(before, ch.Status(), "SET")
		d.send(wire.NewAckStatus(msg, d.id, ch.Status()))
	default:
		d.ackIfRequested(msg)
	}
}

func (d *MultiChannelDevice[C]) processRemoteEvent(msg *wire.Message) {
	ev, err := msg.RemoteEvent()
	if err != nil {
		d.reject(msg, err)
		d.send(wire.NewNack(msg, d.id))
		return
	}
	found := false
	for _, ch := range d.channels {
		before := ch.Status()
		if !ch.ProcessRemote(ev) {
			continue
		}
		found = true
		d.logChannelChange(before, ch.Status(), "REMOTE_EVENT "+ev.Peer.String())
		d.send(wire.NewAckStatus(msg, d.id, ch.Status()))
	}
	if !found {
		d.reject(msg, fmt.Errorf("%w: %s", ErrPeerNotFound, ev.Peer))
		d.send(wire.NewNack(msg, d.id))
	}
}

func (d *MultiChannelDevice[C]) ackIfRequested(msg *wire.Message) {
	if msg.AckRequired() {
		d.send(wire.NewAck(msg, d.id))
	}
}

// addPeers registers one peer, or a pair of peers. Peers are first removed
// so a re-registration starts from defaults. A single peer gets the single
// preset; a pair gets the odd and even presets.
func (d *MultiChannelDevice[C]) addPeers(ch C, peers ...wire.Peer) error {
	free := ch.PeerCount() - len(ch.Peers())
	for _, p := range peers {
		if _, ok := ch.FindPeer(p); ok {
			free++
		}
	}
	if free < len(peers) {
		return fmt.Errorf("%w: %d free, %d requested", ErrPeerTableFull, free, len(peers))
	}
	for _, p := range peers {
		if err := ch.DeletePeer(p); err != nil && !errors.Is(err, ErrPeerNotFound) {
			return err
		}
	}
	presets := []list.Preset{list.PresetSingle}
	if len(peers) == 2 {
		presets = []list.Preset{list.PresetOdd, list.PresetEven}
	}
	for i, p := range peers {
		if _, err := ch.AddPeer(p); err != nil {
			return err
		}
		if !ch.HasList3() {
			continue
		}
		if err := ch.InitPeerList(p, presets[i]); err != nil {
			return err
		}
	}
	return nil
}
