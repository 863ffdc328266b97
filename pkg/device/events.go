package device

import (
	"github.com/homewire/homewire-go/pkg/log"
	"github.com/homewire/homewire-go/pkg/wire"
)

// send transmits msg and logs it. Send failures are logged and dropped.
func (d *MultiChannelDevice[C]) send(msg *wire.Message) {
	d.logMessage(log.DirectionOut, msg)
	if d.radio == nil {
		d.logger.Warn("dropping message", "error", ErrNoRadio, "msg", msg.String())
		return
	}
	if err := d.radio.Send(msg); err != nil {
		d.logger.Warn("radio send failed", "error", err, "msg", msg.String())
		d.logError(msg, err)
	}
}

// reject records an input the device refused or could not act on.
func (d *MultiChannelDevice[C]) reject(msg *wire.Message, err error) {
	d.logger.Debug("message rejected", "error", err, "msg", msg.String())
	d.logError(msg, err)
}

func (d *MultiChannelDevice[C]) logMessage(dir log.Direction, msg *wire.Message) {
	if d.plog == nil {
		return
	}
	peer := msg.From
	if dir == log.DirectionOut {
		peer = msg.To
	}
	d.plog.Log(log.Event{
		Timestamp: d.clock(),
		SessionID: d.cfg.SessionID,
		Direction: dir,
		Layer:     log.LayerWire,
		Category:  log.CategoryMessage,
		DeviceID:  d.id.String(),
		PeerID:    peer.String(),
		Message:   log.NewMessageEvent(msg),
	})
}

func (d *MultiChannelDevice[C]) logError(msg *wire.Message, err error) {
	if d.plog == nil {
		return
	}
	d.plog.Log(log.Event{
		Timestamp: d.clock(),
		SessionID: d.cfg.SessionID,
		Direction: log.DirectionIn,
		Layer:     log.LayerDevice,
		Category:  log.CategoryError,
		DeviceID:  d.id.String(),
		PeerID:    msg.From.String(),
		Error: &log.ErrorEventData{
			Layer:   log.LayerDevice,
			Message: err.Error(),
			Context: msg.String(),
		},
	})
}

func (d *MultiChannelDevice[C]) logState(entity log.StateEntity, channel uint8, old, next, reason string) {
	d.logger.Debug("state change",
		"entity", entity.String(),
		"channel", channel,
		"old", old,
		"new", next,
		"reason", reason)
	if d.plog == nil {
		return
	}
	d.plog.Log(log.Event{
		Timestamp: d.clock(),
		SessionID: d.cfg.SessionID,
		Layer:     log.LayerDevice,
		Category:  log.CategoryState,
		DeviceID:  d.id.String(),
		StateChange: &log.StateChangeEvent{
			Entity:   entity,
			Channel:  channel,
			OldState: old,
			NewState: next,
			Reason:   reason,
		},
	})
}

func (d *MultiChannelDevice[C]) logChannelChange(before, after wire.ActuatorStatus, reason string) {
	if before.Level == after.Level {
		return
	}
	d.logState(log.StateEntityChannel, after.Channel, levelName(before), levelName(after), reason)
}

func levelName(st wire.ActuatorStatus) string {
	if st.On() {
		return "ON"
	}
	return "OFF"
}
