package device

import (
	"fmt"

	"github.com/homewire/homewire-go/pkg/list"
	"github.com/homewire/homewire-go/pkg/log"
	"github.com/homewire/homewire-go/pkg/wire"
)

// openSession replaces any open session. An unresolvable list leaves no
// session open.
func (d *MultiChannelDevice[C]) openSession(channel uint8, peer wire.Peer, listNo uint8) {
	gl := d.FindList(channel, peer, listNo)
	if !gl.Valid() {
		d.closeSession(fmt.Sprintf("CONFIG_START channel %d: %v", channel, ErrInvalidList))
		return
	}
	old := "closed"
	if d.session.open {
		old = d.session.list.String()
	}
	d.session = session{
		open:     true,
		channel:  channel,
		peer:     peer,
		listNo:   listNo,
		list:     gl,
		openedAt: d.clock(),
	}
	d.logState(log.StateEntitySession, channel, old, gl.String(), "CONFIG_START")
}

func (d *MultiChannelDevice[C]) closeSession(reason string) {
	if !d.session.open {
		return
	}
	old := d.session.list.String()
	ch := d.session.channel
	d.session = session{}
	d.logState(log.StateEntitySession, ch, old, "closed", reason)
}

// sessionList returns the list an indexed write for channel may modify.
func (d *MultiChannelDevice[C]) sessionList(channel uint8) (list.GenericList, error) {
	if !d.session.open {
		return list.Invalid(), fmt.Errorf("%w: no open session", ErrInvalidList)
	}
	if d.session.channel != channel {
		return list.Invalid(), fmt.Errorf("%w: session channel %d, write channel %d",
			ErrInvalidChannel, d.session.channel, channel)
	}
	if d.cfg.SessionTimeout > 0 && d.clock().Sub(d.session.openedAt) > d.cfg.SessionTimeout {
		d.closeSession("timeout")
		return list.Invalid(), fmt.Errorf("%w: session expired", ErrInvalidList)
	}
	// The peer may have been removed, or its slot handed to another peer,
	// since CONFIG_START.
	gl := d.FindList(channel, d.session.peer, d.session.listNo)
	if !gl.Equal(d.session.list) {
		d.closeSession("session list no longer resolves")
		return list.Invalid(), fmt.Errorf("%w: session list is gone", ErrInvalidList)
	}
	return gl, nil
}
