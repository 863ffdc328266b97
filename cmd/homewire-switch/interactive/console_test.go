package interactive

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homewire/homewire-go/pkg/actuator"
	"github.com/homewire/homewire-go/pkg/device"
	"github.com/homewire/homewire-go/pkg/list"
	"github.com/homewire/homewire-go/pkg/transport"
	"github.com/homewire/homewire-go/pkg/wire"
)

var (
	self   = wire.NodeID{0xAB, 0xCD, 0xEF}
	remote = wire.NodeID{0x11, 0x22, 0x33}
)

// inlineNode runs commands on the calling goroutine.
type inlineNode struct {
	dev     *Device
	stopped bool
}

func (n *inlineNode) Device() *Device { return n.dev }

func (n *inlineNode) Do(fn func()) error {
	if n.stopped {
		return errors.New("device loop stopped")
	}
	fn()
	return nil
}

func newTestConsole(t *testing.T) (*Console, *inlineNode, *transport.Loopback, *bytes.Buffer) {
	t.Helper()
	out := actuator.NewMemoryOutput()
	factory := func() *actuator.SwitchChannel {
		return actuator.NewSwitchChannel(4, out, nil)
	}
	store := list.NewMemory(device.StorageSize(0, 2, factory))
	dev, err := device.New(device.Config{
		Channels: 2,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, store, factory)
	require.NoError(t, err)
	require.NoError(t, dev.FirstInit())

	sn, err := wire.ParseSerial("HWS0000042")
	require.NoError(t, err)
	lb := transport.NewLoopback()
	t.Cleanup(func() { lb.Close() })
	dev.Init(lb, self, sn)

	node := &inlineNode{dev: dev}
	var buf bytes.Buffer
	return NewWithWriter(node, &buf), node, lb, &buf
}

func channelState(t *testing.T, n *inlineNode, number uint8) actuator.State {
	t.Helper()
	ch, ok := n.dev.Channel(number)
	require.True(t, ok)
	return ch.State()
}

func TestConsoleStatus(t *testing.T) {
	c, _, _, buf := newTestConsole(t)

	assert.True(t, c.Execute("status"))
	assert.Contains(t, buf.String(), "ABCDEF")
	assert.Contains(t, buf.String(), "HWS0000042")
	assert.Contains(t, buf.String(), "Master:  000000")
	assert.Contains(t, buf.String(), "peers 0/4")
}

func TestConsoleSet(t *testing.T) {
	c, node, _, buf := newTestConsole(t)

	assert.True(t, c.Execute("set 2 on"))
	assert.Equal(t, actuator.StateOn, channelState(t, node, 2))
	assert.Contains(t, buf.String(), "Channel 2 is ON")

	c.Execute("SET 2 off")
	assert.Equal(t, actuator.StateOff, channelState(t, node, 2))

	buf.Reset()
	c.Execute("set 9 on")
	assert.Contains(t, buf.String(), "No channel 9")

	buf.Reset()
	c.Execute("set 1 maybe")
	assert.Contains(t, buf.String(), "Invalid state: maybe")

	buf.Reset()
	c.Execute("set x on")
	assert.Contains(t, buf.String(), "Invalid channel: x")

	buf.Reset()
	c.Execute("set")
	assert.Contains(t, buf.String(), "Usage: set <ch> on|off")
}

func TestConsoleLowActive(t *testing.T) {
	c, node, _, buf := newTestConsole(t)

	c.Execute("lowactive 1 on")
	ch, _ := node.dev.Channel(1)
	assert.True(t, ch.LowActive())
	assert.Contains(t, buf.String(), "Channel 1 low-active: true")

	buf.Reset()
	c.Execute("status")
	assert.Contains(t, buf.String(), "low-active")
}

func TestConsolePeers(t *testing.T) {
	c, node, _, buf := newTestConsole(t)

	c.Execute("peers 1")
	assert.Contains(t, buf.String(), "Channel 1 has no peers")

	node.dev.Process(wire.NewPeerAdd(1, remote, self, 1, remote, 3, 0))
	buf.Reset()
	c.Execute("peers 1")
	assert.Contains(t, buf.String(), "112233:03")
}

func TestConsoleList(t *testing.T) {
	c, _, _, buf := newTestConsole(t)

	c.Execute("list 1 1")
	assert.Contains(t, buf.String(), "0x")

	buf.Reset()
	c.Execute("list 1 x")
	assert.Contains(t, buf.String(), "Invalid list number: x")

	buf.Reset()
	c.Execute("list 1 3 nope")
	assert.Contains(t, buf.String(), "Invalid peer")

	buf.Reset()
	c.Execute("list 1 3 112233:01")
	assert.Contains(t, buf.String(), "Error:")
}

func TestConsoleEvent(t *testing.T) {
	c, node, _, buf := newTestConsole(t)
	node.dev.Process(wire.NewPeerAdd(1, remote, self, 2, remote, 1, 0))

	c.Execute("event 112233:01 short 1")
	assert.Equal(t, actuator.StateOn, channelState(t, node, 2))

	c.Execute("event 112233:01 long 2")
	assert.Equal(t, actuator.StateOff, channelState(t, node, 2))

	c.Execute("event 112233:01 double 3")
	assert.Contains(t, buf.String(), "Invalid press: double")

	buf.Reset()
	c.Execute("event 112233:01")
	assert.Contains(t, buf.String(), "Usage: event")
}

func TestConsolePairAndReset(t *testing.T) {
	c, node, lb, buf := newTestConsole(t)
	lb.TakeSent()

	c.Execute("pair")
	sent := lb.TakeSent()
	require.Len(t, sent, 1)
	assert.Equal(t, wire.TypeDeviceInfo, sent[0].Type)
	assert.Contains(t, buf.String(), "Pairing announcement sent")

	c.Execute("set 1 on")
	buf.Reset()
	c.Execute("reset")
	assert.Contains(t, buf.String(), "Factory defaults restored")
	assert.Equal(t, wire.Broadcast, node.dev.MasterID())
}

func TestConsoleSession(t *testing.T) {
	c, node, _, buf := newTestConsole(t)

	c.Execute("session")
	assert.Contains(t, buf.String(), "No configuration session")

	node.dev.Process(wire.NewConfigStart(1, remote, self, 1, wire.Peer{}, 1))
	buf.Reset()
	c.Execute("session")
	assert.Contains(t, buf.String(), "Session open on channel 1")
}

func TestConsoleGeneral(t *testing.T) {
	c, node, _, buf := newTestConsole(t)

	assert.True(t, c.Execute(""))
	assert.True(t, c.Execute("help"))
	assert.Contains(t, buf.String(), "Switch Commands:")

	buf.Reset()
	assert.True(t, c.Execute("bogus"))
	assert.Contains(t, buf.String(), "Unknown command: bogus")

	node.stopped = true
	buf.Reset()
	c.Execute("status")
	assert.Contains(t, buf.String(), "Error: device loop stopped")

	assert.False(t, c.Execute("quit"))
}
