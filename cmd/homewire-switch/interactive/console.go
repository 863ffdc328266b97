// Package interactive provides the interactive console of homewire-switch.
package interactive

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/homewire/homewire-go/pkg/actuator"
	"github.com/homewire/homewire-go/pkg/device"
	"github.com/homewire/homewire-go/pkg/list"
	"github.com/homewire/homewire-go/pkg/wire"
)

// Device is the device type the console drives.
type Device = device.MultiChannelDevice[*actuator.SwitchChannel]

// Node gives the console access to a running device.
type Node interface {
	// Device returns the device. It may only be used inside Do.
	Device() *Device

	// Do runs fn on the device goroutine and waits for it.
	Do(fn func()) error
}

// Console reads commands and applies them to the device.
type Console struct {
	node    Node
	out     io.Writer
	rl      *readline.Instance
	counter uint8
}

// New creates a console reading from the terminal. Attach a node before
// calling Run.
func New() (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "switch> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &Console{out: rl.Stdout(), rl: rl}, nil
}

// Attach sets the node the commands apply to.
func (c *Console) Attach(node Node) {
	c.node = node
}

// NewWithWriter creates a console without a terminal that writes to w.
// Feed it lines with Execute.
func NewWithWriter(node Node, w io.Writer) *Console {
	return &Console{node: node, out: w}
}

// Stdout returns a writer that does not garble the prompt.
func (c *Console) Stdout() io.Writer {
	return c.out
}

// Run reads lines until quit, EOF or ctx is done.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc) {
	defer c.rl.Close()
	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(c.out, "Exiting...")
			cancel()
			return
		}
		if !c.Execute(line) {
			cancel()
			return
		}
	}
}

// Execute runs one command line. It returns false when the user quits.
func (c *Console) Execute(line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return true
	}
	cmd, args := strings.ToLower(parts[0]), parts[1:]

	switch cmd {
	case "help", "?":
		c.printHelp()
	case "status", "s":
		c.cmdStatus()
	case "set":
		c.cmdSet(args)
	case "lowactive":
		c.cmdLowActive(args)
	case "peers":
		c.cmdPeers(args)
	case "list", "l":
		c.cmdList(args)
	case "pair":
		c.do(func(d *Device) { d.StartPairing() })
		fmt.Fprintln(c.out, "Pairing announcement sent")
	case "reset":
		c.cmdReset()
	case "event":
		c.cmdEvent(args)
	case "session":
		c.cmdSession()
	case "quit", "exit", "q":
		fmt.Fprintln(c.out, "Exiting...")
		return false
	default:
		fmt.Fprintf(c.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return true
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.out, `
Switch Commands:
  Channels:
    status                       - Show identity and channel states
    set <ch> on|off              - Switch a channel locally
    lowactive <ch> on|off        - Invert the output polarity of a channel
    peers <ch>                   - List the peers of a channel
    list <ch> <n> [id:ch]        - Dump list n of a channel (peer needed for list 3)

  Device:
    pair                         - Announce the device for pairing
    reset                        - Restore factory defaults
    event <id:ch> short|long <n> - Simulate a remote button press
    session                      - Show the configuration session

  General:
    help                         - Show this help
    quit                         - Exit`)
}

// do runs fn on the device goroutine.
func (c *Console) do(fn func(d *Device)) bool {
	d := c.node.Device()
	if err := c.node.Do(func() { fn(d) }); err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return false
	}
	return true
}

func (c *Console) channelArg(args []string, usage string) (uint8, bool) {
	if len(args) < 1 {
		fmt.Fprintf(c.out, "Usage: %s\n", usage)
		return 0, false
	}
	n, err := strconv.ParseUint(args[0], 10, 8)
	if err != nil {
		fmt.Fprintf(c.out, "Invalid channel: %s\n", args[0])
		return 0, false
	}
	return uint8(n), true
}

func onOff(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "on", "1", "true":
		return true, true
	case "off", "0", "false":
		return false, true
	default:
		return false, false
	}
}

func (c *Console) cmdStatus() {
	c.do(func(d *Device) {
		fmt.Fprintf(c.out, "Device:  %s  serial %s\n", d.ID(), d.Serial())
		fmt.Fprintf(c.out, "Master:  %s\n", d.MasterID())
		fmt.Fprintln(c.out, "Channels:")
		for n := uint8(1); int(n) <= d.Channels(); n++ {
			ch, _ := d.Channel(n)
			polarity := ""
			if ch.LowActive() {
				polarity = "  low-active"
			}
			fmt.Fprintf(c.out, "  %2d  %-3s  peers %d/%d%s\n",
				n, ch.State(), len(ch.Peers()), ch.PeerCount(), polarity)
		}
	})
}

func (c *Console) cmdSet(args []string) {
	n, ok := c.channelArg(args, "set <ch> on|off")
	if !ok {
		return
	}
	if len(args) < 2 {
		fmt.Fprintln(c.out, "Usage: set <ch> on|off")
		return
	}
	on, ok := onOff(args[1])
	if !ok {
		fmt.Fprintf(c.out, "Invalid state: %s\n", args[1])
		return
	}
	value := wire.LevelOff
	if on {
		value = wire.LevelOn
	}

	c.do(func(d *Device) {
		ch, ok := d.Channel(n)
		if !ok {
			fmt.Fprintf(c.out, "No channel %d\n", n)
			return
		}
		ch.ProcessSet(wire.ActionSet{Channel: n, Value: value})
		fmt.Fprintf(c.out, "Channel %d is %s\n", n, ch.State())
	})
}

func (c *Console) cmdLowActive(args []string) {
	n, ok := c.channelArg(args, "lowactive <ch> on|off")
	if !ok {
		return
	}
	if len(args) < 2 {
		fmt.Fprintln(c.out, "Usage: lowactive <ch> on|off")
		return
	}
	v, ok := onOff(args[1])
	if !ok {
		fmt.Fprintf(c.out, "Invalid value: %s\n", args[1])
		return
	}

	c.do(func(d *Device) {
		ch, ok := d.Channel(n)
		if !ok {
			fmt.Fprintf(c.out, "No channel %d\n", n)
			return
		}
		ch.SetLowActive(v)
		fmt.Fprintf(c.out, "Channel %d low-active: %v\n", n, v)
	})
}

func (c *Console) cmdPeers(args []string) {
	n, ok := c.channelArg(args, "peers <ch>")
	if !ok {
		return
	}
	c.do(func(d *Device) {
		ch, ok := d.Channel(n)
		if !ok {
			fmt.Fprintf(c.out, "No channel %d\n", n)
			return
		}
		peers := ch.Peers()
		if len(peers) == 0 {
			fmt.Fprintf(c.out, "Channel %d has no peers\n", n)
			return
		}
		for _, p := range peers {
			fmt.Fprintf(c.out, "  %s\n", p)
		}
	})
}

func (c *Console) cmdList(args []string) {
	const usage = "list <ch> <n> [id:ch]"
	n, ok := c.channelArg(args, usage)
	if !ok {
		return
	}
	if len(args) < 2 {
		fmt.Fprintf(c.out, "Usage: %s\n", usage)
		return
	}
	listNo, err := strconv.ParseUint(args[1], 10, 8)
	if err != nil {
		fmt.Fprintf(c.out, "Invalid list number: %s\n", args[1])
		return
	}
	var peer wire.Peer
	if len(args) > 2 {
		if peer, err = wire.ParsePeer(args[2]); err != nil {
			fmt.Fprintf(c.out, "Invalid peer: %v\n", err)
			return
		}
	}

	c.do(func(d *Device) {
		gl := d.FindList(n, peer, uint8(listNo))
		pairs, err := gl.Pairs()
		if err != nil {
			fmt.Fprintf(c.out, "Error: %v\n", err)
			return
		}
		fmt.Fprintln(c.out, gl)
		printPairs(c.out, pairs)
	})
}

func printPairs(w io.Writer, pairs []list.RegisterValue) {
	for _, p := range pairs {
		fmt.Fprintf(w, "  0x%02X = 0x%02X\n", p.Register, p.Value)
	}
}

func (c *Console) cmdReset() {
	c.do(func(d *Device) {
		if err := d.Reset(); err != nil {
			fmt.Fprintf(c.out, "Reset failed: %v\n", err)
			return
		}
		fmt.Fprintln(c.out, "Factory defaults restored")
	})
}

func (c *Console) cmdEvent(args []string) {
	if len(args) < 3 {
		fmt.Fprintln(c.out, "Usage: event <id:ch> short|long <counter>")
		return
	}
	peer, err := wire.ParsePeer(args[0])
	if err != nil {
		fmt.Fprintf(c.out, "Invalid peer: %v\n", err)
		return
	}
	var long bool
	switch strings.ToLower(args[1]) {
	case "short":
	case "long":
		long = true
	default:
		fmt.Fprintf(c.out, "Invalid press: %s\n", args[1])
		return
	}
	counter, err := strconv.ParseUint(args[2], 10, 8)
	if err != nil {
		fmt.Fprintf(c.out, "Invalid counter: %s\n", args[2])
		return
	}

	c.counter++
	cnt := c.counter
	c.do(func(d *Device) {
		d.Process(wire.NewRemoteEvent(cnt, peer.ID, d.ID(), peer.Channel, long, uint8(counter)))
	})
}

func (c *Console) cmdSession() {
	c.do(func(d *Device) {
		s := d.Session()
		if !s.Open {
			fmt.Fprintln(c.out, "No configuration session")
			return
		}
		fmt.Fprintf(c.out, "Session open on channel %d, list %s since %s\n",
			s.Channel, s.List, s.OpenedAt.Format("15:04:05"))
	})
}
