package actuator

import (
	"fmt"

	"github.com/homewire/homewire-go/pkg/list"
)

// State is the logical switch state.
type State uint8

const (
	StateOff State = iota
	StateOn
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateOff:
		return "OFF"
	case StateOn:
		return "ON"
	default:
		return fmt.Sprintf("STATE(%d)", s)
	}
}

// Switcher receives state transitions.
type Switcher interface {
	SwitchState(old, next State)
}

// SwitcherFunc adapts a function to Switcher.
type SwitcherFunc func(old, next State)

// SwitchState calls f.
func (f SwitcherFunc) SwitchState(old, next State) {
	f(old, next)
}

// StateMachine is the on/off state of a switch channel.
type StateMachine struct {
	state State
	delay uint16
	sw    Switcher
}

// NewStateMachine creates a state machine in StateOff.
func NewStateMachine(sw Switcher) *StateMachine {
	return &StateMachine{sw: sw}
}

// State returns the current state.
func (m *StateMachine) State() State {
	return m.state
}

// Delay returns the delay of the last SET command.
func (m *StateMachine) Delay() uint16 {
	return m.delay
}

// SetStatus applies a direct command: a non-zero value switches on.
func (m *StateMachine) SetStatus(value uint8, delay uint16) {
	m.delay = delay
	if value != 0 {
		m.setState(StateOn)
	} else {
		m.setState(StateOff)
	}
}

// Remote applies the action configured in a peer list block.
func (m *StateMachine) Remote(pl list.SwitchPeerList, counter uint8) {
	switch pl.ActionType() {
	case list.ActionInactive:
	case list.ActionJumpToTarget:
		jt := pl.JtOff()
		if m.state == StateOn {
			jt = pl.JtOn()
		}
		if next, ok := settle(jt); ok {
			m.setState(next)
		}
	case list.ActionToggleToCounter:
		if counter&0x01 == 0x01 {
			m.setState(StateOn)
		} else {
			m.setState(StateOff)
		}
	case list.ActionToggleInverseToCounter:
		if counter&0x01 == 0x01 {
			m.setState(StateOff)
		} else {
			m.setState(StateOn)
		}
	default:
	}
}

// Reapply notifies the switcher of the current state without a transition.
func (m *StateMachine) Reapply() {
	if m.sw != nil {
		m.sw.SwitchState(m.state, m.state)
	}
}

func (m *StateMachine) setState(next State) {
	if next == m.state {
		return
	}
	old := m.state
	m.state = next
	if m.sw != nil {
		m.sw.SwitchState(old, next)
	}
}

// settle maps a jump target onto the state it ends in.
func settle(jt list.JumpTarget) (State, bool) {
	switch jt {
	case list.JumpOnDelay, list.JumpRefOn, list.JumpOn:
		return StateOn, true
	case list.JumpOffDelay, list.JumpRefOff, list.JumpOff:
		return StateOff, true
	default:
		return StateOff, false
	}
}
