package actuator

import (
	"testing"

	"github.com/homewire/homewire-go/pkg/list"
)

type transition struct{ old, next State }

func recordingMachine() (*StateMachine, *[]transition) {
	var seen []transition
	sm := NewStateMachine(SwitcherFunc(func(old, next State) {
		seen = append(seen, transition{old, next})
	}))
	return sm, &seen
}

func peerList(t *testing.T, action list.ActionType, jtOnOff uint8) list.SwitchPeerList {
	t.Helper()
	l := list.NewSwitchList3(list.New(list.NewMemory(list.SwitchList3Layout.Size()), 0, list.SwitchList3Layout))
	if err := l.Defaults(); err != nil {
		t.Fatalf("Defaults failed: %v", err)
	}
	if err := l.SetRegister(list.RegActionType, uint8(action)); err != nil {
		t.Fatalf("SetRegister failed: %v", err)
	}
	if err := l.SetRegister(list.RegJtOnOff, jtOnOff); err != nil {
		t.Fatalf("SetRegister failed: %v", err)
	}
	return l.Short()
}

func TestSetStatus(t *testing.T) {
	sm, seen := recordingMachine()
	if sm.State() != StateOff {
		t.Fatalf("initial state = %s, want OFF", sm.State())
	}

	sm.SetStatus(0xC8, 0x0102)
	if sm.State() != StateOn || sm.Delay() != 0x0102 {
		t.Errorf("state/delay = %s/%04X", sm.State(), sm.Delay())
	}
	sm.SetStatus(1, 0)
	sm.SetStatus(0, 0)
	if sm.State() != StateOff {
		t.Errorf("state = %s, want OFF", sm.State())
	}

	want := []transition{{StateOff, StateOn}, {StateOn, StateOff}}
	if len(*seen) != len(want) {
		t.Fatalf("transitions = %v, want %v", *seen, want)
	}
	for i := range want {
		if (*seen)[i] != want[i] {
			t.Errorf("transition %d = %v, want %v", i, (*seen)[i], want[i])
		}
	}
}

func TestRemoteJumpToTarget(t *testing.T) {
	tests := []struct {
		name    string
		jtOnOff uint8
		from    State
		want    State
	}{
		{"toggle from off", 0x14, StateOff, StateOn},
		{"toggle from on", 0x14, StateOn, StateOff},
		{"off button from on", 0x64, StateOn, StateOff},
		{"off button from off", 0x64, StateOff, StateOff},
		{"on button from off", 0x13, StateOff, StateOn},
		{"on button from on", 0x13, StateOn, StateOn},
		{"ref targets", 0x52, StateOff, StateOff},
		{"ref on from on", 0x52, StateOn, StateOn},
		{"none keeps on", 0x00, StateOn, StateOn},
		{"none keeps off", 0x00, StateOff, StateOff},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm, _ := recordingMachine()
			if tt.from == StateOn {
				sm.SetStatus(1, 0)
			}
			sm.Remote(peerList(t, list.ActionJumpToTarget, tt.jtOnOff), 1)
			if sm.State() != tt.want {
				t.Errorf("state = %s, want %s", sm.State(), tt.want)
			}
		})
	}
}

func TestRemoteToggleToCounter(t *testing.T) {
	tests := []struct {
		action  list.ActionType
		counter uint8
		want    State
	}{
		{list.ActionToggleToCounter, 1, StateOn},
		{list.ActionToggleToCounter, 2, StateOff},
		{list.ActionToggleInverseToCounter, 1, StateOff},
		{list.ActionToggleInverseToCounter, 2, StateOn},
	}

	for _, tt := range tests {
		t.Run(tt.action.String(), func(t *testing.T) {
			sm, _ := recordingMachine()
			pl := peerList(t, tt.action, 0x14)
			sm.Remote(pl, tt.counter)
			if sm.State() != tt.want {
				t.Errorf("counter %d: state = %s, want %s", tt.counter, sm.State(), tt.want)
			}
			// same counter twice is stable
			sm.Remote(pl, tt.counter)
			if sm.State() != tt.want {
				t.Errorf("repeat counter %d: state = %s, want %s", tt.counter, sm.State(), tt.want)
			}
		})
	}
}

func TestRemoteInactive(t *testing.T) {
	sm, seen := recordingMachine()
	sm.Remote(peerList(t, list.ActionInactive, 0x14), 1)
	sm.Remote(peerList(t, list.ActionType(9), 0x14), 1)
	if sm.State() != StateOff || len(*seen) != 0 {
		t.Errorf("inactive action changed state: %s %v", sm.State(), *seen)
	}
}

func TestReapply(t *testing.T) {
	sm, seen := recordingMachine()
	sm.SetStatus(1, 0)
	sm.Reapply()
	if len(*seen) != 2 || (*seen)[1] != (transition{StateOn, StateOn}) {
		t.Errorf("transitions = %v", *seen)
	}
}
