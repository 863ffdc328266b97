package list

import (
	"testing"

	"github.com/homewire/homewire-go/pkg/wire"
)

func TestList0MasterID(t *testing.T) {
	l := NewList0(NewMemory(List0Layout.Size()), 0)
	if err := l.Defaults(); err != nil {
		t.Fatalf("Defaults failed: %v", err)
	}
	if l.MasterID() != wire.Broadcast {
		t.Errorf("default master id = %s, want broadcast", l.MasterID())
	}
	if v, _ := l.Register(RegIntKeysVisible); v != 0x80 {
		t.Errorf("intKeysVisible = 0x%02X", v)
	}

	id := wire.NodeID{0x12, 0x34, 0x56}
	if err := l.SetMasterID(id); err != nil {
		t.Fatalf("SetMasterID failed: %v", err)
	}
	if l.MasterID() != id {
		t.Errorf("MasterID() = %s, want %s", l.MasterID(), id)
	}
}

func TestList0MasterIDInvalid(t *testing.T) {
	var l List0
	if l.MasterID() != wire.Broadcast {
		t.Error("invalid list0 should read as unpaired")
	}
	if err := l.SetMasterID(wire.NodeID{1, 2, 3}); err == nil {
		t.Error("expected error on invalid list0")
	}
}

func TestSwitchList1Defaults(t *testing.T) {
	l := New(NewMemory(8), 0, SwitchList1Layout)
	_ = l.Defaults()
	if v, _ := l.Register(RegTransmitTryMax); v != 6 {
		t.Errorf("transmitTryMax = %d, want 6", v)
	}
}

func TestSwitchList3Presets(t *testing.T) {
	tests := []struct {
		name              string
		apply             func(SwitchList3) error
		jtOn, jtOff       JumpTarget
		jtDlyOn, jtDlyOff JumpTarget
	}{
		{"single", SwitchList3.Single, JumpOffDelay, JumpOnDelay, JumpOn, JumpOff},
		{"odd", SwitchList3.Odd, JumpOffDelay, JumpOff, JumpOffDelay, JumpOff},
		{"even", SwitchList3.Even, JumpOn, JumpOnDelay, JumpOn, JumpOnDelay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewSwitchList3(New(NewMemory(SwitchList3Layout.Size()), 0, SwitchList3Layout))
			if err := tt.apply(l); err != nil {
				t.Fatalf("preset failed: %v", err)
			}
			for _, pl := range []SwitchPeerList{l.Short(), l.Long()} {
				if pl.ActionType() != ActionJumpToTarget {
					t.Errorf("long=%v action = %s", pl.Long(), pl.ActionType())
				}
				if pl.JtOn() != tt.jtOn || pl.JtOff() != tt.jtOff {
					t.Errorf("long=%v jtOn/jtOff = %s/%s, want %s/%s",
						pl.Long(), pl.JtOn(), pl.JtOff(), tt.jtOn, tt.jtOff)
				}
				if pl.JtDlyOn() != tt.jtDlyOn || pl.JtDlyOff() != tt.jtDlyOff {
					t.Errorf("long=%v jtDlyOn/jtDlyOff = %s/%s, want %s/%s",
						pl.Long(), pl.JtDlyOn(), pl.JtDlyOff(), tt.jtDlyOn, tt.jtDlyOff)
				}
				if pl.OnTime() != 0xFF || pl.OffTime() != 0xFF {
					t.Errorf("long=%v times = %02X/%02X", pl.Long(), pl.OnTime(), pl.OffTime())
				}
			}
		})
	}
}

func TestSwitchList3ShortLongIndependent(t *testing.T) {
	l := NewSwitchList3(New(NewMemory(SwitchList3Layout.Size()), 0, SwitchList3Layout))
	_ = l.Single()

	if err := l.SetRegister(RegActionType+LongOffset, uint8(ActionToggleToCounter)); err != nil {
		t.Fatalf("SetRegister failed: %v", err)
	}
	if l.Short().ActionType() != ActionJumpToTarget {
		t.Errorf("short action = %s", l.Short().ActionType())
	}
	if l.Long().ActionType() != ActionToggleToCounter {
		t.Errorf("long action = %s", l.Long().ActionType())
	}
	if SwitchList3Layout.Size() != 22 {
		t.Errorf("layout size = %d, want 22", SwitchList3Layout.Size())
	}
}

func TestEnumStrings(t *testing.T) {
	if ActionToggleInverseToCounter.String() != "TOGGLE_INVERSE_TO_COUNTER" {
		t.Error(ActionToggleInverseToCounter.String())
	}
	if ActionType(9).String() != "ACTION(9)" {
		t.Error(ActionType(9).String())
	}
	if JumpRefOff.String() != "REFOFF" || JumpTarget(12).String() != "JT(12)" {
		t.Error("jump target names")
	}
}

func TestSwitchList3Apply(t *testing.T) {
	l := NewSwitchList3(New(NewMemory(SwitchList3Layout.Size()), 0, SwitchList3Layout))
	if err := l.Apply(PresetEven); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if l.Short().JtOff() != JumpOnDelay {
		t.Errorf("jtOff = %s, want ONDELAY", l.Short().JtOff())
	}
	if err := l.Apply(Preset(7)); err == nil {
		t.Error("expected error for unknown preset")
	}
	if PresetOdd.String() != "odd" {
		t.Errorf("String() = %q", PresetOdd.String())
	}
	if err := NewSwitchList3(Invalid()).Apply(PresetSingle); err == nil {
		t.Error("expected error for invalid list")
	}
}
