package list

import (
	"fmt"

	"github.com/homewire/homewire-go/pkg/wire"
)

// List0 registers.
const (
	RegIntKeysVisible     uint8 = 0x02
	RegMasterID1          uint8 = 0x0A
	RegMasterID2          uint8 = 0x0B
	RegMasterID3          uint8 = 0x0C
	RegLocalResetDisabled uint8 = 0x18
)

// List0Layout is the device master list.
var List0Layout = NewLayout("list0",
	RegisterDef{ID: RegIntKeysVisible, Default: 0x80},
	RegisterDef{ID: RegMasterID1},
	RegisterDef{ID: RegMasterID2},
	RegisterDef{ID: RegMasterID3},
	RegisterDef{ID: RegLocalResetDisabled},
)

// List0 is a typed view of the master list.
type List0 struct {
	GenericList
}

// NewList0 creates the master list view at addr.
func NewList0(store Storage, addr uint16) List0 {
	return List0{New(store, addr, List0Layout)}
}

// MasterID returns the stored master id. Unreadable storage yields the
// broadcast id, which means "unpaired".
func (l List0) MasterID() wire.NodeID {
	var id wire.NodeID
	for i, reg := range []uint8{RegMasterID1, RegMasterID2, RegMasterID3} {
		v, ok := l.Register(reg)
		if !ok {
			return wire.Broadcast
		}
		id[i] = v
	}
	return id
}

// SetMasterID stores the master id.
func (l List0) SetMasterID(id wire.NodeID) error {
	for i, reg := range []uint8{RegMasterID1, RegMasterID2, RegMasterID3} {
		if err := l.SetRegister(reg, id[i]); err != nil {
			return fmt.Errorf("failed to store master id: %w", err)
		}
	}
	return nil
}

// Switch List1 registers.
const (
	RegAESActive      uint8 = 0x08
	RegTransmitTryMax uint8 = 0x30
	RegPowerUpAction  uint8 = 0x56
)

// SwitchList1Layout holds the per-channel switch settings.
var SwitchList1Layout = NewLayout("switch-list1",
	RegisterDef{ID: RegAESActive},
	RegisterDef{ID: RegTransmitTryMax, Default: 6},
	RegisterDef{ID: RegPowerUpAction},
)

// Switch List3 registers of the short press block. The long press block
// uses the same registers at LongOffset.
const (
	RegCtDlyOnOff uint8 = 0x02
	RegCtOnOff    uint8 = 0x03
	RegCtValLo    uint8 = 0x04
	RegCtValHi    uint8 = 0x05
	RegOnDly      uint8 = 0x06
	RegOnTime     uint8 = 0x07
	RegOffDly     uint8 = 0x08
	RegOffTime    uint8 = 0x09
	RegActionType uint8 = 0x0A
	RegJtOnOff    uint8 = 0x0B
	RegJtDlyOnOff uint8 = 0x0C

	LongOffset uint8 = 0x80
)

// Jump table presets. Low nibble is the target from On (or delay-on),
// high nibble the target from Off (or delay-off).
const (
	jtToggle    uint8 = 0x14
	jtDlyToggle uint8 = 0x63
	jtOffButton uint8 = 0x64
	jtOnButton  uint8 = 0x13
)

var peerRegisterDefaults = []RegisterDef{
	{ID: RegCtDlyOnOff},
	{ID: RegCtOnOff},
	{ID: RegCtValLo, Default: 0x32},
	{ID: RegCtValHi, Default: 0x64},
	{ID: RegOnDly},
	{ID: RegOnTime, Default: 0xFF},
	{ID: RegOffDly},
	{ID: RegOffTime, Default: 0xFF},
	{ID: RegActionType, Default: uint8(ActionJumpToTarget)},
	{ID: RegJtOnOff, Default: jtToggle},
	{ID: RegJtDlyOnOff, Default: jtDlyToggle},
}

// SwitchList3Layout holds the reaction of a switch channel to one peer.
var SwitchList3Layout = func() *Layout {
	regs := make([]RegisterDef, 0, 2*len(peerRegisterDefaults))
	regs = append(regs, peerRegisterDefaults...)
	for _, r := range peerRegisterDefaults {
		regs = append(regs, RegisterDef{ID: r.ID + LongOffset, Default: r.Default})
	}
	return NewLayout("switch-list3", regs...)
}()

// ActionType selects how a peer event changes the switch state.
type ActionType uint8

const (
	ActionInactive ActionType = iota
	ActionJumpToTarget
	ActionToggleToCounter
	ActionToggleInverseToCounter
)

// String returns the action type name.
func (a ActionType) String() string {
	switch a {
	case ActionInactive:
		return "INACTIVE"
	case ActionJumpToTarget:
		return "JUMP_TO_TARGET"
	case ActionToggleToCounter:
		return "TOGGLE_TO_COUNTER"
	case ActionToggleInverseToCounter:
		return "TOGGLE_INVERSE_TO_COUNTER"
	default:
		return fmt.Sprintf("ACTION(%d)", a)
	}
}

// JumpTarget is an entry of the switch jump table.
type JumpTarget uint8

const (
	JumpNone JumpTarget = iota
	JumpOnDelay
	JumpRefOn
	JumpOn
	JumpOffDelay
	JumpRefOff
	JumpOff
)

// String returns the jump target name.
func (j JumpTarget) String() string {
	switch j {
	case JumpNone:
		return "NONE"
	case JumpOnDelay:
		return "ONDELAY"
	case JumpRefOn:
		return "REFON"
	case JumpOn:
		return "ON"
	case JumpOffDelay:
		return "OFFDELAY"
	case JumpRefOff:
		return "REFOFF"
	case JumpOff:
		return "OFF"
	default:
		return fmt.Sprintf("JT(%d)", j)
	}
}

// SwitchList3 is a typed view of a switch peer list.
type SwitchList3 struct {
	GenericList
}

// NewSwitchList3 wraps a generic list. The list may be invalid.
func NewSwitchList3(l GenericList) SwitchList3 {
	return SwitchList3{l}
}

// Short returns the short press block.
func (l SwitchList3) Short() SwitchPeerList {
	return SwitchPeerList{list: l.GenericList}
}

// Long returns the long press block.
func (l SwitchList3) Long() SwitchPeerList {
	return SwitchPeerList{list: l.GenericList, offset: LongOffset}
}

// Single configures the list for a single peer button: every press toggles.
func (l SwitchList3) Single() error {
	return l.preset(jtToggle, jtDlyToggle)
}

// Odd configures the first button of a button pair: switch off.
func (l SwitchList3) Odd() error {
	return l.preset(jtOffButton, jtOffButton)
}

// Even configures the second button of a button pair: switch on.
func (l SwitchList3) Even() error {
	return l.preset(jtOnButton, jtOnButton)
}

// Preset names a factory configuration of a peer list.
type Preset uint8

const (
	// PresetSingle is used for a peer registered on its own.
	PresetSingle Preset = iota
	// PresetOdd is used for the first peer of a pair.
	PresetOdd
	// PresetEven is used for the second peer of a pair.
	PresetEven
)

// String returns the preset name.
func (p Preset) String() string {
	switch p {
	case PresetSingle:
		return "single"
	case PresetOdd:
		return "odd"
	case PresetEven:
		return "even"
	default:
		return fmt.Sprintf("preset(%d)", p)
	}
}

// Apply writes the named preset.
func (l SwitchList3) Apply(p Preset) error {
	switch p {
	case PresetSingle:
		return l.Single()
	case PresetOdd:
		return l.Odd()
	case PresetEven:
		return l.Even()
	default:
		return fmt.Errorf("unknown preset %d", p)
	}
}

func (l SwitchList3) preset(jt, jtDly uint8) error {
	if err := l.Defaults(); err != nil {
		return err
	}
	for _, off := range []uint8{0, LongOffset} {
		if err := l.SetRegister(RegJtOnOff+off, jt); err != nil {
			return err
		}
		if err := l.SetRegister(RegJtDlyOnOff+off, jtDly); err != nil {
			return err
		}
	}
	return nil
}

// SwitchPeerList is the short or long press block of a switch peer list.
type SwitchPeerList struct {
	list   GenericList
	offset uint8
}

// Valid reports whether the underlying list is valid.
func (p SwitchPeerList) Valid() bool {
	return p.list.Valid()
}

// Long reports whether this is the long press block.
func (p SwitchPeerList) Long() bool {
	return p.offset == LongOffset
}

func (p SwitchPeerList) reg(r uint8) uint8 {
	v, _ := p.list.Register(r + p.offset)
	return v
}

// ActionType returns the configured action.
func (p SwitchPeerList) ActionType() ActionType {
	return ActionType(p.reg(RegActionType))
}

// JtOn returns the jump target taken from state On.
func (p SwitchPeerList) JtOn() JumpTarget {
	return JumpTarget(p.reg(RegJtOnOff) & 0x0F)
}

// JtOff returns the jump target taken from state Off.
func (p SwitchPeerList) JtOff() JumpTarget {
	return JumpTarget(p.reg(RegJtOnOff) >> 4)
}

// JtDlyOn returns the jump target taken from state OnDelay.
func (p SwitchPeerList) JtDlyOn() JumpTarget {
	return JumpTarget(p.reg(RegJtDlyOnOff) & 0x0F)
}

// JtDlyOff returns the jump target taken from state OffDelay.
func (p SwitchPeerList) JtDlyOff() JumpTarget {
	return JumpTarget(p.reg(RegJtDlyOnOff) >> 4)
}

// OnTime returns the configured on time register.
func (p SwitchPeerList) OnTime() uint8 {
	return p.reg(RegOnTime)
}

// OffTime returns the configured off time register.
func (p SwitchPeerList) OffTime() uint8 {
	return p.reg(RegOffTime)
}
