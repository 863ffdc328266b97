package wire

import "fmt"

// MessageType is the frame type byte.
type MessageType uint8

const (
	TypeDeviceInfo  MessageType = 0x00
	TypeConfig      MessageType = 0x01
	TypeResponse    MessageType = 0x02
	TypeInfo        MessageType = 0x10
	TypeAction      MessageType = 0x11
	TypeRemoteEvent MessageType = 0x40
	TypeSensorEvent MessageType = 0x41
)

// String returns the message type name.
func (t MessageType) String() string {
	switch t {
	case TypeDeviceInfo:
		return "DEVICE_INFO"
	case TypeConfig:
		return "CONFIG"
	case TypeResponse:
		return "RESPONSE"
	case TypeInfo:
		return "INFO"
	case TypeAction:
		return "ACTION"
	case TypeRemoteEvent:
		return "REMOTE_EVENT"
	case TypeSensorEvent:
		return "SENSOR_EVENT"
	default:
		return fmt.Sprintf("TYPE_%02X", uint8(t))
	}
}

// ConfigSubcommand is the second payload byte of a CONFIG message.
type ConfigSubcommand uint8

const (
	ConfigPeerAddCmd     ConfigSubcommand = 0x01
	ConfigPeerRemoveCmd  ConfigSubcommand = 0x02
	ConfigPeerListReqCmd ConfigSubcommand = 0x03
	ConfigParamReqCmd    ConfigSubcommand = 0x04
	ConfigStartCmd       ConfigSubcommand = 0x05
	ConfigEndCmd         ConfigSubcommand = 0x06
	ConfigWriteIndexCmd  ConfigSubcommand = 0x08
	ConfigSerialReqCmd   ConfigSubcommand = 0x09
	ConfigPairSerialCmd  ConfigSubcommand = 0x0A
	ConfigStatusReqCmd   ConfigSubcommand = 0x0E
)

// String returns the subcommand name.
func (c ConfigSubcommand) String() string {
	switch c {
	case ConfigPeerAddCmd:
		return "PEER_ADD"
	case ConfigPeerRemoveCmd:
		return "PEER_REMOVE"
	case ConfigPeerListReqCmd:
		return "PEER_LIST_REQ"
	case ConfigParamReqCmd:
		return "PARAM_REQ"
	case ConfigStartCmd:
		return "START"
	case ConfigEndCmd:
		return "END"
	case ConfigWriteIndexCmd:
		return "WRITE_INDEX"
	case ConfigSerialReqCmd:
		return "SERIAL_REQ"
	case ConfigPairSerialCmd:
		return "PAIR_SERIAL"
	case ConfigStatusReqCmd:
		return "STATUS_REQUEST"
	default:
		return fmt.Sprintf("SUBCMD_%02X", uint8(c))
	}
}

// ActionCommand is the first payload byte of an ACTION message.
type ActionCommand uint8

const (
	ActionSetCmd ActionCommand = 0x02
)

// String returns the action command name.
func (c ActionCommand) String() string {
	if c == ActionSetCmd {
		return "SET"
	}
	return fmt.Sprintf("ACTION_%02X", uint8(c))
}

// Flags is the frame flag byte.
type Flags uint8

const (
	FlagWakeUp   Flags = 0x01
	FlagWakeMeUp Flags = 0x02
	FlagBcast    Flags = 0x04
	FlagBurst    Flags = 0x10
	FlagBidi     Flags = 0x20
	FlagRepeated Flags = 0x40
	FlagRptEn    Flags = 0x80
)

// Has reports whether all bits of f2 are set.
func (f Flags) Has(f2 Flags) bool {
	return f&f2 == f2
}

// Response and info subtypes (first payload byte).
const (
	respAck       = 0x00
	respAckStatus = 0x01
	respNack      = 0x80

	infoPeerList       = 0x01
	infoParamPairs     = 0x02
	infoActuatorStatus = 0x06
)

// Remote event channel byte flags.
const (
	remoteChannelMask = 0x3F
	remoteLongFlag    = 0x40
	remoteLowBatFlag  = 0x80
)
