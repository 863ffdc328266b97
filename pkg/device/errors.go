package device

import (
	"errors"

	"github.com/homewire/homewire-go/pkg/channel"
)

// Device errors. Process never returns them; they classify rejected input
// in logs and are returned by the setup and helper methods.
var (
	ErrAddressMismatch        = errors.New("message not addressed to this device")
	ErrInvalidChannel         = errors.New("invalid channel")
	ErrInvalidList            = errors.New("invalid list")
	ErrUnrecognizedSubcommand = errors.New("unrecognized subcommand")
	ErrChannelCount           = errors.New("channel count out of range")
	ErrStorageTooSmall        = errors.New("storage too small")
	ErrNoRadio                = errors.New("no radio bound")

	ErrPeerTableFull = channel.ErrPeerTableFull
	ErrPeerNotFound  = channel.ErrPeerNotFound
)
