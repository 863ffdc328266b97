package log

import (
	"slices"
	"time"

	"github.com/homewire/homewire-go/pkg/wire"
)

// Filter selects events. Unset criteria match everything; set ones must
// all match.
type Filter struct {
	SessionID string
	Direction *Direction
	Layer     *Layer
	Category  *Category

	// TimeStart is inclusive, TimeEnd exclusive.
	TimeStart *time.Time
	TimeEnd   *time.Time

	DeviceID string
	PeerID   string

	// Types keeps message events of these types. Other categories never
	// match a non-empty Types.
	Types []wire.MessageType
}

// Matches reports whether e passes the filter.
func (f Filter) Matches(e Event) bool {
	switch {
	case f.SessionID != "" && e.SessionID != f.SessionID,
		f.DeviceID != "" && e.DeviceID != f.DeviceID,
		f.PeerID != "" && e.PeerID != f.PeerID,
		f.Direction != nil && e.Direction != *f.Direction,
		f.Layer != nil && e.Layer != *f.Layer,
		f.Category != nil && e.Category != *f.Category,
		f.TimeStart != nil && e.Timestamp.Before(*f.TimeStart),
		f.TimeEnd != nil && !e.Timestamp.Before(*f.TimeEnd):
		return false
	}
	if len(f.Types) > 0 {
		return e.Message != nil && slices.Contains(f.Types, e.Message.Type)
	}
	return true
}
