// Package commands implements the homewire-log CLI commands.
package commands

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/homewire/homewire-go/pkg/log"
	"github.com/homewire/homewire-go/pkg/wire"
)

// formatEvent writes a human-readable representation of event to w.
func formatEvent(w io.Writer, event log.Event) {
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	fmt.Fprintf(w, "%s [run:%s] %-3s %s %s\n",
		ts, shortID(event.SessionID), event.Direction, event.Layer, typeLabel(event))

	switch {
	case event.Frame != nil:
		formatFrameDetails(w, event.Frame)
	case event.Message != nil:
		formatMessageDetails(w, event.Message)
	case event.StateChange != nil:
		formatStateChangeDetails(w, event.StateChange)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}
	fmt.Fprintln(w)
}

func typeLabel(event log.Event) string {
	switch {
	case event.Frame != nil:
		return "Frame"
	case event.Message != nil:
		return event.Message.Type.String()
	case event.StateChange != nil:
		return "State"
	case event.Error != nil:
		return "Error"
	default:
		return "Unknown"
	}
}

// shortID returns the first 8 characters of a run id.
func shortID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatFrameDetails(w io.Writer, frame *log.FrameEvent) {
	fmt.Fprintf(w, "  Size: %d bytes\n", frame.Size)
	if len(frame.Data) > 0 {
		fmt.Fprintf(w, "  Data: %s\n", hex.EncodeToString(frame.Data))
	}
	if frame.RSSI != 0 {
		fmt.Fprintf(w, "  RSSI: %d dBm\n", frame.RSSI)
	}
}

func formatMessageDetails(w io.Writer, msg *log.MessageEvent) {
	fmt.Fprintf(w, "  %s -> %s  cnt=%d flags=0x%02X\n", msg.From, msg.To, msg.Counter, uint8(msg.Flags))
	if op := operation(msg); op != "" {
		fmt.Fprintf(w, "  Operation: %s\n", op)
	}
	if len(msg.Payload) > 0 {
		fmt.Fprintf(w, "  Payload: %s\n", hex.EncodeToString(msg.Payload))
	}
}

// operation names the command a message carries, when its type has one.
func operation(msg *log.MessageEvent) string {
	switch msg.Type {
	case wire.TypeConfig:
		return fmt.Sprintf("%s ch=%d", wire.ConfigSubcommand(msg.Subcommand), msg.Command)
	case wire.TypeAction:
		return wire.ActionCommand(msg.Command).String()
	default:
		return ""
	}
}

func formatStateChangeDetails(w io.Writer, sc *log.StateChangeEvent) {
	fmt.Fprintf(w, "  Entity: %s", sc.Entity)
	if sc.Entity == log.StateEntityChannel {
		fmt.Fprintf(w, " %d", sc.Channel)
	}
	fmt.Fprintln(w)
	if sc.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s\n", sc.NewState)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

func formatErrorDetails(w io.Writer, e *log.ErrorEventData) {
	fmt.Fprintf(w, "  Layer: %s\n", e.Layer)
	fmt.Fprintf(w, "  Message: %s\n", e.Message)
	if e.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", e.Context)
	}
}

// FilterFlags are the raw filter flag values shared by the commands.
type FilterFlags struct {
	Session   string
	Direction string
	Layer     string
	Category  string
	Peer      string
	Types     string
}

// Build converts the flags into a log.Filter.
func (f FilterFlags) Build() (log.Filter, error) {
	filter := log.Filter{SessionID: f.Session, PeerID: strings.ToUpper(f.Peer)}

	if f.Direction != "" {
		d, ok := log.ParseDirection(f.Direction)
		if !ok {
			return filter, fmt.Errorf("invalid direction: %s (must be in or out)", f.Direction)
		}
		filter.Direction = &d
	}
	if f.Layer != "" {
		l, err := parseLayer(f.Layer)
		if err != nil {
			return filter, err
		}
		filter.Layer = &l
	}
	if f.Category != "" {
		c, err := parseCategory(f.Category)
		if err != nil {
			return filter, err
		}
		filter.Category = &c
	}
	if f.Types != "" {
		types, err := parseTypes(f.Types)
		if err != nil {
			return filter, err
		}
		filter.Types = types
	}
	return filter, nil
}

var messageTypes = []wire.MessageType{
	wire.TypeDeviceInfo, wire.TypeConfig, wire.TypeResponse, wire.TypeInfo,
	wire.TypeAction, wire.TypeRemoteEvent, wire.TypeSensorEvent,
}

// parseTypes parses a comma separated list of message type names such as
// "config,remote_event".
func parseTypes(s string) ([]wire.MessageType, error) {
	var out []wire.MessageType
next:
	for _, name := range strings.Split(s, ",") {
		name = strings.ToUpper(strings.TrimSpace(name))
		for _, t := range messageTypes {
			if t.String() == name {
				out = append(out, t)
				continue next
			}
		}
		return nil, fmt.Errorf("invalid message type: %s", name)
	}
	return out, nil
}

func parseLayer(s string) (log.Layer, error) {
	switch strings.ToLower(s) {
	case "radio":
		return log.LayerRadio, nil
	case "wire":
		return log.LayerWire, nil
	case "device":
		return log.LayerDevice, nil
	default:
		return 0, fmt.Errorf("invalid layer: %s (must be radio, wire or device)", s)
	}
}

func parseCategory(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "message":
		return log.CategoryMessage, nil
	case "state":
		return log.CategoryState, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be message, state or error)", s)
	}
}

// each calls fn for every event in path matching filter.
func each(path string, filter log.Filter, fn func(log.Event) error) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := fn(event); err != nil {
			return err
		}
	}
}

// RunView prints matching events in human-readable form.
func RunView(path string, filter log.Filter, output io.Writer) error {
	return each(path, filter, func(e log.Event) error {
		formatEvent(output, e)
		return nil
	})
}
