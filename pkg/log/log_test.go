package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/homewire/homewire-go/pkg/wire"
)

var (
	testCentral = wire.NodeID{0x12, 0x34, 0x56}
	testDevice  = wire.NodeID{0xAB, 0xCD, 0xEF}
)

type captureLogger struct {
	mu     sync.Mutex
	events []Event
}

func (c *captureLogger) Log(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func messageEvent(dir Direction, at time.Time) Event {
	msg := wire.NewActionSet(0x21, testCentral, testDevice, 2, wire.LevelOn, 0)
	return Event{
		Timestamp: at,
		SessionID: "run-1",
		Direction: dir,
		Layer:     LayerWire,
		Category:  CategoryMessage,
		DeviceID:  testDevice.String(),
		PeerID:    testCentral.String(),
		Message:   NewMessageEvent(msg),
	}
}

func TestNoopLogger(t *testing.T) {
	var l Logger = NoopLogger{}
	l.Log(Event{})
}

func TestNewMessageEvent(t *testing.T) {
	msg := wire.NewConfigStart(0x05, testCentral, testDevice, 1, wire.Peer{}, 1)
	ev := NewMessageEvent(msg)
	if ev.Type != wire.TypeConfig || ev.Counter != 0x05 {
		t.Errorf("type/counter = %s/%d", ev.Type, ev.Counter)
	}
	if ev.From != "123456" || ev.To != "ABCDEF" {
		t.Errorf("from/to = %s/%s", ev.From, ev.To)
	}
	if ev.Command != 1 || ev.Subcommand != uint8(wire.ConfigStartCmd) {
		t.Errorf("cmd/subcmd = %d/%d", ev.Command, ev.Subcommand)
	}

	msg.Payload[0] = 9
	if ev.Payload[0] == 9 {
		t.Error("payload must be copied")
	}

	empty := NewMessageEvent(&wire.Message{Type: wire.TypeInfo})
	if empty.Command != 0 || empty.Subcommand != 0 {
		t.Error("empty payload should leave command fields zero")
	}
}

func TestEventRoundTrip(t *testing.T) {
	at := time.Date(2026, 5, 4, 10, 30, 0, 123456789, time.UTC)
	events := []Event{
		messageEvent(DirectionIn, at),
		{
			Timestamp:   at,
			SessionID:   "run-1",
			Layer:       LayerDevice,
			Category:    CategoryState,
			StateChange: &StateChangeEvent{Entity: StateEntityChannel, Channel: 2, OldState: "OFF", NewState: "ON"},
		},
		{
			Timestamp: at,
			Layer:     LayerRadio,
			Category:  CategoryMessage,
			Frame:     &FrameEvent{Size: 3, Data: []byte{1, 2, 3}, RSSI: -60},
		},
		{
			Timestamp: at,
			Layer:     LayerDevice,
			Category:  CategoryError,
			Error:     &ErrorEventData{Layer: LayerDevice, Message: "invalid channel", Context: "PEER_ADD"},
		},
	}

	for _, e := range events {
		t.Run(e.Category.String(), func(t *testing.T) {
			data, err := EncodeEvent(e)
			if err != nil {
				t.Fatalf("EncodeEvent failed: %v", err)
			}
			got, err := DecodeEvent(data)
			if err != nil {
				t.Fatalf("DecodeEvent failed: %v", err)
			}
			if !got.Timestamp.Equal(e.Timestamp) {
				t.Errorf("Timestamp = %v, want %v", got.Timestamp, e.Timestamp)
			}
			if got.Category != e.Category || got.Layer != e.Layer {
				t.Errorf("category/layer = %s/%s", got.Category, got.Layer)
			}
			switch {
			case e.Message != nil:
				if got.Message == nil || got.Message.Counter != e.Message.Counter || !bytes.Equal(got.Message.Payload, e.Message.Payload) {
					t.Errorf("message = %+v", got.Message)
				}
			case e.StateChange != nil:
				if got.StateChange == nil || *got.StateChange != *e.StateChange {
					t.Errorf("state change = %+v", got.StateChange)
				}
			case e.Frame != nil:
				if got.Frame == nil || got.Frame.RSSI != -60 || !bytes.Equal(got.Frame.Data, e.Frame.Data) {
					t.Errorf("frame = %+v", got.Frame)
				}
			case e.Error != nil:
				if got.Error == nil || *got.Error != *e.Error {
					t.Errorf("error = %+v", got.Error)
				}
			}
		})
	}
}

func TestFileLoggerAndReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "switch"+FileExt)

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	logger.Log(messageEvent(DirectionIn, base))
	logger.Log(messageEvent(DirectionOut, base.Add(time.Second)))
	logger.Log(messageEvent(DirectionIn, base.Add(2*time.Second)))
	if written, failed := logger.Stats(); written != 3 || failed != 0 {
		t.Errorf("stats = %d/%d", written, failed)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
	logger.Log(messageEvent(DirectionIn, base))

	t.Run("All", func(t *testing.T) {
		r, err := NewReader(path)
		if err != nil {
			t.Fatalf("NewReader failed: %v", err)
		}
		defer r.Close()
		n := 0
		for {
			_, err := r.Next()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				t.Fatalf("Next failed: %v", err)
			}
			n++
		}
		if n != 3 {
			t.Errorf("read %d events, want 3", n)
		}
	})

	t.Run("Filtered", func(t *testing.T) {
		out := DirectionOut
		r, err := NewFilteredReader(path, Filter{Direction: &out})
		if err != nil {
			t.Fatalf("NewFilteredReader failed: %v", err)
		}
		defer r.Close()
		e, err := r.Next()
		if err != nil || e.Direction != DirectionOut {
			t.Fatalf("Next = %+v, %v", e, err)
		}
		if _, err := r.Next(); !errors.Is(err, io.EOF) {
			t.Errorf("err = %v, want EOF", err)
		}
	})

	t.Run("Missing", func(t *testing.T) {
		if _, err := NewReader(filepath.Join(t.TempDir(), "none")); !os.IsNotExist(err) {
			t.Errorf("err = %v, want not-exist", err)
		}
	})
}

func TestFilterMatches(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	e := messageEvent(DirectionIn, base)
	wireLayer := LayerWire
	device := LayerDevice
	state := CategoryState
	later := base.Add(time.Minute)

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"empty", Filter{}, true},
		{"session", Filter{SessionID: "run-1"}, true},
		{"other session", Filter{SessionID: "run-2"}, false},
		{"layer", Filter{Layer: &wireLayer}, true},
		{"other layer", Filter{Layer: &device}, false},
		{"category", Filter{Category: &state}, false},
		{"peer", Filter{PeerID: "123456"}, true},
		{"other device", Filter{DeviceID: "000001"}, false},
		{"before start", Filter{TimeStart: &later}, false},
		{"end exclusive", Filter{TimeEnd: &base}, false},
		{"in window", Filter{TimeStart: &base, TimeEnd: &later}, true},
		{"type", Filter{Types: []wire.MessageType{wire.TypeConfig, wire.TypeAction}}, true},
		{"other type", Filter{Types: []wire.MessageType{wire.TypeInfo}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(e); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReaderTruncated(t *testing.T) {
	var buf bytes.Buffer
	for i := 0; i < 2; i++ {
		data, err := EncodeEvent(messageEvent(DirectionIn, time.Now()))
		if err != nil {
			t.Fatalf("EncodeEvent failed: %v", err)
		}
		buf.Write(data)
	}
	cut := buf.Bytes()[:buf.Len()-3]

	r := NewStreamReader(bytes.NewReader(cut), Filter{})
	if _, err := r.Next(); err != nil {
		t.Fatalf("first Next failed: %v", err)
	}
	_, err := r.Next()
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("err = %v, want ErrTruncated", err)
	}
	if r.Count() != 1 {
		t.Errorf("Count() = %d, want 1", r.Count())
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestMultiLogger(t *testing.T) {
	a, b := &captureLogger{}, &captureLogger{}
	m := NewMultiLogger(a, nil, b)
	if len(m) != 2 {
		t.Errorf("len = %d, want nil entry dropped", len(m))
	}
	m.Log(messageEvent(DirectionIn, time.Now()))
	if len(a.events) != 1 || len(b.events) != 1 {
		t.Errorf("events a=%d b=%d, want 1 each", len(a.events), len(b.events))
	}
}

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	adapter.Log(messageEvent(DirectionOut, time.Now()))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}
	if entry["msg"] != "protocol" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["direction"] != "OUT" || entry["msg_type"] != "ACTION" || entry["peer_id"] != "123456" {
		t.Errorf("entry = %v", entry)
	}

	buf.Reset()
	adapter.Log(Event{
		Category:    CategoryState,
		StateChange: &StateChangeEvent{Entity: StateEntitySession, NewState: "open", Reason: "CONFIG_START"},
	})
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}
	if entry["entity"] != "SESSION" || entry["reason"] != "CONFIG_START" {
		t.Errorf("entry = %v", entry)
	}
}

func TestParseDirection(t *testing.T) {
	if d, ok := ParseDirection("OUT"); !ok || d != DirectionOut {
		t.Errorf("ParseDirection(OUT) = %v, %v", d, ok)
	}
	if _, ok := ParseDirection("sideways"); ok {
		t.Error("expected failure")
	}
}
