package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/homewire/homewire-go/pkg/wire"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
device:
  id: "1a2b3c"
  serial: "KEQ0123456"
  channels: 8
  low_active: [2, 7]
  session_timeout: 30s
storage:
  backend: sqlite
  path: "/tmp/switch.db"
transport:
  backend: mqtt
mqtt:
  broker:
    host: "broker.local"
    port: 8883
    tls: true
  topic_prefix: "site/a"
logging:
  format: json
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := cfg.NodeID(); got != (wire.NodeID{0x1A, 0x2B, 0x3C}) {
		t.Errorf("NodeID() = %v", got)
	}
	if cfg.Serial().String() != "KEQ0123456" {
		t.Errorf("Serial() = %q", cfg.Serial())
	}
	if cfg.Device.Channels != 8 {
		t.Errorf("Device.Channels = %d, want 8", cfg.Device.Channels)
	}
	if len(cfg.Device.LowActive) != 2 || cfg.Device.LowActive[1] != 7 {
		t.Errorf("Device.LowActive = %v", cfg.Device.LowActive)
	}
	if cfg.Device.SessionTimeout != 30*time.Second {
		t.Errorf("Device.SessionTimeout = %v, want 30s", cfg.Device.SessionTimeout)
	}
	if cfg.Storage.Backend != StorageSQLite {
		t.Errorf("Storage.Backend = %q", cfg.Storage.Backend)
	}

	// Unset fields keep their defaults.
	if cfg.Device.PeerCount != 8 {
		t.Errorf("Device.PeerCount = %d, want default 8", cfg.Device.PeerCount)
	}
	if cfg.MQTT.QoS != 1 {
		t.Errorf("MQTT.QoS = %d, want default 1", cfg.MQTT.QoS)
	}
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Transport.Backend != TransportLoopback {
		t.Errorf("Transport.Backend = %q, want loopback", cfg.Transport.Backend)
	}
	if cfg.Device.Channels != 4 {
		t.Errorf("Device.Channels = %d, want 4", cfg.Device.Channels)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/path/config.yaml"); err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "device: [yaml: content")
	if _, err := Load(path); err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HOMEWIRE_DEVICE_ID", "445566")
	t.Setenv("HOMEWIRE_DEVICE_CHANNELS", "2")
	t.Setenv("HOMEWIRE_STORAGE_BACKEND", "memory")
	t.Setenv("HOMEWIRE_MQTT_PASSWORD", "secret")

	cfg, err := Load(writeConfig(t, "device:\n  id: \"111111\"\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Device.ID != "445566" {
		t.Errorf("Device.ID = %q, want env value", cfg.Device.ID)
	}
	if cfg.Device.Channels != 2 {
		t.Errorf("Device.Channels = %d, want 2", cfg.Device.Channels)
	}
	if cfg.Storage.Backend != StorageMemory {
		t.Errorf("Storage.Backend = %q", cfg.Storage.Backend)
	}
	if cfg.MQTT.Auth.Password != "secret" {
		t.Error("MQTT.Auth.Password not overridden")
	}
}

func TestLoad_BadEnvInteger(t *testing.T) {
	t.Setenv("HOMEWIRE_MQTT_PORT", "eighty")
	if _, err := Load(""); err == nil || !strings.Contains(err.Error(), "HOMEWIRE_MQTT_PORT") {
		t.Errorf("Load() error = %v, want HOMEWIRE_MQTT_PORT error", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"bad id", func(c *Config) { c.Device.ID = "xyz" }, "device.id"},
		{"broadcast id", func(c *Config) { c.Device.ID = "000000" }, "broadcast"},
		{"long serial", func(c *Config) { c.Device.Serial = "ABCDEFGHIJK" }, "device.serial"},
		{"no channels", func(c *Config) { c.Device.Channels = 0 }, "device.channels"},
		{"too many channels", func(c *Config) { c.Device.Channels = MaxChannels + 1 }, "device.channels"},
		{"peer count", func(c *Config) { c.Device.PeerCount = 0 }, "device.peer_count"},
		{"low active out of range", func(c *Config) { c.Device.LowActive = []uint8{5} }, "low_active channel 5"},
		{"negative timeout", func(c *Config) { c.Device.SessionTimeout = -time.Second }, "session_timeout"},
		{"storage backend", func(c *Config) { c.Storage.Backend = "eeprom" }, "storage.backend"},
		{"storage path", func(c *Config) { c.Storage.Path = "" }, "storage.path"},
		{"memory needs no path", func(c *Config) { c.Storage.Backend = StorageMemory; c.Storage.Path = "" }, ""},
		{"transport backend", func(c *Config) { c.Transport.Backend = "serial" }, "transport.backend"},
		{"stream address", func(c *Config) { c.Transport.Backend = TransportStream }, "transport.address"},
		{"mqtt port", func(c *Config) { c.Transport.Backend = TransportMQTT; c.MQTT.Broker.Port = 0 }, "mqtt.broker.port"},
		{"mqtt qos", func(c *Config) { c.MQTT.QoS = 3 }, "mqtt.qos"},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_ReportsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Device.Channels = 0
	cfg.MQTT.QoS = 5

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error")
	}
	msg := err.Error()
	if !strings.HasPrefix(msg, "configuration errors: ") || strings.Count(msg, ";") != 1 {
		t.Errorf("Validate() error = %q", msg)
	}
}

func TestMQTTTransport(t *testing.T) {
	cfg := Default()
	cfg.MQTT.Auth.Username = "switch"
	cfg.MQTT.QoS = 2
	cfg.MQTT.ReconnectMax = 30

	mc := cfg.MQTTTransport()
	if mc.Host != "localhost" || mc.Port != 1883 || mc.Username != "switch" {
		t.Errorf("MQTTTransport() = %+v", mc)
	}
	if mc.QoS != 2 {
		t.Errorf("QoS = %d, want 2", mc.QoS)
	}
	if mc.ReconnectMax != 30*time.Second {
		t.Errorf("ReconnectMax = %v, want 30s", mc.ReconnectMax)
	}
}

func TestDeviceInfo(t *testing.T) {
	info := Default().DeviceInfo()
	if info.Serial.String() != "HWS0000001" || info.Model != 0x00F1 {
		t.Errorf("DeviceInfo() = %+v", info)
	}
}
