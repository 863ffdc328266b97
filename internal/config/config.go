package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/homewire/homewire-go/pkg/transport"
	"github.com/homewire/homewire-go/pkg/wire"
)

// MaxChannels is the largest channel count the runner accepts.
const MaxChannels = 16

// Storage backends.
const (
	StorageMemory = "memory"
	StorageFile   = "file"
	StorageSQLite = "sqlite"
)

// Transport backends.
const (
	TransportLoopback = "loopback"
	TransportStream   = "stream"
	TransportMQTT     = "mqtt"
)

// Config is the root configuration.
type Config struct {
	Device    DeviceConfig    `yaml:"device"`
	Storage   StorageConfig   `yaml:"storage"`
	Transport TransportConfig `yaml:"transport"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DeviceConfig describes the switch node.
type DeviceConfig struct {
	// ID is the radio address as 6 hex digits.
	ID string `yaml:"id"`

	// Serial is the 10 character serial number.
	Serial string `yaml:"serial"`

	Channels    int     `yaml:"channels"`
	PeerCount   int     `yaml:"peer_count"`
	BaseAddress int     `yaml:"base_address"`
	LowActive   []uint8 `yaml:"low_active"`

	// SessionTimeout closes idle configuration sessions. Zero disables it.
	SessionTimeout time.Duration `yaml:"session_timeout"`

	Firmware uint8  `yaml:"firmware"`
	Model    uint16 `yaml:"model"`
	Subtype  uint8  `yaml:"subtype"`
}

// StorageConfig selects where lists are stored.
type StorageConfig struct {
	Backend     string `yaml:"backend"`
	Path        string `yaml:"path"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// TransportConfig selects the radio.
type TransportConfig struct {
	Backend string `yaml:"backend"`

	// Address is the host:port of a stream gateway.
	Address string `yaml:"address"`
}

// MQTTConfig configures the MQTT gateway radio.
type MQTTConfig struct {
	Broker      MQTTBrokerConfig `yaml:"broker"`
	Auth        MQTTAuthConfig   `yaml:"auth"`
	QoS         int              `yaml:"qos"`
	TopicPrefix string           `yaml:"topic_prefix"`

	// ReconnectMax is the reconnect backoff cap in seconds.
	ReconnectMax int `yaml:"reconnect_max"`
}

// MQTTBrokerConfig holds broker connection settings.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig holds broker credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// LoggingConfig configures operational and protocol logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`

	// ProtocolLog is a .hwlog file receiving protocol events. Empty disables it.
	ProtocolLog string `yaml:"protocol_log"`
}

// Load reads the file at path. An empty path uses defaults and the
// environment only.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Device: DeviceConfig{
			ID:        "ABCDEF",
			Serial:    "HWS0000001",
			Channels:  4,
			PeerCount: 8,
			Firmware:  0x10,
			Model:     0x00F1,
			Subtype:   0x10,
		},
		Storage: StorageConfig{
			Backend:     StorageFile,
			Path:        "./data/homewire-switch.json",
			BusyTimeout: 5,
		},
		Transport: TransportConfig{
			Backend: TransportLoopback,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "homewire-switch",
			},
			QoS:          1,
			TopicPrefix:  transport.DefaultTopicPrefix,
			ReconnectMax: 60,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

func applyEnvOverrides(cfg *Config) error {
	strs := []struct {
		env string
		dst *string
	}{
		{"HOMEWIRE_DEVICE_ID", &cfg.Device.ID},
		{"HOMEWIRE_DEVICE_SERIAL", &cfg.Device.Serial},
		{"HOMEWIRE_STORAGE_BACKEND", &cfg.Storage.Backend},
		{"HOMEWIRE_STORAGE_PATH", &cfg.Storage.Path},
		{"HOMEWIRE_TRANSPORT", &cfg.Transport.Backend},
		{"HOMEWIRE_TRANSPORT_ADDRESS", &cfg.Transport.Address},
		{"HOMEWIRE_MQTT_HOST", &cfg.MQTT.Broker.Host},
		{"HOMEWIRE_MQTT_USERNAME", &cfg.MQTT.Auth.Username},
		{"HOMEWIRE_MQTT_PASSWORD", &cfg.MQTT.Auth.Password},
		{"HOMEWIRE_LOG_LEVEL", &cfg.Logging.Level},
		{"HOMEWIRE_PROTOCOL_LOG", &cfg.Logging.ProtocolLog},
	}
	for _, s := range strs {
		if v := os.Getenv(s.env); v != "" {
			*s.dst = v
		}
	}

	ints := []struct {
		env string
		dst *int
	}{
		{"HOMEWIRE_DEVICE_CHANNELS", &cfg.Device.Channels},
		{"HOMEWIRE_MQTT_PORT", &cfg.MQTT.Broker.Port},
	}
	for _, s := range ints {
		v := os.Getenv(s.env)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", s.env, err)
		}
		*s.dst = n
	}
	return nil
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errs []string

	if id, err := wire.ParseNodeID(c.Device.ID); err != nil {
		errs = append(errs, "device.id must be 6 hex digits")
	} else if id.IsBroadcast() {
		errs = append(errs, "device.id must not be the broadcast address")
	}
	if _, err := wire.ParseSerial(c.Device.Serial); err != nil {
		errs = append(errs, "device.serial must be 1 to 10 characters")
	}
	if c.Device.Channels < 1 || c.Device.Channels > MaxChannels {
		errs = append(errs, fmt.Sprintf("device.channels must be between 1 and %d", MaxChannels))
	}
	if c.Device.PeerCount < 1 || c.Device.PeerCount > 64 {
		errs = append(errs, "device.peer_count must be between 1 and 64")
	}
	if c.Device.BaseAddress < 0 || c.Device.BaseAddress > 0xFFFF {
		errs = append(errs, "device.base_address must be between 0 and 65535")
	}
	for _, ch := range c.Device.LowActive {
		if ch == 0 || int(ch) > c.Device.Channels {
			errs = append(errs, fmt.Sprintf("device.low_active channel %d does not exist", ch))
		}
	}
	if c.Device.SessionTimeout < 0 {
		errs = append(errs, "device.session_timeout must not be negative")
	}

	switch c.Storage.Backend {
	case StorageMemory:
	case StorageFile, StorageSQLite:
		if c.Storage.Path == "" {
			errs = append(errs, "storage.path is required for the "+c.Storage.Backend+" backend")
		}
	default:
		errs = append(errs, "storage.backend must be memory, file or sqlite")
	}

	switch c.Transport.Backend {
	case TransportLoopback:
	case TransportStream:
		if c.Transport.Address == "" {
			errs = append(errs, "transport.address is required for the stream backend")
		}
	case TransportMQTT:
		if c.MQTT.Broker.Host == "" {
			errs = append(errs, "mqtt.broker.host is required")
		}
		if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
			errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
		}
	default:
		errs = append(errs, "transport.backend must be loopback, stream or mqtt")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		errs = append(errs, "logging.format must be json or text")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// NodeID returns the parsed device id. Call after Validate.
func (c *Config) NodeID() wire.NodeID {
	id, _ := wire.ParseNodeID(c.Device.ID)
	return id
}

// Serial returns the parsed serial. Call after Validate.
func (c *Config) Serial() wire.Serial {
	sn, _ := wire.ParseSerial(c.Device.Serial)
	return sn
}

// DeviceInfo returns the identity announced while pairing.
func (c *Config) DeviceInfo() wire.DeviceInfo {
	return wire.DeviceInfo{
		Firmware: c.Device.Firmware,
		Model:    c.Device.Model,
		Serial:   c.Serial(),
		Subtype:  c.Device.Subtype,
	}
}

// MQTTTransport converts the MQTT section for the transport package.
func (c *Config) MQTTTransport() transport.MQTTConfig {
	return transport.MQTTConfig{
		Host:         c.MQTT.Broker.Host,
		Port:         c.MQTT.Broker.Port,
		ClientID:     c.MQTT.Broker.ClientID,
		TLS:          c.MQTT.Broker.TLS,
		Username:     c.MQTT.Auth.Username,
		Password:     c.MQTT.Auth.Password,
		QoS:          byte(c.MQTT.QoS),
		TopicPrefix:  c.MQTT.TopicPrefix,
		ReconnectMax: time.Duration(c.MQTT.ReconnectMax) * time.Second,
	}
}
