package transport

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/homewire/homewire-go/pkg/wire"
)

// MQTT connection constants.
const (
	defaultConnectTimeout    = 10 * time.Second
	defaultPublishTimeout    = 5 * time.Second
	defaultDisconnectQuiesce = 500 // milliseconds
	defaultKeepAlive         = 30 * time.Second
	maxQoS                   = 2
)

// DefaultTopicPrefix is the topic root used when none is configured.
const DefaultTopicPrefix = "homewire"

// MQTTConfig configures an MQTTRadio.
type MQTTConfig struct {
	Host     string
	Port     int
	ClientID string
	TLS      bool
	Username string
	Password string
	QoS      byte

	// TopicPrefix is the topic root. Defaults to DefaultTopicPrefix.
	TopicPrefix string

	// ReconnectMax caps the reconnect backoff.
	ReconnectMax time.Duration
}

// Topics builds the gateway topics of one node.
type Topics struct {
	Prefix string
	Node   wire.NodeID
}

func (t Topics) prefix() string {
	if t.Prefix == "" {
		return DefaultTopicPrefix
	}
	return t.Prefix
}

// TX returns the topic frames sent by the node are published on.
func (t Topics) TX() string {
	return fmt.Sprintf("%s/%s/tx", t.prefix(), t.Node)
}

// RX returns the topic frames addressed to the node arrive on.
func (t Topics) RX() string {
	return fmt.Sprintf("%s/%s/rx", t.prefix(), t.Node)
}

// BroadcastRX returns the topic broadcast frames arrive on.
func (t Topics) BroadcastRX() string {
	return t.prefix() + "/broadcast/rx"
}

// MQTTRadio exchanges CBOR frame envelopes with an MQTT radio gateway.
type MQTTRadio struct {
	client  pahomqtt.Client
	cfg     MQTTConfig
	topics  Topics
	logger  *slog.Logger
	now     func() time.Time
	inbound chan *wire.Message

	mu        sync.Mutex
	connected bool
	closed    bool
	lastRSSI  int8
}

// newMQTTRadio builds the radio without connecting.
func newMQTTRadio(cfg MQTTConfig, node wire.NodeID, logger *slog.Logger) *MQTTRadio {
	if logger == nil {
		logger = slog.Default()
	}
	return &MQTTRadio{
		cfg:     cfg,
		topics:  Topics{Prefix: cfg.TopicPrefix, Node: node},
		logger:  logger,
		now:     time.Now,
		inbound: make(chan *wire.Message, DefaultQueueSize),
	}
}

// ConnectMQTT connects to the broker and subscribes to the node topics.
// Subscriptions are restored on every reconnect.
func ConnectMQTT(cfg MQTTConfig, node wire.NodeID, logger *slog.Logger) (*MQTTRadio, error) {
	if cfg.QoS > maxQoS {
		return nil, fmt.Errorf("%w: invalid qos %d", ErrConnectionFailed, cfg.QoS)
	}
	r := newMQTTRadio(cfg, node, logger)

	opts := buildClientOptions(cfg)
	opts.SetOnConnectHandler(func(c pahomqtt.Client) {
		r.handleConnect(c)
	})
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		r.setConnected(false)
		r.logger.Warn("mqtt connection lost", "error", err)
	})

	r.client = pahomqtt.NewClient(opts)
	token := r.client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		r.client.Disconnect(0)
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, defaultConnectTimeout)
	}
	if err := token.Error(); err != nil {
		r.client.Disconnect(0)
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	r.setConnected(true)
	return r, nil
}

func buildClientOptions(cfg MQTTConfig) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()

	scheme := "tcp"
	if cfg.TLS {
		scheme = "ssl"
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}
	opts.AddBroker(fmt.Sprintf("%s://%s:%d", scheme, cfg.Host, cfg.Port))
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	if cfg.ReconnectMax > 0 {
		opts.SetMaxReconnectInterval(cfg.ReconnectMax)
	}
	opts.SetConnectTimeout(defaultConnectTimeout)
	opts.SetKeepAlive(defaultKeepAlive)
	return opts
}

func (r *MQTTRadio) handleConnect(c pahomqtt.Client) {
	r.setConnected(true)
	for _, topic := range []string{r.topics.RX(), r.topics.BroadcastRX()} {
		token := c.Subscribe(topic, r.cfg.QoS, func(_ pahomqtt.Client, m pahomqtt.Message) {
			r.handleMessage(m.Topic(), m.Payload())
		})
		// The handler runs on the client's goroutine; wait elsewhere.
		go func(topic string, token pahomqtt.Token) {
			if !token.WaitTimeout(defaultPublishTimeout) || token.Error() != nil {
				r.logger.Error("mqtt subscribe failed", "topic", topic,
					"error", fmt.Errorf("%w: %v", ErrSubscribeFailed, token.Error()))
				return
			}
			r.logger.Debug("mqtt subscribed", "topic", topic)
		}(topic, token)
	}
}

// handleMessage decodes an envelope and queues the message inside.
func (r *MQTTRadio) handleMessage(topic string, payload []byte) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("mqtt handler panic recovered", "topic", topic, "panic", p)
		}
	}()

	msg, env, err := wire.DecodeEnvelope(payload)
	if err != nil {
		r.logger.Warn("dropping gateway message", "topic", topic, "error", err)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.lastRSSI = env.RSSI
	select {
	case r.inbound <- msg:
	default:
		r.logger.Warn("dropping inbound message", "error", ErrInboundFull, "msg", msg.String())
	}
}

// Send publishes msg on the node's tx topic.
func (r *MQTTRadio) Send(msg *wire.Message) error {
	if !r.IsConnected() {
		return ErrNotConnected
	}
	data, err := wire.EncodeEnvelope(msg, 0, r.now())
	if err != nil {
		return err
	}
	token := r.client.Publish(r.topics.TX(), r.cfg.QoS, false, data)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}

// Poll reports whether inbound messages are waiting.
func (r *MQTTRadio) Poll() bool {
	return len(r.inbound) > 0
}

// Inbound returns the inbound message channel.
func (r *MQTTRadio) Inbound() <-chan *wire.Message {
	return r.inbound
}

// LastRSSI returns the signal strength of the last received frame.
func (r *MQTTRadio) LastRSSI() int8 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastRSSI
}

// IsConnected reports the last known connection state.
func (r *MQTTRadio) IsConnected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || !r.connected {
		return false
	}
	return r.client != nil && r.client.IsConnected()
}

func (r *MQTTRadio) setConnected(v bool) {
	r.mu.Lock()
	r.connected = v
	r.mu.Unlock()
}

// Close disconnects from the broker and closes the inbound channel.
func (r *MQTTRadio) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.connected = false
	close(r.inbound)
	r.mu.Unlock()

	if r.client != nil {
		r.client.Disconnect(defaultDisconnectQuiesce)
	}
	return nil
}
