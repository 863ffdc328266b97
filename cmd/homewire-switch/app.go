package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/homewire/homewire-go/internal/config"
	"github.com/homewire/homewire-go/pkg/actuator"
	"github.com/homewire/homewire-go/pkg/device"
	"github.com/homewire/homewire-go/pkg/list"
	"github.com/homewire/homewire-go/pkg/log"
	"github.com/homewire/homewire-go/pkg/persistence"
	"github.com/homewire/homewire-go/pkg/transport"
	"github.com/homewire/homewire-go/pkg/wire"
)

// pollInterval is how often changed channels are reported.
const pollInterval = 50 * time.Millisecond

var (
	errRadioClosed = errors.New("radio closed")
	errStopped     = errors.New("device loop stopped")
)

// SwitchDevice is the device type run by this command.
type SwitchDevice = device.MultiChannelDevice[*actuator.SwitchChannel]

// saver is storage that must be flushed explicitly.
type saver interface {
	Save() error
}

// App owns the device and runs it on a single goroutine.
type App struct {
	cfg       *config.Config
	logger    *slog.Logger
	sessionID string

	dev    *SwitchDevice
	store  list.Storage
	fresh  bool
	radio  transport.Radio
	output *actuator.MemoryOutput
	plog   log.Logger

	indicator *logIndicator
	activity  *logActivity

	closers []io.Closer
	cmds    chan func()
	done    chan struct{}
	stop    sync.Once
}

// newApp builds storage, protocol logging, the radio and the device.
// The radio is built by the caller-supplied function so tests can use
// a loopback.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, radio func(context.Context, *App) (transport.Radio, error)) (*App, error) {
	a := &App{
		cfg:       cfg,
		logger:    logger,
		sessionID: uuid.NewString(),
		output:    actuator.NewMemoryOutput(),
		indicator: &logIndicator{logger: logger},
		activity:  &logActivity{logger: logger},
		cmds:      make(chan func()),
		done:      make(chan struct{}),
	}

	if err := a.openProtocolLog(); err != nil {
		return nil, err
	}

	factory := func() *actuator.SwitchChannel {
		return actuator.NewSwitchChannel(cfg.Device.PeerCount, a.output, nil)
	}
	size := device.StorageSize(uint16(cfg.Device.BaseAddress), cfg.Device.Channels, factory)
	if err := a.openStorage(size); err != nil {
		a.Close()
		return nil, err
	}

	dev, err := device.New(device.Config{
		BaseAddress:    uint16(cfg.Device.BaseAddress),
		Channels:       cfg.Device.Channels,
		Info:           cfg.DeviceInfo(),
		Indicator:      a.indicator,
		Activity:       a.activity,
		Logger:         logger,
		ProtocolLogger: a.plog,
		SessionID:      a.sessionID,
		SessionTimeout: cfg.Device.SessionTimeout,
	}, a.store, factory)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("creating device: %w", err)
	}
	a.dev = dev

	if a.fresh {
		logger.Info("storage is empty, writing factory defaults")
		if err := dev.FirstInit(); err != nil {
			a.Close()
			return nil, fmt.Errorf("writing factory defaults: %w", err)
		}
		a.persist()
	}

	r, err := radio(ctx, a)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.radio = r
	a.closers = append(a.closers, r)

	dev.Init(r, cfg.NodeID(), cfg.Serial())
	for _, n := range cfg.Device.LowActive {
		if ch, ok := dev.Channel(n); ok {
			ch.SetLowActive(true)
		}
	}
	return a, nil
}

func (a *App) openProtocolLog() error {
	loggers := []log.Logger{log.NewSlogAdapter(a.logger)}
	if path := a.cfg.Logging.ProtocolLog; path != "" {
		fl, err := log.NewFileLogger(path)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, fl)
		loggers = append(loggers, fl)
		a.logger.Info("protocol log enabled", "path", path, "session_id", a.sessionID)
	}
	a.plog = log.NewMultiLogger(loggers...)
	return nil
}

func (a *App) openStorage(size int) error {
	sc := a.cfg.Storage
	switch sc.Backend {
	case config.StorageFile:
		s, fresh, err := persistence.OpenFileStorage(sc.Path, size)
		if err != nil {
			return fmt.Errorf("opening file storage: %w", err)
		}
		a.store, a.fresh = s, fresh
	case config.StorageSQLite:
		s, fresh, err := persistence.OpenSQLiteStorage(persistence.SQLiteConfig{
			Path:        sc.Path,
			Size:        size,
			BusyTimeout: sc.BusyTimeout,
		})
		if err != nil {
			return fmt.Errorf("opening sqlite storage: %w", err)
		}
		a.store, a.fresh = s, fresh
		a.closers = append(a.closers, s)
	default:
		a.store, a.fresh = list.NewMemory(size), true
	}
	a.logger.Info("storage opened", "backend", sc.Backend, "size", size, "fresh", a.fresh)
	return nil
}

// openRadio builds the configured transport.
func openRadio(ctx context.Context, a *App) (transport.Radio, error) {
	tc := a.cfg.Transport
	switch tc.Backend {
	case config.TransportStream:
		return transport.DialStream(ctx, tc.Address, transport.NewBackoff(0, 0), a.logger,
			transport.WithFrameLog(a.plog, a.sessionID))
	case config.TransportMQTT:
		return transport.ConnectMQTT(a.cfg.MQTTTransport(), a.cfg.NodeID(), a.logger)
	default:
		lb := transport.NewLoopback()
		lb.OnSend(func(m *wire.Message) {
			a.logger.Info("radio tx", "msg", m.String())
		})
		return lb, nil
	}
}

// Device returns the device. Only touch it from functions passed to Do.
func (a *App) Device() *SwitchDevice {
	return a.dev
}

// Output returns the recorded pin levels.
func (a *App) Output() *actuator.MemoryOutput {
	return a.output
}

// Radio returns the transport.
func (a *App) Radio() transport.Radio {
	return a.radio
}

// Do runs fn on the device goroutine and waits for it.
func (a *App) Do(fn func()) error {
	finished := make(chan struct{})
	select {
	case a.cmds <- func() { fn(); close(finished) }:
	case <-a.done:
		return errStopped
	}
	<-finished
	return nil
}

// Run processes inbound messages, console commands and the poll ticker
// until ctx is done or the radio closes.
func (a *App) Run(ctx context.Context) error {
	defer a.stop.Do(func() { close(a.done) })

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case msg, ok := <-a.radio.Inbound():
			if !ok {
				return errRadioClosed
			}
			a.dev.Process(msg)
			a.dev.Poll()
			if msg.Type == wire.TypeConfig {
				a.persist()
			}

		case fn := <-a.cmds:
			fn()
			a.dev.Poll()

		case <-ticker.C:
			a.dev.Poll()
			if lb, ok := a.radio.(*transport.Loopback); ok {
				lb.TakeSent()
			}
		}
	}
}

// persist flushes storage that is not write-through.
func (a *App) persist() {
	s, ok := a.store.(saver)
	if !ok {
		return
	}
	if err := s.Save(); err != nil {
		a.logger.Error("failed to save storage", "error", err)
	}
}

// Close saves storage and releases the radio, storage and protocol log.
func (a *App) Close() error {
	a.persist()
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// logIndicator reports indicator changes in the log.
type logIndicator struct {
	logger *slog.Logger
	mu     sync.Mutex
	mode   device.IndicatorMode
}

func (i *logIndicator) Set(mode device.IndicatorMode) {
	i.mu.Lock()
	i.mode = mode
	i.mu.Unlock()
	i.logger.Info("indicator", "mode", mode.String())
}

func (i *logIndicator) Mode() device.IndicatorMode {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.mode
}

// logActivity records how long the device was asked to stay awake.
type logActivity struct {
	logger *slog.Logger
	mu     sync.Mutex
	until  time.Time
}

func (a *logActivity) StayAwake(d time.Duration) {
	a.mu.Lock()
	a.until = time.Now().Add(d)
	a.mu.Unlock()
	a.logger.Info("staying awake", "duration", d)
}

func (a *logActivity) Until() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.until
}

var (
	_ device.Indicator = (*logIndicator)(nil)
	_ device.Activity  = (*logActivity)(nil)
)
