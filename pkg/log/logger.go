package log

// Logger receives protocol events. Log is called from the device goroutine
// and from transport read loops, so implementations must be safe for
// concurrent use and return quickly.
type Logger interface {
	Log(event Event)
}

// NoopLogger drops every event.
type NoopLogger struct{}

func (NoopLogger) Log(Event) {}

// MultiLogger is a fan-out of loggers, called in order.
type MultiLogger []Logger

// NewMultiLogger drops nil entries, so optional sinks can be passed as is.
func NewMultiLogger(loggers ...Logger) MultiLogger {
	m := make(MultiLogger, 0, len(loggers))
	for _, l := range loggers {
		if l != nil {
			m = append(m, l)
		}
	}
	return m
}

func (m MultiLogger) Log(event Event) {
	for _, l := range m {
		l.Log(event)
	}
}

var (
	_ Logger = NoopLogger{}
	_ Logger = MultiLogger(nil)
	_ Logger = (*FileLogger)(nil)
)
