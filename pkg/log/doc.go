// Package log provides protocol event logging for homewire nodes.
//
// This package defines the Logger interface and Event types that trace what
// a node sees and does on the radio: raw frames, decoded messages, channel
// and session state changes, and rejected input. It is separate from
// operational logging (slog): the protocol log is a machine-readable trace
// for debugging a pairing or configuration exchange after the fact.
//
// # Basic Usage
//
//	// Development: print events through slog
//	cfg.ProtocolLogger = log.NewSlogAdapter(slog.Default())
//
//	// Production: binary file
//	fl, _ := log.NewFileLogger("/var/log/homewire/switch.hwlog")
//	cfg.ProtocolLogger = fl
//
//	// Both
//	cfg.ProtocolLogger = log.NewMultiLogger(log.NewSlogAdapter(slog.Default()), fl)
//
// # File Format
//
// Log files are a stream of CBOR-encoded events with the .hwlog extension.
// The homewire-log tool prints and filters them.
package log
