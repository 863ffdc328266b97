// Package logging builds the operational slog logger from configuration.
package logging
