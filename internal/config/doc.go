// Package config loads the runner configuration.
//
// Values are resolved in order: built-in defaults, the YAML file, then
// HOMEWIRE_* environment variables. The result is validated before use.
package config
