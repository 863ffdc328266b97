// Package persistence keeps the device storage image across restarts.
//
// FileStorage holds the image in memory and writes it as a JSON state file
// on Save. SQLiteStorage writes every byte through to a SQLite table. Both
// implement list.Storage.
package persistence
