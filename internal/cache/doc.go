// Package cache stores simulation results on disk so unchanged traces are
// not replayed again.
//
// Entries are JSON files named by a SHA-256 key derived from the trace
// content and the dakko version, so editing a trace or upgrading the engine
// never serves a stale result. Each entry carries its own expiry; expired
// entries are removed when read or by Prune.
package cache
