// Package state stores per-user conversation records for Telegram bots.
// Backends hold opaque byte records with an idle TTL; callers own the encoding.
package state
