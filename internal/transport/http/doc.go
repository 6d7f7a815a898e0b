// Package http provides the round trippers shared by every outgoing request:
// debug logging with secret masking, per-host User-Agent injection
// and bounded retries with a fixed pause.
package http
