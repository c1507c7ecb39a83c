// Package liveness provides agent heartbeats and the stale-claim reaper.
//
// Agents signal liveness by touching a per-agent heartbeat file; the
// reaper compares each lock record's holder against its heartbeat mtime
// and reclaims work from agents silent beyond the timeout. An agent with
// no heartbeat file at all is treated as silent, so crashed agents that
// never beat are still reaped.
package liveness
