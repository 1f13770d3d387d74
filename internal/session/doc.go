// Package session implements the session registry and the per-session
// command pipeline.
//
// A session is a live conversation: it owns a bounded inbound command
// queue and a bounded outbound update queue. Submissions get an
// immediate synchronous reply; the background worker independently
// drains each session's inbound queue and pushes exactly one update
// per command, in order. Ordering holds per session only.
package session
