/*
Package session serializes access to tool-call sessions.

A Manager wraps a ports.SessionStore with per-session mutexes (reference
counted so idle sessions leave nothing behind) and, optionally, a
distributed lock so several replicas can share one Redis backend.
*/
package session
