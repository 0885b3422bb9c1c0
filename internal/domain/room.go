// Package domain contains entity without logic, just meta-data
package domain

// RoomName is the opaque key a connection addresses at establishment time.
// It is neither validated nor sanitized here.
type RoomName string

// ConnectionID identifies one live connection. Unique while the connection
// is live, never persisted.
type ConnectionID string
