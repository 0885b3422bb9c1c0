// Package core holds the room contracts shared by the registry, the
// session handler and the transports.
package core

//go:generate mockgen -destination=mocks/mocks.go -package=mocks github.com/dkeye/coderoom/internal/core BroadcastGroup,SignalConnection
