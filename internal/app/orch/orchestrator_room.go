package orch

import (
	"sync"

	"github.com/dkeye/coderoom/internal/domain"
)

// roomGates serializes mutate-then-send per room so that events reach
// subscribers in the order the registry changed. The registry lock itself is
// never held while sending.
type roomGates struct {
	mu    sync.Mutex
	gates map[domain.RoomName]*roomGate
}

type roomGate struct {
	mu   sync.Mutex
	refs int
}

func (g *roomGates) lock(room domain.RoomName) (unlock func()) {
	g.mu.Lock()
	if g.gates == nil {
		g.gates = make(map[domain.RoomName]*roomGate)
	}
	gt, ok := g.gates[room]
	if !ok {
		gt = &roomGate{}
		g.gates[room] = gt
	}
	gt.refs++
	g.mu.Unlock()

	gt.mu.Lock()
	return func() {
		gt.mu.Unlock()
		g.mu.Lock()
		gt.refs--
		if gt.refs == 0 {
			delete(g.gates, room)
		}
		g.mu.Unlock()
	}
}

func (g *roomGates) active() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.gates)
}
