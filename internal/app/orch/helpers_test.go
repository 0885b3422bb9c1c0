package orch

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dkeye/coderoom/internal/adapters/pubsub"
	"github.com/dkeye/coderoom/internal/app"
	"github.com/dkeye/coderoom/internal/core"
	"github.com/dkeye/coderoom/internal/domain"
	"github.com/dkeye/coderoom/internal/metrics"
)

// fakeConn records delivered frames.
type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
	full   bool
	closed int
}

func (c *fakeConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.full {
		return core.ErrBackpressure
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	c.closed++
	c.mu.Unlock()
}

func (c *fakeConn) events(t *testing.T) []map[string]any {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]map[string]any, 0, len(c.frames))
	for _, f := range c.frames {
		var m map[string]any
		require.NoError(t, json.Unmarshal(f, &m))
		out = append(out, m)
	}
	return out
}

func (c *fakeConn) closedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func newLocalOrchestrator(policy app.Policy) (*Orchestrator, *pubsub.LocalGroup) {
	reg := app.NewRegistry()
	group := pubsub.NewLocalGroup()
	return New(reg, group, policy, metrics.New(reg)), group
}

// open connects a fresh session on conn.
func open(o *Orchestrator, room domain.RoomName, id domain.ConnectionID, conn core.SignalConnection) *Session {
	s := o.NewSession(room, id, conn)
	s.Connect()
	return s
}

func clientsOf(t *testing.T, ev map[string]any) []map[string]any {
	t.Helper()
	raw, ok := ev["clients"].([]any)
	require.True(t, ok, "clients missing in %v", ev)
	out := make([]map[string]any, 0, len(raw))
	for _, c := range raw {
		out = append(out, c.(map[string]any))
	}
	return out
}
