// Package orch drives per-connection sessions against the room registry
// and the broadcast group.
package orch

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/coderoom/internal/app"
	"github.com/dkeye/coderoom/internal/core"
	"github.com/dkeye/coderoom/internal/domain"
	"github.com/dkeye/coderoom/internal/metrics"
)

// disconnectTimeout bounds the teardown broadcast once the caller's context
// has been detached.
const disconnectTimeout = 5 * time.Second

type Orchestrator struct {
	Rooms   *app.Registry
	Group   core.BroadcastGroup
	Policy  app.Policy
	Metrics *metrics.Metrics

	gates roomGates

	mu   sync.RWMutex
	live map[domain.ConnectionID]*Session
}

func New(rooms *app.Registry, group core.BroadcastGroup, policy app.Policy, m *metrics.Metrics) *Orchestrator {
	return &Orchestrator{
		Rooms:   rooms,
		Group:   group,
		Policy:  policy,
		Metrics: m,
		live:    make(map[domain.ConnectionID]*Session),
	}
}

func (o *Orchestrator) track(s *Session) {
	o.mu.Lock()
	o.live[s.id] = s
	o.mu.Unlock()
}

func (o *Orchestrator) untrack(s *Session) {
	o.mu.Lock()
	if o.live[s.id] == s {
		delete(o.live, s.id)
	}
	o.mu.Unlock()
}

// Kick closes the connection of sid if it is open in room. The transport
// notices the closed connection and runs the session's Disconnect.
func (o *Orchestrator) Kick(room domain.RoomName, sid domain.ConnectionID) bool {
	o.mu.RLock()
	s, ok := o.live[sid]
	o.mu.RUnlock()
	if !ok || s.room != room {
		return false
	}
	log.Info().Str("module", "orch").Str("room", string(room)).Str("sid", string(sid)).Msg("kick")
	s.conn.Close()
	return true
}

// publish must be called with the room gate held.
func (o *Orchestrator) publish(ctx context.Context, room domain.RoomName, ev core.Event) {
	res := o.Group.Send(ctx, room, ev)
	o.Metrics.Broadcasts.WithLabelValues(string(ev.Action())).Inc()
	o.HandleResult(room, res)
}

// HandleResult applies the backpressure policy to every failed recipient.
// It also serves frames relayed from other processes.
func (o *Orchestrator) HandleResult(room domain.RoomName, res core.PublishResult) {
	if len(res.Dropped) == 0 {
		return
	}
	o.Metrics.DeliveriesDropped.Add(float64(len(res.Dropped)))
	if o.Policy == nil {
		return
	}
	for _, slow := range res.Dropped {
		switch o.Policy.OnBackPressure(room, slow) {
		case app.KickMember:
			log.Warn().Str("module", "orch").Str("room", string(room)).Str("sid", string(slow.ID)).Msg("kicking slow subscriber")
			slow.Conn.Close()
		case app.DropFrame, app.NoAction:
		}
	}
}
