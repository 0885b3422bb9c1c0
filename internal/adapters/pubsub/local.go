// Package pubsub implements core.BroadcastGroup, in-process and across
// processes through Redis.
package pubsub

import (
	"context"
	"sync"

	"github.com/dkeye/coderoom/internal/core"
	"github.com/dkeye/coderoom/internal/domain"
	"github.com/rs/zerolog/log"
)

// LocalGroup addresses the connections subscribed in this process.
type LocalGroup struct {
	mu     sync.RWMutex
	groups map[domain.RoomName]map[domain.ConnectionID]core.SignalConnection
}

func NewLocalGroup() *LocalGroup {
	return &LocalGroup{groups: make(map[domain.RoomName]map[domain.ConnectionID]core.SignalConnection)}
}

func (g *LocalGroup) Subscribe(room domain.RoomName, sub core.Subscriber) {
	g.mu.Lock()
	defer g.mu.Unlock()
	subs, ok := g.groups[room]
	if !ok {
		subs = make(map[domain.ConnectionID]core.SignalConnection)
		g.groups[room] = subs
	}
	subs[sub.ID] = sub.Conn
	log.Debug().Str("module", "pubsub.local").Str("room", string(room)).Str("sid", string(sub.ID)).Msg("subscribed")
}

func (g *LocalGroup) Unsubscribe(room domain.RoomName, id domain.ConnectionID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	subs, ok := g.groups[room]
	if !ok {
		return
	}
	delete(subs, id)
	if len(subs) == 0 {
		delete(g.groups, room)
	}
	log.Debug().Str("module", "pubsub.local").Str("room", string(room)).Str("sid", string(id)).Msg("unsubscribed")
}

func (g *LocalGroup) Send(_ context.Context, room domain.RoomName, ev core.Event) core.PublishResult {
	frame, err := core.Encode(ev)
	if err != nil {
		log.Error().Err(err).Str("module", "pubsub.local").Str("room", string(room)).Msg("encode event")
		return core.PublishResult{}
	}
	return g.Deliver(room, frame)
}

// Deliver pushes an encoded frame to every local subscriber of room. The
// subscriber set is copied under the lock and sent to outside it; one failed
// recipient does not stop the others.
func (g *LocalGroup) Deliver(room domain.RoomName, frame core.Frame) core.PublishResult {
	g.mu.RLock()
	subs := g.groups[room]
	targets := make([]core.Subscriber, 0, len(subs))
	for id, conn := range subs {
		targets = append(targets, core.Subscriber{ID: id, Conn: conn})
	}
	g.mu.RUnlock()

	res := core.PublishResult{}
	for _, t := range targets {
		if err := t.Conn.TrySend(frame); err != nil {
			res.Dropped = append(res.Dropped, t)
			continue
		}
		res.SentTo++
	}
	log.Debug().Str("module", "pubsub.local").Str("room", string(room)).Int("sent_to", res.SentTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}

// Subscribers is the number of local subscribers of room.
func (g *LocalGroup) Subscribers(room domain.RoomName) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.groups[room])
}
