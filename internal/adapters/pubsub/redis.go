package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/coderoom/internal/core"
	"github.com/dkeye/coderoom/internal/domain"
)

// envelope is what travels on the Redis channel of a room.
type envelope struct {
	Room    domain.RoomName `json:"room"`
	Node    string          `json:"node"`
	Payload []byte          `json:"payload"`
}

// ResultHandler receives the outcome of delivering a relayed frame locally.
type ResultHandler func(room domain.RoomName, res core.PublishResult)

// RedisGroup fans events out to every process sharing a Redis server. Local
// subscribers are served directly on Send; other processes receive the frame
// through the room's channel and deliver it to their own subscribers.
type RedisGroup struct {
	local  *LocalGroup
	rdb    redis.UniversalClient
	prefix string
	node   string

	ready     chan struct{}
	readyOnce sync.Once
}

func NewRedisGroup(local *LocalGroup, rdb redis.UniversalClient, prefix string) *RedisGroup {
	return &RedisGroup{
		local:  local,
		rdb:    rdb,
		prefix: prefix,
		node:   uuid.NewString(),
		ready:  make(chan struct{}),
	}
}

func (g *RedisGroup) Subscribe(room domain.RoomName, sub core.Subscriber) {
	g.local.Subscribe(room, sub)
}

func (g *RedisGroup) Unsubscribe(room domain.RoomName, id domain.ConnectionID) {
	g.local.Unsubscribe(room, id)
}

// Send delivers locally, then publishes for the other processes. A publish
// failure is logged; local delivery has already happened.
func (g *RedisGroup) Send(ctx context.Context, room domain.RoomName, ev core.Event) core.PublishResult {
	frame, err := core.Encode(ev)
	if err != nil {
		log.Error().Err(err).Str("module", "pubsub.redis").Str("room", string(room)).Msg("encode event")
		return core.PublishResult{}
	}
	res := g.local.Deliver(room, frame)

	raw, err := json.Marshal(envelope{Room: room, Node: g.node, Payload: frame})
	if err != nil {
		log.Error().Err(err).Str("module", "pubsub.redis").Msg("marshal envelope")
		return res
	}
	if err := g.rdb.Publish(ctx, g.channel(room), raw).Err(); err != nil {
		log.Warn().Err(err).Str("module", "pubsub.redis").Str("room", string(room)).Msg("publish")
	}
	return res
}

// Ready is closed once Run holds its subscription.
func (g *RedisGroup) Ready() <-chan struct{} { return g.ready }

// Run relays frames published by other processes to local subscribers until
// ctx is done. It may be called again after it returns.
func (g *RedisGroup) Run(ctx context.Context, onResult ResultHandler) error {
	ps := g.rdb.PSubscribe(ctx, g.channel("*"))
	defer ps.Close()

	if _, err := ps.Receive(ctx); err != nil {
		return fmt.Errorf("psubscribe %s: %w", g.channel("*"), err)
	}
	g.readyOnce.Do(func() { close(g.ready) })
	log.Info().Str("module", "pubsub.redis").Str("node", g.node).Str("pattern", g.channel("*")).Msg("relay started")

	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "pubsub.redis").Msg("relay ctx done")
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				log.Warn().Err(err).Str("module", "pubsub.redis").Str("channel", msg.Channel).Msg("bad envelope")
				continue
			}
			if env.Node == g.node {
				continue
			}
			if env.Room == "" {
				env.Room = domain.RoomName(strings.TrimPrefix(msg.Channel, g.prefix))
			}
			res := g.local.Deliver(env.Room, env.Payload)
			if onResult != nil {
				onResult(env.Room, res)
			}
		}
	}
}

func (g *RedisGroup) channel(room domain.RoomName) string {
	return g.prefix + string(room)
}
