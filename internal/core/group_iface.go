package core

import (
	"context"

	"github.com/dkeye/coderoom/internal/domain"
)

// Subscriber is one connection addressed by a room's group.
type Subscriber struct {
	ID   domain.ConnectionID
	Conn SignalConnection
}

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SentTo  int
	Dropped []Subscriber
}

// BroadcastGroup fans events out to every connection subscribed to a room,
// joined or not. Delivery is best-effort and isolated per recipient.
type BroadcastGroup interface {
	Subscribe(room domain.RoomName, sub Subscriber)
	Unsubscribe(room domain.RoomName, id domain.ConnectionID)
	Send(ctx context.Context, room domain.RoomName, ev Event) PublishResult
}
