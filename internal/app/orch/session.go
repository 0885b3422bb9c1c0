package orch

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/coderoom/internal/core"
	"github.com/dkeye/coderoom/internal/domain"
)

type State int32

const (
	Connecting State = iota
	Open
	Closed
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Open:
		return "open"
	case Closed:
		return "closed"
	}
	return "unknown"
}

// Session is the lifecycle of one connection: Connecting -> Open -> Closed.
// Subscription to the room's group starts at Connect; membership starts only
// with a join message.
type Session struct {
	o    *Orchestrator
	id   domain.ConnectionID
	room domain.RoomName
	conn core.SignalConnection
	log  zerolog.Logger

	state     atomic.Int32
	closeOnce sync.Once
}

// NewSession binds conn to room. The caller keeps ownership of conn.
func (o *Orchestrator) NewSession(room domain.RoomName, id domain.ConnectionID, conn core.SignalConnection) *Session {
	return &Session{
		o:    o,
		id:   id,
		room: room,
		conn: conn,
		log:  log.With().Str("module", "orch.session").Str("sid", string(id)).Str("room", string(room)).Logger(),
	}
}

func (s *Session) ID() domain.ConnectionID { return s.id }
func (s *Session) Room() domain.RoomName   { return s.room }
func (s *Session) State() State            { return State(s.state.Load()) }

// Connect subscribes the connection to its room's group.
func (s *Session) Connect() {
	if s.State() != Connecting {
		return
	}
	s.o.Group.Subscribe(s.room, core.Subscriber{ID: s.id, Conn: s.conn})
	s.o.track(s)
	if !s.state.CompareAndSwap(int32(Connecting), int32(Open)) {
		// Disconnect won the race; undo.
		s.o.untrack(s)
		s.o.Group.Unsubscribe(s.room, s.id)
		return
	}
	s.o.Metrics.SessionsOpen.Inc()
	s.log.Info().Msg("connected")
}

// Receive handles one raw client message. Undecodable input is logged and
// dropped; unknown actions are ignored.
func (s *Session) Receive(ctx context.Context, raw []byte) {
	if s.State() != Open {
		s.log.Warn().Stringer("state", s.State()).Msg("receive outside open state")
		return
	}
	in, err := core.DecodeInbound(raw)
	if err != nil {
		s.o.Metrics.InboundMalformed.Inc()
		s.log.Warn().Err(err).Int("len", len(raw)).Msg("dropping malformed message")
		return
	}

	switch in.Action {
	case core.ActionJoin:
		s.join(ctx, in.Username)
	case core.ActionCodeChange:
		s.codeChange(ctx, in.Code)
	default:
		s.log.Debug().Str("action", string(in.Action)).Msg("ignoring unknown action")
	}
}

func (s *Session) join(ctx context.Context, username string) {
	m := domain.NewMember(s.id, username)

	unlock := s.o.gates.lock(s.room)
	defer unlock()
	roster := s.o.Rooms.Join(s.room, m)
	s.o.publish(ctx, s.room, core.JoinedEvent{
		Clients:  roster,
		Username: m.Username,
		SocketID: s.id,
	})
	s.log.Info().Str("username", m.Username).Int("members", len(roster)).Msg("joined")
}

func (s *Session) codeChange(ctx context.Context, code string) {
	unlock := s.o.gates.lock(s.room)
	defer unlock()
	s.o.publish(ctx, s.room, core.CodeChangeEvent{Code: code})
}

// Disconnect unsubscribes, drops membership and tells the remaining
// subscribers. It is idempotent and runs to completion even when ctx is
// already canceled.
func (s *Session) Disconnect(ctx context.Context) {
	s.closeOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), disconnectTimeout)
		defer cancel()

		prev := State(s.state.Swap(int32(Closed)))
		if prev == Open {
			s.o.untrack(s)
			s.o.Group.Unsubscribe(s.room, s.id)
			s.o.Metrics.SessionsOpen.Dec()
		}

		unlock := s.o.gates.lock(s.room)
		defer unlock()
		remaining, removed := s.o.Rooms.RemoveMember(s.room, s.id)
		if removed {
			s.o.publish(ctx, s.room, core.DisconnectedEvent{SocketID: s.id})
		}
		s.log.Info().Bool("was_member", removed).Int("remaining", remaining).Msg("disconnected")
	})
}
