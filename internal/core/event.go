package core

import (
	"encoding/json"
	"fmt"

	"github.com/dkeye/coderoom/internal/domain"
)

type Action string

const (
	ActionJoin         Action = "join"
	ActionJoined       Action = "joined"
	ActionDisconnected Action = "disconnected"
	ActionCodeChange   Action = "code-change"
)

// Event is an outbound room event. The set of implementations is closed.
type Event interface {
	Action() Action
	wire() any
}

// JoinedEvent carries the full roster after a join.
type JoinedEvent struct {
	Clients  []MemberDTO
	Username string
	SocketID domain.ConnectionID
}

// DisconnectedEvent announces a departed member.
type DisconnectedEvent struct {
	SocketID domain.ConnectionID
}

// CodeChangeEvent relays a code payload verbatim.
type CodeChangeEvent struct {
	Code string
}

func (JoinedEvent) Action() Action       { return ActionJoined }
func (DisconnectedEvent) Action() Action { return ActionDisconnected }
func (CodeChangeEvent) Action() Action   { return ActionCodeChange }

func (e JoinedEvent) wire() any {
	clients := e.Clients
	if clients == nil {
		clients = []MemberDTO{}
	}
	return struct {
		Action   Action              `json:"action"`
		Clients  []MemberDTO         `json:"clients"`
		Username string              `json:"username"`
		SocketID domain.ConnectionID `json:"socket_id"`
	}{ActionJoined, clients, e.Username, e.SocketID}
}

func (e DisconnectedEvent) wire() any {
	return struct {
		Action   Action              `json:"action"`
		SocketID domain.ConnectionID `json:"socket_id"`
	}{ActionDisconnected, e.SocketID}
}

func (e CodeChangeEvent) wire() any {
	return struct {
		Action Action `json:"action"`
		Code   string `json:"code"`
	}{ActionCodeChange, e.Code}
}

// Encode renders ev in its client wire form.
func Encode(ev Event) (Frame, error) {
	b, err := json.Marshal(ev.wire())
	if err != nil {
		return nil, fmt.Errorf("encode %s event: %w", ev.Action(), err)
	}
	return b, nil
}
