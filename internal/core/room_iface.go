package core

import (
	"github.com/dkeye/coderoom/internal/domain"
)

// MemberDTO is one roster entry as sent to clients.
type MemberDTO struct {
	SocketID domain.ConnectionID `json:"socketId"`
	Username string              `json:"username"`
}

// RoomService is the membership table of one room.
// It owns the membership set but never touches transport resources.
type RoomService interface {
	Name() domain.RoomName
	MemberCount() int
	MembersSnapshot() []MemberDTO

	AddMember(m domain.Member)
	// RemoveMember reports whether id was a member.
	RemoveMember(id domain.ConnectionID) bool
}

type RoomInfo struct {
	Name        domain.RoomName `json:"name"`
	MemberCount int             `json:"client_count"`
}
