package core

import (
	"cmp"
	"slices"
	"sync"

	"github.com/dkeye/coderoom/internal/domain"
	"github.com/rs/zerolog/log"
)

type memberEntry struct {
	username string
	seq      uint64
}

// roomImpl is a threadsafe in-memory room.
// It never closes adapter-owned resources.
type roomImpl struct {
	name domain.RoomName

	mu      sync.RWMutex
	members map[domain.ConnectionID]memberEntry
	nextSeq uint64
}

func NewRoomService(name domain.RoomName) RoomService {
	return &roomImpl{
		name:    name,
		members: make(map[domain.ConnectionID]memberEntry),
	}
}

func (r *roomImpl) Name() domain.RoomName { return r.name }

func (r *roomImpl) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

// AddMember inserts or renames. A rename keeps the roster position.
func (r *roomImpl) AddMember(m domain.Member) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.members[m.ID]
	if !ok {
		r.nextSeq++
		e.seq = r.nextSeq
	}
	e.username = m.Username
	r.members[m.ID] = e
	log.Info().Str("module", "core.room").Str("room", string(r.name)).Str("sid", string(m.ID)).Str("username", m.Username).Msg("member added")
}

func (r *roomImpl) RemoveMember(id domain.ConnectionID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[id]; !ok {
		return false
	}
	delete(r.members, id)
	log.Info().Str("module", "core.room").Str("room", string(r.name)).Str("sid", string(id)).Msg("member removed")
	return true
}

// MembersSnapshot returns the roster in join order.
func (r *roomImpl) MembersSnapshot() []MemberDTO {
	r.mu.RLock()
	type row struct {
		dto MemberDTO
		seq uint64
	}
	rows := make([]row, 0, len(r.members))
	for id, e := range r.members {
		rows = append(rows, row{dto: MemberDTO{SocketID: id, Username: e.username}, seq: e.seq})
	}
	r.mu.RUnlock()

	slices.SortFunc(rows, func(a, b row) int { return cmp.Compare(a.seq, b.seq) })
	out := make([]MemberDTO, len(rows))
	for i, rw := range rows {
		out[i] = rw.dto
	}
	return out
}
