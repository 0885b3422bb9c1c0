package app

import (
	"sync"

	"github.com/dkeye/coderoom/internal/core"
	"github.com/dkeye/coderoom/internal/domain"
	"github.com/rs/zerolog/log"
)

// Registry maps room names to membership tables. A room is present iff it
// has at least one member: it is created on first join and dropped in the
// same critical section that removes its last member.
type Registry struct {
	mu    sync.RWMutex
	rooms map[domain.RoomName]core.RoomService
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[domain.RoomName]core.RoomService)}
}

// EnsureRoom returns the registered room, creating an empty one if needed.
// An empty room created here is still dropped by the next RemoveMember
// that finds it empty.
func (r *Registry) EnsureRoom(name domain.RoomName) core.RoomService {
	r.mu.RLock()
	room, ok := r.rooms[name]
	r.mu.RUnlock()
	if ok {
		return room
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ensureLocked(name)
}

func (r *Registry) ensureLocked(name domain.RoomName) core.RoomService {
	if room, ok := r.rooms[name]; ok {
		return room
	}
	room := core.NewRoomService(name)
	r.rooms[name] = room
	log.Info().Str("module", "app.registry").Str("room", string(name)).Msg("room created")
	return room
}

// AddMember inserts or overwrites the member, creating the room if absent.
func (r *Registry) AddMember(name domain.RoomName, m domain.Member) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensureLocked(name).AddMember(m)
}

// Join adds the member and returns the roster that includes it, as one step.
func (r *Registry) Join(name domain.RoomName, m domain.Member) []core.MemberDTO {
	r.mu.Lock()
	defer r.mu.Unlock()
	room := r.ensureLocked(name)
	room.AddMember(m)
	return room.MembersSnapshot()
}

// RemoveMember is idempotent: removing a non-member, or from a missing room,
// reports removed=false.
func (r *Registry) RemoveMember(name domain.RoomName, id domain.ConnectionID) (remaining int, removed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[name]
	if !ok {
		return 0, false
	}
	removed = room.RemoveMember(id)
	remaining = room.MemberCount()
	if remaining == 0 {
		delete(r.rooms, name)
		log.Info().Str("module", "app.registry").Str("room", string(name)).Msg("room deleted")
	}
	return remaining, removed
}

// Snapshot returns the roster of name, empty if the room does not exist.
func (r *Registry) Snapshot(name domain.RoomName) []core.MemberDTO {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[name]
	if !ok {
		return []core.MemberDTO{}
	}
	return room.MembersSnapshot()
}

func (r *Registry) Lookup(name domain.RoomName) (core.RoomService, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[name]
	return room, ok
}

func (r *Registry) List() []core.RoomInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.RoomInfo, 0, len(r.rooms))
	for name, room := range r.rooms {
		out = append(out, core.RoomInfo{Name: name, MemberCount: room.MemberCount()})
	}
	return out
}

// Count is the number of live rooms.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// MemberTotal is the number of joined members across all rooms.
func (r *Registry) MemberTotal() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, room := range r.rooms {
		n += room.MemberCount()
	}
	return n
}
