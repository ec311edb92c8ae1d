package app

import (
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/dkeye/Duet/internal/core"
	"github.com/dkeye/Duet/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// TokenFunc produces room tokens. Tokens must not collide.
type TokenFunc func() domain.RoomID

// ChooseFunc picks an index in [0, n).
type ChooseFunc func(n int) int

func UUIDToken() domain.RoomID { return domain.RoomID(uuid.NewString()) }

func RandomChoice(n int) int { return rand.IntN(n) }

type PrivateOption func(*PrivateRoomManager)

func WithTokenFunc(fn TokenFunc) PrivateOption {
	return func(m *PrivateRoomManager) { m.token = fn }
}

func WithChooseFunc(fn ChooseFunc) PrivateOption {
	return func(m *PrivateRoomManager) { m.choose = fn }
}

// PrivateRoomManager pairs connections two at a time. Rooms with a
// single occupant are filled before new rooms are opened, and a room
// is deleted the moment its last occupant leaves.
type PrivateRoomManager struct {
	mu     sync.Mutex
	rooms  map[domain.RoomID]*pair
	token  TokenFunc
	choose ChooseFunc
}

func NewPrivateRoomManager(opts ...PrivateOption) *PrivateRoomManager {
	m := &PrivateRoomManager{
		rooms:  make(map[domain.RoomID]*pair),
		token:  UUIDToken,
		choose: RandomChoice,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *PrivateRoomManager) Connect(conn core.Connection) domain.RoomID {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.findLocked(conn); ok {
		return id
	}

	if open := m.openRoomsLocked(); len(open) > 0 {
		id := open[m.choose(len(open))]
		m.rooms[id].add(conn)
		log.Debug().Str("module", "app.private").Str("room", string(id)).Msg("paired")
		return id
	}

	id := m.token()
	for _, taken := m.rooms[id]; taken; _, taken = m.rooms[id] {
		id = m.token()
	}
	r := &pair{}
	r.add(conn)
	m.rooms[id] = r
	log.Debug().Str("module", "app.private").Str("room", string(id)).Int("rooms", len(m.rooms)).Msg("room opened")
	return id
}

func (m *PrivateRoomManager) Disconnect(conn core.Connection) (domain.RoomID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.findLocked(conn)
	if !ok {
		return "", false
	}
	r := m.rooms[id]
	r.remove(conn)
	if r.len() == 0 {
		delete(m.rooms, id)
		log.Debug().Str("module", "app.private").Str("room", string(id)).Msg("room closed")
	}
	return id, true
}

func (m *PrivateRoomManager) FindRoom(conn core.Connection) (domain.RoomID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findLocked(conn)
}

func (m *PrivateRoomManager) Broadcast(room domain.RoomID, data core.Frame) core.PublishResult {
	members, ok := m.snapshot(room)
	if !ok {
		return core.PublishResult{}
	}
	return core.Fanout(members, data)
}

func (m *PrivateRoomManager) Greet(conn core.Connection, room domain.RoomID) core.PublishResult {
	members, ok := m.snapshot(room)
	if !ok {
		return core.PublishResult{}
	}
	return core.Greet(members, conn)
}

func (m *PrivateRoomManager) Stats() core.RoomStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := core.RoomStats{Rooms: len(m.rooms)}
	for _, r := range m.rooms {
		st.Members += r.len()
		if r.len() == 1 {
			st.OpenRooms++
		}
	}
	return st
}

// Members returns a copy of the occupants of room in join order.
func (m *PrivateRoomManager) Members(room domain.RoomID) []core.Connection {
	members, _ := m.snapshot(room)
	return members
}

func (m *PrivateRoomManager) snapshot(room domain.RoomID) ([]core.Connection, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[room]
	if !ok {
		return nil, false
	}
	return r.members(), true
}

func (m *PrivateRoomManager) findLocked(conn core.Connection) (domain.RoomID, bool) {
	for id, r := range m.rooms {
		if r.has(conn) {
			return id, true
		}
	}
	return "", false
}

// openRoomsLocked lists single-occupant rooms in token order.
func (m *PrivateRoomManager) openRoomsLocked() []domain.RoomID {
	var open []domain.RoomID
	for id, r := range m.rooms {
		if r.len() == 1 {
			open = append(open, id)
		}
	}
	slices.Sort(open)
	return open
}
