package app

import (
	"slices"
	"sync"

	"github.com/dkeye/Duet/internal/core"
	"github.com/dkeye/Duet/internal/domain"
	"github.com/rs/zerolog/log"
)

// PublicRoomManager keeps one unbounded group in join order.
type PublicRoomManager struct {
	mu      sync.Mutex
	members []core.Connection
}

func NewPublicRoomManager() *PublicRoomManager {
	return &PublicRoomManager{}
}

// Connect appends conn and pushes the new participant count to every
// member. The count is sent under the lock so every member observes
// counts in membership order.
func (p *PublicRoomManager) Connect(conn core.Connection) domain.RoomID {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !slices.Contains(p.members, conn) {
		p.members = append(p.members, conn)
	}
	p.pushCounterLocked()
	log.Debug().Str("module", "app.public").Int("members", len(p.members)).Msg("member connected")
	return domain.PublicRoom
}

func (p *PublicRoomManager) Disconnect(conn core.Connection) (domain.RoomID, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := slices.Index(p.members, conn)
	if i < 0 {
		return "", false
	}
	p.members = slices.Delete(p.members, i, i+1)
	p.pushCounterLocked()
	log.Debug().Str("module", "app.public").Int("members", len(p.members)).Msg("member disconnected")
	return domain.PublicRoom, true
}

func (p *PublicRoomManager) FindRoom(conn core.Connection) (domain.RoomID, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if slices.Contains(p.members, conn) {
		return domain.PublicRoom, true
	}
	return "", false
}

func (p *PublicRoomManager) Broadcast(room domain.RoomID, data core.Frame) core.PublishResult {
	members, ok := p.snapshot(room)
	if !ok {
		return core.PublishResult{}
	}
	return core.Fanout(members, data)
}

func (p *PublicRoomManager) Greet(conn core.Connection, room domain.RoomID) core.PublishResult {
	members, ok := p.snapshot(room)
	if !ok {
		return core.PublishResult{}
	}
	return core.Greet(members, conn)
}

func (p *PublicRoomManager) Stats() core.RoomStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return core.RoomStats{Members: len(p.members), Rooms: 1}
}

func (p *PublicRoomManager) snapshot(room domain.RoomID) ([]core.Connection, bool) {
	if room != domain.PublicRoom {
		return nil, false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.members), true
}

// pushCounterLocked sends the current size to every member; p.mu must be held.
func (p *PublicRoomManager) pushCounterLocked() {
	frame, err := core.Encode(domain.NewCounter(len(p.members)))
	if err != nil {
		log.Error().Err(err).Str("module", "app.public").Msg("encode counter")
		return
	}
	core.Fanout(p.members, frame)
}
