package app

import (
	"context"
	"sync"

	"github.com/dkeye/Duet/internal/core"
	"github.com/dkeye/Duet/internal/domain"
	"github.com/rs/zerolog/log"
)

type sessionEntry struct {
	Channel  domain.Channel
	Room     domain.RoomID
	Conn     core.Connection
	Username string
	Cancel   context.CancelFunc
}

// Registry tracks live sessions by id. It never owns membership; the
// room managers do.
type Registry struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*sessionEntry
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[core.SessionID]*sessionEntry),
	}
}

func (r *Registry) Bind(
	sid core.SessionID,
	ch domain.Channel,
	conn core.Connection,
	username string,
	cancel context.CancelFunc,
) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sid] = &sessionEntry{
		Channel:  ch,
		Conn:     conn,
		Username: username,
		Cancel:   cancel,
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("channel", string(ch)).Msg("bound session")
}

func (r *Registry) UpdateRoom(sid core.SessionID, room domain.RoomID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.sessions[sid]
	if !ok {
		return false
	}
	entry.Room = room
	return true
}

// RoomOf reports the room a session was placed in.
func (r *Registry) RoomOf(sid core.SessionID) (domain.Channel, domain.RoomID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.sessions[sid]
	if !ok || entry.Room == "" {
		return "", "", false
	}
	return entry.Channel, entry.Room, true
}

func (r *Registry) Username(sid core.SessionID) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[sid]; ok {
		return e.Username
	}
	return ""
}

// Unbind removes sid only while it still maps to conn, so a stale
// session cannot evict a newer one that reused the id.
func (r *Registry) Unbind(sid core.SessionID, conn core.Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[sid]; ok && e.Conn == conn {
		delete(r.sessions, sid)
		log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("unbind session")
	}
}

func (r *Registry) Count() map[domain.Channel]int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := map[domain.Channel]int{domain.ChannelPublic: 0, domain.ChannelPrivate: 0}
	for _, e := range r.sessions {
		out[e.Channel]++
	}
	return out
}

func (r *Registry) Cancel(sid core.SessionID) bool {
	r.mu.RLock()
	e, ok := r.sessions[sid]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("canceled session")
	return true
}

// CancelAll cancels every live session; used on shutdown.
func (r *Registry) CancelAll() int {
	r.mu.RLock()
	cancels := make([]context.CancelFunc, 0, len(r.sessions))
	for _, e := range r.sessions {
		if e.Cancel != nil {
			cancels = append(cancels, e.Cancel)
		}
	}
	r.mu.RUnlock()
	for _, c := range cancels {
		c()
	}
	return len(cancels)
}
