package core

import "github.com/dkeye/Duet/internal/domain"

// Frame is one encoded outbound payload.
type Frame []byte

type SessionID string

// Connection abstracts a participant's transport endpoint.
// Owned by the adapter; the adapter must Close() it. Implementations
// must be pointer types: membership compares connections by identity.
type Connection interface {
	TrySend(Frame) error
	Close()
}

// PublishResult reports delivery stats to the orchestrator.
type PublishResult struct {
	SendTo  int
	Dropped []Connection
}

type RoomStats struct {
	Members   int `json:"members"`
	Rooms     int `json:"rooms"`
	OpenRooms int `json:"open_rooms"`
}

// RoomManager is the contract shared by the public and private channels.
// It owns membership but never touches transport resources.
type RoomManager interface {
	Connect(conn Connection) domain.RoomID
	Disconnect(conn Connection) (domain.RoomID, bool)
	FindRoom(conn Connection) (domain.RoomID, bool)
	Broadcast(room domain.RoomID, data Frame) PublishResult
	Greet(conn Connection, room domain.RoomID) PublishResult
	Stats() RoomStats
}
