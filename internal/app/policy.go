package app

import "github.com/dkeye/Duet/internal/core"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	CloseConn
)

// Policy decides what happens to a recipient whose send failed.
type Policy interface {
	OnSendFailure(room core.RoomManager, conn core.Connection) BackpressureAction
}

type SimplePolicy struct{}

// OnSendFailure closes the transport. The connection's own session then
// notices and leaves; membership is never changed here.
func (SimplePolicy) OnSendFailure(core.RoomManager, core.Connection) BackpressureAction {
	return CloseConn
}
