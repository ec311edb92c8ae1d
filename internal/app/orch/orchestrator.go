package orch

import (
	"context"
	"errors"
	"fmt"

	"github.com/dkeye/Duet/internal/app"
	"github.com/dkeye/Duet/internal/core"
	"github.com/dkeye/Duet/internal/domain"
	"github.com/dkeye/Duet/internal/metrics"
	"github.com/rs/zerolog/log"
)

var ErrUnknownChannel = errors.New("unknown channel")

// Format selects how inbound chat records are relayed.
type Format string

const (
	// FormatEcho relays the inbound record verbatim.
	FormatEcho Format = "echo"
	// FormatPrefixed relays {"message": "<username>> <text>"}.
	FormatPrefixed Format = "prefixed"
)

const anonymous = "anonymous"

// Session is one accepted connection on one channel.
type Session struct {
	ID       core.SessionID
	Channel  domain.Channel
	Conn     core.Connection
	Username string
	Cancel   context.CancelFunc
}

type Orchestrator struct {
	Registry *app.Registry
	Rooms    map[domain.Channel]core.RoomManager
	Policy   app.Policy
	Metrics  *metrics.Recorder
	Format   Format
}

func New(public, private core.RoomManager) *Orchestrator {
	return &Orchestrator{
		Registry: app.NewRegistry(),
		Rooms: map[domain.Channel]core.RoomManager{
			domain.ChannelPublic:  public,
			domain.ChannelPrivate: private,
		},
		Policy: app.SimplePolicy{},
		Format: FormatEcho,
	}
}

func (o *Orchestrator) manager(ch domain.Channel) (core.RoomManager, error) {
	if m, ok := o.Rooms[ch]; ok && m != nil {
		return m, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownChannel, ch)
}

// Join connects the session and greets its room.
func (o *Orchestrator) Join(s Session) (domain.RoomID, error) {
	rooms, err := o.manager(s.Channel)
	if err != nil {
		return "", err
	}
	o.Registry.Bind(s.ID, s.Channel, s.Conn, s.Username, s.Cancel)

	room := rooms.Connect(s.Conn)
	o.Registry.UpdateRoom(s.ID, room)
	log.Info().Str("module", "orch").Str("sid", string(s.ID)).Str("channel", string(s.Channel)).Str("room", string(room)).Msg("joined")

	o.settle(s.Channel, rooms, rooms.Greet(s.Conn, room))
	return room, nil
}

// OnMessage relays one inbound record to the session's room.
func (o *Orchestrator) OnMessage(s Session, room domain.RoomID, payload domain.Payload) error {
	rooms, err := o.manager(s.Channel)
	if err != nil {
		return err
	}
	frame, err := o.render(s, payload)
	if err != nil {
		return err
	}
	o.Metrics.Inbound(s.Channel)
	o.settle(s.Channel, rooms, rooms.Broadcast(room, frame))
	return nil
}

// Leave disconnects the session and notifies whoever is left in its room.
// Safe to call more than once.
func (o *Orchestrator) Leave(s Session) {
	rooms, err := o.manager(s.Channel)
	if err != nil {
		return
	}
	room, ok := rooms.Disconnect(s.Conn)
	o.Registry.Unbind(s.ID, s.Conn)
	if !ok {
		return
	}
	log.Info().Str("module", "orch").Str("sid", string(s.ID)).Str("channel", string(s.Channel)).Str("room", string(room)).Msg("left")

	frame, err := core.Encode(domain.Notice{Message: domain.LeftText})
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("encode leave notice")
		return
	}
	o.settle(s.Channel, rooms, rooms.Broadcast(room, frame))
}

// Stats reports occupancy per channel.
func (o *Orchestrator) Stats() map[domain.Channel]core.RoomStats {
	out := make(map[domain.Channel]core.RoomStats, len(o.Rooms))
	for ch, m := range o.Rooms {
		out[ch] = m.Stats()
	}
	return out
}

// Shutdown cancels every live session.
func (o *Orchestrator) Shutdown() {
	n := o.Registry.CancelAll()
	log.Info().Str("module", "orch").Int("sessions", n).Msg("sessions canceled")
}

func (o *Orchestrator) render(s Session, payload domain.Payload) (core.Frame, error) {
	if o.Format != FormatPrefixed {
		return core.Encode(payload)
	}
	name, ok := payload.Text("username")
	if !ok || name == "" {
		name = o.Registry.Username(s.ID)
	}
	if name == "" {
		name = anonymous
	}
	text, _ := payload.Text("message")
	return core.Encode(domain.Prefixed(name, text))
}

// settle hands failed recipients to the policy. Membership is left alone;
// a closed connection's own session calls Leave.
func (o *Orchestrator) settle(ch domain.Channel, rooms core.RoomManager, res core.PublishResult) {
	o.Metrics.Publish(ch, res)
	if o.Policy == nil {
		return
	}
	for _, slow := range res.Dropped {
		switch o.Policy.OnSendFailure(rooms, slow) {
		case app.CloseConn:
			log.Warn().Str("module", "orch").Str("channel", string(ch)).Msg("closing unresponsive connection")
			slow.Close()
		case app.NoAction:
		}
	}
}
