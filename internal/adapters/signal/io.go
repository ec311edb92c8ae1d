package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dkeye/Duet/internal/app/orch"
	"github.com/dkeye/Duet/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

func (ctl *ChatWSController) writePump(ctx context.Context, c *WsConn) {
	ticker := time.NewTicker(ctl.pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(ctl.writeWait))
			return
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(ctl.writeWait)); err != nil {
				return
			}
		}
	}
}

// readPump owns the session: it joins, relays every inbound record, and
// leaves exactly once when the connection ends.
func (ctl *ChatWSController) readPump(ctx context.Context, cancel context.CancelFunc, s orch.Session, c *WsConn) {
	room, err := ctl.Orch.Join(s)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("sid", string(s.ID)).Msg("join")
		cancel()
		c.Close()
		return
	}
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(s.ID)).Msg("readPump closing")
		ctl.Orch.Leave(s)
		cancel()
		c.Close()
	}()

	c.conn.SetReadLimit(ctl.readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(ctl.pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(ctl.pongWait))
	})

	// Unblock ReadMessage when the session is canceled from outside.
	go func() {
		<-ctx.Done()
		c.Close()
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("module", "signal").Str("sid", string(s.ID)).Msg("readPump read error")
			}
			return
		}
		var payload domain.Payload
		if err := json.Unmarshal(data, &payload); err != nil || payload == nil {
			log.Warn().Str("module", "signal").Str("sid", string(s.ID)).Msg("bad json")
			continue
		}
		if err := ctl.Orch.OnMessage(s, room, payload); err != nil {
			log.Error().Err(err).Str("module", "signal").Str("sid", string(s.ID)).Msg("relay")
		}
	}
}
