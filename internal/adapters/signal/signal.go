package signal

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/dkeye/Duet/internal/app/orch"
	"github.com/dkeye/Duet/internal/config"
	"github.com/dkeye/Duet/internal/core"
	"github.com/dkeye/Duet/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// ChatWSController runs the session loop for each accepted websocket.
type ChatWSController struct {
	Orch *orch.Orchestrator

	upgrader   websocket.Upgrader
	readLimit  int64
	pingPeriod time.Duration
	pongWait   time.Duration
	writeWait  time.Duration
	sendBuffer int
}

func NewChatWSController(o *orch.Orchestrator, cfg *config.Config) *ChatWSController {
	return &ChatWSController{
		Orch: o,
		upgrader: websocket.Upgrader{
			CheckOrigin: originChecker(cfg.CORSAllow),
		},
		readLimit:  cfg.ReadLimit,
		pingPeriod: cfg.PingPeriod,
		pongWait:   cfg.PingPeriod * 10 / 9,
		writeWait:  cfg.WriteWait,
		sendBuffer: cfg.SendBuffer,
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}

// HandleChat upgrades the request and serves ch until the peer goes away
// or ctx is canceled.
func (ctl *ChatWSController) HandleChat(ctx context.Context, c *gin.Context, ch domain.Channel, username string) {
	sid := core.SessionID(uuid.NewString())
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("client", c.GetString("client_token")).
		Str("channel", string(ch)).Msg("new WS connection")

	ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	conn := NewWsConn(ws, ctl.sendBuffer)
	ctx, cancel := context.WithCancel(ctx)
	sess := orch.Session{
		ID:       sid,
		Channel:  ch,
		Conn:     conn,
		Username: username,
		Cancel:   cancel,
	}

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, sess, conn)
}
