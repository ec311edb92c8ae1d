package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	router "github.com/dkeye/Duet/internal/adapters/http"
	"github.com/dkeye/Duet/internal/app"
	"github.com/dkeye/Duet/internal/app/orch"
	"github.com/dkeye/Duet/internal/config"
	"github.com/dkeye/Duet/internal/core"
	"github.com/dkeye/Duet/internal/domain"
	"github.com/dkeye/Duet/internal/metrics"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	srv  *httptest.Server
	orch *orch.Orchestrator
}

func newHarness(t *testing.T, format orch.Format) *harness {
	t.Helper()
	cfg := &config.Config{
		Mode:          "release",
		StaticPath:    t.TempDir(),
		ReadLimit:     32768,
		PingPeriod:    time.Minute,
		WriteWait:     time.Second,
		SendBuffer:    16,
		Secret:        "test-secret",
		CORSAllow:     []string{"*"},
		MessageFormat: string(format),
	}
	o := orch.New(app.NewPublicRoomManager(), app.NewPrivateRoomManager())
	o.Format = format
	reg := prometheus.NewRegistry()
	o.Metrics = metrics.New(reg, o.Rooms)

	ctx, cancel := context.WithCancel(context.Background())
	srv := httptest.NewServer(router.SetupRouter(ctx, cfg, o, reg))
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return &harness{srv: srv, orch: o}
}

func (h *harness) dial(t *testing.T, ch domain.Channel, jar http.CookieJar) *websocket.Conn {
	t.Helper()
	d := websocket.Dialer{Jar: jar, HandshakeTimeout: 2 * time.Second}
	url := "ws" + strings.TrimPrefix(h.srv.URL, "http") + "/chat/" + string(ch)
	ws, _, err := d.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func read(t *testing.T, ws *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	var m map[string]any
	require.NoError(t, ws.ReadJSON(&m))
	return m
}

func (h *harness) stats(t *testing.T) map[domain.Channel]core.RoomStats {
	t.Helper()
	resp, err := http.Get(h.srv.URL + "/api/stats")
	require.NoError(t, err)
	defer resp.Body.Close()
	var body struct {
		Rooms map[domain.Channel]core.RoomStats `json:"rooms"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Rooms
}

func TestPrivateChat_EndToEnd(t *testing.T) {
	h := newHarness(t, orch.FormatEcho)

	a := h.dial(t, domain.ChannelPrivate, nil)
	assert.Equal(t, domain.WelcomeText, read(t, a)["greeting"])

	b := h.dial(t, domain.ChannelPrivate, nil)
	assert.Equal(t, domain.WelcomeText, read(t, b)["greeting"])
	assert.Equal(t, domain.JoinedText, read(t, a)["greeting"])

	require.NoError(t, b.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, b.WriteJSON(map[string]string{"username": "bob", "message": "hi"}))
	for _, ws := range []*websocket.Conn{a, b} {
		got := read(t, ws)
		assert.Equal(t, "bob", got["username"])
		assert.Equal(t, "hi", got["message"])
	}

	require.NoError(t, b.Close())
	assert.Equal(t, domain.LeftText, read(t, a)["message"])
	assert.Equal(t, core.RoomStats{Members: 1, Rooms: 1, OpenRooms: 1}, h.stats(t)[domain.ChannelPrivate])
}

func TestPublicChat_Counter(t *testing.T) {
	h := newHarness(t, orch.FormatEcho)

	a := h.dial(t, domain.ChannelPublic, nil)
	assert.Equal(t, "1", read(t, a)["counter"])
	assert.Equal(t, domain.WelcomeText, read(t, a)["greeting"])

	b := h.dial(t, domain.ChannelPublic, nil)
	assert.Equal(t, "2", read(t, b)["counter"])
	assert.Equal(t, domain.WelcomeText, read(t, b)["greeting"])
	assert.Equal(t, "2", read(t, a)["counter"])
	assert.Equal(t, domain.JoinedText, read(t, a)["greeting"])

	require.NoError(t, b.Close())
	assert.Equal(t, "1", read(t, a)["counter"])
	assert.Equal(t, domain.LeftText, read(t, a)["message"])
}

func TestPrefixedChat_UsesSessionUsername(t *testing.T) {
	h := newHarness(t, orch.FormatPrefixed)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar}

	resp, err := client.Post(h.srv.URL+"/api/username", "application/json", bytes.NewBufferString(`{"name":" carol "}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	ws := h.dial(t, domain.ChannelPrivate, jar)
	assert.Equal(t, domain.WelcomeText, read(t, ws)["greeting"])

	require.NoError(t, ws.WriteJSON(map[string]string{"message": "hello"}))
	assert.Equal(t, "carol> hello", read(t, ws)["message"])
}

func TestUsername_Validation(t *testing.T) {
	h := newHarness(t, orch.FormatEcho)

	resp, err := http.Post(h.srv.URL+"/api/username", "application/json", bytes.NewBufferString(`{"name":"   "}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Post(h.srv.URL+"/api/username", "application/json", bytes.NewBufferString(`{`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthAndMetrics(t *testing.T) {
	h := newHarness(t, orch.FormatEcho)

	resp, err := http.Get(h.srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(h.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `duet_members{channel="public"} 0`)
}
