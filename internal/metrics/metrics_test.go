package metrics_test

import (
	"strings"
	"testing"

	"github.com/dkeye/Duet/internal/app"
	"github.com/dkeye/Duet/internal/core"
	"github.com/dkeye/Duet/internal/core/coretest"
	"github.com/dkeye/Duet/internal/domain"
	"github.com/dkeye/Duet/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_GaugesAndCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	private := app.NewPrivateRoomManager()
	rec := metrics.New(reg, map[domain.Channel]core.RoomManager{
		domain.ChannelPrivate: private,
	})

	private.Connect(coretest.NewConn("a"))
	private.Connect(coretest.NewConn("b"))
	private.Connect(coretest.NewConn("c"))
	rec.Publish(domain.ChannelPrivate, core.PublishResult{SendTo: 2, Dropped: []core.Connection{coretest.NewConn("x")}})
	rec.Inbound(domain.ChannelPrivate)

	expected := `
# HELP duet_open_rooms Rooms waiting for a second occupant.
# TYPE duet_open_rooms gauge
duet_open_rooms{channel="private"} 1
# HELP duet_rooms Live rooms.
# TYPE duet_rooms gauge
duet_rooms{channel="private"} 2
# HELP duet_frames_dropped_total Frames a connection refused.
# TYPE duet_frames_dropped_total counter
duet_frames_dropped_total{channel="private"} 1
`
	err := testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"duet_open_rooms", "duet_rooms", "duet_frames_dropped_total")
	require.NoError(t, err)
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var rec *metrics.Recorder
	assert.NotPanics(t, func() {
		rec.Publish(domain.ChannelPublic, core.PublishResult{SendTo: 1})
		rec.Inbound(domain.ChannelPublic)
	})
}
