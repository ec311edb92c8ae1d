// Package metrics exposes room occupancy and delivery counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/dkeye/Duet/internal/core"
	"github.com/dkeye/Duet/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "duet"

// Recorder counts deliveries. A nil *Recorder is valid and records nothing.
type Recorder struct {
	delivered *prometheus.CounterVec
	dropped   *prometheus.CounterVec
	inbound   *prometheus.CounterVec
}

// New registers occupancy gauges for each manager and returns a Recorder
// whose counters are registered on reg.
func New(reg prometheus.Registerer, managers map[domain.Channel]core.RoomManager) *Recorder {
	r := &Recorder{
		delivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_delivered_total",
			Help:      "Frames accepted by a connection's send buffer.",
		}, []string{"channel"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_dropped_total",
			Help:      "Frames a connection refused.",
		}, []string{"channel"}),
		inbound: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_received_total",
			Help:      "Inbound chat messages.",
		}, []string{"channel"}),
	}
	reg.MustRegister(r.delivered, r.dropped, r.inbound)

	for ch, m := range managers {
		labels := prometheus.Labels{"channel": string(ch)}
		reg.MustRegister(
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace: namespace, Name: "members", Help: "Connected members.", ConstLabels: labels,
			}, func() float64 { return float64(m.Stats().Members) }),
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace: namespace, Name: "rooms", Help: "Live rooms.", ConstLabels: labels,
			}, func() float64 { return float64(m.Stats().Rooms) }),
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace: namespace, Name: "open_rooms", Help: "Rooms waiting for a second occupant.", ConstLabels: labels,
			}, func() float64 { return float64(m.Stats().OpenRooms) }),
		)
	}
	return r
}

func (r *Recorder) Publish(ch domain.Channel, res core.PublishResult) {
	if r == nil {
		return
	}
	r.delivered.WithLabelValues(string(ch)).Add(float64(res.SendTo))
	r.dropped.WithLabelValues(string(ch)).Add(float64(len(res.Dropped)))
}

func (r *Recorder) Inbound(ch domain.Channel) {
	if r == nil {
		return
	}
	r.inbound.WithLabelValues(string(ch)).Inc()
}

// Handler exposes the gathered metrics.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
