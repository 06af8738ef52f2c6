package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	roomsCreatedCounter   prometheus.Counter
	handsPlayedCounter    prometheus.Counter
	forcedFoldsCounter    prometheus.Counter
	playerMsgRecvCounter  prometheus.Counter
	activeRoomsCountGauge prometheus.Gauge
}

func (m *metrics) RoomCreated() {
	m.roomsCreatedCounter.Inc()
}

func (m *metrics) HandPlayed() {
	m.handsPlayedCounter.Inc()
}

func (m *metrics) ForcedFold() {
	m.forcedFoldsCounter.Inc()
}

func (m *metrics) PlayerMsgReceived() {
	m.playerMsgRecvCounter.Inc()
}

func (m *metrics) SetActiveRoomsCount(count int) {
	m.activeRoomsCountGauge.Set(float64(count))
}

var Metrics = &metrics{
	roomsCreatedCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "rooms_created_total",
		Help: "Total number of rooms created",
	}),
	handsPlayedCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "hands_played_total",
		Help: "Total number of hands played to resolution",
	}),
	forcedFoldsCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "forced_folds_total",
		Help: "Total number of folds forced by the turn timer",
	}),
	playerMsgRecvCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "player_msg_received_total",
		Help: "Total number of action messages received from players",
	}),
	activeRoomsCountGauge: promauto.NewGauge(prometheus.GaugeOpts{
		Name: "active_rooms_count",
		Help: "Count of the entries in the room manager rooms map",
	}),
}
