package bridge

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/victorjacobs/go-flexit/flexit"
)

const (
	resultSuccess   = "success"
	resultError     = "error"
	resultConfirmed = "confirmed"
	resultRejected  = "rejected"
)

type Metrics struct {
	temperature *prometheus.GaugeVec
	fanSpeed    *prometheus.GaugeVec
	fanSignal   *prometheus.GaugeVec
	filterDirty prometheus.Gauge
	alarm       prometheus.Gauge
	polls       *prometheus.CounterVec
	writes      *prometheus.CounterVec
}

// NewMetrics registers the bridge metrics on reg. tokenRequests, when set,
// backs the token request counter.
func NewMetrics(reg prometheus.Registerer, tokenRequests func() uint64) *Metrics {
	m := &Metrics{
		temperature: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "flexit_temperature_celsius",
				Help: "Temperature reported by the unit in degree celsius.",
			},
			[]string{"sensor"},
		),
		fanSpeed: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "flexit_fan_speed_rpm",
				Help: "Fan speed in revolutions per minute.",
			},
			[]string{"fan"},
		),
		fanSignal: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "flexit_fan_control_signal_percent",
				Help: "Fan control signal in percent.",
			},
			[]string{"fan"},
		),
		filterDirty: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "flexit_filter_dirty",
				Help: "1 when the filter is due for exchange.",
			},
		),
		alarm: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "flexit_alarm_active",
				Help: "1 when an alarm code is set.",
			},
		),
		polls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flexit_polls_total",
				Help: "Snapshot refreshes by result.",
			},
			[]string{"result"},
		),
		writes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flexit_writes_total",
				Help: "Writes by entity and result.",
			},
			[]string{"attribute", "result"},
		),
	}
	reg.MustRegister(m.temperature)
	reg.MustRegister(m.fanSpeed)
	reg.MustRegister(m.fanSignal)
	reg.MustRegister(m.filterDirty)
	reg.MustRegister(m.alarm)
	reg.MustRegister(m.polls)
	reg.MustRegister(m.writes)

	if tokenRequests != nil {
		reg.MustRegister(prometheus.NewCounterFunc(
			prometheus.CounterOpts{
				Name: "flexit_token_requests_total",
				Help: "Access tokens requested from the API.",
			},
			func() float64 { return float64(tokenRequests()) },
		))
	}

	return m
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Observe updates the gauges from s. All methods are no-ops on a nil *Metrics.
func (m *Metrics) Observe(s *flexit.Snapshot) {
	if m == nil || s == nil {
		return
	}

	for sensor, value := range map[string]float64{
		"outside": s.OutsideAirTemperature,
		"supply":  s.SupplyAirTemperature,
		"exhaust": s.ExhaustAirTemperature,
		"extract": s.ExtractAirTemperature,
		"room":    s.RoomTemperature,
		"home":    s.HomeAirTemperature,
		"away":    s.AwayAirTemperature,
	} {
		m.temperature.WithLabelValues(sensor).Set(value)
	}

	m.fanSpeed.WithLabelValues("supply").Set(float64(s.SupplyFanSpeed))
	m.fanSpeed.WithLabelValues("extract").Set(float64(s.ExtractFanSpeed))
	m.fanSignal.WithLabelValues("supply").Set(float64(s.SupplyFanControlSignal))
	m.fanSignal.WithLabelValues("extract").Set(float64(s.ExtractFanControlSignal))

	m.filterDirty.Set(boolGauge(s.DirtyFilter))
	m.alarm.Set(boolGauge(s.Alarm))
}

func (m *Metrics) Poll(err error) {
	if m == nil {
		return
	}
	result := resultSuccess
	if err != nil {
		result = resultError
	}
	m.polls.WithLabelValues(result).Inc()
}

func (m *Metrics) Write(entity, result string) {
	if m == nil {
		return
	}
	m.writes.WithLabelValues(entity, result).Inc()
}
