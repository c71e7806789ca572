// Package metrics bundles the prometheus collectors of the alarm engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricPrefix = "loadbank_hmi_"

// Track labels.
const (
	TrackActive   = "active"
	TrackHistory  = "history"
	TrackCounters = "counters"
)

// Pulse results.
const (
	PulseDelivered = "delivered"
	PulseFailed    = "failed"
	PulseReleased  = "released"
)

// Metrics bundles alarm engine metrics. A nil *Metrics is a valid no-op.
type Metrics struct {
	PollTicks      prometheus.Counter
	AbsentReads    *prometheus.CounterVec
	LoadDuration   *prometheus.HistogramVec
	LoadedRecords  *prometheus.GaugeVec
	CommandPulses  *prometheus.CounterVec
	ActiveAlarms   prometheus.Gauge
	UnackedAlarms  prometheus.Gauge
	NewAlarmEvents prometheus.Counter
}

// New constructs metrics and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PollTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "poll_ticks_total",
			Help: "Total poll ticks issued",
		}),
		AbsentReads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "absent_reads_total",
				Help: "Total remote reads that produced no value, by track",
			},
			[]string{"track"},
		),
		LoadDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "load_duration_seconds",
				Help:    "Fan-out load duration in seconds, by track",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"track"},
		),
		LoadedRecords: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "loaded_records",
				Help: "Records held by the latest snapshot, by track",
			},
			[]string{"track"},
		),
		CommandPulses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "command_pulses_total",
				Help: "Command pulses by command and result",
			},
			[]string{"command", "result"},
		),
		ActiveAlarms: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "active_alarms",
			Help: "Active alarms in the latest snapshot",
		}),
		UnackedAlarms: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "unacknowledged_alarms",
			Help: "Unacknowledged alarms in the latest snapshot",
		}),
		NewAlarmEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "new_alarm_events_total",
			Help: "Rising edges of the controller's new-alarm trigger",
		}),
	}

	reg.MustRegister(
		m.PollTicks,
		m.AbsentReads,
		m.LoadDuration,
		m.LoadedRecords,
		m.CommandPulses,
		m.ActiveAlarms,
		m.UnackedAlarms,
		m.NewAlarmEvents,
	)

	return m
}

// ObserveTick counts a poll tick.
func (m *Metrics) ObserveTick() {
	if m == nil {
		return
	}

	m.PollTicks.Inc()
}

// ObserveAbsent counts an absent read on track.
func (m *Metrics) ObserveAbsent(track string) {
	if m == nil {
		return
	}

	m.AbsentReads.WithLabelValues(track).Inc()
}

// ObserveLoad records a completed fan-out load.
func (m *Metrics) ObserveLoad(track string, elapsed time.Duration, records int) {
	if m == nil {
		return
	}

	m.LoadDuration.WithLabelValues(track).Observe(elapsed.Seconds())
	m.LoadedRecords.WithLabelValues(track).Set(float64(records))
}

// ObserveActive records the size of the active snapshot.
func (m *Metrics) ObserveActive(total, unacknowledged int) {
	if m == nil {
		return
	}

	m.ActiveAlarms.Set(float64(total))
	m.UnackedAlarms.Set(float64(unacknowledged))
}

// ObservePulse counts a command pulse step.
func (m *Metrics) ObservePulse(command, result string) {
	if m == nil {
		return
	}

	m.CommandPulses.WithLabelValues(command, result).Inc()
}

// ObserveNewAlarm counts a new-alarm trigger edge.
func (m *Metrics) ObserveNewAlarm() {
	if m == nil {
		return
	}

	m.NewAlarmEvents.Inc()
}
