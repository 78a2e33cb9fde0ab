package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/fleetops/fleetd/core/metrics"
)

// PromSink records fleet events in Prometheus metrics.
type PromSink struct {
	activity *prometheus.CounterVec
	statuses *prometheus.CounterVec
	fleet    *prometheus.GaugeVec
	total    prometheus.Gauge
	needSoon prometheus.Gauge
}

// NewPromSink registers fleet metrics on the default Prometheus registerer.
// The Prometheus server should be started separately.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	activity := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fleet_activity_events_total",
		Help: "Total activity log entries recorded",
	}, []string{"activity_type"})
	statuses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fleet_status_changes_total",
		Help: "Total vehicle status transitions",
	}, []string{"from", "to"})
	fleet := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "fleet_vehicles",
		Help: "Vehicles per status from the last snapshot",
	}, []string{"status"})
	total := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fleet_vehicles_total",
		Help: "Total vehicles from the last snapshot",
	})
	needSoon := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fleet_needs_maintenance_soon",
		Help: "Vehicles close to their maintenance threshold",
	})

	for _, c := range []prometheus.Collector{activity, statuses, fleet, total, needSoon} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return nil, err
			}
		}
	}
	return &PromSink{activity: activity, statuses: statuses, fleet: fleet, total: total, needSoon: needSoon}, nil
}

// RecordActivity increments the counter for the entry's activity type.
func (s *PromSink) RecordActivity(ev coremetrics.ActivityEvent) error {
	s.activity.WithLabelValues(string(ev.Type)).Inc()
	return nil
}

// RecordStatusChange increments the transition counter.
func (s *PromSink) RecordStatusChange(ev coremetrics.StatusChangeEvent) error {
	s.statuses.WithLabelValues(string(ev.From), string(ev.To)).Inc()
	return nil
}

// RecordFleetSnapshot sets the fleet gauges.
func (s *PromSink) RecordFleetSnapshot(ev coremetrics.FleetSnapshot) error {
	s.total.Set(float64(ev.Total))
	s.fleet.WithLabelValues("AVAILABLE").Set(float64(ev.Available))
	s.fleet.WithLabelValues("RESERVED").Set(float64(ev.Reserved))
	s.fleet.WithLabelValues("MAINTENANCE").Set(float64(ev.Maintenance))
	s.needSoon.Set(float64(ev.NeedsMaintenanceSoon))
	return nil
}
