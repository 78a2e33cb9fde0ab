package metrics

import coremetrics "github.com/fleetops/fleetd/core/metrics"

// MultiSink fans events out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordActivity forwards the event to all sinks, returning the first error encountered.
func (m *MultiSink) RecordActivity(ev coremetrics.ActivityEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordActivity(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordStatusChange forwards transitions to sinks that record them.
func (m *MultiSink) RecordStatusChange(ev coremetrics.StatusChangeEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.StatusChangeRecorder); ok {
			if err := rec.RecordStatusChange(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordFleetSnapshot forwards snapshots to sinks that record them.
func (m *MultiSink) RecordFleetSnapshot(ev coremetrics.FleetSnapshot) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.FleetSnapshotRecorder); ok {
			if err := rec.RecordFleetSnapshot(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
