package metrics

import (
	"time"

	"github.com/fleetops/fleetd/core/model"
)

// ActivityEvent represents one recorded activity log entry.
type ActivityEvent struct {
	VehicleID string
	Type      model.ActivityType
	Time      time.Time
}

// MetricsSink records activity events for observability purposes.
type MetricsSink interface {
	RecordActivity(ev ActivityEvent) error
}

// StatusChangeEvent captures a vehicle status transition.
type StatusChangeEvent struct {
	VehicleID string
	From      model.Status
	To        model.Status
	Time      time.Time
}

// StatusChangeRecorder records status transitions.
type StatusChangeRecorder interface {
	RecordStatusChange(ev StatusChangeEvent) error
}

// FleetSnapshot is an aggregate view of the fleet at a point in time.
type FleetSnapshot struct {
	Total                int
	Available            int
	Reserved             int
	Maintenance          int
	NeedsMaintenanceSoon int
	Time                 time.Time
}

// FleetSnapshotRecorder records periodic fleet snapshots.
type FleetSnapshotRecorder interface {
	RecordFleetSnapshot(ev FleetSnapshot) error
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) RecordActivity(ActivityEvent) error           { return nil }
func (NopSink) RecordStatusChange(StatusChangeEvent) error   { return nil }
func (NopSink) RecordFleetSnapshot(FleetSnapshot) error      { return nil }
