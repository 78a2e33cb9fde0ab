package activitylog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fleetops/fleetd/core/logger"
	"github.com/fleetops/fleetd/core/metrics"
	"github.com/fleetops/fleetd/core/model"
	"github.com/fleetops/fleetd/core/store"
	"github.com/fleetops/fleetd/internal/eventbus"
)

// RecordedEvent is published on the event bus for every appended entry.
type RecordedEvent struct {
	Entry model.ActivityLogEntry
}

// Recorder appends timestamped activity entries for vehicles. It does
// not verify that the vehicle still exists: history must survive
// vehicle deletion.
type Recorder struct {
	logs store.ActivityLogStore
	bus  eventbus.EventBus
	sink metrics.MetricsSink
	log  logger.Logger
	now  func() time.Time
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) { r.now = now }
}

// WithBus attaches an event bus notified of every appended entry.
func WithBus(bus eventbus.EventBus) Option {
	return func(r *Recorder) { r.bus = bus }
}

// WithSink attaches a metrics sink.
func WithSink(sink metrics.MetricsSink) Option {
	return func(r *Recorder) { r.sink = sink }
}

// NewRecorder creates a Recorder on top of the given log store.
func NewRecorder(logs store.ActivityLogStore, log logger.Logger, opts ...Option) *Recorder {
	r := &Recorder{
		logs: logs,
		sink: metrics.NopSink{},
		log:  log,
		now:  time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Record appends one entry for the vehicle. Store failures are
// surfaced, not retried.
func (r *Recorder) Record(ctx context.Context, vehicleID string, typ model.ActivityType, description string) (model.ActivityLogEntry, error) {
	entry := model.ActivityLogEntry{
		ID:          uuid.NewString(),
		VehicleID:   vehicleID,
		Type:        typ,
		Description: description,
		Timestamp:   r.now(),
	}
	if err := r.logs.Append(ctx, entry); err != nil {
		return model.ActivityLogEntry{}, fmt.Errorf("append activity: %w", err)
	}
	if r.bus != nil {
		r.bus.Publish(RecordedEvent{Entry: entry})
	}
	if err := r.sink.RecordActivity(metrics.ActivityEvent{VehicleID: vehicleID, Type: typ, Time: entry.Timestamp}); err != nil {
		r.log.Warnf("record activity metric: %v", err)
	}
	return entry, nil
}

// ListByVehicle returns the vehicle's history ordered by timestamp
// ascending, ties broken by insertion order.
func (r *Recorder) ListByVehicle(ctx context.Context, vehicleID string) ([]model.ActivityLogEntry, error) {
	entries, err := r.logs.FindByVehicle(ctx, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	return entries, nil
}
