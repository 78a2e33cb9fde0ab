package activitylog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fleetops/fleetd/core/metrics"
	"github.com/fleetops/fleetd/core/model"
	"github.com/fleetops/fleetd/core/store"
	"github.com/fleetops/fleetd/infra/logger"
	"github.com/fleetops/fleetd/internal/eventbus"
)

type failingLogStore struct{}

func (failingLogStore) Append(context.Context, model.ActivityLogEntry) error {
	return store.ErrUnavailable
}

func (failingLogStore) FindByVehicle(context.Context, string) ([]model.ActivityLogEntry, error) {
	return nil, store.ErrUnavailable
}

type captureSink struct{ events []metrics.ActivityEvent }

func (c *captureSink) RecordActivity(ev metrics.ActivityEvent) error {
	c.events = append(c.events, ev)
	return nil
}

func TestRecorder_Record(t *testing.T) {
	mem := store.NewMemoryStore()
	fixed := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	sink := &captureSink{}
	rec := NewRecorder(mem.ActivityLogs(), logger.NopLogger{},
		WithClock(func() time.Time { return fixed }),
		WithSink(sink),
	)
	entry, err := rec.Record(context.Background(), "v1", model.ActivityEngineStarted, "Engine started")
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if entry.ID == "" || !entry.Timestamp.Equal(fixed) {
		t.Fatalf("bad entry: %#v", entry)
	}
	got, err := rec.ListByVehicle(context.Background(), "v1")
	if err != nil || len(got) != 1 {
		t.Fatalf("list: %v %d", err, len(got))
	}
	if len(sink.events) != 1 || sink.events[0].Type != model.ActivityEngineStarted {
		t.Fatalf("sink not fed: %#v", sink.events)
	}
}

func TestRecorder_RecordDoesNotCheckVehicle(t *testing.T) {
	mem := store.NewMemoryStore()
	rec := NewRecorder(mem.ActivityLogs(), logger.NopLogger{})
	// The vehicle "ghost" was never inserted; recording must still work.
	if _, err := rec.Record(context.Background(), "ghost", model.ActivityVehicleDeleted, "Vehicle deleted"); err != nil {
		t.Fatalf("record for absent vehicle: %v", err)
	}
}

func TestRecorder_StoreFailureSurfaced(t *testing.T) {
	rec := NewRecorder(failingLogStore{}, logger.NopLogger{})
	_, err := rec.Record(context.Background(), "v1", model.ActivityEngineStarted, "Engine started")
	if !errors.Is(err, store.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestRecorder_PublishesOnBus(t *testing.T) {
	mem := store.NewMemoryStore()
	bus := eventbus.New()
	sub := bus.Subscribe()
	rec := NewRecorder(mem.ActivityLogs(), logger.NopLogger{}, WithBus(bus))
	if _, err := rec.Record(context.Background(), "v1", model.ActivityDoorOpened, "Driver door opened"); err != nil {
		t.Fatalf("record: %v", err)
	}
	select {
	case e := <-sub:
		ev, ok := e.(RecordedEvent)
		if !ok || ev.Entry.VehicleID != "v1" {
			t.Fatalf("unexpected event %#v", e)
		}
	case <-time.After(time.Second):
		t.Fatalf("no bus event")
	}
}
