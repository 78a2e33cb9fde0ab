package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/fleetops/fleetd/core/metrics"
	"github.com/fleetops/fleetd/core/model"
)

func TestPromSink_RecordActivity(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	ev := coremetrics.ActivityEvent{VehicleID: "v1", Type: model.ActivityEngineStarted, Time: time.Now()}
	if err := sink.RecordActivity(ev); err != nil {
		t.Fatalf("record: %v", err)
	}
	got := testutil.ToFloat64(sink.activity.WithLabelValues(string(model.ActivityEngineStarted)))
	if got != 1 {
		t.Fatalf("counter: %f", got)
	}
}

func TestPromSink_RecordFleetSnapshot(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	snap := coremetrics.FleetSnapshot{Total: 4, Available: 2, Reserved: 1, Maintenance: 1, NeedsMaintenanceSoon: 1}
	if err := sink.RecordFleetSnapshot(snap); err != nil {
		t.Fatalf("record: %v", err)
	}
	if got := testutil.ToFloat64(sink.total); got != 4 {
		t.Fatalf("total gauge: %f", got)
	}
	if got := testutil.ToFloat64(sink.fleet.WithLabelValues("RESERVED")); got != 1 {
		t.Fatalf("reserved gauge: %f", got)
	}
}

func TestPromSink_DoubleRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPromSinkWithRegistry(reg); err != nil {
		t.Fatalf("first: %v", err)
	}
	if _, err := NewPromSinkWithRegistry(reg); err != nil {
		t.Fatalf("second registration should be tolerated: %v", err)
	}
}

type countSink struct {
	activities int
	snapshots  int
}

func (c *countSink) RecordActivity(coremetrics.ActivityEvent) error { c.activities++; return nil }
func (c *countSink) RecordFleetSnapshot(coremetrics.FleetSnapshot) error {
	c.snapshots++
	return nil
}

func TestMultiSink_Fanout(t *testing.T) {
	a, b := &countSink{}, &countSink{}
	m := NewMultiSink(a, b)
	if err := m.RecordActivity(coremetrics.ActivityEvent{}); err != nil {
		t.Fatalf("activity: %v", err)
	}
	if err := m.RecordFleetSnapshot(coremetrics.FleetSnapshot{}); err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if a.activities != 1 || b.activities != 1 || a.snapshots != 1 || b.snapshots != 1 {
		t.Fatalf("fanout incomplete: %#v %#v", a, b)
	}
}
