package stats

import (
	"context"
	"math"
	"testing"

	"github.com/fleetops/fleetd/core/model"
	"github.com/fleetops/fleetd/core/store"
)

func seedFleet(t *testing.T) *store.MemoryStore {
	t.Helper()
	mem := store.NewMemoryStore()
	ctx := context.Background()
	fleet := []model.Vehicle{
		{ID: "a", Status: model.StatusAvailable, KilometersSinceMaintenance: 5000},
		{ID: "b", Status: model.StatusReserved, KilometersSinceMaintenance: 8000},
		{ID: "c", Status: model.StatusMaintenance, KilometersSinceMaintenance: 15000},
		{ID: "d", Status: model.StatusAvailable, KilometersSinceMaintenance: 12000},
	}
	for _, v := range fleet {
		if err := mem.Vehicles().Insert(ctx, v); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	return mem
}

func TestCollect(t *testing.T) {
	agg := New(seedFleet(t).Vehicles())
	s, err := agg.Collect(context.Background())
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if s.Total != 4 || s.Available != 2 || s.Reserved != 1 || s.Maintenance != 1 {
		t.Fatalf("counts wrong: %#v", s)
	}
	// Only "d" qualifies: "c" exceeds the threshold but is already in maintenance.
	if s.NeedsMaintenanceSoon != 1 {
		t.Fatalf("needs maintenance soon: %d", s.NeedsMaintenanceSoon)
	}
	if math.Abs(s.MeanKmSinceMaintenance-10000) > 1e-9 {
		t.Fatalf("mean: %f", s.MeanKmSinceMaintenance)
	}
	if s.StdDevKmSinceMaintenance <= 0 {
		t.Fatalf("stddev: %f", s.StdDevKmSinceMaintenance)
	}
}

func TestCollect_EmptyFleet(t *testing.T) {
	agg := New(store.NewMemoryStore().Vehicles())
	s, err := agg.Collect(context.Background())
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if s.Total != 0 || s.MeanKmSinceMaintenance != 0 || s.StdDevKmSinceMaintenance != 0 {
		t.Fatalf("empty fleet stats: %#v", s)
	}
}
