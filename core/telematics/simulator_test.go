package telematics

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/fleetops/fleetd/core/activitylog"
	"github.com/fleetops/fleetd/core/model"
	"github.com/fleetops/fleetd/core/store"
	"github.com/fleetops/fleetd/infra/logger"
)

func testConfig() Config {
	c := Config{Seed: 7}
	c.SetDefaults()
	return c
}

func TestTick_NoReservedVehicles(t *testing.T) {
	mem := store.NewMemoryStore()
	ctx := context.Background()
	_ = mem.Vehicles().Insert(ctx, model.Vehicle{ID: "a", Status: model.StatusAvailable})
	_ = mem.Vehicles().Insert(ctx, model.Vehicle{ID: "b", Status: model.StatusMaintenance})

	rec := activitylog.NewRecorder(mem.ActivityLogs(), logger.NopLogger{})
	sim := New(testConfig(), mem.Vehicles(), rec, logger.NopLogger{})
	if err := sim.Tick(ctx); err != nil {
		t.Fatalf("tick: %v", err)
	}
	for _, id := range []string{"a", "b"} {
		logs, _ := mem.ActivityLogs().FindByVehicle(ctx, id)
		if len(logs) != 0 {
			t.Fatalf("vehicle %s got %d entries", id, len(logs))
		}
	}
}

func TestTick_OnlyReservedVehiclesTargeted(t *testing.T) {
	mem := store.NewMemoryStore()
	ctx := context.Background()
	_ = mem.Vehicles().Insert(ctx, model.Vehicle{ID: "idle", Status: model.StatusAvailable})
	_ = mem.Vehicles().Insert(ctx, model.Vehicle{ID: "used", Status: model.StatusReserved})

	rec := activitylog.NewRecorder(mem.ActivityLogs(), logger.NopLogger{})
	sim := New(testConfig(), mem.Vehicles(), rec, logger.NopLogger{})
	// Run enough ticks that the 0..3 draw almost surely emits something.
	for i := 0; i < 20; i++ {
		if err := sim.Tick(ctx); err != nil {
			t.Fatalf("tick: %v", err)
		}
	}
	idleLogs, _ := mem.ActivityLogs().FindByVehicle(ctx, "idle")
	if len(idleLogs) != 0 {
		t.Fatalf("idle vehicle received events")
	}
	usedLogs, _ := mem.ActivityLogs().FindByVehicle(ctx, "used")
	if len(usedLogs) == 0 {
		t.Fatalf("reserved vehicle received no events over 20 ticks")
	}
	if len(usedLogs) > 20*3 {
		t.Fatalf("per-tick bound exceeded: %d", len(usedLogs))
	}
	for _, e := range usedLogs {
		if e.Description == "" {
			t.Fatalf("empty description for %s", e.Type)
		}
	}
}

func TestTick_DoesNotMutateVehicles(t *testing.T) {
	mem := store.NewMemoryStore()
	ctx := context.Background()
	v := model.Vehicle{ID: "used", Status: model.StatusReserved, TotalKilometers: 900, KilometersSinceMaintenance: 400}
	_ = mem.Vehicles().Insert(ctx, v)

	rec := activitylog.NewRecorder(mem.ActivityLogs(), logger.NopLogger{})
	sim := New(testConfig(), mem.Vehicles(), rec, logger.NopLogger{})
	for i := 0; i < 10; i++ {
		if err := sim.Tick(ctx); err != nil {
			t.Fatalf("tick: %v", err)
		}
	}
	got, err := mem.Vehicles().FindByID(ctx, "used")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.TotalKilometers != 900 || got.KilometersSinceMaintenance != 400 || got.Status != model.StatusReserved {
		t.Fatalf("vehicle mutated: %#v", got)
	}
}

type failingRecorder struct{}

func (failingRecorder) Record(context.Context, string, model.ActivityType, string) (model.ActivityLogEntry, error) {
	return model.ActivityLogEntry{}, store.ErrUnavailable
}

func TestTick_RecorderFailureSurfaced(t *testing.T) {
	mem := store.NewMemoryStore()
	ctx := context.Background()
	_ = mem.Vehicles().Insert(ctx, model.Vehicle{ID: "used", Status: model.StatusReserved})

	cfg := testConfig()
	sim := New(cfg, mem.Vehicles(), failingRecorder{}, logger.NopLogger{})
	var failed bool
	for i := 0; i < 20; i++ {
		if err := sim.Tick(ctx); err != nil {
			if !errors.Is(err, store.ErrUnavailable) {
				t.Fatalf("unexpected error: %v", err)
			}
			failed = true
		}
	}
	if !failed {
		t.Fatalf("no tick surfaced the failure")
	}
}

func TestTemplateRender(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	bounds := map[model.ActivityType][2]int{
		model.ActivityHighTemperature: {95, 109},
		model.ActivitySpeedExceeded:   {120, 159},
		model.ActivityLowFuel:         {5, 24},
		model.ActivityHighRPM:         {5000, 6999},
	}
	for _, tmpl := range Catalogue {
		for i := 0; i < 100; i++ {
			text := tmpl.Render(r)
			if text == "" {
				t.Fatalf("%s rendered empty", tmpl.Type)
			}
			if tmpl.Span <= 0 {
				if text != tmpl.Text {
					t.Fatalf("%s static template altered: %s", tmpl.Type, text)
				}
				continue
			}
			if strings.Contains(text, "%") && tmpl.Type != model.ActivityLowFuel {
				t.Fatalf("%s not interpolated: %s", tmpl.Type, text)
			}
			lo, hi := bounds[tmpl.Type][0], bounds[tmpl.Type][1]
			val := tmpl.Min + (tmpl.Span - 1)
			if tmpl.Min < lo || val > hi {
				t.Fatalf("%s range [%d,%d] outside expected [%d,%d]", tmpl.Type, tmpl.Min, val, lo, hi)
			}
		}
	}
}

func TestCatalogueCoversAllTelematicsTypes(t *testing.T) {
	want := []model.ActivityType{
		model.ActivityEngineStarted, model.ActivityEngineStopped,
		model.ActivityDoorOpened, model.ActivityDoorClosed,
		model.ActivityPassengerDoor, model.ActivityTrunkOpened,
		model.ActivityBonnetOpened, model.ActivityHighTemperature,
		model.ActivitySpeedExceeded, model.ActivitySuddenBraking,
		model.ActivityLowFuel, model.ActivityLowBattery, model.ActivityHighRPM,
	}
	seen := map[model.ActivityType]bool{}
	for _, tmpl := range Catalogue {
		seen[tmpl.Type] = true
	}
	for _, typ := range want {
		if !seen[typ] {
			t.Fatalf("catalogue missing %s", typ)
		}
	}
}
