package stats

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/fleetops/fleetd/core/model"
	"github.com/fleetops/fleetd/core/store"
)

// FleetStats is an aggregate, read-only view of the fleet.
type FleetStats struct {
	Total                int `json:"total"`
	Available            int `json:"available"`
	Reserved             int `json:"reserved"`
	Maintenance          int `json:"maintenance"`
	NeedsMaintenanceSoon int `json:"needs_maintenance_soon"`

	MeanKmSinceMaintenance   float64 `json:"mean_km_since_maintenance"`
	StdDevKmSinceMaintenance float64 `json:"stddev_km_since_maintenance"`
}

// Aggregator derives fleet-wide counts from the current vehicle state.
// It holds no state and performs no mutation.
type Aggregator struct {
	vehicles store.VehicleStore
}

// New creates an Aggregator over the vehicle store.
func New(vehicles store.VehicleStore) *Aggregator {
	return &Aggregator{vehicles: vehicles}
}

// Collect loads all vehicles and computes the aggregate view.
func (a *Aggregator) Collect(ctx context.Context) (FleetStats, error) {
	vehicles, err := a.vehicles.FindAll(ctx, store.Filter{})
	if err != nil {
		return FleetStats{}, fmt.Errorf("load vehicles: %w", err)
	}

	s := FleetStats{Total: len(vehicles)}
	distances := make([]float64, 0, len(vehicles))
	for _, v := range vehicles {
		switch v.Status {
		case model.StatusAvailable:
			s.Available++
		case model.StatusReserved:
			s.Reserved++
		case model.StatusMaintenance:
			s.Maintenance++
		}
		if v.NeedsMaintenanceSoon() {
			s.NeedsMaintenanceSoon++
		}
		distances = append(distances, v.KilometersSinceMaintenance)
	}
	if len(distances) > 0 {
		s.MeanKmSinceMaintenance = stat.Mean(distances, nil)
	}
	if len(distances) > 1 {
		s.StdDevKmSinceMaintenance = stat.StdDev(distances, nil)
	}
	return s, nil
}
