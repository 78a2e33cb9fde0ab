package store

import (
	"context"
	"errors"

	"github.com/fleetops/fleetd/core/model"
)

// ErrNotFound is returned when a referenced record id is absent.
var ErrNotFound = errors.New("record not found")

// ErrUnavailable is returned when the backing store cannot be reached.
// Callers surface it; retry policy belongs to the store transport.
var ErrUnavailable = errors.New("store unavailable")

// Filter narrows vehicle listings. The zero value matches everything.
type Filter struct {
	Status model.Status
}

// VehicleStore persists vehicle records. Implementations must provide
// per-record atomicity for Update and Delete; cross-record consistency
// is not required.
type VehicleStore interface {
	Insert(ctx context.Context, v model.Vehicle) error
	FindByID(ctx context.Context, id string) (model.Vehicle, error)
	FindAll(ctx context.Context, f Filter) ([]model.Vehicle, error)
	Update(ctx context.Context, v model.Vehicle) error
	Delete(ctx context.Context, id string) error
}

// ReportStore persists inspection reports. Reports are append-only.
type ReportStore interface {
	Insert(ctx context.Context, r model.Report) error
	FindByVehicle(ctx context.Context, vehicleID string) ([]model.Report, error)
}

// ActivityLogStore persists activity log entries. Entries are
// append-only and must survive deletion of the referenced vehicle.
type ActivityLogStore interface {
	Append(ctx context.Context, e model.ActivityLogEntry) error
	FindByVehicle(ctx context.Context, vehicleID string) ([]model.ActivityLogEntry, error)
}

// Store bundles the three record stores behind one backend.
type Store interface {
	Vehicles() VehicleStore
	Reports() ReportStore
	ActivityLogs() ActivityLogStore
	Close() error
}
